package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID         string    `bun:",pk,nullzero" json:"id"`
	Name       string    `bun:",nullzero" json:"name"`
	Email      string    `bun:",nullzero" json:"email"`
	Role       string    `bun:",nullzero" json:"role"`
	Department string    `json:"department"`
	// OutstandingFines is the user's unpaid fine balance in whole currency
	// units. It only ever changes when a return finalizes a fine or when a
	// payment is recorded.
	OutstandingFines int       `json:"outstanding_fines"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

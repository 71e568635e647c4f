package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	LoanKindBorrow = "borrow"
)

// Loan statuses are derived from the loan's dates, never stored. A loan is
// returned once its return date is set, overdue while past due, and
// borrowed otherwise.
const (
	LoanStatusBorrowed = "borrowed"
	LoanStatusOverdue  = "overdue"
	LoanStatusReturned = "returned"
)

// Loan is one borrow transaction. Rows are never deleted; they are the
// audit trail. A renewal extends DueDate, a return sets ReturnDate and
// finalizes FineAmount.
type Loan struct {
	bun.BaseModel `bun:"table:loans,alias:l"`

	ID           string     `bun:",pk,nullzero" json:"id"`
	UserID       string     `bun:",nullzero" json:"user_id"`
	User         *User      `bun:"rel:belongs-to" json:"user,omitempty"`
	BookID       string     `bun:",nullzero" json:"book_id"`
	Book         *Book      `bun:"rel:belongs-to" json:"book,omitempty"`
	Kind         string     `bun:",nullzero" json:"kind"`
	BorrowDate   time.Time  `json:"borrow_date"`
	DueDate      time.Time  `json:"due_date"`
	ReturnDate   *time.Time `json:"return_date"`
	FineAmount   int        `json:"fine_amount"`
	RenewalCount int        `json:"renewal_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Status derives the loan status at the given time.
func (l *Loan) Status(now time.Time) string {
	if l.ReturnDate != nil {
		return LoanStatusReturned
	}
	if now.After(l.DueDate) {
		return LoanStatusOverdue
	}
	return LoanStatusBorrowed
}

// Active reports whether the book is still out, overdue or not.
func (l *Loan) Active() bool {
	return l.ReturnDate == nil
}

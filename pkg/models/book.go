package models

import (
	"database/sql/driver"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
)

// Tags is a set of descriptive labels stored as a JSON array in a TEXT
// column. The recommendation scoring always reads a book's full tag set, so
// a join table would only add work.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return string(b), nil
}

func (t *Tags) Scan(src interface{}) error {
	if src == nil {
		*t = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return errors.Errorf("unsupported tags column type %T", src)
	}

	return errors.WithStack(json.Unmarshal(data, t))
}

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID              string    `bun:",pk,nullzero" json:"id"`
	Title           string    `bun:",nullzero" json:"title"`
	Author          string    `bun:",nullzero" json:"author"`
	Category        string    `bun:",nullzero" json:"category"`
	Tags            Tags      `json:"tags"`
	Year            int       `bun:",nullzero" json:"year"`
	CopiesTotal     int       `json:"copies_total"`
	CopiesAvailable int       `json:"copies_available"`
	Rating          float64   `json:"rating"`
	Popularity      int       `json:"popularity"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

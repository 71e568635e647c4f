package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE books (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				title TEXT NOT NULL,
				author TEXT NOT NULL,
				category TEXT NOT NULL,
				tags TEXT NOT NULL DEFAULT '[]',
				year INTEGER NOT NULL,
				copies_total INTEGER NOT NULL DEFAULT 1,
				copies_available INTEGER NOT NULL DEFAULT 1,
				rating REAL NOT NULL DEFAULT 0,
				popularity INTEGER NOT NULL DEFAULT 0,
				CHECK (copies_available >= 0),
				CHECK (copies_available <= copies_total)
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_books_category ON books (category)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE users (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				email TEXT NOT NULL,
				role TEXT NOT NULL DEFAULT 'student',
				department TEXT NOT NULL DEFAULT '',
				outstanding_fines INTEGER NOT NULL DEFAULT 0,
				CHECK (outstanding_fines >= 0)
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_users_email ON users (email COLLATE NOCASE)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE loans (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				user_id TEXT REFERENCES users (id) NOT NULL,
				book_id TEXT REFERENCES books (id) NOT NULL,
				kind TEXT NOT NULL,
				borrow_date TIMESTAMPTZ NOT NULL,
				due_date TIMESTAMPTZ NOT NULL,
				return_date TIMESTAMPTZ,
				fine_amount INTEGER NOT NULL DEFAULT 0,
				renewal_count INTEGER NOT NULL DEFAULT 0
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_loans_user_id ON loans (user_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_loans_book_id ON loans (book_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		// One active loan per (user, book). The ledger checks this too; the
		// index makes the invariant hold even under concurrent borrows.
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_loans_active_user_book ON loans (user_id, book_id) WHERE return_date IS NULL`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("DROP TABLE IF EXISTS loans")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS users")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS books")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}

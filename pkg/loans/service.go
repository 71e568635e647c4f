// Package loans owns the loan ledger. Every change to a loan row and its
// book's availability counter happens here, inside a single database
// transaction, so the pair can never be observed out of sync.
package loans

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf/pkg/books"
	"github.com/openshelf/openshelf/pkg/errcodes"
	"github.com/openshelf/openshelf/pkg/fines"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

type RetrieveLoanOptions struct {
	ID *string
}

type ListLoansOptions struct {
	Limit  *int
	Offset *int
	UserID *string
	BookID *string
	// Status filters by the derived status (borrowed, overdue, returned),
	// evaluated against the clock at query time.
	Status *string
	// Active filters on whether the book is still out, overdue or not.
	Active *bool

	includeTotal bool
}

// ReturnResult is the outcome of a return: the closed loan and the fine it
// finalized. The fine is computed exactly once, here.
type ReturnResult struct {
	Loan       *models.Loan `json:"loan"`
	FineAmount int          `json:"fine_amount"`
}

type Service struct {
	db     *bun.DB
	policy fines.Policy

	// now is swappable so tests can pin the clock.
	now func() time.Time
}

func NewService(db *bun.DB, policy fines.Policy) *Service {
	return &Service{db: db, policy: policy, now: time.Now}
}

// Policy returns the lending policy this ledger applies.
func (svc *Service) Policy() fines.Policy {
	return svc.policy
}

// Borrow checks the book out to the user. The availability decrement and
// the loan insert commit together or not at all.
func (svc *Service) Borrow(ctx context.Context, bookID, userID string) (*models.Loan, error) {
	now := svc.now()

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	loan := &models.Loan{
		ID:         id.String(),
		UserID:     userID,
		BookID:     bookID,
		Kind:       models.LoanKindBorrow,
		BorrowDate: now,
		DueDate:    svc.policy.DueDate(now),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.
			NewSelect().
			Model((*models.User)(nil)).
			Where("id = ?", userID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			return errcodes.NotFound("User")
		}

		duplicate, err := tx.
			NewSelect().
			Model((*models.Loan)(nil)).
			Where("user_id = ?", userID).
			Where("book_id = ?", bookID).
			Where("return_date IS NULL").
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if duplicate {
			return errcodes.DuplicateActiveLoan()
		}

		ok, err := books.TryDecrementCopies(ctx, tx, bookID)
		if err != nil {
			return errors.WithStack(err)
		}
		if !ok {
			exists, err := tx.
				NewSelect().
				Model((*models.Book)(nil)).
				Where("id = ?", bookID).
				Exists(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			if !exists {
				return errcodes.NotFound("Book")
			}
			return errcodes.BookUnavailable()
		}

		_, err = tx.
			NewInsert().
			Model(loan).
			Returning("*").
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return loan, nil
}

// Return closes the loan: sets the return date, finalizes the fine, puts
// the copy back on the shelf, and adds any fine to the user's balance.
func (svc *Service) Return(ctx context.Context, loanID string) (*ReturnResult, error) {
	now := svc.now()
	log := logger.FromContext(ctx)

	loan := &models.Loan{}
	fineAmount := 0

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.
			NewSelect().
			Model(loan).
			Where("l.id = ?", loanID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Loan")
			}
			return errors.WithStack(err)
		}

		if loan.ReturnDate != nil {
			return errcodes.AlreadyReturned()
		}

		fineAmount = svc.policy.Fine(loan.DueDate, now)
		loan.ReturnDate = &now
		loan.FineAmount = fineAmount
		loan.UpdatedAt = now

		_, err = tx.
			NewUpdate().
			Model(loan).
			Column("return_date", "fine_amount", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		ok, err := books.IncrementCopies(ctx, tx, loan.BookID)
		if err != nil {
			return errors.WithStack(err)
		}
		if !ok {
			// The copy counters and the loan records have drifted. The
			// return still succeeds; the counter stays clamped at
			// copies_total.
			log.Warn("availability increment would exceed copies_total", logger.Data{
				"book_id": loan.BookID,
				"loan_id": loan.ID,
			})
		}

		if fineAmount > 0 {
			_, err = tx.
				NewUpdate().
				Model((*models.User)(nil)).
				Set("outstanding_fines = outstanding_fines + ?", fineAmount).
				Set("updated_at = CURRENT_TIMESTAMP").
				Where("id = ?", loan.UserID).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &ReturnResult{Loan: loan, FineAmount: fineAmount}, nil
}

// Renew extends the due date by one loan period. Loans that are returned,
// already overdue, or at the renewal cap can't be renewed.
func (svc *Service) Renew(ctx context.Context, loanID string) (*models.Loan, error) {
	now := svc.now()

	loan := &models.Loan{}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.
			NewSelect().
			Model(loan).
			Where("l.id = ?", loanID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Loan")
			}
			return errors.WithStack(err)
		}

		if loan.ReturnDate != nil {
			return errcodes.AlreadyReturned()
		}
		if svc.policy.IsOverdue(loan.DueDate, now) {
			return errcodes.AlreadyOverdue()
		}
		if loan.RenewalCount >= svc.policy.MaxRenewals {
			return errcodes.MaxRenewalsReached()
		}

		loan.DueDate = loan.DueDate.AddDate(0, 0, svc.policy.LoanPeriodDays)
		loan.RenewalCount++
		loan.UpdatedAt = now

		_, err = tx.
			NewUpdate().
			Model(loan).
			Column("due_date", "renewal_count", "updated_at").
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return loan, nil
}

func (svc *Service) RetrieveLoan(ctx context.Context, opts RetrieveLoanOptions) (*models.Loan, error) {
	loan := &models.Loan{}

	q := svc.db.
		NewSelect().
		Model(loan).
		Relation("Book").
		Relation("User")

	if opts.ID != nil {
		q = q.Where("l.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Loan")
		}
		return nil, errors.WithStack(err)
	}

	return loan, nil
}

func (svc *Service) ListLoans(ctx context.Context, opts ListLoansOptions) ([]*models.Loan, error) {
	l, _, err := svc.listLoansWithTotal(ctx, opts)
	return l, errors.WithStack(err)
}

func (svc *Service) ListLoansWithTotal(ctx context.Context, opts ListLoansOptions) ([]*models.Loan, int, error) {
	opts.includeTotal = true
	return svc.listLoansWithTotal(ctx, opts)
}

func (svc *Service) listLoansWithTotal(ctx context.Context, opts ListLoansOptions) ([]*models.Loan, int, error) {
	loans := []*models.Loan{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&loans).
		Relation("Book").
		Relation("User").
		Order("l.borrow_date DESC").
		Order("l.id ASC")

	if opts.UserID != nil {
		q = q.Where("l.user_id = ?", *opts.UserID)
	}
	if opts.BookID != nil {
		q = q.Where("l.book_id = ?", *opts.BookID)
	}
	if opts.Active != nil {
		if *opts.Active {
			q = q.Where("l.return_date IS NULL")
		} else {
			q = q.Where("l.return_date IS NOT NULL")
		}
	}
	if opts.Status != nil {
		// Status is derived, so the filter derives it the same way.
		switch *opts.Status {
		case models.LoanStatusReturned:
			q = q.Where("l.return_date IS NOT NULL")
		case models.LoanStatusBorrowed:
			q = q.Where("l.return_date IS NULL").Where("l.due_date >= ?", svc.now())
		case models.LoanStatusOverdue:
			q = q.Where("l.return_date IS NULL").Where("l.due_date < ?", svc.now())
		}
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return loans, total, nil
}

// ListOverdue returns all loans past due and still out, most overdue first.
func (svc *Service) ListOverdue(ctx context.Context) ([]*models.Loan, error) {
	loans := []*models.Loan{}

	err := svc.db.
		NewSelect().
		Model(&loans).
		Relation("Book").
		Relation("User").
		Where("l.return_date IS NULL").
		Where("l.due_date < ?", svc.now()).
		Order("l.due_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return loans, nil
}

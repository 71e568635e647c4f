package books

import (
	"context"

	"github.com/openshelf/openshelf/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// The availability counters guard the 0 <= copies_available <= copies_total
// invariant. Both operations are conditional updates so the check and the
// mutation are a single statement; two borrows racing for the last copy
// resolve in the database, and the loser sees zero rows affected. They take
// a bun.IDB so the loan ledger can run them inside its own transaction.

// TryDecrementCopies takes one copy off the shelf. It reports false when no
// copies are available (or the book doesn't exist); callers decide which.
func TryDecrementCopies(ctx context.Context, db bun.IDB, bookID string) (bool, error) {
	res, err := db.
		NewUpdate().
		Model((*models.Book)(nil)).
		Set("copies_available = copies_available - 1").
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", bookID).
		Where("copies_available > 0").
		Exec(ctx)
	if err != nil {
		return false, errors.WithStack(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.WithStack(err)
	}
	return n > 0, nil
}

// IncrementCopies puts a copy back on the shelf. It reports false when the
// increment would exceed copies_total, which means the counters and the
// loan records have drifted; callers should log that as a data-integrity
// violation rather than fail the return.
func IncrementCopies(ctx context.Context, db bun.IDB, bookID string) (bool, error) {
	res, err := db.
		NewUpdate().
		Model((*models.Book)(nil)).
		Set("copies_available = copies_available + 1").
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", bookID).
		Where("copies_available < copies_total").
		Exec(ctx)
	if err != nil {
		return false, errors.WithStack(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.WithStack(err)
	}
	return n > 0, nil
}

package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf/pkg/errcodes"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveBookOptions struct {
	ID *string
}

type ListBooksOptions struct {
	Limit    *int
	Offset   *int
	Category *string
	Search   *string

	includeTotal bool
}

type UpdateBookOptions struct {
	Columns []string
}

// CategoryStats summarizes one category's holdings. BorrowedCopies is the
// number of copies currently out, derived from the availability counters.
type CategoryStats struct {
	Category        string `json:"category"`
	TotalBooks      int    `json:"total_books"`
	TotalCopies     int    `json:"total_copies"`
	BorrowedCopies  int    `json:"borrowed_copies"`
	AvailableCopies int    `json:"available_copies"`
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt

	if book.ID == "" {
		id, err := uuid.NewRandom()
		if err != nil {
			return errors.WithStack(err)
		}
		book.ID = id.String()
	}
	if book.Tags == nil {
		book.Tags = models.Tags{}
	}
	if book.CopiesTotal == 0 {
		book.CopiesTotal = 1
	}
	// New titles start fully on the shelf.
	book.CopiesAvailable = book.CopiesTotal

	_, err := svc.db.
		NewInsert().
		Model(book).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book)

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	b, _, err := svc.listBooksWithTotal(ctx, opts)
	return b, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&books).
		Order("b.title ASC")

	if opts.Category != nil {
		q = q.Where("b.category = ?", *opts.Category)
	}
	if opts.Search != nil && *opts.Search != "" {
		search := "%" + *opts.Search + "%"
		q = q.Where("(b.title LIKE ? OR b.author LIKE ?)", search, search)
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

	return books, total, nil
}

func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	book.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(book).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Book")
		}
		return errors.WithStack(err)
	}

	return nil
}

// ListPopular returns the most popular books, highest popularity first.
func (svc *Service) ListPopular(ctx context.Context, limit int) ([]*models.Book, error) {
	books := []*models.Book{}

	err := svc.db.
		NewSelect().
		Model(&books).
		Order("b.popularity DESC").
		Order("b.rating DESC").
		Order("b.id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return books, nil
}

// ListCategoryStats aggregates holdings per category.
func (svc *Service) ListCategoryStats(ctx context.Context) ([]*CategoryStats, error) {
	stats := []*CategoryStats{}

	err := svc.db.
		NewSelect().
		Model((*models.Book)(nil)).
		ColumnExpr("b.category AS category").
		ColumnExpr("COUNT(*) AS total_books").
		ColumnExpr("SUM(b.copies_total) AS total_copies").
		ColumnExpr("SUM(b.copies_total - b.copies_available) AS borrowed_copies").
		ColumnExpr("SUM(b.copies_available) AS available_copies").
		GroupExpr("b.category").
		OrderExpr("b.category ASC").
		Scan(ctx, &stats)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return stats, nil
}

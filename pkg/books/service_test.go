package books

import (
	"context"
	"database/sql"
	"testing"

	"github.com/openshelf/openshelf/pkg/migrations"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func newBook(title, category string, copies int) *models.Book {
	return &models.Book{
		Title:       title,
		Author:      "Some Author",
		Category:    category,
		Year:        2020,
		CopiesTotal: copies,
	}
}

func TestService_CreateBook(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := newBook("Clean Architecture", "Software", 3)
	book.Tags = models.Tags{"design", "architecture"}
	err := svc.CreateBook(ctx, book)
	require.NoError(t, err)

	assert.NotEmpty(t, book.ID)
	assert.Equal(t, 3, book.CopiesTotal)
	assert.Equal(t, 3, book.CopiesAvailable)
	assert.NotZero(t, book.CreatedAt)

	fetched, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	assert.Equal(t, book.Title, fetched.Title)
	assert.Equal(t, models.Tags{"design", "architecture"}, fetched.Tags)
}

func TestService_CreateBook_DefaultsToOneCopy(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := newBook("Single Copy", "Fiction", 0)
	err := svc.CreateBook(ctx, book)
	require.NoError(t, err)

	assert.Equal(t, 1, book.CopiesTotal)
	assert.Equal(t, 1, book.CopiesAvailable)
}

func TestService_RetrieveBook_NotFound(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	id := "missing"
	_, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Book not found")
}

func TestService_ListBooks(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	require.NoError(t, svc.CreateBook(ctx, newBook("The Martian", "Science Fiction", 2)))
	require.NoError(t, svc.CreateBook(ctx, newBook("Dune", "Science Fiction", 1)))
	require.NoError(t, svc.CreateBook(ctx, newBook("A Brief History of Time", "Science", 1)))

	t.Run("filters by category", func(tt *testing.T) {
		category := "Science Fiction"
		books, total, err := svc.ListBooksWithTotal(ctx, ListBooksOptions{Category: &category})
		require.NoError(tt, err)
		assert.Equal(tt, 2, total)
		require.Len(tt, books, 2)
		// Ordered by title.
		assert.Equal(tt, "Dune", books[0].Title)
		assert.Equal(tt, "The Martian", books[1].Title)
	})

	t.Run("searches title and author", func(tt *testing.T) {
		search := "martian"
		books, err := svc.ListBooks(ctx, ListBooksOptions{Search: &search})
		require.NoError(tt, err)
		require.Len(tt, books, 1)
		assert.Equal(tt, "The Martian", books[0].Title)
	})

	t.Run("paginates", func(tt *testing.T) {
		limit := 2
		offset := 2
		books, total, err := svc.ListBooksWithTotal(ctx, ListBooksOptions{Limit: &limit, Offset: &offset})
		require.NoError(tt, err)
		assert.Equal(tt, 3, total)
		assert.Len(tt, books, 1)
	})
}

func TestService_UpdateBook(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := newBook("Draft Title", "Fiction", 1)
	require.NoError(t, svc.CreateBook(ctx, book))

	book.Title = "Final Title"
	book.Rating = 4.5
	err := svc.UpdateBook(ctx, book, UpdateBookOptions{Columns: []string{"title", "rating"}})
	require.NoError(t, err)

	fetched, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	assert.Equal(t, "Final Title", fetched.Title)
	assert.Equal(t, 4.5, fetched.Rating)
}

func TestService_ListPopular(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	low := newBook("Low", "Fiction", 1)
	low.Popularity = 10
	high := newBook("High", "Fiction", 1)
	high.Popularity = 90
	mid := newBook("Mid", "Fiction", 1)
	mid.Popularity = 50

	for _, b := range []*models.Book{low, high, mid} {
		require.NoError(t, svc.CreateBook(ctx, b))
	}

	books, err := svc.ListPopular(ctx, 2)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "High", books[0].Title)
	assert.Equal(t, "Mid", books[1].Title)
}

func TestService_ListCategoryStats(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	require.NoError(t, svc.CreateBook(ctx, newBook("Fiction One", "Fiction", 3)))
	require.NoError(t, svc.CreateBook(ctx, newBook("Fiction Two", "Fiction", 2)))
	require.NoError(t, svc.CreateBook(ctx, newBook("Science One", "Science", 1)))

	// Simulate one Fiction copy out on loan.
	fictionOne, err := svc.ListBooks(ctx, ListBooksOptions{})
	require.NoError(t, err)
	ok, err := TryDecrementCopies(ctx, db, fictionOne[0].ID)
	require.NoError(t, err)
	require.True(t, ok)

	stats, err := svc.ListCategoryStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byCategory := map[string]*CategoryStats{}
	for _, s := range stats {
		byCategory[s.Category] = s
	}

	fiction := byCategory["Fiction"]
	require.NotNil(t, fiction)
	assert.Equal(t, 2, fiction.TotalBooks)
	assert.Equal(t, 5, fiction.TotalCopies)
	assert.Equal(t, 1, fiction.BorrowedCopies)
	assert.Equal(t, 4, fiction.AvailableCopies)

	science := byCategory["Science"]
	require.NotNil(t, science)
	assert.Equal(t, 1, science.TotalBooks)
	assert.Equal(t, 0, science.BorrowedCopies)
}

func TestAvailabilityCounters(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := newBook("Contested", "Fiction", 1)
	require.NoError(t, svc.CreateBook(ctx, book))

	t.Run("decrement stops at zero", func(tt *testing.T) {
		ok, err := TryDecrementCopies(ctx, db, book.ID)
		require.NoError(tt, err)
		assert.True(tt, ok)

		ok, err = TryDecrementCopies(ctx, db, book.ID)
		require.NoError(tt, err)
		assert.False(tt, ok)
	})

	t.Run("increment stops at copies_total", func(tt *testing.T) {
		ok, err := IncrementCopies(ctx, db, book.ID)
		require.NoError(tt, err)
		assert.True(tt, ok)

		ok, err = IncrementCopies(ctx, db, book.ID)
		require.NoError(tt, err)
		assert.False(tt, ok)
	})

	t.Run("unknown book reports false", func(tt *testing.T) {
		ok, err := TryDecrementCopies(ctx, db, "missing")
		require.NoError(tt, err)
		assert.False(tt, ok)
	})
}

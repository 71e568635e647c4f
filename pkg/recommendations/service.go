// Package recommendations derives reading suggestions and circulation
// analytics from the loan ledger. Everything here is read-only over the
// books, users, and loans tables.
package recommendations

import (
	"context"
	"database/sql"
	"math"
	"sort"
	"time"

	"github.com/openshelf/openshelf/pkg/errcodes"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Scoring weights for user preference matching.
const (
	categoryWeight   = 3.0
	tagWeight        = 2.0
	popularityWeight = 0.1
	ratingWeight     = 2.0
)

// Scoring weights for popularity prediction.
const (
	recencyWindowYears = 10
	recencyWeight      = 5.0
	predictionRating   = 10.0
	categoryAvgWeight  = 0.3
)

// Demand thresholds for inventory suggestions.
const (
	highDemandRatio = 0.8
	lowDemandRatio  = 0.2
	minExcessCopies = 2
)

type Recommendation struct {
	Book  *models.Book `json:"book"`
	Score float64      `json:"score"`
}

type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type BorrowingPatterns struct {
	DailyBorrows    []KeyCount `json:"daily_borrows"`
	CategoryTrends  []KeyCount `json:"category_trends"`
	UserActivity    []KeyCount `json:"user_activity"`
	OverduePatterns []KeyCount `json:"overdue_patterns"`
}

type InventorySuggestion struct {
	Type     string `json:"type"`
	BookID   string `json:"book_id"`
	Title    string `json:"title"`
	Reason   string `json:"reason"`
	Priority string `json:"priority"`
}

type Service struct {
	db *bun.DB

	// now is swappable so tests can pin the clock.
	now func() time.Time
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Recommend scores every available book against the user's borrowing
// history and returns the top matches. A user with no history still gets
// results, ranked purely by popularity and rating.
func (svc *Service) Recommend(ctx context.Context, userID string, limit int) ([]*Recommendation, error) {
	exists, err := svc.db.
		NewSelect().
		Model((*models.User)(nil)).
		Where("id = ?", userID).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !exists {
		return nil, errcodes.NotFound("User")
	}

	loans := []*models.Loan{}
	err = svc.db.
		NewSelect().
		Model(&loans).
		Relation("Book").
		Where("l.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Build the preference profile from the full history; returned loans
	// count toward taste just as much as active ones.
	categoryCounts := map[string]int{}
	tagCounts := map[string]int{}
	activeBookIDs := map[string]bool{}

	for _, loan := range loans {
		if loan.Book != nil {
			categoryCounts[loan.Book.Category]++
			for _, tag := range loan.Book.Tags {
				tagCounts[tag]++
			}
		}
		if loan.Active() {
			activeBookIDs[loan.BookID] = true
		}
	}

	books := []*models.Book{}
	err = svc.db.
		NewSelect().
		Model(&books).
		Where("copies_available > 0").
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	recs := []*Recommendation{}
	for _, book := range books {
		if activeBookIDs[book.ID] {
			continue
		}

		score := float64(categoryCounts[book.Category]) * categoryWeight
		for _, tag := range book.Tags {
			score += float64(tagCounts[tag]) * tagWeight
		}
		score += float64(book.Popularity) * popularityWeight
		score += book.Rating * ratingWeight

		recs = append(recs, &Recommendation{Book: book, Score: score})
	}

	// Ties break on book ID so identical scores order the same way every
	// time.
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Book.ID < recs[j].Book.ID
	})

	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}

	return recs, nil
}

// PredictPopularity scores how likely a book is to circulate, on a 0-100
// scale, from its recency, rating, and its category's average popularity.
func (svc *Service) PredictPopularity(ctx context.Context, bookID string) (float64, error) {
	book := &models.Book{}
	err := svc.db.
		NewSelect().
		Model(book).
		Where("id = ?", bookID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, errcodes.NotFound("Book")
		}
		return 0, errors.WithStack(err)
	}

	var avgCategoryPopularity float64
	err = svc.db.
		NewSelect().
		Model((*models.Book)(nil)).
		ColumnExpr("COALESCE(AVG(popularity), 0)").
		Where("category = ?", book.Category).
		Scan(ctx, &avgCategoryPopularity)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	currentYear := svc.now().Year()
	yearScore := math.Max(0, float64(recencyWindowYears-(currentYear-book.Year)))

	score := yearScore * recencyWeight
	score += book.Rating * predictionRating
	score += avgCategoryPopularity * categoryAvgWeight

	return math.Min(100, math.Max(0, score)), nil
}

// AnalyzePatterns aggregates the whole ledger into borrow-volume-by-day,
// category demand, per-user activity, and per-user overdue counts. Each
// slice is sorted by key so repeated calls over the same data produce the
// same snapshot.
func (svc *Service) AnalyzePatterns(ctx context.Context) (*BorrowingPatterns, error) {
	now := svc.now()

	loans := []*models.Loan{}
	err := svc.db.
		NewSelect().
		Model(&loans).
		Relation("Book").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	daily := map[string]int{}
	categories := map[string]int{}
	users := map[string]int{}
	overdue := map[string]int{}

	for _, loan := range loans {
		daily[loan.BorrowDate.Format("2006-01-02")]++
		if loan.Book != nil {
			categories[loan.Book.Category]++
		}
		users[loan.UserID]++
		if loan.Status(now) == models.LoanStatusOverdue {
			overdue[loan.UserID]++
		}
	}

	return &BorrowingPatterns{
		DailyBorrows:    sortedCounts(daily),
		CategoryTrends:  sortedCounts(categories),
		UserActivity:    sortedCounts(users),
		OverduePatterns: sortedCounts(overdue),
	}, nil
}

// SuggestInventory flags books whose stock level doesn't match historical
// demand. Demand ratio is lifetime borrow count over total copies.
func (svc *Service) SuggestInventory(ctx context.Context) ([]*InventorySuggestion, error) {
	books := []*models.Book{}
	err := svc.db.
		NewSelect().
		Model(&books).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	type bookCount struct {
		BookID string `bun:"book_id"`
		Count  int    `bun:"count"`
	}
	counts := []bookCount{}
	err = svc.db.
		NewSelect().
		Model((*models.Loan)(nil)).
		ColumnExpr("book_id").
		ColumnExpr("COUNT(*) AS count").
		Group("book_id").
		Scan(ctx, &counts)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	borrowCounts := map[string]int{}
	for _, c := range counts {
		borrowCounts[c.BookID] = c.Count
	}

	suggestions := []*InventorySuggestion{}
	for _, book := range books {
		if book.CopiesTotal == 0 {
			continue
		}
		demandRatio := float64(borrowCounts[book.ID]) / float64(book.CopiesTotal)

		switch {
		case demandRatio > highDemandRatio && book.CopiesAvailable == 0:
			suggestions = append(suggestions, &InventorySuggestion{
				Type:     "increase_stock",
				BookID:   book.ID,
				Title:    book.Title,
				Reason:   "High demand, frequently unavailable",
				Priority: "high",
			})
		case demandRatio < lowDemandRatio && book.CopiesTotal > minExcessCopies:
			suggestions = append(suggestions, &InventorySuggestion{
				Type:     "reduce_stock",
				BookID:   book.ID,
				Title:    book.Title,
				Reason:   "Low demand, excess inventory",
				Priority: "low",
			})
		}
	}

	return suggestions, nil
}

func sortedCounts(m map[string]int) []KeyCount {
	out := make([]KeyCount, 0, len(m))
	for k, v := range m {
		out = append(out, KeyCount{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

package recommendations

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/pkg/binder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setupTestHandler(t *testing.T) (*handler, *bun.DB, *echo.Echo) {
	t.Helper()

	db := newTestDB(t)
	h := &handler{recommendationService: newFixedService(db)}

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b

	return h, db, e
}

func TestHandler_Recommend(t *testing.T) {
	t.Parallel()

	h, db, e := setupTestHandler(t)
	user := seedUser(t, db, "u1", "handler@example.com")
	seedBook(t, db, bookSeed{ID: "b1", Title: "Available", Category: "Fiction", Year: 2020, CopiesTotal: 1, CopiesAvailable: 1, Rating: 4, Popularity: 60})

	req := httptest.NewRequest(http.MethodGet, "/recommendations?user_id="+user.ID, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.recommend(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := struct {
		Recommendations []*Recommendation `json:"recommendations"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "b1", resp.Recommendations[0].Book.ID)
	assert.Greater(t, resp.Recommendations[0].Score, 0.0)
}

func TestHandler_Recommend_RequiresUserID(t *testing.T) {
	t.Parallel()

	h, _, e := setupTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/recommendations", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.recommend(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"user_id" is required`)
}

func TestHandler_PredictPopularity(t *testing.T) {
	t.Parallel()

	h, db, e := setupTestHandler(t)
	seedBook(t, db, bookSeed{ID: "b1", Title: "Predicted", Category: "Fiction", Year: 2022, CopiesTotal: 1, CopiesAvailable: 1, Rating: 3, Popularity: 40})

	req := httptest.NewRequest(http.MethodGet, "/books/b1/popularity-prediction", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("b1")

	err := h.predictPopularity(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := struct {
		BookID string  `json:"book_id"`
		Score  float64 `json:"score"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "b1", resp.BookID)
	assert.GreaterOrEqual(t, resp.Score, 0.0)
	assert.LessOrEqual(t, resp.Score, 100.0)
}

func TestHandler_Patterns(t *testing.T) {
	t.Parallel()

	h, _, e := setupTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/analytics/patterns", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.patterns(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	patterns := BorrowingPatterns{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &patterns))
	assert.Empty(t, patterns.DailyBorrows)
}

func TestHandler_Inventory(t *testing.T) {
	t.Parallel()

	h, db, e := setupTestHandler(t)
	seedBook(t, db, bookSeed{ID: "cold", Title: "Overstocked", Category: "Fiction", Year: 2015, CopiesTotal: 4, CopiesAvailable: 4})

	req := httptest.NewRequest(http.MethodGet, "/analytics/inventory", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.inventory(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	suggestions := []*InventorySuggestion{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &suggestions))
	require.Len(t, suggestions, 1)
	assert.Equal(t, "reduce_stock", suggestions[0].Type)
}

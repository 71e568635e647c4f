package recommendations

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	recommendationService *Service
}

func (h *handler) recommend(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := RecommendQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	recs, err := h.recommendationService.Recommend(ctx, params.UserID, params.Limit)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Recommendations []*Recommendation `json:"recommendations"`
	}{recs}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) predictPopularity(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	score, err := h.recommendationService.PredictPopularity(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		BookID string  `json:"book_id"`
		Score  float64 `json:"score"`
	}{id, score}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) patterns(c echo.Context) error {
	ctx := c.Request().Context()

	patterns, err := h.recommendationService.AnalyzePatterns(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, patterns))
}

func (h *handler) inventory(c echo.Context) error {
	ctx := c.Request().Context()

	suggestions, err := h.recommendationService.SuggestInventory(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, suggestions))
}

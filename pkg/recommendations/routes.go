package recommendations

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers recommendation and analytics routes. These span
// multiple top-level paths, so they attach to the echo instance directly.
func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	recommendationService := NewService(db)

	h := &handler{
		recommendationService: recommendationService,
	}

	e.GET("/recommendations", h.recommend)
	e.GET("/books/:id/popularity-prediction", h.predictPopularity)
	e.GET("/analytics/patterns", h.patterns)
	e.GET("/analytics/inventory", h.inventory)
}

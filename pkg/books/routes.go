package books

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers book routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	bookService := NewService(db)

	h := &handler{
		bookService: bookService,
	}

	g.GET("", h.list)
	g.POST("", h.create)
	// Static paths before the :id wildcard.
	g.GET("/popular", h.popular)
	g.GET("/category-stats", h.categoryStats)
	g.GET("/:id", h.retrieve)
	g.POST("/:id", h.update)
}

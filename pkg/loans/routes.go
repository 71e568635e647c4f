package loans

import (
	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/pkg/fines"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers loan routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, policy fines.Policy) {
	loanService := NewService(db, policy)

	h := &handler{
		loanService: loanService,
	}

	g.GET("", h.list)
	g.POST("", h.borrow)
	// Static paths before the :id wildcard.
	g.GET("/overdue", h.overdue)
	g.GET("/:id", h.retrieve)
	g.POST("/:id/return", h.returnLoan)
	g.POST("/:id/renew", h.renew)
}

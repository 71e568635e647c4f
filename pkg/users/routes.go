package users

import (
	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/pkg/fines"
	"github.com/openshelf/openshelf/pkg/loans"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers user routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, policy fines.Policy) {
	userService := NewService(db)
	loanService := loans.NewService(db, policy)

	h := &handler{
		userService: userService,
		loanService: loanService,
	}

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.retrieve)
	g.POST("/:id", h.update)
	g.GET("/:id/loans", h.userLoans)
	g.POST("/:id/fines/pay", h.payFine)
}

package loans

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/pkg/errors"
)

type handler struct {
	loanService *Service
}

func (h *handler) borrow(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := BorrowPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	loan, err := h.loanService.Borrow(ctx, params.BookID, params.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, loan))
}

func (h *handler) returnLoan(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	result, err := h.loanService.Return(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, result))
}

func (h *handler) renew(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	loan, err := h.loanService.Renew(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, loan))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	loan, err := h.loanService.RetrieveLoan(ctx, RetrieveLoanOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, loan))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListLoansQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	loans, total, err := h.loanService.ListLoansWithTotal(ctx, ListLoansOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		UserID: params.UserID,
		BookID: params.BookID,
		Status: params.Status,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Loans []*models.Loan `json:"loans"`
		Total int            `json:"total"`
	}{loans, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) overdue(c echo.Context) error {
	ctx := c.Request().Context()

	loans, err := h.loanService.ListOverdue(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, loans))
}

package users

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/pkg/loans"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/pkg/errors"
)

type handler struct {
	userService *Service
	loanService *loans.Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	user, err := h.userService.RetrieveUser(ctx, RetrieveUserOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListUsersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	users, total, err := h.userService.ListUsersWithTotal(ctx, ListUsersOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		Role:   params.Role,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Users []*models.User `json:"users"`
		Total int            `json:"total"`
	}{users, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := CreateUserPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user := &models.User{
		Name:       params.Name,
		Email:      params.Email,
		Role:       params.Role,
		Department: params.Department,
	}

	if err := h.userService.CreateUser(ctx, user); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, user))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	// Bind params.
	params := UpdateUserPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// Fetch the user.
	user, err := h.userService.RetrieveUser(ctx, RetrieveUserOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateUserOptions{Columns: []string{}}

	if params.Name != nil && *params.Name != user.Name {
		user.Name = *params.Name
		opts.Columns = append(opts.Columns, "name")
	}
	if params.Email != nil && *params.Email != user.Email {
		user.Email = *params.Email
		opts.Columns = append(opts.Columns, "email")
	}
	if params.Role != nil && *params.Role != user.Role {
		user.Role = *params.Role
		opts.Columns = append(opts.Columns, "role")
	}
	if params.Department != nil && *params.Department != user.Department {
		user.Department = *params.Department
		opts.Columns = append(opts.Columns, "department")
	}

	// Update the model.
	err = h.userService.UpdateUser(ctx, user, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}

// userLoans lists a user's active loans, overdue ones included.
func (h *handler) userLoans(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	// 404 for unknown users rather than an empty list.
	if _, err := h.userService.RetrieveUser(ctx, RetrieveUserOptions{ID: &id}); err != nil {
		return errors.WithStack(err)
	}

	active := true
	userLoans, err := h.loanService.ListLoans(ctx, loans.ListLoansOptions{
		UserID: &id,
		Active: &active,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, userLoans))
}

func (h *handler) payFine(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	// Bind params.
	params := PayFinePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.PayFine(ctx, id, params.Amount)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		AmountPaid    int `json:"amount_paid"`
		RemainingFine int `json:"remaining_fine"`
	}{params.Amount, user.OutstandingFines}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

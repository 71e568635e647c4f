package users

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf/pkg/errcodes"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveUserOptions struct {
	ID    *string
	Email *string
}

type ListUsersOptions struct {
	Limit  *int
	Offset *int
	Role   *string

	includeTotal bool
}

type UpdateUserOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = user.CreatedAt

	if user.ID == "" {
		id, err := uuid.NewRandom()
		if err != nil {
			return errors.WithStack(err)
		}
		user.ID = id.String()
	}
	if user.Role == "" {
		user.Role = models.RoleStudent
	}

	_, err := svc.db.
		NewInsert().
		Model(user).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveUser(ctx context.Context, opts RetrieveUserOptions) (*models.User, error) {
	user := &models.User{}

	q := svc.db.
		NewSelect().
		Model(user)

	if opts.ID != nil {
		q = q.Where("u.id = ?", *opts.ID)
	}
	if opts.Email != nil {
		q = q.Where("u.email = ? COLLATE NOCASE", *opts.Email)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("User")
		}
		return nil, errors.WithStack(err)
	}

	return user, nil
}

func (svc *Service) ListUsers(ctx context.Context, opts ListUsersOptions) ([]*models.User, error) {
	u, _, err := svc.listUsersWithTotal(ctx, opts)
	return u, errors.WithStack(err)
}

func (svc *Service) ListUsersWithTotal(ctx context.Context, opts ListUsersOptions) ([]*models.User, int, error) {
	opts.includeTotal = true
	return svc.listUsersWithTotal(ctx, opts)
}

func (svc *Service) listUsersWithTotal(ctx context.Context, opts ListUsersOptions) ([]*models.User, int, error) {
	users := []*models.User{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&users).
		Order("u.name ASC")

	if opts.Role != nil {
		q = q.Where("u.role = ?", *opts.Role)
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return users, total, nil
}

func (svc *Service) UpdateUser(ctx context.Context, user *models.User, opts UpdateUserOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	user.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(user).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("User")
		}
		return errors.WithStack(err)
	}

	return nil
}

// PayFine records a fine payment. The conditional update keeps the balance
// from ever going negative, even with concurrent payments.
func (svc *Service) PayFine(ctx context.Context, userID string, amount int) (*models.User, error) {
	res, err := svc.db.
		NewUpdate().
		Model((*models.User)(nil)).
		Set("outstanding_fines = outstanding_fines - ?", amount).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", userID).
		Where("outstanding_fines >= ?", amount).
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if n == 0 {
		// Either the user doesn't exist or the amount exceeds the balance.
		if _, err := svc.RetrieveUser(ctx, RetrieveUserOptions{ID: &userID}); err != nil {
			return nil, err
		}
		return nil, errors.WithStack(errcodes.ValidationError(
			"Amount exceeds the outstanding fine balance.",
		))
	}

	return svc.RetrieveUser(ctx, RetrieveUserOptions{ID: &userID})
}

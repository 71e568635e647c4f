package users

import (
	"context"
	"database/sql"
	"testing"

	"github.com/openshelf/openshelf/pkg/errcodes"
	"github.com/openshelf/openshelf/pkg/migrations"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func newUser(name, email string) *models.User {
	return &models.User{
		Name:       name,
		Email:      email,
		Department: "Engineering",
	}
}

func TestService_CreateUser(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := newUser("Asha Rao", "asha@example.com")
	err := svc.CreateUser(ctx, user)
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Equal(t, 0, user.OutstandingFines)
	assert.NotZero(t, user.CreatedAt)
}

func TestService_RetrieveUser(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := newUser("Sam Lee", "sam@example.com")
	require.NoError(t, svc.CreateUser(ctx, user))

	t.Run("by id", func(tt *testing.T) {
		fetched, err := svc.RetrieveUser(ctx, RetrieveUserOptions{ID: &user.ID})
		require.NoError(tt, err)
		assert.Equal(tt, user.Email, fetched.Email)
	})

	t.Run("by email, case-insensitively", func(tt *testing.T) {
		email := "SAM@example.com"
		fetched, err := svc.RetrieveUser(ctx, RetrieveUserOptions{Email: &email})
		require.NoError(tt, err)
		assert.Equal(tt, user.ID, fetched.ID)
	})

	t.Run("not found", func(tt *testing.T) {
		id := "missing"
		_, err := svc.RetrieveUser(ctx, RetrieveUserOptions{ID: &id})
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), "User not found")
	})
}

func TestService_ListUsers(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	student := newUser("Student One", "student@example.com")
	require.NoError(t, svc.CreateUser(ctx, student))

	admin := newUser("Admin One", "admin@example.com")
	admin.Role = models.RoleAdmin
	require.NoError(t, svc.CreateUser(ctx, admin))

	role := models.RoleAdmin
	users, total, err := svc.ListUsersWithTotal(ctx, ListUsersOptions{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, admin.ID, users[0].ID)
	assert.True(t, users[0].IsAdmin())
}

func TestService_PayFine(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	setup := func(tt *testing.T, fines int) (*Service, *models.User) {
		db := newTestDB(tt)
		svc := NewService(db)

		user := newUser("Fined User", "fined@example.com")
		require.NoError(tt, svc.CreateUser(ctx, user))

		if fines > 0 {
			_, err := db.NewUpdate().
				Model((*models.User)(nil)).
				Set("outstanding_fines = ?", fines).
				Where("id = ?", user.ID).
				Exec(ctx)
			require.NoError(tt, err)
		}

		return svc, user
	}

	t.Run("partial payment reduces the balance", func(tt *testing.T) {
		svc, user := setup(tt, 10)

		updated, err := svc.PayFine(ctx, user.ID, 4)
		require.NoError(tt, err)
		assert.Equal(tt, 6, updated.OutstandingFines)
	})

	t.Run("full payment clears the balance", func(tt *testing.T) {
		svc, user := setup(tt, 10)

		updated, err := svc.PayFine(ctx, user.ID, 10)
		require.NoError(tt, err)
		assert.Equal(tt, 0, updated.OutstandingFines)
	})

	t.Run("overpayment is rejected and changes nothing", func(tt *testing.T) {
		svc, user := setup(tt, 5)

		_, err := svc.PayFine(ctx, user.ID, 6)
		require.Error(tt, err)

		var e *errcodes.Error
		require.True(tt, errors.As(err, &e))
		assert.Equal(tt, "validation_error", e.Code)

		fetched, err := svc.RetrieveUser(ctx, RetrieveUserOptions{ID: &user.ID})
		require.NoError(tt, err)
		assert.Equal(tt, 5, fetched.OutstandingFines)
	})

	t.Run("unknown user 404s", func(tt *testing.T) {
		svc, _ := setup(tt, 0)

		_, err := svc.PayFine(ctx, "missing", 1)
		require.Error(tt, err)

		var e *errcodes.Error
		require.True(tt, errors.As(err, &e))
		assert.Equal(tt, "not_found", e.Code)
	})
}

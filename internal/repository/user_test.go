package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	createUserQuery     = `INSERT INTO users \(email, display_name, password_hash\)`
	getUserByEmailQuery = `SELECT (.+) FROM users WHERE email = \$1`
	updatePasswordQuery = `UPDATE users SET password_hash = \$2`

	userID = "9a1d8c35-3f51-4a7b-8d0c-b2f7e6a1c0de"
)

var userRowColumns = []string{"id", "email", "display_name", "password_hash", "created_at"}

func TestCreateUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	stamp := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		name := "Ann"
		mock.ExpectQuery(createUserQuery).
			WithArgs("ann@x.com", &name, "hash").
			WillReturnRows(pgxmock.NewRows(userRowColumns).AddRow(userID, "ann@x.com", &name, "hash", stamp))

		repo := repository.NewUserRepository(mock, newTestMetrics())
		user, err := repo.CreateUser(ctx, "ann@x.com", &name, "hash")

		require.NoError(t, err)
		assert.Equal(t, userID, user.UID)
		assert.Equal(t, "ann@x.com", user.Email)
		require.NotNil(t, user.DisplayName)
		assert.Equal(t, "Ann", *user.DisplayName)
		assert.Equal(t, "hash", user.PasswordHash)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(createUserQuery).
			WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

		repo := repository.NewUserRepository(mock, newTestMetrics())
		_, err = repo.CreateUser(ctx, "ann@x.com", nil, "hash")

		require.ErrorIs(t, err, repository.ErrDuplicate)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(createUserQuery).WillReturnError(assert.AnError)

		repo := repository.NewUserRepository(mock, newTestMetrics())
		_, err = repo.CreateUser(ctx, "ann@x.com", nil, "hash")

		require.EqualError(t, err, "failed to save user: "+assert.AnError.Error())
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetUserByEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		stamp := time.Now().UTC()
		mock.ExpectQuery(getUserByEmailQuery).
			WithArgs("ann@x.com").
			WillReturnRows(pgxmock.NewRows(userRowColumns).AddRow(userID, "ann@x.com", nil, "hash", stamp))

		repo := repository.NewUserRepository(mock, newTestMetrics())
		user, err := repo.GetUserByEmail(ctx, "ann@x.com")

		require.NoError(t, err)
		assert.Equal(t, models.User{UID: userID, Email: "ann@x.com", PasswordHash: "hash", CreatedAt: stamp}, user)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(getUserByEmailQuery).WithArgs("nobody@x.com").WillReturnError(pgx.ErrNoRows)

		repo := repository.NewUserRepository(mock, newTestMetrics())
		_, err = repo.GetUserByEmail(ctx, "nobody@x.com")

		require.ErrorIs(t, err, repository.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdatePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(updatePasswordQuery).WithArgs(userID, "newhash").WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := repository.NewUserRepository(mock, newTestMetrics())
		require.NoError(t, repo.UpdatePassword(ctx, userID, "newhash"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("user vanished", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(updatePasswordQuery).WithArgs(userID, "newhash").WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := repository.NewUserRepository(mock, newTestMetrics())
		require.ErrorIs(t, repo.UpdatePassword(ctx, userID, "newhash"), repository.ErrNotFound)
	})

	t.Run("query error", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(updatePasswordQuery).WillReturnError(assert.AnError)

		repo := repository.NewUserRepository(mock, newTestMetrics())
		err = repo.UpdatePassword(ctx, userID, "newhash")

		require.EqualError(t, err, "failed to update password: "+assert.AnError.Error())
	})
}

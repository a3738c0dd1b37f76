package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const migrationsDir = "../../migrations"

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()
	const startupTimeout = 60 * time.Second

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("athena"),
		postgres.WithUsername("athena"),
		postgres.WithPassword("athena"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(startupTimeout),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if termErr := ctr.Terminate(context.Background()); termErr != nil {
			t.Logf("failed to terminate postgres container: %v", termErr)
		}
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()
	require.NoError(t, goose.Up(sqlDB, migrationsDir))

	return pool
}

func TestEmployeeRepository_Postgres(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	repo := repository.NewEmployeeRepository(pool, newTestMetrics())

	employee := models.Employee{
		FirstName: "Ann",
		LastName:  "Lee",
		IDNumber:  "I1",
		Email:     "a@x.com",
		Phone:     "555",
		Position:  "Clerk",
		Image:     "http://minio:9000/photos/images/1-photo.png",
	}

	identifier, err := repo.CreateEmployee(ctx, employee)
	require.NoError(t, err)
	require.NotEmpty(t, identifier)

	stored, err := repo.GetEmployeeByID(ctx, identifier)
	require.NoError(t, err)
	assert.Equal(t, identifier, stored.ID)
	assert.Equal(t, "Ann", stored.FirstName)
	assert.Equal(t, employee.Image, stored.Image)

	changes := models.EmployeeChanges{
		FirstName: "Anna", LastName: "Lee", Email: "anna@x.com", Phone: "556", Position: "Manager",
	}
	require.NoError(t, repo.UpdateEmployee(ctx, identifier, changes))

	updated, err := repo.GetEmployeeByID(ctx, identifier)
	require.NoError(t, err)
	assert.Equal(t, "Anna", updated.FirstName)
	assert.Equal(t, "I1", updated.IDNumber, "id number must survive updates")
	assert.Equal(t, employee.Image, updated.Image, "image must survive updates without a new photo")

	listed, err := repo.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, identifier, listed[0].ID)

	require.NoError(t, repo.DeleteEmployee(ctx, identifier))
	_, err = repo.GetEmployeeByID(ctx, identifier)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, repo.DeleteEmployee(ctx, identifier), repository.ErrNotFound)
}

func TestUserRepository_Postgres(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	repo := repository.NewUserRepository(pool, newTestMetrics())

	user, err := repo.CreateUser(ctx, "ann@x.com", nil, "hash")
	require.NoError(t, err)
	assert.NotEmpty(t, user.UID)
	assert.Nil(t, user.DisplayName)

	_, err = repo.CreateUser(ctx, "ann@x.com", nil, "other")
	require.ErrorIs(t, err, repository.ErrDuplicate)

	require.NoError(t, repo.UpdatePassword(ctx, user.UID, "newhash"))

	fetched, err := repo.GetUserByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, "newhash", fetched.PasswordHash)
	assert.Equal(t, user.UID, fetched.UID)
}

package repository

import (
	"context"
	"errors"

	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/UnknownOlympus/athena/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("record already exists")
)

type Repository struct {
	db      Database
	metrics *metrics.Metrics
}

// EmployeeRepoIface represents the employees document collection.
type EmployeeRepoIface interface {
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	CreateEmployee(ctx context.Context, employee models.Employee) (string, error)
	GetEmployeeByID(ctx context.Context, identifier string) (models.Employee, error)
	UpdateEmployee(ctx context.Context, identifier string, changes models.EmployeeChanges) error
	DeleteEmployee(ctx context.Context, identifier string) error
}

func NewEmployeeRepository(db Database, metrics *metrics.Metrics) EmployeeRepoIface {
	return &Repository{db: db, metrics: metrics}
}

// UserRepoIface represents the credential store behind the auth provider.
type UserRepoIface interface {
	CreateUser(ctx context.Context, email string, displayName *string, passwordHash string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdatePassword(ctx context.Context, uid, passwordHash string) error
}

func NewUserRepository(db Database, metrics *metrics.Metrics) UserRepoIface {
	return &Repository{db: db, metrics: metrics}
}

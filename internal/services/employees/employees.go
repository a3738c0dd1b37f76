package employees

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/repository"
	"github.com/UnknownOlympus/athena/internal/storage"
)

// ErrNotFound is returned when no employee has the requested id.
var ErrNotFound = errors.New("employee not found")

type Staff struct {
	log       *slog.Logger
	repo      repository.EmployeeRepoIface
	blobs     storage.BlobStore
	metrics   *metrics.Metrics
	keyPrefix string
	now       func() time.Time
}

func NewStaff(
	log *slog.Logger,
	repo repository.EmployeeRepoIface,
	blobs storage.BlobStore,
	metrics *metrics.Metrics,
	keyPrefix string,
) *Staff {
	return &Staff{
		log:       log,
		repo:      repo,
		blobs:     blobs,
		metrics:   metrics,
		keyPrefix: keyPrefix,
		now:       time.Now,
	}
}

func (s *Staff) initLogger(opn string) *slog.Logger {
	return sl.With(s.log, opn, "employee")
}

// List returns every stored employee.
func (s *Staff) List(ctx context.Context) ([]models.Employee, error) {
	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	return employees, nil
}

// Create stores the photo in the blob store and then inserts the employee
// with the photo URL as its image. It returns the new employee id.
func (s *Staff) Create(ctx context.Context, employee models.Employee, photo *models.Upload) (string, error) {
	const opn = "Employee.Create"
	log := s.initLogger(opn)

	location, err := s.upload(ctx, photo)
	if err != nil {
		return "", err
	}
	employee.Image = location

	identifier, err := s.repo.CreateEmployee(ctx, employee)
	if err != nil {
		return "", err
	}

	log.InfoContext(ctx, "Employee added", "id", identifier)

	return identifier, nil
}

// Get returns the employee with the given id or ErrNotFound.
func (s *Staff) Get(ctx context.Context, identifier string) (models.Employee, error) {
	employee, err := s.repo.GetEmployeeByID(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Employee{}, ErrNotFound
		}
		return models.Employee{}, err
	}

	return employee, nil
}

// Update overwrites the mutable fields of an existing employee. When photo is
// not nil it is uploaded first and replaces the stored image. A missing
// employee yields ErrNotFound and nothing is written.
func (s *Staff) Update(
	ctx context.Context,
	identifier string,
	changes models.EmployeeChanges,
	photo *models.Upload,
) (models.Employee, error) {
	const opn = "Employee.Update"
	log := s.initLogger(opn)

	current, err := s.Get(ctx, identifier)
	if err != nil {
		return models.Employee{}, err
	}

	if photo != nil {
		changes.Image, err = s.upload(ctx, photo)
		if err != nil {
			return models.Employee{}, err
		}
	}

	if err = s.repo.UpdateEmployee(ctx, identifier, changes); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Employee{}, ErrNotFound
		}
		return models.Employee{}, err
	}

	log.InfoContext(ctx, "Employee updated", "id", identifier, "new_photo", photo != nil)

	return changes.Apply(current), nil
}

// Delete removes the employee. Its photo stays in the blob store.
func (s *Staff) Delete(ctx context.Context, identifier string) error {
	const opn = "Employee.Delete"
	log := s.initLogger(opn)

	if err := s.repo.DeleteEmployee(ctx, identifier); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	log.InfoContext(ctx, "Employee deleted", "id", identifier)

	return nil
}

func (s *Staff) upload(ctx context.Context, photo *models.Upload) (string, error) {
	key := storage.ObjectKey(s.keyPrefix, s.now(), photo.Filename)

	location, err := s.blobs.Upload(ctx, key, photo)
	if err != nil {
		s.metrics.BlobUploads.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	s.metrics.BlobUploads.WithLabelValues("success").Inc()
	s.metrics.BlobUploadedBytes.Add(float64(photo.Size()))

	return location, nil
}

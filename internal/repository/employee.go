package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const employeeColumns = `id::text, first_name, last_name, id_number, email, phone, position, image, created_at, updated_at`

// ListEmployees returns every employee document ordered by creation time.
func (r *Repository) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	startTime := time.Now()
	defer func() {
		r.metrics.ObserveDB("list_employees", time.Since(startTime).Seconds())
	}()
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]models.Employee, 0)
	for rows.Next() {
		employee, scanErr := scanEmployee(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", scanErr)
		}
		employees = append(employees, employee)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return employees, nil
}

// CreateEmployee inserts a new employee document and returns the identifier assigned by the database.
func (r *Repository) CreateEmployee(ctx context.Context, employee models.Employee) (string, error) {
	startTime := time.Now()
	defer func() {
		r.metrics.ObserveDB("create_employee", time.Since(startTime).Seconds())
	}()
	query := `
		INSERT INTO employees (first_name, last_name, id_number, email, phone, position, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id::text;
	`

	var identifier string
	err := r.db.QueryRow(ctx, query,
		employee.FirstName,
		employee.LastName,
		employee.IDNumber,
		employee.Email,
		employee.Phone,
		employee.Position,
		employee.Image,
	).Scan(&identifier)
	if err != nil {
		return "", fmt.Errorf("failed to save employee: %w", err)
	}

	return identifier, nil
}

// GetEmployeeByID retrieves an employee document by its identifier.
// Identifiers that are not UUIDs cannot exist and yield ErrNotFound.
func (r *Repository) GetEmployeeByID(ctx context.Context, identifier string) (models.Employee, error) {
	key, ok := parseID(identifier)
	if !ok {
		return models.Employee{}, ErrNotFound
	}

	startTime := time.Now()
	defer func() {
		r.metrics.ObserveDB("get_employee_by_id", time.Since(startTime).Seconds())
	}()
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	result, err := scanEmployee(r.db.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Employee{}, ErrNotFound
		}
		return models.Employee{}, fmt.Errorf("failed to get employee by id: %w", err)
	}

	return result, nil
}

// UpdateEmployee overwrites the updatable fields of an employee. The stored image
// is kept unless the changes carry a new one.
func (r *Repository) UpdateEmployee(ctx context.Context, identifier string, changes models.EmployeeChanges) error {
	key, ok := parseID(identifier)
	if !ok {
		return ErrNotFound
	}

	startTime := time.Now()
	defer func() {
		r.metrics.ObserveDB("update_employee", time.Since(startTime).Seconds())
	}()
	query := `
		UPDATE employees
		SET first_name = $2, last_name = $3, email = $4, phone = $5, position = $6,
			image = COALESCE(NULLIF($7, ''), image), updated_at = CURRENT_TIMESTAMP
		WHERE id = $1;
	`

	tag, err := r.db.Exec(ctx, query,
		key, changes.FirstName, changes.LastName, changes.Email, changes.Phone, changes.Position, changes.Image)
	if err != nil {
		return fmt.Errorf("failed to update employee data: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteEmployee removes an employee document.
func (r *Repository) DeleteEmployee(ctx context.Context, identifier string) error {
	key, ok := parseID(identifier)
	if !ok {
		return ErrNotFound
	}

	startTime := time.Now()
	defer func() {
		r.metrics.ObserveDB("delete_employee", time.Since(startTime).Seconds())
	}()
	query := `DELETE FROM employees WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, key)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanEmployee(row pgx.Row) (models.Employee, error) {
	var result models.Employee

	err := row.Scan(
		&result.ID,
		&result.FirstName,
		&result.LastName,
		&result.IDNumber,
		&result.Email,
		&result.Phone,
		&result.Position,
		&result.Image,
		&result.CreatedAt,
		&result.UpdatedAt,
	)

	return result, err
}

// parseID normalises a document identifier to its canonical UUID form.
func parseID(identifier string) (string, bool) {
	parsed, err := uuid.Parse(identifier)
	if err != nil {
		return "", false
	}

	return parsed.String(), true
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const userColumns = `id::text, email, display_name, password_hash, created_at`

// CreateUser stores a new principal. An already registered email yields ErrDuplicate.
func (r *Repository) CreateUser(
	ctx context.Context,
	email string,
	displayName *string,
	passwordHash string,
) (models.User, error) {
	startTime := time.Now()
	defer func() {
		r.metrics.ObserveDB("create_user", time.Since(startTime).Seconds())
	}()
	query := `
		INSERT INTO users (email, display_name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns + `;
	`

	user, err := scanUser(r.db.QueryRow(ctx, query, email, displayName, passwordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, fmt.Errorf("failed to save user: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a principal by its (already normalised) email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	startTime := time.Now()
	defer func() {
		r.metrics.ObserveDB("get_user_by_email", time.Since(startTime).Seconds())
	}()
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// UpdatePassword replaces the stored credential hash of a principal.
func (r *Repository) UpdatePassword(ctx context.Context, uid, passwordHash string) error {
	key, ok := parseID(uid)
	if !ok {
		return ErrNotFound
	}

	startTime := time.Now()
	defer func() {
		r.metrics.ObserveDB("update_password", time.Since(startTime).Seconds())
	}()
	query := `UPDATE users SET password_hash = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, key, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User

	err := row.Scan(&user.UID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.CreatedAt)

	return user, err
}

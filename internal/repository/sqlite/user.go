package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/course-marketplace/internal/apperror"
	"github.com/sakif/course-marketplace/internal/model"
	"github.com/sakif/course-marketplace/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a user, generating the ID and creation time when they are unset.
//
// ON CONFLICT DO NOTHING turns a duplicate id or email into zero affected rows, which is
// reported as apperror.Conflict instead of a driver-specific constraint error.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = xid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, name, role, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`,
		user.ID,
		user.Email,
		user.Name,
		string(user.Role),
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.Conflict("user", user.Email)
	}
	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var (
		u    model.User
		role string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, name, role, created_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&role,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	u.Role = model.Role(role)
	return &u, nil
}

// FindUsers returns users matching every non-empty field of the filter, oldest first.
func (db *DB) FindUsers(ctx context.Context, filter repository.UserFilter) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, email, name, role, created_at
		 FROM users
		 WHERE (? = '' OR email = ?)
		   AND (? = '' OR role = ?)
		 ORDER BY created_at ASC, rowid ASC`,
		filter.Email, filter.Email,
		string(filter.Role), string(filter.Role),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: finding users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var (
			u    model.User
			role string
		)
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		u.Role = model.Role(role)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating user rows: %w", err)
	}

	return users, nil
}

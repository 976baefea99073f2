package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/xid"

	"github.com/sakif/course-marketplace/internal/apperror"
	"github.com/sakif/course-marketplace/internal/model"
	"github.com/sakif/course-marketplace/internal/repository"
)

var _ repository.UserRepository = (*DB)(nil)

func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = xid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	tag, err := db.pool.Exec(ctx,
		`INSERT INTO users (id, email, name, role, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT DO NOTHING`,
		user.ID, user.Email, user.Name, string(user.Role), user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: inserting user (email=%s): %w", user.Email, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.Conflict("user", user.Email)
	}
	return nil
}

func scanUser(row pgx.Row, u *model.User) error {
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.CreatedAt); err != nil {
		return err
	}
	u.Role = model.Role(role)
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	row := db.pool.QueryRow(ctx,
		`SELECT id, email, name, role, created_at FROM users WHERE id = $1`, id)
	if err := scanUser(row, &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("postgres: getting user %s: %w", id, err)
	}
	return &u, nil
}

func (db *DB) FindUsers(ctx context.Context, filter repository.UserFilter) ([]model.User, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, email, name, role, created_at
		 FROM users
		 WHERE ($1::text = '' OR email = $1)
		   AND ($2::text = '' OR role = $2)
		 ORDER BY created_at ASC, id ASC`,
		filter.Email, string(filter.Role),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: finding users: %w", err)
	}

	users, err := collect(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("postgres: reading user rows: %w", err)
	}
	return users, nil
}

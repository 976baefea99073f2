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

var _ repository.CourseRepository = (*DB)(nil)

const courseColumns = `c.id, c.title, c.description, c.category, c.price_cents,
	c.instructor_id, c.created_at, c.updated_at`

func scanCourse(row pgx.Row, c *model.Course) error {
	return row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.Category,
		&c.PriceCents,
		&c.InstructorID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

func (db *DB) CreateCourse(ctx context.Context, course *model.Course) error {
	if course.ID == "" {
		course.ID = xid.New().String()
	}
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}
	if course.UpdatedAt.IsZero() {
		course.UpdatedAt = course.CreatedAt
	}

	tag, err := db.pool.Exec(ctx,
		`INSERT INTO courses (id, title, description, category, price_cents, instructor_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT DO NOTHING`,
		course.ID, course.Title, course.Description, course.Category,
		course.PriceCents, course.InstructorID, course.CreatedAt, course.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: creating course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.Conflict("course", course.ID)
	}
	return nil
}

func (db *DB) GetCourseByID(ctx context.Context, id string) (*model.Course, error) {
	var c model.Course
	row := db.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses c WHERE c.id = $1`, id)
	if err := scanCourse(row, &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("course", id)
		}
		return nil, fmt.Errorf("postgres: getting course %s: %w", id, err)
	}
	return &c, nil
}

// FindCourses uses ILIKE so matching is case-insensitive beyond ASCII as well.
func (db *DB) FindCourses(ctx context.Context, filter repository.CourseFilter) ([]model.Course, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+courseColumns+`
		 FROM courses c
		 WHERE ($1::text = '' OR c.instructor_id = $1)
		   AND ($2::text = ''
		        OR c.title ILIKE $2 ESCAPE '\'
		        OR c.description ILIKE $2 ESCAPE '\'
		        OR c.category ILIKE $2 ESCAPE '\')
		 ORDER BY c.created_at DESC, c.id DESC`,
		filter.InstructorID, repository.ContainsPattern(filter.Query),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: finding courses: %w", err)
	}

	courses, err := collect(rows, scanCourse)
	if err != nil {
		return nil, fmt.Errorf("postgres: reading course rows: %w", err)
	}
	return courses, nil
}

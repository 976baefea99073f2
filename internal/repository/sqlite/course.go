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

var _ repository.CourseRepository = (*DB)(nil)

// courseColumns is the SELECT list scanned by scanCourse. Queries that join courses
// under the alias "c" use it unchanged.
const courseColumns = `c.id, c.title, c.description, c.category, c.price_cents,
	c.instructor_id, c.created_at, c.updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(s rowScanner, c *model.Course) error {
	return s.Scan(
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

// CreateCourse inserts a course, filling in the ID and timestamps when unset.
func (db *DB) CreateCourse(ctx context.Context, course *model.Course) error {
	if course.ID == "" {
		course.ID = xid.New().String()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	if course.UpdatedAt.IsZero() {
		course.UpdatedAt = course.CreatedAt
	}

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO courses (id, title, description, category, price_cents, instructor_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`,
		course.ID,
		course.Title,
		course.Description,
		course.Category,
		course.PriceCents,
		course.InstructorID,
		course.CreatedAt,
		course.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating course: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.Conflict("course", course.ID)
	}
	return nil
}

// GetCourseByID returns apperror.ErrNotFound if the course does not exist.
func (db *DB) GetCourseByID(ctx context.Context, id string) (*model.Course, error) {
	var c model.Course

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses c WHERE c.id = ?`,
		id,
	)
	if err := scanCourse(row, &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("course", id)
		}
		return nil, fmt.Errorf("sqlite: getting course %s: %w", id, err)
	}

	return &c, nil
}

// FindCourses returns courses matching the filter, newest first.
//
// SQLite's LIKE is case-insensitive for ASCII, which is what the search box needs.
// The pattern comes from repository.ContainsPattern, so '%' and '_' typed by the user
// are escaped and match literally.
func (db *DB) FindCourses(ctx context.Context, filter repository.CourseFilter) ([]model.Course, error) {
	pattern := repository.ContainsPattern(filter.Query)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+courseColumns+`
		 FROM courses c
		 WHERE (? = '' OR c.instructor_id = ?)
		   AND (? = ''
		        OR c.title LIKE ? ESCAPE '\'
		        OR c.description LIKE ? ESCAPE '\'
		        OR c.category LIKE ? ESCAPE '\')
		 ORDER BY c.created_at DESC, c.rowid DESC`,
		filter.InstructorID, filter.InstructorID,
		pattern, pattern, pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: finding courses: %w", err)
	}
	defer rows.Close()

	return collectCourses(rows)
}

func collectCourses(rows *sql.Rows) ([]model.Course, error) {
	courses := []model.Course{}
	for rows.Next() {
		var c model.Course
		if err := scanCourse(rows, &c); err != nil {
			return nil, fmt.Errorf("sqlite: scanning course row: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating course rows: %w", err)
	}
	return courses, nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sakif/course-marketplace/internal/apperror"
	"github.com/sakif/course-marketplace/internal/model"
	"github.com/sakif/course-marketplace/internal/repository"
)

var _ repository.SavedCourseRepository = (*DB)(nil)

// CreateSavedCourse relies on the (user_id, course_id) primary key; a concurrent
// duplicate affects zero rows and is reported as Conflict.
func (db *DB) CreateSavedCourse(ctx context.Context, userID, courseID string) error {
	tag, err := db.pool.Exec(ctx,
		`INSERT INTO saved_courses (user_id, course_id, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, course_id) DO NOTHING`,
		userID, courseID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("postgres: saving course %s for user %s: %w", courseID, userID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.Conflict("saved course", courseID)
	}
	return nil
}

func (db *DB) DeleteSavedCourse(ctx context.Context, userID, courseID string) error {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM saved_courses WHERE user_id = $1 AND course_id = $2`,
		userID, courseID,
	)
	if err != nil {
		return fmt.Errorf("postgres: unsaving course %s for user %s: %w", courseID, userID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("saved course", courseID)
	}
	return nil
}

func scanSavedCourse(row pgx.Row, sc *model.SavedCourse) error {
	return row.Scan(
		&sc.UserID,
		&sc.CourseID,
		&sc.CreatedAt,
		&sc.Course.ID,
		&sc.Course.Title,
		&sc.Course.Description,
		&sc.Course.Category,
		&sc.Course.PriceCents,
		&sc.Course.InstructorID,
		&sc.Course.CreatedAt,
		&sc.Course.UpdatedAt,
	)
}

func (db *DB) ListSavedCourses(ctx context.Context, userID string) ([]model.SavedCourse, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT s.user_id, s.course_id, s.created_at, `+courseColumns+`
		 FROM saved_courses s
		 JOIN courses c ON c.id = s.course_id
		 WHERE s.user_id = $1
		 ORDER BY s.created_at ASC, s.course_id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing saved courses for user %s: %w", userID, err)
	}

	saved, err := collect(rows, scanSavedCourse)
	if err != nil {
		return nil, fmt.Errorf("postgres: reading saved course rows: %w", err)
	}
	return saved, nil
}

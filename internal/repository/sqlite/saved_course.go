package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/course-marketplace/internal/apperror"
	"github.com/sakif/course-marketplace/internal/model"
	"github.com/sakif/course-marketplace/internal/repository"
)

var _ repository.SavedCourseRepository = (*DB)(nil)

// CreateSavedCourse bookmarks courseID for userID.
//
// The check for an existing bookmark and the insert are one statement, so two
// concurrent saves of the same pair produce exactly one row: the loser affects zero
// rows and gets apperror.Conflict.
func (db *DB) CreateSavedCourse(ctx context.Context, userID, courseID string) error {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO saved_courses (user_id, course_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id, course_id) DO NOTHING`,
		userID,
		courseID,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving course %s for user %s: %w", courseID, userID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.Conflict("saved course", courseID)
	}
	return nil
}

// DeleteSavedCourse removes the bookmark. RowsAffected == 0 means it was never saved.
func (db *DB) DeleteSavedCourse(ctx context.Context, userID, courseID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM saved_courses WHERE user_id = ? AND course_id = ?`,
		userID,
		courseID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: unsaving course %s for user %s: %w", courseID, userID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("saved course", courseID)
	}
	return nil
}

// ListSavedCourses returns the user's bookmarks in the order they were saved.
func (db *DB) ListSavedCourses(ctx context.Context, userID string) ([]model.SavedCourse, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT s.user_id, s.course_id, s.created_at, `+courseColumns+`
		 FROM saved_courses s
		 JOIN courses c ON c.id = s.course_id
		 WHERE s.user_id = ?
		 ORDER BY s.created_at ASC, s.rowid ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing saved courses for user %s: %w", userID, err)
	}
	defer rows.Close()

	saved := []model.SavedCourse{}
	for rows.Next() {
		var sc model.SavedCourse
		err := rows.Scan(
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
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning saved course row: %w", err)
		}
		saved = append(saved, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating saved course rows: %w", err)
	}

	return saved, nil
}

package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/course-marketplace/internal/model"
	"github.com/sakif/course-marketplace/internal/repository"
)

var _ repository.ReviewRepository = (*DB)(nil)

// CreateReview inserts a review. The schema rejects ratings outside 1..5.
func (db *DB) CreateReview(ctx context.Context, review *model.Review) error {
	if review.ID == "" {
		review.ID = xid.New().String()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO reviews (id, course_id, user_id, rating, comment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		review.ID,
		review.CourseID,
		review.UserID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating review for course %s: %w", review.CourseID, err)
	}
	return nil
}

// FindReviewsByCourse returns every review of the course, oldest first.
// A course with no reviews yields an empty slice, not an error.
func (db *DB) FindReviewsByCourse(ctx context.Context, courseID string) ([]model.Review, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, course_id, user_id, rating, comment, created_at
		 FROM reviews
		 WHERE course_id = ?
		 ORDER BY created_at ASC, rowid ASC`,
		courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: finding reviews for course %s: %w", courseID, err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var r model.Review
		if err := rows.Scan(&r.ID, &r.CourseID, &r.UserID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning review row: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating review rows: %w", err)
	}

	return reviews, nil
}

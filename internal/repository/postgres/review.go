package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/xid"

	"github.com/sakif/course-marketplace/internal/model"
	"github.com/sakif/course-marketplace/internal/repository"
)

var _ repository.ReviewRepository = (*DB)(nil)

func (db *DB) CreateReview(ctx context.Context, review *model.Review) error {
	if review.ID == "" {
		review.ID = xid.New().String()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO reviews (id, course_id, user_id, rating, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		review.ID, review.CourseID, review.UserID, review.Rating, review.Comment, review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: creating review for course %s: %w", review.CourseID, err)
	}
	return nil
}

func (db *DB) FindReviewsByCourse(ctx context.Context, courseID string) ([]model.Review, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, course_id, user_id, rating, comment, created_at
		 FROM reviews
		 WHERE course_id = $1
		 ORDER BY created_at ASC, id ASC`,
		courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: finding reviews for course %s: %w", courseID, err)
	}

	reviews, err := collect(rows, func(row pgx.Row, r *model.Review) error {
		var rating int32
		if err := row.Scan(&r.ID, &r.CourseID, &r.UserID, &rating, &r.Comment, &r.CreatedAt); err != nil {
			return err
		}
		r.Rating = int(rating)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: reading review rows: %w", err)
	}
	return reviews, nil
}

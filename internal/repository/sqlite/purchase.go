package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/course-marketplace/internal/apperror"
	"github.com/sakif/course-marketplace/internal/model"
	"github.com/sakif/course-marketplace/internal/repository"
)

var _ repository.PurchaseRepository = (*DB)(nil)

// CreatePurchase records a purchase. Buying the same course twice is a Conflict.
func (db *DB) CreatePurchase(ctx context.Context, purchase *model.Purchase) error {
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = time.Now().UTC()
	}

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO purchases (user_id, course_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id, course_id) DO NOTHING`,
		purchase.UserID,
		purchase.CourseID,
		purchase.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating purchase (user=%s course=%s): %w", purchase.UserID, purchase.CourseID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.Conflict("purchase", purchase.CourseID)
	}
	return nil
}

// GroupPurchasesByCourse counts purchases per course in a single aggregate query.
// Courses nobody bought do not appear.
func (db *DB) GroupPurchasesByCourse(ctx context.Context) ([]model.PurchaseCount, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT course_id, COUNT(*)
		 FROM purchases
		 GROUP BY course_id
		 ORDER BY course_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: grouping purchases: %w", err)
	}
	defer rows.Close()

	counts := []model.PurchaseCount{}
	for rows.Next() {
		var pc model.PurchaseCount
		if err := rows.Scan(&pc.CourseID, &pc.Count); err != nil {
			return nil, fmt.Errorf("sqlite: scanning purchase count: %w", err)
		}
		counts = append(counts, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating purchase counts: %w", err)
	}

	return counts, nil
}

// ListPurchasedCourses returns the courses userID bought, most recent purchase first.
func (db *DB) ListPurchasedCourses(ctx context.Context, userID string) ([]model.Course, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+courseColumns+`
		 FROM purchases p
		 JOIN courses c ON c.id = p.course_id
		 WHERE p.user_id = ?
		 ORDER BY p.created_at DESC, p.rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing purchases for user %s: %w", userID, err)
	}
	defer rows.Close()

	return collectCourses(rows)
}

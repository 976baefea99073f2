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

var _ repository.PurchaseRepository = (*DB)(nil)

func (db *DB) CreatePurchase(ctx context.Context, purchase *model.Purchase) error {
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = time.Now().UTC()
	}

	tag, err := db.pool.Exec(ctx,
		`INSERT INTO purchases (user_id, course_id, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, course_id) DO NOTHING`,
		purchase.UserID, purchase.CourseID, purchase.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: creating purchase (user=%s course=%s): %w", purchase.UserID, purchase.CourseID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.Conflict("purchase", purchase.CourseID)
	}
	return nil
}

func (db *DB) GroupPurchasesByCourse(ctx context.Context) ([]model.PurchaseCount, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT course_id, COUNT(*)
		 FROM purchases
		 GROUP BY course_id
		 ORDER BY course_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: grouping purchases: %w", err)
	}

	counts, err := collect(rows, func(row pgx.Row, pc *model.PurchaseCount) error {
		var n int64
		if err := row.Scan(&pc.CourseID, &n); err != nil {
			return err
		}
		pc.Count = int(n)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: reading purchase counts: %w", err)
	}
	return counts, nil
}

func (db *DB) ListPurchasedCourses(ctx context.Context, userID string) ([]model.Course, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+courseColumns+`
		 FROM purchases p
		 JOIN courses c ON c.id = p.course_id
		 WHERE p.user_id = $1
		 ORDER BY p.created_at DESC, c.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing purchases for user %s: %w", userID, err)
	}

	courses, err := collect(rows, scanCourse)
	if err != nil {
		return nil, fmt.Errorf("postgres: reading purchased course rows: %w", err)
	}
	return courses, nil
}

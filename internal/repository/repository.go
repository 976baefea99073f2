// Package repository declares the storage operations the services depend on.
//
// Implementations live in subpackages (sqlite, postgres). Each method is atomic at the
// single-row or single-aggregate level; no operation here spans a cross-entity transaction.
//
// Error contract for implementations:
//   - absent row            → apperror.NotFound
//   - duplicate key         → apperror.Conflict
//   - anything else         → a wrapped driver error (services classify it as Unavailable)
package repository

import (
	"context"

	"github.com/sakif/course-marketplace/internal/model"
)

// UserFilter narrows FindUsers. Zero-valued fields do not constrain the result.
type UserFilter struct {
	Email string
	Role  model.Role
}

// CourseFilter narrows FindCourses.
//
// Query is a case-insensitive substring matched against title, description and category.
// Results are ordered newest first.
type CourseFilter struct {
	Query        string
	InstructorID string
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	FindUsers(ctx context.Context, filter UserFilter) ([]model.User, error)
}

type CourseRepository interface {
	CreateCourse(ctx context.Context, course *model.Course) error
	GetCourseByID(ctx context.Context, id string) (*model.Course, error)
	FindCourses(ctx context.Context, filter CourseFilter) ([]model.Course, error)
}

type SavedCourseRepository interface {
	// CreateSavedCourse inserts the (user, course) pair, or returns Conflict if it exists.
	CreateSavedCourse(ctx context.Context, userID, courseID string) error
	// DeleteSavedCourse removes the pair, or returns NotFound if it does not exist.
	DeleteSavedCourse(ctx context.Context, userID, courseID string) error
	// ListSavedCourses returns the user's bookmarks oldest first with the course joined in.
	ListSavedCourses(ctx context.Context, userID string) ([]model.SavedCourse, error)
}

type PurchaseRepository interface {
	CreatePurchase(ctx context.Context, purchase *model.Purchase) error
	// GroupPurchasesByCourse returns one row per course with at least one purchase.
	GroupPurchasesByCourse(ctx context.Context) ([]model.PurchaseCount, error)
	// ListPurchasedCourses returns the courses the user bought, most recent purchase first.
	ListPurchasedCourses(ctx context.Context, userID string) ([]model.Course, error)
}

type ReviewRepository interface {
	CreateReview(ctx context.Context, review *model.Review) error
	FindReviewsByCourse(ctx context.Context, courseID string) ([]model.Review, error)
}

// Store is a complete storage backend. The server owns one and closes it on shutdown.
type Store interface {
	UserRepository
	CourseRepository
	SavedCourseRepository
	PurchaseRepository
	ReviewRepository
	Close() error
}

package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/course-marketplace/internal/apperror"
	"github.com/sakif/course-marketplace/internal/auth"
	"github.com/sakif/course-marketplace/internal/model"
	"github.com/sakif/course-marketplace/internal/repository"
)

// MaxQueryLength caps the search text accepted from clients.
const MaxQueryLength = 200

// CourseService answers the read-side course queries: search, an instructor's own
// catalogue and a learner's purchases.
type CourseService struct {
	courses   repository.CourseRepository
	purchases repository.PurchaseRepository
	logger    *slog.Logger
}

func NewCourseService(
	courses repository.CourseRepository,
	purchases repository.PurchaseRepository,
	logger *slog.Logger,
) *CourseService {
	return &CourseService{
		courses:   courses,
		purchases: purchases,
		logger:    logger,
	}
}

// Search returns all courses whose title, description or category contains q,
// ignoring case, newest first. An empty q returns every course.
func (s *CourseService) Search(ctx context.Context, q string) ([]model.Course, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) > MaxQueryLength {
		return nil, apperror.ValidationFailed("q", "search query is too long")
	}

	courses, err := s.courses.FindCourses(ctx, repository.CourseFilter{Query: q})
	if err != nil {
		s.logger.Error("failed to search courses",
			slog.String("query", q),
			slog.String("error", err.Error()),
		)
		return nil, apperror.FromStore("searching courses", err)
	}

	s.logger.Debug("courses searched",
		slog.String("query", q),
		slog.Int("results", len(courses)),
	)
	return nonNil(courses), nil
}

// ListCreated returns the caller's own courses, newest first. Instructors only.
func (s *CourseService) ListCreated(ctx context.Context, caller auth.Caller) ([]model.Course, error) {
	if err := auth.RequireRole(caller, model.RoleInstructor); err != nil {
		return nil, err
	}

	courses, err := s.courses.FindCourses(ctx, repository.CourseFilter{InstructorID: caller.UserID})
	if err != nil {
		return nil, apperror.FromStore("listing created courses", err)
	}
	return nonNil(courses), nil
}

// ListPurchased returns the courses userID bought, most recent purchase first.
func (s *CourseService) ListPurchased(ctx context.Context, userID string) ([]model.Course, error) {
	userID, err := requireID("userId", userID)
	if err != nil {
		return nil, err
	}

	courses, err := s.purchases.ListPurchasedCourses(ctx, userID)
	if err != nil {
		return nil, apperror.FromStore("listing purchased courses", err)
	}
	return nonNil(courses), nil
}

func nonNil(courses []model.Course) []model.Course {
	if courses == nil {
		return []model.Course{}
	}
	return courses
}

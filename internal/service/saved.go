package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sakif/course-marketplace/internal/apperror"
	"github.com/sakif/course-marketplace/internal/model"
	"github.com/sakif/course-marketplace/internal/repository"
)

// SavedCourseService toggles a learner's bookmarks.
//
// Save and Unsave are each a single store mutation. Whether a bookmark already exists is
// decided by the store's unique key, not by a read before the write, so concurrent
// duplicate saves cannot both succeed.
type SavedCourseService struct {
	users   repository.UserRepository
	courses repository.CourseRepository
	saved   repository.SavedCourseRepository
	logger  *slog.Logger
}

func NewSavedCourseService(
	users repository.UserRepository,
	courses repository.CourseRepository,
	saved repository.SavedCourseRepository,
	logger *slog.Logger,
) *SavedCourseService {
	return &SavedCourseService{
		users:   users,
		courses: courses,
		saved:   saved,
		logger:  logger,
	}
}

// Save bookmarks courseID for userID.
//
// Errors:
//   - ErrValidation: an ID is empty
//   - ErrNotFound:   userID is not a learner, or the course does not exist
//   - ErrConflict:   the course is already saved
//   - ErrUnavailable: the store failed
func (s *SavedCourseService) Save(ctx context.Context, userID, courseID string) error {
	userID, courseID, err := s.checkPair(userID, courseID)
	if err != nil {
		return err
	}

	if err := s.requireLearner(ctx, userID); err != nil {
		return err
	}
	if _, err := s.courses.GetCourseByID(ctx, courseID); err != nil {
		return apperror.FromStore("looking up course", err)
	}

	if err := s.saved.CreateSavedCourse(ctx, userID, courseID); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return err
		}
		s.logger.Error("failed to save course",
			slog.String("userID", userID),
			slog.String("courseID", courseID),
			slog.String("error", err.Error()),
		)
		return apperror.FromStore("saving course", err)
	}

	s.logger.Info("course saved",
		slog.String("userID", userID),
		slog.String("courseID", courseID),
	)
	return nil
}

// Unsave removes the bookmark. ErrNotFound if it was not saved.
func (s *SavedCourseService) Unsave(ctx context.Context, userID, courseID string) error {
	userID, courseID, err := s.checkPair(userID, courseID)
	if err != nil {
		return err
	}

	if err := s.saved.DeleteSavedCourse(ctx, userID, courseID); err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("failed to unsave course",
				slog.String("userID", userID),
				slog.String("courseID", courseID),
				slog.String("error", err.Error()),
			)
		}
		return apperror.FromStore("unsaving course", err)
	}

	s.logger.Info("course unsaved",
		slog.String("userID", userID),
		slog.String("courseID", courseID),
	)
	return nil
}

// List returns the user's bookmarks oldest first. The result is empty, never nil,
// when nothing is saved.
func (s *SavedCourseService) List(ctx context.Context, userID string) ([]model.SavedCourse, error) {
	userID, err := requireID("userId", userID)
	if err != nil {
		return nil, err
	}

	saved, err := s.saved.ListSavedCourses(ctx, userID)
	if err != nil {
		return nil, apperror.FromStore("listing saved courses", err)
	}
	if saved == nil {
		saved = []model.SavedCourse{}
	}
	return saved, nil
}

func (s *SavedCourseService) checkPair(userID, courseID string) (string, string, error) {
	userID, err := requireID("userId", userID)
	if err != nil {
		return "", "", err
	}
	courseID, err = requireID("courseId", courseID)
	if err != nil {
		return "", "", err
	}
	return userID, courseID, nil
}

// requireLearner resolves userID to a learner account. Instructors and admins do not
// keep bookmarks, so they are reported the same way as a missing user.
func (s *SavedCourseService) requireLearner(ctx context.Context, userID string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NotFound("learner", userID)
		}
		return apperror.FromStore("looking up learner", err)
	}
	if user.Role != model.RoleLearner {
		return apperror.NotFound("learner", userID)
	}
	return nil
}

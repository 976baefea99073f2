package service

import (
	"context"
	"log/slog"

	"github.com/sakif/course-marketplace/internal/apperror"
	"github.com/sakif/course-marketplace/internal/model"
	"github.com/sakif/course-marketplace/internal/repository"
)

// UserService reads account records for the authenticated caller.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// GetUserByID is used by /api/me after the middleware has resolved the token's subject.
func (s *UserService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	id, err := requireID("id", id)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, apperror.FromStore("fetching user", err)
	}
	return user, nil
}

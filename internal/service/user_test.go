package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/course-marketplace/internal/apperror"
	"github.com/sakif/course-marketplace/internal/model"
)

func TestGetUserByID(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", model.RoleLearner)
	svc := NewUserService(store, testLogger(t))

	user, err := svc.GetUserByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if user.Email != "u1@example.com" {
		t.Errorf("Email = %q", user.Email)
	}

	_, err = svc.GetUserByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID(missing) error = %v, want ErrNotFound", err)
	}

	_, err = svc.GetUserByID(context.Background(), "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("GetUserByID(\"\") error = %v, want ErrValidation", err)
	}
}

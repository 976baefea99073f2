package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sakif/course-marketplace/internal/apperror"
	"github.com/sakif/course-marketplace/internal/model"
)

func newTestSavedService(t *testing.T) (*SavedCourseService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	store.addUser("learner", model.RoleLearner)
	store.addUser("inst", model.RoleInstructor)
	store.addCourse("c1", "Go Basics", 1000)
	store.addCourse("c2", "Rust Basics", 2000)
	return NewSavedCourseService(store, store, store, testLogger(t)), store
}

func TestSave_Success(t *testing.T) {
	svc, _ := newTestSavedService(t)
	ctx := context.Background()

	if err := svc.Save(ctx, "learner", "c1"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	saved, err := svc.List(ctx, "learner")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(saved) != 1 || saved[0].Course.Title != "Go Basics" {
		t.Errorf("List() = %+v, want one saved Go Basics", saved)
	}
}

func TestSave_Errors(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		courseID string
		want     error
	}{
		{"empty user", "", "c1", apperror.ErrValidation},
		{"blank course", "learner", "   ", apperror.ErrValidation},
		{"unknown user", "ghost", "c1", apperror.ErrNotFound},
		{"instructor is not a learner", "inst", "c1", apperror.ErrNotFound},
		{"unknown course", "learner", "missing", apperror.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestSavedService(t)
			err := svc.Save(context.Background(), tt.userID, tt.courseID)
			if !errors.Is(err, tt.want) {
				t.Errorf("Save() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSave_NonLearnerMessage(t *testing.T) {
	svc, _ := newTestSavedService(t)

	err := svc.Save(context.Background(), "inst", "c1")
	if got, want := err.Error(), "learner not found with id inst"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestSave_Twice(t *testing.T) {
	svc, _ := newTestSavedService(t)
	ctx := context.Background()

	if err := svc.Save(ctx, "learner", "c1"); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}
	err := svc.Save(ctx, "learner", "c1")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second Save() error = %v, want ErrConflict", err)
	}

	saved, _ := svc.List(ctx, "learner")
	if len(saved) != 1 {
		t.Errorf("List() has %d entries after duplicate save, want 1", len(saved))
	}
}

func TestSave_Concurrent(t *testing.T) {
	svc, _ := newTestSavedService(t)
	ctx := context.Background()

	const workers = 10
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = svc.Save(ctx, "learner", "c2")
		}()
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperror.ErrConflict):
			conflicts++
		default:
			t.Errorf("Save() unexpected error = %v", err)
		}
	}
	if ok != 1 || conflicts != workers-1 {
		t.Errorf("ok = %d, conflicts = %d", ok, conflicts)
	}
}

func TestSave_StoreFailureIsUnavailable(t *testing.T) {
	svc, store := newTestSavedService(t)
	store.savedErr = errors.New("database is locked")

	err := svc.Save(context.Background(), "learner", "c1")
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("Save() error = %v, want ErrUnavailable", err)
	}
}

func TestUnsave(t *testing.T) {
	svc, _ := newTestSavedService(t)
	ctx := context.Background()

	if err := svc.Save(ctx, "learner", "c1"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := svc.Unsave(ctx, "learner", "c1"); err != nil {
		t.Fatalf("Unsave() error = %v", err)
	}

	err := svc.Unsave(ctx, "learner", "c1")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Unsave() error = %v, want ErrNotFound", err)
	}

	// Save after unsave succeeds again: the toggle is reversible.
	if err := svc.Save(ctx, "learner", "c1"); err != nil {
		t.Errorf("Save() after Unsave() error = %v", err)
	}
}

func TestList_EmptyIsNotNil(t *testing.T) {
	svc, _ := newTestSavedService(t)

	saved, err := svc.List(context.Background(), "learner")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if saved == nil {
		t.Error("List() returned nil, want empty slice")
	}
}

package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sakif/course-marketplace/internal/apperror"
	"github.com/sakif/course-marketplace/internal/model"
)

func TestSavedCourseLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	inst := createTestUser(t, db, "inst@example.com", model.RoleInstructor)
	learner := createTestUser(t, db, "learner@example.com", model.RoleLearner)
	first := createTestCourse(t, db, inst.ID, "First", "A", 0)
	second := createTestCourse(t, db, inst.ID, "Second", "B", 0)

	if err := db.CreateSavedCourse(ctx, learner.ID, second.ID); err != nil {
		t.Fatalf("CreateSavedCourse() error = %v", err)
	}
	if err := db.CreateSavedCourse(ctx, learner.ID, first.ID); err != nil {
		t.Fatalf("CreateSavedCourse() error = %v", err)
	}

	saved, err := db.ListSavedCourses(ctx, learner.ID)
	if err != nil {
		t.Fatalf("ListSavedCourses() error = %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("ListSavedCourses() returned %d rows, want 2", len(saved))
	}
	// Oldest save first, with the course joined in.
	if saved[0].CourseID != second.ID || saved[0].Course.Title != "Second" {
		t.Errorf("saved[0] = %+v, want course %q", saved[0], "Second")
	}
	if saved[1].Course.Title != "First" {
		t.Errorf("saved[1].Course.Title = %q, want %q", saved[1].Course.Title, "First")
	}

	if err := db.DeleteSavedCourse(ctx, learner.ID, second.ID); err != nil {
		t.Fatalf("DeleteSavedCourse() error = %v", err)
	}
	saved, err = db.ListSavedCourses(ctx, learner.ID)
	if err != nil {
		t.Fatalf("ListSavedCourses() error = %v", err)
	}
	if len(saved) != 1 || saved[0].CourseID != first.ID {
		t.Errorf("after delete ListSavedCourses() = %+v", saved)
	}
}

func TestCreateSavedCourseDuplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	inst := createTestUser(t, db, "inst@example.com", model.RoleInstructor)
	learner := createTestUser(t, db, "learner@example.com", model.RoleLearner)
	course := createTestCourse(t, db, inst.ID, "Go", "Programming", 0)

	if err := db.CreateSavedCourse(ctx, learner.ID, course.ID); err != nil {
		t.Fatalf("CreateSavedCourse() error = %v", err)
	}
	err := db.CreateSavedCourse(ctx, learner.ID, course.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second CreateSavedCourse() error = %v, want ErrConflict", err)
	}
}

func TestDeleteSavedCourseNotFound(t *testing.T) {
	db := newTestDB(t)
	learner := createTestUser(t, db, "learner@example.com", model.RoleLearner)

	err := db.DeleteSavedCourse(context.Background(), learner.ID, "never-saved")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteSavedCourse() error = %v, want ErrNotFound", err)
	}
}

// Concurrent saves of the same pair must leave exactly one row behind
// and report Conflict to every caller but one.
func TestCreateSavedCourseConcurrent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	inst := createTestUser(t, db, "inst@example.com", model.RoleInstructor)
	learner := createTestUser(t, db, "learner@example.com", model.RoleLearner)
	course := createTestCourse(t, db, inst.ID, "Go", "Programming", 0)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.CreateSavedCourse(ctx, learner.ID, course.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, apperror.ErrConflict):
				conflicts++
			default:
				t.Errorf("CreateSavedCourse() unexpected error = %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 1 || conflicts != workers-1 {
		t.Errorf("ok = %d, conflicts = %d; want 1 and %d", ok, conflicts, workers-1)
	}

	saved, err := db.ListSavedCourses(ctx, learner.ID)
	if err != nil {
		t.Fatalf("ListSavedCourses() error = %v", err)
	}
	if len(saved) != 1 {
		t.Errorf("ListSavedCourses() returned %d rows, want 1", len(saved))
	}
}

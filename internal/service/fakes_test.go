package service

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sakif/course-marketplace/internal/apperror"
	"github.com/sakif/course-marketplace/internal/model"
	"github.com/sakif/course-marketplace/internal/repository"
)

// fakeStore is an in-memory implementation of every repository interface.
// Set the *Err fields to simulate store failures; calls counts store reads so tests
// can assert that a rejected request never reached the store.
type fakeStore struct {
	mu sync.Mutex

	users     map[string]model.User
	courses   map[string]model.Course
	saved     []model.SavedCourse
	purchases []model.Purchase
	reviews   map[string][]model.Review

	groupErr  error
	courseErr error
	reviewErr error
	savedErr  error

	calls int
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[string]model.User),
		courses: make(map[string]model.Course),
		reviews: make(map[string][]model.Review),
	}
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) addUser(id string, role model.Role) {
	f.users[id] = model.User{ID: id, Email: id + "@example.com", Role: role}
}

func (f *fakeStore) addCourse(id, title string, priceCents int64) {
	f.courses[id] = model.Course{ID: id, Title: title, PriceCents: priceCents, InstructorID: "inst"}
}

func (f *fakeStore) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; ok {
		return apperror.Conflict("user", user.Email)
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return &u, nil
}

func (f *fakeStore) FindUsers(_ context.Context, filter repository.UserFilter) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	out := []model.User{}
	for _, u := range f.users {
		if (filter.Email == "" || u.Email == filter.Email) && (filter.Role == "" || u.Role == filter.Role) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateCourse(_ context.Context, course *model.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.courses[course.ID] = *course
	return nil
}

func (f *fakeStore) GetCourseByID(_ context.Context, id string) (*model.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.courseErr != nil {
		return nil, f.courseErr
	}
	c, ok := f.courses[id]
	if !ok {
		return nil, apperror.NotFound("course", id)
	}
	return &c, nil
}

func (f *fakeStore) FindCourses(_ context.Context, filter repository.CourseFilter) ([]model.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.courseErr != nil {
		return nil, f.courseErr
	}
	q := strings.ToLower(filter.Query)
	out := []model.Course{}
	for _, c := range f.courses {
		if filter.InstructorID != "" && c.InstructorID != filter.InstructorID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(c.Title), q) {
			continue
		}
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b model.Course) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (f *fakeStore) CreateSavedCourse(_ context.Context, userID, courseID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.savedErr != nil {
		return f.savedErr
	}
	for _, s := range f.saved {
		if s.UserID == userID && s.CourseID == courseID {
			return apperror.Conflict("saved course", courseID)
		}
	}
	f.saved = append(f.saved, model.SavedCourse{
		UserID:    userID,
		CourseID:  courseID,
		CreatedAt: time.Now(),
		Course:    f.courses[courseID],
	})
	return nil
}

func (f *fakeStore) DeleteSavedCourse(_ context.Context, userID, courseID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.savedErr != nil {
		return f.savedErr
	}
	for i, s := range f.saved {
		if s.UserID == userID && s.CourseID == courseID {
			f.saved = slices.Delete(f.saved, i, i+1)
			return nil
		}
	}
	return apperror.NotFound("saved course", courseID)
}

func (f *fakeStore) ListSavedCourses(_ context.Context, userID string) ([]model.SavedCourse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.savedErr != nil {
		return nil, f.savedErr
	}
	var out []model.SavedCourse
	for _, s := range f.saved {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) CreatePurchase(_ context.Context, p *model.Purchase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purchases = append(f.purchases, *p)
	return nil
}

func (f *fakeStore) GroupPurchasesByCourse(_ context.Context) ([]model.PurchaseCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.groupErr != nil {
		return nil, f.groupErr
	}
	counts := map[string]int{}
	var order []string
	for _, p := range f.purchases {
		if counts[p.CourseID] == 0 {
			order = append(order, p.CourseID)
		}
		counts[p.CourseID]++
	}
	out := make([]model.PurchaseCount, 0, len(order))
	for _, id := range order {
		out = append(out, model.PurchaseCount{CourseID: id, Count: counts[id]})
	}
	return out, nil
}

func (f *fakeStore) ListPurchasedCourses(_ context.Context, userID string) ([]model.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Course
	for _, p := range f.purchases {
		if p.UserID == userID {
			out = append(out, f.courses[p.CourseID])
		}
	}
	return out, nil
}

func (f *fakeStore) CreateReview(_ context.Context, r *model.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviews[r.CourseID] = append(f.reviews[r.CourseID], *r)
	return nil
}

func (f *fakeStore) FindReviewsByCourse(_ context.Context, courseID string) ([]model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reviewErr != nil {
		return nil, f.reviewErr
	}
	return slices.Clone(f.reviews[courseID]), nil
}

func (f *fakeStore) purchase(userID string, courseIDs ...string) {
	for _, id := range courseIDs {
		f.purchases = append(f.purchases, model.Purchase{UserID: userID, CourseID: id})
	}
}

func (f *fakeStore) review(courseID string, ratings ...int) {
	for _, r := range ratings {
		f.reviews[courseID] = append(f.reviews[courseID], model.Review{CourseID: courseID, Rating: r})
	}
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

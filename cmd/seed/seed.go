package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/sakif/course-marketplace/internal/apperror"
	"github.com/sakif/course-marketplace/internal/auth"
	"github.com/sakif/course-marketplace/internal/model"
	"github.com/sakif/course-marketplace/internal/repository"
)

type demoCourse struct {
	instructor  string
	title       string
	description string
	category    string
	priceCents  int64
}

var demoUsers = []model.User{
	{Email: "ines@example.com", Name: "Ines Instructor", Role: model.RoleInstructor},
	{Email: "omar@example.com", Name: "Omar Instructor", Role: model.RoleInstructor},
	{Email: "alice@example.com", Name: "Alice Learner", Role: model.RoleLearner},
	{Email: "bob@example.com", Name: "Bob Learner", Role: model.RoleLearner},
	{Email: "carol@example.com", Name: "Carol Learner", Role: model.RoleLearner},
	{Email: "admin@example.com", Name: "Site Admin", Role: model.RoleAdmin},
}

var demoCourses = []demoCourse{
	{"ines@example.com", "Go Basics", "Types, functions and packages from scratch.", "programming", 2900},
	{"ines@example.com", "Concurrency in Go", "Goroutines, channels and the sync package.", "programming", 4900},
	{"ines@example.com", "Testing Go Services", "Table tests, fakes and httptest.", "programming", 3900},
	{"ines@example.com", "SQL for Developers", "Joins, indexes and transactions.", "data", 3400},
	{"omar@example.com", "Watercolor Landscapes", "Washes, layering and light.", "art", 1900},
	{"omar@example.com", "Figure Drawing", "Gesture and proportion.", "art", 2400},
	{"omar@example.com", "Jazz Piano Voicings", "Shell voicings and comping.", "music", 4400},
	{"omar@example.com", "Home Recording", "Microphones, gain staging and mixing.", "music", 0},
}

// purchases and reviews are keyed by email and course title.
var demoPurchases = []struct{ user, course string }{
	{"alice@example.com", "Go Basics"},
	{"alice@example.com", "Concurrency in Go"},
	{"bob@example.com", "Go Basics"},
	{"bob@example.com", "Watercolor Landscapes"},
	{"carol@example.com", "Go Basics"},
	{"carol@example.com", "Jazz Piano Voicings"},
	{"carol@example.com", "SQL for Developers"},
}

var demoReviews = []struct {
	user, course string
	rating       int
	comment      string
}{
	{"alice@example.com", "Go Basics", 5, "Clear and quick."},
	{"bob@example.com", "Go Basics", 4, "Good pacing."},
	{"carol@example.com", "Go Basics", 4, ""},
	{"alice@example.com", "Concurrency in Go", 3, "Dense in places."},
	{"carol@example.com", "Jazz Piano Voicings", 5, "Exactly what I needed."},
}

type seeder struct {
	store  repository.Store
	tokens *auth.TokenService
	logger *slog.Logger
}

func (s *seeder) run(ctx context.Context, out io.Writer) error {
	users := make(map[string]model.User, len(demoUsers))
	for _, u := range demoUsers {
		user, err := s.ensureUser(ctx, u)
		if err != nil {
			return err
		}
		users[user.Email] = user
	}

	courses := make(map[string]model.Course, len(demoCourses))
	for _, c := range demoCourses {
		course, err := s.ensureCourse(ctx, users[c.instructor], c)
		if err != nil {
			return err
		}
		courses[course.Title] = course
	}

	newPurchases := 0
	for _, p := range demoPurchases {
		err := s.store.CreatePurchase(ctx, &model.Purchase{
			UserID:   users[p.user].ID,
			CourseID: courses[p.course].ID,
		})
		switch {
		case err == nil:
			newPurchases++
		case errors.Is(err, apperror.ErrConflict):
		default:
			return fmt.Errorf("creating purchase %s/%s: %w", p.user, p.course, err)
		}
	}

	newReviews := 0
	for _, r := range demoReviews {
		courseID := courses[r.course].ID
		existing, err := s.store.FindReviewsByCourse(ctx, courseID)
		if err != nil {
			return fmt.Errorf("listing reviews for %s: %w", r.course, err)
		}
		if hasReviewBy(existing, users[r.user].ID) {
			continue
		}
		if err := s.store.CreateReview(ctx, &model.Review{
			CourseID: courseID,
			UserID:   users[r.user].ID,
			Rating:   r.rating,
			Comment:  r.comment,
		}); err != nil {
			return fmt.Errorf("creating review %s/%s: %w", r.user, r.course, err)
		}
		newReviews++
	}

	s.logger.Info("demo data seeded",
		slog.Int("users", len(users)),
		slog.Int("courses", len(courses)),
		slog.Int("newPurchases", newPurchases),
		slog.Int("newReviews", newReviews),
	)

	return s.printTokens(out, users)
}

func (s *seeder) ensureUser(ctx context.Context, u model.User) (model.User, error) {
	err := s.store.CreateUser(ctx, &u)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, apperror.ErrConflict) {
		return model.User{}, fmt.Errorf("creating user %s: %w", u.Email, err)
	}

	found, err := s.store.FindUsers(ctx, repository.UserFilter{Email: u.Email})
	if err != nil {
		return model.User{}, fmt.Errorf("finding user %s: %w", u.Email, err)
	}
	if len(found) == 0 {
		return model.User{}, fmt.Errorf("user %s conflicts but cannot be found", u.Email)
	}
	return found[0], nil
}

func (s *seeder) ensureCourse(ctx context.Context, instructor model.User, c demoCourse) (model.Course, error) {
	existing, err := s.store.FindCourses(ctx, repository.CourseFilter{InstructorID: instructor.ID})
	if err != nil {
		return model.Course{}, fmt.Errorf("listing courses for %s: %w", instructor.Email, err)
	}
	for _, e := range existing {
		if e.Title == c.title {
			return e, nil
		}
	}

	course := model.Course{
		Title:        c.title,
		Description:  c.description,
		Category:     c.category,
		PriceCents:   c.priceCents,
		InstructorID: instructor.ID,
	}
	if err := s.store.CreateCourse(ctx, &course); err != nil {
		return model.Course{}, fmt.Errorf("creating course %q: %w", c.title, err)
	}
	return course, nil
}

func (s *seeder) printTokens(out io.Writer, users map[string]model.User) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EMAIL\tROLE\tTOKEN")
	for _, u := range demoUsers {
		user := users[u.Email]
		token, err := s.tokens.Generate(user.ID, user.Role)
		if err != nil {
			return fmt.Errorf("signing token for %s: %w", user.Email, err)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", user.Email, user.Role, token)
	}
	return tw.Flush()
}

func hasReviewBy(reviews []model.Review, userID string) bool {
	for _, r := range reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

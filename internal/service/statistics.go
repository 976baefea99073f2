package service

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/course-marketplace/internal/apperror"
	"github.com/sakif/course-marketplace/internal/auth"
	"github.com/sakif/course-marketplace/internal/model"
	"github.com/sakif/course-marketplace/internal/repository"
)

// DefaultStatsConcurrency bounds the per-course lookups when no limit is configured.
const DefaultStatsConcurrency = 8

// StatisticsService builds the admin dashboard's per-course sales and rating report.
type StatisticsService struct {
	purchases   repository.PurchaseRepository
	courses     repository.CourseRepository
	reviews     repository.ReviewRepository
	logger      *slog.Logger
	concurrency int
}

func NewStatisticsService(
	purchases repository.PurchaseRepository,
	courses repository.CourseRepository,
	reviews repository.ReviewRepository,
	logger *slog.Logger,
	concurrency int,
) *StatisticsService {
	if concurrency < 1 {
		concurrency = DefaultStatsConcurrency
	}
	return &StatisticsService{
		purchases:   purchases,
		courses:     courses,
		reviews:     reviews,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Compute returns one CourseStatistic per course with at least one purchase, ordered by
// purchase count (highest first) and then course ID.
//
// Only admins may call it; the role check happens before the store is touched.
// A course deleted between the grouping query and its lookup is left out of the report.
// Any other store failure fails the whole report with ErrUnavailable.
func (s *StatisticsService) Compute(ctx context.Context, caller auth.Caller) ([]model.CourseStatistic, error) {
	if err := auth.RequireRole(caller, model.RoleAdmin); err != nil {
		return nil, err
	}

	groups, err := s.purchases.GroupPurchasesByCourse(ctx)
	if err != nil {
		s.logger.Error("failed to group purchases", slog.String("error", err.Error()))
		return nil, apperror.Unavailable("grouping purchases", err)
	}

	var (
		mu      sync.Mutex
		stats   = make([]model.CourseStatistic, 0, len(groups))
		skipped atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, group := range groups {
		g.Go(func() error {
			stat, ok, err := s.courseStatistic(gctx, group)
			if err != nil {
				return err
			}
			if !ok {
				skipped.Add(1)
				return nil
			}
			mu.Lock()
			stats = append(stats, stat)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to compute statistics", slog.String("error", err.Error()))
		return nil, apperror.Unavailable("computing statistics", err)
	}

	if n := skipped.Load(); n > 0 {
		s.logger.Debug("skipped statistics for missing courses", slog.Int64("skipped", n))
	}

	slices.SortFunc(stats, func(a, b model.CourseStatistic) int {
		if c := cmp.Compare(b.PurchaseCount, a.PurchaseCount); c != 0 {
			return c
		}
		return cmp.Compare(a.CourseID, b.CourseID)
	})

	return stats, nil
}

// courseStatistic assembles the record for one purchase group. ok is false when the
// course no longer exists.
func (s *StatisticsService) courseStatistic(ctx context.Context, group model.PurchaseCount) (model.CourseStatistic, bool, error) {
	course, err := s.courses.GetCourseByID(ctx, group.CourseID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return model.CourseStatistic{}, false, nil
		}
		return model.CourseStatistic{}, false, err
	}

	reviews, err := s.reviews.FindReviewsByCourse(ctx, group.CourseID)
	if err != nil {
		return model.CourseStatistic{}, false, err
	}

	ratings := make([]int, len(reviews))
	for i, r := range reviews {
		ratings[i] = r.Rating
	}

	stat := model.CourseStatistic{
		CourseID:      course.ID,
		Title:         course.Title,
		PurchaseCount: group.Count,
		PriceCents:    course.PriceCents,
	}
	if mean, ok := MeanRating(ratings); ok {
		stat.AverageRating = &mean
	}
	return stat, true, nil
}

// MeanRating returns the arithmetic mean of ratings, or ok=false for an empty slice.
// The sum is accumulated first and divided once.
func MeanRating(ratings []int) (mean float64, ok bool) {
	if len(ratings) == 0 {
		return 0, false
	}
	var sum int
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings)), true
}

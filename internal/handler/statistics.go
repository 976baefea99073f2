package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/course-marketplace/internal/auth"
	"github.com/sakif/course-marketplace/internal/model"
	"github.com/sakif/course-marketplace/internal/service"
)

type StatisticsHandler struct {
	stats  *service.StatisticsService
	logger *slog.Logger
}

func NewStatisticsHandler(stats *service.StatisticsService, logger *slog.Logger) *StatisticsHandler {
	return &StatisticsHandler{stats: stats, logger: logger}
}

type statisticsResponse struct {
	Statistics []model.CourseStatistic `json:"statistics"`
}

// HandleStatistics returns per-course purchase counts and mean ratings.
//
// HTTP: GET /api/dashboard/statistics
// Auth: admin
func (h *StatisticsHandler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFromContext(r.Context())

	stats, err := h.stats.Compute(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statisticsResponse{Statistics: stats})
}

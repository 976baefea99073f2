package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/course-marketplace/internal/apperror"
	"github.com/sakif/course-marketplace/internal/auth"
	"github.com/sakif/course-marketplace/internal/model"
	"github.com/sakif/course-marketplace/internal/paginate"
	"github.com/sakif/course-marketplace/internal/service"
)

const (
	// DefaultPageSize applies when a request sends page without pageSize.
	DefaultPageSize = 10
	// MaxPageSize caps pageSize; larger values are clamped, not rejected.
	MaxPageSize = 100
)

// CourseHandler serves the course listing endpoints.
type CourseHandler struct {
	courses *service.CourseService
	logger  *slog.Logger
}

func NewCourseHandler(courses *service.CourseService, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{courses: courses, logger: logger}
}

type pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
}

type coursesResponse struct {
	Courses    []model.Course `json:"courses"`
	Pagination *pagination    `json:"pagination,omitempty"`
}

// HandleSearch lists courses matching the optional q filter, newest first.
//
// HTTP: GET /api/courses?q=go&page=2&pageSize=3
//
// Without page or pageSize the whole result set is returned. With either, the result
// is windowed by paginate.Slice: out-of-range pages fall back to page 1.
func (h *CourseHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, size, paged, err := pageParams(query.Get("page"), query.Get("pageSize"))
	if err != nil {
		writeError(w, err)
		return
	}

	courses, err := h.courses.Search(r.Context(), query.Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}

	if !paged {
		writeJSON(w, http.StatusOK, coursesResponse{Courses: courses})
		return
	}

	p := paginate.Slice(courses, size, page)
	writeJSON(w, http.StatusOK, coursesResponse{
		Courses: p.Items,
		Pagination: &pagination{
			Page:       p.Number,
			PageSize:   p.Size,
			TotalPages: p.TotalPages,
			TotalItems: p.TotalItems,
		},
	})
}

// HandleCreated lists the calling instructor's own courses.
//
// HTTP: GET /api/courses/created
// Auth: instructor
func (h *CourseHandler) HandleCreated(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFromContext(r.Context())

	courses, err := h.courses.ListCreated(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coursesResponse{Courses: courses})
}

// HandlePurchased lists the courses the caller has bought, most recent first.
//
// HTTP: GET /api/courses/purchased
func (h *CourseHandler) HandlePurchased(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFromContext(r.Context())

	courses, err := h.courses.ListPurchased(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coursesResponse{Courses: courses})
}

// pageParams parses the paging query parameters. Non-numeric values are rejected;
// numeric values are clamped later, so page=0 or page=999 simply land on page 1.
func pageParams(pageStr, sizeStr string) (page, size int, paged bool, err error) {
	if pageStr == "" && sizeStr == "" {
		return 0, 0, false, nil
	}

	page, size = 1, DefaultPageSize
	if pageStr != "" {
		if page, err = strconv.Atoi(pageStr); err != nil {
			return 0, 0, false, apperror.ValidationFailed("page", "page must be a number")
		}
	}
	if sizeStr != "" {
		if size, err = strconv.Atoi(sizeStr); err != nil {
			return 0, 0, false, apperror.ValidationFailed("pageSize", "pageSize must be a number")
		}
	}
	return page, min(size, MaxPageSize), true, nil
}

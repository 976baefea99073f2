package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sakif/course-marketplace/internal/auth"
	"github.com/sakif/course-marketplace/internal/model"
	"github.com/sakif/course-marketplace/internal/service"
)

// SavedCourseHandler serves a learner's bookmarks.
type SavedCourseHandler struct {
	saved    *service.SavedCourseService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewSavedCourseHandler(saved *service.SavedCourseService, validate *validator.Validate, logger *slog.Logger) *SavedCourseHandler {
	return &SavedCourseHandler{saved: saved, validate: validate, logger: logger}
}

type saveCourseRequest struct {
	CourseID string `json:"courseId" validate:"required,max=64"`
}

type savedCoursesResponse struct {
	SavedCourses []model.SavedCourse `json:"savedCourses"`
}

// HandleSave bookmarks a course for the caller.
//
// HTTP: POST /api/courses/saved  {"courseId": "..."}
// 201 on success, 409 if already saved, 404 if the course or learner does not exist.
func (h *SavedCourseHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFromContext(r.Context())

	var req saveCourseRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.saved.Save(r.Context(), caller.UserID, req.CourseID); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("course saved",
		slog.String("userID", caller.UserID),
		slog.String("courseID", req.CourseID),
	)
	writeJSON(w, http.StatusCreated, map[string]string{"courseId": req.CourseID})
}

// HandleUnsave removes a bookmark.
//
// HTTP: DELETE /api/courses/saved/{courseId}
// 204 on success, 404 if the course was not saved.
func (h *SavedCourseHandler) HandleUnsave(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFromContext(r.Context())
	courseID := chi.URLParam(r, "courseId")

	if err := h.saved.Unsave(r.Context(), caller.UserID, courseID); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("course unsaved",
		slog.String("userID", caller.UserID),
		slog.String("courseID", courseID),
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleList returns the caller's bookmarks, oldest first.
//
// HTTP: GET /api/courses/saved
func (h *SavedCourseHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFromContext(r.Context())

	saved, err := h.saved.List(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, savedCoursesResponse{SavedCourses: saved})
}

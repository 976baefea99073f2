package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/course-marketplace/internal/auth"
	"github.com/sakif/course-marketplace/internal/service"
)

// AuthHandler exposes the identity behind the request's token.
//
// Tokens are issued by the identity service (or cmd/seed locally); this API only
// verifies them.
type AuthHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewAuthHandler(users *service.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, logger: logger}
}

// HandleMe returns the currently authenticated user's profile.
//
// HTTP: GET /api/me
// Auth: Required (RequireAuth middleware sets the caller in context)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
		return
	}

	user, err := h.users.GetUserByID(r.Context(), caller.UserID)
	if err != nil {
		h.logger.Warn("HandleMe: user lookup failed",
			slog.String("userID", caller.UserID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

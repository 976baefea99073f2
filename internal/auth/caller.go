package auth

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sakif/course-marketplace/internal/apperror"
	"github.com/sakif/course-marketplace/internal/model"
)

// Caller is the identity attached to an authenticated request.
type Caller struct {
	UserID string
	Role   model.Role
}

// IsZero reports whether c is the anonymous caller.
func (c Caller) IsZero() bool {
	return c.UserID == ""
}

// RequireRole returns nil if the caller holds one of roles, and apperror.Forbidden
// otherwise. Services call it before touching the store.
func RequireRole(c Caller, roles ...model.Role) error {
	if c.IsZero() {
		return apperror.Unauthorized("valid authentication required")
	}
	if slices.Contains(roles, c.Role) {
		return nil
	}

	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return apperror.Forbidden(fmt.Sprintf("%s role required", strings.Join(names, " or ")))
}

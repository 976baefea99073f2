// Package service contains the business rules of the marketplace.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces roles, orchestrates
//	Repository (data layer)  → reads/writes the store
//
// Services depend on repository interfaces, never on a concrete backend, and take
// primitive arguments rather than HTTP types so the CLI commands can call them too.
// Every error they return is an *apperror.AppError: typed store errors pass through,
// untyped ones are classified as Unavailable.
package service

import (
	"strings"

	"github.com/sakif/course-marketplace/internal/apperror"
)

// requireID trims id and fails with a validation error naming field if it is empty.
func requireID(field, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apperror.ValidationFailed(field, field+" is required")
	}
	return id, nil
}

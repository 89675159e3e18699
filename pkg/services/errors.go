package services

import (
	"errors"

	"org-dashboard-backend/pkg/apperror"
	"org-dashboard-backend/pkg/database"
)

// Entity errors surfaced to callers. Foreign-org lookups use the same values.
var (
	ErrPostNotFound    = apperror.NotFound("Post not found")
	ErrProductNotFound = apperror.NotFound("Product not found")
	ErrTaskNotFound    = apperror.NotFound("Task not found")
	ErrColumnNotFound  = apperror.NotFound("Column not found")
)

// translate maps store misses onto the entity's NotFound error
func translate(err error, notFound *apperror.Error) error {
	if errors.Is(err, database.ErrNotFound) {
		return notFound
	}
	return err
}

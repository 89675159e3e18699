package services

import (
	"database/sql"

	"org-dashboard-backend/pkg/models"
)

// nonEmpty reports whether an optional string carries a non-empty value.
// Empty required fields in a patch are ignored rather than applied.
func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}

// nullable converts a present patch field into a storable value; null clears the column.
func nullable(n models.Nullable[string]) sql.NullString {
	return sql.NullString{String: n.Value, Valid: n.Valid}
}

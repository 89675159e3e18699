package models

import "time"

// Post is an organization-owned article
type Post struct {
	ID             string    `json:"id" db:"id"`
	Title          string    `json:"title" db:"title"`
	Content        *string   `json:"content,omitempty" db:"content"`
	Published      bool      `json:"published" db:"published"`
	AuthorID       string    `json:"author_id" db:"author_id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// CreatePostInput represents the request payload for creating a post
type CreatePostInput struct {
	Title     string  `json:"title" validate:"required"`
	Content   *string `json:"content,omitempty"`
	Published *bool   `json:"published,omitempty"`
}

// UpdatePostInput represents a partial post update.
// Content may be cleared with an explicit null.
type UpdatePostInput struct {
	Title     *string          `json:"title,omitempty"`
	Content   Nullable[string] `json:"content,omitzero"`
	Published *bool            `json:"published,omitempty"`
}

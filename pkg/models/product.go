package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductCategories is the catalogue offered by the dashboard forms.
// The stored category is a free string; this list is advisory.
var ProductCategories = []string{
	"Electronics",
	"Furniture",
	"Clothing",
	"Toys",
	"Groceries",
	"Books",
	"Jewelry",
	"Beauty Products",
}

// Product is an organization-owned catalogue entry
type Product struct {
	ID             string          `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Description    *string         `json:"description,omitempty" db:"description"`
	Price          decimal.Decimal `json:"price" db:"price"`
	Category       string          `json:"category" db:"category"`
	PhotoURL       *string         `json:"photo_url,omitempty" db:"photo_url"`
	AuthorID       string          `json:"author_id" db:"author_id"`
	OrganizationID string          `json:"organization_id" db:"organization_id"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// CreateProductInput represents the request payload for creating a product
type CreateProductInput struct {
	Name        string          `json:"name" validate:"required"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Category    string          `json:"category" validate:"required"`
	PhotoURL    *string         `json:"photo_url,omitempty" validate:"omitempty,url"`
}

// UpdateProductInput represents a partial product update
type UpdateProductInput struct {
	Name        *string          `json:"name,omitempty"`
	Description Nullable[string] `json:"description,omitzero"`
	Price       *decimal.Decimal `json:"price,omitempty" validate:"omitempty,gte=0"`
	Category    *string          `json:"category,omitempty"`
	PhotoURL    Nullable[string] `json:"photo_url,omitzero" validate:"omitempty,url"`
}

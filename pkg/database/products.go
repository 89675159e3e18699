package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"org-dashboard-backend/pkg/models"
)

const productColumns = `id, name, description, price, category, photo_url, author_id, organization_id, created_at, updated_at`

var productUpdatable = map[string]bool{
	"name":        true,
	"description": true,
	"price":       true,
	"category":    true,
	"photo_url":   true,
}

func scanProduct(row scanner) (models.Product, error) {
	var p models.Product
	var description, photoURL sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &description, &p.Price, &p.Category, &photoURL,
		&p.AuthorID, &p.OrganizationID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return p, err
	}
	p.Description = stringPtr(description)
	p.PhotoURL = stringPtr(photoURL)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func productWhere(orgID string, filter ProductFilter) *whereBuilder {
	w := scopedTo(orgID)
	if filter.AuthorID != "" {
		w.add("author_id=$%d", filter.AuthorID)
	}
	if filter.Category != "" {
		w.add("category=$%d", filter.Category)
	}
	return w
}

// ListProducts returns the organization's products, newest first
func (s *SQLDatabase) ListProducts(ctx context.Context, orgID string, filter ProductFilter) ([]models.Product, error) {
	w := productWhere(orgID, filter)
	rows, err := s.query(ctx, s.db, "SELECT "+productColumns+" FROM products"+w.String()+" ORDER BY created_at DESC, id DESC", w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProduct 根据ID获取商品
func (s *SQLDatabase) GetProduct(ctx context.Context, id, orgID string) (*models.Product, error) {
	p, err := scanProduct(s.queryRow(ctx, s.db,
		"SELECT "+productColumns+" FROM products WHERE id=$1 AND organization_id=$2", id, orgID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// CreateProduct assigns ID and timestamps, then inserts the product
func (s *SQLDatabase) CreateProduct(ctx context.Context, product *models.Product) error {
	now := s.timestamp()
	product.ID = s.newID()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := s.exec(ctx, s.db,
		`INSERT INTO products (`+productColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		product.ID, product.Name, nullString(product.Description), product.Price, product.Category,
		nullString(product.PhotoURL), product.AuthorID, product.OrganizationID, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// UpdateProduct applies patch and returns the stored product
func (s *SQLDatabase) UpdateProduct(ctx context.Context, id, orgID string, patch Patch) (*models.Product, error) {
	if err := s.updateRow(ctx, "products", productUpdatable, id, orgID, patch); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id, orgID)
}

// DeleteProduct 删除商品
func (s *SQLDatabase) DeleteProduct(ctx context.Context, id, orgID string) error {
	return s.deleteRow(ctx, s.db, "products", id, orgID)
}

// CountProducts counts products matching filter
func (s *SQLDatabase) CountProducts(ctx context.Context, orgID string, filter ProductFilter) (int, error) {
	return s.count(ctx, "products", productWhere(orgID, filter))
}

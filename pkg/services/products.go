package services

import (
	"context"
	"fmt"

	"org-dashboard-backend/pkg/database"
	"org-dashboard-backend/pkg/models"
)

// ProductService defines all product-related operations
type ProductService interface {
	List(ctx context.Context, orgID string) ([]models.Product, error)
	ListByAuthor(ctx context.Context, authorID, orgID string) ([]models.Product, error)
	ListByCategory(ctx context.Context, category, orgID string) ([]models.Product, error)
	GetByID(ctx context.Context, id, orgID string) (*models.Product, error)
	Create(ctx context.Context, input models.CreateProductInput, authorID, orgID string) (*models.Product, error)
	Update(ctx context.Context, id, orgID string, input models.UpdateProductInput) (*models.Product, error)
	Delete(ctx context.Context, id, orgID string) error
}

type productService struct {
	db database.DatabaseInterface
}

// NewProductService creates a new product service
func NewProductService(db database.DatabaseInterface) ProductService {
	return &productService{db: db}
}

func (s *productService) list(ctx context.Context, orgID string, filter database.ProductFilter) ([]models.Product, error) {
	products, err := s.db.ListProducts(ctx, orgID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *productService) List(ctx context.Context, orgID string) ([]models.Product, error) {
	return s.list(ctx, orgID, database.ProductFilter{})
}

func (s *productService) ListByAuthor(ctx context.Context, authorID, orgID string) ([]models.Product, error) {
	return s.list(ctx, orgID, database.ProductFilter{AuthorID: authorID})
}

func (s *productService) ListByCategory(ctx context.Context, category, orgID string) ([]models.Product, error) {
	return s.list(ctx, orgID, database.ProductFilter{Category: category})
}

func (s *productService) GetByID(ctx context.Context, id, orgID string) (*models.Product, error) {
	product, err := s.db.GetProduct(ctx, id, orgID)
	if err != nil {
		return nil, translate(err, ErrProductNotFound)
	}
	return product, nil
}

func (s *productService) Create(ctx context.Context, input models.CreateProductInput, authorID, orgID string) (*models.Product, error) {
	product := &models.Product{
		Name:           input.Name,
		Description:    input.Description,
		Price:          input.Price,
		Category:       input.Category,
		PhotoURL:       input.PhotoURL,
		AuthorID:       authorID,
		OrganizationID: orgID,
	}
	// An empty photo URL means "no photo"
	if product.PhotoURL != nil && *product.PhotoURL == "" {
		product.PhotoURL = nil
	}
	if err := s.db.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, id, orgID string, input models.UpdateProductInput) (*models.Product, error) {
	if _, err := s.GetByID(ctx, id, orgID); err != nil {
		return nil, err
	}

	var patch database.Patch
	if nonEmpty(input.Name) {
		patch.Set("name", *input.Name)
	}
	if input.Description.Set {
		patch.Set("description", nullable(input.Description))
	}
	if input.Price != nil {
		patch.Set("price", *input.Price)
	}
	if nonEmpty(input.Category) {
		patch.Set("category", *input.Category)
	}
	if input.PhotoURL.Set {
		patch.Set("photo_url", nullable(input.PhotoURL))
	}

	product, err := s.db.UpdateProduct(ctx, id, orgID, patch)
	if err != nil {
		return nil, translate(err, ErrProductNotFound)
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id, orgID string) error {
	if _, err := s.GetByID(ctx, id, orgID); err != nil {
		return err
	}
	return translate(s.db.DeleteProduct(ctx, id, orgID), ErrProductNotFound)
}

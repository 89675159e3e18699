package actions

import (
	"context"

	"org-dashboard-backend/pkg/invalidation"
	"org-dashboard-backend/pkg/models"
)

// ProductCategories returns the advisory category catalogue
func (a *Actions) ProductCategories() []string {
	return append([]string(nil), models.ProductCategories...)
}

// ListProducts returns the organization's products, newest first
func (a *Actions) ListProducts(ctx context.Context, sess models.Session) ([]models.Product, error) {
	return run(ctx, a, "listProducts", "Failed to fetch products", func(ctx context.Context) ([]models.Product, error) {
		if err := requireOrg(sess); err != nil {
			return nil, err
		}
		return a.products.List(ctx, sess.OrgID)
	})
}

// GetProductsByAuthor returns products created by authorID
func (a *Actions) GetProductsByAuthor(ctx context.Context, sess models.Session, authorID string) ([]models.Product, error) {
	return run(ctx, a, "getProductsByAuthor", "Failed to fetch products", func(ctx context.Context) ([]models.Product, error) {
		if err := requireOrg(sess); err != nil {
			return nil, err
		}
		return a.products.ListByAuthor(ctx, authorID, sess.OrgID)
	})
}

// GetProductsByCategory returns products in category
func (a *Actions) GetProductsByCategory(ctx context.Context, sess models.Session, category string) ([]models.Product, error) {
	return run(ctx, a, "getProductsByCategory", "Failed to fetch products", func(ctx context.Context) ([]models.Product, error) {
		if err := requireOrg(sess); err != nil {
			return nil, err
		}
		return a.products.ListByCategory(ctx, category, sess.OrgID)
	})
}

// GetProduct returns one product of the organization
func (a *Actions) GetProduct(ctx context.Context, sess models.Session, id string) (*models.Product, error) {
	return run(ctx, a, "getProduct", "Failed to fetch product", func(ctx context.Context) (*models.Product, error) {
		if err := requireOrg(sess); err != nil {
			return nil, err
		}
		return a.products.GetByID(ctx, id, sess.OrgID)
	})
}

// CreateProduct validates input and records the caller as author
func (a *Actions) CreateProduct(ctx context.Context, sess models.Session, input models.CreateProductInput) (*models.Product, error) {
	return run(ctx, a, "createProduct", "Failed to create product", func(ctx context.Context) (*models.Product, error) {
		if err := requireMember(sess); err != nil {
			return nil, err
		}
		if err := a.validate(input); err != nil {
			return nil, err
		}
		product, err := a.products.Create(ctx, input, sess.UserID, sess.OrgID)
		if err != nil {
			return nil, err
		}
		a.invalidate(ctx, sess.OrgID, collection(invalidation.EntityProducts))
		return product, nil
	})
}

// UpdateProduct applies a partial update
func (a *Actions) UpdateProduct(ctx context.Context, sess models.Session, id string, input models.UpdateProductInput) (*models.Product, error) {
	return run(ctx, a, "updateProduct", "Failed to update product", func(ctx context.Context) (*models.Product, error) {
		if err := requireOrg(sess); err != nil {
			return nil, err
		}
		if err := a.validate(input); err != nil {
			return nil, err
		}
		product, err := a.products.Update(ctx, id, sess.OrgID, input)
		if err != nil {
			return nil, err
		}
		a.invalidate(ctx, sess.OrgID, collection(invalidation.EntityProducts), record(invalidation.EntityProducts, id))
		return product, nil
	})
}

// DeleteProduct removes a product
func (a *Actions) DeleteProduct(ctx context.Context, sess models.Session, id string) error {
	_, err := run(ctx, a, "deleteProduct", "Failed to delete product", func(ctx context.Context) (struct{}, error) {
		if err := requireOrg(sess); err != nil {
			return struct{}{}, err
		}
		if err := a.products.Delete(ctx, id, sess.OrgID); err != nil {
			return struct{}{}, err
		}
		a.invalidate(ctx, sess.OrgID, collection(invalidation.EntityProducts), record(invalidation.EntityProducts, id))
		return struct{}{}, nil
	})
	return err
}

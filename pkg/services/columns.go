package services

import (
	"context"
	"fmt"

	"org-dashboard-backend/pkg/apperror"
	"org-dashboard-backend/pkg/database"
	"org-dashboard-backend/pkg/models"
)

// ColumnService defines all column-related operations
type ColumnService interface {
	List(ctx context.Context, orgID string) ([]models.Column, error)
	GetByID(ctx context.Context, id, orgID string) (*models.Column, error)
	Create(ctx context.Context, input models.CreateColumnInput, orgID string) (*models.Column, error)
	Update(ctx context.Context, id, orgID string, input models.UpdateColumnInput) (*models.Column, error)
	Delete(ctx context.Context, id, orgID string) error
	// Reorder persists the complete column order; position i gets order i.
	Reorder(ctx context.Context, orgID string, ids []string) error
}

type columnService struct {
	db database.DatabaseInterface
}

// NewColumnService creates a new column service
func NewColumnService(db database.DatabaseInterface) ColumnService {
	return &columnService{db: db}
}

func (s *columnService) List(ctx context.Context, orgID string) ([]models.Column, error) {
	columns, err := s.db.ListColumns(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	return columns, nil
}

func (s *columnService) GetByID(ctx context.Context, id, orgID string) (*models.Column, error) {
	column, err := s.db.GetColumn(ctx, id, orgID)
	if err != nil {
		return nil, translate(err, ErrColumnNotFound)
	}
	return column, nil
}

func (s *columnService) Create(ctx context.Context, input models.CreateColumnInput, orgID string) (*models.Column, error) {
	column := &models.Column{
		Title:          input.Title,
		Color:          models.DefaultColumnColor,
		OrganizationID: orgID,
	}
	if nonEmpty(input.Color) {
		column.Color = *input.Color
	}
	if input.Order != nil {
		column.Order = *input.Order
	}
	if err := s.db.CreateColumn(ctx, column); err != nil {
		return nil, err
	}
	return column, nil
}

func (s *columnService) Update(ctx context.Context, id, orgID string, input models.UpdateColumnInput) (*models.Column, error) {
	if _, err := s.GetByID(ctx, id, orgID); err != nil {
		return nil, err
	}

	var patch database.Patch
	if nonEmpty(input.Title) {
		patch.Set("title", *input.Title)
	}
	if nonEmpty(input.Color) {
		patch.Set("color", *input.Color)
	}
	if input.Order != nil {
		patch.Set("position", *input.Order)
	}

	column, err := s.db.UpdateColumn(ctx, id, orgID, patch)
	if err != nil {
		return nil, translate(err, ErrColumnNotFound)
	}
	return column, nil
}

func (s *columnService) Delete(ctx context.Context, id, orgID string) error {
	if _, err := s.GetByID(ctx, id, orgID); err != nil {
		return err
	}
	return translate(s.db.DeleteColumn(ctx, id, orgID), ErrColumnNotFound)
}

func (s *columnService) Reorder(ctx context.Context, orgID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return apperror.Validation("Column IDs must not be empty", "")
		}
		if _, dup := seen[id]; dup {
			return apperror.Validation("Duplicate column ID in order", id)
		}
		seen[id] = struct{}{}
	}
	return translate(s.db.ReorderColumns(ctx, orgID, ids), ErrColumnNotFound)
}

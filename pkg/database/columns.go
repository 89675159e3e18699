package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"org-dashboard-backend/pkg/models"
)

const columnColumns = `id, title, color, position, organization_id, created_at, updated_at`

var columnUpdatable = map[string]bool{"title": true, "color": true, "position": true}

func scanColumn(row scanner) (models.Column, error) {
	var c models.Column
	if err := row.Scan(&c.ID, &c.Title, &c.Color, &c.Order, &c.OrganizationID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return c, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

// ListColumns returns the organization's columns in board order
func (s *SQLDatabase) ListColumns(ctx context.Context, orgID string) ([]models.Column, error) {
	rows, err := s.query(ctx, s.db,
		"SELECT "+columnColumns+" FROM board_columns WHERE organization_id=$1 ORDER BY position ASC, created_at ASC, id ASC", orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	defer rows.Close()

	columns := []models.Column{}
	for rows.Next() {
		c, err := scanColumn(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		columns = append(columns, c)
	}
	return columns, rows.Err()
}

// GetColumn 根据ID获取列
func (s *SQLDatabase) GetColumn(ctx context.Context, id, orgID string) (*models.Column, error) {
	c, err := scanColumn(s.queryRow(ctx, s.db,
		"SELECT "+columnColumns+" FROM board_columns WHERE id=$1 AND organization_id=$2", id, orgID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get column: %w", err)
	}
	return &c, nil
}

// CreateColumn assigns ID and timestamps, then inserts the column
func (s *SQLDatabase) CreateColumn(ctx context.Context, column *models.Column) error {
	now := s.timestamp()
	column.ID = s.newID()
	column.CreatedAt = now
	column.UpdatedAt = now

	_, err := s.exec(ctx, s.db,
		`INSERT INTO board_columns (`+columnColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		column.ID, column.Title, column.Color, column.Order, column.OrganizationID, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create column: %w", err)
	}
	return nil
}

// UpdateColumn applies patch and returns the stored column
func (s *SQLDatabase) UpdateColumn(ctx context.Context, id, orgID string, patch Patch) (*models.Column, error) {
	if err := s.updateRow(ctx, "board_columns", columnUpdatable, id, orgID, patch); err != nil {
		return nil, err
	}
	return s.GetColumn(ctx, id, orgID)
}

// DeleteColumn 删除列
func (s *SQLDatabase) DeleteColumn(ctx context.Context, id, orgID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.exec(ctx, tx,
			`UPDATE tasks SET column_id=NULL, updated_at=$1 WHERE column_id=$2 AND organization_id=$3`,
			s.timestamp(), id, orgID,
		); err != nil {
			return fmt.Errorf("failed to unassign tasks: %w", err)
		}
		return s.deleteRow(ctx, tx, "board_columns", id, orgID)
	})
}

// ReorderColumns 批量更新列顺序
func (s *SQLDatabase) ReorderColumns(ctx context.Context, orgID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	now := s.timestamp()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for i, id := range ids {
			res, err := s.exec(ctx, tx,
				`UPDATE board_columns SET position=$1, updated_at=$2 WHERE id=$3 AND organization_id=$4`,
				i, now, id, orgID,
			)
			if err != nil {
				return fmt.Errorf("failed to reorder column %s: %w", id, err)
			}
			if err := requireAffected(res); err != nil {
				return fmt.Errorf("column %s: %w", id, err)
			}
		}
		return nil
	})
}

// CountColumns counts the organization's columns
func (s *SQLDatabase) CountColumns(ctx context.Context, orgID string) (int, error) {
	return s.count(ctx, "board_columns", scopedTo(orgID))
}

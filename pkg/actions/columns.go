package actions

import (
	"context"

	"org-dashboard-backend/pkg/invalidation"
	"org-dashboard-backend/pkg/models"
)

// ListColumns returns the organization's columns in board order
func (a *Actions) ListColumns(ctx context.Context, sess models.Session) ([]models.Column, error) {
	return run(ctx, a, "listColumns", "Failed to fetch columns", func(ctx context.Context) ([]models.Column, error) {
		if err := requireOrg(sess); err != nil {
			return nil, err
		}
		return a.columns.List(ctx, sess.OrgID)
	})
}

// GetColumn returns one column of the organization
func (a *Actions) GetColumn(ctx context.Context, sess models.Session, id string) (*models.Column, error) {
	return run(ctx, a, "getColumn", "Failed to fetch column", func(ctx context.Context) (*models.Column, error) {
		if err := requireOrg(sess); err != nil {
			return nil, err
		}
		return a.columns.GetByID(ctx, id, sess.OrgID)
	})
}

// CreateColumn validates input and applies color/order defaults
func (a *Actions) CreateColumn(ctx context.Context, sess models.Session, input models.CreateColumnInput) (*models.Column, error) {
	return run(ctx, a, "createColumn", "Failed to create column", func(ctx context.Context) (*models.Column, error) {
		if err := requireMember(sess); err != nil {
			return nil, err
		}
		if err := a.validate(input); err != nil {
			return nil, err
		}
		column, err := a.columns.Create(ctx, input, sess.OrgID)
		if err != nil {
			return nil, err
		}
		a.invalidate(ctx, sess.OrgID, collection(invalidation.EntityColumns))
		return column, nil
	})
}

// UpdateColumn applies a partial update
func (a *Actions) UpdateColumn(ctx context.Context, sess models.Session, id string, input models.UpdateColumnInput) (*models.Column, error) {
	return run(ctx, a, "updateColumn", "Failed to update column", func(ctx context.Context) (*models.Column, error) {
		if err := requireOrg(sess); err != nil {
			return nil, err
		}
		if err := a.validate(input); err != nil {
			return nil, err
		}
		column, err := a.columns.Update(ctx, id, sess.OrgID, input)
		if err != nil {
			return nil, err
		}
		a.invalidate(ctx, sess.OrgID, collection(invalidation.EntityColumns), record(invalidation.EntityColumns, id))
		return column, nil
	})
}

// DeleteColumn removes a column; its tasks stay, unassigned
func (a *Actions) DeleteColumn(ctx context.Context, sess models.Session, id string) error {
	_, err := run(ctx, a, "deleteColumn", "Failed to delete column", func(ctx context.Context) (struct{}, error) {
		if err := requireOrg(sess); err != nil {
			return struct{}{}, err
		}
		affected, err := a.tasks.ListByColumn(ctx, id, sess.OrgID)
		if err != nil {
			return struct{}{}, err
		}
		if err := a.columns.Delete(ctx, id, sess.OrgID); err != nil {
			return struct{}{}, err
		}

		keys := []invalidation.Key{
			collection(invalidation.EntityColumns),
			record(invalidation.EntityColumns, id),
		}
		if len(affected) > 0 {
			keys = append(keys, collection(invalidation.EntityTasks))
			for _, t := range affected {
				keys = append(keys, record(invalidation.EntityTasks, t.ID))
			}
		}
		a.invalidate(ctx, sess.OrgID, keys...)
		return struct{}{}, nil
	})
	return err
}

// ReorderColumns persists the complete column order in one batch
func (a *Actions) ReorderColumns(ctx context.Context, sess models.Session, ids []string) error {
	_, err := run(ctx, a, "reorderColumns", "Failed to reorder columns", func(ctx context.Context) (struct{}, error) {
		if err := requireOrg(sess); err != nil {
			return struct{}{}, err
		}
		if err := a.validate(models.ReorderColumnsInput{ColumnIDs: ids}); err != nil {
			return struct{}{}, err
		}
		if len(ids) == 0 {
			return struct{}{}, nil
		}
		if err := a.columns.Reorder(ctx, sess.OrgID, ids); err != nil {
			return struct{}{}, err
		}
		keys := []invalidation.Key{collection(invalidation.EntityColumns)}
		for _, id := range ids {
			keys = append(keys, record(invalidation.EntityColumns, id))
		}
		a.invalidate(ctx, sess.OrgID, keys...)
		return struct{}{}, nil
	})
	return err
}

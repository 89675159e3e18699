package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"org-dashboard-backend/pkg/models"
)

const taskColumns = `id, title, description, status, column_id, author_id, organization_id, created_at, updated_at`

var taskUpdatable = map[string]bool{
	"title":       true,
	"description": true,
	"status":      true,
	"column_id":   true,
}

func scanTask(row scanner) (models.Task, error) {
	var t models.Task
	var description, columnID sql.NullString
	var status string
	if err := row.Scan(&t.ID, &t.Title, &description, &status, &columnID,
		&t.AuthorID, &t.OrganizationID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return t, err
	}
	t.Status = models.TaskStatus(status)
	t.Description = stringPtr(description)
	t.ColumnID = stringPtr(columnID)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func taskWhere(orgID string, filter TaskFilter) *whereBuilder {
	w := scopedTo(orgID)
	if filter.AuthorID != "" {
		w.add("author_id=$%d", filter.AuthorID)
	}
	if filter.Status != "" {
		w.add("status=$%d", string(filter.Status))
	}
	if filter.ColumnID != "" {
		w.add("column_id=$%d", filter.ColumnID)
	}
	return w
}

// ListTasks returns the organization's tasks, newest first
func (s *SQLDatabase) ListTasks(ctx context.Context, orgID string, filter TaskFilter) ([]models.Task, error) {
	w := taskWhere(orgID, filter)
	rows, err := s.query(ctx, s.db, "SELECT "+taskColumns+" FROM tasks"+w.String()+" ORDER BY created_at DESC, id DESC", w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask 根据ID获取任务
func (s *SQLDatabase) GetTask(ctx context.Context, id, orgID string) (*models.Task, error) {
	t, err := scanTask(s.queryRow(ctx, s.db,
		"SELECT "+taskColumns+" FROM tasks WHERE id=$1 AND organization_id=$2", id, orgID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

// CreateTask assigns ID and timestamps, then inserts the task
func (s *SQLDatabase) CreateTask(ctx context.Context, task *models.Task) error {
	now := s.timestamp()
	task.ID = s.newID()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := s.exec(ctx, s.db,
		`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		task.ID, task.Title, nullString(task.Description), string(task.Status), nullString(task.ColumnID),
		task.AuthorID, task.OrganizationID, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// UpdateTask applies patch and returns the stored task
func (s *SQLDatabase) UpdateTask(ctx context.Context, id, orgID string, patch Patch) (*models.Task, error) {
	if err := s.updateRow(ctx, "tasks", taskUpdatable, id, orgID, patch); err != nil {
		return nil, err
	}
	return s.GetTask(ctx, id, orgID)
}

// DeleteTask 删除任务
func (s *SQLDatabase) DeleteTask(ctx context.Context, id, orgID string) error {
	return s.deleteRow(ctx, s.db, "tasks", id, orgID)
}

// CountTasks counts tasks matching filter
func (s *SQLDatabase) CountTasks(ctx context.Context, orgID string, filter TaskFilter) (int, error) {
	return s.count(ctx, "tasks", taskWhere(orgID, filter))
}

package services

import (
	"context"
	"fmt"

	"org-dashboard-backend/pkg/database"
	"org-dashboard-backend/pkg/models"
)

// TaskService defines all task-related operations
type TaskService interface {
	List(ctx context.Context, orgID string) ([]models.Task, error)
	ListByAuthor(ctx context.Context, authorID, orgID string) ([]models.Task, error)
	ListByStatus(ctx context.Context, status models.TaskStatus, orgID string) ([]models.Task, error)
	ListByColumn(ctx context.Context, columnID, orgID string) ([]models.Task, error)
	GetByID(ctx context.Context, id, orgID string) (*models.Task, error)
	Create(ctx context.Context, input models.CreateTaskInput, authorID, orgID string) (*models.Task, error)
	Update(ctx context.Context, id, orgID string, input models.UpdateTaskInput) (*models.Task, error)
	Delete(ctx context.Context, id, orgID string) error
}

type taskService struct {
	db database.DatabaseInterface
}

// NewTaskService creates a new task service
func NewTaskService(db database.DatabaseInterface) TaskService {
	return &taskService{db: db}
}

func (s *taskService) list(ctx context.Context, orgID string, filter database.TaskFilter) ([]models.Task, error) {
	tasks, err := s.db.ListTasks(ctx, orgID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *taskService) List(ctx context.Context, orgID string) ([]models.Task, error) {
	return s.list(ctx, orgID, database.TaskFilter{})
}

func (s *taskService) ListByAuthor(ctx context.Context, authorID, orgID string) ([]models.Task, error) {
	return s.list(ctx, orgID, database.TaskFilter{AuthorID: authorID})
}

func (s *taskService) ListByStatus(ctx context.Context, status models.TaskStatus, orgID string) ([]models.Task, error) {
	return s.list(ctx, orgID, database.TaskFilter{Status: status})
}

func (s *taskService) ListByColumn(ctx context.Context, columnID, orgID string) ([]models.Task, error) {
	return s.list(ctx, orgID, database.TaskFilter{ColumnID: columnID})
}

func (s *taskService) GetByID(ctx context.Context, id, orgID string) (*models.Task, error) {
	task, err := s.db.GetTask(ctx, id, orgID)
	if err != nil {
		return nil, translate(err, ErrTaskNotFound)
	}
	return task, nil
}

// checkColumn ensures a task only ever points at a column of its own organization
func (s *taskService) checkColumn(ctx context.Context, columnID, orgID string) error {
	if _, err := s.db.GetColumn(ctx, columnID, orgID); err != nil {
		return translate(err, ErrColumnNotFound)
	}
	return nil
}

func (s *taskService) Create(ctx context.Context, input models.CreateTaskInput, authorID, orgID string) (*models.Task, error) {
	task := &models.Task{
		Title:          input.Title,
		Description:    input.Description,
		Status:         input.Status,
		AuthorID:       authorID,
		OrganizationID: orgID,
	}
	if nonEmpty(input.ColumnID) {
		if err := s.checkColumn(ctx, *input.ColumnID, orgID); err != nil {
			return nil, err
		}
		task.ColumnID = input.ColumnID
	}
	if err := s.db.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Update(ctx context.Context, id, orgID string, input models.UpdateTaskInput) (*models.Task, error) {
	if _, err := s.GetByID(ctx, id, orgID); err != nil {
		return nil, err
	}

	var patch database.Patch
	if nonEmpty(input.Title) {
		patch.Set("title", *input.Title)
	}
	if input.Description.Set {
		patch.Set("description", nullable(input.Description))
	}
	if input.Status != nil && *input.Status != "" {
		patch.Set("status", string(*input.Status))
	}
	if input.ColumnID.Set {
		if input.ColumnID.Valid {
			if err := s.checkColumn(ctx, input.ColumnID.Value, orgID); err != nil {
				return nil, err
			}
		}
		patch.Set("column_id", nullable(input.ColumnID))
	}

	task, err := s.db.UpdateTask(ctx, id, orgID, patch)
	if err != nil {
		return nil, translate(err, ErrTaskNotFound)
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, id, orgID string) error {
	if _, err := s.GetByID(ctx, id, orgID); err != nil {
		return err
	}
	return translate(s.db.DeleteTask(ctx, id, orgID), ErrTaskNotFound)
}

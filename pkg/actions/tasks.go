package actions

import (
	"context"

	"org-dashboard-backend/pkg/apperror"
	"org-dashboard-backend/pkg/invalidation"
	"org-dashboard-backend/pkg/models"
)

// ListTasks returns the organization's tasks, newest first
func (a *Actions) ListTasks(ctx context.Context, sess models.Session) ([]models.Task, error) {
	return run(ctx, a, "listTasks", "Failed to fetch tasks", func(ctx context.Context) ([]models.Task, error) {
		if err := requireOrg(sess); err != nil {
			return nil, err
		}
		return a.tasks.List(ctx, sess.OrgID)
	})
}

// GetTasksByAuthor returns tasks created by authorID
func (a *Actions) GetTasksByAuthor(ctx context.Context, sess models.Session, authorID string) ([]models.Task, error) {
	return run(ctx, a, "getTasksByAuthor", "Failed to fetch tasks", func(ctx context.Context) ([]models.Task, error) {
		if err := requireOrg(sess); err != nil {
			return nil, err
		}
		return a.tasks.ListByAuthor(ctx, authorID, sess.OrgID)
	})
}

// GetTasksByStatus returns tasks in status
func (a *Actions) GetTasksByStatus(ctx context.Context, sess models.Session, status models.TaskStatus) ([]models.Task, error) {
	return run(ctx, a, "getTasksByStatus", "Failed to fetch tasks", func(ctx context.Context) ([]models.Task, error) {
		if err := requireOrg(sess); err != nil {
			return nil, err
		}
		if !status.Valid() {
			return nil, apperror.Validation("status must be one of TODO IN_PROGRESS DONE", string(status))
		}
		return a.tasks.ListByStatus(ctx, status, sess.OrgID)
	})
}

// GetTask returns one task of the organization
func (a *Actions) GetTask(ctx context.Context, sess models.Session, id string) (*models.Task, error) {
	return run(ctx, a, "getTask", "Failed to fetch task", func(ctx context.Context) (*models.Task, error) {
		if err := requireOrg(sess); err != nil {
			return nil, err
		}
		return a.tasks.GetByID(ctx, id, sess.OrgID)
	})
}

// CreateTask validates input and records the caller as author
func (a *Actions) CreateTask(ctx context.Context, sess models.Session, input models.CreateTaskInput) (*models.Task, error) {
	return run(ctx, a, "createTask", "Failed to create task", func(ctx context.Context) (*models.Task, error) {
		if err := requireMember(sess); err != nil {
			return nil, err
		}
		if err := a.validate(input); err != nil {
			return nil, err
		}
		task, err := a.tasks.Create(ctx, input, sess.UserID, sess.OrgID)
		if err != nil {
			return nil, err
		}
		a.invalidate(ctx, sess.OrgID, collection(invalidation.EntityTasks))
		return task, nil
	})
}

// UpdateTask applies a partial update, including column reassignment
func (a *Actions) UpdateTask(ctx context.Context, sess models.Session, id string, input models.UpdateTaskInput) (*models.Task, error) {
	return run(ctx, a, "updateTask", "Failed to update task", func(ctx context.Context) (*models.Task, error) {
		if err := requireOrg(sess); err != nil {
			return nil, err
		}
		if err := a.validate(input); err != nil {
			return nil, err
		}
		task, err := a.tasks.Update(ctx, id, sess.OrgID, input)
		if err != nil {
			return nil, err
		}
		a.invalidate(ctx, sess.OrgID, collection(invalidation.EntityTasks), record(invalidation.EntityTasks, id))
		return task, nil
	})
}

// MoveTask reassigns a task to columnID; an empty columnID unassigns it
func (a *Actions) MoveTask(ctx context.Context, sess models.Session, id, columnID string) (*models.Task, error) {
	input := models.UpdateTaskInput{ColumnID: models.Null[string]()}
	if columnID != "" {
		input.ColumnID = models.NewNullable(columnID)
	}
	return a.UpdateTask(ctx, sess, id, input)
}

// DeleteTask removes a task
func (a *Actions) DeleteTask(ctx context.Context, sess models.Session, id string) error {
	_, err := run(ctx, a, "deleteTask", "Failed to delete task", func(ctx context.Context) (struct{}, error) {
		if err := requireOrg(sess); err != nil {
			return struct{}{}, err
		}
		if err := a.tasks.Delete(ctx, id, sess.OrgID); err != nil {
			return struct{}{}, err
		}
		a.invalidate(ctx, sess.OrgID, collection(invalidation.EntityTasks), record(invalidation.EntityTasks, id))
		return struct{}{}, nil
	})
	return err
}

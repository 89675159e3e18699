package models

import "time"

// TaskStatus is the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// TaskStatuses lists every valid status in board order
var TaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}

// Valid reports whether s is one of the known statuses
func (s TaskStatus) Valid() bool {
	for _, known := range TaskStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Task is a kanban card. ColumnID is a weak reference; a task may be unassigned.
type Task struct {
	ID             string     `json:"id" db:"id"`
	Title          string     `json:"title" db:"title"`
	Description    *string    `json:"description,omitempty" db:"description"`
	Status         TaskStatus `json:"status" db:"status"`
	ColumnID       *string    `json:"column_id" db:"column_id"`
	AuthorID       string     `json:"author_id" db:"author_id"`
	OrganizationID string     `json:"organization_id" db:"organization_id"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// InColumn reports whether the task is assigned to columnID
func (t Task) InColumn(columnID string) bool {
	return t.ColumnID != nil && *t.ColumnID == columnID
}

// CreateTaskInput represents the request payload for creating a task
type CreateTaskInput struct {
	Title       string     `json:"title" validate:"required"`
	Description *string    `json:"description,omitempty"`
	Status      TaskStatus `json:"status" validate:"required,oneof=TODO IN_PROGRESS DONE"`
	ColumnID    *string    `json:"column_id,omitempty"`
}

// UpdateTaskInput represents a partial task update.
// ColumnID null unassigns the task.
type UpdateTaskInput struct {
	Title       *string          `json:"title,omitempty"`
	Description Nullable[string] `json:"description,omitzero"`
	Status      *TaskStatus      `json:"status,omitempty" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	ColumnID    Nullable[string] `json:"column_id,omitzero"`
}

// Column is an ordered kanban bucket. Order is a relative sort key within the organization.
type Column struct {
	ID             string    `json:"id" db:"id"`
	Title          string    `json:"title" db:"title"`
	Color          string    `json:"color" db:"color"`
	Order          int       `json:"order" db:"position"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultColumnColor is used when a column is created without a color
const DefaultColumnColor = "#3b82f6"

// CreateColumnInput represents the request payload for creating a column
type CreateColumnInput struct {
	Title string  `json:"title" validate:"required"`
	Color *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Order *int    `json:"order,omitempty" validate:"omitempty,gte=0"`
}

// UpdateColumnInput represents a partial column update
type UpdateColumnInput struct {
	Title *string `json:"title,omitempty"`
	Color *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Order *int    `json:"order,omitempty" validate:"omitempty,gte=0"`
}

// ReorderColumnsInput carries the complete desired column order
type ReorderColumnsInput struct {
	ColumnIDs []string `json:"column_ids" validate:"unique,dive,required"`
}

// Apply returns t with the patch applied the way the server applies it:
// empty title and status are ignored, Description and ColumnID follow their
// null semantics. UpdatedAt is left to the server.
func (in UpdateTaskInput) Apply(t Task) Task {
	if in.Title != nil && *in.Title != "" {
		t.Title = *in.Title
	}
	if in.Description.Set {
		t.Description = in.Description.Ptr()
	}
	if in.Status != nil && *in.Status != "" {
		t.Status = *in.Status
	}
	if in.ColumnID.Set {
		t.ColumnID = in.ColumnID.Ptr()
	}
	return t
}

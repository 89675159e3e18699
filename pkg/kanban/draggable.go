package kanban

// Draggable is the payload of a drag gesture. The set of implementations is
// closed: ColumnItem and TaskItem.
type Draggable interface {
	draggableID() string
	kind() string
}

// ColumnItem is a column being dragged or hovered
type ColumnItem struct {
	ID string
}

// TaskItem is a task being dragged or hovered. ColumnID is where the UI
// rendered the task and may be empty for unassigned tasks.
type TaskItem struct {
	ID       string
	ColumnID string
}

func (c ColumnItem) draggableID() string { return c.ID }
func (ColumnItem) kind() string          { return "Column" }

func (t TaskItem) draggableID() string { return t.ID }
func (TaskItem) kind() string          { return "Task" }

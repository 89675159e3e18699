package kanban

import (
	"slices"
	"sort"

	"org-dashboard-backend/pkg/models"
)

// Board is the engine's local copy of columns and tasks
type Board struct {
	Columns []models.Column
	Tasks   []models.Task
}

// NewBoard sorts columns by order and copies both slices
func NewBoard(columns []models.Column, tasks []models.Task) Board {
	b := Board{
		Columns: slices.Clone(columns),
		Tasks:   slices.Clone(tasks),
	}
	sort.SliceStable(b.Columns, func(i, j int) bool {
		return b.Columns[i].Order < b.Columns[j].Order
	})
	return b
}

func (b Board) clone() Board {
	return Board{Columns: slices.Clone(b.Columns), Tasks: slices.Clone(b.Tasks)}
}

// ColumnIDs returns column IDs in board order
func (b Board) ColumnIDs() []string {
	ids := make([]string, len(b.Columns))
	for i, c := range b.Columns {
		ids[i] = c.ID
	}
	return ids
}

// ColumnIndex returns the position of columnID or -1
func (b Board) ColumnIndex(columnID string) int {
	return slices.IndexFunc(b.Columns, func(c models.Column) bool { return c.ID == columnID })
}

// Column returns the column with id
func (b Board) Column(id string) (models.Column, bool) {
	if i := b.ColumnIndex(id); i >= 0 {
		return b.Columns[i], true
	}
	return models.Column{}, false
}

// Task returns the task with id
func (b Board) Task(id string) (models.Task, bool) {
	i := slices.IndexFunc(b.Tasks, func(t models.Task) bool { return t.ID == id })
	if i < 0 {
		return models.Task{}, false
	}
	return b.Tasks[i], true
}

// TasksIn returns the tasks of columnID in board order. An empty columnID
// selects unassigned tasks.
func (b Board) TasksIn(columnID string) []models.Task {
	var out []models.Task
	for _, t := range b.Tasks {
		if columnOf(t) == columnID {
			out = append(out, t)
		}
	}
	return out
}

// taskPosition returns the 1-based position of taskID within its column and the column size
func (b Board) taskPosition(taskID, columnID string) (int, int) {
	tasks := b.TasksIn(columnID)
	pos := slices.IndexFunc(tasks, func(t models.Task) bool { return t.ID == taskID })
	return pos + 1, len(tasks)
}

func (b *Board) setTaskColumn(taskID, columnID string) {
	for i := range b.Tasks {
		if b.Tasks[i].ID == taskID {
			if columnID == "" {
				b.Tasks[i].ColumnID = nil
			} else {
				id := columnID
				b.Tasks[i].ColumnID = &id
			}
			return
		}
	}
}

func (b *Board) applyColumnOrder(ids []string) {
	columns := make([]models.Column, 0, len(b.Columns))
	for i, id := range ids {
		if c, ok := b.Column(id); ok {
			c.Order = i
			columns = append(columns, c)
		}
	}
	b.Columns = columns
}

func columnOf(t models.Task) string {
	if t.ColumnID == nil {
		return ""
	}
	return *t.ColumnID
}

// ArrayMove returns a copy of s with the element at from moved to to.
// Out-of-range indexes return an unchanged copy.
func ArrayMove[T any](s []T, from, to int) []T {
	out := slices.Clone(s)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	v := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, v)
}

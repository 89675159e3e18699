// Package kanban drives column ordering and task-to-column assignment from
// drag gestures. The engine keeps a local board, persists changes through a
// Mutator and narrates each step for screen readers.
package kanban

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Phase of the drag state machine
type Phase int

const (
	Idle Phase = iota
	Dragging
)

func (p Phase) String() string {
	if p == Dragging {
		return "dragging"
	}
	return "idle"
}

// Outcome of a finished gesture
type Outcome int

const (
	Dropped Outcome = iota
	Cancelled
)

func (o Outcome) String() string {
	if o == Cancelled {
		return "cancelled"
	}
	return "dropped"
}

// PersistPolicy decides when a task's column reassignment is written
type PersistPolicy int

const (
	// PersistOnOver writes each reassignment as soon as the task hovers a new
	// column. A later cancel does not undo it.
	PersistOnOver PersistPolicy = iota
	// PersistOnDrop keeps reassignments local until the drop commits them;
	// cancel discards them.
	PersistOnDrop
)

// Mutator persists board changes
type Mutator interface {
	MoveTask(ctx context.Context, taskID, columnID string) error
	ReorderColumns(ctx context.Context, columnIDs []string) error
}

// Errors returned for gestures that do not fit the current phase
var (
	ErrDragInProgress = errors.New("a drag is already in progress")
	ErrNotDragging    = errors.New("no drag in progress")
	ErrUnknownItem    = errors.New("dragged item is not on the board")
)

// Option configures an Engine
type Option func(*Engine)

// WithPolicy selects the persistence policy; PersistOnOver is the default
func WithPolicy(p PersistPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithAnnouncer receives accessibility announcements
func WithAnnouncer(fn func(string)) Option {
	return func(e *Engine) {
		e.announce = fn
	}
}

// Engine is the drag state machine. It is safe for concurrent use; gestures are serialized.
type Engine struct {
	mu       sync.Mutex
	board    Board
	mutator  Mutator
	policy   PersistPolicy
	announce func(string)

	phase  Phase
	active Draggable
	// origin is the column a dragged task was picked up from
	origin string
	// before is the board at pick-up, restored when PersistOnDrop cancels
	before Board
	// pending is the uncommitted target column under PersistOnDrop
	pending *string
}

// NewEngine creates an idle engine over board
func NewEngine(board Board, mutator Mutator, opts ...Option) *Engine {
	e := &Engine{
		board:    board.clone(),
		mutator:  mutator,
		announce: func(string) {},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Board returns a copy of the local board
func (e *Engine) Board() Board {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board.clone()
}

// SetBoard replaces the local board with canonical server state
func (e *Engine) SetBoard(b Board) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.board = b.clone()
}

// Phase returns the current phase
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Active returns the dragged item, nil when idle
func (e *Engine) Active() Draggable {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// DragStart picks up item
func (e *Engine) DragStart(item Draggable) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != Idle {
		return ErrDragInProgress
	}

	switch it := item.(type) {
	case ColumnItem:
		idx := e.board.ColumnIndex(it.ID)
		if idx < 0 {
			return fmt.Errorf("column %s: %w", it.ID, ErrUnknownItem)
		}
		e.say(pickedUpColumn(e.board.Columns[idx].Title, idx+1, len(e.board.Columns)))
	case TaskItem:
		task, ok := e.board.Task(it.ID)
		if !ok {
			return fmt.Errorf("task %s: %w", it.ID, ErrUnknownItem)
		}
		e.origin = columnOf(task)
		pos, n := e.board.taskPosition(task.ID, e.origin)
		e.say(pickedUpTask(task.Title, pos, n, e.columnTitle(e.origin)))
	default:
		return fmt.Errorf("unsupported draggable %T", item)
	}

	e.phase = Dragging
	e.active = item
	e.before = e.board.clone()
	e.pending = nil
	return nil
}

// DragOver reports that the dragged item hovers over. A task hovering a task in
// another column, or hovering a column, is reassigned to that column.
func (e *Engine) DragOver(ctx context.Context, over Draggable) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != Dragging {
		return ErrNotDragging
	}
	if over == nil || over.draggableID() == e.active.draggableID() {
		return nil
	}

	switch active := e.active.(type) {
	case ColumnItem:
		if o, ok := over.(ColumnItem); ok {
			idx := e.board.ColumnIndex(o.ID)
			e.say(columnMovedOver(e.columnTitle(active.ID), e.columnTitle(o.ID), idx+1, len(e.board.Columns)))
		}
		return nil
	case TaskItem:
		return e.taskOver(ctx, active, over)
	}
	return nil
}

func (e *Engine) taskOver(ctx context.Context, active TaskItem, over Draggable) error {
	task, ok := e.board.Task(active.ID)
	if !ok {
		return nil
	}
	current := columnOf(task)

	var target string
	switch o := over.(type) {
	case TaskItem:
		overTask, ok := e.board.Task(o.ID)
		if !ok {
			return nil
		}
		target = columnOf(overTask)
		pos, n := e.board.taskPosition(overTask.ID, target)
		if target != e.origin {
			e.say(taskMovedOverColumn(task.Title, e.columnTitle(target), pos, n))
		} else {
			e.say(taskMovedWithinColumn(pos, n, e.columnTitle(target)))
		}
		// Hovering an unassigned task carries no column to move to
		if target == "" {
			return nil
		}
	case ColumnItem:
		if e.board.ColumnIndex(o.ID) < 0 {
			return nil
		}
		target = o.ID
		e.say(taskMovedOntoColumn(task.Title, e.columnTitle(target)))
	}

	if target == current {
		return nil
	}
	return e.reassign(ctx, task.ID, target)
}

func (e *Engine) reassign(ctx context.Context, taskID, columnID string) error {
	if e.policy == PersistOnDrop {
		e.board.setTaskColumn(taskID, columnID)
		target := columnID
		e.pending = &target
		return nil
	}
	if err := e.mutator.MoveTask(ctx, taskID, columnID); err != nil {
		return fmt.Errorf("move task: %w", err)
	}
	e.board.setTaskColumn(taskID, columnID)
	return nil
}

// DragEnd drops the dragged item on over. A nil target cancels the gesture.
func (e *Engine) DragEnd(ctx context.Context, over Draggable) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != Dragging {
		return Cancelled, ErrNotDragging
	}
	if over == nil {
		e.cancel()
		return Cancelled, nil
	}
	defer e.reset()

	switch active := e.active.(type) {
	case ColumnItem:
		return Dropped, e.dropColumn(ctx, active, over)
	case TaskItem:
		return Dropped, e.dropTask(ctx, active, over)
	}
	return Dropped, nil
}

func (e *Engine) dropColumn(ctx context.Context, active ColumnItem, over Draggable) error {
	overColumn := ""
	switch o := over.(type) {
	case ColumnItem:
		overColumn = o.ID
	case TaskItem:
		if t, ok := e.board.Task(o.ID); ok {
			overColumn = columnOf(t)
		}
	}

	from := e.board.ColumnIndex(active.ID)
	to := e.board.ColumnIndex(overColumn)
	if from < 0 || to < 0 {
		return nil
	}
	e.say(columnDropped(e.columnTitle(active.ID), to+1, len(e.board.Columns)))
	if from == to {
		return nil
	}

	ids := ArrayMove(e.board.ColumnIDs(), from, to)
	if err := e.mutator.ReorderColumns(ctx, ids); err != nil {
		return fmt.Errorf("reorder columns: %w", err)
	}
	e.board.applyColumnOrder(ids)
	return nil
}

func (e *Engine) dropTask(ctx context.Context, active TaskItem, over Draggable) error {
	if o, ok := over.(TaskItem); ok {
		if overTask, ok := e.board.Task(o.ID); ok {
			target := columnOf(overTask)
			pos, n := e.board.taskPosition(overTask.ID, target)
			if target != e.origin {
				e.say(taskDroppedIntoColumn(e.columnTitle(target), pos, n))
			} else {
				e.say(taskDroppedWithinColumn(pos, n, e.columnTitle(target)))
			}
		}
	}

	if e.policy != PersistOnDrop || e.pending == nil {
		return nil
	}
	if *e.pending == e.origin {
		return nil
	}
	if err := e.mutator.MoveTask(ctx, active.ID, *e.pending); err != nil {
		e.board = e.before
		return fmt.Errorf("move task: %w", err)
	}
	return nil
}

// DragCancel abandons the gesture. Under PersistOnOver, reassignments already
// written during the drag stay.
func (e *Engine) DragCancel() (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != Dragging {
		return Cancelled, ErrNotDragging
	}
	e.cancel()
	return Cancelled, nil
}

func (e *Engine) cancel() {
	if e.policy == PersistOnDrop {
		e.board = e.before
	}
	e.say(dragCancelled(e.active.kind()))
	e.reset()
}

func (e *Engine) reset() {
	e.phase = Idle
	e.active = nil
	e.origin = ""
	e.before = Board{}
	e.pending = nil
}

func (e *Engine) columnTitle(id string) string {
	if c, ok := e.board.Column(id); ok {
		return c.Title
	}
	return ""
}

func (e *Engine) say(msg string) {
	e.announce(msg)
}

package kanban

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"org-dashboard-backend/pkg/models"
)

type move struct {
	task   string
	column string
}

type fakeMutator struct {
	mu         sync.Mutex
	moves      []move
	reorders   [][]string
	moveErr    error
	reorderErr error
}

func (f *fakeMutator) MoveTask(_ context.Context, taskID, columnID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.moveErr != nil {
		return f.moveErr
	}
	f.moves = append(f.moves, move{taskID, columnID})
	return nil
}

func (f *fakeMutator) ReorderColumns(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reorderErr != nil {
		return f.reorderErr
	}
	f.reorders = append(f.reorders, ids)
	return nil
}

func strptr(s string) *string { return &s }

func testBoard() Board {
	return NewBoard(
		[]models.Column{
			{ID: "c2", Title: "Doing", Order: 1},
			{ID: "c1", Title: "Todo", Order: 0},
			{ID: "c3", Title: "Done", Order: 2},
		},
		[]models.Task{
			{ID: "t1", Title: "Write docs", ColumnID: strptr("c1")},
			{ID: "t2", Title: "Fix bug", ColumnID: strptr("c1")},
			{ID: "t3", Title: "Ship", ColumnID: strptr("c2")},
		},
	)
}

func recorder() (*[]string, Option) {
	var msgs []string
	return &msgs, WithAnnouncer(func(m string) { msgs = append(msgs, m) })
}

func TestNewBoardSortsColumns(t *testing.T) {
	b := testBoard()
	assert.Equal(t, []string{"c1", "c2", "c3"}, b.ColumnIDs())
	assert.Len(t, b.TasksIn("c1"), 2)
	assert.Empty(t, b.TasksIn(""))
}

func TestArrayMove(t *testing.T) {
	in := []string{"a", "b", "c", "d"}

	assert.Equal(t, []string{"d", "a", "b", "c"}, ArrayMove(in, 3, 0))
	assert.Equal(t, []string{"b", "c", "a", "d"}, ArrayMove(in, 0, 2))
	assert.Equal(t, in, ArrayMove(in, 1, 1))
	assert.Equal(t, in, ArrayMove(in, -1, 2))
	assert.Equal(t, in, ArrayMove(in, 0, 9))
	assert.Equal(t, []string{"a", "b", "c", "d"}, in, "input must not be modified")
}

func TestDragOverPersistsImmediately(t *testing.T) {
	m := &fakeMutator{}
	e := NewEngine(testBoard(), m)
	ctx := context.Background()

	require.NoError(t, e.DragStart(TaskItem{ID: "t1", ColumnID: "c1"}))
	require.NoError(t, e.DragOver(ctx, TaskItem{ID: "t3", ColumnID: "c2"}))

	assert.Equal(t, []move{{"t1", "c2"}}, m.moves)
	task, _ := e.Board().Task("t1")
	assert.True(t, task.InColumn("c2"))

	// Same column hover does not persist again
	require.NoError(t, e.DragOver(ctx, TaskItem{ID: "t3", ColumnID: "c2"}))
	assert.Len(t, m.moves, 1)
}

func TestCancelAfterDragOverKeepsReassignment(t *testing.T) {
	m := &fakeMutator{}
	e := NewEngine(testBoard(), m, WithPolicy(PersistOnOver))
	ctx := context.Background()

	require.NoError(t, e.DragStart(TaskItem{ID: "t1", ColumnID: "c1"}))
	require.NoError(t, e.DragOver(ctx, ColumnItem{ID: "c2"}))

	outcome, err := e.DragCancel()
	require.NoError(t, err)
	assert.Equal(t, Cancelled, outcome)
	assert.Equal(t, Idle, e.Phase())

	task, _ := e.Board().Task("t1")
	assert.True(t, task.InColumn("c2"))
	assert.Equal(t, []move{{"t1", "c2"}}, m.moves)
}

func TestCancelUnderPersistOnDropDiscardsReassignment(t *testing.T) {
	m := &fakeMutator{}
	e := NewEngine(testBoard(), m, WithPolicy(PersistOnDrop))
	ctx := context.Background()

	require.NoError(t, e.DragStart(TaskItem{ID: "t1", ColumnID: "c1"}))
	require.NoError(t, e.DragOver(ctx, ColumnItem{ID: "c2"}))

	task, _ := e.Board().Task("t1")
	assert.True(t, task.InColumn("c2"), "local board follows the hover")
	assert.Empty(t, m.moves)

	_, err := e.DragCancel()
	require.NoError(t, err)

	task, _ = e.Board().Task("t1")
	assert.True(t, task.InColumn("c1"))
	assert.Empty(t, m.moves)
}

func TestPersistOnDropCommitsOnDrop(t *testing.T) {
	m := &fakeMutator{}
	e := NewEngine(testBoard(), m, WithPolicy(PersistOnDrop))
	ctx := context.Background()

	require.NoError(t, e.DragStart(TaskItem{ID: "t1", ColumnID: "c1"}))
	require.NoError(t, e.DragOver(ctx, ColumnItem{ID: "c3"}))

	outcome, err := e.DragEnd(ctx, ColumnItem{ID: "c3"})
	require.NoError(t, err)
	assert.Equal(t, Dropped, outcome)
	assert.Equal(t, []move{{"t1", "c3"}}, m.moves)
}

func TestPersistOnDropRestoresBoardOnFailure(t *testing.T) {
	m := &fakeMutator{moveErr: errors.New("offline")}
	e := NewEngine(testBoard(), m, WithPolicy(PersistOnDrop))
	ctx := context.Background()

	require.NoError(t, e.DragStart(TaskItem{ID: "t1", ColumnID: "c1"}))
	require.NoError(t, e.DragOver(ctx, ColumnItem{ID: "c3"}))

	_, err := e.DragEnd(ctx, ColumnItem{ID: "c3"})
	require.Error(t, err)

	task, _ := e.Board().Task("t1")
	assert.True(t, task.InColumn("c1"))
	assert.Equal(t, Idle, e.Phase())
}

func TestDragOverFailureLeavesBoard(t *testing.T) {
	m := &fakeMutator{moveErr: errors.New("offline")}
	e := NewEngine(testBoard(), m)

	require.NoError(t, e.DragStart(TaskItem{ID: "t1", ColumnID: "c1"}))
	err := e.DragOver(context.Background(), ColumnItem{ID: "c2"})
	require.Error(t, err)

	task, _ := e.Board().Task("t1")
	assert.True(t, task.InColumn("c1"))
	assert.Equal(t, Dragging, e.Phase())
}

func TestColumnDropReordersFullList(t *testing.T) {
	m := &fakeMutator{}
	msgs, announcer := recorder()
	e := NewEngine(testBoard(), m, announcer)
	ctx := context.Background()

	require.NoError(t, e.DragStart(ColumnItem{ID: "c3"}))
	require.NoError(t, e.DragOver(ctx, ColumnItem{ID: "c1"}))
	outcome, err := e.DragEnd(ctx, ColumnItem{ID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, Dropped, outcome)

	require.Len(t, m.reorders, 1)
	assert.Equal(t, []string{"c3", "c1", "c2"}, m.reorders[0])

	b := e.Board()
	assert.Equal(t, []string{"c3", "c1", "c2"}, b.ColumnIDs())
	for i, c := range b.Columns {
		assert.Equal(t, i, c.Order)
	}

	assert.Equal(t, []string{
		"Picked up Column Done at position: 3 of 3",
		"Column Done was moved over Todo at position 1 of 3",
		"Column Done was dropped into position 1 of 3",
	}, *msgs)
}

func TestColumnDropOnItselfDoesNotPersist(t *testing.T) {
	m := &fakeMutator{}
	e := NewEngine(testBoard(), m)
	ctx := context.Background()

	require.NoError(t, e.DragStart(ColumnItem{ID: "c2"}))
	_, err := e.DragEnd(ctx, ColumnItem{ID: "c2"})
	require.NoError(t, err)
	assert.Empty(t, m.reorders)
}

func TestColumnDropOverTaskUsesTaskColumn(t *testing.T) {
	m := &fakeMutator{}
	e := NewEngine(testBoard(), m)
	ctx := context.Background()

	require.NoError(t, e.DragStart(ColumnItem{ID: "c1"}))
	_, err := e.DragEnd(ctx, TaskItem{ID: "t3", ColumnID: "c2"})
	require.NoError(t, err)

	require.Len(t, m.reorders, 1)
	assert.Equal(t, []string{"c2", "c1", "c3"}, m.reorders[0])
}

func TestColumnReorderFailureKeepsOrder(t *testing.T) {
	m := &fakeMutator{reorderErr: errors.New("boom")}
	e := NewEngine(testBoard(), m)
	ctx := context.Background()

	require.NoError(t, e.DragStart(ColumnItem{ID: "c3"}))
	_, err := e.DragEnd(ctx, ColumnItem{ID: "c1"})
	require.Error(t, err)
	assert.Equal(t, []string{"c1", "c2", "c3"}, e.Board().ColumnIDs())
	assert.Equal(t, Idle, e.Phase())
}

func TestTaskAnnouncements(t *testing.T) {
	m := &fakeMutator{}
	msgs, announcer := recorder()
	e := NewEngine(testBoard(), m, announcer)
	ctx := context.Background()

	require.NoError(t, e.DragStart(TaskItem{ID: "t2", ColumnID: "c1"}))
	require.NoError(t, e.DragOver(ctx, TaskItem{ID: "t1", ColumnID: "c1"}))
	require.NoError(t, e.DragOver(ctx, TaskItem{ID: "t3", ColumnID: "c2"}))
	_, err := e.DragEnd(ctx, TaskItem{ID: "t3", ColumnID: "c2"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Picked up Task Fix bug at position: 2 of 2 in column Todo",
		"Task was moved over position 1 of 2 in column Todo",
		"Task Fix bug was moved over column Doing in position 1 of 1",
		"Task was dropped into column Doing in position 2 of 2",
	}, *msgs)
}

func TestDropWithoutTargetCancels(t *testing.T) {
	msgs, announcer := recorder()
	e := NewEngine(testBoard(), &fakeMutator{}, announcer)

	require.NoError(t, e.DragStart(ColumnItem{ID: "c1"}))
	outcome, err := e.DragEnd(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, Cancelled, outcome)
	assert.Equal(t, "Dragging Column cancelled.", (*msgs)[len(*msgs)-1])
}

func TestPhaseErrors(t *testing.T) {
	e := NewEngine(testBoard(), &fakeMutator{})
	ctx := context.Background()

	assert.ErrorIs(t, e.DragOver(ctx, ColumnItem{ID: "c1"}), ErrNotDragging)
	_, err := e.DragEnd(ctx, ColumnItem{ID: "c1"})
	assert.ErrorIs(t, err, ErrNotDragging)
	_, err = e.DragCancel()
	assert.ErrorIs(t, err, ErrNotDragging)

	assert.ErrorIs(t, e.DragStart(TaskItem{ID: "missing"}), ErrUnknownItem)
	assert.Equal(t, Idle, e.Phase())

	require.NoError(t, e.DragStart(ColumnItem{ID: "c1"}))
	assert.ErrorIs(t, e.DragStart(ColumnItem{ID: "c2"}), ErrDragInProgress)
	assert.Equal(t, ColumnItem{ID: "c1"}, e.Active())
}

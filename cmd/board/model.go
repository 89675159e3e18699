package main

import (
	"context"
	"slices"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"org-dashboard-backend/pkg/client"
	"org-dashboard-backend/pkg/kanban"
	"org-dashboard-backend/pkg/models"
)

const maxAnnouncements = 3

type (
	boardMsg struct {
		columns []models.Column
		tasks   []models.Task
		err     error
	}
	dragMsg struct {
		err error
	}
	staleMsg struct{}
)

// announcer collects engine announcements; the engine may call it from a command goroutine
type announcer struct {
	mu    sync.Mutex
	lines []string
}

func (a *announcer) push(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lines = append(a.lines, msg)
	if len(a.lines) > maxAnnouncements {
		a.lines = a.lines[len(a.lines)-maxAnnouncements:]
	}
}

func (a *announcer) recent() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.lines)
}

type model struct {
	ctx     context.Context
	queries *client.Queries
	engine  *kanban.Engine
	ann     *announcer

	keys keyMap
	help help.Model

	// row -1 selects the column header
	col, row int
	dragged  kanban.Draggable
	over     kanban.Draggable
	overCol  int
	overRow  int

	loading bool
	busy    bool
	detail  bool
	err     error

	// a refetch was asked for mid-gesture
	pendingRefresh bool

	width, height int
}

func newModel(ctx context.Context, queries *client.Queries, policy kanban.PersistPolicy) *model {
	ann := &announcer{}
	return &model{
		ctx:     ctx,
		queries: queries,
		engine:  kanban.NewEngine(kanban.Board{}, queries, kanban.WithPolicy(policy), kanban.WithAnnouncer(ann.push)),
		ann:     ann,
		keys:    defaultKeyMap(),
		help:    help.New(),
		row:     -1,
		loading: true,
		width:   80,
		height:  24,
	}
}

func (m *model) Init() tea.Cmd {
	return m.load()
}

// load fetches columns and tasks concurrently through the query cache
func (m *model) load() tea.Cmd {
	ctx, q := m.ctx, m.queries
	return func() tea.Msg {
		var msg boardMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			msg.columns, err = q.Columns(gctx)
			return err
		})
		g.Go(func() (err error) {
			msg.tasks, err = q.Tasks(gctx)
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case boardMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		// a refetch must not clobber the engine's copy mid-gesture
		if m.engine.Phase() != kanban.Idle || m.busy {
			m.pendingRefresh = true
			return m, nil
		}
		m.err = nil
		m.engine.SetBoard(kanban.NewBoard(msg.columns, msg.tasks))
		m.clampCursor()
		return m, nil

	case staleMsg:
		m.pendingRefresh = true
		return m, m.refreshIfIdle()

	case dragMsg:
		m.busy = false
		m.err = msg.err
		m.follow()
		if m.engine.Phase() == kanban.Idle {
			m.over = nil
		}
		return m, m.refreshIfIdle()

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit
	}
	if m.busy {
		return nil
	}
	if m.engine.Phase() == kanban.Dragging {
		return m.handleDragKey(msg)
	}

	board := m.engine.Board()
	switch {
	case key.Matches(msg, m.keys.Left):
		m.col--
		m.clampCursor()
	case key.Matches(msg, m.keys.Right):
		m.col++
		m.clampCursor()
	case key.Matches(msg, m.keys.Up):
		m.row--
		m.clampCursor()
	case key.Matches(msg, m.keys.Down):
		m.row++
		m.clampCursor()
	case key.Matches(msg, m.keys.Detail):
		_, ok := m.selectedTask()
		m.detail = ok && !m.detail
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Refresh):
		m.queries.InvalidateBoard()
		m.loading = true
		return m.load()
	case key.Matches(msg, m.keys.Grab):
		if len(board.Columns) == 0 {
			return nil
		}
		var item kanban.Draggable = kanban.ColumnItem{ID: board.Columns[m.col].ID}
		if t, ok := m.selectedTask(); ok {
			item = kanban.TaskItem{ID: t.ID, ColumnID: board.Columns[m.col].ID}
		}
		m.err = m.engine.DragStart(item)
		if m.err == nil {
			m.detail = false
			m.dragged, m.over = item, item
			m.overCol, m.overRow = m.col, m.row
		}
	}
	return nil
}

func (m *model) handleDragKey(msg tea.KeyMsg) tea.Cmd {
	board := m.engine.Board()
	switch {
	case key.Matches(msg, m.keys.Cancel):
		_, m.err = m.engine.DragCancel()
		m.over = nil
		m.follow()
		return m.refreshIfIdle()

	case key.Matches(msg, m.keys.Grab), key.Matches(msg, m.keys.Detail):
		over := m.over
		return m.run(func(ctx context.Context) error {
			_, err := m.engine.DragEnd(ctx, over)
			return err
		})

	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Right):
		next := m.overCol - 1
		if key.Matches(msg, m.keys.Right) {
			next = m.overCol + 1
		}
		if next < 0 || next >= len(board.Columns) {
			return nil
		}
		m.overCol, m.overRow = next, -1
		m.over = kanban.ColumnItem{ID: board.Columns[next].ID}
		over := m.over
		return m.run(func(ctx context.Context) error {
			return m.engine.DragOver(ctx, over)
		})

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		if _, ok := m.engine.Active().(kanban.TaskItem); !ok || len(board.Columns) == 0 {
			return nil
		}
		columnID := board.Columns[m.overCol].ID
		tasks := board.TasksIn(columnID)
		next := m.overRow - 1
		if key.Matches(msg, m.keys.Down) {
			next = m.overRow + 1
		}
		if next < 0 || next >= len(tasks) {
			return nil
		}
		m.overRow = next
		m.over = kanban.TaskItem{ID: tasks[next].ID, ColumnID: columnID}
		over := m.over
		return m.run(func(ctx context.Context) error {
			return m.engine.DragOver(ctx, over)
		})
	}
	return nil
}

// refreshIfIdle reloads the board when a refresh is owed and no gesture or
// engine call is in progress
func (m *model) refreshIfIdle() tea.Cmd {
	if !m.pendingRefresh || m.busy || m.engine.Phase() != kanban.Idle {
		return nil
	}
	m.pendingRefresh = false
	m.loading = true
	return m.load()
}

// run executes an engine call off the UI goroutine
func (m *model) run(fn func(ctx context.Context) error) tea.Cmd {
	m.busy = true
	ctx := m.ctx
	return func() tea.Msg {
		return dragMsg{err: fn(ctx)}
	}
}

// follow moves the cursor onto the dragged item
func (m *model) follow() {
	board := m.engine.Board()
	switch item := m.dragged.(type) {
	case kanban.TaskItem:
		m.focusTask(board, item.ID)
	case kanban.ColumnItem:
		if i := board.ColumnIndex(item.ID); i >= 0 {
			m.col, m.row = i, -1
		}
	}
	m.clampCursor()
}

func (m *model) focusTask(board kanban.Board, taskID string) {
	t, ok := board.Task(taskID)
	if !ok || t.ColumnID == nil {
		return
	}
	col := board.ColumnIndex(*t.ColumnID)
	if col < 0 {
		return
	}
	m.col = col
	m.row = slices.IndexFunc(board.TasksIn(*t.ColumnID), func(x models.Task) bool { return x.ID == taskID })
}

func (m *model) clampCursor() {
	board := m.engine.Board()
	if len(board.Columns) == 0 {
		m.col, m.row = 0, -1
		return
	}
	m.col = max(0, min(m.col, len(board.Columns)-1))
	n := len(board.TasksIn(board.Columns[m.col].ID))
	m.row = max(-1, min(m.row, n-1))
}

func (m *model) selectedTask() (models.Task, bool) {
	board := m.engine.Board()
	if m.row < 0 || m.col >= len(board.Columns) {
		return models.Task{}, false
	}
	tasks := board.TasksIn(board.Columns[m.col].ID)
	if m.row >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[m.row], true
}

package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"org-dashboard-backend/pkg/kanban"
	"org-dashboard-backend/pkg/models"
)

const (
	minColumnWidth = 18
	maxColumnWidth = 32
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#c0caf5"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e"))
	announceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7dcfff"))
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("#33467c")).Foreground(lipgloss.Color("#c0caf5"))
	draggingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e0af68"))
	detailStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#3b4261")).Padding(0, 1)
)

// glamour renderers are expensive; keep one per wrap width
var renderers sync.Map // map[int]*glamour.TermRenderer

func renderMarkdown(text string, width int) string {
	if text == "" {
		return dimStyle.Italic(true).Render("No description")
	}
	var r *glamour.TermRenderer
	if cached, ok := renderers.Load(width); ok {
		r = cached.(*glamour.TermRenderer)
	} else {
		var err error
		r, err = glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
		if err != nil {
			return text
		}
		renderers.Store(width, r)
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimSpace(out)
}

func (m *model) View() string {
	var b strings.Builder

	header := titleStyle.Render("Board")
	switch {
	case m.loading:
		header += dimStyle.Render("  loading…")
	case m.busy:
		header += dimStyle.Render("  saving…")
	case m.queries.IsPending():
		header += dimStyle.Render("  syncing…")
	}
	b.WriteString(header + "\n\n")

	board := m.engine.Board()
	if len(board.Columns) == 0 && !m.loading {
		b.WriteString(dimStyle.Render("No columns yet.") + "\n")
	} else {
		b.WriteString(m.renderColumns(board) + "\n")
	}

	if n := len(board.TasksIn("")); n > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d unassigned task(s)", n)) + "\n")
	}

	if m.detail {
		if t, ok := m.selectedTask(); ok {
			b.WriteString("\n" + m.renderDetail(t) + "\n")
		}
	}

	b.WriteString("\n")
	for _, line := range m.ann.recent() {
		b.WriteString(announceStyle.Render(line) + "\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m *model) columnWidth(n int) int {
	if n == 0 {
		return maxColumnWidth
	}
	w := m.width/n - 2
	return max(minColumnWidth, min(w, maxColumnWidth))
}

func (m *model) renderColumns(board kanban.Board) string {
	width := m.columnWidth(len(board.Columns))
	dragging := m.engine.Phase() == kanban.Dragging
	active := m.engine.Active()

	views := make([]string, 0, len(board.Columns))
	for i, c := range board.Columns {
		style := lipgloss.NewStyle().
			Width(width).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(columnColor(c))).
			Padding(0, 1)
		if dragging && i == m.overCol {
			style = style.BorderStyle(lipgloss.ThickBorder())
		}

		tasks := board.TasksIn(c.ID)
		heading := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(columnColor(c))).
			Render(fmt.Sprintf("%s (%d)", c.Title, len(tasks)))
		if item, ok := active.(kanban.ColumnItem); ok && item.ID == c.ID {
			heading = draggingStyle.Render("» " + c.Title)
		} else if !dragging && i == m.col && m.row < 0 {
			heading = selectedStyle.Render(heading)
		}

		lines := []string{heading}
		for j, t := range tasks {
			lines = append(lines, m.renderTask(t, i, j, width-2))
		}
		if len(tasks) == 0 {
			lines = append(lines, dimStyle.Render("empty"))
		}
		views = append(views, style.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

func (m *model) renderTask(t models.Task, col, row, width int) string {
	title := t.Title
	if len([]rune(title)) > width {
		title = string([]rune(title)[:max(width-1, 1)]) + "…"
	}
	if item, ok := m.engine.Active().(kanban.TaskItem); ok && item.ID == t.ID {
		return draggingStyle.Render("» " + title)
	}
	line := statusMark(t.Status) + " " + title
	if m.engine.Phase() == kanban.Idle && col == m.col && row == m.row {
		return selectedStyle.Render(line)
	}
	return line
}

func (m *model) renderDetail(t models.Task) string {
	width := max(min(m.width-4, 80), 20)
	desc := ""
	if t.Description != nil {
		desc = *t.Description
	}
	body := titleStyle.Render(t.Title) + dimStyle.Render("  "+string(t.Status)) + "\n\n" + renderMarkdown(desc, width-4)
	return detailStyle.Width(width).Render(body)
}

func columnColor(c models.Column) string {
	if c.Color == "" {
		return models.DefaultColumnColor
	}
	return c.Color
}

func statusMark(s models.TaskStatus) string {
	switch s {
	case models.TaskStatusDone:
		return "✓"
	case models.TaskStatusInProgress:
		return "◐"
	default:
		return "○"
	}
}

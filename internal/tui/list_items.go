package tui

import (
	"fmt"
	"io"
	"strings"

	"tasklane/internal/model"
	"tasklane/internal/sanitize"
	"tasklane/internal/theme"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type taskItem struct {
	task    model.Task
	pending bool
	// project is shown on the Today view, where tasks from every project mix.
	project string
}

func (i taskItem) FilterValue() string { return i.task.Name }

func (i taskItem) Title() string {
	box := "[ ]"
	if i.task.IsCompleted {
		box = "[x]"
	}
	if i.pending {
		box = "[…]"
	}
	return box + " " + sanitize.Line(i.task.Name, 0)
}

func (i taskItem) Meta() string {
	var parts []string
	if i.project != "" {
		parts = append(parts, sanitize.Line(i.project, 24))
	}
	if i.task.DueDate != "" {
		parts = append(parts, i.task.DueDate)
	}
	return strings.Join(parts, " · ")
}

type projectItem struct {
	project model.Project
	open    int
}

func (i projectItem) FilterValue() string { return i.project.Name }

func (i projectItem) Title() string { return sanitize.Line(i.project.Name, 0) }

func (i projectItem) Meta() string {
	switch i.open {
	case 0:
		return "no open tasks"
	case 1:
		return "1 open task"
	default:
		return fmt.Sprintf("%d open tasks", i.open)
	}
}

// rowDelegate renders one line per item: title on the left, muted meta on the right.
type rowDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	done     lipgloss.Style
}

func newRowDelegate() rowDelegate {
	return rowDelegate{
		normal:   lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().Background(theme.ColorSelected).Bold(true),
		done:     theme.Muted().Strikethrough(true),
	}
}

func (d rowDelegate) Height() int  { return 1 }
func (d rowDelegate) Spacing() int { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}

	title, meta := "", ""
	style := d.normal
	switch it := item.(type) {
	case taskItem:
		title, meta = it.Title(), it.Meta()
		if it.task.IsCompleted {
			style = d.done
		}
	case projectItem:
		title, meta = it.Title(), it.Meta()
	default:
		title = fmt.Sprint(item)
	}
	if index == m.Index() {
		style = d.selected
	}

	metaW := xansi.StringWidth(meta)
	titleW := contentW - metaW - 2
	if meta == "" {
		titleW = contentW
	}
	if titleW < 4 {
		titleW, meta, metaW = contentW, "", 0
	}
	title = xansi.Truncate(title, titleW, "…")
	line := title
	if pad := contentW - xansi.StringWidth(title) - metaW; pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	if meta != "" {
		line += theme.Muted().Render(meta)
	}
	fmt.Fprint(w, style.Render(line))
}

func newList() list.Model {
	l := list.New(nil, newRowDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}

func selectedTask(l list.Model) (model.Task, bool) {
	it, ok := l.SelectedItem().(taskItem)
	return it.task, ok
}

func selectedProject(l list.Model) (model.Project, bool) {
	it, ok := l.SelectedItem().(projectItem)
	return it.project, ok
}

// selectByID keeps the cursor on the same entity across reloads.
func selectByID(l *list.Model, id string) {
	if id == "" {
		return
	}
	for i, item := range l.Items() {
		switch it := item.(type) {
		case taskItem:
			if it.task.ID == id {
				l.Select(i)
				return
			}
		case projectItem:
			if it.project.ID == id {
				l.Select(i)
				return
			}
		}
	}
}

// Package nav is the app's route stack. Overlays never read it; they ask it
// to go back or to refresh by message, and the app model applies the change
// on its next Update.
package nav

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type Kind int

const (
	Today Kind = iota
	Projects
	Project
	Task
	// NewTask asks for the task overlay in create mode.
	NewTask
)

func (k Kind) String() string {
	switch k {
	case Today:
		return "today"
	case Projects:
		return "projects"
	case Project:
		return "project"
	case Task:
		return "task"
	case NewTask:
		return "new-task"
	default:
		return "unknown"
	}
}

// Route is one history entry. A Task route sits on top of the list it was
// opened from; its presence is what asks the task overlay to be open.
type Route struct {
	Kind      Kind
	ProjectID string
	TaskID    string
}

// IsOverlay reports whether r is shown as the task overlay over the list below it.
func (r Route) IsOverlay() bool { return r.Kind == Task || r.Kind == NewTask }

func (r Route) Equal(o Route) bool {
	return r.Kind == o.Kind && r.ProjectID == o.ProjectID && r.TaskID == o.TaskID
}

func (r Route) String() string {
	var b strings.Builder
	b.WriteString(r.Kind.String())
	if r.ProjectID != "" {
		b.WriteString(":" + r.ProjectID)
	}
	if r.TaskID != "" {
		b.WriteString("/" + r.TaskID)
	}
	return b.String()
}

// BackMsg pops the current route.
type BackMsg struct{}

// RefreshMsg asks the app to reload data for the current route.
type RefreshMsg struct{}

// PushMsg navigates forward to Route.
type PushMsg struct{ Route Route }

// History is a route stack with a fixed root.
type History struct {
	stack []Route
}

func NewHistory(root Route) *History {
	return &History{stack: []Route{root}}
}

func (h *History) Current() Route { return h.stack[len(h.stack)-1] }

func (h *History) Depth() int { return len(h.stack) }

// Push appends r unless it is already the current route.
func (h *History) Push(r Route) {
	if h.Current().Equal(r) {
		return
	}
	h.stack = append(h.stack, r)
}

// Replace swaps the current route, keeping the depth.
func (h *History) Replace(r Route) {
	h.stack[len(h.stack)-1] = r
}

// Reset makes r the only entry.
func (h *History) Reset(r Route) {
	h.stack = append(h.stack[:0], r)
}

// Pop removes the current route. The root is never removed; Pop reports
// whether anything changed.
func (h *History) Pop() bool {
	if len(h.stack) <= 1 {
		return false
	}
	h.stack = h.stack[:len(h.stack)-1]
	return true
}

// Underlying returns the route below the current one, or the current one at the root.
func (h *History) Underlying() Route {
	if len(h.stack) < 2 {
		return h.Current()
	}
	return h.stack[len(h.stack)-2]
}

// Navigator is the fire-and-forget navigation service handed to overlays.
type Navigator struct{}

func (Navigator) GoBack() tea.Cmd {
	return func() tea.Msg { return BackMsg{} }
}

func (Navigator) Refresh() tea.Cmd {
	return func() tea.Msg { return RefreshMsg{} }
}

func Push(r Route) tea.Cmd {
	return func() tea.Msg { return PushMsg{Route: r} }
}

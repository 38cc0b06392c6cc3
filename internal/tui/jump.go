package tui

import (
	"sort"
	"strings"

	"tasklane/internal/model"
	"tasklane/internal/nav"
	"tasklane/internal/sanitize"
	"tasklane/internal/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

const maxJumpMatches = 10

func (m *appModel) openJump() tea.Cmd {
	m.modal = modalJump
	m.jumpInput.Reset()
	m.refreshJump()
	return m.jumpInput.Focus()
}

func (m *appModel) closeJump() {
	m.modal = modalNone
	m.jumpInput.Blur()
	m.jumpMatches = nil
	m.jumpIdx = 0
}

// rankTasks orders tasks by fuzzy match against query. Open tasks come before
// completed ones; an empty query keeps store order.
func rankTasks(tasks []model.Task, query string) []model.Task {
	query = strings.TrimSpace(query)
	var out []model.Task
	if query == "" {
		out = append(out, tasks...)
	} else {
		names := make([]string, len(tasks))
		for i, t := range tasks {
			names[i] = t.Name
		}
		ranks := fuzzy.RankFindNormalizedFold(query, names)
		sort.Stable(ranks)
		for _, r := range ranks {
			out = append(out, tasks[r.OriginalIndex])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return !out[i].IsCompleted && out[j].IsCompleted
	})
	return out
}

func (m *appModel) refreshJump() {
	m.jumpMatches = rankTasks(m.all, m.jumpInput.Value())
	if len(m.jumpMatches) > maxJumpMatches {
		m.jumpMatches = m.jumpMatches[:maxJumpMatches]
	}
	if m.jumpIdx >= len(m.jumpMatches) {
		m.jumpIdx = 0
	}
}

func (m *appModel) updateJump(k tea.KeyMsg) tea.Cmd {
	switch k.String() {
	case "esc", "ctrl+g":
		m.closeJump()
		return nil
	case "up", "ctrl+p":
		if m.jumpIdx > 0 {
			m.jumpIdx--
		}
		return nil
	case "down", "ctrl+n":
		if m.jumpIdx < len(m.jumpMatches)-1 {
			m.jumpIdx++
		}
		return nil
	case "enter":
		if len(m.jumpMatches) == 0 {
			return nil
		}
		t := m.jumpMatches[m.jumpIdx]
		m.closeJump()
		return m.navigate(nav.Route{Kind: nav.Task, ProjectID: t.ProjectID, TaskID: t.ID})
	}
	before := m.jumpInput.Value()
	var cmd tea.Cmd
	m.jumpInput, cmd = m.jumpInput.Update(k)
	if m.jumpInput.Value() != before {
		m.jumpIdx = 0
		m.refreshJump()
	}
	return cmd
}

func (m *appModel) jumpView() string {
	w := theme.ModalWidth(m.width)
	var b strings.Builder
	b.WriteString(m.jumpInput.View())
	b.WriteString("\n")
	if len(m.jumpMatches) == 0 {
		b.WriteString("\n" + theme.Muted().Render("No matching tasks."))
	}
	selected := lipgloss.NewStyle().Background(theme.ColorSelected).Bold(true)
	for i, t := range m.jumpMatches {
		line := sanitize.Line(t.Name, w-6)
		if t.IsCompleted {
			line = theme.Muted().Render(line + " (done)")
		}
		if i == m.jumpIdx {
			line = selected.Render("› " + line)
		} else {
			line = "  " + line
		}
		b.WriteString("\n" + line)
	}
	return theme.ModalFrame(w, "Jump to Task", b.String(), theme.PhaseShown)
}

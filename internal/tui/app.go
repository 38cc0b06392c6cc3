package tui

import (
	"strings"

	"tasklane/internal/confirm"
	"tasklane/internal/nav"
	"tasklane/internal/sanitize"
	"tasklane/internal/theme"

	"github.com/charmbracelet/lipgloss"
)

const (
	emptyToday    = "No tasks due today. Enjoy your day!"
	emptyProject  = "No tasks in this project yet. Press a to add one."
	emptyProjects = "No projects yet. Press n to create one."
)

func (m *appModel) View() string {
	header := m.headerView()
	footer := m.footerView()

	var overlay string
	switch {
	case m.deleteConfirm.IsOpen():
		overlay = m.deleteConfirm.View(theme.ModalWidth(m.width))
	case m.taskOverlay.Mounted():
		overlay = m.taskOverlay.View()
	case m.projectOverlay.Mounted():
		overlay = m.projectOverlay.View()
	case m.modal == modalJump:
		overlay = m.jumpView()
	case m.modal == modalAddTask:
		overlay = m.addTaskView()
	}
	if overlay != "" {
		h := m.height - lipgloss.Height(header) - lipgloss.Height(footer) - 2
		if h < lipgloss.Height(overlay) {
			h = lipgloss.Height(overlay)
		}
		body := lipgloss.Place(m.width, h, lipgloss.Center, lipgloss.Center, overlay)
		return strings.Join([]string{header, body, footer}, "\n")
	}
	return strings.Join([]string{header, m.bodyView(), footer}, "\n\n")
}

func (m *appModel) headerView() string {
	var crumb string
	switch r := m.listRoute(); r.Kind {
	case nav.Today:
		crumb = "Today · " + m.today()
	case nav.Projects:
		crumb = "Projects"
	case nav.Project:
		crumb = "Projects › "
		if p, ok := m.findProject(r.ProjectID); ok {
			crumb += sanitize.Line(p.Name, 40)
		} else {
			crumb += r.ProjectID
		}
	}
	left := lipgloss.NewStyle().Bold(true).Render("tasklane  " + crumb)
	right := theme.Muted().Render(sanitize.Line(m.actor.Name, 30))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *appModel) bodyView() string {
	if m.loadError != "" {
		return theme.Error().Render("Could not load: " + m.loadError)
	}
	if !m.loaded {
		return theme.Muted().Render("Loading…")
	}
	switch m.listRoute().Kind {
	case nav.Projects:
		if len(m.projects) == 0 {
			return theme.Muted().Render(emptyProjects)
		}
		return m.projectsList.View()
	case nav.Today:
		if len(m.tasks) == 0 {
			return theme.Muted().Render(emptyToday)
		}
	default:
		if len(m.tasks) == 0 {
			return theme.Muted().Render(emptyProject)
		}
	}
	return m.tasksList.View()
}

func (m *appModel) footerView() string {
	if m.flash != "" {
		return lipgloss.NewStyle().Foreground(theme.ColorAccent).Render(m.flash)
	}
	var hints []string
	switch m.listRoute().Kind {
	case nav.Projects:
		hints = []string{"enter open", "n new", "e rename", "t today", "/ jump", "q quit"}
	case nav.Project:
		hints = []string{"enter open", "x done", "a add", "A new task", "D delete", "e rename", "esc back", "/ jump", "q quit"}
	default:
		hints = []string{"enter open", "x done", "a add", "A new task", "D delete", "p projects", "/ jump", "q quit"}
	}
	return theme.Muted().Render(strings.Join(hints, "  "))
}

func (m *appModel) addTaskView() string {
	w := theme.ModalWidth(m.width)
	body := m.addInput.View()
	if errs := confirm.ErrorList(m.createAction.State().Errors()); errs != "" {
		body += "\n\n" + errs
	}
	hint := "enter add · esc cancel"
	if m.createAction.Pending() {
		hint = "adding…"
	}
	body += "\n\n" + theme.Muted().Render(hint)

	title := "Add Task"
	if _, due, ok := m.addTarget(); ok && due != "" {
		title += " (due today)"
	}
	return theme.ModalFrame(w, title, body, theme.PhaseShown)
}

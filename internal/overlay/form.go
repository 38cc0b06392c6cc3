package overlay

import (
	"strings"

	"tasklane/internal/action"
	"tasklane/internal/model"
	"tasklane/internal/mutate"
	"tasklane/internal/sanitize"
	"tasklane/internal/theme"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type formField int

const (
	fieldName formField = iota
	fieldDescription
	fieldDue
	fieldProject
	fieldCount
)

// taskForm holds the user's in-progress edits. It is only reloaded from a
// task when the overlay switches to a different task.
type taskForm struct {
	name       textinput.Model
	desc       textarea.Model
	due        textinput.Model
	projects   []model.Project
	projectIdx int
	// preferProject is selected once projects arrive, for new tasks.
	preferProject string
	focus         formField
}

func newTaskForm() taskForm {
	name := textinput.New()
	name.Placeholder = "Task name"
	name.Prompt = ""
	name.CharLimit = mutate.MaxTaskNameLen

	desc := textarea.New()
	desc.Placeholder = "Description (markdown)"
	desc.ShowLineNumbers = false
	desc.CharLimit = mutate.MaxTaskDescriptionLen
	desc.SetHeight(5)

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD"
	due.Prompt = ""
	due.CharLimit = len(model.DateLayout)

	return taskForm{name: name, desc: desc, due: due}
}

func (f *taskForm) load(t *model.Task, projects []model.Project, defaultProjectID, defaultDue string) {
	f.projects = append([]model.Project(nil), projects...)
	projectID := defaultProjectID
	if t != nil {
		f.name.SetValue(t.Name)
		f.desc.SetValue(t.Description)
		f.due.SetValue(t.DueDate)
		projectID = t.ProjectID
	} else {
		f.name.SetValue("")
		f.desc.SetValue("")
		f.due.SetValue(defaultDue)
	}
	f.preferProject = projectID
	f.selectProject(projectID)
}

func (f *taskForm) selectProject(id string) {
	f.projectIdx = 0
	for i, p := range f.projects {
		if p.ID == id {
			f.projectIdx = i
			return
		}
	}
}

// setProjects refreshes the project choices, keeping the current selection when it still exists.
func (f *taskForm) setProjects(projects []model.Project) {
	current := f.projectID()
	if current == "" {
		current = f.preferProject
	}
	f.projects = append([]model.Project(nil), projects...)
	f.selectProject(current)
}

func (f *taskForm) projectID() string {
	if f.projectIdx < 0 || f.projectIdx >= len(f.projects) {
		return ""
	}
	return f.projects[f.projectIdx].ID
}

func (f *taskForm) values() map[string]string {
	return map[string]string{
		mutate.FieldName:        f.name.Value(),
		mutate.FieldDescription: f.desc.Value(),
		mutate.FieldDueDate:     f.due.Value(),
		mutate.FieldProjectID:   f.projectID(),
	}
}

func (f *taskForm) setFocus(field formField) tea.Cmd {
	f.focus = field
	f.name.Blur()
	f.desc.Blur()
	f.due.Blur()
	switch field {
	case fieldName:
		return f.name.Focus()
	case fieldDescription:
		return f.desc.Focus()
	case fieldDue:
		return f.due.Focus()
	}
	return nil
}

func (f *taskForm) blur() {
	f.name.Blur()
	f.desc.Blur()
	f.due.Blur()
}

func (f *taskForm) cycle(delta int) tea.Cmd {
	next := (int(f.focus) + delta + int(fieldCount)) % int(fieldCount)
	return f.setFocus(formField(next))
}

func (f *taskForm) update(msg tea.Msg) tea.Cmd {
	if f.focus == fieldProject {
		if k, ok := msg.(tea.KeyMsg); ok && len(f.projects) > 0 {
			switch k.String() {
			case "left", "h", "up", "k":
				f.projectIdx = (f.projectIdx - 1 + len(f.projects)) % len(f.projects)
			case "right", "l", "down", "j", " ":
				f.projectIdx = (f.projectIdx + 1) % len(f.projects)
			}
		}
		return nil
	}
	var cmd tea.Cmd
	switch f.focus {
	case fieldName:
		f.name, cmd = f.name.Update(msg)
	case fieldDescription:
		f.desc, cmd = f.desc.Update(msg)
	case fieldDue:
		f.due, cmd = f.due.Update(msg)
	}
	return cmd
}

func (f *taskForm) setWidth(w int) {
	if w < 10 {
		w = 10
	}
	f.name.Width = w
	f.due.Width = w
	f.desc.SetWidth(w)
}

// view renders the inputs with each field's first error directly under it.
func (f *taskForm) view(errs action.Errors) string {
	label := func(field formField, text string) string {
		st := theme.Muted()
		if f.focus == field {
			st = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorAccent)
		}
		return st.Render(text)
	}
	fieldErr := func(name string) string {
		if msg := errs.Field(name); msg != "" {
			return "\n" + theme.Error().Render(msg)
		}
		return ""
	}

	project := "(no projects)"
	if p := f.projectID(); p != "" {
		project = "‹ " + sanitize.Line(f.projects[f.projectIdx].Name, 40) + " ›"
	}

	var b strings.Builder
	b.WriteString(label(fieldName, "Name") + "\n" + f.name.View() + fieldErr(mutate.FieldName))
	b.WriteString("\n\n" + label(fieldDescription, "Description") + "\n" + f.desc.View() + fieldErr(mutate.FieldDescription))
	b.WriteString("\n\n" + label(fieldDue, "Due") + "\n" + f.due.View() + fieldErr(mutate.FieldDueDate))
	b.WriteString("\n\n" + label(fieldProject, "Project") + "\n" + project + fieldErr(mutate.FieldProjectID))
	return b.String()
}

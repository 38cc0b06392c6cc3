// Package overlay composes the modal controller, the confirmation flow and
// the action dispatchers into the task and project dialogs.
package overlay

import (
	"context"
	"errors"
	"strings"

	"tasklane/internal/action"
	"tasklane/internal/confirm"
	"tasklane/internal/modal"
	"tasklane/internal/model"
	"tasklane/internal/sanitize"
	"tasklane/internal/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var errNoCreate = errors.New("overlay: no create action configured")

const (
	FocusClose modal.FocusTarget = "close"
	FocusName  modal.FocusTarget = "name"
)

type Deps struct {
	Nav   modal.Navigator
	Actor model.Actor
	// Context is handed to every remote call; nil means context.Background.
	Context context.Context
	// Update saves an existing task. Archive (default Update) receives the
	// delete confirmation's {id, isArchived=on} request.
	Update  action.Func
	Archive action.Func
	// Create saves a new task when the overlay has none.
	Create action.Func
}

type Options struct {
	Modal        modal.Config
	StartEditing bool
	// Defaults for a new task.
	DefaultProjectID string
	DefaultDueDate   string
}

// Task is the task dialog. The edit and delete paths use separate
// dispatchers and never share pending state.
type Task struct {
	deps Deps
	opts Options

	modal   *modal.Controller
	confirm *confirm.Flow
	edit    *action.Dispatcher
	remove  *action.Dispatcher

	task     *model.Task
	projects []model.Project
	form     taskForm
	editing  bool
	width    int
}

func NewTask(deps Deps, opts Options) *Task {
	if deps.Update == nil {
		panic("overlay: NewTask without an Update action")
	}
	if deps.Archive == nil {
		deps.Archive = deps.Update
	}
	if opts.Modal.InitialFocus == "" {
		opts.Modal.InitialFocus = FocusClose
		if opts.StartEditing {
			opts.Modal.InitialFocus = FocusName
		}
	}

	o := &Task{deps: deps, opts: opts, form: newTaskForm(), editing: true, width: 60}
	o.modal = modal.New(opts.Modal, deps.Nav)
	o.confirm = confirm.New(o.modal)
	o.modal.SetBlocker(o.confirm.IsOpen)

	o.edit = action.NewDispatcher(action.Options{
		Name:      "task.save",
		Action:    o.save,
		Actor:     deps.Actor,
		Context:   deps.Context,
		OnSettled: o.onSaved,
	})
	o.remove = action.NewDispatcher(action.Options{
		Name:          "task.archive",
		Action:        deps.Archive,
		Actor:         deps.Actor,
		Context:       deps.Context,
		OnSettled:     o.onDeleted,
		RequireTarget: true,
	})
	o.form.load(nil, nil, opts.DefaultProjectID, opts.DefaultDueDate)
	return o
}

func (o *Task) save(ctx context.Context, actor model.Actor, req action.Request) (action.Result, error) {
	if strings.TrimSpace(req.TargetID) == "" {
		if o.deps.Create == nil {
			return action.Result{}, errNoCreate
		}
		return o.deps.Create(ctx, actor, req)
	}
	return o.deps.Update(ctx, actor, req)
}

func (o *Task) onSaved(res action.Result) tea.Cmd {
	if t, ok := res.Value.(model.Task); ok {
		o.task = &t
	}
	o.confirm.Close()
	return o.modal.RequestClose()
}

func (o *Task) onDeleted(action.Result) tea.Cmd {
	// Cancelled while the request was in flight.
	if !o.confirm.IsOpen() {
		return nil
	}
	o.confirm.Close()
	return o.modal.RequestClose()
}

// SetTask points the overlay at t (nil for a new task). Switching to a
// different task resets both dispatchers, the confirmation and the form.
func (o *Task) SetTask(t *model.Task, projects []model.Project) {
	prevID, nextID := "", ""
	if o.task != nil {
		prevID = o.task.ID
	}
	if t != nil {
		nextID = t.ID
	}
	o.projects = projects
	if prevID == nextID && (o.task != nil) == (t != nil) {
		if t != nil {
			cp := *t
			o.task = &cp
		}
		o.form.setProjects(projects)
		return
	}

	if t != nil {
		cp := *t
		o.task = &cp
	} else {
		o.task = nil
	}
	o.reset()
}

// SetDefaults sets the project and due date a new task starts with. They
// are applied the next time the form is loaded for a new task.
func (o *Task) SetDefaults(projectID, dueDate string) {
	o.opts.DefaultProjectID = projectID
	o.opts.DefaultDueDate = dueDate
}

// reset drops everything that belongs to one overlay lifetime: both
// dispatchers, the confirmation, the edit mode and the typed input.
func (o *Task) reset() {
	o.edit.Reset()
	o.remove.Reset()
	o.confirm.Close()
	o.editing = o.opts.StartEditing || o.task == nil
	o.form.load(o.task, o.projects, o.opts.DefaultProjectID, o.opts.DefaultDueDate)
	o.form.blur()
	o.form.focus = fieldName
}

func (o *Task) SetWidth(w int) {
	o.width = theme.ModalWidth(w)
	o.form.setWidth(o.width - 4)
}

func (o *Task) Task() *model.Task { return o.task }

func (o *Task) Visible() bool { return o.modal.Visible() }

func (o *Task) Mounted() bool { return o.modal.Mounted() }

func (o *Task) ModalState() modal.State { return o.modal.State() }

func (o *Task) EditState() action.State { return o.edit.State() }

func (o *Task) DeleteState() action.State { return o.remove.State() }

func (o *Task) ConfirmOpen() bool { return o.confirm.IsOpen() }

func (o *Task) Editing() bool { return o.editing }

// SetOpenIntent feeds the routing signal. When routing closes the overlay
// any confirmation is dismissed first so the close is not blocked.
func (o *Task) SetOpenIntent(open bool) tea.Cmd {
	if !open {
		o.confirm.Close()
		o.form.blur()
		return o.modal.SetOpenIntent(false)
	}
	switch o.modal.State() {
	case modal.Hidden:
		o.reset()
	case modal.Closing:
		cmd := o.modal.SetOpenIntent(true)
		if o.editing {
			return tea.Batch(cmd, o.form.setFocus(o.form.focus))
		}
		return cmd
	}
	return o.modal.SetOpenIntent(true)
}

func (o *Task) RequestOpen() tea.Cmd { return o.SetOpenIntent(true) }

// RequestClose is the user's close: ignored while a confirmation is open.
func (o *Task) RequestClose() tea.Cmd {
	cmd := o.modal.RequestClose()
	if o.modal.State() == modal.Closing {
		o.form.blur()
	}
	return cmd
}

// ConfirmDelete opens the delete confirmation. It reports false when the
// overlay is not visible.
func (o *Task) ConfirmDelete() bool {
	if o.task == nil {
		panic("overlay: ConfirmDelete without a task")
	}
	t := *o.task
	req := action.NewRequest(t.ID, map[string]string{
		"id":         t.ID,
		"isArchived": "on",
	})
	return o.confirm.Open(confirm.Props{
		Title:                  "Delete Task",
		Copy:                   "Are you sure you want to delete " + lipgloss.NewStyle().Bold(true).Render(sanitize.Line(t.Name, 60)) + "?",
		ConfirmLabel:           "Delete",
		ConfirmLabelSubmitting: "Delete...",
		Wrap:                   confirm.Bind(o.remove, req),
	})
}

// Submit saves the form. Input stays as typed whatever the outcome.
func (o *Task) Submit() tea.Cmd {
	if !o.modal.Visible() || o.confirm.IsOpen() {
		return nil
	}
	targetID := ""
	if o.task != nil {
		targetID = o.task.ID
	}
	return o.edit.Dispatch(action.NewRequest(targetID, o.form.values()))
}

func (o *Task) StartEditing() tea.Cmd {
	o.editing = true
	return o.form.setFocus(fieldName)
}

// Dispose drops pending timers and in-flight results.
func (o *Task) Dispose() {
	o.modal.Dispose()
	o.reset()
}

func (o *Task) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case action.SettledMsg:
		if o.edit.Owns(msg) {
			return o.edit.Update(msg)
		}
		if o.remove.Owns(msg) {
			return o.remove.Update(msg)
		}
		return nil
	case tea.KeyMsg:
		return o.handleKey(msg)
	}

	before := o.modal.State()
	cmd := o.modal.Update(msg)
	if before == modal.Opening && o.modal.Visible() {
		return tea.Batch(cmd, o.onShown())
	}
	if before != modal.Hidden && !o.modal.Mounted() {
		// Unmounted: the close effects above have already read the final state.
		o.reset()
		return cmd
	}
	if o.editing {
		return tea.Batch(cmd, o.form.update(msg))
	}
	return cmd
}

func (o *Task) onShown() tea.Cmd {
	if o.editing && (o.task == nil || o.modal.InitialFocus() == FocusName) {
		return o.form.setFocus(fieldName)
	}
	return nil
}

func (o *Task) handleKey(k tea.KeyMsg) tea.Cmd {
	if !o.modal.Visible() {
		return nil
	}
	if o.confirm.IsOpen() {
		return o.confirm.Update(k)
	}
	switch k.String() {
	case "esc":
		return o.RequestClose()
	case "ctrl+d":
		if o.task != nil {
			o.ConfirmDelete()
		}
		return nil
	case "ctrl+s":
		if o.editing {
			return o.Submit()
		}
		return nil
	}
	if !o.editing {
		if k.String() == "e" {
			return o.StartEditing()
		}
		return nil
	}
	switch k.String() {
	case "tab":
		return o.form.cycle(1)
	case "shift+tab":
		return o.form.cycle(-1)
	}
	return o.form.update(k)
}

func (o *Task) View() string {
	if !o.modal.Mounted() {
		return ""
	}
	title := "Task"
	if o.task == nil {
		title = "New Task"
	}

	errs := o.edit.State().Errors()
	var body string
	if o.editing {
		body = o.form.view(errs)
		if g := errs.Global(); g != "" {
			body = theme.Error().Render(g) + "\n\n" + body
		}
	} else {
		body = o.readView()
	}
	body += "\n\n" + o.hints()

	frame := theme.ModalFrame(o.width, title, body, phaseFor(o.modal.State()))
	if o.confirm.IsOpen() {
		return lipgloss.JoinVertical(lipgloss.Left, frame, o.confirm.View(o.width))
	}
	return frame
}

func (o *Task) readView() string {
	if o.task == nil {
		return theme.Muted().Render("(no task)")
	}
	t := o.task
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(sanitize.Line(t.Name, o.width-4)))
	meta := []string{}
	if t.DueDate != "" {
		meta = append(meta, "due "+t.DueDate)
	}
	for _, p := range o.projects {
		if p.ID == t.ProjectID {
			meta = append(meta, sanitize.Line(p.Name, 30))
			break
		}
	}
	if t.IsCompleted {
		meta = append(meta, "completed")
	}
	if len(meta) > 0 {
		b.WriteString("\n" + theme.Muted().Render(strings.Join(meta, " · ")))
	}
	if desc := sanitize.Markdown(t.Description, o.width-4); desc != "" {
		b.WriteString("\n\n" + desc)
	}
	return b.String()
}

func (o *Task) hints() string {
	if o.edit.Pending() {
		return theme.Muted().Render("saving…")
	}
	parts := []string{"esc close"}
	if o.editing {
		parts = append([]string{"tab next field", "ctrl+s save"}, parts...)
	} else {
		parts = append([]string{"e edit"}, parts...)
	}
	if o.task != nil {
		parts = append(parts, "ctrl+d delete")
	}
	return theme.Muted().Render(strings.Join(parts, " · "))
}

func phaseFor(s modal.State) theme.Phase {
	switch s {
	case modal.Opening:
		return theme.PhaseEntering
	case modal.Closing:
		return theme.PhaseLeaving
	default:
		return theme.PhaseShown
	}
}

package overlay

import (
	"context"
	"strings"

	"tasklane/internal/action"
	"tasklane/internal/modal"
	"tasklane/internal/model"
	"tasklane/internal/mutate"
	"tasklane/internal/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type ProjectDeps struct {
	Nav     modal.Navigator
	Actor   model.Actor
	Context context.Context
	Create  action.Func
	Rename  action.Func
}

// Project is the titled dialog for creating or renaming a project. It is
// opened by the app directly (not by routing) and never navigates back.
type Project struct {
	deps ProjectDeps

	modal *modal.Controller
	save  *action.Dispatcher
	input textinput.Model

	project *model.Project
	saved   *model.Project
	width   int
}

func NewProject(deps ProjectDeps, cfg modal.Config) *Project {
	if deps.Create == nil || deps.Rename == nil {
		panic("overlay: NewProject needs Create and Rename actions")
	}
	cfg.ShouldNavigateBackOnClose = false
	if cfg.InitialFocus == "" {
		cfg.InitialFocus = FocusName
	}

	in := textinput.New()
	in.Placeholder = "Project name"
	in.Prompt = ""
	in.CharLimit = mutate.MaxProjectNameLen

	p := &Project{deps: deps, input: in, width: 60}
	p.modal = modal.New(cfg, deps.Nav)
	p.save = action.NewDispatcher(action.Options{
		Name:    "project.save",
		Action:  p.dispatch,
		Actor:   deps.Actor,
		Context: deps.Context,
		OnSettled: func(res action.Result) tea.Cmd {
			if pr, ok := res.Value.(model.Project); ok {
				p.saved = &pr
			}
			return p.modal.RequestClose()
		},
	})
	return p
}

func (p *Project) dispatch(ctx context.Context, actor model.Actor, req action.Request) (action.Result, error) {
	if strings.TrimSpace(req.TargetID) == "" {
		return p.deps.Create(ctx, actor, req)
	}
	return p.deps.Rename(ctx, actor, req)
}

// Open shows the dialog for project (nil creates a new one).
func (p *Project) Open(project *model.Project) tea.Cmd {
	if p.modal.Mounted() && p.modal.State() != modal.Closing {
		return nil
	}
	p.save.Reset()
	p.saved = nil
	p.project = nil
	p.input.SetValue("")
	if project != nil {
		cp := *project
		p.project = &cp
		p.input.SetValue(cp.Name)
	}
	return p.modal.SetOpenIntent(true)
}

func (p *Project) Title() string {
	if p.project == nil {
		return "New Project"
	}
	return "Rename Project"
}

// Saved returns the project from the last successful save, if any.
func (p *Project) Saved() *model.Project { return p.saved }

func (p *Project) Visible() bool { return p.modal.Visible() }

func (p *Project) Mounted() bool { return p.modal.Mounted() }

func (p *Project) State() action.State { return p.save.State() }

func (p *Project) SetWidth(w int) {
	p.width = theme.ModalWidth(w)
	p.input.Width = p.width - 4
}

func (p *Project) Submit() tea.Cmd {
	if !p.modal.Visible() {
		return nil
	}
	target := ""
	if p.project != nil {
		target = p.project.ID
	}
	return p.save.Dispatch(action.NewRequest(target, map[string]string{mutate.FieldName: p.input.Value()}))
}

func (p *Project) Dispose() {
	p.modal.Dispose()
	p.save.Reset()
	p.input.Blur()
}

func (p *Project) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case action.SettledMsg:
		return p.save.Update(msg)
	case tea.KeyMsg:
		if !p.modal.Visible() {
			return nil
		}
		switch msg.String() {
		case "esc":
			p.input.Blur()
			return p.modal.RequestClose()
		case "enter", "ctrl+s":
			return p.Submit()
		}
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return cmd
	}

	before := p.modal.State()
	cmd := p.modal.Update(msg)
	if before == modal.Opening && p.modal.Visible() && p.modal.InitialFocus() == FocusName {
		return tea.Batch(cmd, p.input.Focus())
	}
	var inCmd tea.Cmd
	p.input, inCmd = p.input.Update(msg)
	return tea.Batch(cmd, inCmd)
}

func (p *Project) View() string {
	if !p.modal.Mounted() {
		return ""
	}
	errs := p.save.State().Errors()
	body := theme.Muted().Render("Name") + "\n" + p.input.View()
	if msg := errs.Field(mutate.FieldName); msg != "" {
		body += "\n" + theme.Error().Render(msg)
	}
	if g := errs.Global(); g != "" {
		body = theme.Error().Render(g) + "\n\n" + body
	}
	hint := "enter save · esc close"
	if p.save.Pending() {
		hint = "saving…"
	}
	body += "\n\n" + theme.Muted().Render(hint)
	return theme.ModalFrame(p.width, p.Title(), body, phaseFor(p.modal.State()))
}

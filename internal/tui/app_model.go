package tui

import (
	"context"
	"time"

	"tasklane/internal/action"
	"tasklane/internal/actions"
	"tasklane/internal/confirm"
	"tasklane/internal/modal"
	"tasklane/internal/model"
	"tasklane/internal/nav"
	"tasklane/internal/overlay"
	"tasklane/internal/store"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	SettleDelay time.Duration
	EnterDelay  time.Duration
	// Now is the clock used for "today"; nil means time.Now.
	Now func() time.Time
	// Nav overrides the navigation service handed to overlays.
	Nav modal.Navigator
}

type appModel struct {
	ctx   context.Context
	store *store.Store
	acts  *actions.Actions
	actor model.Actor
	opts  Options
	nav   modal.Navigator

	width  int
	height int

	history *nav.History
	// overlayRoute is the task route the overlay was last opened for.
	overlayRoute nav.Route

	projects  []model.Project
	tasks     []model.Task
	all       []model.Task
	loaded    bool
	loadSeq   int
	storeSeq  int64
	loadError string

	tasksList    list.Model
	projectsList list.Model

	taskOverlay    *overlay.Task
	projectOverlay *overlay.Project

	// rows holds one completion dispatcher per task id.
	rows map[string]*action.Dispatcher

	deleteConfirm *confirm.Flow
	deleteAction  *action.Dispatcher
	createAction  *action.Dispatcher

	modal       modalKind
	addInput    textinput.Model
	jumpInput   textinput.Model
	jumpMatches []model.Task
	jumpIdx     int

	flash    string
	flashSeq int
}

func newAppModel(ctx context.Context, st *store.Store, actor model.Actor, opts Options) *appModel {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := &appModel{
		ctx:          ctx,
		store:        st,
		acts:         actions.New(st),
		actor:        actor,
		opts:         opts,
		nav:          opts.Nav,
		history:      nav.NewHistory(nav.Route{Kind: nav.Today}),
		tasksList:    newList(),
		projectsList: newList(),
		rows:         map[string]*action.Dispatcher{},
	}
	if m.nav == nil {
		m.nav = nav.Navigator{}
	}

	m.taskOverlay = overlay.NewTask(overlay.Deps{
		Nav:     m.nav,
		Actor:   actor,
		Context: ctx,
		Update:  m.acts.UpdateTask,
		Create:  m.acts.CreateTask,
	}, overlay.Options{
		Modal: modal.Config{
			OnClose:                   m.onTaskOverlayClosed,
			ShouldNavigateBackOnClose: true,
			SettleDelay:               opts.SettleDelay,
			EnterDelay:                opts.EnterDelay,
		},
	})
	m.projectOverlay = overlay.NewProject(overlay.ProjectDeps{
		Nav:     m.nav,
		Actor:   actor,
		Context: ctx,
		Create:  m.acts.CreateProject,
		Rename:  m.acts.RenameProject,
	}, modal.Config{
		OnClose:     m.onProjectOverlayClosed,
		SettleDelay: opts.SettleDelay,
		EnterDelay:  opts.EnterDelay,
	})

	m.deleteConfirm = confirm.New(confirm.AlwaysVisible{})
	m.deleteAction = action.NewDispatcher(action.Options{
		Name:          "task.delete",
		Action:        m.acts.DeleteTask,
		Actor:         actor,
		Context:       ctx,
		RequireTarget: true,
		OnSettled: func(action.Result) tea.Cmd {
			if !m.deleteConfirm.IsOpen() {
				return nil
			}
			m.deleteConfirm.Close()
			return tea.Batch(m.setFlash("Task deleted."), m.nav.Refresh())
		},
	})
	m.createAction = action.NewDispatcher(action.Options{
		Name:    "task.create",
		Action:  m.acts.CreateTask,
		Actor:   actor,
		Context: ctx,
		OnSettled: func(action.Result) tea.Cmd {
			m.closeAddTask()
			return tea.Batch(m.setFlash("Task added."), m.nav.Refresh())
		},
	})

	m.addInput = textinput.New()
	m.addInput.Placeholder = "New task name"
	m.addInput.Prompt = "+ "
	m.jumpInput = textinput.New()
	m.jumpInput.Placeholder = "Jump to task"
	m.jumpInput.Prompt = "/ "
	m.resize(80, 24)
	return m
}

func (m *appModel) today() string {
	return m.opts.Now().Format(model.DateLayout)
}

// listRoute is the page under any task overlay.
func (m *appModel) listRoute() nav.Route {
	if r := m.history.Current(); !r.IsOverlay() {
		return r
	}
	return m.history.Underlying()
}

func (m *appModel) findTask(id string) (model.Task, bool) {
	for _, t := range m.all {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func (m *appModel) findProject(id string) (model.Project, bool) {
	for _, p := range m.projects {
		if p.ID == id {
			return p, true
		}
	}
	return model.Project{}, false
}

func (m *appModel) onTaskOverlayClosed() tea.Cmd {
	if last := m.taskOverlay.DeleteState().Last; last != nil && last.OK() {
		return m.setFlash("Task deleted.")
	}
	if m.overlayRoute.Kind == nav.NewTask {
		if last := m.taskOverlay.EditState().Last; last != nil && last.OK() {
			return m.setFlash("Task added.")
		}
	}
	return nil
}

func (m *appModel) onProjectOverlayClosed() tea.Cmd {
	if p := m.projectOverlay.Saved(); p != nil {
		return m.setFlash("Project saved: " + p.Name)
	}
	return nil
}

func (m *appModel) setFlash(s string) tea.Cmd {
	m.flash = s
	m.flashSeq++
	seq := m.flashSeq
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg { return flashDoneMsg{seq: seq} })
}

package tui

import (
	"strings"
	"time"

	"tasklane/internal/action"
	"tasklane/internal/actions"
	"tasklane/internal/confirm"
	"tasklane/internal/logging"
	"tasklane/internal/modal"
	"tasklane/internal/model"
	"tasklane/internal/mutate"
	"tasklane/internal/nav"
	"tasklane/internal/sanitize"
	"tasklane/internal/store"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

const reloadInterval = 750 * time.Millisecond

func reloadTick() tea.Cmd {
	return tea.Tick(reloadInterval, func(time.Time) tea.Msg { return reloadTickMsg{} })
}

func (m *appModel) Init() tea.Cmd {
	return tea.Batch(m.load(), reloadTick())
}

// load reads the data behind the current list route. Only the newest load is applied.
func (m *appModel) load() tea.Cmd {
	m.loadSeq++
	seq, route := m.loadSeq, m.listRoute()
	ctx, st, actorID, today := m.ctx, m.store, m.actor.ID, m.today()
	return func() tea.Msg {
		msg := dataLoadedMsg{seq: seq, route: route}
		projects, err := st.ListProjects(ctx, actorID)
		if err != nil {
			msg.err = err
			return msg
		}
		all, err := st.ListTasks(ctx, actorID, store.TaskFilter{})
		if err != nil {
			msg.err = err
			return msg
		}
		var tasks []model.Task
		switch route.Kind {
		case nav.Today:
			open := false
			tasks, err = st.ListTasks(ctx, actorID, store.TaskFilter{DueOnOrBefore: today, Completed: &open})
		case nav.Project:
			tasks, err = st.ListTasks(ctx, actorID, store.TaskFilter{ProjectID: route.ProjectID})
		}
		if err != nil {
			msg.err = err
			return msg
		}
		latest, err := st.LatestSeq(ctx)
		if err != nil {
			msg.err = err
			return msg
		}
		msg.projects, msg.all, msg.tasks, msg.latestSeq = projects, all, tasks, latest
		return msg
	}
}

func (m *appModel) checkStore() tea.Cmd {
	ctx, st := m.ctx, m.store
	return func() tea.Msg {
		seq, err := st.LatestSeq(ctx)
		return storeSeqMsg{seq: seq, err: err}
	}
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case dataLoadedMsg:
		if msg.seq != m.loadSeq {
			return m, nil
		}
		if msg.err != nil {
			m.loadError = msg.err.Error()
			logging.Errorf("load %s: %v", msg.route, msg.err)
			return m, nil
		}
		m.loadError = ""
		m.loaded = true
		m.projects, m.tasks, m.all = msg.projects, msg.tasks, msg.all
		m.storeSeq = msg.latestSeq
		m.rebuildLists()
		return m, m.syncRoute()

	case reloadTickMsg:
		return m, tea.Batch(m.checkStore(), reloadTick())

	case storeSeqMsg:
		if msg.err == nil && msg.seq != m.storeSeq {
			return m, m.load()
		}
		return m, nil

	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil

	case nav.BackMsg:
		prev := m.history.Current()
		if !m.history.Pop() {
			return m, nil
		}
		if prev.IsOverlay() {
			return m, m.syncRoute()
		}
		return m, tea.Batch(m.syncRoute(), m.load())

	case nav.RefreshMsg:
		return m, m.load()

	case nav.PushMsg:
		return m, m.navigate(msg.Route)

	case action.SettledMsg:
		return m, m.settled(msg)

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	// Timers and blink ticks for the overlays and inputs.
	cmds := []tea.Cmd{m.taskOverlay.Update(msg), m.projectOverlay.Update(msg)}
	switch m.modal {
	case modalAddTask:
		var cmd tea.Cmd
		m.addInput, cmd = m.addInput.Update(msg)
		cmds = append(cmds, cmd)
	case modalJump:
		var cmd tea.Cmd
		m.jumpInput, cmd = m.jumpInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *appModel) resize(w, h int) {
	m.width, m.height = w, h
	listH := h - 4
	if listH < 1 {
		listH = 1
	}
	m.tasksList.SetSize(w, listH)
	m.projectsList.SetSize(w, listH)
	m.taskOverlay.SetWidth(w)
	m.projectOverlay.SetWidth(w)
	m.addInput.Width = w - 6
	m.jumpInput.Width = w - 6
}

// navigate moves to r. Overlay routes only open the overlay; list routes reload.
func (m *appModel) navigate(r nav.Route) tea.Cmd {
	m.history.Push(r)
	if r.IsOverlay() {
		return m.syncRoute()
	}
	return tea.Batch(m.syncRoute(), m.load())
}

// syncRoute feeds the route into the task overlay: an overlay route on top
// asks for it to be open, anything else asks for it to be closed.
func (m *appModel) syncRoute() tea.Cmd {
	r := m.history.Current()
	if !r.IsOverlay() {
		m.overlayRoute = nav.Route{}
		if m.taskOverlay.Mounted() && m.taskOverlay.ModalState() != modal.Closing {
			return m.taskOverlay.SetOpenIntent(false)
		}
		return nil
	}
	if m.closeSettling(r) {
		return nil
	}

	if r.Kind == nav.NewTask {
		projectID, due, _ := m.addTarget()
		m.taskOverlay.SetDefaults(projectID, due)
		m.taskOverlay.SetTask(nil, m.projects)
		return m.openOverlayFor(r)
	}
	t, ok := m.findTask(r.TaskID)
	if !ok {
		if !m.loaded {
			return nil
		}
		// Removed elsewhere while open.
		m.history.Pop()
		m.overlayRoute = nav.Route{}
		return tea.Batch(m.taskOverlay.SetOpenIntent(false), m.setFlash("That task no longer exists."))
	}
	m.taskOverlay.SetTask(&t, m.projects)
	return m.openOverlayFor(r)
}

// closeSettling reports whether the overlay is closing itself for r. Its own
// GoBack pops the route, so routing must leave both alone until then.
func (m *appModel) closeSettling(r nav.Route) bool {
	switch m.taskOverlay.ModalState() {
	case modal.Closing:
		return true
	case modal.Hidden:
		return r.Equal(m.overlayRoute)
	}
	return false
}

func (m *appModel) openOverlayFor(r nav.Route) tea.Cmd {
	if r.Equal(m.overlayRoute) {
		return nil
	}
	m.overlayRoute = r
	return m.taskOverlay.SetOpenIntent(true)
}

func (m *appModel) settled(msg action.SettledMsg) tea.Cmd {
	switch {
	case m.deleteAction.Owns(msg):
		return m.deleteAction.Update(msg)
	case m.createAction.Owns(msg):
		return m.createAction.Update(msg)
	}
	for _, d := range m.rows {
		if !d.Owns(msg) {
			continue
		}
		cmd := d.Update(msg)
		m.rebuildLists()
		if last := d.State().Last; last != nil && !last.OK() {
			return tea.Batch(cmd, m.setFlash(strings.Join(last.Messages(), " ")))
		}
		return cmd
	}
	return tea.Batch(m.taskOverlay.Update(msg), m.projectOverlay.Update(msg))
}

func (m *appModel) handleKey(k tea.KeyMsg) tea.Cmd {
	if k.String() == "ctrl+c" {
		return tea.Quit
	}
	if m.deleteConfirm.IsOpen() {
		return m.deleteConfirm.Update(k)
	}
	if m.taskOverlay.Mounted() {
		return m.taskOverlay.Update(k)
	}
	if m.projectOverlay.Mounted() {
		return m.projectOverlay.Update(k)
	}
	switch m.modal {
	case modalJump:
		return m.updateJump(k)
	case modalAddTask:
		return m.updateAddTask(k)
	}
	return m.handleListKey(k)
}

func (m *appModel) handleListKey(k tea.KeyMsg) tea.Cmd {
	route := m.history.Current()
	switch k.String() {
	case "q":
		return tea.Quit
	case "t":
		m.history.Reset(nav.Route{Kind: nav.Today})
		return m.load()
	case "p":
		m.history.Reset(nav.Route{Kind: nav.Projects})
		return m.load()
	case "esc", "backspace":
		if route.Kind == nav.Project {
			m.history.Pop()
			return m.load()
		}
		return nil
	case "r":
		return m.load()
	case "/":
		return m.openJump()
	case "n":
		return m.projectOverlay.Open(nil)
	case "e":
		if p, ok := m.currentProject(); ok {
			return m.projectOverlay.Open(&p)
		}
		return nil
	case "enter":
		if route.Kind == nav.Projects {
			if p, ok := selectedProject(m.projectsList); ok {
				return m.navigate(nav.Route{Kind: nav.Project, ProjectID: p.ID})
			}
			return nil
		}
		if t, ok := selectedTask(m.tasksList); ok {
			return m.navigate(nav.Route{Kind: nav.Task, ProjectID: t.ProjectID, TaskID: t.ID})
		}
		return nil
	}

	if route.Kind == nav.Projects {
		var cmd tea.Cmd
		m.projectsList, cmd = m.projectsList.Update(k)
		return cmd
	}
	switch k.String() {
	case "x", " ":
		return m.toggleSelected()
	case "D":
		return m.confirmDeleteSelected()
	case "a":
		return m.openAddTask()
	case "A":
		return m.openNewTask()
	}
	var cmd tea.Cmd
	m.tasksList, cmd = m.tasksList.Update(k)
	return cmd
}

// currentProject is the project being viewed, or the one under the cursor on the projects page.
func (m *appModel) currentProject() (model.Project, bool) {
	r := m.listRoute()
	switch r.Kind {
	case nav.Project:
		return m.findProject(r.ProjectID)
	case nav.Projects:
		return selectedProject(m.projectsList)
	}
	return model.Project{}, false
}

func (m *appModel) rowDispatcher(id string) *action.Dispatcher {
	if d, ok := m.rows[id]; ok {
		return d
	}
	d := action.NewDispatcher(action.Options{
		Name:          "task.complete",
		Action:        m.acts.SetCompleted,
		Actor:         m.actor,
		Context:       m.ctx,
		RequireTarget: true,
		OnSettled: func(action.Result) tea.Cmd {
			return m.nav.Refresh()
		},
	})
	m.rows[id] = d
	return d
}

func (m *appModel) toggleSelected() tea.Cmd {
	t, ok := selectedTask(m.tasksList)
	if !ok {
		return nil
	}
	value := "on"
	if t.IsCompleted {
		value = ""
	}
	cmd := m.rowDispatcher(t.ID).Dispatch(action.NewRequest(t.ID, map[string]string{
		actions.FieldID:          t.ID,
		actions.FieldIsCompleted: value,
	}))
	m.rebuildLists()
	return cmd
}

func (m *appModel) confirmDeleteSelected() tea.Cmd {
	t, ok := selectedTask(m.tasksList)
	if !ok {
		return nil
	}
	m.deleteAction.Reset()
	m.deleteConfirm.Open(confirm.Props{
		Title:                  "Delete Task",
		Copy:                   "Permanently delete " + sanitize.Line(t.Name, 60) + "? This cannot be undone.",
		ConfirmLabel:           "Delete",
		ConfirmLabelSubmitting: "Delete...",
		Wrap:                   confirm.Bind(m.deleteAction, action.NewRequest(t.ID, map[string]string{actions.FieldID: t.ID})),
	})
	return nil
}

// addTarget picks where a quick-added task lands: the viewed project, or on
// Today the first project with today's due date.
func (m *appModel) addTarget() (projectID, dueDate string, ok bool) {
	r := m.listRoute()
	if r.Kind == nav.Project {
		return r.ProjectID, "", true
	}
	if len(m.projects) == 0 {
		return "", "", false
	}
	return m.projects[0].ID, m.today(), true
}

func (m *appModel) openAddTask() tea.Cmd {
	if _, _, ok := m.addTarget(); !ok {
		return m.setFlash("Create a project first (n).")
	}
	m.createAction.Reset()
	m.modal = modalAddTask
	m.addInput.Reset()
	return m.addInput.Focus()
}

// openNewTask opens the full task form in create mode, with the same
// defaults as the quick add.
func (m *appModel) openNewTask() tea.Cmd {
	projectID, _, ok := m.addTarget()
	if !ok {
		return m.setFlash("Create a project first (n).")
	}
	return m.navigate(nav.Route{Kind: nav.NewTask, ProjectID: projectID})
}

func (m *appModel) closeAddTask() {
	m.modal = modalNone
	m.addInput.Blur()
	m.addInput.Reset()
}

func (m *appModel) updateAddTask(k tea.KeyMsg) tea.Cmd {
	switch k.String() {
	case "esc":
		m.closeAddTask()
		m.createAction.Reset()
		return nil
	case "enter":
		projectID, due, ok := m.addTarget()
		if !ok {
			return nil
		}
		return m.createAction.Dispatch(action.NewRequest("", map[string]string{
			mutate.FieldName:      m.addInput.Value(),
			mutate.FieldProjectID: projectID,
			mutate.FieldDueDate:   due,
		}))
	}
	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(k)
	return cmd
}

func (m *appModel) rebuildLists() {
	names := map[string]string{}
	open := map[string]int{}
	for _, p := range m.projects {
		names[p.ID] = p.Name
	}
	for _, t := range m.all {
		if !t.IsCompleted {
			open[t.ProjectID]++
		}
	}

	onToday := m.listRoute().Kind == nav.Today
	selTask, _ := selectedTask(m.tasksList)
	items := make([]list.Item, 0, len(m.tasks))
	for _, t := range m.tasks {
		it := taskItem{task: t}
		if d, ok := m.rows[t.ID]; ok && d.Pending() {
			it.pending = true
		}
		if onToday {
			it.project = names[t.ProjectID]
		}
		items = append(items, it)
	}
	m.tasksList.SetItems(items)
	selectByID(&m.tasksList, selTask.ID)

	selProject, _ := selectedProject(m.projectsList)
	pitems := make([]list.Item, 0, len(m.projects))
	for _, p := range m.projects {
		pitems = append(pitems, projectItem{project: p, open: open[p.ID]})
	}
	m.projectsList.SetItems(pitems)
	selectByID(&m.projectsList, selProject.ID)

	// Drop idle dispatchers of tasks that left the list.
	for id, d := range m.rows {
		if d.Pending() {
			continue
		}
		if _, ok := m.findTask(id); !ok {
			delete(m.rows, id)
		}
	}
}

package tui

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"tasklane/internal/modal"
	"tasklane/internal/model"
	"tasklane/internal/mutate"
	"tasklane/internal/nav"
	"tasklane/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

var testNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

const testToday = "2026-10-19"

type fixture struct {
	st      *store.Store
	actor   model.Actor
	project model.Project
	m       *appModel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	actor, err := st.CreateActor(ctx, model.ActorKindHuman, "Ada")
	if err != nil {
		t.Fatalf("create actor: %v", err)
	}
	p, err := mutate.CreateProject(ctx, st, actor, "Inbox")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	m := newAppModel(ctx, st, actor, Options{
		SettleDelay: time.Millisecond,
		EnterDelay:  time.Millisecond,
		Now:         func() time.Time { return testNow },
	})
	return &fixture{st: st, actor: actor, project: p, m: m}
}

func (f *fixture) addTask(t *testing.T, name, due string) model.Task {
	t.Helper()
	task, err := mutate.CreateTask(context.Background(), f.st, f.actor, mutate.NewTask{
		ProjectID: f.project.ID,
		Name:      name,
		DueDate:   due,
	})
	if err != nil {
		t.Fatalf("create task %q: %v", name, err)
	}
	return task
}

func (f *fixture) load(t *testing.T) {
	t.Helper()
	run(t, f.m, f.m.load())
}

func (f *fixture) press(t *testing.T, k string) {
	t.Helper()
	_, cmd := f.m.Update(key(k))
	run(t, f.m, cmd)
}

func (f *fixture) openTask(t *testing.T, task model.Task) {
	t.Helper()
	selectByID(&f.m.tasksList, task.ID)
	f.press(t, "enter")
	if !f.m.taskOverlay.Visible() {
		t.Fatalf("expected task overlay visible, got %s", f.m.taskOverlay.ModalState())
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// Cursor blinks and flash timers never finish in time and are dropped.
const cmdTimeout = 300 * time.Millisecond

var cmdType = reflect.TypeOf((*tea.Cmd)(nil)).Elem()

// run executes cmd and feeds what it produces back into m, depth first, so
// sequenced commands deliver their messages in order.
func run(t *testing.T, m *appModel, cmd tea.Cmd) {
	t.Helper()
	steps := 0
	var exec func(tea.Cmd)
	exec = func(cmd tea.Cmd) {
		if cmd == nil {
			return
		}
		steps++
		if steps > 500 {
			t.Fatalf("commands did not settle")
		}
		msg, ok := call(cmd)
		if !ok || msg == nil {
			return
		}
		switch msg := msg.(type) {
		case tea.BatchMsg:
			for _, c := range msg {
				exec(c)
			}
			return
		case tea.QuitMsg:
			return
		}
		if v := reflect.ValueOf(msg); v.Kind() == reflect.Slice && v.Type().Elem() == cmdType {
			for i := 0; i < v.Len(); i++ {
				exec(v.Index(i).Interface().(tea.Cmd))
			}
			return
		}
		_, next := m.Update(msg)
		exec(next)
	}
	exec(cmd)
}

func call(cmd tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(cmdTimeout):
		return nil, false
	}
}

// program delivers messages with real timing, the way the Bubble Tea
// runtime does: batches run concurrently, a sequence runs one command at a
// time, and every message goes through m.Update on the test goroutine.
type program struct {
	t    *testing.T
	m    *appModel
	msgs chan tea.Msg
	done chan struct{}
	// before sees every message ahead of Update.
	before func(tea.Msg)
}

func newProgram(t *testing.T, m *appModel) *program {
	p := &program{t: t, m: m, msgs: make(chan tea.Msg), done: make(chan struct{})}
	t.Cleanup(func() { close(p.done) })
	return p
}

func (p *program) send(msg tea.Msg) {
	select {
	case p.msgs <- msg:
	case <-p.done:
	}
}

func (p *program) exec(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	go func() { p.send(cmd()) }()
}

func (p *program) sequence(cmds []tea.Cmd) {
	for _, c := range cmds {
		if c == nil {
			continue
		}
		msg := c()
		batch, ok := msg.(tea.BatchMsg)
		if !ok {
			p.send(msg)
			continue
		}
		var wg sync.WaitGroup
		for _, bc := range batch {
			if bc == nil {
				continue
			}
			wg.Add(1)
			go func(bc tea.Cmd) {
				defer wg.Done()
				p.send(bc())
			}(bc)
		}
		wg.Wait()
	}
}

func (p *program) dispatch(msg tea.Msg) {
	switch msg := msg.(type) {
	case nil, tea.QuitMsg:
		return
	case tea.BatchMsg:
		for _, c := range msg {
			p.exec(c)
		}
		return
	}
	if v := reflect.ValueOf(msg); v.Kind() == reflect.Slice && v.Type().Elem() == cmdType {
		cmds := make([]tea.Cmd, v.Len())
		for i := range cmds {
			cmds[i] = v.Index(i).Interface().(tea.Cmd)
		}
		go p.sequence(cmds)
		return
	}
	if p.before != nil {
		p.before(msg)
	}
	_, next := p.m.Update(msg)
	p.exec(next)
}

// runUntil delivers messages until cond holds and fails after d.
func (p *program) runUntil(d time.Duration, cond func() bool) {
	p.t.Helper()
	deadline := time.After(d)
	for !cond() {
		select {
		case msg := <-p.msgs:
			p.dispatch(msg)
		case <-deadline:
			p.t.Fatalf("not reached within %s", d)
		}
	}
}

// drain keeps delivering messages for d.
func (p *program) drain(d time.Duration) {
	deadline := time.After(d)
	for {
		select {
		case msg := <-p.msgs:
			p.dispatch(msg)
		case <-deadline:
			return
		}
	}
}

func taskNames(tasks []model.Task) []string {
	var out []string
	for _, t := range tasks {
		out = append(out, t.Name)
	}
	return out
}

func TestToday_EmptyState(t *testing.T) {
	f := newFixture(t)
	f.addTask(t, "Someday", "")
	f.load(t)

	if len(f.m.tasks) != 0 {
		t.Fatalf("expected no tasks today, got %v", taskNames(f.m.tasks))
	}
	if v := f.m.View(); !strings.Contains(v, emptyToday) {
		t.Fatalf("expected empty-state copy, got:\n%s", v)
	}
}

func TestToday_ListsOpenTasksDueByToday(t *testing.T) {
	f := newFixture(t)
	f.addTask(t, "Overdue", "2026-10-01")
	f.addTask(t, "Due today", testToday)
	f.addTask(t, "Tomorrow", "2026-10-20")
	f.addTask(t, "No date", "")
	done := f.addTask(t, "Done today", testToday)
	if _, err := mutate.SetTaskCompleted(context.Background(), f.st, f.actor, done.ID, true); err != nil {
		t.Fatalf("complete: %v", err)
	}
	f.load(t)

	got := map[string]bool{}
	for _, n := range taskNames(f.m.tasks) {
		got[n] = true
	}
	if len(got) != 2 || !got["Overdue"] || !got["Due today"] {
		t.Fatalf("unexpected today tasks: %v", taskNames(f.m.tasks))
	}
	if len(f.m.all) != 5 {
		t.Fatalf("expected every non-archived task in the lookup set, got %d", len(f.m.all))
	}
}

func TestEnter_OpensOverlayAfterEntryFrame(t *testing.T) {
	f := newFixture(t)
	task := f.addTask(t, "Write report", testToday)
	f.load(t)

	selectByID(&f.m.tasksList, task.ID)
	_, cmd := f.m.Update(key("enter"))
	if f.m.taskOverlay.ModalState() != modal.Opening {
		t.Fatalf("expected opening, got %s", f.m.taskOverlay.ModalState())
	}
	if r := f.m.history.Current(); r.Kind != nav.Task || r.TaskID != task.ID {
		t.Fatalf("expected task route, got %s", r)
	}
	run(t, f.m, cmd)
	if !f.m.taskOverlay.Visible() {
		t.Fatalf("expected visible, got %s", f.m.taskOverlay.ModalState())
	}
	if !strings.Contains(f.m.View(), "Write report") {
		t.Fatalf("expected task in overlay:\n%s", f.m.View())
	}

	// Close from the overlay: the route is popped once the exit transition ends.
	_, cmd = f.m.Update(key("esc"))
	if f.m.taskOverlay.ModalState() != modal.Closing {
		t.Fatalf("expected closing, got %s", f.m.taskOverlay.ModalState())
	}
	if f.m.history.Current().Kind != nav.Task {
		t.Fatalf("route must stay until the close settles")
	}
	run(t, f.m, cmd)
	if f.m.taskOverlay.Mounted() {
		t.Fatalf("expected hidden")
	}
	if f.m.history.Depth() != 1 || f.m.history.Current().Kind != nav.Today {
		t.Fatalf("expected back on today, got %s (depth %d)", f.m.history.Current(), f.m.history.Depth())
	}
}

func TestOverlayDelete_ArchivesAndNavigatesBack(t *testing.T) {
	f := newFixture(t)
	task := f.addTask(t, "Write report", testToday)
	f.load(t)
	f.openTask(t, task)

	f.press(t, "ctrl+d")
	if !f.m.taskOverlay.ConfirmOpen() {
		t.Fatalf("expected delete confirmation")
	}
	if v := f.m.View(); !strings.Contains(v, "Are you sure you want to delete") {
		t.Fatalf("expected confirmation copy:\n%s", v)
	}
	f.press(t, "y")

	got, err := f.st.GetTask(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if !got.IsArchived {
		t.Fatalf("expected task archived")
	}
	if f.m.taskOverlay.Mounted() || f.m.taskOverlay.ConfirmOpen() {
		t.Fatalf("expected overlay and confirmation closed")
	}
	if f.m.history.Depth() != 1 {
		t.Fatalf("expected one pop, depth %d", f.m.history.Depth())
	}
	if len(f.m.tasks) != 0 {
		t.Fatalf("expected refreshed list without the task, got %v", taskNames(f.m.tasks))
	}
	if f.m.flash != "Task deleted." {
		t.Fatalf("unexpected flash %q", f.m.flash)
	}
}

func TestOverlay_TaskRemovedElsewhereClosesWithoutExtraPop(t *testing.T) {
	f := newFixture(t)
	task := f.addTask(t, "Write report", testToday)
	f.load(t)
	f.openTask(t, task)

	if _, err := mutate.DeleteTask(context.Background(), f.st, f.actor, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	f.load(t)

	if f.m.taskOverlay.Mounted() {
		t.Fatalf("expected overlay closed, got %s", f.m.taskOverlay.ModalState())
	}
	if f.m.history.Depth() != 1 || f.m.history.Current().Kind != nav.Today {
		t.Fatalf("expected today at the root, got %s (depth %d)", f.m.history.Current(), f.m.history.Depth())
	}
	if f.m.flash != "That task no longer exists." {
		t.Fatalf("unexpected flash %q", f.m.flash)
	}
}

func TestListDelete_HardDeletesAndRefreshes(t *testing.T) {
	f := newFixture(t)
	task := f.addTask(t, "Write report", testToday)
	f.load(t)

	f.press(t, "D")
	if !f.m.deleteConfirm.IsOpen() {
		t.Fatalf("expected confirmation")
	}
	if v := f.m.View(); !strings.Contains(v, "Permanently delete") {
		t.Fatalf("expected confirmation copy:\n%s", v)
	}
	f.press(t, "y")

	if _, err := f.st.GetTask(context.Background(), task.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected task removed, got %v", err)
	}
	if f.m.deleteConfirm.IsOpen() {
		t.Fatalf("expected confirmation closed")
	}
	if len(f.m.tasks) != 0 {
		t.Fatalf("expected empty list, got %v", taskNames(f.m.tasks))
	}
}

func TestListDelete_CancelKeepsTask(t *testing.T) {
	f := newFixture(t)
	task := f.addTask(t, "Write report", testToday)
	f.load(t)

	f.press(t, "D")
	f.press(t, "esc")
	if f.m.deleteConfirm.IsOpen() {
		t.Fatalf("expected confirmation closed")
	}
	if _, err := f.st.GetTask(context.Background(), task.ID); err != nil {
		t.Fatalf("expected task kept: %v", err)
	}
	if f.m.deleteAction.State().Last != nil {
		t.Fatalf("cancel must not dispatch")
	}
}

func TestRowToggle_CompletesAndRefreshes(t *testing.T) {
	f := newFixture(t)
	a := f.addTask(t, "A", testToday)
	f.addTask(t, "B", testToday)
	f.load(t)

	selectByID(&f.m.tasksList, a.ID)
	_, cmd := f.m.Update(key("x"))
	it, _ := f.m.tasksList.SelectedItem().(taskItem)
	if it.task.ID != a.ID || !it.pending {
		t.Fatalf("expected pending marker on A, got %+v", it)
	}
	run(t, f.m, cmd)

	got, err := f.st.GetTask(context.Background(), a.ID)
	if err != nil || !got.IsCompleted {
		t.Fatalf("expected A completed, got %+v (%v)", got, err)
	}
	if names := taskNames(f.m.tasks); len(names) != 1 || names[0] != "B" {
		t.Fatalf("expected only B on today, got %v", names)
	}
}

func TestRowToggle_FailureFlashes(t *testing.T) {
	f := newFixture(t)
	a := f.addTask(t, "A", testToday)
	f.load(t)
	if _, err := mutate.DeleteTask(context.Background(), f.st, f.actor, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	selectByID(&f.m.tasksList, a.ID)
	f.press(t, "x")
	if f.m.flash != "Task not found." {
		t.Fatalf("unexpected flash %q", f.m.flash)
	}
}

func TestAddTask_OnTodayDefaultsToFirstProjectAndToday(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	f.press(t, "a")
	if f.m.modal != modalAddTask {
		t.Fatalf("expected add modal")
	}
	f.press(t, "Buy milk")
	f.press(t, "enter")

	if f.m.modal != modalNone {
		t.Fatalf("expected add modal closed")
	}
	if len(f.m.tasks) != 1 {
		t.Fatalf("expected the new task on today, got %v", taskNames(f.m.tasks))
	}
	got := f.m.tasks[0]
	if got.Name != "Buy milk" || got.DueDate != testToday || got.ProjectID != f.project.ID {
		t.Fatalf("unexpected task %+v", got)
	}
}

func TestAddTask_ValidationKeepsModalOpen(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	f.press(t, "a")
	f.press(t, "enter")
	if f.m.modal != modalAddTask {
		t.Fatalf("expected add modal to stay open")
	}
	if v := f.m.View(); !strings.Contains(v, "Name is required.") {
		t.Fatalf("expected validation error:\n%s", v)
	}
}

func TestProjects_EnterAndBack(t *testing.T) {
	f := newFixture(t)
	f.addTask(t, "Someday", "")
	f.load(t)

	f.press(t, "p")
	if f.m.history.Current().Kind != nav.Projects {
		t.Fatalf("expected projects, got %s", f.m.history.Current())
	}
	if it, ok := f.m.projectsList.SelectedItem().(projectItem); !ok || it.open != 1 {
		t.Fatalf("expected Inbox with one open task, got %+v", f.m.projectsList.SelectedItem())
	}

	f.press(t, "enter")
	if r := f.m.history.Current(); r.Kind != nav.Project || r.ProjectID != f.project.ID {
		t.Fatalf("expected project route, got %s", r)
	}
	if names := taskNames(f.m.tasks); len(names) != 1 || names[0] != "Someday" {
		t.Fatalf("unexpected project tasks %v", names)
	}
	if !strings.Contains(f.m.View(), "Projects › Inbox") {
		t.Fatalf("expected breadcrumb:\n%s", f.m.View())
	}

	f.press(t, "esc")
	if f.m.history.Current().Kind != nav.Projects {
		t.Fatalf("expected back on projects, got %s", f.m.history.Current())
	}
}

func TestProjectOverlay_CreateKeepsRoute(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	f.press(t, "n")
	if !f.m.projectOverlay.Visible() {
		t.Fatalf("expected project overlay visible")
	}
	f.press(t, "Garden")
	f.press(t, "enter")

	if f.m.projectOverlay.Mounted() {
		t.Fatalf("expected project overlay closed")
	}
	if len(f.m.projects) != 2 {
		t.Fatalf("expected two projects, got %d", len(f.m.projects))
	}
	if f.m.history.Depth() != 1 || f.m.history.Current().Kind != nav.Today {
		t.Fatalf("creating a project must not navigate, got %s", f.m.history.Current())
	}
	if f.m.flash != "Project saved: Garden" {
		t.Fatalf("unexpected flash %q", f.m.flash)
	}
}

func TestJump_EnterOpensMatchingTask(t *testing.T) {
	f := newFixture(t)
	f.addTask(t, "Water plants", "")
	report := f.addTask(t, "Write report", "")
	f.load(t)

	f.press(t, "/")
	f.press(t, "rep")
	if len(f.m.jumpMatches) != 1 || f.m.jumpMatches[0].ID != report.ID {
		t.Fatalf("unexpected matches %v", taskNames(f.m.jumpMatches))
	}
	f.press(t, "enter")
	if f.m.modal != modalNone {
		t.Fatalf("expected jump closed")
	}
	if !f.m.taskOverlay.Visible() || f.m.taskOverlay.Task().ID != report.ID {
		t.Fatalf("expected overlay on the matched task")
	}
}

func TestOverlayDelete_FromProjectPopsOnceWithoutWaitingForFlash(t *testing.T) {
	f := newFixture(t)
	task := f.addTask(t, "Write report", "")
	f.load(t)
	f.press(t, "p")
	f.press(t, "enter")
	f.openTask(t, task)
	if d := f.m.history.Depth(); d != 3 {
		t.Fatalf("expected projects > project > task, depth %d", d)
	}
	f.press(t, "ctrl+d")

	p := newProgram(t, f.m)
	start := time.Now()
	backSeen := false
	var backAfter time.Duration
	p.before = func(msg tea.Msg) {
		if _, ok := msg.(nav.BackMsg); !ok || backSeen {
			return
		}
		backSeen = true
		backAfter = time.Since(start)
		// A store poll lands after the overlay hid and before the pop.
		_, next := f.m.Update(f.m.load()())
		p.exec(next)
	}
	_, cmd := f.m.Update(key("y"))
	p.exec(cmd)
	p.runUntil(time.Second, func() bool { return backSeen && !f.m.taskOverlay.Mounted() })
	p.drain(100 * time.Millisecond)

	if backAfter > 500*time.Millisecond {
		t.Fatalf("navigation back waited %s behind the close callback", backAfter)
	}
	if r := f.m.history.Current(); f.m.history.Depth() != 2 || r.Kind != nav.Project || r.ProjectID != f.project.ID {
		t.Fatalf("expected to land back on the project page, got %s (depth %d)", r, f.m.history.Depth())
	}
	if f.m.flash != "Task deleted." {
		t.Fatalf("unexpected flash %q", f.m.flash)
	}
	if len(f.m.tasks) != 0 {
		t.Fatalf("expected the archived task gone from the project, got %v", taskNames(f.m.tasks))
	}
}

func TestProjectOverlay_RefreshDoesNotWaitForFlash(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	f.press(t, "n")
	f.press(t, "Garden")

	p := newProgram(t, f.m)
	_, cmd := f.m.Update(key("enter"))
	p.exec(cmd)
	p.runUntil(500*time.Millisecond, func() bool { return len(f.m.projects) == 2 })

	if f.m.flash != "Project saved: Garden" {
		t.Fatalf("unexpected flash %q", f.m.flash)
	}
	if f.m.history.Depth() != 1 {
		t.Fatalf("creating a project must not navigate, depth %d", f.m.history.Depth())
	}
}

func TestNewTask_CreatesFromOverlayAndReturnsToList(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	f.press(t, "A")
	if r := f.m.history.Current(); r.Kind != nav.NewTask {
		t.Fatalf("expected new-task route, got %s", r)
	}
	o := f.m.taskOverlay
	if !o.Visible() || o.Task() != nil || !o.Editing() {
		t.Fatalf("expected the overlay in create mode, state=%s task=%v editing=%v", o.ModalState(), o.Task(), o.Editing())
	}
	if v := f.m.View(); !strings.Contains(v, "New Task") {
		t.Fatalf("expected create title:\n%s", v)
	}

	f.press(t, "Plant tulips")
	f.press(t, "ctrl+s")

	if o.Mounted() {
		t.Fatalf("expected overlay closed, got %s", o.ModalState())
	}
	if f.m.history.Depth() != 1 || f.m.history.Current().Kind != nav.Today {
		t.Fatalf("expected back on today, got %s (depth %d)", f.m.history.Current(), f.m.history.Depth())
	}
	if len(f.m.tasks) != 1 {
		t.Fatalf("expected the new task on today, got %v", taskNames(f.m.tasks))
	}
	got := f.m.tasks[0]
	if got.Name != "Plant tulips" || got.DueDate != testToday || got.ProjectID != f.project.ID {
		t.Fatalf("unexpected task %+v", got)
	}
	if f.m.flash != "Task added." {
		t.Fatalf("unexpected flash %q", f.m.flash)
	}
}

func TestNewTask_WithoutProjectsFlashes(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	actor, err := st.CreateActor(ctx, model.ActorKindHuman, "Ada")
	if err != nil {
		t.Fatalf("create actor: %v", err)
	}
	f := &fixture{st: st, actor: actor, m: newAppModel(ctx, st, actor, Options{Now: func() time.Time { return testNow }})}
	f.load(t)

	f.press(t, "A")
	if f.m.history.Depth() != 1 || f.m.taskOverlay.Mounted() {
		t.Fatalf("expected no overlay without projects")
	}
	if f.m.flash != "Create a project first (n)." {
		t.Fatalf("unexpected flash %q", f.m.flash)
	}
}

package modal

import (
	"reflect"
	"testing"
	"time"

	"tasklane/internal/nav"

	tea "github.com/charmbracelet/bubbletea"
)

type recorder struct {
	effects []string
}

func (r *recorder) GoBack() tea.Cmd {
	r.effects = append(r.effects, "goBack")
	return nil
}

func (r *recorder) Refresh() tea.Cmd {
	r.effects = append(r.effects, "refresh")
	return nil
}

func newTestController(rec *recorder, navigateBack bool) *Controller {
	return New(Config{
		OnClose: func() tea.Cmd {
			rec.effects = append(rec.effects, "close")
			return nil
		},
		ShouldNavigateBackOnClose: navigateBack,
		SettleDelay:               time.Millisecond,
		EnterDelay:                time.Millisecond,
	}, rec)
}

func open(t *testing.T, c *Controller) {
	t.Helper()
	cmd := c.SetOpenIntent(true)
	if c.State() != Opening {
		t.Fatalf("expected opening right after mount, got %s", c.State())
	}
	if c.Visible() {
		t.Fatalf("must not be visible in the same update as the mount")
	}
	if cmd == nil {
		t.Fatalf("expected entry frame cmd")
	}
	_ = c.Update(cmd())
	if !c.Visible() {
		t.Fatalf("expected visible after entry frame, got %s", c.State())
	}
}

func TestController_CloseSettles_EffectsInOrder(t *testing.T) {
	rec := &recorder{}
	c := newTestController(rec, true)
	open(t, c)

	cmd := c.RequestClose()
	if c.State() != Closing {
		t.Fatalf("expected closing, got %s", c.State())
	}
	if len(rec.effects) != 0 {
		t.Fatalf("effects must wait for the settle delay, got %v", rec.effects)
	}
	_ = c.Update(cmd())

	if c.State() != Hidden {
		t.Fatalf("expected hidden, got %s", c.State())
	}
	want := []string{"close", "goBack", "refresh"}
	if !reflect.DeepEqual(rec.effects, want) {
		t.Fatalf("expected %v, got %v", want, rec.effects)
	}
}

func TestController_NoNavigateBack_StillRefreshes(t *testing.T) {
	rec := &recorder{}
	c := newTestController(rec, false)
	open(t, c)
	_ = c.Update(c.RequestClose()())

	want := []string{"close", "refresh"}
	if !reflect.DeepEqual(rec.effects, want) {
		t.Fatalf("expected %v, got %v", want, rec.effects)
	}
}

func TestController_RoutingIntentFalse_DoesNotNavigateAgain(t *testing.T) {
	rec := &recorder{}
	c := newTestController(rec, true)
	open(t, c)
	_ = c.Update(c.SetOpenIntent(false)())

	want := []string{"close", "refresh"}
	if !reflect.DeepEqual(rec.effects, want) {
		t.Fatalf("expected %v, got %v", want, rec.effects)
	}
}

func TestController_ReopenDuringClosing_CancelsEffects(t *testing.T) {
	rec := &recorder{}
	c := newTestController(rec, true)
	open(t, c)

	closeCmd := c.RequestClose()
	if cmd := c.SetOpenIntent(true); cmd != nil {
		t.Fatalf("reopen from closing should be immediate, got cmd")
	}
	if !c.Visible() {
		t.Fatalf("expected visible after reopen, got %s", c.State())
	}

	// The superseded tick still arrives; it must be a no-op.
	_ = c.Update(closeCmd())
	if c.State() != Visible {
		t.Fatalf("expected to stay visible, got %s", c.State())
	}
	if len(rec.effects) != 0 {
		t.Fatalf("expected no effects, got %v", rec.effects)
	}

	// A later close still works and fires exactly once.
	_ = c.Update(c.RequestClose()())
	if !reflect.DeepEqual(rec.effects, []string{"close", "goBack", "refresh"}) {
		t.Fatalf("unexpected effects: %v", rec.effects)
	}
}

func TestController_BlockerIgnoresClose(t *testing.T) {
	rec := &recorder{}
	c := newTestController(rec, true)
	blocked := true
	c.SetBlocker(func() bool { return blocked })
	open(t, c)

	if cmd := c.RequestClose(); cmd != nil {
		t.Fatalf("expected blocked close to be ignored")
	}
	if !c.Visible() {
		t.Fatalf("expected to stay visible, got %s", c.State())
	}

	// The blocker is consulted at the moment of each attempt.
	blocked = false
	if cmd := c.RequestClose(); cmd == nil {
		t.Fatalf("expected close once the blocker is gone")
	}
	if c.State() != Closing {
		t.Fatalf("expected closing, got %s", c.State())
	}
}

func TestController_CloseWhileHidden_IsNoop(t *testing.T) {
	rec := &recorder{}
	c := newTestController(rec, true)
	if cmd := c.RequestClose(); cmd != nil {
		t.Fatalf("expected nil cmd")
	}
	if c.State() != Hidden {
		t.Fatalf("expected hidden, got %s", c.State())
	}
}

func TestController_CloseDuringOpening_DropsEntryFrame(t *testing.T) {
	rec := &recorder{}
	c := newTestController(rec, true)

	enter := c.SetOpenIntent(true)
	closeCmd := c.RequestClose()
	_ = c.Update(enter())
	if c.State() != Closing {
		t.Fatalf("stale entry frame must not show the overlay, got %s", c.State())
	}
	_ = c.Update(closeCmd())
	if c.State() != Hidden {
		t.Fatalf("expected hidden, got %s", c.State())
	}
}

func TestController_Dispose_CancelsPendingClose(t *testing.T) {
	rec := &recorder{}
	c := newTestController(rec, true)
	open(t, c)
	closeCmd := c.RequestClose()
	c.Dispose()
	_ = c.Update(closeCmd())
	if len(rec.effects) != 0 {
		t.Fatalf("expected no effects after dispose, got %v", rec.effects)
	}
}

func TestController_IgnoresOtherControllersTicks(t *testing.T) {
	recA, recB := &recorder{}, &recorder{}
	a := newTestController(recA, true)
	b := newTestController(recB, true)
	open(t, a)
	open(t, b)

	msg := a.RequestClose()()
	_ = b.Update(msg)
	if b.State() != Visible || len(recB.effects) != 0 {
		t.Fatalf("b must ignore a's settle tick: state=%s effects=%v", b.State(), recB.effects)
	}
	_ = a.Update(msg)
	if a.State() != Hidden {
		t.Fatalf("expected a hidden, got %s", a.State())
	}
}

type markerMsg string

type navMarkers struct{}

func (navMarkers) GoBack() tea.Cmd  { return func() tea.Msg { return nav.BackMsg{} } }
func (navMarkers) Refresh() tea.Cmd { return func() tea.Msg { return nav.RefreshMsg{} } }

var cmdType = reflect.TypeOf((*tea.Cmd)(nil)).Elem()

// collect runs cmd the way the Bubble Tea runtime does (batches concurrently,
// sequences in order) and returns the messages that arrive within d.
func collect(cmd tea.Cmd, d time.Duration) []tea.Msg {
	out := make(chan tea.Msg, 16)
	var exec func(tea.Cmd)
	var deliver func(tea.Msg)
	deliver = func(msg tea.Msg) {
		switch m := msg.(type) {
		case nil:
		case tea.BatchMsg:
			for _, c := range m {
				go exec(c)
			}
		default:
			if v := reflect.ValueOf(msg); v.Kind() == reflect.Slice && v.Type().Elem() == cmdType {
				for i := 0; i < v.Len(); i++ {
					if c := v.Index(i).Interface().(tea.Cmd); c != nil {
						deliver(c())
					}
				}
				return
			}
			out <- msg
		}
	}
	exec = func(c tea.Cmd) {
		if c != nil {
			deliver(c())
		}
	}
	go exec(cmd)

	var got []tea.Msg
	deadline := time.After(d)
	for {
		select {
		case msg := <-out:
			got = append(got, msg)
		case <-deadline:
			return got
		}
	}
}

func TestController_SlowCloseCallbackDoesNotDelayNavigation(t *testing.T) {
	var calls []string
	c := New(Config{
		OnClose: func() tea.Cmd {
			calls = append(calls, "close")
			return tea.Tick(time.Hour, func(time.Time) tea.Msg { return markerMsg("flash expired") })
		},
		ShouldNavigateBackOnClose: true,
		SettleDelay:               time.Millisecond,
		EnterDelay:                time.Millisecond,
	}, navMarkers{})
	open(t, c)

	effects := c.Update(c.RequestClose()())
	if !reflect.DeepEqual(calls, []string{"close"}) {
		t.Fatalf("expected the close callback to run when the close settles, got %v", calls)
	}
	got := collect(effects, 200*time.Millisecond)
	if len(got) != 2 {
		t.Fatalf("expected back and refresh within the settle window, got %#v", got)
	}
	if _, ok := got[0].(nav.BackMsg); !ok {
		t.Fatalf("expected back first, got %#v", got)
	}
	if _, ok := got[1].(nav.RefreshMsg); !ok {
		t.Fatalf("expected refresh second, got %#v", got)
	}
}

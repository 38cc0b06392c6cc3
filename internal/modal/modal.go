// Package modal owns the visibility of one primary overlay. Routing only
// says whether the overlay should be open; the controller decides when it is
// shown and delays every close effect until the exit transition is over.
package modal

import (
	"sync/atomic"
	"time"

	"tasklane/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
)

type State int

const (
	Hidden State = iota
	Opening
	Visible
	Closing
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Opening:
		return "opening"
	case Visible:
		return "visible"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

// Navigator is the navigation service the controller calls into after a close settles.
type Navigator interface {
	GoBack() tea.Cmd
	Refresh() tea.Cmd
}

// FocusTarget names the element that receives focus when the overlay is shown.
type FocusTarget string

type Config struct {
	// OnClose runs first when a close settles, while the caller's state is still valid.
	OnClose                   func() tea.Cmd
	ShouldNavigateBackOnClose bool
	InitialFocus              FocusTarget

	SettleDelay time.Duration
	EnterDelay  time.Duration
}

const (
	defaultSettleDelay = 200 * time.Millisecond
	defaultEnterDelay  = 16 * time.Millisecond
)

type enterMsg struct {
	id  uint64
	seq uint64
}

type settleMsg struct {
	id  uint64
	seq uint64
}

var nextControllerID atomic.Uint64

type Controller struct {
	id      uint64
	cfg     Config
	nav     Navigator
	blocked func() bool

	state  State
	enter  delayedTask
	settle delayedTask
	// navigateOnSettle is false when routing already moved (intent=false).
	navigateOnSettle bool
}

func New(cfg Config, nav Navigator) *Controller {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = defaultSettleDelay
	}
	if cfg.EnterDelay <= 0 {
		cfg.EnterDelay = defaultEnterDelay
	}
	return &Controller{id: nextControllerID.Add(1), cfg: cfg, nav: nav}
}

// SetBlocker installs the check consulted on every close attempt. While it
// reports true (a confirmation is open) close requests are ignored.
func (c *Controller) SetBlocker(fn func() bool) { c.blocked = fn }

func (c *Controller) State() State { return c.state }

// Visible reports whether the overlay is shown and interactive.
func (c *Controller) Visible() bool { return c.state == Visible }

// Mounted reports whether anything should be rendered (including the exit transition).
func (c *Controller) Mounted() bool { return c.state != Hidden }

func (c *Controller) InitialFocus() FocusTarget { return c.cfg.InitialFocus }

// SetOpenIntent feeds the routing signal in. Opening never shows the overlay
// in the same update that mounted it; a reopen during the exit transition
// cancels the pending close and its effects.
func (c *Controller) SetOpenIntent(open bool) tea.Cmd {
	if !open {
		return c.beginClose(false)
	}
	switch c.state {
	case Hidden:
		c.state = Opening
		logging.Trace("modal.opening", map[string]any{"id": c.id})
		return c.enter.schedule(c.cfg.EnterDelay, func(seq uint64) tea.Msg { return enterMsg{id: c.id, seq: seq} })
	case Closing:
		c.settle.cancel()
		c.state = Visible
		logging.Trace("modal.reopened", map[string]any{"id": c.id})
	}
	return nil
}

// RequestClose starts the exit transition. Effects (close callback,
// navigation back, refresh) fire once the settle delay has elapsed.
func (c *Controller) RequestClose() tea.Cmd {
	return c.beginClose(c.cfg.ShouldNavigateBackOnClose)
}

func (c *Controller) beginClose(navigate bool) tea.Cmd {
	if c.blocked != nil && c.blocked() {
		return nil
	}
	switch c.state {
	case Opening:
		c.enter.cancel()
	case Visible:
	default:
		return nil
	}
	c.state = Closing
	c.navigateOnSettle = navigate
	logging.Trace("modal.closing", map[string]any{"id": c.id, "navigate": navigate})
	return c.settle.schedule(c.cfg.SettleDelay, func(seq uint64) tea.Msg { return settleMsg{id: c.id, seq: seq} })
}

// Dispose drops pending timers without running any effect (the overlay is unmounted).
func (c *Controller) Dispose() {
	c.enter.cancel()
	c.settle.cancel()
	c.state = Hidden
}

func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case enterMsg:
		if msg.id != c.id || !c.enter.fire(msg.seq) {
			return nil
		}
		if c.state == Opening {
			c.state = Visible
		}
		return nil
	case settleMsg:
		if msg.id != c.id || !c.settle.fire(msg.seq) {
			return nil
		}
		if c.state != Closing {
			return nil
		}
		c.state = Hidden
		logging.Trace("modal.hidden", map[string]any{"id": c.id})
		return c.closeEffects()
	}
	return nil
}

// closeEffects calls the close callback, then GoBack, then Refresh, in that
// order. Only the navigation commands are sequenced; the callback's command
// runs alongside them so a slow one (a flash timer) never holds back the pop.
func (c *Controller) closeEffects() tea.Cmd {
	var onClose tea.Cmd
	if c.cfg.OnClose != nil {
		onClose = c.cfg.OnClose()
	}
	var navCmds []tea.Cmd
	if c.nav != nil {
		if c.navigateOnSettle {
			navCmds = append(navCmds, c.nav.GoBack())
		}
		navCmds = append(navCmds, c.nav.Refresh())
	}
	return tea.Batch(onClose, sequence(navCmds))
}

func sequence(cmds []tea.Cmd) tea.Cmd {
	var out []tea.Cmd
	for _, cmd := range cmds {
		if cmd != nil {
			out = append(out, cmd)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return tea.Sequence(out...)
	}
}

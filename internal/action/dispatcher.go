// Package action wraps a single asynchronous mutation call for one overlay
// (or one list row). It tracks pending/settled state, keeps the latest
// Result, and runs the owner's OnSettled callback once per success.
//
// All state changes happen in Update, on the Bubble Tea event loop. The
// remote call itself runs inside the tea.Cmd returned by Dispatch.
package action

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"tasklane/internal/logging"
	"tasklane/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

// Func is the remote action capability: accept a request on behalf of an
// actor and answer with a Result. Expected validation failures come back
// as a Result; a non-nil error means an unexpected fault.
type Func func(ctx context.Context, actor model.Actor, req Request) (Result, error)

// State is the PendingActionState of a dispatcher.
type State struct {
	Pending bool
	Last    *Result
}

func (s State) Errors() Errors {
	if s.Last == nil {
		return nil
	}
	return s.Last.Errors
}

type Options struct {
	Name   string
	Action Func
	Actor  model.Actor
	// Context is passed to Action; nil means context.Background. Cancelling
	// it reaches calls already in flight.
	Context context.Context
	// OnSettled runs after a successful result has been stored.
	OnSettled func(Result) tea.Cmd
	// RequireTarget makes Dispatch panic on an empty Request.TargetID.
	RequireTarget bool
}

// SettledMsg carries a remote result back to the dispatcher that issued it.
type SettledMsg struct {
	dispatcher uint64
	epoch      uint64
	Request    Request
	Result     Result
}

var nextDispatcherID atomic.Uint64

type Dispatcher struct {
	id    uint64
	epoch uint64
	opts  Options
	state State
}

func NewDispatcher(opts Options) *Dispatcher {
	if opts.Action == nil {
		panic("action: NewDispatcher without an Action")
	}
	if strings.TrimSpace(opts.Name) == "" {
		opts.Name = "action"
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	return &Dispatcher{id: nextDispatcherID.Add(1), opts: opts}
}

func (d *Dispatcher) State() State { return d.state }

func (d *Dispatcher) Pending() bool { return d.state.Pending }

// Reset returns the dispatcher to idle. Results of calls issued before the
// reset are dropped when they arrive.
func (d *Dispatcher) Reset() {
	d.epoch++
	d.state = State{}
}

// Dispatch starts req. It returns nil when a call is already in flight.
func (d *Dispatcher) Dispatch(req Request) tea.Cmd {
	if d.opts.RequireTarget && strings.TrimSpace(req.TargetID) == "" {
		panic(fmt.Sprintf("action %s: dispatch without a target id", d.opts.Name))
	}
	if d.state.Pending {
		return nil
	}
	d.state = State{Pending: true}

	id, epoch := d.id, d.epoch
	ctx, fn, actor, name := d.opts.Context, d.opts.Action, d.opts.Actor, d.opts.Name
	req = req.clone()
	return func() tea.Msg {
		res := call(ctx, name, fn, actor, req)
		return SettledMsg{dispatcher: id, epoch: epoch, Request: req, Result: res}
	}
}

// Update consumes the dispatcher's own SettledMsg and ignores everything else.
func (d *Dispatcher) Update(msg tea.Msg) tea.Cmd {
	m, ok := msg.(SettledMsg)
	if !ok || m.dispatcher != d.id || m.epoch != d.epoch {
		return nil
	}
	res := m.Result
	d.state = State{Pending: false, Last: &res}
	if res.OK() && d.opts.OnSettled != nil {
		return d.opts.OnSettled(res)
	}
	return nil
}

// Owns reports whether msg is a result addressed to this dispatcher (current or stale).
func (d *Dispatcher) Owns(msg tea.Msg) bool {
	m, ok := msg.(SettledMsg)
	return ok && m.dispatcher == d.id
}

func call(ctx context.Context, name string, fn Func, actor model.Actor, req Request) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			logging.Errorf("action %s: panic: %v", name, r)
			res = Unexpected()
		}
	}()
	out, err := fn(ctx, actor, req)
	if err != nil {
		logging.Errorf("action %s: %v", name, err)
		return Unexpected()
	}
	if out.Kind == KindOK && len(out.Errors) > 0 {
		// Errors win over a success kind; a Result carries one or the other.
		out.Kind = KindValidation
		out.Value = nil
	}
	if out.Kind != KindOK && len(out.Errors) == 0 {
		out.Errors = Errors{GlobalKey: {UnexpectedMessage}}
	}
	return out
}

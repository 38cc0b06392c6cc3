package modal

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// delayedTask is a cancellable handle for one pending tick. Scheduling or
// cancelling bumps seq, so a tick that was already in flight no longer
// matches when it arrives.
type delayedTask struct {
	seq   uint64
	armed bool
}

func (d *delayedTask) schedule(after time.Duration, msg func(seq uint64) tea.Msg) tea.Cmd {
	d.seq++
	d.armed = true
	seq := d.seq
	return tea.Tick(after, func(time.Time) tea.Msg { return msg(seq) })
}

func (d *delayedTask) cancel() {
	d.seq++
	d.armed = false
}

// fire reports whether seq is the live schedule, disarming it if so.
func (d *delayedTask) fire(seq uint64) bool {
	if !d.armed || seq != d.seq {
		return false
	}
	d.armed = false
	return true
}

func (d *delayedTask) pending() bool { return d.armed }

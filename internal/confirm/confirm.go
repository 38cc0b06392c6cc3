// Package confirm is the nested dialog that gates a destructive action
// behind an explicit confirmation. It never knows what "confirm" submits:
// each call site passes a BodyWrapper that binds the confirm affordance to
// its own dispatcher.
package confirm

import (
	"strings"

	"tasklane/internal/action"
	"tasklane/internal/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Host is the overlay the confirmation is layered on.
type Host interface {
	Visible() bool
}

// AlwaysVisible hosts confirmations that sit directly on a page.
type AlwaysVisible struct{}

func (AlwaysVisible) Visible() bool { return true }

// Form is what a BodyWrapper makes of the rendered affordances: the body to
// display and the submission the confirm affordance triggers.
type Form struct {
	Body       string
	Submit     func() tea.Cmd
	Submitting bool
}

// BodyWrapper receives the rendered confirm/cancel buttons as children.
type BodyWrapper func(children string) Form

type Props struct {
	Title                  string
	Copy                   string
	ConfirmLabel           string
	ConfirmLabelSubmitting string
	CancelLabel            string
	Wrap                   BodyWrapper
}

type button int

const (
	buttonConfirm button = iota
	buttonCancel
)

type Flow struct {
	host  Host
	open  bool
	props Props
	focus button
}

func New(host Host) *Flow {
	if host == nil {
		host = AlwaysVisible{}
	}
	return &Flow{host: host}
}

func (f *Flow) IsOpen() bool { return f.open }

func (f *Flow) Props() Props { return f.props }

// Open shows the confirmation. It refuses (returns false) while the host is
// not visible. Opening again replaces the current content.
func (f *Flow) Open(p Props) bool {
	if !f.host.Visible() {
		return false
	}
	if strings.TrimSpace(p.ConfirmLabel) == "" {
		p.ConfirmLabel = "Confirm"
	}
	if strings.TrimSpace(p.ConfirmLabelSubmitting) == "" {
		p.ConfirmLabelSubmitting = p.ConfirmLabel + "…"
	}
	if strings.TrimSpace(p.CancelLabel) == "" {
		p.CancelLabel = "Cancel"
	}
	f.props = p
	f.open = true
	f.focus = buttonConfirm
	return true
}

func (f *Flow) Close() {
	f.open = false
	f.props = Props{}
	f.focus = buttonConfirm
}

// Cancel closes unconditionally. An in-flight submission is not cancelled;
// its result is left for the caller's OnSettled to ignore.
func (f *Flow) Cancel() { f.Close() }

// Confirm fires the wrapper's submission. Closing on success is up to the caller.
func (f *Flow) Confirm() tea.Cmd {
	if !f.open || f.props.Wrap == nil {
		return nil
	}
	form := f.props.Wrap(f.renderButtons(false))
	if form.Submitting || form.Submit == nil {
		return nil
	}
	return form.Submit()
}

func (f *Flow) Update(msg tea.Msg) tea.Cmd {
	if !f.open {
		return nil
	}
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch k.String() {
	case "tab", "shift+tab", "left", "right", "h", "l":
		if f.focus == buttonConfirm {
			f.focus = buttonCancel
		} else {
			f.focus = buttonConfirm
		}
	case "enter":
		if f.focus == buttonCancel {
			f.Cancel()
			return nil
		}
		return f.Confirm()
	case "y":
		return f.Confirm()
	case "esc", "n", "ctrl+g":
		f.Cancel()
	}
	return nil
}

func (f *Flow) View(width int) string {
	if !f.open {
		return ""
	}
	submitting := false
	body := f.renderButtons(false)
	if f.props.Wrap != nil {
		// Render once to learn the submission state, then again with the right label.
		submitting = f.props.Wrap(body).Submitting
		body = f.props.Wrap(f.renderButtons(submitting)).Body
	}
	content := body
	if c := strings.TrimSpace(f.props.Copy); c != "" {
		content = lipgloss.NewStyle().Width(width-4).Render(c) + "\n\n" + body
	}
	return theme.ModalFrame(width, f.props.Title, content, theme.PhaseShown)
}

func (f *Flow) renderButtons(submitting bool) string {
	label := f.props.ConfirmLabel
	if submitting {
		label = f.props.ConfirmLabelSubmitting
	}
	confirmBtn := theme.Button(f.focus == buttonConfirm, true).Render(label)
	cancelBtn := theme.Button(f.focus == buttonCancel, false).Render(f.props.CancelLabel)
	return lipgloss.JoinHorizontal(lipgloss.Top, cancelBtn, "  ", confirmBtn)
}

// Bind builds the usual wrapper: confirm dispatches req on d and the
// dispatcher's latest errors are listed under the buttons.
func Bind(d *action.Dispatcher, req action.Request) BodyWrapper {
	return func(children string) Form {
		st := d.State()
		body := children
		if errs := ErrorList(st.Errors()); errs != "" {
			body += "\n\n" + errs
		}
		return Form{
			Body:       body,
			Submitting: st.Pending,
			Submit: func() tea.Cmd {
				return d.Dispatch(action.NewRequest(req.TargetID, req.Fields))
			},
		}
	}
}

// ErrorList renders every message of errs, one per line.
func ErrorList(errs action.Errors) string {
	if len(errs) == 0 {
		return ""
	}
	var lines []string
	for _, field := range errs.Fields() {
		for _, msg := range errs[field] {
			if field == action.GlobalKey {
				lines = append(lines, "• "+msg)
			} else {
				lines = append(lines, "• "+field+": "+msg)
			}
		}
	}
	return theme.Error().Render(strings.Join(lines, "\n"))
}

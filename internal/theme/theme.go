// Package theme holds the palette and the shared styles for overlays, lists and CLI tables.
//
// The TUI must remain readable on both light and dark terminal backgrounds.
// We use lipgloss.AdaptiveColor and only apply "faint" styling on dark
// backgrounds (faint text on light terminals often becomes illegible).
package theme

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	ColorMuted     lipgloss.TerminalColor = ac("240", "243")
	ColorAccent    lipgloss.TerminalColor = ac("27", "62")
	ColorAccentFg  lipgloss.TerminalColor = ac("255", "235")
	ColorSurfaceBg lipgloss.TerminalColor = ac("255", "235")
	ColorSurfaceFg lipgloss.TerminalColor = ac("235", "252")
	ColorControlBg lipgloss.TerminalColor = ac("252", "237")
	ColorBorder    lipgloss.TerminalColor = ac("250", "243")
	ColorDanger    lipgloss.TerminalColor = ac("160", "203")
	ColorSelected  lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
)

func Muted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(ColorMuted))
}

func Title() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(ColorSurfaceFg)
}

func Error() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorDanger)
}

func Button(focused, danger bool) lipgloss.Style {
	st := lipgloss.NewStyle().Padding(0, 2).Background(ColorControlBg).Foreground(ColorSurfaceFg)
	if focused {
		bg := ColorAccent
		if danger {
			bg = ColorDanger
		}
		st = st.Background(bg).Foreground(ColorAccentFg).Bold(true)
	}
	return st
}

// Phase selects the frame styling for a modal's transition state.
type Phase int

const (
	PhaseShown Phase = iota
	PhaseEntering
	PhaseLeaving
)

// ModalFrame draws a bordered overlay box. Entering/leaving frames are drawn
// dimmed so the transition is visible.
func ModalFrame(width int, title, body string, phase Phase) string {
	if width < 24 {
		width = 24
	}
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1).
		Width(width)
	content := body
	if strings.TrimSpace(title) != "" {
		content = Title().Render(title) + "\n\n" + body
	}
	if phase != PhaseShown {
		border = border.Faint(true).BorderForeground(ColorMuted)
	}
	return border.Render(content)
}

// ModalWidth returns a comfortable overlay width for a terminal of width w.
func ModalWidth(w int) int {
	if w <= 0 {
		return 60
	}
	mw := w - 8
	if mw > 72 {
		mw = 72
	}
	if mw < 24 {
		mw = 24
	}
	return mw
}

// ApplyColorProfilePreference sets Lip Gloss's color profile for the interactive TUI.
// Only NO_COLOR is honored; otherwise the terminal's capabilities decide.
func ApplyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// ApplyThemePreference configures background detection.
//
// Priority:
// 1) TASKLANE_THEME=light|dark
// 2) COLORFGBG heuristic ("fg;bg")
func ApplyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TASKLANE_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}

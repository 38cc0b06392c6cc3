package sanitize

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"tasklane/internal/theme"

	"github.com/charmbracelet/glamour"
	gansi "github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	mdMu sync.Mutex
	// Renderers are cached by style and wrap width. WithAutoStyle would query
	// the terminal, which can block.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// Markdown sanitizes md and renders it for a column of the given width.
// On any renderer failure the sanitized source is returned as-is.
func Markdown(md string, width int) string {
	md = strings.TrimSpace(Text(md))
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	styleName := markdownStyle()
	key := styleName + ":" + strconv.Itoa(width)
	mdMu.Lock()
	r := mdRenderers[key]
	if r == nil {
		cfg := styleConfig(styleName)
		zero := uint(0)
		cfg.Document.Margin = &zero
		rr, err := glamour.NewTermRenderer(
			glamour.WithStyles(cfg),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			mdMu.Unlock()
			return md
		}
		mdRenderers[key] = rr
		r = rr
	}
	mdMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func markdownStyle() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TASKLANE_THEME"))) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

func styleConfig(styleName string) gansi.StyleConfig {
	cfg := styles.DarkStyleConfig
	if styleName == "light" {
		cfg = styles.LightStyleConfig
	}
	text := mdColor(theme.ColorSurfaceFg, styleName)
	link := mdColor(theme.ColorAccent, styleName)
	cfg.Text.Color = text
	cfg.Heading.Color = text
	cfg.H1.Color = text
	cfg.H2.Color = text
	cfg.H3.Color = text
	cfg.Link.Color = link
	cfg.LinkText.Color = link
	underline := true
	cfg.Link.Underline = &underline
	cfg.Strong.Color = nil
	cfg.Emph.Color = nil
	return cfg
}

func mdColor(c lipgloss.TerminalColor, styleName string) *string {
	ac, ok := c.(lipgloss.AdaptiveColor)
	if !ok {
		return nil
	}
	v := ac.Dark
	if styleName == "light" {
		v = ac.Light
	}
	return &v
}

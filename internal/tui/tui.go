package tui

import (
	"context"

	"tasklane/internal/config"
	"tasklane/internal/model"
	"tasklane/internal/store"
	"tasklane/internal/theme"

	tea "github.com/charmbracelet/bubbletea"
)

func Run(ctx context.Context, st *store.Store, actor model.Actor, cfg config.Config) error {
	theme.ApplyColorProfilePreference()
	theme.ApplyThemePreference()

	m := newAppModel(ctx, st, actor, Options{
		SettleDelay: cfg.SettleDelay,
		EnterDelay:  cfg.EnterDelay,
	})
	defer m.taskOverlay.Dispose()
	defer m.projectOverlay.Dispose()
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

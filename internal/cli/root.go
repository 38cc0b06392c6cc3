package cli

import (
	"errors"
	"fmt"
	"strings"

	"tasklane/internal/config"
	"tasklane/internal/format"
	"tasklane/internal/logging"
	"tasklane/internal/model"
	"tasklane/internal/store"
	"tasklane/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	ActorID    string
	PrettyJSON bool
	Format     string

	cfg    config.Config
	cfgErr error
}

func NewRootCmd() *cobra.Command {
	app := &App{}
	app.cfg, app.cfgErr = config.Load()

	cmd := &cobra.Command{
		Use:           "tasklane",
		Short:         "Local task manager: TUI + scriptable CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  tasklane

  # Scriptable commands
  tasklane tasks list --today
  tasklane tasks create --project proj-abc12345 --name "Write report" --due 2026-10-19

  # Direct task lookup (shortcut for: tasklane tasks show <task-id>)
  tasklane task-abc12345
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if app.cfgErr != nil {
			return writeErr(cmd, app.cfgErr)
		}
		logging.Configure(app.cfg.LogPath)
		logging.SetTraceEnabled(app.cfg.Trace)
		app.Format = strings.ToLower(strings.TrimSpace(app.Format))
		switch app.Format {
		case format.JSON, format.Table:
			return nil
		default:
			return writeErr(cmd, fmt.Errorf("unknown format: %s (want json|table)", app.Format))
		}
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", app.cfg.Dir, "Path to the data dir (default: nearest .tasklane, then ~/.tasklane)")
	cmd.PersistentFlags().StringVar(&app.ActorID, "actor", app.cfg.Actor, "Actor id (overrides the current identity)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", defaultFormat(app.cfg), "Output format (json|table)")

	cmd.AddCommand(newIdentityCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func defaultFormat(cfg config.Config) string {
	if cfg.Format == "" {
		return format.JSON
	}
	return cfg.Format
}

func runTUI(cmd *cobra.Command, app *App) error {
	st, err := openStore(cmd, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer st.Close()
	actor, err := currentActor(cmd, app, st)
	if err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(cmd.Context(), st, actor, app.cfg)
}

func openStore(cmd *cobra.Command, app *App) (*store.Store, error) {
	dir := strings.TrimSpace(app.Dir)
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
		app.Dir = d
	}
	return store.Open(cmd.Context(), dir)
}

func currentActor(cmd *cobra.Command, app *App, st *store.Store) (model.Actor, error) {
	ctx := cmd.Context()
	if id := strings.TrimSpace(app.ActorID); id != "" {
		a, err := st.FindActor(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return model.Actor{}, errNotFound("actor", id)
		}
		return a, err
	}
	a, err := st.CurrentActor(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return model.Actor{}, errors.New("no current actor; run `tasklane identity create --name <name> --use` or `tasklane identity use <actor-id>` (or pass --actor)")
	}
	return a, err
}

// session opens the store and resolves the actor, the prelude of every scoped command.
func session(cmd *cobra.Command, app *App) (*store.Store, model.Actor, error) {
	st, err := openStore(cmd, app)
	if err != nil {
		return nil, model.Actor{}, err
	}
	actor, err := currentActor(cmd, app, st)
	if err != nil {
		_ = st.Close()
		return nil, model.Actor{}, err
	}
	return st, actor, nil
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	if app.Format == format.Table {
		return format.WriteTable(cmd.OutOrStdout(), v)
	}
	return format.Write(cmd.OutOrStdout(), map[string]any{"data": v}, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

package cli

import (
	"tasklane/internal/model"

	"github.com/spf13/cobra"
)

func newEventsCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the event log",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List your events (newest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, actor, err := session(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			evs, err := st.ListEvents(cmd.Context(), actor.ID, limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			if evs == nil {
				evs = []model.Event{}
			}
			return writeOut(cmd, app, evs)
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 200, "Max events to return (0 = all)")

	cmd.AddCommand(listCmd)
	return cmd
}

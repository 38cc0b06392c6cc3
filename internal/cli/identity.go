package cli

import (
	"fmt"
	"strings"

	"tasklane/internal/model"

	"github.com/spf13/cobra"
)

func newIdentityCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Manage local identities (actors)",
	}

	cmd.AddCommand(newIdentityCreateCmd(app))
	cmd.AddCommand(newIdentityUseCmd(app))
	cmd.AddCommand(newIdentityListCmd(app))
	cmd.AddCommand(newIdentityWhoamiCmd(app))

	return cmd
}

func normalizeActorKind(kind string) (model.ActorKind, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", string(model.ActorKindHuman):
		return model.ActorKindHuman, nil
	case string(model.ActorKindAgent):
		return model.ActorKindAgent, nil
	default:
		return "", fmt.Errorf("invalid --kind %q (want human|agent)", kind)
	}
}

func newIdentityCreateCmd(app *App) *cobra.Command {
	var name string
	var kind string
	var use bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new identity (actor)",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := normalizeActorKind(kind)
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := openStore(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			actor, err := st.CreateActor(cmd.Context(), k, name)
			if err != nil {
				return writeErr(cmd, err)
			}
			if use {
				if err := st.SetCurrentActor(cmd.Context(), actor.ID); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, actor)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&kind, "kind", "human", "Actor kind (human|agent)")
	cmd.Flags().BoolVar(&use, "use", false, "Make it the current identity")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newIdentityUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <actor-id>",
		Short: "Set the current identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			id := strings.TrimSpace(args[0])
			if err := st.SetCurrentActor(cmd.Context(), id); err != nil {
				return writeErr(cmd, errNotFound("actor", id))
			}
			actor, err := st.FindActor(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, actor)
		},
	}
}

func newIdentityListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List identities",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			actors, err := st.ListActors(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, actors)
		},
	}
}

func newIdentityWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity commands run as",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, actor, err := session(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()
			return writeOut(cmd, app, actor)
		},
	}
}

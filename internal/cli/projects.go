package cli

import (
	"tasklane/internal/action"
	"tasklane/internal/actions"
	"tasklane/internal/mutate"

	"github.com/spf13/cobra"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage projects",
	}

	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsCreateCmd(app))
	cmd.AddCommand(newProjectsRenameCmd(app))

	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, actor, err := session(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			projects, err := st.ListProjects(cmd.Context(), actor.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, projects)
		},
	}
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, actor, err := session(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			req := action.NewRequest("", map[string]string{mutate.FieldName: name})
			res, err := actions.New(st).CreateProject(cmd.Context(), actor, req)
			return writeResult(cmd, app, res, err)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Project name")
	return cmd
}

func newProjectsRenameCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "rename <project-id>",
		Short: "Rename a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, actor, err := session(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			req := action.NewRequest(args[0], map[string]string{mutate.FieldName: name})
			res, err := actions.New(st).RenameProject(cmd.Context(), actor, req)
			return writeResult(cmd, app, res, err)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New project name")
	return cmd
}

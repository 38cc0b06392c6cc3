package cli

import (
	"errors"
	"strings"
	"time"

	"tasklane/internal/action"
	"tasklane/internal/actions"
	"tasklane/internal/model"
	"tasklane/internal/mutate"
	"tasklane/internal/store"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Manage tasks",
	}

	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksCompleteCmd(app))
	cmd.AddCommand(newTasksArchiveCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))

	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var projectID string
	var today bool
	var completed bool
	var archived bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, actor, err := session(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			f := store.TaskFilter{ProjectID: projectID, IncludeArchived: archived}
			if cmd.Flags().Changed("completed") {
				f.Completed = &completed
			}
			if today {
				f.DueOnOrBefore = time.Now().Format(model.DateLayout)
				if f.Completed == nil {
					open := false
					f.Completed = &open
				}
			}
			tasks, err := st.ListTasks(cmd.Context(), actor.ID, f)
			if err != nil {
				return writeErr(cmd, err)
			}
			if tasks == nil {
				tasks = []model.Task{}
			}
			return writeOut(cmd, app, tasks)
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Only tasks of this project")
	cmd.Flags().BoolVar(&today, "today", false, "Only open tasks due today or earlier")
	cmd.Flags().BoolVar(&completed, "completed", false, "Filter on completion (--completed or --completed=false)")
	cmd.Flags().BoolVar(&archived, "archived", false, "Include archived tasks")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, actor, err := session(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			id := strings.TrimSpace(args[0])
			t, err := st.FindTask(cmd.Context(), actor.ID, id)
			if errors.Is(err, store.ErrNotFound) {
				return writeErr(cmd, errNotFound("task", id))
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, t)
		},
	}
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var projectID, name, description, due string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, actor, err := session(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			req := action.NewRequest("", map[string]string{
				mutate.FieldProjectID:   projectID,
				mutate.FieldName:        name,
				mutate.FieldDescription: description,
				mutate.FieldDueDate:     due,
			})
			res, err := actions.New(st).CreateTask(cmd.Context(), actor, req)
			return writeResult(cmd, app, res, err)
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project id")
	cmd.Flags().StringVar(&name, "name", "", "Task name")
	cmd.Flags().StringVar(&description, "description", "", "Description (markdown)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var projectID, name, description, due string

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Change a task's fields (only the flags given)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := map[string]string{actions.FieldID: args[0]}
			for flag, f := range map[string]struct {
				field string
				value *string
			}{
				"project":     {mutate.FieldProjectID, &projectID},
				"name":        {mutate.FieldName, &name},
				"description": {mutate.FieldDescription, &description},
				"due":         {mutate.FieldDueDate, &due},
			} {
				if cmd.Flags().Changed(flag) {
					fields[f.field] = *f.value
				}
			}
			if len(fields) == 1 {
				return writeErr(cmd, errors.New("nothing to update (pass --name, --description, --due or --project)"))
			}

			st, actor, err := session(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			res, err := actions.New(st).UpdateTask(cmd.Context(), actor, action.NewRequest(args[0], fields))
			return writeResult(cmd, app, res, err)
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Move to project")
	cmd.Flags().StringVar(&name, "name", "", "Task name")
	cmd.Flags().StringVar(&description, "description", "", "Description (markdown)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD); empty clears it")
	return cmd
}

func newTasksCompleteCmd(app *App) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Mark a task completed (or open again with --undo)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, actor, err := session(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			value := "on"
			if undo {
				value = ""
			}
			req := action.NewRequest(args[0], map[string]string{
				actions.FieldID:          args[0],
				actions.FieldIsCompleted: value,
			})
			res, err := actions.New(st).SetCompleted(cmd.Context(), actor, req)
			return writeResult(cmd, app, res, err)
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "Reopen the task")
	return cmd
}

// newTasksArchiveCmd submits the same {id, isArchived=on} request as the
// task overlay's delete confirmation.
func newTasksArchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <task-id>",
		Short: "Archive a task (hidden from lists, kept in the store)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, actor, err := session(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			req := action.NewRequest(args[0], map[string]string{
				actions.FieldID:         args[0],
				actions.FieldIsArchived: "on",
			})
			res, err := actions.New(st).UpdateTask(cmd.Context(), actor, req)
			return writeResult(cmd, app, res, err)
		},
	}
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, actor, err := session(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			req := action.NewRequest(args[0], map[string]string{actions.FieldID: args[0]})
			res, err := actions.New(st).DeleteTask(cmd.Context(), actor, req)
			return writeResult(cmd, app, res, err)
		},
	}
}

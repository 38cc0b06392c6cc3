package format

import (
	"fmt"
	"io"
	"strconv"

	"tasklane/internal/model"
	"tasklane/internal/sanitize"
	"tasklane/internal/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const cellWidth = 48

// WriteTable renders the model types the CLI prints. Other values are an error.
func WriteTable(w io.Writer, v any) error {
	headers, rows, err := tableRows(v)
	if err != nil {
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			st := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return st.Bold(true)
			}
			return st
		}).
		Headers(headers...).
		Rows(rows...)
	_, err = fmt.Fprintln(w, t.Render())
	return err
}

func tableRows(v any) ([]string, [][]string, error) {
	switch x := v.(type) {
	case model.Task:
		return tableRows([]model.Task{x})
	case []model.Task:
		rows := make([][]string, 0, len(x))
		for _, t := range x {
			rows = append(rows, []string{
				t.ID,
				t.ProjectID,
				cell(t.Name),
				t.DueDate,
				strconv.FormatBool(t.IsCompleted),
				strconv.FormatBool(t.IsArchived),
			})
		}
		return []string{"ID", "PROJECT", "NAME", "DUE", "DONE", "ARCHIVED"}, rows, nil
	case model.Project:
		return tableRows([]model.Project{x})
	case []model.Project:
		rows := make([][]string, 0, len(x))
		for _, p := range x {
			rows = append(rows, []string{p.ID, cell(p.Name), p.CreatedAt.Format(model.DateLayout)})
		}
		return []string{"ID", "NAME", "CREATED"}, rows, nil
	case model.Actor:
		return tableRows([]model.Actor{x})
	case []model.Actor:
		rows := make([][]string, 0, len(x))
		for _, a := range x {
			rows = append(rows, []string{a.ID, string(a.Kind), cell(a.Name)})
		}
		return []string{"ID", "KIND", "NAME"}, rows, nil
	case []model.Event:
		rows := make([][]string, 0, len(x))
		for _, e := range x {
			rows = append(rows, []string{e.TS.Format("2006-01-02 15:04:05"), e.ActorID, e.Type, e.EntityID})
		}
		return []string{"TIME", "ACTOR", "TYPE", "ENTITY"}, rows, nil
	default:
		return nil, nil, fmt.Errorf("format table: unsupported value %T", v)
	}
}

func cell(s string) string {
	return sanitize.Line(s, cellWidth)
}

package cli

import (
	"fmt"

	"tasklane/internal/action"
	"tasklane/internal/format"

	"github.com/spf13/cobra"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

// resultError is a failed action result. Its errors are printed as JSON.
type resultError struct {
	res action.Result
}

func (e resultError) Error() string {
	return fmt.Sprintf("%s: %v", e.res.Kind, e.res.Messages())
}

// writeResult prints a successful result's value, or the error map of a
// failed one on stderr.
func writeResult(cmd *cobra.Command, app *App, res action.Result, err error) error {
	if err != nil {
		return writeErr(cmd, err)
	}
	if !res.OK() {
		payload := map[string]any{"error": map[string]any{
			"kind":   res.Kind.String(),
			"errors": res.Errors,
		}}
		if werr := format.WriteJSON(cmd.ErrOrStderr(), payload, app.PrettyJSON); werr != nil {
			return werr
		}
		return resultError{res: res}
	}
	return writeOut(cmd, app, res.Value)
}

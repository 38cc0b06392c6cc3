package mutate

import (
	"fmt"
	"sort"
	"strings"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

type OwnerOnlyError struct {
	ActorID  string
	AuthorID string
	ID       string
}

func (e OwnerOnlyError) Error() string {
	// Keep this generic; CLI/TUI can wrap with more specific phrasing.
	return "owner-only"
}

// ValidationError reports user-correctable input problems, keyed by field name.
type ValidationError struct {
	Fields map[string][]string
}

func (e ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e ValidationError) empty() bool { return len(e.Fields) == 0 }

// Package actions exposes the mutate operations as action.Func values. It
// decodes form-style request fields and turns typed mutate errors into
// Result kinds; any other error is left for the dispatcher to report as
// unexpected.
package actions

import (
	"context"
	"errors"
	"strings"

	"tasklane/internal/action"
	"tasklane/internal/model"
	"tasklane/internal/mutate"
	"tasklane/internal/store"
)

const (
	FieldID          = "id"
	FieldIsCompleted = "isCompleted"
	FieldIsArchived  = "isArchived"
)

type Actions struct {
	store *store.Store
}

func New(st *store.Store) *Actions {
	return &Actions{store: st}
}

func (a *Actions) CreateTask(ctx context.Context, actor model.Actor, req action.Request) (action.Result, error) {
	in := mutate.NewTask{
		ProjectID:   field(req, mutate.FieldProjectID),
		Name:        field(req, mutate.FieldName),
		Description: field(req, mutate.FieldDescription),
		DueDate:     field(req, mutate.FieldDueDate),
	}
	t, err := mutate.CreateTask(ctx, a.store, actor, in)
	return toResult(t, err)
}

// UpdateTask applies whichever task fields the request carries. The overlay's
// delete confirmation submits {id, isArchived=on} through this action.
func (a *Actions) UpdateTask(ctx context.Context, actor model.Actor, req action.Request) (action.Result, error) {
	res, err := mutate.UpdateTask(ctx, a.store, actor, targetID(req), Patch(req))
	return toResult(res.Task, err)
}

// SetCompleted toggles completion from a list row; the request carries
// isCompleted=on to complete and anything else to reopen.
func (a *Actions) SetCompleted(ctx context.Context, actor model.Actor, req action.Request) (action.Result, error) {
	res, err := mutate.SetTaskCompleted(ctx, a.store, actor, targetID(req), checkbox(field(req, FieldIsCompleted)))
	return toResult(res.Task, err)
}

// DeleteTask removes the task permanently (list-level delete).
func (a *Actions) DeleteTask(ctx context.Context, actor model.Actor, req action.Request) (action.Result, error) {
	t, err := mutate.DeleteTask(ctx, a.store, actor, targetID(req))
	return toResult(t, err)
}

func (a *Actions) CreateProject(ctx context.Context, actor model.Actor, req action.Request) (action.Result, error) {
	p, err := mutate.CreateProject(ctx, a.store, actor, field(req, mutate.FieldName))
	return toResult(p, err)
}

func (a *Actions) RenameProject(ctx context.Context, actor model.Actor, req action.Request) (action.Result, error) {
	p, err := mutate.RenameProject(ctx, a.store, actor, targetID(req), field(req, mutate.FieldName))
	return toResult(p, err)
}

// Patch decodes the request's fields into a task patch. Absent fields stay nil.
func Patch(req action.Request) mutate.TaskPatch {
	var p mutate.TaskPatch
	if v, ok := req.Field(mutate.FieldName); ok {
		p.Name = &v
	}
	if v, ok := req.Field(mutate.FieldDescription); ok {
		p.Description = &v
	}
	if v, ok := req.Field(mutate.FieldDueDate); ok {
		p.DueDate = &v
	}
	if v, ok := req.Field(mutate.FieldProjectID); ok {
		p.ProjectID = &v
	}
	if v, ok := req.Field(FieldIsCompleted); ok {
		b := checkbox(v)
		p.IsCompleted = &b
	}
	if v, ok := req.Field(FieldIsArchived); ok {
		b := checkbox(v)
		p.IsArchived = &b
	}
	return p
}

// ToResult maps a mutate outcome onto an action.Result. It is shared with the CLI.
func ToResult(v any, err error) (action.Result, error) {
	return toResult(v, err)
}

func toResult(v any, err error) (action.Result, error) {
	if err == nil {
		return action.Success(v), nil
	}
	var verr mutate.ValidationError
	var nf mutate.NotFoundError
	var owner mutate.OwnerOnlyError
	switch {
	case errors.As(err, &verr):
		errs := action.Errors{}
		for f, msgs := range verr.Fields {
			for _, m := range msgs {
				errs.Add(f, m)
			}
		}
		return action.Invalid(errs), nil
	case errors.As(err, &nf):
		return action.NotFound(notFoundMessage(nf.Kind)), nil
	case errors.As(err, &owner):
		return action.Unauthorized("You can only change what you created."), nil
	default:
		return action.Result{}, err
	}
}

func notFoundMessage(kind string) string {
	switch kind {
	case "task":
		return "Task not found."
	case "project":
		return "Project not found."
	default:
		return "Not found."
	}
}

func targetID(req action.Request) string {
	if id := strings.TrimSpace(req.TargetID); id != "" {
		return id
	}
	return field(req, FieldID)
}

func field(req action.Request, name string) string {
	v, _ := req.Field(name)
	return v
}

// checkbox follows HTML form semantics: "on" (or "true") is checked.
func checkbox(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}

package mutate

import (
	"context"
	"errors"
	"strings"
	"time"

	"tasklane/internal/logging"
	"tasklane/internal/model"
	"tasklane/internal/perm"
	"tasklane/internal/store"
)

// TaskPatch lists the task fields to change. Nil fields are left untouched.
type TaskPatch struct {
	Name        *string
	Description *string
	DueDate     *string
	ProjectID   *string
	IsCompleted *bool
	IsArchived  *bool
}

func (p TaskPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.DueDate == nil &&
		p.ProjectID == nil && p.IsCompleted == nil && p.IsArchived == nil
}

type TaskResult struct {
	Task    model.Task
	Changed bool
}

type NewTask struct {
	ProjectID   string
	Name        string
	Description string
	DueDate     string
}

func CreateTask(ctx context.Context, st *store.Store, actor model.Actor, in NewTask) (model.Task, error) {
	var verr ValidationError
	name := validateName(&verr, "Name", in.Name, MaxTaskNameLen)
	desc := validateDescription(&verr, in.Description)
	due := validateDueDate(&verr, in.DueDate)
	projectID := checkProject(ctx, st, actor, &verr, in.ProjectID)
	if !verr.empty() {
		return model.Task{}, verr
	}

	id, err := store.NewTaskID()
	if err != nil {
		return model.Task{}, err
	}
	now := time.Now().UTC()
	t := model.Task{
		ID:          id,
		ProjectID:   projectID,
		AuthorID:    actor.ID,
		Name:        name,
		Description: desc,
		DueDate:     due,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := st.InsertTask(ctx, t); err != nil {
		return model.Task{}, err
	}
	if err := record(ctx, st, actor, "task.create", t.ID, t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

// UpdateTask applies patch to the task. Only the author may change a task.
func UpdateTask(ctx context.Context, st *store.Store, actor model.Actor, taskID string, patch TaskPatch) (TaskResult, error) {
	t, err := loadEditableTask(ctx, st, actor, taskID)
	if err != nil {
		return TaskResult{}, err
	}

	var verr ValidationError
	next := t
	if patch.Name != nil {
		next.Name = validateName(&verr, "Name", *patch.Name, MaxTaskNameLen)
	}
	if patch.Description != nil {
		next.Description = validateDescription(&verr, *patch.Description)
	}
	if patch.DueDate != nil {
		next.DueDate = validateDueDate(&verr, *patch.DueDate)
	}
	if patch.ProjectID != nil {
		next.ProjectID = checkProject(ctx, st, actor, &verr, *patch.ProjectID)
	}
	if patch.IsCompleted != nil {
		next.IsCompleted = *patch.IsCompleted
	}
	if patch.IsArchived != nil {
		next.IsArchived = *patch.IsArchived
	}
	if !verr.empty() {
		return TaskResult{}, verr
	}

	payload := taskDiff(t, next)
	if len(payload) == 0 {
		return TaskResult{Task: t, Changed: false}, nil
	}
	next.UpdatedAt = time.Now().UTC()
	if err := st.UpdateTask(ctx, next); err != nil {
		return TaskResult{}, err
	}
	typ := "task.update"
	if len(payload) == 1 {
		if _, ok := payload["isArchived"]; ok {
			typ = "task.archive"
		} else if _, ok := payload["isCompleted"]; ok {
			typ = "task.complete"
		}
	}
	if err := record(ctx, st, actor, typ, next.ID, payload); err != nil {
		return TaskResult{}, err
	}
	return TaskResult{Task: next, Changed: true}, nil
}

// SetTaskArchived archives or restores a task.
func SetTaskArchived(ctx context.Context, st *store.Store, actor model.Actor, taskID string, archived bool) (TaskResult, error) {
	return UpdateTask(ctx, st, actor, taskID, TaskPatch{IsArchived: &archived})
}

func SetTaskCompleted(ctx context.Context, st *store.Store, actor model.Actor, taskID string, completed bool) (TaskResult, error) {
	return UpdateTask(ctx, st, actor, taskID, TaskPatch{IsCompleted: &completed})
}

// DeleteTask removes the task permanently and returns what was deleted.
func DeleteTask(ctx context.Context, st *store.Store, actor model.Actor, taskID string) (model.Task, error) {
	t, err := loadEditableTask(ctx, st, actor, taskID)
	if err != nil {
		return model.Task{}, err
	}
	if err := st.DeleteTask(ctx, actor.ID, t.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Task{}, NotFoundError{Kind: "task", ID: t.ID}
		}
		return model.Task{}, err
	}
	if err := record(ctx, st, actor, "task.delete", t.ID, map[string]any{"name": t.Name}); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func loadEditableTask(ctx context.Context, st *store.Store, actor model.Actor, taskID string) (model.Task, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return model.Task{}, NotFoundError{Kind: "task", ID: taskID}
	}
	t, err := st.GetTask(ctx, taskID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Task{}, NotFoundError{Kind: "task", ID: taskID}
	}
	if err != nil {
		return model.Task{}, err
	}
	if !perm.CanEditTask(actor, t) {
		return model.Task{}, OwnerOnlyError{ActorID: actor.ID, AuthorID: t.AuthorID, ID: t.ID}
	}
	return t, nil
}

// checkProject resolves projectID against the actor's own projects, adding a
// field error when it is missing or belongs to someone else.
func checkProject(ctx context.Context, st *store.Store, actor model.Actor, verr *ValidationError, projectID string) string {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		verr.add(FieldProjectID, "Project is required.")
		return ""
	}
	p, err := st.FindProject(ctx, actor.ID, projectID)
	if err != nil || !perm.CanEditProject(actor, p) {
		verr.add(FieldProjectID, "Project not found.")
		return projectID
	}
	return p.ID
}

func taskDiff(before, after model.Task) map[string]any {
	out := map[string]any{}
	if before.Name != after.Name {
		out["name"] = after.Name
	}
	if before.Description != after.Description {
		out["description"] = after.Description
	}
	if before.DueDate != after.DueDate {
		out["dueDate"] = after.DueDate
	}
	if before.ProjectID != after.ProjectID {
		out["projectId"] = after.ProjectID
	}
	if before.IsCompleted != after.IsCompleted {
		out["isCompleted"] = after.IsCompleted
	}
	if before.IsArchived != after.IsArchived {
		out["isArchived"] = after.IsArchived
	}
	return out
}

func record(ctx context.Context, st *store.Store, actor model.Actor, typ, entityID string, payload any) error {
	if _, err := st.AppendEvent(ctx, actor.ID, typ, entityID, payload); err != nil {
		return err
	}
	logging.Trace(typ, map[string]any{"actor": actor.ID, "id": entityID})
	return nil
}

package mutate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tasklane/internal/model"
	"tasklane/internal/store"
)

type fixture struct {
	st      *store.Store
	owner   model.Actor
	other   model.Actor
	project model.Project
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	owner, err := st.CreateActor(ctx, model.ActorKindHuman, "Owner")
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	other, err := st.CreateActor(ctx, model.ActorKindHuman, "Other")
	if err != nil {
		t.Fatalf("create other: %v", err)
	}
	p, err := CreateProject(ctx, st, owner, "Inbox")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return fixture{st: st, owner: owner, other: other, project: p}
}

func strPtr(s string) *string { return &s }

func TestCreateTask_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := CreateTask(ctx, f.st, f.owner, NewTask{
		ProjectID: "proj-missing",
		Name:      "  ",
		DueDate:   "2026-13-40",
	})
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{FieldName, FieldDueDate, FieldProjectID} {
		if len(verr.Fields[field]) == 0 {
			t.Fatalf("expected %s error, got %v", field, verr.Fields)
		}
	}
	if got := verr.Fields[FieldName][0]; got != "Name is required." {
		t.Fatalf("unexpected name message %q", got)
	}

	_, err = CreateTask(ctx, f.st, f.owner, NewTask{
		ProjectID:   f.project.ID,
		Name:        strings.Repeat("x", MaxTaskNameLen+1),
		Description: strings.Repeat("y", MaxTaskDescriptionLen+1),
	})
	if !errors.As(err, &verr) || len(verr.Fields[FieldName]) == 0 || len(verr.Fields[FieldDescription]) == 0 {
		t.Fatalf("expected length errors, got %v", err)
	}
}

func TestCreateTask_RejectsOtherActorsProject(t *testing.T) {
	f := newFixture(t)
	_, err := CreateTask(context.Background(), f.st, f.other, NewTask{ProjectID: f.project.ID, Name: "Sneaky"})
	var verr ValidationError
	if !errors.As(err, &verr) || verr.Fields[FieldProjectID][0] != "Project not found." {
		t.Fatalf("expected project error, got %v", err)
	}
}

func TestUpdateTask_AppliesPatchAndRecordsEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task, err := CreateTask(ctx, f.st, f.owner, NewTask{ProjectID: f.project.ID, Name: "Draft", DueDate: "2026-10-19"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := UpdateTask(ctx, f.st, f.owner, task.ID, TaskPatch{Name: strPtr(" Final "), DueDate: strPtr("")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !res.Changed || res.Task.Name != "Final" || res.Task.DueDate != "" {
		t.Fatalf("unexpected result: %+v", res)
	}

	// Same values again: nothing to record.
	res, err = UpdateTask(ctx, f.st, f.owner, task.ID, TaskPatch{Name: strPtr("Final")})
	if err != nil || res.Changed {
		t.Fatalf("expected no-op, got %+v err=%v", res, err)
	}

	evs, err := f.st.ListEvents(ctx, f.owner.ID, 0)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(evs) != 3 || evs[0].Type != "task.update" || evs[1].Type != "task.create" || evs[2].Type != "project.create" {
		t.Fatalf("unexpected events: %+v", evs)
	}
}

func TestUpdateTask_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task, err := CreateTask(ctx, f.st, f.owner, NewTask{ProjectID: f.project.ID, Name: "Mine"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = UpdateTask(ctx, f.st, f.other, task.ID, TaskPatch{Name: strPtr("Theirs")})
	var owner OwnerOnlyError
	if !errors.As(err, &owner) {
		t.Fatalf("expected OwnerOnlyError, got %v", err)
	}
	if _, err := DeleteTask(ctx, f.st, f.other, task.ID); !errors.As(err, &owner) {
		t.Fatalf("expected OwnerOnlyError on delete, got %v", err)
	}
}

func TestSetTaskArchived(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task, err := CreateTask(ctx, f.st, f.owner, NewTask{ProjectID: f.project.ID, Name: "Old"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := SetTaskArchived(ctx, f.st, f.owner, task.ID, true)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !res.Changed || !res.Task.IsArchived {
		t.Fatalf("expected archived, got %+v", res)
	}

	// No-op
	res, err = SetTaskArchived(ctx, f.st, f.owner, task.ID, true)
	if err != nil {
		t.Fatalf("archive no-op: %v", err)
	}
	if res.Changed {
		t.Fatalf("expected changed=false")
	}

	list, err := f.st.ListTasks(ctx, f.owner.ID, store.TaskFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("archived task must be hidden from lists, got %+v", list)
	}

	evs, _ := f.st.ListEvents(ctx, f.owner.ID, 1)
	if len(evs) != 1 || evs[0].Type != "task.archive" {
		t.Fatalf("expected task.archive event, got %+v", evs)
	}
}

func TestDeleteTask_Hard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task, err := CreateTask(ctx, f.st, f.owner, NewTask{ProjectID: f.project.ID, Name: "Gone"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := DeleteTask(ctx, f.st, f.owner, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.st.GetTask(ctx, task.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected row gone, got %v", err)
	}
	var nf NotFoundError
	if _, err := DeleteTask(ctx, f.st, f.owner, task.ID); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestRenameProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := RenameProject(ctx, f.st, f.owner, f.project.ID, "Work")
	if err != nil || p.Name != "Work" {
		t.Fatalf("rename: %+v err=%v", p, err)
	}
	var verr ValidationError
	if _, err := RenameProject(ctx, f.st, f.owner, f.project.ID, ""); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var owner OwnerOnlyError
	if _, err := RenameProject(ctx, f.st, f.other, f.project.ID, "Mine now"); !errors.As(err, &owner) {
		t.Fatalf("expected OwnerOnlyError, got %v", err)
	}
	var nf NotFoundError
	if _, err := RenameProject(ctx, f.st, f.owner, "proj-nope", "x"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

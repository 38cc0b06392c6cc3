package mutate

import (
	"context"
	"errors"
	"strings"
	"time"

	"tasklane/internal/model"
	"tasklane/internal/perm"
	"tasklane/internal/store"
)

func CreateProject(ctx context.Context, st *store.Store, actor model.Actor, name string) (model.Project, error) {
	var verr ValidationError
	name = validateName(&verr, "Project name", name, MaxProjectNameLen)
	if !verr.empty() {
		return model.Project{}, verr
	}
	if strings.TrimSpace(actor.ID) == "" {
		return model.Project{}, OwnerOnlyError{}
	}
	id, err := store.NewProjectID()
	if err != nil {
		return model.Project{}, err
	}
	now := time.Now().UTC()
	p := model.Project{ID: id, Name: name, AuthorID: actor.ID, CreatedAt: now, UpdatedAt: now}
	if err := st.InsertProject(ctx, p); err != nil {
		return model.Project{}, err
	}
	if err := record(ctx, st, actor, "project.create", p.ID, map[string]any{"name": p.Name}); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

func RenameProject(ctx context.Context, st *store.Store, actor model.Actor, projectID, name string) (model.Project, error) {
	projectID = strings.TrimSpace(projectID)
	p, err := st.GetProject(ctx, projectID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Project{}, NotFoundError{Kind: "project", ID: projectID}
	}
	if err != nil {
		return model.Project{}, err
	}
	if !perm.CanEditProject(actor, p) {
		return model.Project{}, OwnerOnlyError{ActorID: actor.ID, AuthorID: p.AuthorID, ID: p.ID}
	}

	var verr ValidationError
	name = validateName(&verr, "Project name", name, MaxProjectNameLen)
	if !verr.empty() {
		return model.Project{}, verr
	}
	if p.Name == name {
		return p, nil
	}
	p.Name = name
	p.UpdatedAt = time.Now().UTC()
	if err := st.UpdateProject(ctx, p); err != nil {
		return model.Project{}, err
	}
	if err := record(ctx, st, actor, "project.rename", p.ID, map[string]any{"name": p.Name}); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

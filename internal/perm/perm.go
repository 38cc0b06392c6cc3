package perm

import (
	"strings"

	"tasklane/internal/model"
)

// CanEditTask enforces tasklane ownership rules for mutating a task.
//
// Rules:
// - Only the author can edit, complete, archive or delete a task.
// - An empty actor can never edit.
func CanEditTask(actor model.Actor, t model.Task) bool {
	id := strings.TrimSpace(actor.ID)
	if id == "" {
		return false
	}
	return t.AuthorID == id
}

// CanEditProject mirrors CanEditTask for projects. It also gates creating
// tasks inside the project.
func CanEditProject(actor model.Actor, p model.Project) bool {
	id := strings.TrimSpace(actor.ID)
	if id == "" {
		return false
	}
	return p.AuthorID == id
}

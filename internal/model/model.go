package model

import "time"

type ActorKind string

const (
	ActorKindHuman ActorKind = "human"
	ActorKindAgent ActorKind = "agent"
)

// Actor is the identity every read and write is scoped to.
type Actor struct {
	ID   string    `json:"id"`
	Kind ActorKind `json:"kind"`
	Name string    `json:"name"`
}

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Task struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	AuthorID  string `json:"authorId"`

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// DueDate is YYYY-MM-DD; empty means no due date.
	DueDate     string `json:"dueDate,omitempty"`
	IsCompleted bool   `json:"isCompleted"`
	IsArchived  bool   `json:"isArchived"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DueOnOrBefore reports whether the task has a due date no later than day (YYYY-MM-DD).
func (t Task) DueOnOrBefore(day string) bool {
	if t.DueDate == "" {
		return false
	}
	// ISO dates compare lexicographically.
	return t.DueDate <= day
}

type Event struct {
	ID       string    `json:"id"`
	TS       time.Time `json:"ts"`
	ActorID  string    `json:"actorId"`
	Type     string    `json:"type"`
	EntityID string    `json:"entityId"`
	Payload  any       `json:"payload"`
}

const DateLayout = "2006-01-02"

package tui

import (
	"tasklane/internal/model"
	"tasklane/internal/nav"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalJump
	modalAddTask
)

type reloadTickMsg struct{}

type flashDoneMsg struct{ seq int }

// dataLoadedMsg carries a snapshot of the store for the route it was loaded for.
type dataLoadedMsg struct {
	seq      int
	route    nav.Route
	projects []model.Project
	tasks    []model.Task
	// all is every open task of the actor, for the jump modal and task lookups.
	all       []model.Task
	latestSeq int64
	err       error
}

type storeSeqMsg struct {
	seq int64
	err error
}

package mutate

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"tasklane/internal/model"
)

const (
	MaxTaskNameLen        = 200
	MaxTaskDescriptionLen = 5000
	MaxProjectNameLen     = 100
)

// Field names as submitted by the overlay forms and the CLI.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldDueDate     = "dueDate"
	FieldProjectID   = "projectId"
)

func validateName(verr *ValidationError, label, name string, max int) string {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		verr.add(FieldName, label+" is required.")
	case utf8.RuneCountInString(name) > max:
		verr.add(FieldName, label+" must be at most "+strconv.Itoa(max)+" characters.")
	}
	return name
}

func validateDescription(verr *ValidationError, desc string) string {
	if utf8.RuneCountInString(desc) > MaxTaskDescriptionLen {
		verr.add(FieldDescription, "Description must be at most "+strconv.Itoa(MaxTaskDescriptionLen)+" characters.")
	}
	return desc
}

// validateDueDate accepts "" (no due date) or YYYY-MM-DD.
func validateDueDate(verr *ValidationError, due string) string {
	due = strings.TrimSpace(due)
	if due == "" {
		return ""
	}
	if _, err := time.Parse(model.DateLayout, due); err != nil {
		verr.add(FieldDueDate, "Due date must be a valid date (YYYY-MM-DD).")
	}
	return due
}

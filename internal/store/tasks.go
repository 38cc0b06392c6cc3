package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"tasklane/internal/model"
)

// TaskFilter narrows ListTasks. The zero value lists every non-archived task of the actor.
type TaskFilter struct {
	ProjectID string
	// DueOnOrBefore (YYYY-MM-DD) keeps only tasks with a due date no later than this day.
	DueOnOrBefore string
	// Completed, when set, keeps only tasks with that completion state.
	Completed       *bool
	IncludeArchived bool
}

const taskColumns = `id, project_id, author_id, name, description, due_date, is_completed, is_archived, created_at_unixms, updated_at_unixms`

func (s *Store) ListTasks(ctx context.Context, actorID string, f TaskFilter) ([]model.Task, error) {
	var where []string
	var args []any
	where = append(where, "author_id = ?")
	args = append(args, strings.TrimSpace(actorID))
	if pid := strings.TrimSpace(f.ProjectID); pid != "" {
		where = append(where, "project_id = ?")
		args = append(args, pid)
	}
	if day := strings.TrimSpace(f.DueOnOrBefore); day != "" {
		where = append(where, "due_date != '' AND due_date <= ?")
		args = append(args, day)
	}
	if f.Completed != nil {
		where = append(where, "is_completed = ?")
		args = append(args, boolToInt(*f.Completed))
	}
	if !f.IncludeArchived {
		where = append(where, "is_archived = 0")
	}

	q := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_at_unixms, id`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) FindTask(ctx context.Context, actorID, id string) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ? AND author_id = ?`,
		strings.TrimSpace(id), strings.TrimSpace(actorID))
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrNotFound
	}
	return t, err
}

func (s *Store) InsertTask(ctx context.Context, t model.Task) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO tasks(`+taskColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.AuthorID, t.Name, t.Description, t.DueDate,
		boolToInt(t.IsCompleted), boolToInt(t.IsArchived),
		t.CreatedAt.UTC().UnixMilli(), t.UpdatedAt.UTC().UnixMilli())
	return err
}

func (s *Store) UpdateTask(ctx context.Context, t model.Task) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			project_id = ?, name = ?, description = ?, due_date = ?,
			is_completed = ?, is_archived = ?, updated_at_unixms = ?
		WHERE id = ? AND author_id = ?`,
		t.ProjectID, t.Name, t.Description, t.DueDate,
		boolToInt(t.IsCompleted), boolToInt(t.IsArchived), t.UpdatedAt.UTC().UnixMilli(),
		t.ID, t.AuthorID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (s *Store) DeleteTask(ctx context.Context, actorID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND author_id = ?`,
		strings.TrimSpace(id), strings.TrimSpace(actorID))
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func scanTask(r rowScanner) (model.Task, error) {
	var t model.Task
	var completed, archived int
	var created, updated int64
	if err := r.Scan(&t.ID, &t.ProjectID, &t.AuthorID, &t.Name, &t.Description, &t.DueDate,
		&completed, &archived, &created, &updated); err != nil {
		return model.Task{}, err
	}
	t.IsCompleted = completed != 0
	t.IsArchived = archived != 0
	t.CreatedAt = time.UnixMilli(created).UTC()
	t.UpdatedAt = time.UnixMilli(updated).UTC()
	return t, nil
}

// GetTask loads a task by id regardless of its author. Permission checks are
// the caller's job; list and UI reads go through FindTask.
func (s *Store) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, strings.TrimSpace(id))
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrNotFound
	}
	return t, err
}

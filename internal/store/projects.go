package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"tasklane/internal/model"
)

func (s *Store) ListProjects(ctx context.Context, actorID string) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, author_id, name, created_at_unixms, updated_at_unixms
		FROM projects WHERE author_id = ?
		ORDER BY created_at_unixms, id`, strings.TrimSpace(actorID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) FindProject(ctx context.Context, actorID, id string) (model.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, author_id, name, created_at_unixms, updated_at_unixms
		FROM projects WHERE id = ? AND author_id = ?`, strings.TrimSpace(id), strings.TrimSpace(actorID))
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, ErrNotFound
	}
	return p, err
}

func (s *Store) InsertProject(ctx context.Context, p model.Project) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects(id, author_id, name, created_at_unixms, updated_at_unixms)
		VALUES(?, ?, ?, ?, ?)`,
		p.ID, p.AuthorID, p.Name, p.CreatedAt.UTC().UnixMilli(), p.UpdatedAt.UTC().UnixMilli())
	return err
}

func (s *Store) UpdateProject(ctx context.Context, p model.Project) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE projects SET name = ?, updated_at_unixms = ?
		WHERE id = ? AND author_id = ?`,
		p.Name, p.UpdatedAt.UTC().UnixMilli(), p.ID, p.AuthorID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(r rowScanner) (model.Project, error) {
	var p model.Project
	var created, updated int64
	if err := r.Scan(&p.ID, &p.AuthorID, &p.Name, &created, &updated); err != nil {
		return model.Project{}, err
	}
	p.CreatedAt = time.UnixMilli(created).UTC()
	p.UpdatedAt = time.UnixMilli(updated).UTC()
	return p, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetProject loads a project by id regardless of its author.
func (s *Store) GetProject(ctx context.Context, id string) (model.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, author_id, name, created_at_unixms, updated_at_unixms
		FROM projects WHERE id = ?`, strings.TrimSpace(id))
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, ErrNotFound
	}
	return p, err
}

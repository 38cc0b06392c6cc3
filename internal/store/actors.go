package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"tasklane/internal/model"
)

const metaCurrentActor = "current_actor_id"

func (s *Store) CreateActor(ctx context.Context, kind model.ActorKind, name string) (model.Actor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Actor{}, errors.New("actor name is required")
	}
	if kind == "" {
		kind = model.ActorKindHuman
	}
	id, err := NewActorID()
	if err != nil {
		return model.Actor{}, err
	}
	a := model.Actor{ID: id, Kind: kind, Name: name}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO actors(id, kind, name) VALUES(?, ?, ?)`, a.ID, string(a.Kind), a.Name); err != nil {
		return model.Actor{}, err
	}
	return a, nil
}

func (s *Store) FindActor(ctx context.Context, id string) (model.Actor, error) {
	var a model.Actor
	var kind string
	err := s.db.QueryRowContext(ctx, `SELECT id, kind, name FROM actors WHERE id = ?`, strings.TrimSpace(id)).
		Scan(&a.ID, &kind, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Actor{}, ErrNotFound
	}
	if err != nil {
		return model.Actor{}, err
	}
	a.Kind = model.ActorKind(kind)
	return a, nil
}

func (s *Store) ListActors(ctx context.Context) ([]model.Actor, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, kind, name FROM actors ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Actor
	for rows.Next() {
		var a model.Actor
		var kind string
		if err := rows.Scan(&a.ID, &kind, &a.Name); err != nil {
			return nil, err
		}
		a.Kind = model.ActorKind(kind)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) SetCurrentActor(ctx context.Context, id string) error {
	if _, err := s.FindActor(ctx, id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO meta(k, v) VALUES(?, ?)`, metaCurrentActor, strings.TrimSpace(id))
	return err
}

// CurrentActor returns the actor recorded by SetCurrentActor, or ErrNotFound.
func (s *Store) CurrentActor(ctx context.Context) (model.Actor, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = ?`, metaCurrentActor).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) || strings.TrimSpace(id) == "" {
		return model.Actor{}, ErrNotFound
	}
	if err != nil {
		return model.Actor{}, err
	}
	return s.FindActor(ctx, id)
}

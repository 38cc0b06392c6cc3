package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"tasklane/internal/model"

	"github.com/google/uuid"
)

func (s *Store) AppendEvent(ctx context.Context, actorID, typ, entityID string, payload any) (model.Event, error) {
	ev := model.Event{
		ID:       uuid.NewString(),
		TS:       time.Now().UTC(),
		ActorID:  strings.TrimSpace(actorID),
		Type:     typ,
		EntityID: entityID,
		Payload:  payload,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return model.Event{}, err
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO events(id, ts_unixms, actor_id, type, entity_id, payload_json)
		VALUES(?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.TS.UnixMilli(), ev.ActorID, ev.Type, ev.EntityID, string(raw)); err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

// ListEvents returns the actor's most recent events, newest first. limit <= 0 means all.
func (s *Store) ListEvents(ctx context.Context, actorID string, limit int) ([]model.Event, error) {
	q := `SELECT id, ts_unixms, actor_id, type, entity_id, payload_json FROM events WHERE actor_id = ? ORDER BY seq DESC`
	args := []any{strings.TrimSpace(actorID)}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Event
	for rows.Next() {
		var ev model.Event
		var ts int64
		var raw string
		if err := rows.Scan(&ev.ID, &ts, &ev.ActorID, &ev.Type, &ev.EntityID, &raw); err != nil {
			return nil, err
		}
		ev.TS = time.UnixMilli(ts).UTC()
		var payload any
		if err := json.Unmarshal([]byte(raw), &payload); err == nil {
			ev.Payload = payload
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// LatestSeq returns the sequence number of the newest event (0 when empty).
// Readers poll it to notice writes made by another process.
func (s *Store) LatestSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM events`).Scan(&seq); err != nil {
		return 0, err
	}
	return seq.Int64, nil
}

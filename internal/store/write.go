package store

import (
	"context"
	"fmt"

	"github.com/filmroom/telestrator/internal/event"
)

// Append inserts events in slice order within one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - a recorder retrying
// after a failed acknowledgement re-sends the same IDs and the duplicates
// are silently skipped. Other constraint violations still return errors.
//
// The payload is serialized as the event_data JSON object; the envelope
// fields live in their own columns.
func (s *Store) Append(ctx context.Context, events []event.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append events: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for i, e := range events {
		if e.ID == "" || e.PointID == "" {
			return fmt.Errorf("append events: event %d: missing id or point id", i)
		}
		data, err := event.MarshalPayload(e.Type, e.Payload)
		if err != nil {
			return fmt.Errorf("append events: event %d: %w", i, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO events
			(id, point_id, event_type, timestamp_ms, event_data)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`,
			e.ID,
			e.PointID,
			string(e.Type),
			e.TimestampMS,
			string(data),
		)
		if err != nil {
			return fmt.Errorf("append events: event %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append events: commit: %w", err)
	}

	return nil
}

// DeletePoint removes every event of a coaching point. Deleting a point
// that does not exist is a no-op.
func (s *Store) DeletePoint(ctx context.Context, pointID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE point_id = ?`, pointID)
	if err != nil {
		return fmt.Errorf("delete point: %w", err)
	}
	return nil
}

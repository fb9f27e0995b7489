package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/filmroom/telestrator/internal/event"
)

// ListEvents returns a coaching point's full log.
// Results are ordered deterministically: ORDER BY timestamp_ms ASC, seq ASC,
// so events sharing a millisecond come back in insertion order.
//
// Returns an empty slice (not nil) if the point has no events.
func (s *Store) ListEvents(ctx context.Context, pointID string) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, point_id, event_type, timestamp_ms, event_data
		FROM events
		WHERE point_id = ?
		ORDER BY timestamp_ms ASC, seq ASC
	`, pointID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []event.Event{}
	for rows.Next() {
		var (
			e         event.Event
			eventType string
			data      string
		)
		if err := rows.Scan(&e.ID, &e.PointID, &eventType, &e.TimestampMS, &data); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Type = event.Type(eventType)
		e.Payload, err = event.UnmarshalPayload(e.Type, json.RawMessage(data))
		if err != nil {
			return nil, fmt.Errorf("decode event %s: %w", e.ID, err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

// ListPoints summarizes every stored coaching point, ordered by point ID.
func (s *Store) ListPoints(ctx context.Context) ([]PointInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT point_id, COUNT(*), MAX(timestamp_ms)
		FROM events
		GROUP BY point_id
		ORDER BY point_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	defer rows.Close()

	points := []PointInfo{}
	for rows.Next() {
		var p PointInfo
		if err := rows.Scan(&p.ID, &p.Events, &p.DurationMS); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate points: %w", err)
	}

	return points, nil
}

// Package postgres implements the EventStore contract on PostgreSQL for
// shared deployments. Schema changes ship as embedded SQL migrations and
// are applied on Open.
//
// The semantics match the SQLite store: idempotent appends keyed by event
// ID, reads ordered by (timestamp_ms, seq), whole-point deletion only.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/filmroom/telestrator/internal/event"
	"github.com/filmroom/telestrator/internal/store"
)

// migrationFS embeds the SQL migration files applied by Open.
//
//go:embed migrations/*.sql
var migrationFS embed.FS

// Store is the PostgreSQL implementation of store.EventStore.
type Store struct {
	db *sql.DB
}

var _ store.EventStore = (*Store)(nil)

// Open connects to PostgreSQL using the given DSN, applies embedded
// migrations, and returns a ready store. Caller must call Close when done.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres: dsn is empty")
	}
	if err := runMigrations(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	return &Store{db: db}, nil
}

// runMigrations applies all pending up migrations. Already being at the
// latest version is not an error.
func runMigrations(dsn string) error {
	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("postgres: migrate source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: migrate up: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append inserts events in slice order within one transaction, skipping
// IDs that are already present.
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
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING
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

// ListEvents returns a coaching point's full log ordered by
// (timestamp_ms, seq). Returns an empty slice if the point has no events.
func (s *Store) ListEvents(ctx context.Context, pointID string) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, point_id, event_type, timestamp_ms, event_data
		FROM events
		WHERE point_id = $1
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
			data      []byte
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
func (s *Store) ListPoints(ctx context.Context) ([]store.PointInfo, error) {
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

	points := []store.PointInfo{}
	for rows.Next() {
		var p store.PointInfo
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

// DeletePoint removes every event of a coaching point.
func (s *Store) DeletePoint(ctx context.Context, pointID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE point_id = $1`, pointID)
	if err != nil {
		return fmt.Errorf("delete point: %w", err)
	}
	return nil
}

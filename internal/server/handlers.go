package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/filmroom/telestrator/internal/event"
	"github.com/filmroom/telestrator/internal/logschema"
)

// pointSummary is the list-points response row.
type pointSummary struct {
	ID         string `json:"id"`
	Events     int    `json:"events"`
	DurationMS int64  `json:"duration_ms"`
}

// appendResult is the append response body.
type appendResult struct {
	Appended int `json:"appended"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListPoints(w http.ResponseWriter, r *http.Request) {
	points, err := s.store.ListPoints(r.Context())
	if err != nil {
		slog.Error("list points failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list points")
		return
	}

	out := make([]pointSummary, 0, len(points))
	for _, p := range points {
		out = append(out, pointSummary{ID: p.ID, Events: p.Events, DurationMS: p.DurationMS})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleListEvents returns a point's log as a JSON array of wire events.
// Every stored point has at least its recording_start event, so an empty
// result means the point does not exist.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	pointID := r.PathValue("id")
	events, err := s.store.ListEvents(r.Context(), pointID)
	if err != nil {
		slog.Error("list events failed", "point_id", pointID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not read log")
		return
	}
	if len(events) == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown point %q", pointID))
		return
	}

	out := make([]json.RawMessage, 0, len(events))
	for _, ev := range events {
		data, err := event.MarshalEvent(ev)
		if err != nil {
			slog.Error("event encode failed", "point_id", pointID, "event_id", ev.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "could not encode log")
			return
		}
		out = append(out, data)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAppendEvents appends a batch of wire events to a point's log.
//
// The batch is the strict boundary: every event must pass the schema,
// carry the point ID from the URL, and the existing log plus the batch
// must still be a valid log. Schema and envelope problems are 400s; a
// well-formed batch that breaks log ordering is a 422.
func (s *Server) handleAppendEvents(w http.ResponseWriter, r *http.Request) {
	pointID := r.PathValue("id")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "body must be a JSON array of events")
		return
	}
	if len(raw) == 0 {
		writeError(w, http.StatusBadRequest, "empty event batch")
		return
	}

	batch := make([]event.Event, 0, len(raw))
	for i, data := range raw {
		if err := logschema.Validate(data); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("events[%d]: %v", i, err))
			return
		}
		ev, err := event.UnmarshalEvent(data)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("events[%d]: %v", i, err))
			return
		}
		if ev.PointID != pointID {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("events[%d]: point_id %q does not match %q", i, ev.PointID, pointID))
			return
		}
		batch = append(batch, ev)
	}

	existing, err := s.store.ListEvents(r.Context(), pointID)
	if err != nil {
		slog.Error("list events failed", "point_id", pointID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not read log")
		return
	}
	combined := make([]event.Event, 0, len(existing)+len(batch))
	combined = append(combined, existing...)
	combined = append(combined, batch...)
	if err := event.ValidateLog(combined); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.Append(r.Context(), batch); err != nil {
		slog.Error("append failed", "point_id", pointID, "events", len(batch), "error", err)
		writeError(w, http.StatusInternalServerError, "could not append events")
		return
	}

	for _, ev := range batch {
		s.hub.Publish(pointID, ev)
	}

	slog.Info("events appended", "point_id", pointID, "events", len(batch))
	writeJSON(w, http.StatusCreated, appendResult{Appended: len(batch)})
}

// handleDeletePoint removes a point's entire log. Deleting a point that
// does not exist is a no-op, so the response is 204 either way.
func (s *Server) handleDeletePoint(w http.ResponseWriter, r *http.Request) {
	pointID := r.PathValue("id")
	if err := s.store.DeletePoint(r.Context(), pointID); err != nil {
		slog.Error("delete point failed", "point_id", pointID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not delete point")
		return
	}
	slog.Info("point deleted", "point_id", pointID)
	w.WriteHeader(http.StatusNoContent)
}

// handleLive upgrades to websocket and registers the connection as a
// watcher. No existence check: viewers may join before the recorder has
// persisted anything.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	pointID := r.PathValue("id")
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		slog.Error("websocket upgrade failed", "point_id", pointID, "error", err)
		return
	}
	if _, err := s.hub.Register(pointID, conn); err != nil {
		slog.Error("live register failed", "point_id", pointID, "error", err)
		conn.Close()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response write failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

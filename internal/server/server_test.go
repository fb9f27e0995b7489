package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmroom/telestrator/internal/event"
	"github.com/filmroom/telestrator/internal/live"
	"github.com/filmroom/telestrator/internal/store"
)

// setupTestServer backs a test server with a fresh SQLite store and a
// live hub, all torn down with the test.
func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	hub := live.NewHub()
	t.Cleanup(hub.Close)

	srv := httptest.NewServer(New(":0", st, hub).Handler())
	t.Cleanup(srv.Close)
	return srv
}

// sessionOpening is a minimal valid log: start, play, pause.
func sessionOpening(pointID string) []event.Event {
	return []event.Event{
		{ID: pointID + "-1", PointID: pointID, Type: event.TypeRecordingStart, TimestampMS: 0,
			Payload: event.StartPayload{InitialVideoTimeSec: 12, InitialRate: 1}},
		{ID: pointID + "-2", PointID: pointID, Type: event.TypePlay, TimestampMS: 0,
			Payload: event.TransportPayload{VideoTimeSec: 12}},
		{ID: pointID + "-3", PointID: pointID, Type: event.TypePause, TimestampMS: 2000,
			Payload: event.TransportPayload{VideoTimeSec: 14}},
	}
}

func wireBody(t *testing.T, events []event.Event) []byte {
	t.Helper()
	out := make([]json.RawMessage, 0, len(events))
	for _, ev := range events {
		data, err := event.MarshalEvent(ev)
		require.NoError(t, err)
		out = append(out, data)
	}
	body, err := json.Marshal(out)
	require.NoError(t, err)
	return body
}

func postEvents(t *testing.T, srv *httptest.Server, pointID string, body []byte) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/points/"+pointID+"/events", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestHealth(t *testing.T) {
	srv := setupTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "ok")
}

func TestListPoints_Empty(t *testing.T) {
	srv := setupTestServer(t)

	resp, err := http.Get(srv.URL + "/api/points")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var points []pointSummary
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &points))
	assert.Empty(t, points)
}

func TestAppendAndReadBack(t *testing.T) {
	srv := setupTestServer(t)

	resp := postEvents(t, srv, "p1", wireBody(t, sessionOpening("p1")))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"appended":3`)

	resp, err := http.Get(srv.URL + "/api/points/p1/events")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &raw))
	require.Len(t, raw, 3)
	for i, data := range raw {
		ev, err := event.UnmarshalEvent(data)
		require.NoError(t, err)
		assert.Equal(t, sessionOpening("p1")[i].ID, ev.ID)
	}

	resp, err = http.Get(srv.URL + "/api/points")
	require.NoError(t, err)
	var points []pointSummary
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &points))
	require.Len(t, points, 1)
	assert.Equal(t, pointSummary{ID: "p1", Events: 3, DurationMS: 2000}, points[0])
}

func TestAppend_SecondBatchContinuesLog(t *testing.T) {
	srv := setupTestServer(t)

	resp := postEvents(t, srv, "p1", wireBody(t, sessionOpening("p1")))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	readBody(t, resp)

	more := []event.Event{
		{ID: "p1-4", PointID: "p1", Type: event.TypePlay, TimestampMS: 3000,
			Payload: event.TransportPayload{VideoTimeSec: 14}},
	}
	resp = postEvents(t, srv, "p1", wireBody(t, more))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	readBody(t, resp)

	resp, err := http.Get(srv.URL + "/api/points/p1/events")
	require.NoError(t, err)
	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &raw))
	assert.Len(t, raw, 4)
}

func TestAppend_RejectsPointMismatch(t *testing.T) {
	srv := setupTestServer(t)

	resp := postEvents(t, srv, "p2", wireBody(t, sessionOpening("p1")))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "does not match")
}

func TestAppend_RejectsMalformedBatch(t *testing.T) {
	srv := setupTestServer(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "not an array",
			body: `{"id":"x"}`,
			want: "JSON array",
		},
		{
			name: "empty batch",
			body: `[]`,
			want: "empty event batch",
		},
		{
			name: "unknown event type",
			body: `[{"id":"e1","point_id":"p1","event_type":"sticker","timestamp_ms":0,"event_data":{}}]`,
			want: "events[0]",
		},
		{
			name: "bad color",
			body: `[{"id":"e1","point_id":"p1","event_type":"draw","timestamp_ms":0,"event_data":{"element":{"kind":"rect","a":{"x":0,"y":0},"b":{"x":1,"y":1},"color":"red","line_style":"solid","stroke_opacity":1}}}]`,
			want: "events[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postEvents(t, srv, "p1", []byte(tt.body))
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, readBody(t, resp), tt.want)
		})
	}
}

func TestAppend_RejectsOrderViolation(t *testing.T) {
	srv := setupTestServer(t)

	resp := postEvents(t, srv, "p1", wireBody(t, sessionOpening("p1")))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	readBody(t, resp)

	// 1000ms is before the stored pause at 2000ms.
	stale := []event.Event{
		{ID: "p1-9", PointID: "p1", Type: event.TypePlay, TimestampMS: 1000,
			Payload: event.TransportPayload{VideoTimeSec: 13}},
	}
	resp = postEvents(t, srv, "p1", wireBody(t, stale))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "timestamp decreases")
}

func TestAppend_FirstBatchMustOpenRecording(t *testing.T) {
	srv := setupTestServer(t)

	headless := []event.Event{
		{ID: "p1-1", PointID: "p1", Type: event.TypePlay, TimestampMS: 0,
			Payload: event.TransportPayload{VideoTimeSec: 0}},
	}
	resp := postEvents(t, srv, "p1", wireBody(t, headless))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "recording_start")
}

func TestListEvents_UnknownPoint(t *testing.T) {
	srv := setupTestServer(t)

	resp, err := http.Get(srv.URL + "/api/points/nope/events")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "unknown point")
}

func TestDeletePoint(t *testing.T) {
	srv := setupTestServer(t)

	resp := postEvents(t, srv, "p1", wireBody(t, sessionOpening("p1")))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	readBody(t, resp)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/points/p1", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/points/p1/events")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Idempotent: deleting again is still a 204.
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestLiveFeed_ReceivesAppends(t *testing.T) {
	srv := setupTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/points/p1/live"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	postResp := postEvents(t, srv, "p1", wireBody(t, sessionOpening("p1")))
	require.Equal(t, http.StatusCreated, postResp.StatusCode)
	readBody(t, postResp)

	want := sessionOpening("p1")
	for i := range want {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, frame, err := conn.ReadMessage()
		require.NoError(t, err)
		ev, err := event.UnmarshalEvent(frame)
		require.NoError(t, err)
		assert.Equal(t, want[i].ID, ev.ID, "frame %d", i)
	}
}

// Package event defines the recorded session event log: the event types,
// their payloads, the wire codec, structural validation, and the canonical
// JSON form used for content digests.
//
// A log is an ordered slice of events for one coaching point. The first
// event is always recording_start at timestamp 0; every later event is
// stamped with elapsed session milliseconds. The log is the single source
// of truth for playback: replaying it deterministically reconstructs the
// drawing and transport state at any session time.
package event

import "github.com/filmroom/telestrator/internal/canvas"

// Type identifies what a recorded event describes.
//
// The set is open on the wire: logs written by newer builds may carry types
// this build does not know. Decoding preserves them (see RawPayload);
// playback skips them with a warning.
type Type string

const (
	// TypeRecordingStart opens every log at timestamp 0 and captures the
	// video position and rate at the moment recording began.
	TypeRecordingStart Type = "recording_start"
	// TypePlay records the video starting to play.
	TypePlay Type = "play"
	// TypePause records the video pausing.
	TypePause Type = "pause"
	// TypeSeek records a jump between two video positions.
	TypeSeek Type = "seek"
	// TypeChangeSpeed records a playback rate change.
	TypeChangeSpeed Type = "change_speed"
	// TypeDraw records a committed drawing element.
	TypeDraw Type = "draw"
)

// Known reports whether t is a type this build understands.
func (t Type) Known() bool {
	switch t {
	case TypeRecordingStart, TypePlay, TypePause, TypeSeek, TypeChangeSpeed, TypeDraw:
		return true
	}
	return false
}

// Event is one recorded occurrence in a session log.
type Event struct {
	// ID is assigned once at capture time and survives retries, so a
	// re-sent append is recognizable as the same event.
	ID string
	// PointID names the coaching point this log belongs to.
	PointID string
	Type    Type
	// TimestampMS is elapsed session time in milliseconds since
	// recording_start.
	TimestampMS int64
	Payload     Payload
}

// Payload is the sealed union of event payloads. Exactly one concrete
// payload type corresponds to each known event type; RawPayload carries
// the data of unknown types.
type Payload interface {
	payload() // sealed
}

// StartPayload is the recording_start payload.
type StartPayload struct {
	InitialVideoTimeSec float64 `json:"initial_video_time_sec"`
	InitialRate         float64 `json:"initial_rate"`
}

func (StartPayload) payload() {}

// TransportPayload is the play and pause payload: the video position at
// which the transport changed.
type TransportPayload struct {
	VideoTimeSec float64 `json:"video_time_sec"`
}

func (TransportPayload) payload() {}

// SeekPayload is the seek payload.
type SeekPayload struct {
	FromSec float64 `json:"from_sec"`
	ToSec   float64 `json:"to_sec"`
}

func (SeekPayload) payload() {}

// SpeedPayload is the change_speed payload.
type SpeedPayload struct {
	Rate float64 `json:"rate"`
}

func (SpeedPayload) payload() {}

// DrawPayload is the draw payload: one committed element.
type DrawPayload struct {
	Element canvas.Element
}

func (DrawPayload) payload() {}

// RawPayload preserves the event_data of an event type this build does not
// know, so rewriting a log never drops information.
type RawPayload struct {
	Data []byte
}

func (RawPayload) payload() {}

// payloadMatches reports whether p is the payload shape required for t.
// Unknown types require RawPayload.
func payloadMatches(t Type, p Payload) bool {
	switch t {
	case TypeRecordingStart:
		_, ok := p.(StartPayload)
		return ok
	case TypePlay, TypePause:
		_, ok := p.(TransportPayload)
		return ok
	case TypeSeek:
		_, ok := p.(SeekPayload)
		return ok
	case TypeChangeSpeed:
		_, ok := p.(SpeedPayload)
		return ok
	case TypeDraw:
		d, ok := p.(DrawPayload)
		return ok && d.Element != nil
	default:
		_, ok := p.(RawPayload)
		return ok
	}
}

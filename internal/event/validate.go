package event

import (
	"errors"
	"fmt"
)

// MalformedLogError reports a log that violates the structural invariants
// playback depends on. Index is the offending event's position, or -1 when
// the defect is the log as a whole.
type MalformedLogError struct {
	Index  int
	Reason string
}

func (e *MalformedLogError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed event log: %s", e.Reason)
	}
	return fmt.Sprintf("malformed event log at index %d: %s", e.Index, e.Reason)
}

// IsMalformedLog reports whether err is a MalformedLogError.
func IsMalformedLog(err error) bool {
	var m *MalformedLogError
	return errors.As(err, &m)
}

// ValidateLog checks the structural invariants of an ordered log:
//
//   - the log is not empty
//   - the first event is recording_start with timestamp 0
//   - recording_start appears exactly once
//   - event IDs are non-empty
//   - timestamps never decrease
//   - every payload matches its event type
//   - rates are positive
//
// Playback refuses to load a log that fails validation; nothing is applied
// from a malformed log.
func ValidateLog(events []Event) error {
	if len(events) == 0 {
		return &MalformedLogError{Index: -1, Reason: "log is empty"}
	}
	if events[0].Type != TypeRecordingStart {
		return &MalformedLogError{Index: 0, Reason: fmt.Sprintf("first event is %q, want %q", events[0].Type, TypeRecordingStart)}
	}
	if events[0].TimestampMS != 0 {
		return &MalformedLogError{Index: 0, Reason: fmt.Sprintf("recording_start timestamp is %dms, want 0", events[0].TimestampMS)}
	}

	prev := int64(0)
	for i, e := range events {
		if e.ID == "" {
			return &MalformedLogError{Index: i, Reason: "empty event id"}
		}
		if i > 0 && e.Type == TypeRecordingStart {
			return &MalformedLogError{Index: i, Reason: "duplicate recording_start"}
		}
		if e.TimestampMS < 0 {
			return &MalformedLogError{Index: i, Reason: fmt.Sprintf("negative timestamp %dms", e.TimestampMS)}
		}
		if e.TimestampMS < prev {
			return &MalformedLogError{Index: i, Reason: fmt.Sprintf("timestamp decreases from %dms to %dms", prev, e.TimestampMS)}
		}
		if !payloadMatches(e.Type, e.Payload) {
			return &MalformedLogError{Index: i, Reason: fmt.Sprintf("payload %T does not match type %q", e.Payload, e.Type)}
		}
		switch p := e.Payload.(type) {
		case StartPayload:
			if p.InitialRate <= 0 {
				return &MalformedLogError{Index: i, Reason: fmt.Sprintf("non-positive initial rate %v", p.InitialRate)}
			}
		case SpeedPayload:
			if p.Rate <= 0 {
				return &MalformedLogError{Index: i, Reason: fmt.Sprintf("non-positive rate %v", p.Rate)}
			}
		}
		prev = e.TimestampMS
	}
	return nil
}

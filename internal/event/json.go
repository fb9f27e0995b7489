package event

import (
	"encoding/json"
	"fmt"

	"github.com/filmroom/telestrator/internal/canvas"
)

// wireEvent is the stored and transmitted shape of an event.
type wireEvent struct {
	ID          string          `json:"id"`
	PointID     string          `json:"point_id"`
	Type        string          `json:"event_type"`
	TimestampMS int64           `json:"timestamp_ms"`
	Data        json.RawMessage `json:"event_data"`
}

// wireDraw wraps a draw payload's element envelope.
type wireDraw struct {
	Element json.RawMessage `json:"element"`
}

// MarshalEvent encodes an event in its wire form. The payload must match
// the event type; see Type for the pairing.
func MarshalEvent(e Event) ([]byte, error) {
	data, err := MarshalPayload(e.Type, e.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireEvent{
		ID:          e.ID,
		PointID:     e.PointID,
		Type:        string(e.Type),
		TimestampMS: e.TimestampMS,
		Data:        data,
	})
}

// MarshalPayload encodes just the event_data object for a payload. The
// payload must match the event type.
func MarshalPayload(t Type, p Payload) ([]byte, error) {
	if !payloadMatches(t, p) {
		return nil, fmt.Errorf("event: marshal %s: payload %T does not match type", t, p)
	}
	var (
		data []byte
		err  error
	)
	switch v := p.(type) {
	case DrawPayload:
		var el []byte
		el, err = canvas.MarshalElement(v.Element)
		if err == nil {
			data, err = json.Marshal(wireDraw{Element: el})
		}
	case RawPayload:
		data = v.Data
	default:
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, fmt.Errorf("event: marshal %s payload: %w", t, err)
	}
	return data, nil
}

// UnmarshalEvent decodes a wire-form event. Events of unknown type decode
// into a RawPayload rather than failing, so logs from newer builds remain
// loadable. A draw event whose element kind is unknown is an error: element
// kinds are a closed set.
func UnmarshalEvent(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return Event{}, fmt.Errorf("event: unmarshal: %w", err)
	}
	e := Event{
		ID:          w.ID,
		PointID:     w.PointID,
		Type:        Type(w.Type),
		TimestampMS: w.TimestampMS,
	}
	payload, err := UnmarshalPayload(e.Type, w.Data)
	if err != nil {
		return Event{}, err
	}
	e.Payload = payload
	return e, nil
}

// UnmarshalPayload decodes an event_data object for the given type. Unknown
// types yield a RawPayload copy of the input.
func UnmarshalPayload(t Type, data json.RawMessage) (Payload, error) {
	switch t {
	case TypeRecordingStart:
		var p StartPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("event: unmarshal %s payload: %w", t, err)
		}
		return p, nil
	case TypePlay, TypePause:
		var p TransportPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("event: unmarshal %s payload: %w", t, err)
		}
		return p, nil
	case TypeSeek:
		var p SeekPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("event: unmarshal %s payload: %w", t, err)
		}
		return p, nil
	case TypeChangeSpeed:
		var p SpeedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("event: unmarshal %s payload: %w", t, err)
		}
		return p, nil
	case TypeDraw:
		var w wireDraw
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("event: unmarshal draw payload: %w", err)
		}
		el, err := canvas.UnmarshalElement(w.Element)
		if err != nil {
			return nil, fmt.Errorf("event: unmarshal draw payload: %w", err)
		}
		return DrawPayload{Element: el}, nil
	default:
		raw := make([]byte, len(data))
		copy(raw, data)
		return RawPayload{Data: raw}, nil
	}
}

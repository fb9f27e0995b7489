package canvas

import (
	"encoding/json"
	"errors"
	"fmt"
)

// UnknownKindError reports an element envelope whose kind tag names no known
// variant. Logs written by newer builds can carry kinds this build does not
// understand; callers decide whether that is fatal.
type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("canvas: unknown element kind %q", e.Kind)
}

// IsUnknownKind reports whether err is an UnknownKindError.
func IsUnknownKind(err error) bool {
	var uk *UnknownKindError
	return errors.As(err, &uk)
}

// MarshalElement encodes an element as a JSON object tagged with a "kind"
// field alongside the variant's own fields.
func MarshalElement(e Element) ([]byte, error) {
	switch v := e.(type) {
	case Stroke:
		return json.Marshal(struct {
			Kind string `json:"kind"`
			Stroke
		}{Kind: KindStroke, Stroke: v})
	case Rect:
		return json.Marshal(struct {
			Kind string `json:"kind"`
			Rect
		}{Kind: KindRect, Rect: v})
	case Ellipse:
		return json.Marshal(struct {
			Kind string `json:"kind"`
			Ellipse
		}{Kind: KindEllipse, Ellipse: v})
	default:
		return nil, fmt.Errorf("canvas: marshal: unsupported element %T", e)
	}
}

// UnmarshalElement decodes a tagged element envelope produced by
// MarshalElement. An unrecognized kind yields an UnknownKindError.
func UnmarshalElement(data []byte) (Element, error) {
	var tag struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("canvas: unmarshal element envelope: %w", err)
	}
	switch tag.Kind {
	case KindStroke:
		var v Stroke
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("canvas: unmarshal stroke: %w", err)
		}
		return v, nil
	case KindRect:
		var v Rect
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("canvas: unmarshal rect: %w", err)
		}
		return v, nil
	case KindEllipse:
		var v Ellipse
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("canvas: unmarshal ellipse: %w", err)
		}
		return v, nil
	default:
		return nil, &UnknownKindError{Kind: tag.Kind}
	}
}

// Package script loads and runs scripted recording sessions. A script is a
// YAML description of one session against a coaching point: the clip under
// review, the drawing surface size, and a timeline of transport and drawing
// steps. Running a script drives the same capture and recording path a live
// session uses, at virtual time, so the resulting event log is exactly what
// that session would have recorded.
package script

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/filmroom/telestrator/internal/canvas"
	"github.com/filmroom/telestrator/internal/capture"
)

// Script is a scripted recording session.
type Script struct {
	// Name identifies the script in output and golden fixtures.
	Name string `yaml:"name"`
	// PointID is the coaching point the session records against.
	PointID string `yaml:"point_id"`
	// Video describes the clip under review.
	Video Video `yaml:"video"`
	// Surface is the drawing surface size in pixels.
	Surface Surface `yaml:"surface"`
	// Steps is the session timeline, ordered by elapsed time.
	Steps []Step `yaml:"steps"`
}

// Video describes the clip a script reviews.
type Video struct {
	// DurationSec is the clip length in seconds.
	DurationSec float64 `yaml:"duration_sec"`
	// InitialSec is the video position when recording begins. Default 0.
	InitialSec float64 `yaml:"initial_sec,omitempty"`
	// InitialRate is the playback rate when recording begins. Default 1.
	InitialRate float64 `yaml:"initial_rate,omitempty"`
}

// Surface is a pixel size.
type Surface struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Step actions.
const (
	DoPlay   = "play"
	DoPause  = "pause"
	DoSeek   = "seek"
	DoSpeed  = "speed"
	DoDraw   = "draw"
	DoResize = "resize"
)

// Step is one session action at an elapsed time.
//
// Tool fields on a draw step are sticky: mode, color, line_style, and
// opacity persist for later draw steps until changed, like a tool palette.
// Fill applies to its own step only.
type Step struct {
	// AtMS is elapsed session time in milliseconds. Steps must not go
	// backwards; two steps may share a time.
	AtMS int64 `yaml:"at_ms"`
	// Do is the action: play, pause, seek, speed, draw, or resize.
	Do string `yaml:"do"`

	// ToSec is the seek target in video seconds.
	ToSec float64 `yaml:"to_sec,omitempty"`
	// Rate is the playback rate for a speed step.
	Rate float64 `yaml:"rate,omitempty"`

	// Mode selects the drawing tool: pen, arrow, rect, or ellipse.
	Mode string `yaml:"mode,omitempty"`
	// Color is the stroke color as a hex string.
	Color string `yaml:"color,omitempty"`
	// LineStyle is solid or dashed.
	LineStyle string `yaml:"line_style,omitempty"`
	// Opacity is the stroke opacity in [0, 1].
	Opacity *float64 `yaml:"opacity,omitempty"`
	// Fill paints the interior of a rect or ellipse.
	Fill *Fill `yaml:"fill,omitempty"`
	// Points is the pointer path in pixel coordinates, pointer-down first.
	Points [][2]float64 `yaml:"points,omitempty"`

	// Width and Height are the new surface size for a resize step.
	Width  int `yaml:"width,omitempty"`
	Height int `yaml:"height,omitempty"`
}

// Fill is a shape interior paint.
type Fill struct {
	Color   string  `yaml:"color"`
	Opacity float64 `yaml:"opacity"`
}

// Load reads and validates a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates script YAML. Unknown fields are rejected so a
// typo fails loudly instead of silently dropping part of a step.
func Parse(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if s.Video.InitialRate == 0 {
		s.Video.InitialRate = 1
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return &s, nil
}

func (s *Script) validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.PointID == "" {
		return errors.New("point_id is required")
	}
	if s.Video.DurationSec <= 0 {
		return errors.New("video.duration_sec must be positive")
	}
	if s.Video.InitialSec < 0 || s.Video.InitialSec > s.Video.DurationSec {
		return errors.New("video.initial_sec must be within the clip")
	}
	if s.Video.InitialRate <= 0 {
		return errors.New("video.initial_rate must be positive")
	}
	if s.Surface.Width <= 0 || s.Surface.Height <= 0 {
		return errors.New("surface needs positive width and height")
	}
	var prev int64
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
		if st.AtMS < prev {
			return fmt.Errorf("steps[%d]: at_ms %d is before the previous step", i, st.AtMS)
		}
		prev = st.AtMS
	}
	return nil
}

func (st *Step) validate() error {
	if st.AtMS < 0 {
		return errors.New("at_ms must not be negative")
	}
	switch st.Do {
	case DoPlay, DoPause:
	case DoSeek:
		if st.ToSec < 0 {
			return errors.New("to_sec must not be negative")
		}
	case DoSpeed:
		if st.Rate <= 0 {
			return errors.New("rate must be positive")
		}
	case DoDraw:
		if st.Mode != "" && !capture.Mode(st.Mode).Valid() {
			return fmt.Errorf("unknown mode %q", st.Mode)
		}
		if st.LineStyle != "" && !canvas.LineStyle(st.LineStyle).Valid() {
			return fmt.Errorf("unknown line style %q", st.LineStyle)
		}
		if st.Opacity != nil && (*st.Opacity < 0 || *st.Opacity > 1) {
			return errors.New("opacity must be in [0, 1]")
		}
		if st.Fill != nil && st.Fill.Color == "" {
			return errors.New("fill.color is required")
		}
		if len(st.Points) < 2 {
			return errors.New("draw needs at least two points")
		}
	case DoResize:
		if st.Width <= 0 || st.Height <= 0 {
			return errors.New("resize needs positive width and height")
		}
	case "":
		return errors.New("do is required")
	default:
		return fmt.Errorf("unknown action %q", st.Do)
	}
	return nil
}

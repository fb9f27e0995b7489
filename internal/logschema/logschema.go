// Package logschema validates wire-format event JSON against the embedded
// CUE contract.
//
// The schema is the strict producer-side check: closed payload structs,
// bounded coordinates, positive rates, and a first-event-is-recording_start
// rule for whole logs. Playback deliberately stays lenient about unknown
// event types; this validator exists to catch malformed producers before
// their logs spread.
package logschema

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var schemaSource string

var (
	compileOnce sync.Once
	compileErr  error
	cuectx      *cue.Context
	eventDef    cue.Value
	logDef      cue.Value
)

func compile() {
	cuectx = cuecontext.New()

	schema := cuectx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		compileErr = fmt.Errorf("logschema: compile embedded schema: %w", err)
		return
	}

	eventDef = schema.LookupPath(cue.ParsePath("#Event"))
	if err := eventDef.Err(); err != nil {
		compileErr = fmt.Errorf("logschema: lookup #Event: %w", err)
		return
	}

	logDef = schema.LookupPath(cue.ParsePath("#Log"))
	if err := logDef.Err(); err != nil {
		compileErr = fmt.Errorf("logschema: lookup #Log: %w", err)
	}
}

// Validate checks one wire-format event against the schema.
func Validate(data []byte) error {
	compileOnce.Do(compile)
	if compileErr != nil {
		return compileErr
	}
	return unifyJSON(eventDef, "event.json", data)
}

// ValidateLog checks a JSON array of wire-format events, including the
// rule that the first event is recording_start at timestamp 0.
func ValidateLog(data []byte) error {
	compileOnce.Do(compile)
	if compileErr != nil {
		return compileErr
	}
	return unifyJSON(logDef, "log.json", data)
}

func unifyJSON(def cue.Value, filename string, data []byte) error {
	expr, err := cuejson.Extract(filename, data)
	if err != nil {
		return fmt.Errorf("logschema: parse json: %w", err)
	}

	v := cuectx.BuildExpr(expr)
	if err := v.Err(); err != nil {
		return formatCUEError(err)
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// SchemaError is a validation failure with source position.
type SchemaError struct {
	Message string
	Pos     token.Pos
}

func (e *SchemaError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &SchemaError{Message: first.Error(), Pos: positions[0]}
	}
	return &SchemaError{Message: first.Error()}
}

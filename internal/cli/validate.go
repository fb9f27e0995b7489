package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/filmroom/telestrator/internal/event"
	"github.com/filmroom/telestrator/internal/logschema"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Database string
	Driver   string
	Point    string
	File     string
}

// ValidationIssue is one defect found in a log.
type ValidationIssue struct {
	Where   string `json:"where"` // "schema", "log", or "events[i]"
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds validation results for one log.
type ValidationResult struct {
	Source string            `json:"source"`
	Events int               `json:"events"`
	Valid  bool              `json:"valid"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a session log against schema and ordering rules",
		Long: `Validate a session log without replaying it.

Checks two layers: the wire-format schema (closed payload shapes,
bounded coordinates, positive rates) and the structural rules playback
depends on (recording_start first, non-decreasing timestamps, matching
payloads). Reads either a JSON log file or a stored point.

Exit codes:
  0 - Log is valid
  1 - Validation failed
  2 - Command error (unreadable file, unknown point, bad flags)

Examples:
  telestrator validate --file session.json
  telestrator validate --db ./points.db --point p1`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "path to a JSON log file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "database path or DSN")
	cmd.Flags().StringVar(&opts.Driver, "driver", "sqlite", "store driver (sqlite|postgres)")
	cmd.Flags().StringVar(&opts.Point, "point", "", "stored point to validate")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	fileMode := opts.File != ""
	dbMode := opts.Database != "" || opts.Point != ""
	if fileMode == dbMode {
		return NewExitError(ExitCommandError, "use either --file or --db with --point")
	}
	if dbMode && (opts.Database == "" || opts.Point == "") {
		return NewExitError(ExitCommandError, "--db and --point are both required")
	}

	var (
		result ValidationResult
		err    error
	)
	if fileMode {
		result, err = validateFile(opts.File)
	} else {
		result, err = validateStored(cmd, opts)
	}
	if err != nil {
		return err
	}

	result.Valid = len(result.Issues) == 0
	return outputValidation(cmd, opts, result)
}

// validateFile checks a JSON log file: the whole array against the wire
// schema, then the decoded events against the structural rules.
func validateFile(path string) (ValidationResult, error) {
	result := ValidationResult{Source: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return result, WrapExitError(ExitCommandError, "failed to read log file", err)
	}

	if err := logschema.ValidateLog(data); err != nil {
		result.Issues = append(result.Issues, ValidationIssue{
			Where: "schema", Code: ErrCodeSchema, Message: err.Error(),
		})
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		result.Issues = append(result.Issues, ValidationIssue{
			Where: "log", Code: ErrCodeSchema, Message: "not a JSON array of events",
		})
		return result, nil
	}
	result.Events = len(raw)

	events := make([]event.Event, 0, len(raw))
	for i, item := range raw {
		ev, err := event.UnmarshalEvent(item)
		if err != nil {
			result.Issues = append(result.Issues, ValidationIssue{
				Where: fmt.Sprintf("events[%d]", i), Code: ErrCodeSchema, Message: err.Error(),
			})
			continue
		}
		events = append(events, ev)
	}
	if len(events) == len(raw) {
		if err := event.ValidateLog(events); err != nil {
			result.Issues = append(result.Issues, ValidationIssue{
				Where: "log", Code: ErrCodeMalformed, Message: err.Error(),
			})
		}
	}
	return result, nil
}

// validateStored checks a stored point: structural rules over the
// decoded log, and each event re-encoded against the wire schema.
func validateStored(cmd *cobra.Command, opts *ValidateOptions) (ValidationResult, error) {
	result := ValidationResult{Source: fmt.Sprintf("%s/%s", opts.Database, opts.Point)}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openStore(opts.Driver, opts.Database)
	if err != nil {
		return result, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	events, err := st.ListEvents(ctx, opts.Point)
	if err != nil {
		return result, WrapExitError(ExitCommandError, "failed to read point", err)
	}
	if len(events) == 0 {
		return result, NewExitError(ExitCommandError, fmt.Sprintf("point %q not found", opts.Point))
	}
	result.Events = len(events)

	if err := event.ValidateLog(events); err != nil {
		result.Issues = append(result.Issues, ValidationIssue{
			Where: "log", Code: ErrCodeMalformed, Message: err.Error(),
		})
	}

	for i, ev := range events {
		data, err := event.MarshalEvent(ev)
		if err != nil {
			result.Issues = append(result.Issues, ValidationIssue{
				Where: fmt.Sprintf("events[%d]", i), Code: ErrCodeSchema, Message: err.Error(),
			})
			continue
		}
		if err := logschema.Validate(data); err != nil {
			result.Issues = append(result.Issues, ValidationIssue{
				Where: fmt.Sprintf("events[%d]", i), Code: ErrCodeSchema, Message: err.Error(),
			})
		}
	}
	return result, nil
}

func outputValidation(cmd *cobra.Command, opts *ValidateOptions, result ValidationResult) error {
	if opts.Format == "json" {
		response := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			response.Status = "error"
			response.Error = &CLIError{Code: ErrCodeMalformed, Message: "validation failed"}
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		if !result.Valid {
			return NewExitError(ExitFailure, "validation failed")
		}
		return nil
	}

	w := cmd.OutOrStdout()
	if result.Valid {
		fmt.Fprintf(w, "✓ %s: %d events, log is valid\n", result.Source, result.Events)
		return nil
	}

	fmt.Fprintf(w, "✗ %s: %d issue(s)\n", result.Source, len(result.Issues))
	for _, issue := range result.Issues {
		fmt.Fprintf(w, "  [%s] %s: %s\n", issue.Code, issue.Where, issue.Message)
	}
	return NewExitError(ExitFailure, "validation failed")
}

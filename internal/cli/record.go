package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filmroom/telestrator/internal/event"
	"github.com/filmroom/telestrator/internal/script"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	Database string
	Driver   string
	Script   string
}

// RecordResult summarizes a recorded session.
type RecordResult struct {
	Point      string `json:"point"`
	Events     int    `json:"events"`
	Drawings   int    `json:"drawings"`
	DurationMS int64  `json:"duration_ms"`
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Run a session script and persist its event log",
		Long: `Run a scripted review session and persist the resulting event log.

The script drives a virtual session: transport commands and drawing
gestures execute against a fake player at scripted times, and the
recorder persists exactly the log a live session would have produced.

Exit codes:
  0 - Session recorded and persisted
  1 - Recording failed (discarded gesture, events not persisted)
  2 - Command error (script unreadable or invalid, database not found)

Examples:
  telestrator record --db ./points.db --script clip_review.yaml
  telestrator record --driver postgres --db $DATABASE_URL --script clip_review.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "database path or DSN (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Script, "script", "", "path to session script YAML (required)")
	_ = cmd.MarkFlagRequired("script")
	cmd.Flags().StringVar(&opts.Driver, "driver", "sqlite", "store driver (sqlite|postgres)")

	return cmd
}

func runRecord(opts *RecordOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	sc, err := script.Load(opts.Script)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load script", err)
	}

	st, err := openStore(opts.Driver, opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, runErr := script.Run(ctx, sc, st)
	if runErr != nil && res == nil {
		return WrapExitError(ExitFailure, "recording failed", runErr)
	}

	for _, ev := range res.Events {
		formatter.VerboseLog("%s", event.Describe(ev))
	}

	if runErr != nil {
		// The session ran but some events never reached the store.
		return WrapExitError(ExitFailure, "recording incomplete", runErr)
	}

	result := RecordResult{
		Point:    sc.PointID,
		Events:   len(res.Events),
		Drawings: len(res.Elements),
	}
	if n := len(res.Events); n > 0 {
		result.DurationMS = res.Events[n-1].TimestampMS
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ Recorded %d events to point %q\n", result.Events, result.Point)
	fmt.Fprintf(w, "  Session: %dms, %d drawings\n", result.DurationMS, result.Drawings)
	return nil
}

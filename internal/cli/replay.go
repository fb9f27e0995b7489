package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filmroom/telestrator/internal/event"
	"github.com/filmroom/telestrator/internal/export"
	"github.com/filmroom/telestrator/internal/playback"
	"github.com/filmroom/telestrator/internal/transport"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Driver   string
	Point    string // optional - specific point only
	Verify   bool
}

// ReplayPointResult holds the replay result for a single point.
type ReplayPointResult struct {
	Point         string `json:"point"`
	Events        int    `json:"events"`
	Drawings      int    `json:"drawings"`
	DurationMS    int64  `json:"duration_ms"`
	TraceDigest   string `json:"trace_digest"`
	Deterministic bool   `json:"deterministic"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Points           []ReplayPointResult `json:"points"`
	TotalPoints      int                 `json:"total_points"`
	Verified         bool                `json:"verified"`
	AllDeterministic bool                `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay stored sessions and verify determinism",
		Long: `Replay stored session logs through the playback engine.

Each point's log is applied against a fake player and the issued
transport commands are collected as a trace. With --verify the log is
replayed twice and the trace digests compared: identical logs must
produce identical traces.

Exit codes:
  0 - All replays succeeded (and matched, with --verify)
  1 - Malformed log or trace digests differ
  2 - Command error (database not found, unknown point)

Examples:
  telestrator replay --db ./points.db
  telestrator replay --db ./points.db --point p1 --verify
  telestrator replay --db ./points.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "database path or DSN (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Driver, "driver", "sqlite", "store driver (sqlite|postgres)")
	cmd.Flags().StringVar(&opts.Point, "point", "", "replay a specific point only")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "replay twice and compare trace digests")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openStore(opts.Driver, opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var pointIDs []string
	if opts.Point != "" {
		pointIDs = []string{opts.Point}
	} else {
		points, err := st.ListPoints(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list points", err)
		}
		for _, p := range points {
			pointIDs = append(pointIDs, p.ID)
		}
	}

	if len(pointIDs) == 0 {
		if opts.Format == "json" {
			return outputReplayJSON(cmd, ReplayResult{
				Points:           []ReplayPointResult{},
				Verified:         opts.Verify,
				AllDeterministic: true,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No points found in database.")
		return nil
	}

	result := ReplayResult{
		Points:           make([]ReplayPointResult, 0, len(pointIDs)),
		TotalPoints:      len(pointIDs),
		Verified:         opts.Verify,
		AllDeterministic: true,
	}

	for _, pointID := range pointIDs {
		events, err := st.ListEvents(ctx, pointID)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to read point %s", pointID), err)
		}
		if len(events) == 0 {
			return NewExitError(ExitCommandError, fmt.Sprintf("point %q not found", pointID))
		}

		pointResult, err := replayAndVerifyPoint(events, opts, cmd)
		if err != nil {
			if event.IsMalformedLog(err) {
				return WrapExitError(ExitFailure, fmt.Sprintf("point %s has a malformed log", pointID), err)
			}
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay point %s", pointID), err)
		}

		result.Points = append(result.Points, pointResult)
		if !pointResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result, opts)
}

// replayAndVerifyPoint replays one log, and with --verify replays it a
// second time and compares trace digests.
func replayAndVerifyPoint(events []event.Event, opts *ReplayOptions, cmd *cobra.Command) (ReplayPointResult, error) {
	trace, drawings, err := replayOnce(events)
	if err != nil {
		return ReplayPointResult{}, err
	}
	digest := event.TraceDigest(trace)

	deterministic := true
	if opts.Verify {
		trace2, _, err := replayOnce(events)
		if err != nil {
			return ReplayPointResult{}, fmt.Errorf("second replay failed: %w", err)
		}
		deterministic = digest == event.TraceDigest(trace2)
	}

	if opts.Verbose && opts.Format != "json" {
		for _, line := range trace {
			fmt.Fprintf(cmd.OutOrStdout(), "  > %s\n", line)
		}
	}

	return ReplayPointResult{
		Point:         events[0].PointID,
		Events:        len(events),
		Drawings:      drawings,
		DurationMS:    events[len(events)-1].TimestampMS,
		TraceDigest:   digest,
		Deterministic: deterministic,
	}, nil
}

// replayOnce scrubs a log to its end against a fake player and returns
// the issued transport commands plus the final drawing count. The trace
// is a function of the log alone.
func replayOnce(events []event.Event) ([]string, int, error) {
	player := transport.NewFake(export.VideoSpan(events))
	trace := []string{}
	ctrl := transport.Observe(player, func(c transport.Call) {
		trace = append(trace, c.String())
	})

	eng, err := playback.New(ctrl, playback.Discard)
	if err != nil {
		return nil, 0, err
	}
	if err := eng.Load(events); err != nil {
		return nil, 0, err
	}
	if err := eng.SeekTo(events[len(events)-1].TimestampMS); err != nil {
		return nil, 0, err
	}
	return trace, len(eng.Elements()), nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeVerify,
			Message: "replay verification failed",
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, opts *ReplayOptions) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d point(s)\n", result.TotalPoints)
	fmt.Fprintln(w)

	for _, p := range result.Points {
		status := "✓"
		if !p.Deterministic {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Point: %s\n", status, p.Point)
		fmt.Fprintf(w, "  Events: %d, drawings: %d, duration: %dms\n", p.Events, p.Drawings, p.DurationMS)
		if opts.Verbose {
			fmt.Fprintf(w, "  Trace digest: %s\n", p.TraceDigest)
		}
		if !p.Deterministic {
			fmt.Fprintln(w, "  Warning: trace digests differ between replays!")
		}
		fmt.Fprintln(w)
	}

	if !result.Verified {
		return nil
	}
	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All replays verified deterministic")
		return nil
	}
	fmt.Fprintln(w, "✗ Replay verification failed")
	return NewExitError(ExitFailure, "replay verification failed")
}

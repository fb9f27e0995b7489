package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// PointsOptions holds flags for the points command.
type PointsOptions struct {
	*RootOptions
	Database string
	Driver   string
}

// PointRow is one row of the points listing.
type PointRow struct {
	ID         string `json:"id"`
	Events     int    `json:"events"`
	DurationMS int64  `json:"duration_ms"`
}

// PointsResult holds the points listing.
type PointsResult struct {
	Points []PointRow `json:"points"`
	Total  int        `json:"total"`
}

// NewPointsCommand creates the points command.
func NewPointsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PointsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "points",
		Short: "List stored coaching points",
		Long: `List every coaching point in the store with its event count and
session duration.

Examples:
  telestrator points --db ./points.db
  telestrator points --db ./points.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPoints(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "database path or DSN (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Driver, "driver", "sqlite", "store driver (sqlite|postgres)")

	return cmd
}

func runPoints(opts *PointsOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openStore(opts.Driver, opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	points, err := st.ListPoints(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list points", err)
	}

	result := PointsResult{Points: make([]PointRow, 0, len(points)), Total: len(points)}
	for _, p := range points {
		result.Points = append(result.Points, PointRow{ID: p.ID, Events: p.Events, DurationMS: p.DurationMS})
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	if result.Total == 0 {
		fmt.Fprintln(w, "No points found in database.")
		return nil
	}

	fmt.Fprintf(w, "%-24s %8s %12s\n", "POINT", "EVENTS", "DURATION")
	for _, p := range result.Points {
		fmt.Fprintf(w, "%-24s %8d %10dms\n", p.ID, p.Events, p.DurationMS)
	}
	return nil
}

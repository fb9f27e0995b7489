package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/filmroom/telestrator/internal/event"
	"github.com/filmroom/telestrator/internal/export"
	"github.com/filmroom/telestrator/internal/geom"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Database string
	Driver   string
	Point    string
	Out      string
	AtMS     int64
	Width    int
	Height   int
}

// ExportResult summarizes a written artifact.
type ExportResult struct {
	Point  string `json:"point"`
	Out    string `json:"out"`
	Kind   string `json:"kind"` // "png" | "pdf"
	AtMS   int64  `json:"at_ms,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a session as a PNG frame or PDF annotation sheet",
		Long: `Export a stored session log as a shareable artifact.

The output format follows the file extension: .png renders the canvas
as it looked --at milliseconds into the session (default: session end);
.pdf writes an A4 annotation sheet of the final drawing state. Both come
from a real replay of the log.

Exit codes:
  0 - Artifact written
  1 - Malformed log
  2 - Command error (unknown point, unsupported extension)

Examples:
  telestrator export --db ./points.db --point p1 --out p1.png --at 3000
  telestrator export --db ./points.db --point p1 --out p1.pdf`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "database path or DSN (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Point, "point", "", "point to export (required)")
	_ = cmd.MarkFlagRequired("point")
	cmd.Flags().StringVar(&opts.Out, "out", "", "output file, .png or .pdf (required)")
	_ = cmd.MarkFlagRequired("out")
	cmd.Flags().StringVar(&opts.Driver, "driver", "sqlite", "store driver (sqlite|postgres)")
	cmd.Flags().Int64Var(&opts.AtMS, "at", -1, "session time in ms for PNG frames (default: session end)")
	cmd.Flags().IntVar(&opts.Width, "width", 1280, "surface width in pixels")
	cmd.Flags().IntVar(&opts.Height, "height", 720, "surface height in pixels")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openStore(opts.Driver, opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	events, err := st.ListEvents(ctx, opts.Point)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read point", err)
	}
	if len(events) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("point %q not found", opts.Point))
	}

	size := geom.Size{Width: opts.Width, Height: opts.Height}
	result := ExportResult{
		Point:  opts.Point,
		Out:    opts.Out,
		Width:  opts.Width,
		Height: opts.Height,
	}

	switch filepath.Ext(opts.Out) {
	case ".png":
		at := opts.AtMS
		if at < 0 {
			at = events[len(events)-1].TimestampMS
		}
		result.Kind = "png"
		result.AtMS = at
		if err := writePNG(events, at, size, opts.Out); err != nil {
			return exportError(err)
		}

	case ".pdf":
		result.Kind = "pdf"
		if err := export.PDFSheet(events, size, opts.Out); err != nil {
			return exportError(err)
		}

	default:
		return NewExitError(ExitCommandError,
			fmt.Sprintf("unsupported output extension %q (use .png or .pdf)", filepath.Ext(opts.Out)))
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported point %q to %s\n", result.Point, result.Out)
	return nil
}

func writePNG(events []event.Event, atMS int64, size geom.Size, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.PNGFrame(events, atMS, size, f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// exportError maps a data defect to exit 1 and everything else to exit 2.
func exportError(err error) error {
	if event.IsMalformedLog(err) {
		return WrapExitError(ExitFailure, "malformed log", err)
	}
	return WrapExitError(ExitCommandError, "export failed", err)
}

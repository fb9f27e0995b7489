package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/filmroom/telestrator/internal/config"
	"github.com/filmroom/telestrator/internal/live"
	"github.com/filmroom/telestrator/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Config string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored points over HTTP with a live websocket feed",
		Long: `Start the HTTP server: list points, read and append event logs,
and stream live appends to websocket watchers.

Configuration comes from the environment and an optional env file
(LISTEN_ADDR, DB_DRIVER, DB_PATH, DATABASE_URL, LOG_LEVEL). Environment
variables override file values.

Exit codes:
  0 - Clean shutdown
  1 - Server error
  2 - Invalid configuration

Examples:
  telestrator serve
  telestrator serve --config ./points.env
  LISTEN_ADDR=:9000 telestrator serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to env file (default .env)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	// --verbose wins over LOG_LEVEL.
	if !opts.Verbose {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})
		slog.SetDefault(slog.New(handler))
	}

	db := cfg.DBPath
	if cfg.DBDriver == config.DriverPostgres {
		db = cfg.DatabaseURL
	}
	st, err := openStore(cfg.DBDriver, db)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	hub := live.NewHub()
	srv := server.New(cfg.ListenAddr, st, hub)

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	slog.Info("serving coaching points", "addr", cfg.ListenAddr, "driver", cfg.DBDriver)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving coaching points on %s\n", cfg.ListenAddr)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "server error", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

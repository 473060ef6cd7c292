package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeep066/aceInterview/internal/server"
	"github.com/sandeep066/aceInterview/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(flags *rootFlags) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			serviceName := cfg.Telemetry.ServiceName
			if serviceName == "" {
				serviceName = telemetry.DefaultServiceName
			}
			shutdownTracer, err := telemetry.InitTracer(cfg.Telemetry, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize tracer: %w", err)
			}
			defer func() {
				if err := shutdownTracer(context.Background()); err != nil {
					logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
				}
			}()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}

			srv := server.New(cfg.Server, serviceName, logger)
			server.NewAPI(a.serverDeps(), logger).Register(srv.Router)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			logger.Info("interview service started",
				slog.String("environment", cfg.Environment),
				slog.String("llm_provider", a.model.Provider()),
				slog.String("llm_model", a.model.ModelName()),
				slog.String("session_backend", cfg.Session.Backend),
				slog.Bool("livekit", a.rooms.Configured()))

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutdown signal received, stopping server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown error: %w", err)
			}
			logger.Info("server shutdown complete")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	return cmd
}

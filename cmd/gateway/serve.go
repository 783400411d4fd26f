package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"aiproxy/internal/platform/config"
	"aiproxy/internal/platform/httpserver"
	"aiproxy/internal/platform/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(load func() (config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log.Level, cfg.Log.Format)
			return serve(cmd.Context(), cfg, log)
		},
	}
}

// serve runs the server until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	handler, err := buildHandler(ctx, cfg, log)
	if err != nil {
		return err
	}
	srv := httpserver.New(cfg.Server.Addr, handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting gateway",
			"app", cfg.Server.AppName,
			"version", cfg.Server.AppVersion,
			"addr", cfg.Server.Addr,
			"mock_mode", cfg.Identity.MockMode,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info("gateway stopped")
		return nil
	})
	return g.Wait()
}

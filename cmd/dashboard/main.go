package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/incident-dashboard/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/incident-dashboard/internal/adapter/http"
	"github.com/couchcryptid/incident-dashboard/internal/config"
	"github.com/couchcryptid/incident-dashboard/internal/observability"
	"github.com/couchcryptid/incident-dashboard/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	source := csvfile.NewSource(cfg.DataPath, logger)
	p := pipeline.New(source, logger, metrics)

	if err := p.CheckReadiness(context.Background()); err != nil {
		// Not fatal: the file may be mounted after startup; /readyz reports it.
		logger.Warn("dataset not readable yet", "path", cfg.DataPath, "error", err)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, cfg.PlotlyJSURL, p, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

// Command publish builds the report once and writes each table to Kafka.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/incident-dashboard/internal/adapter/csvfile"
	kafkaadapter "github.com/couchcryptid/incident-dashboard/internal/adapter/kafka"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("publish failed", "error", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop already called
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	p := pipeline.New(csvfile.NewSource(cfg.DataPath, logger), logger, observability.NewMetrics())
	report, err := p.Build(ctx)
	if err != nil {
		return err
	}

	publisher := kafkaadapter.NewPublisher(cfg, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}()

	if err := publisher.Publish(ctx, report); err != nil {
		return err
	}

	logger.Info("publish complete",
		"report_id", report.ID,
		"topic", cfg.KafkaTopic,
		"rows", report.SourceRows,
	)
	return nil
}

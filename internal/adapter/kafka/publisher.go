// Package kafka publishes report tables to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/incident-dashboard/internal/config"
	"github.com/couchcryptid/incident-dashboard/internal/pipeline"
	"github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"
)

// Table names used as message keys.
const (
	TableMonthly     = "monthly"
	TableState       = "state"
	TableEntity      = "entity"
	TableSunburst    = "sunburst"
	TableCalendar    = "calendar"
	TableDamage      = "damage"
	TableDamagePivot = "damage_pivot"
)

const (
	maxAttempts    = 3
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes one message per report table to the configured topic.
type Publisher struct {
	writer  messageWriter
	logger  *slog.Logger
	backoff time.Duration
}

// NewPublisher creates a Kafka producer for the configured report topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger, backoff: initialBackoff}
}

// Publish writes every table of r in a single batch. Transient write
// failures are retried with exponential backoff.
func (p *Publisher) Publish(ctx context.Context, r *pipeline.Report) error {
	msgs, err := tableMessages(r)
	if err != nil {
		return err
	}

	backoff := p.backoff
	for attempt := 1; ; attempt++ {
		err = p.writer.WriteMessages(ctx, msgs...)
		if err == nil {
			p.logger.Info("report published", "report_id", r.ID, "tables", len(msgs))
			return nil
		}
		if attempt == maxAttempts || ctx.Err() != nil {
			return fmt.Errorf("publish report %s: %w", r.ID, err)
		}

		p.logger.Warn("publish failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return fmt.Errorf("publish report %s: %w", r.ID, ctx.Err())
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

// Close flushes pending writes and closes the producer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// tableMessages serializes each report table into a Kafka message keyed by
// the table name.
func tableMessages(r *pipeline.Report) ([]kafkago.Message, error) {
	tables := []struct {
		key  string
		rows any
	}{
		{TableMonthly, r.Monthly},
		{TableState, r.States},
		{TableEntity, r.Entities},
		{TableSunburst, r.StateEntities},
		{TableCalendar, r.Calendar},
		{TableDamage, r.DamageLocations},
		{TableDamagePivot, r.DamagePivot},
	}

	headers := []kafkago.Header{
		{Key: "report_id", Value: []byte(r.ID)},
		{Key: "generated_at", Value: []byte(r.GeneratedAt.Format(time.RFC3339))},
	}

	msgs := make([]kafkago.Message, len(tables))
	for i, t := range tables {
		data, err := json.Marshal(t.rows)
		if err != nil {
			return nil, fmt.Errorf("serialize %s table: %w", t.key, err)
		}
		msgs[i] = kafkago.Message{
			Key:     []byte(t.key),
			Value:   data,
			Headers: headers,
		}
	}
	return msgs, nil
}

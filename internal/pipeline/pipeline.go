package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/incident-dashboard/internal/domain"
	"github.com/couchcryptid/incident-dashboard/internal/observability"
	"github.com/google/uuid"
)

// Source loads the raw incident rows.
type Source interface {
	Load(ctx context.Context) ([]domain.RawRecord, error)
	CheckReadiness(ctx context.Context) error
}

// Pipeline builds a fresh Report from the source on every call. It holds no
// state between builds.
type Pipeline struct {
	source  Source
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Pipeline reading from source.
func New(source Source, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:  source,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil when the dataset can be read.
func (p *Pipeline) CheckReadiness(ctx context.Context) error {
	return p.source.CheckReadiness(ctx)
}

// Build loads the dataset, normalizes it and computes every dashboard table.
func (p *Pipeline) Build(ctx context.Context) (*Report, error) {
	start := time.Now()

	raws, err := p.source.Load(ctx)
	if err != nil {
		p.metrics.ReportErrors.Inc()
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	incidents := p.normalize(raws)
	report := Aggregate(incidents)
	report.ID = uuid.NewString()
	report.GeneratedAt = domain.Now()

	p.metrics.ReportsBuilt.Inc()
	p.metrics.RowsLoaded.Set(float64(report.SourceRows))
	windowRows := 0
	if report.Window != nil {
		windowRows = report.Window.Rows
	}
	p.metrics.WindowRows.Set(float64(windowRows))
	p.metrics.BuildDuration.Observe(time.Since(start).Seconds())

	p.logger.Debug("report built",
		"report_id", report.ID,
		"rows", report.SourceRows,
		"window_rows", windowRows,
		"months", len(report.Monthly),
		"duration", time.Since(start),
	)
	return report, nil
}

// normalize coerces every row and records the fields that failed to parse.
func (p *Pipeline) normalize(raws []domain.RawRecord) []domain.Incident {
	incidents, failures := Normalize(raws)
	for field, n := range failures {
		p.metrics.CoercionNulls.WithLabelValues(field).Add(float64(n))
		p.logger.Debug("coerced malformed values to null", "field", field, "count", n)
	}
	return incidents
}

// Normalize coerces every raw row. failures counts, per field name, the
// present values that could not be parsed.
func Normalize(raws []domain.RawRecord) (incidents []domain.Incident, failures map[string]int) {
	incidents = make([]domain.Incident, len(raws))
	failures = make(map[string]int)
	for i, raw := range raws {
		inc, failed := domain.Normalize(raw)
		incidents[i] = inc
		for _, field := range failed {
			failures[field]++
		}
	}
	return incidents, failures
}

// Aggregate computes every table from normalized incidents. Month-indexed
// tables use the recent window; the categorical tables use all incidents.
func Aggregate(incidents []domain.Incident) *Report {
	report := &Report{SourceRows: len(incidents)}

	recent, window, ok := RecentWindow(incidents)
	if ok {
		report.Window = &window
	}

	report.Monthly = MonthlyCounts(recent)
	report.Calendar = BuildCalendar(report.Monthly)
	report.States = StateCounts(incidents)
	report.Entities = EntityCounts(incidents)
	report.StateEntities = StateEntityCounts(incidents)
	report.DamageLocations = DamageLocations(MeltContactAreas(incidents))
	report.DamagePivot = PivotDamageLocations(report.DamageLocations)

	return report
}

package http

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/incident-dashboard/internal/adapter/xlsx"
	"github.com/couchcryptid/incident-dashboard/internal/dashboard"
	"github.com/couchcryptid/incident-dashboard/internal/observability"
	"github.com/couchcryptid/incident-dashboard/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const buildFailedBody = "failed to build report"

// ReportBuilder computes a fresh report and reports dataset readiness.
type ReportBuilder interface {
	Build(ctx context.Context) (*pipeline.Report, error)
	CheckReadiness(ctx context.Context) error
}

// Server serves the dashboard, its chart and export routes, and the health,
// readiness, and metrics endpoints.
type Server struct {
	httpServer  *http.Server
	reports     ReportBuilder
	plotlyJSURL string
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewServer creates the HTTP server. Every dashboard request rebuilds the
// report from the dataset.
func NewServer(addr, plotlyJSURL string, reports ReportBuilder, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		reports:     reports,
		plotlyJSURL: plotlyJSURL,
		metrics:     metrics,
		logger:      logger,
	}

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("GET /charts/{file}", s.handleChart)
	mux.HandleFunc("GET /export.xlsx", s.handleExport)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(reports))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// build runs the pipeline for one request, writing the generic 500 on failure.
func (s *Server) build(w http.ResponseWriter, r *http.Request) (*pipeline.Report, bool) {
	report, err := s.reports.Build(r.Context())
	if err != nil {
		s.logger.Error("report build failed", "path", r.URL.Path, "error", err)
		http.Error(w, buildFailedBody, http.StatusInternalServerError)
		return nil, false
	}
	return report, true
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	report, ok := s.build(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := dashboard.RenderPage(&buf, report, s.plotlyJSURL); err != nil {
		s.logger.Error("dashboard render failed", "report_id", report.ID, "error", err)
		http.Error(w, buildFailedBody, http.StatusInternalServerError)
		return
	}

	s.metrics.ChartsRendered.WithLabelValues("page", "html").Inc()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w) //nolint:errcheck // client went away
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, ok := s.build(w, r)
	if !ok {
		return
	}
	s.metrics.ChartsRendered.WithLabelValues("report", "json").Inc()
	sharedobs.WriteJSON(w, http.StatusOK, report)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(r.PathValue("file"), ".svg")
	if !ok || !slices.Contains(dashboard.SVGCharts, name) {
		http.NotFound(w, r)
		return
	}

	report, ok := s.build(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := dashboard.RenderSVG(&buf, name, report)
	switch {
	case errors.Is(err, dashboard.ErrNoData):
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		s.logger.Error("chart render failed", "chart", name, "report_id", report.ID, "error", err)
		http.Error(w, buildFailedBody, http.StatusInternalServerError)
		return
	}

	s.metrics.ChartsRendered.WithLabelValues(name, "svg").Inc()
	w.Header().Set("Content-Type", "image/svg+xml")
	buf.WriteTo(w) //nolint:errcheck // client went away
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	report, ok := s.build(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := xlsx.Write(&buf, report); err != nil {
		s.logger.Error("xlsx export failed", "report_id", report.ID, "error", err)
		http.Error(w, buildFailedBody, http.StatusInternalServerError)
		return
	}

	s.metrics.ChartsRendered.WithLabelValues("report", "xlsx").Inc()
	w.Header().Set("Content-Type", xlsx.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="incident-report.xlsx"`)
	buf.WriteTo(w) //nolint:errcheck // client went away
}

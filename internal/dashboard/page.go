// Package dashboard renders a report as the HTML dashboard page and as
// standalone SVG charts.
package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/couchcryptid/incident-dashboard/internal/domain"
	"github.com/couchcryptid/incident-dashboard/internal/pipeline"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("index.html.tmpl").
		Funcs(template.FuncMap{"monthLabel": func(t time.Time) string { return domain.MonthLabel(t) }}).
		ParseFS(templateFS, "templates/index.html.tmpl"),
)

type pageData struct {
	PlotlyJSURL string
	SourceRows  int
	GeneratedAt time.Time
	Window      *pipeline.Window
	Figures     []Figure
}

// RenderPage writes the dashboard page for r. Plotly is loaded from
// plotlyJSURL. Nothing is written to w if rendering fails.
func RenderPage(w io.Writer, r *pipeline.Report, plotlyJSURL string) error {
	data := pageData{
		PlotlyJSURL: plotlyJSURL,
		SourceRows:  r.SourceRows,
		GeneratedAt: r.GeneratedAt,
		Window:      r.Window,
		Figures:     Figures(r),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("render dashboard page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

package dashboard

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/couchcryptid/incident-dashboard/internal/pipeline"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	// ErrUnknownChart is returned for a chart that has no SVG rendering.
	ErrUnknownChart = errors.New("unknown chart")
	// ErrNoData is returned when the chart's table has too few rows to draw.
	ErrNoData = errors.New("no data to chart")
)

// SVGCharts lists the charts RenderSVG supports. Maps, heatmaps and sunbursts
// are only available on the page.
var SVGCharts = []string{ChartMonth, ChartCombo, ChartPie, ChartStacked}

const (
	svgHeight    = 480
	svgMinWidth  = 640
	barWidth     = 40
	barSpacing   = 24
	stackedWidth = 48
)

// RenderSVG draws the named chart of r as SVG.
func RenderSVG(w io.Writer, name string, r *pipeline.Report) error {
	var err error
	switch name {
	case ChartMonth:
		err = renderMonthSVG(w, r)
	case ChartCombo:
		err = renderComboSVG(w, r)
	case ChartPie:
		err = renderPieSVG(w, r)
	case ChartStacked:
		err = renderStackedSVG(w, r)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
	if err != nil && !errors.Is(err, ErrNoData) {
		return fmt.Errorf("render %s chart: %w", name, err)
	}
	return err
}

func chartWidth(n, perItem int) int {
	return max(svgMinWidth, n*perItem+160)
}

// countRange is a y range from 0 to a little above the largest count, never
// zero-width.
func countRange(maxCount float64) *chart.ContinuousRange {
	return &chart.ContinuousRange{Min: 0, Max: math.Max(1, math.Ceil(maxCount*1.1))}
}

func shortMonth(m pipeline.MonthlyAggregate) string {
	return fmt.Sprintf("%s %d", m.MonthAbbrev, m.Year)
}

func renderMonthSVG(w io.Writer, r *pipeline.Report) error {
	if len(r.Monthly) == 0 {
		return ErrNoData
	}

	bars := make([]chart.Value, len(r.Monthly))
	maxCount := 0
	for i, m := range r.Monthly {
		bars[i] = chart.Value{Label: shortMonth(m), Value: float64(m.Crashes)}
		maxCount = max(maxCount, m.Crashes)
	}

	graph := chart.BarChart{
		Title:      titleMonth,
		Width:      chartWidth(len(bars), barWidth+barSpacing),
		Height:     svgHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis: chart.YAxis{
			Name:           "Crashes",
			Range:          countRange(float64(maxCount)),
			ValueFormatter: intFormatter,
		},
		Bars: bars,
	}
	return graph.Render(chart.SVG, w)
}

func renderComboSVG(w io.Writer, r *pipeline.Report) error {
	n := len(r.Monthly)
	if n < 2 {
		return ErrNoData
	}

	xs := make([]float64, n)
	crashes := make([]float64, n)
	rolling := make([]float64, n)
	ticks := make([]chart.Tick, n)
	maxCount := 0.0
	for i, m := range r.Monthly {
		xs[i] = float64(i)
		crashes[i] = float64(m.Crashes)
		rolling[i] = m.RollingAverage
		ticks[i] = chart.Tick{Value: float64(i), Label: shortMonth(m)}
		maxCount = math.Max(maxCount, crashes[i])
	}

	graph := chart.Chart{
		Title:  titleCombo,
		Width:  chartWidth(n, barWidth+barSpacing),
		Height: svgHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20},
		},
		XAxis: chart.XAxis{
			Name:  "Month",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(n - 1)},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:           "Count",
			Range:          countRange(maxCount),
			ValueFormatter: intFormatter,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Monthly Crashes",
				XValues: xs,
				YValues: crashes,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					FillColor:   chart.ColorBlue.WithAlpha(96),
				},
			},
			chart.ContinuousSeries{
				Name:    "3-Month Rolling Avg",
				XValues: xs,
				YValues: rolling,
				Style: chart.Style{
					StrokeColor: chart.ColorOrange,
					StrokeWidth: 2,
					DotColor:    chart.ColorOrange,
					DotWidth:    3,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.SVG, w)
}

func renderPieSVG(w io.Writer, r *pipeline.Report) error {
	if len(r.Entities) == 0 {
		return ErrNoData
	}

	values := make([]chart.Value, len(r.Entities))
	for i, e := range r.Entities {
		values[i] = chart.Value{Label: e.ReportingEntity, Value: float64(e.Crashes)}
	}

	graph := chart.PieChart{
		Title:  titlePie,
		Width:  svgHeight,
		Height: svgHeight,
		Values: values,
	}
	return graph.Render(chart.SVG, w)
}

// renderStackedSVG draws one stacked bar per state. go-chart scales each bar
// to the same height, so the sections show each location's share of the
// state's damage flags.
func renderStackedSVG(w io.Writer, r *pipeline.Report) error {
	p := r.DamagePivot
	if len(p.States) == 0 || len(p.Locations) == 0 {
		return ErrNoData
	}

	bars := make([]chart.StackedBar, 0, len(p.States))
	for i, state := range p.States {
		var values []chart.Value
		for j, loc := range p.Locations {
			n := p.Counts[i][j]
			if n == 0 {
				continue
			}
			values = append(values, chart.Value{
				Label: loc,
				Value: float64(n),
				Style: chart.Style{FillColor: locationColor(j), StrokeColor: locationColor(j)},
			})
		}
		if len(values) == 0 {
			continue
		}
		bars = append(bars, chart.StackedBar{Name: state, Width: stackedWidth, Values: values})
	}
	if len(bars) == 0 {
		return ErrNoData
	}

	graph := chart.StackedBarChart{
		Title:      titleStacked,
		Width:      chartWidth(len(bars), stackedWidth+barSpacing),
		Height:     svgHeight,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Bars:       bars,
	}
	return graph.Render(chart.SVG, w)
}

// locationColor keeps a damage location the same color across every bar.
func locationColor(i int) drawing.Color {
	return chart.GetDefaultColor(i)
}

func intFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}

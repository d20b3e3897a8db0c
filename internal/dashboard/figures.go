package dashboard

import (
	"github.com/couchcryptid/incident-dashboard/internal/pipeline"
)

// Chart identifiers. They double as the page div ids and the metric labels.
const (
	ChartMonth    = "month"
	ChartState    = "state"
	ChartCombo    = "combo"
	ChartCalendar = "calendar"
	ChartPie      = "pie"
	ChartSunburst = "sunburst"
	ChartStacked  = "stacked"
)

// ChartIDs lists every chart in page order.
var ChartIDs = []string{ChartMonth, ChartState, ChartCombo, ChartCalendar, ChartPie, ChartSunburst, ChartStacked}

// Figure is a Plotly figure: the arguments of Plotly.newPlot for one div.
type Figure struct {
	ID     string  `json:"-"`
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one Plotly trace. Only the attributes the dashboard sets are
// modelled; zero values are omitted from the JSON.
type Trace struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	Mode string `json:"mode,omitempty"`

	X    any `json:"x,omitempty"`
	Y    any `json:"y,omitempty"`
	Z    any `json:"z,omitempty"`
	Text any `json:"text,omitempty"`

	TextPosition  string `json:"textposition,omitempty"`
	TextTemplate  string `json:"texttemplate,omitempty"`
	HoverTemplate string `json:"hovertemplate,omitempty"`

	// choropleth
	Locations    []string  `json:"locations,omitempty"`
	LocationMode string    `json:"locationmode,omitempty"`
	ColorScale   string    `json:"colorscale,omitempty"`
	ColorBar     *ColorBar `json:"colorbar,omitempty"`

	// pie and sunburst
	IDs          []string `json:"ids,omitempty"`
	Labels       []string `json:"labels,omitempty"`
	Parents      []string `json:"parents,omitempty"`
	Values       []int    `json:"values,omitempty"`
	Hole         float64  `json:"hole,omitempty"`
	BranchValues string   `json:"branchvalues,omitempty"`
}

// ColorBar titles a continuous color scale.
type ColorBar struct {
	Title Title `json:"title"`
}

// Title is a Plotly title object.
type Title struct {
	Text string `json:"text"`
}

// Axis is a Plotly cartesian axis.
type Axis struct {
	Title Title  `json:"title"`
	Type  string `json:"type,omitempty"`
}

// Geo scopes a choropleth map.
type Geo struct {
	Scope string `json:"scope"`
}

// Legend titles the trace legend.
type Legend struct {
	Title Title `json:"title"`
}

// Layout is the Plotly layout for one figure.
type Layout struct {
	Title   Title   `json:"title"`
	XAxis   *Axis   `json:"xaxis,omitempty"`
	YAxis   *Axis   `json:"yaxis,omitempty"`
	Geo     *Geo    `json:"geo,omitempty"`
	Legend  *Legend `json:"legend,omitempty"`
	BarMode string  `json:"barmode,omitempty"`
}

// Chart titles.
const (
	titleMonth    = "Crashes by Month (All Systems)"
	titleState    = "Crashes by State (All Systems)"
	titleCombo    = "Monthly Crashes + 3-Month Rolling Average (All Systems)"
	titleCalendar = "Monthly Crash Heatmap (All Systems)"
	titlePie      = "Reporting Entity Share (All Systems)"
	titleSunburst = "Crashes by State & Entity (All Systems)"
	titleStacked  = "Damage Locations by State (SV Contact Areas, All Systems)"
)

// Figures builds every chart of the page from a report, in page order.
func Figures(r *pipeline.Report) []Figure {
	return []Figure{
		MonthFigure(r),
		StateFigure(r),
		ComboFigure(r),
		CalendarFigure(r),
		PieFigure(r),
		SunburstFigure(r),
		StackedFigure(r),
	}
}

func monthSeries(r *pipeline.Report) (labels []string, crashes []int, rolling []float64) {
	labels = make([]string, len(r.Monthly))
	crashes = make([]int, len(r.Monthly))
	rolling = make([]float64, len(r.Monthly))
	for i, m := range r.Monthly {
		labels[i] = m.Month
		crashes[i] = m.Crashes
		rolling[i] = m.RollingAverage
	}
	return labels, crashes, rolling
}

// MonthFigure is a bar per month of the recent window with the count printed
// above each bar.
func MonthFigure(r *pipeline.Report) Figure {
	labels, crashes, _ := monthSeries(r)
	return Figure{
		ID: ChartMonth,
		Data: []Trace{{
			Type:         "bar",
			X:            labels,
			Y:            crashes,
			Text:         crashes,
			TextPosition: "outside",
		}},
		Layout: Layout{
			Title: Title{Text: titleMonth},
			XAxis: &Axis{Title: Title{Text: "Incident Date"}, Type: "category"},
			YAxis: &Axis{Title: Title{Text: "Crashes"}},
		},
	}
}

// StateFigure is a USA choropleth of crashes per state.
func StateFigure(r *pipeline.Report) Figure {
	states := make([]string, len(r.States))
	crashes := make([]int, len(r.States))
	for i, s := range r.States {
		states[i] = s.State
		crashes[i] = s.Crashes
	}
	return Figure{
		ID: ChartState,
		Data: []Trace{{
			Type:         "choropleth",
			Locations:    states,
			Z:            crashes,
			LocationMode: "USA-states",
			ColorScale:   "Blues",
			ColorBar:     &ColorBar{Title: Title{Text: "Crashes"}},
		}},
		Layout: Layout{
			Title: Title{Text: titleState},
			Geo:   &Geo{Scope: "usa"},
		},
	}
}

// ComboFigure overlays the 3-month rolling average on the monthly bars.
func ComboFigure(r *pipeline.Report) Figure {
	labels, crashes, rolling := monthSeries(r)
	return Figure{
		ID: ChartCombo,
		Data: []Trace{
			{Type: "bar", Name: "Monthly Crashes", X: labels, Y: crashes},
			{Type: "scatter", Name: "3-Month Rolling Avg", Mode: "lines+markers", X: labels, Y: rolling},
		},
		Layout: Layout{
			Title: Title{Text: titleCombo},
			XAxis: &Axis{Title: Title{Text: "Month"}, Type: "category"},
			YAxis: &Axis{Title: Title{Text: "Count"}},
		},
	}
}

// CalendarFigure is a year x month heatmap.
func CalendarFigure(r *pipeline.Report) Figure {
	return Figure{
		ID: ChartCalendar,
		Data: []Trace{{
			Type:          "heatmap",
			X:             r.Calendar.Months,
			Y:             r.Calendar.Years,
			Z:             r.Calendar.Counts,
			ColorBar:      &ColorBar{Title: Title{Text: "Crashes"}},
			HoverTemplate: "Month: %{x}<br>Year: %{y}<br>Crashes: %{z}<extra></extra>",
		}},
		Layout: Layout{
			Title: Title{Text: titleCalendar},
			XAxis: &Axis{Title: Title{Text: "Month"}},
			YAxis: &Axis{Title: Title{Text: "Year"}, Type: "category"},
		},
	}
}

// PieFigure is a donut of each reporting entity's share.
func PieFigure(r *pipeline.Report) Figure {
	labels := make([]string, len(r.Entities))
	values := make([]int, len(r.Entities))
	for i, e := range r.Entities {
		labels[i] = e.ReportingEntity
		values[i] = e.Crashes
	}
	return Figure{
		ID: ChartPie,
		Data: []Trace{{
			Type:          "pie",
			Labels:        labels,
			Values:        values,
			Hole:          0.4,
			HoverTemplate: "%{label}: %{percent:.1%} (%{value})",
			TextTemplate:  "%{percent:.1%}",
		}},
		Layout: Layout{Title: Title{Text: titlePie}},
	}
}

// SunburstFigure is the State -> Reporting Entity hierarchy. Plotly's flat
// form needs the state nodes too, valued at the sum of their children.
func SunburstFigure(r *pipeline.Report) Figure {
	var ids, labels, parents []string
	var values []int

	stateNode := make(map[string]int)
	for _, se := range r.StateEntities {
		i, ok := stateNode[se.State]
		if !ok {
			i = len(ids)
			stateNode[se.State] = i
			ids = append(ids, se.State)
			labels = append(labels, se.State)
			parents = append(parents, "")
			values = append(values, 0)
		}
		values[i] += se.Crashes
	}
	for _, se := range r.StateEntities {
		ids = append(ids, se.State+"/"+se.ReportingEntity)
		labels = append(labels, se.ReportingEntity)
		parents = append(parents, se.State)
		values = append(values, se.Crashes)
	}

	return Figure{
		ID: ChartSunburst,
		Data: []Trace{{
			Type:         "sunburst",
			IDs:          ids,
			Labels:       labels,
			Parents:      parents,
			Values:       values,
			BranchValues: "total",
		}},
		Layout: Layout{Title: Title{Text: titleSunburst}},
	}
}

// StackedFigure stacks one bar trace per damage location over the states.
func StackedFigure(r *pipeline.Report) Figure {
	p := r.DamagePivot
	traces := make([]Trace, 0, len(p.Locations))
	for j, loc := range p.Locations {
		col := make([]int, len(p.States))
		for i := range p.States {
			col[i] = p.Counts[i][j]
		}
		traces = append(traces, Trace{Type: "bar", Name: loc, X: p.States, Y: col})
	}
	return Figure{
		ID:   ChartStacked,
		Data: traces,
		Layout: Layout{
			Title:   Title{Text: titleStacked},
			XAxis:   &Axis{Title: Title{Text: "State"}, Type: "category"},
			YAxis:   &Axis{Title: Title{Text: "Crashes"}},
			Legend:  &Legend{Title: Title{Text: "DamageLocation"}},
			BarMode: "stack",
		},
	}
}

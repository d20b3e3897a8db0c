package pipeline_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/incident-dashboard/internal/domain"
	"github.com/couchcryptid/incident-dashboard/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- RollingMean ---

func TestRollingMean(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		want   []float64
	}{
		{"example series", []int{5, 3, 4}, []float64{5, 4, 4}},
		{"trailing window", []int{3, 6, 9, 12, 0}, []float64{3, 4.5, 6, 9, 7}},
		{"single point", []int{7}, []float64{7}},
		{"empty", []int{}, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pipeline.RollingMean(tt.values, pipeline.RollingWindow)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("rolling mean mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRollingMean_Positions(t *testing.T) {
	values := []int{10, 2, 7, 1, 4, 9}
	got := pipeline.RollingMean(values, 3)
	require.Len(t, got, len(values))

	assert.InDelta(t, 10.0, got[0], 1e-9, "position 1 equals the raw count")
	assert.InDelta(t, 6.0, got[1], 1e-9, "position 2 is the mean of positions 1-2")
	for i := 2; i < len(values); i++ {
		want := float64(values[i-2]+values[i-1]+values[i]) / 3
		assert.InDelta(t, want, got[i], 1e-9, "position %d", i+1)
	}
}

// --- RecentWindow / MonthlyCounts ---

func TestMonthlyCounts_ExampleSeries(t *testing.T) {
	var incidents []domain.Incident
	incidents = append(incidents, repeat(4, incident("Mar-2023", "CA", "Waymo LLC"))...)
	incidents = append(incidents, repeat(5, incident("Jan-2023", "CA", "Waymo LLC"))...)
	incidents = append(incidents, repeat(3, incident("Feb-2023", "TX", "Tesla Inc"))...)

	monthly := pipeline.MonthlyCounts(incidents)

	want := []pipeline.MonthlyAggregate{
		{Month: "January 2023", Crashes: 5, Date: month(2023, time.January), RollingAverage: 5, Year: 2023, MonthAbbrev: "Jan"},
		{Month: "February 2023", Crashes: 3, Date: month(2023, time.February), RollingAverage: 4, Year: 2023, MonthAbbrev: "Feb"},
		{Month: "March 2023", Crashes: 4, Date: month(2023, time.March), RollingAverage: 4, Year: 2023, MonthAbbrev: "Mar"},
	}
	if diff := cmp.Diff(want, monthly); diff != "" {
		t.Fatalf("monthly mismatch (-want +got):\n%s", diff)
	}
}

func TestMonthlyCounts_ChronologicalAcrossYears(t *testing.T) {
	// Lexical order of the labels would put "April" first and "December" before "January".
	incidents := []domain.Incident{
		incident("Jan-2023", "CA", "A"),
		incident("Dec-2022", "CA", "A"),
		incident("Apr-2022", "CA", "A"),
		incident("Aug-2022", "CA", "A"),
	}

	monthly := pipeline.MonthlyCounts(incidents)

	labels := make([]string, len(monthly))
	for i, m := range monthly {
		labels[i] = m.Month
	}
	assert.Equal(t, []string{"April 2022", "August 2022", "December 2022", "January 2023"}, labels)
}

func TestMonthlyCounts_DateParsedFromLabel(t *testing.T) {
	mid := time.Date(2023, time.May, 17, 9, 30, 0, 0, time.UTC)
	incidents := []domain.Incident{
		{IncidentDate: &mid},
		incident("May-2023", "CA", "A"),
	}

	monthly := pipeline.MonthlyCounts(incidents)

	require.Len(t, monthly, 1, "dates in the same month share one label")
	assert.Equal(t, "May 2023", monthly[0].Month)
	assert.Equal(t, 2, monthly[0].Crashes)
	assert.Equal(t, month(2023, time.May), monthly[0].Date)
	parsed, err := domain.ParseMonthLabel(monthly[0].Month)
	require.NoError(t, err)
	assert.Equal(t, parsed, monthly[0].Date)
}

func TestMonthlyCounts_SkipsUndated(t *testing.T) {
	incidents := []domain.Incident{
		incident("Jan-2023", "CA", "A"),
		incident("bad-date", "CA", "A"),
		incident("", "CA", "A"),
	}

	monthly := pipeline.MonthlyCounts(incidents)
	require.Len(t, monthly, 1)
	assert.Equal(t, 1, monthly[0].Crashes)
}

func TestRecentWindow_TwelveMonthsEndingAtDataMax(t *testing.T) {
	freezeClock(t, time.Date(2040, time.July, 4, 0, 0, 0, 0, time.UTC))

	// Two full years of data, one incident per month, Jan-2022..Dec-2023.
	var incidents []domain.Incident
	for y := 2022; y <= 2023; y++ {
		for m := time.January; m <= time.December; m++ {
			incidents = append(incidents, incident(fmt.Sprintf("%s-%d", m.String()[:3], y), "CA", "A"))
		}
	}
	incidents = append(incidents, incident("garbage", "CA", "A"))

	recent, w, ok := pipeline.RecentWindow(incidents)

	require.True(t, ok)
	assert.Equal(t, month(2023, time.January), w.Start)
	assert.Equal(t, month(2023, time.December), w.End)
	assert.Equal(t, 12, w.Rows)
	assert.Len(t, recent, 12)
	for _, inc := range recent {
		assert.Equal(t, 2023, inc.IncidentDate.Year())
	}
}

func TestRecentWindow_Boundaries(t *testing.T) {
	incidents := []domain.Incident{
		incident("Mar-2023", "CA", "A"), // max
		incident("Apr-2022", "CA", "A"), // start, inclusive
		incident("Mar-2022", "CA", "A"), // one month too old
		incident("Dec-2021", "CA", "A"),
	}

	recent, w, ok := pipeline.RecentWindow(incidents)

	require.True(t, ok)
	assert.Equal(t, month(2022, time.April), w.Start)
	assert.Equal(t, month(2023, time.March), w.End)
	require.Len(t, recent, 2)
	assert.Equal(t, month(2023, time.March), *recent[0].IncidentDate)
	assert.Equal(t, month(2022, time.April), *recent[1].IncidentDate)
}

func TestRecentWindow_NoValidDates(t *testing.T) {
	incidents := []domain.Incident{
		incident("bad-date", "CA", "A"),
		incident("", "TX", "B"),
	}

	recent, w, ok := pipeline.RecentWindow(incidents)

	assert.False(t, ok)
	assert.Equal(t, pipeline.Window{}, w)
	assert.NotNil(t, recent)
	assert.Empty(t, recent)
}

func TestMonthlyCounts_SumEqualsWindowRows(t *testing.T) {
	var incidents []domain.Incident
	dates := []string{"Jan-2021", "Jun-2022", "Jul-2022", "Jul-2022", "Nov-2022", "Jan-2023", "Jan-2023", "May-2023", "bad", ""}
	for i := 0; i < 5; i++ {
		for _, d := range dates {
			incidents = append(incidents, incident(d, "CA", "A"))
		}
	}

	recent, w, ok := pipeline.RecentWindow(incidents)
	require.True(t, ok)
	monthly := pipeline.MonthlyCounts(recent)

	sum := 0
	for _, m := range monthly {
		sum += m.Crashes
		assert.False(t, m.Date.Before(w.Start))
		assert.False(t, m.Date.After(w.End))
	}
	assert.Equal(t, w.Rows, sum)
	assert.Equal(t, 35, sum)
	assert.LessOrEqual(t, len(monthly), pipeline.WindowMonths)
}

// --- BuildCalendar ---

func TestBuildCalendar_SingleYear(t *testing.T) {
	monthly := pipeline.MonthlyCounts([]domain.Incident{
		incident("Feb-2023", "CA", "A"),
		incident("Feb-2023", "CA", "A"),
		incident("Jun-2023", "CA", "A"),
	})

	cal := pipeline.BuildCalendar(monthly)

	assert.Equal(t, domain.MonthAbbrevs[:], cal.Months)
	assert.Equal(t, []int{2023}, cal.Years)
	require.Len(t, cal.Counts, 1)
	assert.Equal(t, []int{0, 2, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0}, cal.Counts[0])
}

func TestBuildCalendar_TwoYears(t *testing.T) {
	monthly := pipeline.MonthlyCounts([]domain.Incident{
		incident("Jan-2023", "CA", "A"),
		incident("Apr-2022", "CA", "A"),
		incident("Dec-2022", "CA", "A"),
		incident("Dec-2022", "CA", "A"),
	})

	cal := pipeline.BuildCalendar(monthly)

	assert.Equal(t, []int{2022, 2023}, cal.Years)
	want := [][]int{
		{0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 2},
		{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	}
	if diff := cmp.Diff(want, cal.Counts); diff != "" {
		t.Fatalf("calendar mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildCalendar_Empty(t *testing.T) {
	cal := pipeline.BuildCalendar(nil)

	assert.Len(t, cal.Months, 12)
	assert.NotNil(t, cal.Years)
	assert.Empty(t, cal.Years)
	assert.NotNil(t, cal.Counts)
	assert.Empty(t, cal.Counts)
}

func TestBuildCalendar_AlwaysTwelveColumns(t *testing.T) {
	for n := 1; n <= 12; n++ {
		var incidents []domain.Incident
		for m := 0; m < n; m++ {
			incidents = append(incidents, incident(fmt.Sprintf("%s-2023", domain.MonthAbbrevs[m]), "CA", "A"))
		}
		cal := pipeline.BuildCalendar(pipeline.MonthlyCounts(incidents))
		require.Len(t, cal.Counts, 1)
		assert.Len(t, cal.Counts[0], 12, "with %d months of data", n)
		assert.Len(t, cal.Months, 12)
	}
}

// --- categorical ---

func TestStateCounts_TrimsWhitespace(t *testing.T) {
	incidents := []domain.Incident{
		incident("Jan-2023", " TX ", "A"),
		incident("Jan-2023", "TX", "A"),
		incident("Jan-2023", "CA", "A"),
		incident("Jan-2010", "AZ", "A"), // outside any window, still counted
		incident("bad", "AZ", "A"),
		incident("Jan-2023", "", "A"), // missing state
	}

	got := pipeline.StateCounts(incidents)

	want := []pipeline.StateAggregate{
		{State: "AZ", Crashes: 2},
		{State: "CA", Crashes: 1},
		{State: "TX", Crashes: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("state counts mismatch (-want +got):\n%s", diff)
	}
}

func TestEntityCounts_RankedByFrequency(t *testing.T) {
	incidents := []domain.Incident{
		incident("Jan-2023", "CA", "Zoox Inc"),
		incident("Jan-2023", "CA", "Cruise LLC"),
		incident("Jan-2023", "CA", "Waymo LLC"),
		incident("Jan-2023", "CA", "Tesla Inc"),
		incident("Jan-2023", "CA", "Waymo LLC"),
		incident("Jan-2023", "CA", "Tesla Inc"),
		incident("Jan-2023", "CA", "Cruise LLC"),
		incident("Jan-2023", "CA", "Waymo LLC"),
		incident("Jan-2023", "CA", ""),
	}

	got := pipeline.EntityCounts(incidents)

	want := []pipeline.EntityAggregate{
		{ReportingEntity: "Waymo LLC", Crashes: 3},
		{ReportingEntity: "Cruise LLC", Crashes: 2}, // tie with Tesla, seen first
		{ReportingEntity: "Tesla Inc", Crashes: 2},
		{ReportingEntity: "Zoox Inc", Crashes: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entity counts mismatch (-want +got):\n%s", diff)
	}
}

func TestStateEntityCounts(t *testing.T) {
	incidents := []domain.Incident{
		incident("Jan-2023", "TX", "Tesla Inc"),
		incident("Jan-2023", "CA", "Waymo LLC"),
		incident("Jan-2023", "CA", "Cruise LLC"),
		incident("Jan-2023", "CA", "Waymo LLC"),
		incident("Jan-2023", "", "Waymo LLC"),
		incident("Jan-2023", "CA", ""),
	}

	got := pipeline.StateEntityCounts(incidents)

	want := []pipeline.StateEntityAggregate{
		{State: "CA", ReportingEntity: "Cruise LLC", Crashes: 1},
		{State: "CA", ReportingEntity: "Waymo LLC", Crashes: 2},
		{State: "TX", ReportingEntity: "Tesla Inc", Crashes: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sunburst mismatch (-want +got):\n%s", diff)
	}
}

// --- damage locations ---

func TestDamageLocations_OnlyYFlags(t *testing.T) {
	incidents := []domain.Incident{
		incident("Jan-2023", "CA", "A", "Front=Y", "Rear=N", "Left=y"),
		incident("Jan-2023", "CA", "A", "Front=Y", "Rear=Y", "Left="),
		incident("Jan-2023", "TX", "A", "Front=N", "Rear=N", "Left=N"),
		incident("Jan-2023", "AZ", "A", "Front=", "Rear=", "Left=Y"),
		incident("Jan-2023", "", "A", "Front=Y", "Rear=Y", "Left=Y"),
	}

	got := pipeline.DamageLocations(pipeline.MeltContactAreas(incidents))

	want := []pipeline.DamageLocationAggregate{
		{State: "AZ", Location: "Left", Crashes: 1},
		{State: "CA", Location: "Front", Crashes: 2},
		{State: "CA", Location: "Rear", Crashes: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("damage mismatch (-want +got):\n%s", diff)
	}
}

func TestDamageLocations_PairPresentIffFlagged(t *testing.T) {
	incidents := []domain.Incident{
		incident("Jan-2023", "CA", "A", "Front Left=Y", "Top=N"),
		incident("Jan-2023", "CA", "A", "Front Left=N", "Top=N"),
		incident("Jan-2023", "NV", "A", "Front Left=N", "Top=Y"),
	}

	got := pipeline.DamageLocations(pipeline.MeltContactAreas(incidents))

	pairs := make(map[string]bool)
	for _, r := range got {
		pairs[r.State+"|"+r.Location] = true
		assert.False(t, strings.Contains(r.Location, "SV Contact Area"), r.Location)
	}
	assert.Equal(t, map[string]bool{"CA|Front Left": true, "NV|Top": true}, pairs)
}

func TestMeltContactAreas(t *testing.T) {
	incidents := []domain.Incident{
		incident("Jan-2023", "CA", "A", "Front=Y", "Rear=N"),
		incident("Jan-2023", "TX", "A", "Front=", "Rear=Y"),
	}

	got := pipeline.MeltContactAreas(incidents)

	require.Len(t, got, 4)
	assert.Equal(t, pipeline.ContactAreaFlag{State: domain.Text("CA"), Location: "Front", Flag: domain.Text("Y")}, got[0])
	assert.Equal(t, pipeline.ContactAreaFlag{State: domain.Text("TX"), Location: "Front", Flag: domain.Field{}}, got[2])
}

func TestDamageLocations_NoContactAreaColumns(t *testing.T) {
	incidents := []domain.Incident{
		incident("Jan-2023", "CA", "A"),
		incident("Feb-2023", "TX", "B"),
	}

	rows := pipeline.DamageLocations(pipeline.MeltContactAreas(incidents))
	pivot := pipeline.PivotDamageLocations(rows)

	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.Empty(t, pivot.States)
	assert.Empty(t, pivot.Locations)
	assert.Empty(t, pivot.Counts)
}

func TestPivotDamageLocations_ZeroFilled(t *testing.T) {
	rows := []pipeline.DamageLocationAggregate{
		{State: "CA", Location: "Rear", Crashes: 1},
		{State: "AZ", Location: "Front", Crashes: 4},
		{State: "CA", Location: "Front", Crashes: 2},
		{State: "TX", Location: "Left", Crashes: 3},
	}

	pivot := pipeline.PivotDamageLocations(rows)

	assert.Equal(t, []string{"AZ", "CA", "TX"}, pivot.States)
	assert.Equal(t, []string{"Front", "Left", "Rear"}, pivot.Locations)
	want := [][]int{
		{4, 0, 0},
		{2, 0, 1},
		{0, 3, 0},
	}
	if diff := cmp.Diff(want, pivot.Counts); diff != "" {
		t.Fatalf("pivot mismatch (-want +got):\n%s", diff)
	}
}

// --- Aggregate ---

func TestAggregate_EmptyInput(t *testing.T) {
	report := pipeline.Aggregate(nil)

	assert.Equal(t, 0, report.SourceRows)
	assert.Nil(t, report.Window)
	assert.NotNil(t, report.Monthly)
	assert.Empty(t, report.Monthly)
	assert.NotNil(t, report.States)
	assert.NotNil(t, report.Entities)
	assert.NotNil(t, report.StateEntities)
	assert.NotNil(t, report.DamageLocations)
	assert.Len(t, report.Calendar.Months, 12)
	assert.Empty(t, report.Calendar.Counts)
}

func TestAggregate_CategoricalTablesIgnoreWindow(t *testing.T) {
	incidents := []domain.Incident{
		incident("Mar-2023", "CA", "Waymo LLC", "Front=Y"),
		incident("Jan-2019", "TX", "Tesla Inc", "Rear=Y"),
	}

	report := pipeline.Aggregate(incidents)

	require.NotNil(t, report.Window)
	assert.Equal(t, 1, report.Window.Rows)
	require.Len(t, report.Monthly, 1)
	assert.Len(t, report.States, 2)
	assert.Len(t, report.Entities, 2)
	assert.Len(t, report.StateEntities, 2)
	assert.Len(t, report.DamageLocations, 2)
	assert.Equal(t, []string{"CA", "TX"}, report.DamagePivot.States)
}

// --- helpers ---

// incident builds a normalized incident. Empty strings mark missing cells;
// flags are "Location=Value" pairs for SV Contact Area columns.
func incident(date, state, entity string, flags ...string) domain.Incident {
	raw := domain.RawRecord{
		IncidentDate:    cell(date),
		State:           cell(state),
		ReportingEntity: cell(entity),
	}
	for _, f := range flags {
		loc, val, _ := strings.Cut(f, "=")
		raw.ContactAreas = append(raw.ContactAreas, domain.ContactArea{
			Column: "SV Contact Area - " + loc,
			Flag:   cell(val),
		})
	}
	inc, _ := domain.Normalize(raw)
	return inc
}

func cell(s string) domain.Field {
	if s == "" {
		return domain.Field{}
	}
	return domain.Text(s)
}

func repeat(n int, inc domain.Incident) []domain.Incident {
	out := make([]domain.Incident, n)
	for i := range out {
		out[i] = inc
	}
	return out
}

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

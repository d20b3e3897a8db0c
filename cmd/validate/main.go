// Command validate checks an incident export end to end: it loads the file
// through the dashboard's reader, builds the report, and verifies the
// invariants every table must satisfy. Use it on a new export before
// deploying it, or on genmock output.
//
// Usage:
//
//	go run ./cmd/validate -data Merged_Incident_Reports.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/couchcryptid/incident-dashboard/internal/adapter/csvfile"
	"github.com/couchcryptid/incident-dashboard/internal/domain"
	"github.com/couchcryptid/incident-dashboard/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataPath := flag.String("data", "Merged_Incident_Reports.csv", "path to the incident CSV export")
	flag.Parse()

	os.Exit(run(os.Stdout, *dataPath))
}

func run(out io.Writer, dataPath string) int {
	fmt.Fprintln(out, "=== Incident Data Integrity Validation ===")
	fmt.Fprintln(out)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	records, err := csvfile.NewSource(dataPath, logger).Load(context.Background())
	if err != nil {
		fmt.Fprintf(out, "FATAL: load dataset: %v\n", err)
		return 1
	}

	incidents, failures := pipeline.Normalize(records)
	report := pipeline.Aggregate(incidents)

	phases := []*phase{
		validateCoercion(records, incidents),
		validateWindow(incidents, report),
		validateRollingAverage(report),
		validateCalendar(report),
		validateCategorical(incidents, report),
		validateDamage(incidents, report),
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Rows: %d, coerced to null: incident_date=%d latitude=%d longitude=%d\n",
		len(records), failures[domain.FieldIncidentDate], failures[domain.FieldLatitude], failures[domain.FieldLongitude])

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: Field Coercion ──
// Nothing is dropped by coercion, and the dataset has at least one usable date.

func validateCoercion(records []domain.RawRecord, incidents []domain.Incident) *phase {
	p := &phase{name: "Phase 1: Field Coercion"}

	if len(records) != len(incidents) {
		p.errorf("normalized %d rows from %d records", len(incidents), len(records))
	}

	dated := 0
	for i, inc := range incidents {
		if inc.IncidentDate != nil {
			dated++
			if inc.IncidentDate.Day() != 1 {
				p.errorf("row %d: incident date %s is not the first of a month", i+1, inc.IncidentDate.Format("2006-01-02"))
			}
		}
		if inc.Latitude != nil && math.Abs(*inc.Latitude) > 90 {
			p.errorf("row %d: latitude %g out of range", i+1, *inc.Latitude)
		}
		if inc.Longitude != nil && math.Abs(*inc.Longitude) > 180 {
			p.errorf("row %d: longitude %g out of range", i+1, *inc.Longitude)
		}
	}
	if len(incidents) > 0 && dated == 0 {
		p.errorf("no row has a parseable Incident Date; every month chart will be empty")
	}
	return p
}

// ── Phase 2: Recent Window ──

func validateWindow(incidents []domain.Incident, r *pipeline.Report) *phase {
	p := &phase{name: "Phase 2: Recent Window"}

	if r.Window == nil {
		if len(r.Monthly) != 0 {
			p.errorf("no window but %d monthly rows", len(r.Monthly))
		}
		return p
	}
	w := r.Window

	var latest domain.Incident
	for _, inc := range incidents {
		if inc.IncidentDate != nil && (latest.IncidentDate == nil || inc.IncidentDate.After(*latest.IncidentDate)) {
			latest = inc
		}
	}
	if latest.IncidentDate == nil || !latest.IncidentDate.Equal(w.End) {
		p.errorf("window end %s is not the latest incident month", domain.MonthLabel(w.End))
	}
	if want := w.End.AddDate(0, -(pipeline.WindowMonths - 1), 0); !w.Start.Equal(want) {
		p.errorf("window start %s, want %s", domain.MonthLabel(w.Start), domain.MonthLabel(want))
	}

	if len(r.Monthly) > pipeline.WindowMonths {
		p.errorf("%d monthly rows, at most %d allowed", len(r.Monthly), pipeline.WindowMonths)
	}
	sum := 0
	for i, m := range r.Monthly {
		sum += m.Crashes
		if m.Date.Before(w.Start) || m.Date.After(w.End) {
			p.errorf("month %s outside the window", m.Month)
		}
		if i > 0 && !r.Monthly[i-1].Date.Before(m.Date) {
			p.errorf("month %s is not after %s", m.Month, r.Monthly[i-1].Month)
		}
	}
	if sum != w.Rows {
		p.errorf("monthly counts sum to %d, window has %d rows", sum, w.Rows)
	}
	return p
}

// ── Phase 3: Rolling Average ──

func validateRollingAverage(r *pipeline.Report) *phase {
	p := &phase{name: "Phase 3: Rolling Average"}

	for i, m := range r.Monthly {
		lo := max(0, i-pipeline.RollingWindow+1)
		sum := 0
		for _, prev := range r.Monthly[lo : i+1] {
			sum += prev.Crashes
		}
		want := float64(sum) / float64(i+1-lo)
		if math.Abs(m.RollingAverage-want) > 1e-9 {
			p.errorf("%s: rolling average %g, want %g", m.Month, m.RollingAverage, want)
		}
	}
	return p
}

// ── Phase 4: Calendar Pivot ──

func validateCalendar(r *pipeline.Report) *phase {
	p := &phase{name: "Phase 4: Calendar Pivot"}
	cal := r.Calendar

	if len(cal.Months) != 12 {
		p.errorf("%d month columns, want 12", len(cal.Months))
	}
	if len(cal.Counts) != len(cal.Years) {
		p.errorf("%d count rows for %d years", len(cal.Counts), len(cal.Years))
	}

	total := 0
	for i, row := range cal.Counts {
		if len(row) != 12 {
			p.errorf("year %d has %d columns", cal.Years[i], len(row))
		}
		for _, n := range row {
			total += n
		}
	}
	monthly := 0
	for _, m := range r.Monthly {
		monthly += m.Crashes
	}
	if total != monthly {
		p.errorf("calendar sums to %d, monthly series to %d", total, monthly)
	}
	return p
}

// ── Phase 5: Categorical Totals ──
// Group totals match the rows that carry the grouping keys.

func validateCategorical(incidents []domain.Incident, r *pipeline.Report) *phase {
	p := &phase{name: "Phase 5: Categorical Totals"}

	var withState, withEntity, withBoth int
	for _, inc := range incidents {
		if inc.State.Valid {
			withState++
		}
		if inc.ReportingEntity.Valid {
			withEntity++
		}
		if inc.State.Valid && inc.ReportingEntity.Valid {
			withBoth++
		}
	}

	if got := sumCrashes(r.States, func(s pipeline.StateAggregate) int { return s.Crashes }); got != withState {
		p.errorf("state counts sum to %d, %d rows have a state", got, withState)
	}
	for _, s := range r.States {
		if s.State != strings.TrimSpace(s.State) {
			p.errorf("state %q is not trimmed", s.State)
		}
	}

	if got := sumCrashes(r.Entities, func(e pipeline.EntityAggregate) int { return e.Crashes }); got != withEntity {
		p.errorf("entity counts sum to %d, %d rows have an entity", got, withEntity)
	}
	for i := 1; i < len(r.Entities); i++ {
		if r.Entities[i].Crashes > r.Entities[i-1].Crashes {
			p.errorf("entity %q ranked below a smaller count", r.Entities[i].ReportingEntity)
		}
	}

	if got := sumCrashes(r.StateEntities, func(se pipeline.StateEntityAggregate) int { return se.Crashes }); got != withBoth {
		p.errorf("state/entity counts sum to %d, %d rows have both", got, withBoth)
	}
	return p
}

// ── Phase 6: Damage Locations ──

func validateDamage(incidents []domain.Incident, r *pipeline.Report) *phase {
	p := &phase{name: "Phase 6: Damage Locations"}

	flagged := 0
	for _, inc := range incidents {
		if !inc.State.Valid {
			continue
		}
		for _, a := range inc.ContactAreas {
			if domain.IsDamaged(a.Flag) {
				flagged++
			}
		}
	}

	long := 0
	for _, d := range r.DamageLocations {
		long += d.Crashes
		if d.Crashes <= 0 {
			p.errorf("%s/%s has non-positive count %d", d.State, d.Location, d.Crashes)
		}
		if strings.Contains(d.Location, domain.ContactAreaPrefix) {
			p.errorf("location label %q still carries the column prefix", d.Location)
		}
	}
	if long != flagged {
		p.errorf("damage counts sum to %d, %d flags are %q", long, flagged, domain.DamagedFlag)
	}

	wide := 0
	for _, row := range r.DamagePivot.Counts {
		if len(row) != len(r.DamagePivot.Locations) {
			p.errorf("pivot row has %d columns, want %d", len(row), len(r.DamagePivot.Locations))
		}
		for _, n := range row {
			wide += n
		}
	}
	if wide != long {
		p.errorf("pivot sums to %d, long table to %d", wide, long)
	}
	return p
}

func sumCrashes[T any](rows []T, crashes func(T) int) int {
	n := 0
	for _, r := range rows {
		n += crashes(r)
	}
	return n
}

package pipeline

import "time"

// MonthlyAggregate is one month of the recent window.
type MonthlyAggregate struct {
	Month          string    `json:"month"` // "January 2023"
	Crashes        int       `json:"crashes"`
	Date           time.Time `json:"date"` // first of the month, sort key
	RollingAverage float64   `json:"rolling_avg"`
	Year           int       `json:"year"`
	MonthAbbrev    string    `json:"month_abbrev"` // "Jan"
}

// StateAggregate counts incidents per trimmed state over the full dataset.
type StateAggregate struct {
	State   string `json:"state"`
	Crashes int    `json:"crashes"`
}

// EntityAggregate counts incidents per reporting entity over the full dataset.
type EntityAggregate struct {
	ReportingEntity string `json:"reporting_entity"`
	Crashes         int    `json:"crashes"`
}

// StateEntityAggregate is one leaf of the State -> Reporting Entity hierarchy.
type StateEntityAggregate struct {
	State           string `json:"state"`
	ReportingEntity string `json:"reporting_entity"`
	Crashes         int    `json:"crashes"`
}

// DamageLocationAggregate counts "Y" flags per state and damage location.
type DamageLocationAggregate struct {
	State    string `json:"state"`
	Location string `json:"location"`
	Crashes  int    `json:"crashes"`
}

// CalendarPivot is a year x month grid of monthly crash counts. Months is
// always Jan..Dec and every row of Counts has 12 entries.
type CalendarPivot struct {
	Months []string `json:"months"`
	Years  []int    `json:"years"`
	Counts [][]int  `json:"counts"`
}

// DamageLocationPivot is the state x location matrix behind the stacked bar chart.
type DamageLocationPivot struct {
	States    []string `json:"states"`
	Locations []string `json:"locations"`
	Counts    [][]int  `json:"counts"`
}

// Window describes the 12-month range the month-indexed tables cover.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Rows  int       `json:"rows"`
}

// Report holds every table the dashboard renders. Tables are never nil so
// that they encode as empty JSON arrays.
type Report struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	SourceRows  int       `json:"source_rows"`
	Window      *Window   `json:"window"` // nil when no row has a valid date

	Monthly         []MonthlyAggregate        `json:"monthly"`
	States          []StateAggregate          `json:"states"`
	Entities        []EntityAggregate         `json:"entities"`
	StateEntities   []StateEntityAggregate    `json:"state_entities"`
	Calendar        CalendarPivot             `json:"calendar"`
	DamageLocations []DamageLocationAggregate `json:"damage_locations"`
	DamagePivot     DamageLocationPivot       `json:"damage_pivot"`
}

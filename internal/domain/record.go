package domain

import "time"

// Column names read from the source export.
const (
	ColumnIncidentDate    = "Incident Date"
	ColumnLatitude        = "Latitude"
	ColumnLongitude       = "Longitude"
	ColumnState           = "State"
	ColumnReportingEntity = "Reporting Entity"

	// ContactAreaPrefix selects the damage flag columns.
	ContactAreaPrefix = "SV Contact Area"

	// contactAreaLabelPrefix is removed from flag column names to get the
	// damage location label.
	contactAreaLabelPrefix = "SV Contact Area - "

	// DamagedFlag is the only flag value that marks an area as damaged.
	DamagedFlag = "Y"
)

// Field is a single cell. Valid is false when the column is absent or the
// cell holds a missing-value marker.
type Field struct {
	Value string `json:"value"`
	Valid bool   `json:"valid"`
}

// Text returns a present Field holding s.
func Text(s string) Field {
	return Field{Value: s, Valid: true}
}

// ContactArea is one "SV Contact Area - X" cell of a row.
type ContactArea struct {
	Column string
	Flag   Field
}

// RawRecord is one row of the source dataset restricted to the columns the
// dashboard reads. ContactAreas follows the column order of the source header.
type RawRecord struct {
	IncidentDate    Field
	Latitude        Field
	Longitude       Field
	State           Field
	ReportingEntity Field
	ContactAreas    []ContactArea
}

// Incident is a RawRecord after type coercion. Nil pointers mark values that
// were missing or could not be parsed.
type Incident struct {
	IncidentDate    *time.Time
	Latitude        *float64
	Longitude       *float64
	State           Field
	ReportingEntity Field
	ContactAreas    []ContactArea
}

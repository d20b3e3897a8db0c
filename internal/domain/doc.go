// Package domain models the merged automated-driving incident report export.
//
// # Data Source
//
// The dashboard reads a single CSV (Merged_Incident_Reports.csv) combining
// crash reports filed by ADS and Level 2 ADAS operators. Only a handful of
// columns matter; everything else in the export is ignored.
//
// # Column Conventions
//
// Incident Date:
//
//	Month and year only, "Mon-YYYY", e.g. "Mar-2023". Month names match
//	case-insensitively. Anything else ("2023-03", "Sept-2023", "") is treated
//	as unknown and the row has no date.
//
// Latitude / Longitude:
//
//	Decimal degrees. Redacted or malformed values ("[REDACTED]", "N/A",
//	"not-a-number") become unknown. NaN and infinities are treated the same way.
//
// State:
//
//	Two-letter postal code. The export sometimes pads it with whitespace
//	(" TX "); the state choropleth trims it, the other breakdowns keep the
//	raw text.
//
// Reporting Entity:
//
//	The operator that filed the report, e.g. "Waymo LLC".
//
// SV Contact Area flags:
//
//	One column per damaged area of the subject vehicle, named
//	"SV Contact Area - <location>" (e.g. "SV Contact Area - Front Left").
//	A cell holding exactly "Y" marks the area as damaged; any other value,
//	including lowercase "y", does not.
//
// Missing values:
//
//	Empty cells and the usual spreadsheet null markers ("NA", "N/A", "NULL",
//	"NaN", ...) load as missing. Rows with a missing State or Reporting Entity
//	are left out of the breakdowns keyed on that column. Rows shorter than
//	the header are padded with missing cells.
//
// # Coercion
//
// No row is ever rejected. Values that cannot be parsed become nil on the
// normalized [Incident] and the stage that needs them skips the row.
package domain

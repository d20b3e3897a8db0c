package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Coerced field names, used as metric labels.
const (
	FieldIncidentDate = "incident_date"
	FieldLatitude     = "latitude"
	FieldLongitude    = "longitude"
)

const (
	incidentDateLayout = "Jan-2006"
	monthLabelLayout   = "January 2006"
	monthAbbrevLayout  = "Jan"
)

// MonthAbbrevs are the calendar pivot columns, in order.
var MonthAbbrevs = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Normalize coerces a raw row into an Incident. Present values that fail to
// parse are reported in failed (by field name) and left nil; missing values
// are nil without being reported.
func Normalize(raw RawRecord) (inc Incident, failed []string) {
	inc = Incident{
		State:           raw.State,
		ReportingEntity: raw.ReportingEntity,
		ContactAreas:    raw.ContactAreas,
	}

	if raw.IncidentDate.Valid {
		if t, ok := ParseIncidentDate(raw.IncidentDate.Value); ok {
			inc.IncidentDate = &t
		} else {
			failed = append(failed, FieldIncidentDate)
		}
	}
	if raw.Latitude.Valid {
		if v, ok := ParseCoordinate(raw.Latitude.Value); ok {
			inc.Latitude = &v
		} else {
			failed = append(failed, FieldLatitude)
		}
	}
	if raw.Longitude.Valid {
		if v, ok := ParseCoordinate(raw.Longitude.Value); ok {
			inc.Longitude = &v
		} else {
			failed = append(failed, FieldLongitude)
		}
	}

	return inc, failed
}

// ParseIncidentDate parses "Mon-YYYY" (e.g. "Mar-2023") into the first day of
// that month in UTC. Month names match case-insensitively.
func ParseIncidentDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(incidentDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseCoordinate parses a decimal latitude or longitude. NaN and infinities
// are rejected.
func ParseCoordinate(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// TrimState removes surrounding whitespace so " TX " and "TX" share a bucket.
func TrimState(s string) string {
	return strings.TrimSpace(s)
}

// MonthStart truncates t to the first instant of its month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthLabel renders a month as "January 2023".
func MonthLabel(t time.Time) string {
	return t.Format(monthLabelLayout)
}

// ParseMonthLabel is the inverse of MonthLabel.
func ParseMonthLabel(s string) (time.Time, error) {
	return time.Parse(monthLabelLayout, s)
}

// MonthAbbrev renders a month as "Jan".
func MonthAbbrev(t time.Time) string {
	return t.Format(monthAbbrevLayout)
}

// IsContactAreaColumn reports whether a source column is a damage flag.
func IsContactAreaColumn(name string) bool {
	return strings.HasPrefix(name, ContactAreaPrefix)
}

// DamageLocationLabel strips every "SV Contact Area - " occurrence from a flag
// column name: "SV Contact Area - Front Left" -> "Front Left".
func DamageLocationLabel(column string) string {
	return strings.ReplaceAll(column, contactAreaLabelPrefix, "")
}

// IsDamaged reports whether a flag cell marks its area as damaged.
func IsDamaged(flag Field) bool {
	return flag.Valid && flag.Value == DamagedFlag
}

package pipeline

import (
	"github.com/couchcryptid/incident-dashboard/internal/domain"
)

// WindowMonths is the number of calendar months the month-indexed charts cover.
const WindowMonths = 12

// RecentWindow selects the incidents dated within the WindowMonths calendar
// months ending at the latest valid incident date. Incidents without a date
// are excluded. ok is false when no incident has a date.
func RecentWindow(incidents []domain.Incident) (recent []domain.Incident, w Window, ok bool) {
	recent = []domain.Incident{}

	for _, inc := range incidents {
		if inc.IncidentDate == nil {
			continue
		}
		if !ok || inc.IncidentDate.After(w.End) {
			w.End = *inc.IncidentDate
			ok = true
		}
	}
	if !ok {
		return recent, Window{}, false
	}

	w.Start = w.End.AddDate(0, -(WindowMonths - 1), 0)
	for _, inc := range incidents {
		if inc.IncidentDate == nil {
			continue
		}
		d := *inc.IncidentDate
		if d.Before(w.Start) || d.After(w.End) {
			continue
		}
		recent = append(recent, inc)
	}
	w.Rows = len(recent)

	return recent, w, true
}

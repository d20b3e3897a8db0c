package pipeline

import (
	"sort"

	"github.com/couchcryptid/incident-dashboard/internal/domain"
)

// ContactAreaFlag is one melted (state, damage location, flag) row.
type ContactAreaFlag struct {
	State    domain.Field
	Location string
	Flag     domain.Field
}

// MeltContactAreas reshapes every incident's contact area columns into one
// row per (incident, column), labelled with the stripped location name.
func MeltContactAreas(incidents []domain.Incident) []ContactAreaFlag {
	out := []ContactAreaFlag{}
	for _, inc := range incidents {
		for _, area := range inc.ContactAreas {
			out = append(out, ContactAreaFlag{
				State:    inc.State,
				Location: domain.DamageLocationLabel(area.Column),
				Flag:     area.Flag,
			})
		}
	}
	return out
}

// DamageLocations counts damaged flags per (state, location), ordered by
// state then location. Rows with a missing state are skipped.
func DamageLocations(flags []ContactAreaFlag) []DamageLocationAggregate {
	type key struct{ state, location string }

	counts := make(map[key]int)
	for _, f := range flags {
		if !domain.IsDamaged(f.Flag) || !f.State.Valid {
			continue
		}
		counts[key{f.State.Value, f.Location}]++
	}

	out := make([]DamageLocationAggregate, 0, len(counts))
	for k, n := range counts {
		out = append(out, DamageLocationAggregate{State: k.state, Location: k.location, Crashes: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].State != out[j].State {
			return out[i].State < out[j].State
		}
		return out[i].Location < out[j].Location
	})
	return out
}

// PivotDamageLocations widens the long damage table into a state x location
// matrix with 0 for missing combinations. Rows and columns are sorted.
func PivotDamageLocations(rows []DamageLocationAggregate) DamageLocationPivot {
	stateIdx := make(map[string]int)
	locIdx := make(map[string]int)
	states := []string{}
	locations := []string{}

	for _, r := range rows {
		if _, ok := stateIdx[r.State]; !ok {
			stateIdx[r.State] = 0
			states = append(states, r.State)
		}
		if _, ok := locIdx[r.Location]; !ok {
			locIdx[r.Location] = 0
			locations = append(locations, r.Location)
		}
	}
	sort.Strings(states)
	sort.Strings(locations)
	for i, s := range states {
		stateIdx[s] = i
	}
	for i, l := range locations {
		locIdx[l] = i
	}

	counts := make([][]int, len(states))
	for i := range counts {
		counts[i] = make([]int, len(locations))
	}
	for _, r := range rows {
		counts[stateIdx[r.State]][locIdx[r.Location]] += r.Crashes
	}

	return DamageLocationPivot{States: states, Locations: locations, Counts: counts}
}

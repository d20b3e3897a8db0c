package pipeline

import (
	"sort"

	"github.com/couchcryptid/incident-dashboard/internal/domain"
)

// StateCounts counts incidents per trimmed state, ordered by state.
// Rows with a missing state are skipped.
func StateCounts(incidents []domain.Incident) []StateAggregate {
	counts := make(map[string]int)
	for _, inc := range incidents {
		if !inc.State.Valid {
			continue
		}
		counts[domain.TrimState(inc.State.Value)]++
	}

	out := make([]StateAggregate, 0, len(counts))
	for state, n := range counts {
		out = append(out, StateAggregate{State: state, Crashes: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].State < out[j].State })
	return out
}

// EntityCounts ranks reporting entities by frequency, most frequent first.
// Ties keep the order in which the entities first appear.
func EntityCounts(incidents []domain.Incident) []EntityAggregate {
	index := make(map[string]int)
	out := []EntityAggregate{}
	for _, inc := range incidents {
		if !inc.ReportingEntity.Valid {
			continue
		}
		name := inc.ReportingEntity.Value
		i, seen := index[name]
		if !seen {
			i = len(out)
			index[name] = i
			out = append(out, EntityAggregate{ReportingEntity: name})
		}
		out[i].Crashes++
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Crashes > out[j].Crashes })
	return out
}

// StateEntityCounts cross-tabulates state and reporting entity, ordered by
// state then entity. Rows missing either key are skipped. State is not
// trimmed here.
func StateEntityCounts(incidents []domain.Incident) []StateEntityAggregate {
	type key struct{ state, entity string }

	counts := make(map[key]int)
	for _, inc := range incidents {
		if !inc.State.Valid || !inc.ReportingEntity.Valid {
			continue
		}
		counts[key{inc.State.Value, inc.ReportingEntity.Value}]++
	}

	out := make([]StateEntityAggregate, 0, len(counts))
	for k, n := range counts {
		out = append(out, StateEntityAggregate{State: k.state, ReportingEntity: k.entity, Crashes: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].State != out[j].State {
			return out[i].State < out[j].State
		}
		return out[i].ReportingEntity < out[j].ReportingEntity
	})
	return out
}

package pipeline

import (
	"sort"

	"github.com/couchcryptid/incident-dashboard/internal/domain"
)

// RollingWindow is the trailing window of the rolling average.
const RollingWindow = 3

// MonthlyCounts groups dated incidents by their "January 2023" month label
// and returns the series in chronological order with a 3-month rolling
// average attached. The sort key is parsed back from the label. Undated
// incidents are skipped.
func MonthlyCounts(incidents []domain.Incident) []MonthlyAggregate {
	counts := make(map[string]int)
	for _, inc := range incidents {
		if inc.IncidentDate == nil {
			continue
		}
		counts[domain.MonthLabel(*inc.IncidentDate)]++
	}

	series := make([]MonthlyAggregate, 0, len(counts))
	for label, n := range counts {
		month, err := domain.ParseMonthLabel(label)
		if err != nil {
			continue
		}
		series = append(series, MonthlyAggregate{
			Month:       label,
			Crashes:     n,
			Date:        month,
			Year:        month.Year(),
			MonthAbbrev: domain.MonthAbbrev(month),
		})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	values := make([]int, len(series))
	for i, m := range series {
		values[i] = m.Crashes
	}
	for i, avg := range RollingMean(values, RollingWindow) {
		series[i].RollingAverage = avg
	}

	return series
}

// RollingMean returns the trailing mean of values over up to window points.
// The first positions average whatever points are available instead of
// producing nothing.
func RollingMean(values []int, window int) []float64 {
	out := make([]float64, len(values))
	if window < 1 {
		window = 1
	}

	sum := 0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := min(i+1, window)
		out[i] = float64(sum) / float64(n)
	}
	return out
}

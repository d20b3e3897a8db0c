package pipeline

import (
	"sort"

	"github.com/couchcryptid/incident-dashboard/internal/domain"
)

// BuildCalendar pivots the monthly series into a year x month grid. Columns
// are always Jan..Dec; combinations absent from the series are 0.
func BuildCalendar(monthly []MonthlyAggregate) CalendarPivot {
	months := make([]string, len(domain.MonthAbbrevs))
	copy(months, domain.MonthAbbrevs[:])

	rowIndex := make(map[int]int)
	years := []int{}
	for _, m := range monthly {
		if _, seen := rowIndex[m.Year]; !seen {
			rowIndex[m.Year] = len(years)
			years = append(years, m.Year)
		}
	}
	sort.Ints(years)
	for i, y := range years {
		rowIndex[y] = i
	}

	counts := make([][]int, len(years))
	for i := range counts {
		counts[i] = make([]int, len(months))
	}
	for _, m := range monthly {
		col := int(m.Date.Month()) - 1
		counts[rowIndex[m.Year]][col] += m.Crashes
	}

	return CalendarPivot{Months: months, Years: years, Counts: counts}
}

// Package xlsx exports a report as an Excel workbook with one sheet per table.
package xlsx

import (
	"fmt"
	"io"

	"github.com/couchcryptid/incident-dashboard/internal/pipeline"
	"github.com/xuri/excelize/v2"
)

// Sheet names, in workbook order.
const (
	SheetMonthly         = "Monthly"
	SheetStates          = "States"
	SheetEntities        = "Entities"
	SheetStateEntities   = "State Entities"
	SheetCalendar        = "Calendar"
	SheetDamageLocations = "Damage Locations"
	SheetDamagePivot     = "Damage Pivot"
)

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type sheet struct {
	name   string
	header []any
	rows   [][]any
}

// Write encodes r as a workbook to w.
func Write(w io.Writer, r *pipeline.Report) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, s := range sheets(r) {
		if i == 0 {
			// Reuse the default sheet so the workbook has no empty first tab.
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, bold); err != nil {
			return fmt.Errorf("write sheet %s: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	if err := f.SetSheetRow(s.name, "A1", &s.header); err != nil {
		return err
	}
	if err := f.SetRowStyle(s.name, 1, 1, headerStyle); err != nil {
		return err
	}
	if err := f.SetPanes(s.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func sheets(r *pipeline.Report) []sheet {
	monthly := sheet{name: SheetMonthly, header: []any{"Month", "Crashes", "Rolling Avg", "Year", "Month Abbrev"}}
	for _, m := range r.Monthly {
		monthly.rows = append(monthly.rows, []any{m.Month, m.Crashes, m.RollingAverage, m.Year, m.MonthAbbrev})
	}

	states := sheet{name: SheetStates, header: []any{"State", "Crashes"}}
	for _, s := range r.States {
		states.rows = append(states.rows, []any{s.State, s.Crashes})
	}

	entities := sheet{name: SheetEntities, header: []any{"Reporting Entity", "Crashes"}}
	for _, e := range r.Entities {
		entities.rows = append(entities.rows, []any{e.ReportingEntity, e.Crashes})
	}

	stateEntities := sheet{name: SheetStateEntities, header: []any{"State", "Reporting Entity", "Crashes"}}
	for _, se := range r.StateEntities {
		stateEntities.rows = append(stateEntities.rows, []any{se.State, se.ReportingEntity, se.Crashes})
	}

	calendar := sheet{name: SheetCalendar, header: []any{"Year"}}
	for _, m := range r.Calendar.Months {
		calendar.header = append(calendar.header, m)
	}
	for i, year := range r.Calendar.Years {
		row := []any{year}
		for _, n := range r.Calendar.Counts[i] {
			row = append(row, n)
		}
		calendar.rows = append(calendar.rows, row)
	}

	damage := sheet{name: SheetDamageLocations, header: []any{"State", "Damage Location", "Crashes"}}
	for _, d := range r.DamageLocations {
		damage.rows = append(damage.rows, []any{d.State, d.Location, d.Crashes})
	}

	pivot := sheet{name: SheetDamagePivot, header: []any{"State"}}
	for _, loc := range r.DamagePivot.Locations {
		pivot.header = append(pivot.header, loc)
	}
	for i, state := range r.DamagePivot.States {
		row := []any{state}
		for _, n := range r.DamagePivot.Counts[i] {
			row = append(row, n)
		}
		pivot.rows = append(pivot.rows, row)
	}

	return []sheet{monthly, states, entities, stateEntities, calendar, damage, pivot}
}

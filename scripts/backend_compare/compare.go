package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/noah-isme/absensi-karyawan/internal/models"
	"github.com/noah-isme/absensi-karyawan/internal/reconcile"
	"github.com/noah-isme/absensi-karyawan/internal/repository"
	"github.com/noah-isme/absensi-karyawan/pkg/config"
)

type difference struct {
	EmployeeID int
	Name       string
	Field      string
	Sheets     string
	Postgres   string
}

func summarize(ctx context.Context, store repository.RowStore, backend config.BackendConfig, loc *time.Location, year int, month time.Month) (map[int]models.MonthlySummary, error) {
	employees, _, err := repository.NewEmployeeRepository(store, backend.EmployeeSheet, nil).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	records, _, err := repository.NewAttendanceRepository(store, backend.AttendanceSheet, loc, nil).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	daily, _ := reconcile.CollapseDaily(records, employees, loc)
	rows, _ := reconcile.SummarizeMonth(daily, employees, year, month)

	out := make(map[int]models.MonthlySummary, len(rows))
	for _, row := range rows {
		out[row.EmployeeID] = row
	}
	return out, nil
}

func compareSummaries(sheetSide, pgSide map[int]models.MonthlySummary) []difference {
	ids := make(map[int]struct{}, len(sheetSide)+len(pgSide))
	for id := range sheetSide {
		ids[id] = struct{}{}
	}
	for id := range pgSide {
		ids[id] = struct{}{}
	}
	ordered := make([]int, 0, len(ids))
	for id := range ids {
		ordered = append(ordered, id)
	}
	sort.Ints(ordered)

	var diffs []difference
	for _, id := range ordered {
		a, inSheets := sheetSide[id]
		b, inPostgres := pgSide[id]
		switch {
		case !inSheets:
			diffs = append(diffs, difference{EmployeeID: id, Name: b.EmployeeName, Field: "employee", Sheets: "missing", Postgres: "present"})
			continue
		case !inPostgres:
			diffs = append(diffs, difference{EmployeeID: id, Name: a.EmployeeName, Field: "employee", Sheets: "present", Postgres: "missing"})
			continue
		}
		add := func(field string, x, y int) {
			if x != y {
				diffs = append(diffs, difference{EmployeeID: id, Name: a.EmployeeName, Field: field, Sheets: fmt.Sprint(x), Postgres: fmt.Sprint(y)})
			}
		}
		add("total_production", a.TotalProduction, b.TotalProduction)
		add("days_recorded", a.DaysRecorded, b.DaysRecorded)
		add("unrecognized", a.Unrecognized, b.Unrecognized)
		for _, status := range models.AttendanceStatuses {
			add(string(status), a.StatusCounts[status], b.StatusCounts[status])
		}
	}
	return diffs
}

func printReport(w io.Writer, year, month, sheetCount, pgCount int, diffs []difference) {
	fmt.Fprintf(w, "Backend Compare Report %04d-%02d\n", year, month)
	fmt.Fprintln(w, "==============================")
	fmt.Fprintf(w, "Employees: sheets=%d postgres=%d\n", sheetCount, pgCount)
	for _, d := range diffs {
		fmt.Fprintf(w, "[DIFF] #%d %s %s: sheets=%s postgres=%s\n", d.EmployeeID, d.Name, d.Field, d.Sheets, d.Postgres)
	}
	fmt.Fprintf(w, "Differences: %d\n", len(diffs))
}

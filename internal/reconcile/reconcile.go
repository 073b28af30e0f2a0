// Package reconcile turns raw attendance rows into one authoritative record per
// employee and day, and rolls those records up into monthly summaries.
//
// Every function is pure: callers pass the employee set and the raw rows they
// fetched, and the package keeps no state between calls.
package reconcile

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/absensi-karyawan/internal/models"
)

type dailyKey struct {
	employeeID int
	day        models.Day
}

// CollapseDaily picks, for every (employee, local day) pair, the record with the
// latest timestamp. Records sharing a timestamp are ordered by arrival, so the one
// fetched last wins. Rows with an invalid timestamp or an unknown employee are
// skipped and reported.
func CollapseDaily(records []models.AttendanceRecord, employees []models.Employee, loc *time.Location) ([]models.DailyRecord, []models.DataQualityWarning) {
	if loc == nil {
		loc = time.UTC
	}
	index := models.IndexEmployees(employees)
	var warnings []models.DataQualityWarning

	winners := make(map[dailyKey]*models.DailyRecord)
	for _, rec := range records {
		if !rec.TimestampValid {
			warnings = append(warnings, models.DataQualityWarning{
				Kind:       models.WarningInvalidTimestamp,
				Row:        rec.Row,
				EmployeeID: rec.EmployeeID,
				Message:    "row skipped: timestamp could not be parsed",
			})
			continue
		}
		employee, ok := index[rec.EmployeeID]
		if !ok {
			warnings = append(warnings, models.DataQualityWarning{
				Kind:       models.WarningUnknownEmployee,
				Row:        rec.Row,
				EmployeeID: rec.EmployeeID,
				Message:    fmt.Sprintf("row skipped: employee %d does not exist", rec.EmployeeID),
			})
			continue
		}

		key := dailyKey{employeeID: rec.EmployeeID, day: models.DayOf(rec.Timestamp, loc)}
		current, seen := winners[key]
		if !seen {
			winners[key] = &models.DailyRecord{
				EmployeeID:   employee.ID,
				EmployeeName: employee.Name,
				Day:          key.day,
				Status:       rec.Status,
				Production:   rec.Production,
				RecordedAt:   rec.Timestamp,
				Entries:      1,
			}
			continue
		}
		current.Entries++
		// Equal timestamps fall through to the later arrival.
		if rec.Timestamp.Before(current.RecordedAt) {
			continue
		}
		current.Status = rec.Status
		current.Production = rec.Production
		current.RecordedAt = rec.Timestamp
	}

	daily := make([]models.DailyRecord, 0, len(winners))
	for _, rec := range winners {
		daily = append(daily, *rec)
	}
	sort.Slice(daily, func(i, j int) bool {
		a, b := daily[i], daily[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.EmployeeName != b.EmployeeName {
			return a.EmployeeName < b.EmployeeName
		}
		return a.EmployeeID < b.EmployeeID
	})
	return daily, warnings
}

// SummarizeMonth counts statuses and sums production per employee for the given
// month. Every employee gets a row, sorted by name. Statuses outside the known
// set are counted in the Unrecognized bucket and reported.
func SummarizeMonth(daily []models.DailyRecord, employees []models.Employee, year int, month time.Month) ([]models.MonthlySummary, []models.DataQualityWarning) {
	var warnings []models.DataQualityWarning

	byEmployee := make(map[int]*models.MonthlySummary, len(employees))
	summaries := make([]*models.MonthlySummary, 0, len(employees))
	for _, e := range employees {
		if _, dup := byEmployee[e.ID]; dup {
			continue
		}
		summary := &models.MonthlySummary{
			EmployeeID:   e.ID,
			EmployeeName: e.Name,
			StatusCounts: emptyCounts(),
		}
		byEmployee[e.ID] = summary
		summaries = append(summaries, summary)
	}

	for _, rec := range daily {
		if !rec.Day.InMonth(year, month) {
			continue
		}
		summary, ok := byEmployee[rec.EmployeeID]
		if !ok {
			warnings = append(warnings, models.DataQualityWarning{
				Kind:       models.WarningUnknownEmployee,
				EmployeeID: rec.EmployeeID,
				Value:      rec.Day.String(),
				Message:    fmt.Sprintf("daily record skipped: employee %d does not exist", rec.EmployeeID),
			})
			continue
		}
		summary.DaysRecorded++
		summary.TotalProduction += rec.Production
		if rec.Status.Valid() {
			summary.StatusCounts[rec.Status]++
			continue
		}
		summary.Unrecognized++
		warnings = append(warnings, unrecognized(rec, "counted as unrecognized"))
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].EmployeeName != summaries[j].EmployeeName {
			return summaries[i].EmployeeName < summaries[j].EmployeeName
		}
		return summaries[i].EmployeeID < summaries[j].EmployeeID
	})

	out := make([]models.MonthlySummary, len(summaries))
	for i, s := range summaries {
		out[i] = *s
	}
	return out, warnings
}

// DayView returns the current status of every employee on day. Employees with no
// record are reported as blank with zero production and Recorded=false. Records
// with a status outside the known set are shown as stored and reported.
func DayView(daily []models.DailyRecord, employees []models.Employee, day models.Day) ([]models.DayStatus, []models.DataQualityWarning) {
	var warnings []models.DataQualityWarning
	recorded := make(map[int]models.DailyRecord)
	for _, rec := range daily {
		if rec.Day == day {
			recorded[rec.EmployeeID] = rec
		}
	}

	view := make([]models.DayStatus, 0, len(employees))
	for _, e := range employees {
		status := models.DayStatus{
			EmployeeID:   e.ID,
			EmployeeName: e.Name,
			Day:          day,
			Status:       models.StatusBlank,
		}
		if rec, ok := recorded[e.ID]; ok {
			status.Status = rec.Status
			status.Production = rec.Production
			status.Recorded = true
			if !rec.Status.Valid() {
				warnings = append(warnings, unrecognized(rec, "shown as stored"))
			}
		}
		view = append(view, status)
	}
	sort.SliceStable(view, func(i, j int) bool {
		if view[i].EmployeeName != view[j].EmployeeName {
			return view[i].EmployeeName < view[j].EmployeeName
		}
		return view[i].EmployeeID < view[j].EmployeeID
	})
	return view, warnings
}

// DailyLog filters daily records to [from, to], newest day first. Records with
// an unknown status are kept and reported.
func DailyLog(daily []models.DailyRecord, from, to models.Day) ([]models.DailyRecord, []models.DataQualityWarning) {
	var warnings []models.DataQualityWarning
	out := make([]models.DailyRecord, 0, len(daily))
	for _, rec := range daily {
		if !rec.Day.Between(from, to) {
			continue
		}
		out = append(out, rec)
		if !rec.Status.Valid() {
			warnings = append(warnings, unrecognized(rec, "shown as stored"))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day > out[j].Day
		}
		if out[i].EmployeeName != out[j].EmployeeName {
			return out[i].EmployeeName < out[j].EmployeeName
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out, warnings
}

func unrecognized(rec models.DailyRecord, outcome string) models.DataQualityWarning {
	return models.DataQualityWarning{
		Kind:       models.WarningUnrecognizedStatus,
		EmployeeID: rec.EmployeeID,
		Value:      string(rec.Status),
		Message:    fmt.Sprintf("status %q on %s %s", rec.Status, rec.Day, outcome),
	}
}

// Span returns the first and last day covered by the records.
func Span(daily []models.DailyRecord) (first, last models.Day, ok bool) {
	for _, rec := range daily {
		if !ok || rec.Day < first {
			first = rec.Day
		}
		if !ok || rec.Day > last {
			last = rec.Day
		}
		ok = true
	}
	return first, last, ok
}

func emptyCounts() map[models.AttendanceStatus]int {
	counts := make(map[models.AttendanceStatus]int, len(models.AttendanceStatuses))
	for _, s := range models.AttendanceStatuses {
		counts[s] = 0
	}
	return counts
}

package models

import (
	"strings"
	"time"
)

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	StatusPresent  AttendanceStatus = "masuk"
	StatusSick     AttendanceStatus = "sakit"
	StatusLeave    AttendanceStatus = "izin"
	StatusAbsent   AttendanceStatus = "alpha"
	StatusHalfDay  AttendanceStatus = "1/2 hari"
	StatusResigned AttendanceStatus = "resign"
	StatusDayOff   AttendanceStatus = "libur"
	StatusBlank    AttendanceStatus = "kosong"
)

// AttendanceStatuses lists the supported statuses in display order.
var AttendanceStatuses = []AttendanceStatus{
	StatusPresent,
	StatusSick,
	StatusLeave,
	StatusAbsent,
	StatusHalfDay,
	StatusResigned,
	StatusDayOff,
	StatusBlank,
}

var statusLabels = map[AttendanceStatus]string{
	StatusPresent:  "Masuk",
	StatusSick:     "Sakit",
	StatusLeave:    "Izin",
	StatusAbsent:   "Alpha",
	StatusHalfDay:  "1/2 Hari",
	StatusResigned: "Resign",
	StatusDayOff:   "Libur",
	StatusBlank:    "Kosong",
}

// NormalizeStatus trims and lower-cases a raw status value.
func NormalizeStatus(raw string) AttendanceStatus {
	return AttendanceStatus(strings.ToLower(strings.TrimSpace(raw)))
}

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the human readable name used in exports.
func (s AttendanceStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// BearsProduction reports whether a day with this status may carry a production quantity.
func (s AttendanceStatus) BearsProduction() bool {
	return s == StatusPresent
}

// AttendanceRecord is one raw row of the attendance sheet.
type AttendanceRecord struct {
	Row            int              `json:"row"`
	Timestamp      time.Time        `json:"timestamp"`
	TimestampValid bool             `json:"timestamp_valid"`
	EmployeeID     int              `json:"employee_id"`
	Status         AttendanceStatus `json:"status"`
	Production     int              `json:"production"`
}

// AttendanceEntry is the payload appended for a single day.
type AttendanceEntry struct {
	Day        Day
	EmployeeID int
	Status     AttendanceStatus
	Production int
}

// DailyRecord is the authoritative value for one employee on one day.
type DailyRecord struct {
	EmployeeID   int              `json:"employee_id"`
	EmployeeName string           `json:"employee_name"`
	Day          Day              `json:"day"`
	Status       AttendanceStatus `json:"status"`
	Production   int              `json:"production"`
	RecordedAt   time.Time        `json:"recorded_at"`
	Entries      int              `json:"entries"`
}

// MonthlySummary rolls up one employee's daily records for a month.
type MonthlySummary struct {
	EmployeeID      int                      `json:"employee_id"`
	EmployeeName    string                   `json:"employee_name"`
	StatusCounts    map[AttendanceStatus]int `json:"status_counts"`
	Unrecognized    int                      `json:"unrecognized"`
	DaysRecorded    int                      `json:"days_recorded"`
	TotalProduction int                      `json:"total_production"`
}

// DayStatus is the current state of one employee on a given day.
type DayStatus struct {
	EmployeeID   int              `json:"employee_id"`
	EmployeeName string           `json:"employee_name"`
	Day          Day              `json:"day"`
	Status       AttendanceStatus `json:"status"`
	Production   int              `json:"production"`
	Recorded     bool             `json:"recorded"`
}

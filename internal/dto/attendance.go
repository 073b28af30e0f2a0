package dto

import "github.com/noah-isme/absensi-karyawan/internal/models"

// RecordAttendanceRequest is the payload of POST /attendance.
type RecordAttendanceRequest struct {
	Date       string `json:"date" validate:"required,calendar_day"`
	EmployeeID int    `json:"employee_id" validate:"required,gt=0"`
	Status     string `json:"status" validate:"required,attendance_status"`
	Production int    `json:"production" validate:"gte=0"`
}

// SaveDayItem is one employee in a batch save.
type SaveDayItem struct {
	EmployeeID int    `json:"employee_id" validate:"required,gt=0"`
	Status     string `json:"status" validate:"required,attendance_status"`
	Production int    `json:"production" validate:"gte=0"`
}

// SaveDayRequest is the payload of POST /attendance/day.
type SaveDayRequest struct {
	Date  string        `json:"date" validate:"required,calendar_day"`
	Items []SaveDayItem `json:"items" validate:"required,min=1,dive"`
}

// BatchItemResult reports what happened to one batch item.
type BatchItemResult struct {
	EmployeeID   int                     `json:"employee_id"`
	EmployeeName string                  `json:"employee_name,omitempty"`
	Status       models.AttendanceStatus `json:"status"`
	Production   int                     `json:"production"`
	Outcome      string                  `json:"outcome"`
	Reason       string                  `json:"reason,omitempty"`
}

// SaveDayResponse groups batch item results by outcome.
type SaveDayResponse struct {
	Date    models.Day        `json:"date"`
	Saved   []BatchItemResult `json:"saved"`
	Skipped []BatchItemResult `json:"skipped"`
	Failed  []BatchItemResult `json:"failed"`
}

// FailedNames lists the employees whose append failed.
func (r *SaveDayResponse) FailedNames() []string {
	names := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		names = append(names, f.EmployeeName)
	}
	return names
}

// MonthlyQuery selects a calendar month. Zero values mean the current local month.
type MonthlyQuery struct {
	Year  int `form:"year" validate:"omitempty,gte=1900,lte=9999"`
	Month int `form:"month" validate:"omitempty,gte=1,lte=12"`
}

// MonthlyReport is the response of GET /attendance/monthly.
type MonthlyReport struct {
	Year  int                     `json:"year"`
	Month int                     `json:"month"`
	Rows  []models.MonthlySummary `json:"rows"`
}

// DailyQuery bounds the daily log. Empty bounds default to the data span.
type DailyQuery struct {
	From string `form:"from" validate:"omitempty,calendar_day"`
	To   string `form:"to" validate:"omitempty,calendar_day"`
}

// DailyLogReport is the response of GET /attendance/daily.
type DailyLogReport struct {
	From models.Day           `json:"from"`
	To   models.Day           `json:"to"`
	Rows []models.DailyRecord `json:"rows"`
}

// DayReport is the response of GET /attendance/day.
type DayReport struct {
	Date      models.Day         `json:"date"`
	Employees []models.DayStatus `json:"employees"`
}

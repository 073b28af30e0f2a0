package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/absensi-karyawan/internal/dto"
	"github.com/noah-isme/absensi-karyawan/internal/models"
	"github.com/noah-isme/absensi-karyawan/internal/service"
	"github.com/noah-isme/absensi-karyawan/pkg/export"
	"github.com/noah-isme/absensi-karyawan/pkg/response"
)

type attendanceService interface {
	Record(ctx context.Context, req dto.RecordAttendanceRequest) (*models.AttendanceEntry, error)
	SaveDay(ctx context.Context, req dto.SaveDayRequest) (*dto.SaveDayResponse, error)
	Day(ctx context.Context, day string) (*dto.DayReport, []models.DataQualityWarning, error)
	Monthly(ctx context.Context, query dto.MonthlyQuery) (*dto.MonthlyReport, []models.DataQualityWarning, error)
	Daily(ctx context.Context, query dto.DailyQuery) (*dto.DailyLogReport, []models.DataQualityWarning, error)
}

type exportService interface {
	Monthly(report *dto.MonthlyReport, format export.Format) (*service.ExportFile, error)
	Daily(report *dto.DailyLogReport, format export.Format) (*service.ExportFile, error)
}

// AttendanceHandler exposes attendance capture and reporting endpoints.
type AttendanceHandler struct {
	service attendanceService
	exports exportService
}

// NewAttendanceHandler builds a new handler.
func NewAttendanceHandler(service attendanceService, exports exportService) *AttendanceHandler {
	return &AttendanceHandler{service: service, exports: exports}
}

// Record godoc
// @Summary Record one attendance entry
// @Description Appends a new row; the latest row of a day wins. Statuses other than masuk store zero production.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.RecordAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req dto.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "invalid attendance payload")
		return
	}
	entry, err := h.service.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Day godoc
// @Summary Current status of every employee on one day
// @Tags Attendance
// @Produce json
// @Param date query string false "Day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /attendance/day [get]
func (h *AttendanceHandler) Day(c *gin.Context) {
	report, warnings, err := h.service.Day(c.Request.Context(), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithWarnings(c, http.StatusOK, report, warnings)
}

// SaveDay godoc
// @Summary Save a whole day at once
// @Description Unchanged items are skipped; each remaining item is appended independently and reported as saved or failed.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.SaveDayRequest true "Day payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/day [post]
func (h *AttendanceHandler) SaveDay(c *gin.Context) {
	var req dto.SaveDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "invalid day payload")
		return
	}
	result, err := h.service.SaveDay(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Daily godoc
// @Summary Daily log
// @Tags Attendance
// @Produce json
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/daily [get]
func (h *AttendanceHandler) Daily(c *gin.Context) {
	report, warnings, ok := h.daily(c)
	if !ok {
		return
	}
	respondWithWarnings(c, http.StatusOK, report, warnings)
}

// DailyExport godoc
// @Summary Download the daily log
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /attendance/daily/export [get]
func (h *AttendanceHandler) DailyExport(c *gin.Context) {
	format, err := service.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	report, _, ok := h.daily(c)
	if !ok {
		return
	}
	file, err := h.exports.Daily(report, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Monthly godoc
// @Summary Monthly summary
// @Tags Attendance
// @Produce json
// @Param year query int false "Year, defaults to the current one"
// @Param month query int false "Month 1-12, defaults to the current one"
// @Success 200 {object} response.Envelope
// @Router /attendance/monthly [get]
func (h *AttendanceHandler) Monthly(c *gin.Context) {
	report, warnings, ok := h.monthly(c)
	if !ok {
		return
	}
	respondWithWarnings(c, http.StatusOK, report, warnings)
}

// MonthlyExport godoc
// @Summary Download the monthly summary
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Param year query int false "Year"
// @Param month query int false "Month 1-12"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /attendance/monthly/export [get]
func (h *AttendanceHandler) MonthlyExport(c *gin.Context) {
	format, err := service.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	report, _, ok := h.monthly(c)
	if !ok {
		return
	}
	file, err := h.exports.Monthly(report, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func (h *AttendanceHandler) daily(c *gin.Context) (*dto.DailyLogReport, []models.DataQualityWarning, bool) {
	var query dto.DailyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err, "invalid daily log query")
		return nil, nil, false
	}
	report, warnings, err := h.service.Daily(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return nil, nil, false
	}
	return report, warnings, true
}

func (h *AttendanceHandler) monthly(c *gin.Context) (*dto.MonthlyReport, []models.DataQualityWarning, bool) {
	var query dto.MonthlyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err, "year and month must be numbers")
		return nil, nil, false
	}
	report, warnings, err := h.service.Monthly(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return nil, nil, false
	}
	return report, warnings, true
}

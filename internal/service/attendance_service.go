package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/absensi-karyawan/internal/dto"
	"github.com/noah-isme/absensi-karyawan/internal/models"
	"github.com/noah-isme/absensi-karyawan/internal/reconcile"
	appErrors "github.com/noah-isme/absensi-karyawan/pkg/errors"
)

const (
	attendanceSnapshotKey = "absensi:attendance:snapshot"
	attendanceCachePrefix = "absensi:attendance:*"
)

// Batch item outcomes.
const (
	BatchSaved   = "saved"
	BatchSkipped = "skipped"
	BatchFailed  = "failed"
)

type attendanceRepository interface {
	List(ctx context.Context) ([]models.AttendanceRecord, []models.DataQualityWarning, error)
	Append(ctx context.Context, entry models.AttendanceEntry) error
}

type employeeDirectory interface {
	List(ctx context.Context) ([]models.Employee, []models.DataQualityWarning, error)
	Lookup(ctx context.Context, id int) (models.Employee, error)
}

// AttendanceSnapshot is every raw attendance row as last fetched.
type AttendanceSnapshot struct {
	Records  []models.AttendanceRecord   `json:"records"`
	Warnings []models.DataQualityWarning `json:"warnings"`
}

// AttendanceService applies the write rules for attendance entries and builds
// the daily and monthly views from the cached attendance snapshot.
type AttendanceService struct {
	repo      attendanceRepository
	employees employeeDirectory
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewAttendanceService constructs the service. loc is the timezone calendar
// days are computed in.
func NewAttendanceService(
	repo attendanceRepository,
	employees employeeDirectory,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	loc *time.Location,
	logger *zap.Logger,
) *AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		repo:      repo,
		employees: employees,
		cache:     cache,
		metrics:   metrics,
		validator: withAttendanceRules(validate),
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

// Location returns the timezone calendar days are computed in.
func (s *AttendanceService) Location() *time.Location {
	return s.loc
}

// Today returns the current local day.
func (s *AttendanceService) Today() models.Day {
	return models.DayOf(s.now(), s.loc)
}

// Snapshot returns the attendance rows, reading through the cache.
func (s *AttendanceService) Snapshot(ctx context.Context) (*AttendanceSnapshot, error) {
	var snapshot AttendanceSnapshot
	hit, err := s.cache.Get(ctx, attendanceSnapshotKey, &snapshot)
	if err == nil && hit {
		return &snapshot, nil
	}

	records, warnings, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	snapshot = AttendanceSnapshot{Records: records, Warnings: warnings}
	if err := s.cache.Set(ctx, attendanceSnapshotKey, snapshot); err != nil {
		s.logger.Debug("attendance snapshot served uncached", zap.Int("records", len(records)), zap.Error(err))
	}
	return &snapshot, nil
}

// Record appends one entry. Statuses other than present always carry zero
// production.
func (s *AttendanceService) Record(ctx context.Context, req dto.RecordAttendanceRequest) (*models.AttendanceEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}
	day, _ := models.ParseDay(req.Date)
	employee, err := s.employees.Lookup(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	entry := newEntry(day, employee.ID, models.NormalizeStatus(req.Status), req.Production)
	if err := s.repo.Append(ctx, entry); err != nil {
		return nil, err
	}
	s.logger.Info("attendance recorded",
		zap.String("day", day.String()),
		zap.Int("employee_id", employee.ID),
		zap.String("status", string(entry.Status)),
		zap.Int("production", entry.Production),
	)
	s.invalidate(ctx)
	return &entry, nil
}

// SaveDay records a whole day at once. Items equal to what is already recorded
// are skipped; the rest are appended one by one and reported individually. An
// employee with no record for the day is always written, even as blank.
func (s *AttendanceService) SaveDay(ctx context.Context, req dto.SaveDayRequest) (*dto.SaveDayResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}
	day, _ := models.ParseDay(req.Date)

	view, _, err := s.dayView(ctx, day)
	if err != nil {
		return nil, err
	}
	current := make(map[int]models.DayStatus, len(view))
	for _, v := range view {
		current[v.EmployeeID] = v
	}

	result := &dto.SaveDayResponse{
		Date:    day,
		Saved:   []dto.BatchItemResult{},
		Skipped: []dto.BatchItemResult{},
		Failed:  []dto.BatchItemResult{},
	}
	for _, item := range req.Items {
		entry := newEntry(day, item.EmployeeID, models.NormalizeStatus(item.Status), item.Production)
		outcome := dto.BatchItemResult{
			EmployeeID: entry.EmployeeID,
			Status:     entry.Status,
			Production: entry.Production,
		}

		state, known := current[entry.EmployeeID]
		switch {
		case !known:
			outcome.Outcome = BatchFailed
			outcome.Reason = fmt.Sprintf("employee %d not found", entry.EmployeeID)
		case state.Recorded && state.Status == entry.Status && state.Production == entry.Production:
			outcome.EmployeeName = state.EmployeeName
			outcome.Outcome = BatchSkipped
		default:
			outcome.EmployeeName = state.EmployeeName
			if err := s.repo.Append(ctx, entry); err != nil {
				outcome.Outcome = BatchFailed
				outcome.Reason = appErrors.FromError(err).Message
				s.logger.Warn("batch item failed", zap.String("day", day.String()), zap.Int("employee_id", entry.EmployeeID), zap.Error(err))
				break
			}
			outcome.Outcome = BatchSaved
			state.Status, state.Production, state.Recorded = entry.Status, entry.Production, true
			current[entry.EmployeeID] = state
		}

		s.metrics.RecordBatchItem(outcome.Outcome)
		switch outcome.Outcome {
		case BatchSaved:
			result.Saved = append(result.Saved, outcome)
		case BatchSkipped:
			result.Skipped = append(result.Skipped, outcome)
		default:
			result.Failed = append(result.Failed, outcome)
		}
	}

	if len(result.Saved) > 0 {
		s.invalidate(ctx)
	}
	s.logger.Info("day saved",
		zap.String("day", day.String()),
		zap.Int("saved", len(result.Saved)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Strings("failed", result.FailedNames()),
	)
	return result, nil
}

// Day returns every employee's status on day.
func (s *AttendanceService) Day(ctx context.Context, raw string) (*dto.DayReport, []models.DataQualityWarning, error) {
	day := s.Today()
	if raw != "" {
		parsed, err := models.ParseDay(raw)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		day = parsed
	}
	view, warnings, err := s.dayView(ctx, day)
	if err != nil {
		return nil, nil, err
	}
	return &dto.DayReport{Date: day, Employees: view}, warnings, nil
}

// Monthly summarizes one month for every employee. A zero year or month means
// the current local one.
func (s *AttendanceService) Monthly(ctx context.Context, query dto.MonthlyQuery) (*dto.MonthlyReport, []models.DataQualityWarning, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, invalidPayload(err)
	}
	now := s.now().In(s.loc)
	if query.Year == 0 {
		query.Year = now.Year()
	}
	if query.Month == 0 {
		query.Month = int(now.Month())
	}

	employees, daily, warnings, err := s.collapse(ctx)
	if err != nil {
		return nil, nil, err
	}
	rows, summaryWarnings := reconcile.SummarizeMonth(daily, employees, query.Year, time.Month(query.Month))
	warnings = s.report(append(warnings, summaryWarnings...))
	return &dto.MonthlyReport{Year: query.Year, Month: query.Month, Rows: rows}, warnings, nil
}

// Daily lists the authoritative daily records between two days, newest first.
// Missing bounds default to the first and last recorded day.
func (s *AttendanceService) Daily(ctx context.Context, query dto.DailyQuery) (*dto.DailyLogReport, []models.DataQualityWarning, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, invalidPayload(err)
	}
	from, to := models.Day(query.From), models.Day(query.To)
	if from != "" && to != "" && from > to {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
	}

	_, daily, warnings, err := s.collapse(ctx)
	if err != nil {
		return nil, nil, err
	}
	if first, last, ok := reconcile.Span(daily); ok {
		if from == "" {
			from = first
		}
		if to == "" {
			to = last
		}
	}
	rows, logWarnings := reconcile.DailyLog(daily, from, to)
	return &dto.DailyLogReport{From: from, To: to, Rows: rows}, s.report(append(warnings, logWarnings...)), nil
}

func (s *AttendanceService) dayView(ctx context.Context, day models.Day) ([]models.DayStatus, []models.DataQualityWarning, error) {
	employees, daily, warnings, err := s.collapse(ctx)
	if err != nil {
		return nil, nil, err
	}
	view, viewWarnings := reconcile.DayView(daily, employees, day)
	return view, s.report(append(warnings, viewWarnings...)), nil
}

// collapse loads both snapshots and reduces the attendance rows to one record
// per employee and day.
func (s *AttendanceService) collapse(ctx context.Context) ([]models.Employee, []models.DailyRecord, []models.DataQualityWarning, error) {
	employees, employeeWarnings, err := s.employees.List(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	daily, collapseWarnings := reconcile.CollapseDaily(snapshot.Records, employees, s.loc)

	warnings := make([]models.DataQualityWarning, 0, len(employeeWarnings)+len(snapshot.Warnings)+len(collapseWarnings))
	warnings = append(warnings, employeeWarnings...)
	warnings = append(warnings, snapshot.Warnings...)
	warnings = append(warnings, collapseWarnings...)
	return employees, daily, warnings, nil
}

func (s *AttendanceService) report(warnings []models.DataQualityWarning) []models.DataQualityWarning {
	s.metrics.SetWarnings(warnings)
	if len(warnings) > 0 {
		s.logger.Warn("attendance data has quality issues", zap.Int("warnings", len(warnings)))
	}
	return warnings
}

func (s *AttendanceService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, attendanceCachePrefix); err != nil {
		s.logger.Error("attendance cache left stale after write", zap.Error(err))
	}
}

func newEntry(day models.Day, employeeID int, status models.AttendanceStatus, production int) models.AttendanceEntry {
	if !status.BearsProduction() {
		production = 0
	}
	return models.AttendanceEntry{Day: day, EmployeeID: employeeID, Status: status, Production: production}
}

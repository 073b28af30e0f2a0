package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/absensi-karyawan/internal/dto"
	"github.com/noah-isme/absensi-karyawan/internal/models"
	"github.com/noah-isme/absensi-karyawan/internal/repository"
	appErrors "github.com/noah-isme/absensi-karyawan/pkg/errors"
)

var wib = time.FixedZone("UTC+7", 7*60*60)

type attendanceRepoStub struct {
	records   []models.AttendanceRecord
	lists     int
	appended  []models.AttendanceEntry
	failFor   map[int]error
	seq       int
	appendErr error
}

func (s *attendanceRepoStub) List(ctx context.Context) ([]models.AttendanceRecord, []models.DataQualityWarning, error) {
	s.lists++
	out := make([]models.AttendanceRecord, len(s.records))
	copy(out, s.records)
	return out, nil, nil
}

// Append stores the entry as a new row stamped at local noon of its day, one
// second after the previous append.
func (s *attendanceRepoStub) Append(ctx context.Context, entry models.AttendanceEntry) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	if err := s.failFor[entry.EmployeeID]; err != nil {
		return err
	}
	s.appended = append(s.appended, entry)
	s.seq++
	d := entry.Day.Time()
	noon := time.Date(d.Year(), d.Month(), d.Day(), 12, 0, s.seq, 0, wib)
	s.records = append(s.records, models.AttendanceRecord{
		Row:            len(s.records) + 1,
		Timestamp:      noon.UTC(),
		TimestampValid: true,
		EmployeeID:     entry.EmployeeID,
		Status:         entry.Status,
		Production:     entry.Production,
	})
	return nil
}

func newAttendanceServiceForTest(t *testing.T, employees []models.Employee, records []models.AttendanceRecord) (*AttendanceService, *attendanceRepoStub) {
	t.Helper()
	repo := &attendanceRepoStub{records: records}
	directory := NewEmployeeService(&employeeRepoStub{employees: employees}, nil, nil)
	cache := NewCacheService(repository.NewMemoryCacheRepository(0), nil, 0, nil)
	svc := NewAttendanceService(repo, directory, cache, NewMetricsService(), nil, wib, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 20, 20, 0, 0, 0, time.UTC) }
	return svc, repo
}

func rec(ts string, employeeID int, status models.AttendanceStatus, production int) models.AttendanceRecord {
	parsed, _ := time.Parse(time.RFC3339, ts)
	return models.AttendanceRecord{Timestamp: parsed, TimestampValid: true, EmployeeID: employeeID, Status: status, Production: production}
}

func TestAttendanceServiceSnapshotIsCachedUntilWrite(t *testing.T) {
	svc, repo := newAttendanceServiceForTest(t, []models.Employee{{ID: 1, Name: "Ana"}}, nil)
	ctx := context.Background()

	_, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	_, err = svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lists)

	_, err = svc.Record(ctx, dto.RecordAttendanceRequest{Date: "2024-05-01", EmployeeID: 1, Status: "masuk", Production: 3})
	require.NoError(t, err)

	snapshot, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lists)
	assert.Len(t, snapshot.Records, 1)
}

func TestAttendanceServiceFailedWriteKeepsCache(t *testing.T) {
	svc, repo := newAttendanceServiceForTest(t, []models.Employee{{ID: 1, Name: "Ana"}}, nil)
	repo.appendErr = appErrors.ErrBackendUnavailable
	ctx := context.Background()

	_, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	_, err = svc.Record(ctx, dto.RecordAttendanceRequest{Date: "2024-05-01", EmployeeID: 1, Status: "masuk"})
	assert.True(t, errors.Is(err, appErrors.ErrBackendUnavailable))

	_, err = svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lists)
}

func TestAttendanceServiceRecordZeroesNonProductionStatuses(t *testing.T) {
	svc, repo := newAttendanceServiceForTest(t, []models.Employee{{ID: 1, Name: "Ana"}}, nil)

	entry, err := svc.Record(context.Background(), dto.RecordAttendanceRequest{Date: "2024-05-01", EmployeeID: 1, Status: "Sakit", Production: 9})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSick, entry.Status)
	assert.Zero(t, entry.Production)
	assert.Zero(t, repo.appended[0].Production)

	entry, err = svc.Record(context.Background(), dto.RecordAttendanceRequest{Date: "2024-05-02", EmployeeID: 1, Status: "1/2 hari", Production: 4})
	require.NoError(t, err)
	assert.Zero(t, entry.Production)
}

func TestAttendanceServiceRecordValidation(t *testing.T) {
	svc, repo := newAttendanceServiceForTest(t, []models.Employee{{ID: 1, Name: "Ana"}}, nil)
	ctx := context.Background()

	cases := []dto.RecordAttendanceRequest{
		{Date: "01-05-2024", EmployeeID: 1, Status: "masuk"},
		{Date: "2024-05-01", EmployeeID: 1, Status: "lembur"},
		{Date: "2024-05-01", EmployeeID: 1, Status: "masuk", Production: -1},
		{Date: "2024-05-01", EmployeeID: 0, Status: "masuk"},
	}
	for _, req := range cases {
		_, err := svc.Record(ctx, req)
		assert.True(t, errors.Is(err, appErrors.ErrValidation), "%+v", req)
	}

	_, err := svc.Record(ctx, dto.RecordAttendanceRequest{Date: "2024-05-01", EmployeeID: 42, Status: "masuk"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, repo.appended)
}

func TestAttendanceServiceSaveDay(t *testing.T) {
	employees := []models.Employee{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Budi"}, {ID: 3, Name: "Citra"}, {ID: 4, Name: "Dewi"}}
	records := []models.AttendanceRecord{
		rec("2024-05-01T02:00:00Z", 1, models.StatusPresent, 10),
		rec("2024-05-01T02:00:00Z", 2, models.StatusSick, 0),
	}
	svc, repo := newAttendanceServiceForTest(t, employees, records)
	repo.failFor = map[int]error{4: appErrors.Clone(appErrors.ErrBackendApplication, "quota exceeded")}
	ctx := context.Background()

	_, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	result, err := svc.SaveDay(ctx, dto.SaveDayRequest{Date: "2024-05-01", Items: []dto.SaveDayItem{
		{EmployeeID: 1, Status: "masuk", Production: 10},
		{EmployeeID: 2, Status: "izin", Production: 5},
		{EmployeeID: 3, Status: "kosong"},
		{EmployeeID: 4, Status: "masuk", Production: 2},
		{EmployeeID: 99, Status: "masuk"},
	}})
	require.NoError(t, err)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "Ana", result.Skipped[0].EmployeeName)

	require.Len(t, result.Saved, 2)
	assert.Equal(t, "Budi", result.Saved[0].EmployeeName)
	assert.Zero(t, result.Saved[0].Production)
	assert.Equal(t, "Citra", result.Saved[1].EmployeeName)
	assert.Equal(t, models.StatusBlank, result.Saved[1].Status)

	require.Len(t, result.Failed, 2)
	assert.Equal(t, []string{"Dewi", ""}, result.FailedNames())
	assert.Equal(t, "quota exceeded", result.Failed[0].Reason)
	assert.Contains(t, result.Failed[1].Reason, "99")

	assert.Len(t, repo.appended, 2)
	assert.Equal(t, 2, repo.lists)

	day, _, err := svc.Day(ctx, "2024-05-01")
	require.NoError(t, err)
	byName := map[string]models.DayStatus{}
	for _, v := range day.Employees {
		byName[v.EmployeeName] = v
	}
	assert.Equal(t, models.StatusLeave, byName["Budi"].Status)
	assert.True(t, byName["Citra"].Recorded)
	assert.False(t, byName["Dewi"].Recorded)
}

func TestAttendanceServiceSaveDayAllSkippedKeepsCache(t *testing.T) {
	employees := []models.Employee{{ID: 1, Name: "Ana"}}
	records := []models.AttendanceRecord{rec("2024-05-01T02:00:00Z", 1, models.StatusPresent, 10)}
	svc, repo := newAttendanceServiceForTest(t, employees, records)
	ctx := context.Background()

	result, err := svc.SaveDay(ctx, dto.SaveDayRequest{Date: "2024-05-01", Items: []dto.SaveDayItem{{EmployeeID: 1, Status: "masuk", Production: 10}}})
	require.NoError(t, err)
	assert.Len(t, result.Skipped, 1)
	assert.Empty(t, repo.appended)

	_, err = svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lists)
}

func TestAttendanceServiceMonthlyDefaultsToLocalMonth(t *testing.T) {
	employees := []models.Employee{{ID: 2, Name: "Budi"}, {ID: 1, Name: "Ana"}}
	records := []models.AttendanceRecord{
		rec("2024-05-01T02:00:00Z", 1, models.StatusPresent, 10),
		rec("2024-05-01T10:00:00Z", 1, models.StatusPresent, 12),
		rec("2024-05-02T02:00:00Z", 7, models.StatusPresent, 50),
	}
	svc, _ := newAttendanceServiceForTest(t, employees, records)

	report, warnings, err := svc.Monthly(context.Background(), dto.MonthlyQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2024, report.Year)
	assert.Equal(t, 5, report.Month)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, "Ana", report.Rows[0].EmployeeName)
	assert.Equal(t, 12, report.Rows[0].TotalProduction)
	assert.Zero(t, report.Rows[1].TotalProduction)
	require.Len(t, warnings, 1)
	assert.Equal(t, models.WarningUnknownEmployee, warnings[0].Kind)

	_, _, err = svc.Monthly(context.Background(), dto.MonthlyQuery{Year: 2024, Month: 13})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAttendanceServiceDailyDefaultsToSpan(t *testing.T) {
	employees := []models.Employee{{ID: 1, Name: "Ana"}}
	records := []models.AttendanceRecord{
		rec("2024-05-01T02:00:00Z", 1, models.StatusPresent, 1),
		rec("2024-05-04T02:00:00Z", 1, models.StatusPresent, 2),
	}
	svc, _ := newAttendanceServiceForTest(t, employees, records)
	ctx := context.Background()

	report, _, err := svc.Daily(ctx, dto.DailyQuery{})
	require.NoError(t, err)
	assert.Equal(t, models.Day("2024-05-01"), report.From)
	assert.Equal(t, models.Day("2024-05-04"), report.To)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, models.Day("2024-05-04"), report.Rows[0].Day)

	report, _, err = svc.Daily(ctx, dto.DailyQuery{From: "2024-05-02"})
	require.NoError(t, err)
	assert.Len(t, report.Rows, 1)

	_, _, err = svc.Daily(ctx, dto.DailyQuery{From: "2024-05-04", To: "2024-05-01"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAttendanceServiceDayDefaultsToToday(t *testing.T) {
	svc, _ := newAttendanceServiceForTest(t, []models.Employee{{ID: 1, Name: "Ana"}}, nil)

	// 2024-05-20 20:00 UTC is already the 21st in UTC+7.
	report, _, err := svc.Day(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, models.Day("2024-05-21"), report.Date)
	assert.Equal(t, models.StatusBlank, report.Employees[0].Status)

	_, _, err = svc.Day(context.Background(), "kemarin")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAttendanceServiceSnapshotSurvivesCacheWriteFailure(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	repo := &attendanceRepoStub{records: []models.AttendanceRecord{
		rec("2024-05-01T02:00:00Z", 1, models.StatusPresent, 4),
	}}
	directory := NewEmployeeService(&employeeRepoStub{employees: []models.Employee{{ID: 1, Name: "Ana"}}}, nil, nil)
	cache := NewCacheService(brokenCache{}, nil, 0, nil)
	svc := NewAttendanceService(repo, directory, cache, nil, nil, wib, zap.New(core))

	snapshot, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snapshot.Records, 1)
	assert.Equal(t, 1, logs.FilterMessage("attendance snapshot served uncached").Len())
}

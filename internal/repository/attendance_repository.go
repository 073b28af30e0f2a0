package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/absensi-karyawan/internal/models"
	"github.com/noah-isme/absensi-karyawan/pkg/sheets"
)

// AttendanceRepository reads and appends rows of the attendance sheet. Rows
// are never updated in place; a correction is a newer row.
type AttendanceRepository struct {
	store  RowStore
	sheet  string
	loc    *time.Location
	logger *zap.Logger
}

// NewAttendanceRepository creates a new instance of AttendanceRepository. Cells
// written without an offset, such as the bare day of an appended entry, are read
// as wall-clock time in loc.
func NewAttendanceRepository(store RowStore, sheet string, loc *time.Location, logger *zap.Logger) *AttendanceRepository {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceRepository{store: store, sheet: sheet, loc: loc, logger: logger}
}

// List returns every attendance row in arrival order. Unparseable timestamps
// are flagged on the record rather than dropped.
func (r *AttendanceRepository) List(ctx context.Context) ([]models.AttendanceRecord, []models.DataQualityWarning, error) {
	rows, err := r.store.Fetch(ctx, r.sheet)
	if err != nil {
		return nil, nil, err
	}

	records := make([]models.AttendanceRecord, 0, len(rows))
	var warnings []models.DataQualityWarning
	for i, row := range rows {
		rec := models.AttendanceRecord{Row: i + 1}
		rec.Timestamp, rec.TimestampValid = parseTimestamp(row[ColTimestamp], r.loc)
		rec.EmployeeID, _ = toInt(row[ColEmployeeID])
		rec.Status = models.NormalizeStatus(toString(row[ColStatus]))

		production, _ := toInt(row[ColProduction])
		if production < 0 {
			warnings = append(warnings, models.DataQualityWarning{
				Kind:       models.WarningInvalidProduction,
				Sheet:      r.sheet,
				Row:        rec.Row,
				EmployeeID: rec.EmployeeID,
				Value:      toString(row[ColProduction]),
				Message:    fmt.Sprintf("negative production %d read as 0", production),
			})
			production = 0
		}
		rec.Production = production
		records = append(records, rec)
	}
	for i := range warnings {
		r.logger.Warn("attendance row coerced", zap.Int("row", warnings[i].Row), zap.String("kind", string(warnings[i].Kind)))
	}
	return records, warnings, nil
}

// Append writes one attendance entry.
func (r *AttendanceRepository) Append(ctx context.Context, entry models.AttendanceEntry) error {
	_, err := r.store.Append(ctx, r.sheet, sheets.Row{
		KeyDate:       entry.Day.String(),
		KeyEmployeeID: entry.EmployeeID,
		KeyStatus:     string(entry.Status),
		KeyProduction: entry.Production,
	})
	return err
}

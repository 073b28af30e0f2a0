package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/absensi-karyawan/internal/models"
	appErrors "github.com/noah-isme/absensi-karyawan/pkg/errors"
	"github.com/noah-isme/absensi-karyawan/pkg/sheets"
)

// EmployeeRepository reads and appends rows of the employee sheet.
type EmployeeRepository struct {
	store  RowStore
	sheet  string
	logger *zap.Logger
}

// NewEmployeeRepository creates a new instance of EmployeeRepository.
func NewEmployeeRepository(store RowStore, sheet string, logger *zap.Logger) *EmployeeRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeRepository{store: store, sheet: sheet, logger: logger}
}

// List returns every employee with a usable id. Rows with a missing or
// repeated id are left out and reported.
func (r *EmployeeRepository) List(ctx context.Context) ([]models.Employee, []models.DataQualityWarning, error) {
	rows, err := r.store.Fetch(ctx, r.sheet)
	if err != nil {
		return nil, nil, err
	}

	employees := make([]models.Employee, 0, len(rows))
	var warnings []models.DataQualityWarning
	seen := make(map[int]struct{}, len(rows))
	for i, row := range rows {
		rowNumber := i + 1
		name := toString(row[ColEmployeeName])
		id, _ := toInt(row[ColEmployeeID])
		if id <= 0 {
			warnings = append(warnings, models.DataQualityWarning{
				Kind:    models.WarningInvalidEmployeeID,
				Sheet:   r.sheet,
				Row:     rowNumber,
				Value:   toString(row[ColEmployeeID]),
				Message: fmt.Sprintf("employee %q skipped: id is not a positive number", name),
			})
			continue
		}
		if _, dup := seen[id]; dup {
			warnings = append(warnings, models.DataQualityWarning{
				Kind:       models.WarningDuplicateEmployeeID,
				Sheet:      r.sheet,
				Row:        rowNumber,
				EmployeeID: id,
				Value:      name,
				Message:    fmt.Sprintf("employee %q skipped: id %d already used", name, id),
			})
			continue
		}
		seen[id] = struct{}{}
		employees = append(employees, models.Employee{ID: id, Name: name})
	}

	if len(warnings) > 0 {
		r.logger.Warn("employee sheet has unusable rows", zap.String("sheet", r.sheet), zap.Int("count", len(warnings)))
	}
	return employees, warnings, nil
}

// Create appends a new employee and returns it with the id the backend assigned.
func (r *EmployeeRepository) Create(ctx context.Context, name string) (*models.Employee, error) {
	data, err := r.store.Append(ctx, r.sheet, sheets.Row{KeyEmployeeName: name})
	if err != nil {
		return nil, err
	}
	id, ok := toInt(data[KeyID])
	if !ok || id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrBackendFormat, "backend did not return the new employee id")
	}
	return &models.Employee{ID: id, Name: name}, nil
}

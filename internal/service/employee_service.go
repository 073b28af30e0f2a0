package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/absensi-karyawan/internal/dto"
	"github.com/noah-isme/absensi-karyawan/internal/models"
	appErrors "github.com/noah-isme/absensi-karyawan/pkg/errors"
)

type employeeRepository interface {
	List(ctx context.Context) ([]models.Employee, []models.DataQualityWarning, error)
	Create(ctx context.Context, name string) (*models.Employee, error)
}

// EmployeeService holds the employee snapshot for the process. The snapshot
// is loaded on first use and reloaded only after a successful add.
type EmployeeService struct {
	repo      employeeRepository
	validator *validator.Validate
	logger    *zap.Logger

	mu        sync.Mutex
	loaded    bool
	employees []models.Employee
	warnings  []models.DataQualityWarning
}

// NewEmployeeService constructs the service.
func NewEmployeeService(repo employeeRepository, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, validator: withAttendanceRules(validate), logger: logger}
}

// List returns the employee snapshot and the warnings found when it was loaded.
func (s *EmployeeService) List(ctx context.Context) ([]models.Employee, []models.DataQualityWarning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, nil, err
	}
	return s.copySnapshot()
}

// Lookup returns the employee with the given id.
func (s *EmployeeService) Lookup(ctx context.Context, id int) (models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return models.Employee{}, err
	}
	for _, e := range s.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return models.Employee{}, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("employee %d not found", id))
}

// Add registers a new employee. Names are trimmed and must be unique; a
// duplicate is rejected before anything is sent to the backend.
func (s *EmployeeService) Add(ctx context.Context, req dto.CreateEmployeeRequest) (*models.Employee, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	for _, e := range s.employees {
		if e.Name == req.Name {
			return nil, appErrors.Clone(appErrors.ErrDuplicateName, fmt.Sprintf("employee %q already exists", req.Name))
		}
	}

	created, err := s.repo.Create(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("employee added", zap.Int("employee_id", created.ID), zap.String("name", created.Name))

	if err := s.load(ctx); err != nil {
		s.logger.Warn("employee reload after add failed, keeping local copy", zap.Error(err))
		s.employees = append(s.employees, *created)
	}
	return created, nil
}

// Refresh drops the snapshot and loads it again.
func (s *EmployeeService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *EmployeeService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.load(ctx)
}

func (s *EmployeeService) load(ctx context.Context) error {
	employees, warnings, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	s.employees = employees
	s.warnings = warnings
	s.loaded = true
	s.logger.Debug("employee snapshot loaded", zap.Int("count", len(employees)), zap.Int("warnings", len(warnings)))
	return nil
}

func (s *EmployeeService) copySnapshot() ([]models.Employee, []models.DataQualityWarning, error) {
	employees := make([]models.Employee, len(s.employees))
	copy(employees, s.employees)
	warnings := make([]models.DataQualityWarning, len(s.warnings))
	copy(warnings, s.warnings)
	return employees, warnings, nil
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/absensi-karyawan/internal/dto"
	"github.com/noah-isme/absensi-karyawan/internal/models"
	"github.com/noah-isme/absensi-karyawan/pkg/response"
)

type employeeService interface {
	List(ctx context.Context) ([]models.Employee, []models.DataQualityWarning, error)
	Add(ctx context.Context, req dto.CreateEmployeeRequest) (*models.Employee, error)
}

// EmployeeHandler exposes the employee register.
type EmployeeHandler struct {
	service employeeService
}

// NewEmployeeHandler builds a new handler.
func NewEmployeeHandler(service employeeService) *EmployeeHandler {
	return &EmployeeHandler{service: service}
}

// List godoc
// @Summary List employees
// @Tags Employees
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	employees, warnings, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithWarnings(c, http.StatusOK, dto.EmployeeListResponse{Employees: employees, Total: len(employees)}, warnings)
}

// Create godoc
// @Summary Register an employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param payload body dto.CreateEmployeeRequest true "Employee payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "invalid employee payload")
		return
	}
	employee, err := h.service.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, employee)
}

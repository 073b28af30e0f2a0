package dto

import "github.com/noah-isme/absensi-karyawan/internal/models"

// CreateEmployeeRequest is the payload of POST /employees.
type CreateEmployeeRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// EmployeeListResponse wraps the employee snapshot.
type EmployeeListResponse struct {
	Employees []models.Employee `json:"employees"`
	Total     int               `json:"total"`
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/absensi-karyawan/internal/dto"
	"github.com/noah-isme/absensi-karyawan/internal/models"
	appErrors "github.com/noah-isme/absensi-karyawan/pkg/errors"
)

type employeeServiceMock struct {
	employees []models.Employee
	warnings  []models.DataQualityWarning
	listErr   error
	added     *models.Employee
	addErr    error
	lastAdd   dto.CreateEmployeeRequest
}

func (m *employeeServiceMock) List(ctx context.Context) ([]models.Employee, []models.DataQualityWarning, error) {
	return m.employees, m.warnings, m.listErr
}

func (m *employeeServiceMock) Add(ctx context.Context, req dto.CreateEmployeeRequest) (*models.Employee, error) {
	m.lastAdd = req
	return m.added, m.addErr
}

func TestEmployeeHandlerList(t *testing.T) {
	svc := &employeeServiceMock{
		employees: []models.Employee{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Budi"}},
		warnings:  []models.DataQualityWarning{{Kind: models.WarningInvalidEmployeeID, Row: 3, Message: "bad id"}},
	}
	h := NewEmployeeHandler(svc)
	router := newRouter()
	router.GET("/employees", h.List)

	req, _ := http.NewRequest(http.MethodGet, "/employees", nil)
	w := performRequest(router, req)
	require.Equal(t, http.StatusOK, w.Code)

	env := decode(t, w)
	var body dto.EmployeeListResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, "Budi", body.Employees[1].Name)
	require.Contains(t, env.Meta, "warnings")
	assert.Len(t, env.Meta["warnings"], 1)
}

func TestEmployeeHandlerListBackendError(t *testing.T) {
	svc := &employeeServiceMock{listErr: appErrors.ErrBackendUnavailable}
	h := NewEmployeeHandler(svc)

	c, w := newGinContext(http.MethodGet, "/employees", nil)
	h.List(c)

	assert.Equal(t, appErrors.ErrBackendUnavailable.Status, w.Code)
	assert.Equal(t, appErrors.ErrBackendUnavailable.Code, decode(t, w).Error["code"])
}

func TestEmployeeHandlerCreate(t *testing.T) {
	svc := &employeeServiceMock{added: &models.Employee{ID: 9, Name: "Citra"}}
	h := NewEmployeeHandler(svc)

	c, w := newGinContext(http.MethodPost, "/employees", []byte(`{"name":"Citra"}`))
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Citra", svc.lastAdd.Name)
	assert.JSONEq(t, `{"id":9,"name":"Citra"}`, string(decode(t, w).Data))
}

func TestEmployeeHandlerCreateDuplicate(t *testing.T) {
	svc := &employeeServiceMock{addErr: appErrors.Clone(appErrors.ErrDuplicateName, "employee Citra already exists")}
	h := NewEmployeeHandler(svc)

	c, w := newGinContext(http.MethodPost, "/employees", []byte(`{"name":"Citra"}`))
	h.Create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestEmployeeHandlerCreateMalformedBody(t *testing.T) {
	h := NewEmployeeHandler(&employeeServiceMock{})

	c, w := newGinContext(http.MethodPost, "/employees", []byte(`{"name":`))
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decode(t, w).Error["code"])
}

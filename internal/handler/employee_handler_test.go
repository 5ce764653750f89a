package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/staffkit/workforce-api/internal/models"
	"github.com/staffkit/workforce-api/internal/service"
	appErrors "github.com/staffkit/workforce-api/pkg/errors"
)

type employeeServiceMock struct {
	emp      *models.Employee
	rows     []models.Employee
	page     *models.Pagination
	err      error
	lastList service.EmployeeListRequest
}

func (m *employeeServiceMock) Create(ctx context.Context, req service.CreateEmployeeRequest) (*models.Employee, error) {
	return m.emp, m.err
}

func (m *employeeServiceMock) Get(ctx context.Context, id string) (*models.Employee, error) {
	return m.emp, m.err
}

func (m *employeeServiceMock) Update(ctx context.Context, id string, req service.UpdateEmployeeRequest) (*models.Employee, error) {
	return m.emp, m.err
}

func (m *employeeServiceMock) List(ctx context.Context, req service.EmployeeListRequest) ([]models.Employee, *models.Pagination, error) {
	m.lastList = req
	return m.rows, m.page, m.err
}

func TestEmployeeHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &employeeServiceMock{
		emp: &models.Employee{ID: "emp-1", FullName: "Ayu Lestari", Email: "ayu@example.com"},
	}
	handler := NewEmployeeHandler(mockSvc)

	payload, _ := json.Marshal(service.CreateEmployeeRequest{
		FullName:   "Ayu Lestari",
		Email:      "ayu@example.com",
		Department: "engineering",
		Position:   "backend",
	})
	c, w := newGinContext(http.MethodPost, "/employees", payload)

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestEmployeeHandlerCreateDuplicateEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &employeeServiceMock{err: appErrors.Clone(appErrors.ErrConflict, "email already registered")}
	handler := NewEmployeeHandler(mockSvc)

	payload, _ := json.Marshal(service.CreateEmployeeRequest{
		FullName:   "Ayu Lestari",
		Email:      "ayu@example.com",
		Department: "engineering",
		Position:   "backend",
	})
	c, w := newGinContext(http.MethodPost, "/employees", payload)

	handler.Create(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestEmployeeHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &employeeServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "employee not found")}
	handler := NewEmployeeHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/employees/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestEmployeeHandlerListParsesFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &employeeServiceMock{rows: []models.Employee{{ID: "emp-1"}}}
	handler := NewEmployeeHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/employees?department=engineering&active=true&search=ayu", nil)

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "engineering", mockSvc.lastList.Department)
	require.NotNil(t, mockSvc.lastList.Active)
	require.True(t, *mockSvc.lastList.Active)
	require.Equal(t, "ayu", mockSvc.lastList.Search)
}

func TestEmployeeHandlerListBadActive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEmployeeHandler(&employeeServiceMock{})

	c, w := newGinContext(http.MethodGet, "/employees?active=maybe", nil)

	handler.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staffkit/workforce-api/internal/models"
	appErrors "github.com/staffkit/workforce-api/pkg/errors"
)

type employeeStoreStub struct {
	employees map[string]*models.Employee
}

func newEmployeeStoreStub() *employeeStoreStub {
	return &employeeStoreStub{employees: map[string]*models.Employee{}}
}

func (s *employeeStoreStub) Create(ctx context.Context, emp *models.Employee) (*models.Employee, error) {
	emp.ID = uuid.NewString()
	s.employees[emp.ID] = emp
	return emp, nil
}

func (s *employeeStoreStub) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	emp, ok := s.employees[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return emp, nil
}

func (s *employeeStoreStub) Update(ctx context.Context, emp *models.Employee) (*models.Employee, error) {
	if _, ok := s.employees[emp.ID]; !ok {
		return nil, sql.ErrNoRows
	}
	s.employees[emp.ID] = emp
	return emp, nil
}

func (s *employeeStoreStub) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	var out []models.Employee
	for _, emp := range s.employees {
		if filter.Department != "" && emp.Department != filter.Department {
			continue
		}
		out = append(out, *emp)
	}
	return out, len(out), nil
}

func TestEmployeeCreateDefaultsActive(t *testing.T) {
	svc := NewEmployeeService(newEmployeeStoreStub(), nil, zap.NewNop())

	emp, err := svc.Create(context.Background(), CreateEmployeeRequest{
		FullName:   "Raka Pratama",
		Email:      "Raka@Example.com",
		Department: "Operations",
		Position:   "Coordinator",
	})
	require.NoError(t, err)
	assert.True(t, emp.Active)
	assert.Equal(t, "raka@example.com", emp.Email)
	assert.NotEmpty(t, emp.ID)
}

func TestEmployeeCreateRejectsBadEmail(t *testing.T) {
	svc := NewEmployeeService(newEmployeeStoreStub(), nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateEmployeeRequest{
		FullName:   "Raka Pratama",
		Email:      "not-an-email",
		Department: "Operations",
		Position:   "Coordinator",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEmployeeUpdateAppliesPartialChanges(t *testing.T) {
	store := newEmployeeStoreStub()
	svc := NewEmployeeService(store, nil, zap.NewNop())

	emp, err := svc.Create(context.Background(), CreateEmployeeRequest{
		FullName:   "Raka Pratama",
		Email:      "raka@example.com",
		Department: "Operations",
		Position:   "Coordinator",
	})
	require.NoError(t, err)

	position := "Lead Coordinator"
	inactive := false
	updated, err := svc.Update(context.Background(), emp.ID, UpdateEmployeeRequest{
		Position: &position,
		Active:   &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Lead Coordinator", updated.Position)
	assert.False(t, updated.Active)
	assert.Equal(t, "Raka Pratama", updated.FullName)
}

func TestEmployeeGetMissing(t *testing.T) {
	svc := NewEmployeeService(newEmployeeStoreStub(), nil, zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEmployeeListPaginationDefaults(t *testing.T) {
	store := newEmployeeStoreStub()
	svc := NewEmployeeService(store, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateEmployeeRequest{
		FullName:   "Raka Pratama",
		Email:      "raka@example.com",
		Department: "Operations",
		Position:   "Coordinator",
	})
	require.NoError(t, err)

	rows, pagination, err := svc.List(context.Background(), EmployeeListRequest{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 50, pagination.PageSize)
}

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

type leaveStoreStub struct {
	leaves map[string]*models.LeaveRange
}

func newLeaveStoreStub() *leaveStoreStub {
	return &leaveStoreStub{leaves: map[string]*models.LeaveRange{}}
}

func (s *leaveStoreStub) Create(ctx context.Context, leave *models.LeaveRange) (*models.LeaveRange, error) {
	leave.ID = uuid.NewString()
	s.leaves[leave.ID] = leave
	return leave, nil
}

func (s *leaveStoreStub) GetByID(ctx context.Context, id string) (*models.LeaveRange, error) {
	leave, ok := s.leaves[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return leave, nil
}

func (s *leaveStoreStub) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRange, int, error) {
	var out []models.LeaveRange
	for _, leave := range s.leaves {
		if filter.EmployeeID != "" && leave.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != nil && leave.Status != *filter.Status {
			continue
		}
		out = append(out, *leave)
	}
	return out, len(out), nil
}

func (s *leaveStoreStub) UpdateStatus(ctx context.Context, id string, status models.LeaveStatus) (*models.LeaveRange, error) {
	leave, ok := s.leaves[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	leave.Status = status
	return leave, nil
}

func newLeaveServiceForTest(t *testing.T) (*LeaveService, *leaveStoreStub, *invalidatorStub) {
	t.Helper()
	store := newLeaveStoreStub()
	invalidator := &invalidatorStub{}
	return NewLeaveService(store, newEmployeeStub("emp-1"), invalidator, nil, zap.NewNop()), store, invalidator
}

func TestLeaveCreatePending(t *testing.T) {
	svc, _, _ := newLeaveServiceForTest(t)

	leave, err := svc.Create(context.Background(), CreateLeaveRequest{
		EmployeeID: "emp-1",
		Type:       "annual",
		StartDate:  "2025-06-09",
		EndDate:    "2025-06-11",
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusPending, leave.Status)
	assert.Equal(t, models.LeaveTypeAnnual, leave.Type)
}

func TestLeaveCreateRejectsInvertedRange(t *testing.T) {
	svc, _, _ := newLeaveServiceForTest(t)

	_, err := svc.Create(context.Background(), CreateLeaveRequest{
		EmployeeID: "emp-1",
		Type:       "sick",
		StartDate:  "2025-06-11",
		EndDate:    "2025-06-09",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLeaveCreateRejectsUnknownType(t *testing.T) {
	svc, _, _ := newLeaveServiceForTest(t)

	_, err := svc.Create(context.Background(), CreateLeaveRequest{
		EmployeeID: "emp-1",
		Type:       "sabbatical",
		StartDate:  "2025-06-09",
		EndDate:    "2025-06-11",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLeaveCreateUnknownEmployee(t *testing.T) {
	svc, _, _ := newLeaveServiceForTest(t)

	_, err := svc.Create(context.Background(), CreateLeaveRequest{
		EmployeeID: "ghost",
		Type:       "annual",
		StartDate:  "2025-06-09",
		EndDate:    "2025-06-11",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestLeaveApproveInvalidatesReports(t *testing.T) {
	svc, _, invalidator := newLeaveServiceForTest(t)

	leave, err := svc.Create(context.Background(), CreateLeaveRequest{
		EmployeeID: "emp-1",
		Type:       "annual",
		StartDate:  "2025-06-09",
		EndDate:    "2025-06-11",
	})
	require.NoError(t, err)

	updated, err := svc.Decide(context.Background(), leave.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusApproved, updated.Status)
	assert.Contains(t, invalidator.patterns, "report:monthly:emp-1:*")
}

func TestLeaveRejectSkipsInvalidation(t *testing.T) {
	svc, _, invalidator := newLeaveServiceForTest(t)

	leave, err := svc.Create(context.Background(), CreateLeaveRequest{
		EmployeeID: "emp-1",
		Type:       "unpaid",
		StartDate:  "2025-06-09",
		EndDate:    "2025-06-09",
	})
	require.NoError(t, err)

	updated, err := svc.Decide(context.Background(), leave.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusRejected, updated.Status)
	assert.Empty(t, invalidator.patterns)
}

func TestLeaveDecideTwiceConflicts(t *testing.T) {
	svc, _, _ := newLeaveServiceForTest(t)

	leave, err := svc.Create(context.Background(), CreateLeaveRequest{
		EmployeeID: "emp-1",
		Type:       "annual",
		StartDate:  "2025-06-09",
		EndDate:    "2025-06-09",
	})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), leave.ID, true)
	require.NoError(t, err)
	_, err = svc.Decide(context.Background(), leave.ID, false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestLeaveListFiltersStatus(t *testing.T) {
	svc, _, _ := newLeaveServiceForTest(t)

	for _, day := range []string{"2025-06-02", "2025-06-03"} {
		_, err := svc.Create(context.Background(), CreateLeaveRequest{
			EmployeeID: "emp-1",
			Type:       "annual",
			StartDate:  day,
			EndDate:    day,
		})
		require.NoError(t, err)
	}
	pending := "pending"
	rows, pagination, err := svc.List(context.Background(), LeaveListRequest{EmployeeID: "emp-1", Status: &pending})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 2, pagination.TotalCount)

	bogus := "maybe"
	_, _, err = svc.List(context.Background(), LeaveListRequest{Status: &bogus})
	require.Error(t, err)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/staffkit/workforce-api/internal/models"
	"github.com/staffkit/workforce-api/internal/timeclock"
	appErrors "github.com/staffkit/workforce-api/pkg/errors"
)

type leaveStore interface {
	Create(ctx context.Context, leave *models.LeaveRange) (*models.LeaveRange, error)
	GetByID(ctx context.Context, id string) (*models.LeaveRange, error)
	List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRange, int, error)
	UpdateStatus(ctx context.Context, id string, status models.LeaveStatus) (*models.LeaveRange, error)
}

// LeaveService manages leave request workflows.
type LeaveService struct {
	repo      leaveStore
	employees employeeGetter
	cache     reportCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLeaveService constructs the leave service.
func NewLeaveService(repo leaveStore, employees employeeGetter, cache reportCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *LeaveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &LeaveService{repo: repo, employees: employees, cache: cache, validator: validate, logger: logger}
	svc.validator.RegisterValidation("leave_type", func(fl validator.FieldLevel) bool {
		return models.LeaveType(strings.ToLower(fl.Field().String())).Valid()
	})
	return svc
}

// CreateLeaveRequest describes a new leave submission.
type CreateLeaveRequest struct {
	EmployeeID string  `json:"employee_id" validate:"required"`
	Type       string  `json:"type" validate:"required,leave_type"`
	StartDate  string  `json:"start_date" validate:"required"`
	EndDate    string  `json:"end_date" validate:"required"`
	Reason     *string `json:"reason"`
}

// LeaveListRequest filters leave listing.
type LeaveListRequest struct {
	EmployeeID string
	Status     *string
	Type       *string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// Create submits a leave request in pending state.
func (s *LeaveService) Create(ctx context.Context, req CreateLeaveRequest) (*models.LeaveRange, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	start, err := time.Parse(timeclock.DateLayout, req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid start_date, expected YYYY-MM-DD")
	}
	end, err := time.Parse(timeclock.DateLayout, req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid end_date, expected YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not precede start_date")
	}
	if _, err := s.employees.GetByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}

	leave := &models.LeaveRange{
		EmployeeID: req.EmployeeID,
		Type:       models.LeaveType(strings.ToLower(req.Type)),
		StartDate:  start,
		EndDate:    end,
		Status:     models.LeaveStatusPending,
		Reason:     req.Reason,
	}
	stored, err := s.repo.Create(ctx, leave)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create leave request")
	}
	return stored, nil
}

// Get returns one leave request.
func (s *LeaveService) Get(ctx context.Context, id string) (*models.LeaveRange, error) {
	leave, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave request")
	}
	return leave, nil
}

// List returns paginated leave requests.
func (s *LeaveService) List(ctx context.Context, req LeaveListRequest) ([]models.LeaveRange, *models.Pagination, error) {
	var status *models.LeaveStatus
	if req.Status != nil && *req.Status != "" {
		st := models.LeaveStatus(strings.ToLower(*req.Status))
		if !st.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid status filter")
		}
		status = &st
	}
	var leaveType *models.LeaveType
	if req.Type != nil && *req.Type != "" {
		lt := models.LeaveType(strings.ToLower(*req.Type))
		if !lt.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid type filter")
		}
		leaveType = &lt
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 {
		size = 50
	}
	filter := models.LeaveFilter{
		EmployeeID: req.EmployeeID,
		Status:     status,
		Type:       leaveType,
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
		Page:       page,
		PageSize:   size,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leave requests")
	}
	return rows, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Decide approves or rejects a pending leave request. Approval invalidates
// cached reports for the months the range touches.
func (s *LeaveService) Decide(ctx context.Context, id string, approve bool) (*models.LeaveRange, error) {
	leave, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if leave.Status != models.LeaveStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "leave request already decided")
	}
	status := models.LeaveStatusRejected
	if approve {
		status = models.LeaveStatusApproved
	}
	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update leave request")
	}
	if approve && s.cache != nil {
		pattern := fmt.Sprintf("report:monthly:%s:*", leave.EmployeeID)
		if err := s.cache.Invalidate(ctx, pattern); err != nil {
			s.logger.Sugar().Warnw("failed to invalidate report cache", "employee_id", leave.EmployeeID, "error", err)
		}
	}
	return updated, nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/staffkit/workforce-api/internal/models"
	"github.com/staffkit/workforce-api/internal/timeclock"
	appErrors "github.com/staffkit/workforce-api/pkg/errors"
)

type employeeStore interface {
	Create(ctx context.Context, emp *models.Employee) (*models.Employee, error)
	GetByID(ctx context.Context, id string) (*models.Employee, error)
	Update(ctx context.Context, emp *models.Employee) (*models.Employee, error)
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error)
}

// EmployeeService manages employee profiles.
type EmployeeService struct {
	repo      employeeStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEmployeeService constructs the employee service.
func NewEmployeeService(repo employeeStore, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, validator: validate, logger: logger}
}

// CreateEmployeeRequest describes a new employee profile.
type CreateEmployeeRequest struct {
	FullName   string  `json:"full_name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Department string  `json:"department" validate:"required"`
	Position   string  `json:"position" validate:"required"`
	ShiftID    *string `json:"shift_id"`
	JoinedAt   string  `json:"joined_at"`
}

// UpdateEmployeeRequest carries profile mutations.
type UpdateEmployeeRequest struct {
	FullName   *string `json:"full_name"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Department *string `json:"department"`
	Position   *string `json:"position"`
	ShiftID    *string `json:"shift_id"`
	Active     *bool   `json:"active"`
}

// EmployeeListRequest filters employee listing.
type EmployeeListRequest struct {
	Department string
	Active     *bool
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// Create adds an employee profile. Duplicate emails are a conflict.
func (s *EmployeeService) Create(ctx context.Context, req CreateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	joined := time.Now().UTC()
	if req.JoinedAt != "" {
		parsed, err := time.Parse(timeclock.DateLayout, req.JoinedAt)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid joined_at, expected YYYY-MM-DD")
		}
		joined = parsed
	}
	emp := &models.Employee{
		FullName:   req.FullName,
		Email:      strings.ToLower(req.Email),
		Department: req.Department,
		Position:   req.Position,
		ShiftID:    req.ShiftID,
		Active:     true,
		JoinedAt:   joined,
	}
	stored, err := s.repo.Create(ctx, emp)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}
	return stored, nil
}

// Get returns one employee profile.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	emp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return emp, nil
}

// Update applies non-nil mutations to an employee profile.
func (s *EmployeeService) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	emp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.FullName != nil {
		emp.FullName = *req.FullName
	}
	if req.Email != nil {
		emp.Email = strings.ToLower(*req.Email)
	}
	if req.Department != nil {
		emp.Department = *req.Department
	}
	if req.Position != nil {
		emp.Position = *req.Position
	}
	if req.ShiftID != nil {
		emp.ShiftID = req.ShiftID
	}
	if req.Active != nil {
		emp.Active = *req.Active
	}
	stored, err := s.repo.Update(ctx, emp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}
	return stored, nil
}

// List returns paginated employee profiles.
func (s *EmployeeService) List(ctx context.Context, req EmployeeListRequest) ([]models.Employee, *models.Pagination, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 {
		size = 50
	}
	filter := models.EmployeeFilter{
		Department: req.Department,
		Active:     req.Active,
		Search:     req.Search,
		Page:       page,
		PageSize:   size,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	return rows, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/staffkit/workforce-api/internal/models"
)

// LeaveRepository handles persistence for leave requests.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs the repository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

const leaveColumns = `id, employee_id, leave_type, start_date, end_date, status, reason, created_at, updated_at`

// Create inserts a leave request.
func (r *LeaveRepository) Create(ctx context.Context, leave *models.LeaveRange) (*models.LeaveRange, error) {
	now := time.Now().UTC()
	if leave.ID == "" {
		leave.ID = uuid.NewString()
	}
	query := fmt.Sprintf(`INSERT INTO leave_requests (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING %s`, leaveColumns, leaveColumns)
	var stored models.LeaveRange
	if err := r.db.GetContext(ctx, &stored, query,
		leave.ID, leave.EmployeeID, leave.Type, leave.StartDate, leave.EndDate, leave.Status, leave.Reason, now, now,
	); err != nil {
		return nil, fmt.Errorf("create leave request: %w", err)
	}
	return &stored, nil
}

// GetByID fetches a single leave request. Returns sql.ErrNoRows when absent.
func (r *LeaveRepository) GetByID(ctx context.Context, id string) (*models.LeaveRange, error) {
	query := fmt.Sprintf(`SELECT %s FROM leave_requests WHERE id = $1 LIMIT 1`, leaveColumns)
	var leave models.LeaveRange
	if err := r.db.GetContext(ctx, &leave, query, id); err != nil {
		return nil, err
	}
	return &leave, nil
}

// List returns leave requests matching the filter plus the total count.
func (r *LeaveRepository) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRange, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.EmployeeID != "" {
		where = append(where, fmt.Sprintf("employee_id = $%d", len(args)+1))
		args = append(args, filter.EmployeeID)
	}
	if filter.Status != nil && filter.Status.Valid() {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Type != nil && filter.Type.Valid() {
		where = append(where, fmt.Sprintf("leave_type = $%d", len(args)+1))
		args = append(args, *filter.Type)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("end_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("start_date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	whereClause := strings.Join(where, " AND ")

	sortBy := filter.SortBy
	allowedSort := map[string]string{
		"start_date": "start_date",
		"status":     "status",
		"created_at": "created_at",
	}
	sortColumn, ok := allowedSort[sortBy]
	if !ok {
		sortColumn = "start_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM leave_requests WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		leaveColumns, whereClause, sortColumn, order, size, offset)
	var rows []models.LeaveRange
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list leave requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM leave_requests WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count leave requests: %w", err)
	}
	return rows, total, nil
}

// UpdateStatus moves a leave request to a new review state.
func (r *LeaveRepository) UpdateStatus(ctx context.Context, id string, status models.LeaveStatus) (*models.LeaveRange, error) {
	query := fmt.Sprintf(`UPDATE leave_requests SET status = $1, updated_at = $2 WHERE id = $3 RETURNING %s`, leaveColumns)
	var stored models.LeaveRange
	if err := r.db.GetContext(ctx, &stored, query, status, time.Now().UTC(), id); err != nil {
		return nil, err
	}
	return &stored, nil
}

// ListApprovedInRange returns approved leaves for an employee overlapping the
// [from, to] window. This is the report builder's input.
func (r *LeaveRepository) ListApprovedInRange(ctx context.Context, employeeID string, from, to time.Time) ([]models.LeaveRange, error) {
	query := fmt.Sprintf(`SELECT %s FROM leave_requests
WHERE employee_id = $1 AND status = $2 AND start_date <= $3 AND end_date >= $4
ORDER BY start_date ASC`, leaveColumns)
	var rows []models.LeaveRange
	if err := r.db.SelectContext(ctx, &rows, query, employeeID, models.LeaveStatusApproved, to, from); err != nil {
		return nil, fmt.Errorf("list approved leaves: %w", err)
	}
	return rows, nil
}

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

// EmployeeRepository handles persistence for employee profiles.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs the repository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = `id, full_name, email, department, position, shift_id, active, joined_at, created_at, updated_at`

// Create inserts an employee.
func (r *EmployeeRepository) Create(ctx context.Context, emp *models.Employee) (*models.Employee, error) {
	now := time.Now().UTC()
	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}
	query := fmt.Sprintf(`INSERT INTO employees (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING %s`, employeeColumns, employeeColumns)
	var stored models.Employee
	if err := r.db.GetContext(ctx, &stored, query,
		emp.ID, emp.FullName, emp.Email, emp.Department, emp.Position, emp.ShiftID, emp.Active, emp.JoinedAt, now, now,
	); err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}
	return &stored, nil
}

// GetByID fetches one employee. Returns sql.ErrNoRows when absent.
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE id = $1 LIMIT 1`, employeeColumns)
	var emp models.Employee
	if err := r.db.GetContext(ctx, &emp, query, id); err != nil {
		return nil, err
	}
	return &emp, nil
}

// Update overwrites the mutable profile fields.
func (r *EmployeeRepository) Update(ctx context.Context, emp *models.Employee) (*models.Employee, error) {
	query := fmt.Sprintf(`UPDATE employees
SET full_name = $1, email = $2, department = $3, position = $4, shift_id = $5, active = $6, updated_at = $7
WHERE id = $8
RETURNING %s`, employeeColumns)
	var stored models.Employee
	if err := r.db.GetContext(ctx, &stored, query,
		emp.FullName, emp.Email, emp.Department, emp.Position, emp.ShiftID, emp.Active, time.Now().UTC(), emp.ID,
	); err != nil {
		return nil, err
	}
	return &stored, nil
}

// List returns employees matching the filter plus the total count.
func (r *EmployeeRepository) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Department != "" {
		where = append(where, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Active != nil {
		where = append(where, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	whereClause := strings.Join(where, " AND ")

	allowedSort := map[string]string{
		"full_name":  "full_name",
		"joined_at":  "joined_at",
		"created_at": "created_at",
	}
	sortColumn, ok := allowedSort[filter.SortBy]
	if !ok {
		sortColumn = "full_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf(`SELECT %s FROM employees WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		employeeColumns, whereClause, sortColumn, order, size, offset)
	var rows []models.Employee
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM employees WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}
	return rows, total, nil
}

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

// AttendanceRepository handles persistence for attendance days and their
// work/break segments.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const dayColumns = `id, employee_id, shift_id, date, status, late_in, late_in_reason, early_out, early_out_reason, created_at, updated_at`

// GetDay loads one employee's attendance record for a date, including its
// segments and breaks in insertion order. Returns sql.ErrNoRows when absent.
func (r *AttendanceRepository) GetDay(ctx context.Context, employeeID string, date time.Time) (*models.DayAttendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_days WHERE employee_id = $1 AND date = $2 LIMIT 1`, dayColumns)
	var day models.DayAttendance
	if err := r.db.GetContext(ctx, &day, query, employeeID, date); err != nil {
		return nil, err
	}
	if err := r.attachSegments(ctx, []*models.DayAttendance{&day}); err != nil {
		return nil, err
	}
	return &day, nil
}

// ListRange returns attendance records for an employee between from and to
// inclusive, ascending by date, with segments and breaks attached.
func (r *AttendanceRepository) ListRange(ctx context.Context, employeeID string, from, to time.Time) ([]models.DayAttendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_days
WHERE employee_id = $1 AND date >= $2 AND date <= $3
ORDER BY date ASC`, dayColumns)
	var days []models.DayAttendance
	if err := r.db.SelectContext(ctx, &days, query, employeeID, from, to); err != nil {
		return nil, fmt.Errorf("list attendance days: %w", err)
	}
	refs := make([]*models.DayAttendance, len(days))
	for i := range days {
		refs[i] = &days[i]
	}
	if err := r.attachSegments(ctx, refs); err != nil {
		return nil, err
	}
	return days, nil
}

// CreateDay inserts a new attendance day. The (employee_id, date) pair is
// unique; a second insert for the same day is a conflict surfaced by the
// driver.
func (r *AttendanceRepository) CreateDay(ctx context.Context, day *models.DayAttendance) (*models.DayAttendance, error) {
	now := time.Now().UTC()
	if day.ID == "" {
		day.ID = uuid.NewString()
	}
	query := fmt.Sprintf(`INSERT INTO attendance_days (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING %s`, dayColumns, dayColumns)
	var stored models.DayAttendance
	if err := r.db.GetContext(ctx, &stored, query,
		day.ID, day.EmployeeID, day.ShiftID, day.Date, day.Status,
		day.LateIn, day.LateInReason, day.EarlyOut, day.EarlyOutReason, now, now,
	); err != nil {
		return nil, fmt.Errorf("create attendance day: %w", err)
	}
	stored.WorkSegments = []models.WorkSegment{}
	stored.Breaks = []models.BreakSegment{}
	return &stored, nil
}

// UpdateDayParams carries optional attendance day mutations.
type UpdateDayParams struct {
	Status         *models.DayStatus
	LateIn         *bool
	LateInReason   *string
	EarlyOut       *bool
	EarlyOutReason *string
}

// UpdateDay applies the non-nil params to a day record.
func (r *AttendanceRepository) UpdateDay(ctx context.Context, id string, params UpdateDayParams) error {
	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now().UTC()}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if params.Status != nil {
		add("status", *params.Status)
	}
	if params.LateIn != nil {
		add("late_in", *params.LateIn)
	}
	if params.LateInReason != nil {
		add("late_in_reason", *params.LateInReason)
	}
	if params.EarlyOut != nil {
		add("early_out", *params.EarlyOut)
	}
	if params.EarlyOutReason != nil {
		add("early_out_reason", *params.EarlyOutReason)
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE attendance_days SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update attendance day: %w", err)
	}
	return nil
}

// AddWorkSegment appends a work segment to a day, assigning the next
// position.
func (r *AttendanceRepository) AddWorkSegment(ctx context.Context, seg *models.WorkSegment) (*models.WorkSegment, error) {
	if seg.ID == "" {
		seg.ID = uuid.NewString()
	}
	query := `INSERT INTO work_segments (id, day_id, position, clock_in, clock_out, duration, productive_duration, created_at)
VALUES ($1, $2, (SELECT COALESCE(MAX(position) + 1, 0) FROM work_segments WHERE day_id = $2), $3, $4, $5, $6, $7)
RETURNING id, day_id, position, clock_in, clock_out, duration, productive_duration, created_at`
	var stored models.WorkSegment
	if err := r.db.GetContext(ctx, &stored, query,
		seg.ID, seg.DayID, seg.ClockIn, seg.ClockOut, seg.Duration, seg.ProductiveDuration, time.Now().UTC(),
	); err != nil {
		return nil, fmt.Errorf("add work segment: %w", err)
	}
	return &stored, nil
}

// CloseWorkSegment records the clock-out and derived durations for a segment.
func (r *AttendanceRepository) CloseWorkSegment(ctx context.Context, id, clockOut, duration, productiveDuration string) error {
	query := `UPDATE work_segments SET clock_out = $1, duration = $2, productive_duration = $3 WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, clockOut, duration, productiveDuration, id); err != nil {
		return fmt.Errorf("close work segment: %w", err)
	}
	return nil
}

// AddBreak appends a break segment to a day.
func (r *AttendanceRepository) AddBreak(ctx context.Context, br *models.BreakSegment) (*models.BreakSegment, error) {
	if br.ID == "" {
		br.ID = uuid.NewString()
	}
	query := `INSERT INTO break_segments (id, day_id, position, start_at, end_at, duration, reason, created_at)
VALUES ($1, $2, (SELECT COALESCE(MAX(position) + 1, 0) FROM break_segments WHERE day_id = $2), $3, $4, $5, $6, $7)
RETURNING id, day_id, position, start_at, end_at, duration, reason, created_at`
	var stored models.BreakSegment
	if err := r.db.GetContext(ctx, &stored, query,
		br.ID, br.DayID, br.Start, br.End, br.Duration, br.Reason, time.Now().UTC(),
	); err != nil {
		return nil, fmt.Errorf("add break segment: %w", err)
	}
	return &stored, nil
}

// CloseBreak records the end and derived duration for a break. The reason is
// only written when provided.
func (r *AttendanceRepository) CloseBreak(ctx context.Context, id, end, duration string, reason *string) error {
	query := `UPDATE break_segments SET end_at = $1, duration = $2, reason = COALESCE($3, reason) WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, end, duration, reason, id); err != nil {
		return fmt.Errorf("close break segment: %w", err)
	}
	return nil
}

func (r *AttendanceRepository) attachSegments(ctx context.Context, days []*models.DayAttendance) error {
	if len(days) == 0 {
		return nil
	}
	ids := make([]string, len(days))
	byID := make(map[string]*models.DayAttendance, len(days))
	for i, day := range days {
		ids[i] = day.ID
		day.WorkSegments = []models.WorkSegment{}
		day.Breaks = []models.BreakSegment{}
		byID[day.ID] = day
	}

	query, args, err := sqlx.In(`SELECT id, day_id, position, clock_in, clock_out, duration, productive_duration, created_at
FROM work_segments WHERE day_id IN (?) ORDER BY day_id, position ASC`, ids)
	if err != nil {
		return fmt.Errorf("build work segment query: %w", err)
	}
	var segments []models.WorkSegment
	if err := r.db.SelectContext(ctx, &segments, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load work segments: %w", err)
	}
	for _, seg := range segments {
		if day, ok := byID[seg.DayID]; ok {
			day.WorkSegments = append(day.WorkSegments, seg)
		}
	}

	query, args, err = sqlx.In(`SELECT id, day_id, position, start_at, end_at, duration, reason, created_at
FROM break_segments WHERE day_id IN (?) ORDER BY day_id, position ASC`, ids)
	if err != nil {
		return fmt.Errorf("build break segment query: %w", err)
	}
	var breaks []models.BreakSegment
	if err := r.db.SelectContext(ctx, &breaks, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load break segments: %w", err)
	}
	for _, br := range breaks {
		if day, ok := byID[br.DayID]; ok {
			day.Breaks = append(day.Breaks, br)
		}
	}
	return nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/staffkit/workforce-api/internal/models"
	"github.com/staffkit/workforce-api/internal/timeclock"
	appErrors "github.com/staffkit/workforce-api/pkg/errors"
)

type attendanceRangeLister interface {
	ListRange(ctx context.Context, employeeID string, from, to time.Time) ([]models.DayAttendance, error)
}

type approvedLeaveLister interface {
	ListApprovedInRange(ctx context.Context, employeeID string, from, to time.Time) ([]models.LeaveRange, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// MonthlyReport is the assembled report payload returned to clients and fed
// to exports.
type MonthlyReport struct {
	EmployeeID string                    `json:"employee_id"`
	Month      int                       `json:"month"`
	Year       int                       `json:"year"`
	Rows       []models.MonthlyReportRow `json:"rows"`
	Totals     MonthlyReportTotals       `json:"totals"`
}

// MonthlyReportTotals aggregates the month's durations and day counts.
type MonthlyReportTotals struct {
	TotalDuration      string `json:"total_duration"`
	ProductiveDuration string `json:"productive_duration"`
	BreakDuration      string `json:"break_duration"`
	DaysPresent        int    `json:"days_present"`
	DaysOnLeave        int    `json:"days_on_leave"`
	DaysAbsent         int    `json:"days_absent"`
	LateArrivals       int    `json:"late_arrivals"`
	EarlyDepartures    int    `json:"early_departures"`
}

// ReportService assembles monthly attendance reports.
type ReportService struct {
	attendance attendanceRangeLister
	leaves     approvedLeaveLister
	employees  employeeGetter
	cache      reportCache
	cacheTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewReportService constructs the report service. The cache is optional.
func NewReportService(attendance attendanceRangeLister, leaves approvedLeaveLister, employees employeeGetter, cache reportCache, cacheTTL time.Duration, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ReportService{
		attendance: attendance,
		leaves:     leaves,
		employees:  employees,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
		now:        func() time.Time { return time.Now() },
	}
}

// Monthly builds one employee's report for a month. Results are cached until
// the next clock event invalidates them.
func (s *ReportService) Monthly(ctx context.Context, employeeID string, month, year int) (*MonthlyReport, error) {
	if employeeID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "employee_id is required")
	}
	if month < 1 || month > 12 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}
	if year < 2000 || year > 2200 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year out of range")
	}

	key := fmt.Sprintf("report:monthly:%s:%d-%02d", employeeID, year, month)
	if s.cache != nil {
		var cached MonthlyReport
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}

	now := s.now()
	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)

	days, err := s.attendance.ListRange(ctx, employeeID, monthStart, monthEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance days")
	}
	leaves, err := s.leaves.ListApprovedInRange(ctx, employeeID, monthStart, monthEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leaves")
	}

	rows := timeclock.BuildMonthlyReport(employeeID, emp.ShiftID, time.Month(month), year, days, leaves, now)
	report := &MonthlyReport{
		EmployeeID: employeeID,
		Month:      month,
		Year:       year,
		Rows:       rows,
		Totals:     summarize(rows),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, report, s.cacheTTL); err != nil {
			s.logger.Sugar().Warnw("failed to cache monthly report", "key", key, "error", err)
		}
	}
	return report, nil
}

func summarize(rows []models.MonthlyReportRow) MonthlyReportTotals {
	totals := MonthlyReportTotals{}
	workSec, productiveSec, breakSec := 0, 0, 0
	for _, row := range rows {
		workSec += timeclock.ParseHMS(row.TotalDuration)
		productiveSec += timeclock.ParseHMS(row.ProductiveDuration)
		breakSec += timeclock.ParseHMS(row.BreakDuration)
		switch row.Status {
		case models.DayStatusPresent, models.DayStatusRemote:
			totals.DaysPresent++
		case models.DayStatusOnLeave:
			totals.DaysOnLeave++
		case models.DayStatusAbsent:
			totals.DaysAbsent++
		}
		if row.LateIn {
			totals.LateArrivals++
		}
		if row.EarlyOut {
			totals.EarlyDepartures++
		}
	}
	totals.TotalDuration = timeclock.FormatHMS(workSec)
	totals.ProductiveDuration = timeclock.FormatHMS(productiveSec)
	totals.BreakDuration = timeclock.FormatHMS(breakSec)
	return totals
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/staffkit/workforce-api/internal/models"
	"github.com/staffkit/workforce-api/internal/repository"
	"github.com/staffkit/workforce-api/internal/timeclock"
	"github.com/staffkit/workforce-api/pkg/config"
	appErrors "github.com/staffkit/workforce-api/pkg/errors"
)

type attendanceStore interface {
	GetDay(ctx context.Context, employeeID string, date time.Time) (*models.DayAttendance, error)
	ListRange(ctx context.Context, employeeID string, from, to time.Time) ([]models.DayAttendance, error)
	CreateDay(ctx context.Context, day *models.DayAttendance) (*models.DayAttendance, error)
	UpdateDay(ctx context.Context, id string, params repository.UpdateDayParams) error
	AddWorkSegment(ctx context.Context, seg *models.WorkSegment) (*models.WorkSegment, error)
	CloseWorkSegment(ctx context.Context, id, clockOut, duration, productiveDuration string) error
	AddBreak(ctx context.Context, br *models.BreakSegment) (*models.BreakSegment, error)
	CloseBreak(ctx context.Context, id, end, duration string, reason *string) error
}

type employeeGetter interface {
	GetByID(ctx context.Context, id string) (*models.Employee, error)
}

type reportCacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// TimeclockService drives the clock-in/clock-out/break state machine for one
// employee day at a time.
type TimeclockService struct {
	attendance attendanceStore
	employees  employeeGetter
	cache      reportCacheInvalidator
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        config.TimeclockConfig
	now        func() time.Time
}

// NewTimeclockService constructs the timeclock service.
func NewTimeclockService(attendance attendanceStore, employees employeeGetter, cache reportCacheInvalidator, cfg config.TimeclockConfig, validate *validator.Validate, logger *zap.Logger) *TimeclockService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WorkdayStart == "" {
		cfg.WorkdayStart = "09:00:00"
	}
	if cfg.WorkdayEnd == "" {
		cfg.WorkdayEnd = "18:00:00"
	}
	return &TimeclockService{
		attendance: attendance,
		employees:  employees,
		cache:      cache,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
		now:        func() time.Time { return time.Now() },
	}
}

// ClockInRequest starts a work segment for today.
type ClockInRequest struct {
	EmployeeID string  `json:"employee_id" validate:"required"`
	Remote     bool    `json:"remote"`
	Reason     *string `json:"reason"`
}

// ClockOutRequest closes the open work segment.
type ClockOutRequest struct {
	EmployeeID string  `json:"employee_id" validate:"required"`
	Reason     *string `json:"reason"`
}

// BreakRequest starts or ends a break on the open work day.
type BreakRequest struct {
	EmployeeID string  `json:"employee_id" validate:"required"`
	Reason     *string `json:"reason"`
}

// DayView is a reconciled view of one day's record, with totals in both
// HH:MM:SS and display form.
type DayView struct {
	Record             *models.DayAttendance `json:"record"`
	TotalDuration      string                `json:"total_duration"`
	BreakDuration      string                `json:"break_duration"`
	ProductiveDuration string                `json:"productive_duration"`
	TotalDisplay       string                `json:"total_display"`
	ProductiveDisplay  string                `json:"productive_display"`
}

// ClockIn opens a new work segment for the employee's current day, creating
// the day record on first use. A second clock-in while a segment is open is a
// conflict.
func (s *TimeclockService) ClockIn(ctx context.Context, req ClockInRequest) (*models.DayAttendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	now := s.now()
	day, err := s.loadOrCreateDay(ctx, req.EmployeeID, now, req.Remote)
	if err != nil {
		return nil, err
	}
	if day.OpenWorkSegment() != nil {
		return nil, appErrors.ErrAlreadyClocked
	}

	clock := timeclock.Clock(now)
	seg, err := s.attendance.AddWorkSegment(ctx, &models.WorkSegment{DayID: day.ID, ClockIn: clock})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record clock-in")
	}
	day.WorkSegments = append(day.WorkSegments, *seg)

	if len(day.WorkSegments) == 1 {
		if err := s.flagLateArrival(ctx, day, clock, req.Reason); err != nil {
			return nil, err
		}
	}

	s.invalidateReports(ctx, req.EmployeeID)
	s.logger.Sugar().Infow("clock-in recorded", "employee_id", req.EmployeeID, "clock", clock)
	return day, nil
}

// ClockOut closes the open work segment, computing its stored durations. An
// open break is closed at the same instant.
func (s *TimeclockService) ClockOut(ctx context.Context, req ClockOutRequest) (*models.DayAttendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	now := s.now()
	day, err := s.loadDay(ctx, req.EmployeeID, now)
	if err != nil {
		return nil, err
	}
	open := day.OpenWorkSegment()
	if open == nil {
		return nil, appErrors.ErrNotClockedIn
	}

	clock := timeclock.Clock(now)
	if br := day.OpenBreak(); br != nil {
		if err := s.closeBreak(ctx, br, clock, nil); err != nil {
			return nil, err
		}
	}

	inSec := timeclock.ParseHMS(open.ClockIn)
	outSec := timeclock.ParseHMS(clock)
	workSec := outSec - inSec
	if workSec < 0 {
		workSec = 0
	}
	breakSec := s.breakSecondsWithin(day, inSec, outSec)
	productiveSec := workSec - breakSec
	if productiveSec < 0 {
		productiveSec = 0
	}

	duration := timeclock.FormatHMS(workSec)
	productive := timeclock.FormatHMS(productiveSec)
	if err := s.attendance.CloseWorkSegment(ctx, open.ID, clock, duration, productive); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record clock-out")
	}
	open.ClockOut = &clock
	open.Duration = &duration
	open.ProductiveDuration = &productive

	if err := s.flagEarlyDeparture(ctx, day, clock, req.Reason); err != nil {
		return nil, err
	}

	s.invalidateReports(ctx, req.EmployeeID)
	s.logger.Sugar().Infow("clock-out recorded", "employee_id", req.EmployeeID, "clock", clock, "duration", duration)
	return day, nil
}

// StartBreak opens a break on the employee's current day. Requires an open
// work segment and no break already in progress.
func (s *TimeclockService) StartBreak(ctx context.Context, req BreakRequest) (*models.DayAttendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	now := s.now()
	day, err := s.loadDay(ctx, req.EmployeeID, now)
	if err != nil {
		return nil, err
	}
	if day.OpenWorkSegment() == nil {
		return nil, appErrors.ErrNotClockedIn
	}
	if day.OpenBreak() != nil {
		return nil, appErrors.ErrBreakOpen
	}

	br, err := s.attendance.AddBreak(ctx, &models.BreakSegment{DayID: day.ID, Start: timeclock.Clock(now), Reason: req.Reason})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start break")
	}
	day.Breaks = append(day.Breaks, *br)

	s.invalidateReports(ctx, req.EmployeeID)
	return day, nil
}

// EndBreak closes the break in progress. Once the day's cumulative break
// time crosses the configured threshold, the closing request must carry a
// reason.
func (s *TimeclockService) EndBreak(ctx context.Context, req BreakRequest) (*models.DayAttendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	now := s.now()
	day, err := s.loadDay(ctx, req.EmployeeID, now)
	if err != nil {
		return nil, err
	}
	br := day.OpenBreak()
	if br == nil {
		return nil, appErrors.ErrNoOpenBreak
	}

	end := timeclock.Clock(now)
	breakSec := timeclock.ParseHMS(end) - timeclock.ParseHMS(br.Start)
	if breakSec < 0 {
		breakSec = 0
	}
	cumulative := breakSec + closedBreakSeconds(day.Breaks)
	if s.cfg.BreakReasonThreshold > 0 && time.Duration(cumulative)*time.Second > s.cfg.BreakReasonThreshold {
		if emptyReason(req.Reason) && emptyReason(br.Reason) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("more than %s of break time in a day requires a reason", s.cfg.BreakReasonThreshold))
		}
	}

	if err := s.closeBreak(ctx, br, end, req.Reason); err != nil {
		return nil, err
	}

	s.invalidateReports(ctx, req.EmployeeID)
	return day, nil
}

// Day returns the reconciled view of one employee day. For today the open
// segments count up to the current instant, for past days up to end of day.
func (s *TimeclockService) Day(ctx context.Context, employeeID string, date time.Time) (*DayView, error) {
	if employeeID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "employee_id is required")
	}
	day, err := s.attendance.GetDay(ctx, employeeID, dateOnly(date))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no attendance record for this day")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance day")
	}

	now := s.now()
	asOf := timeclock.EndOfDay(day.Date)
	if timeclock.SameDay(day.Date, now) {
		asOf = now
	}
	totals := timeclock.ReconcileDay(day.WorkSegments, day.Breaks, day.Date, asOf)
	return &DayView{
		Record:             day,
		TotalDuration:      timeclock.FormatHMS(totals.WorkSeconds),
		BreakDuration:      timeclock.FormatHMS(totals.BreakSeconds),
		ProductiveDuration: timeclock.FormatHMS(totals.ProductiveSeconds),
		TotalDisplay:       timeclock.FormatDisplay(totals.WorkSeconds),
		ProductiveDisplay:  timeclock.FormatDisplay(totals.ProductiveSeconds),
	}, nil
}

func (s *TimeclockService) loadDay(ctx context.Context, employeeID string, now time.Time) (*models.DayAttendance, error) {
	day, err := s.attendance.GetDay(ctx, employeeID, dateOnly(now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotClockedIn
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance day")
	}
	return day, nil
}

func (s *TimeclockService) loadOrCreateDay(ctx context.Context, employeeID string, now time.Time, remote bool) (*models.DayAttendance, error) {
	day, err := s.attendance.GetDay(ctx, employeeID, dateOnly(now))
	if err == nil {
		return day, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance day")
	}

	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	status := models.DayStatusPresent
	if remote {
		status = models.DayStatusRemote
	}
	created, err := s.attendance.CreateDay(ctx, &models.DayAttendance{
		EmployeeID: employeeID,
		ShiftID:    emp.ShiftID,
		Date:       dateOnly(now),
		Status:     status,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create attendance day")
	}
	return created, nil
}

func (s *TimeclockService) flagLateArrival(ctx context.Context, day *models.DayAttendance, clock string, reason *string) error {
	threshold := timeclock.ParseHMS(s.cfg.WorkdayStart) + int(s.cfg.LateGrace/time.Second)
	if timeclock.ParseHMS(clock) <= threshold {
		return nil
	}
	late := true
	params := repository.UpdateDayParams{LateIn: &late}
	if !emptyReason(reason) {
		params.LateInReason = reason
	}
	if err := s.attendance.UpdateDay(ctx, day.ID, params); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to flag late arrival")
	}
	day.LateIn = true
	day.LateInReason = params.LateInReason
	return nil
}

func (s *TimeclockService) flagEarlyDeparture(ctx context.Context, day *models.DayAttendance, clock string, reason *string) error {
	threshold := timeclock.ParseHMS(s.cfg.WorkdayEnd) - int(s.cfg.EarlyGrace/time.Second)
	if timeclock.ParseHMS(clock) >= threshold {
		return nil
	}
	early := true
	params := repository.UpdateDayParams{EarlyOut: &early}
	if !emptyReason(reason) {
		params.EarlyOutReason = reason
	}
	if err := s.attendance.UpdateDay(ctx, day.ID, params); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to flag early departure")
	}
	day.EarlyOut = true
	day.EarlyOutReason = params.EarlyOutReason
	return nil
}

func (s *TimeclockService) closeBreak(ctx context.Context, br *models.BreakSegment, end string, reason *string) error {
	breakSec := timeclock.ParseHMS(end) - timeclock.ParseHMS(br.Start)
	if breakSec < 0 {
		breakSec = 0
	}
	duration := timeclock.FormatHMS(breakSec)
	if err := s.attendance.CloseBreak(ctx, br.ID, end, duration, reason); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to end break")
	}
	br.End = &end
	br.Duration = &duration
	if !emptyReason(reason) {
		br.Reason = reason
	}
	return nil
}

// breakSecondsWithin sums closed break time clipped to the [inSec, outSec]
// segment window.
func (s *TimeclockService) breakSecondsWithin(day *models.DayAttendance, inSec, outSec int) int {
	total := 0
	for _, br := range day.Breaks {
		if br.Open() {
			continue
		}
		start := timeclock.ParseHMS(br.Start)
		end := timeclock.ParseHMS(*br.End)
		lo := start
		if inSec > lo {
			lo = inSec
		}
		hi := end
		if outSec < hi {
			hi = outSec
		}
		if hi > lo {
			total += hi - lo
		}
	}
	return total
}

func (s *TimeclockService) invalidateReports(ctx context.Context, employeeID string) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("report:monthly:%s:*", employeeID)
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		s.logger.Sugar().Warnw("failed to invalidate report cache", "employee_id", employeeID, "error", err)
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func emptyReason(reason *string) bool {
	return reason == nil || *reason == ""
}

// closedBreakSeconds sums the durations of all already-closed breaks.
func closedBreakSeconds(breaks []models.BreakSegment) int {
	total := 0
	for i := range breaks {
		b := &breaks[i]
		if b.Open() {
			continue
		}
		if b.Duration != nil {
			total += timeclock.ParseHMS(*b.Duration)
			continue
		}
		if sec := timeclock.ParseHMS(*b.End) - timeclock.ParseHMS(b.Start); sec > 0 {
			total += sec
		}
	}
	return total
}

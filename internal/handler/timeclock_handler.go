package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/staffkit/workforce-api/internal/models"
	"github.com/staffkit/workforce-api/internal/service"
	"github.com/staffkit/workforce-api/internal/timeclock"
	appErrors "github.com/staffkit/workforce-api/pkg/errors"
	"github.com/staffkit/workforce-api/pkg/response"
)

type timeclockService interface {
	ClockIn(ctx context.Context, req service.ClockInRequest) (*models.DayAttendance, error)
	ClockOut(ctx context.Context, req service.ClockOutRequest) (*models.DayAttendance, error)
	StartBreak(ctx context.Context, req service.BreakRequest) (*models.DayAttendance, error)
	EndBreak(ctx context.Context, req service.BreakRequest) (*models.DayAttendance, error)
	Day(ctx context.Context, employeeID string, date time.Time) (*service.DayView, error)
}

// TimeclockHandler exposes clock and break endpoints.
type TimeclockHandler struct {
	service timeclockService
	metrics *service.MetricsService
}

// NewTimeclockHandler constructs the handler. Metrics are optional.
func NewTimeclockHandler(svc timeclockService, metrics *service.MetricsService) *TimeclockHandler {
	return &TimeclockHandler{service: svc, metrics: metrics}
}

// ClockIn godoc
// @Summary Clock in for today
// @Tags Timeclock
// @Accept json
// @Produce json
// @Param payload body service.ClockInRequest true "Clock-in payload"
// @Success 201 {object} response.Envelope
// @Router /timeclock/clock-in [post]
func (h *TimeclockHandler) ClockIn(c *gin.Context) {
	var req service.ClockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	day, err := h.service.ClockIn(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordClockEvent("clock_in")
	response.Created(c, day)
}

// ClockOut godoc
// @Summary Clock out of the open work segment
// @Tags Timeclock
// @Accept json
// @Produce json
// @Param payload body service.ClockOutRequest true "Clock-out payload"
// @Success 200 {object} response.Envelope
// @Router /timeclock/clock-out [post]
func (h *TimeclockHandler) ClockOut(c *gin.Context) {
	var req service.ClockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	day, err := h.service.ClockOut(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordClockEvent("clock_out")
	response.JSON(c, http.StatusOK, day, nil)
}

// StartBreak godoc
// @Summary Start a break
// @Tags Timeclock
// @Accept json
// @Produce json
// @Param payload body service.BreakRequest true "Break payload"
// @Success 201 {object} response.Envelope
// @Router /timeclock/breaks/start [post]
func (h *TimeclockHandler) StartBreak(c *gin.Context) {
	var req service.BreakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	day, err := h.service.StartBreak(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordClockEvent("break_start")
	response.Created(c, day)
}

// EndBreak godoc
// @Summary End the break in progress
// @Tags Timeclock
// @Accept json
// @Produce json
// @Param payload body service.BreakRequest true "Break payload"
// @Success 200 {object} response.Envelope
// @Router /timeclock/breaks/end [post]
func (h *TimeclockHandler) EndBreak(c *gin.Context) {
	var req service.BreakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	day, err := h.service.EndBreak(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordClockEvent("break_end")
	response.JSON(c, http.StatusOK, day, nil)
}

// Day godoc
// @Summary Reconciled view of one attendance day
// @Tags Timeclock
// @Produce json
// @Param employeeId query string true "Employee ID"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /timeclock/day [get]
func (h *TimeclockHandler) Day(c *gin.Context) {
	employeeID := c.Query("employeeId")
	if employeeID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "employeeId required"))
		return
	}
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(timeclock.DateLayout, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD"))
			return
		}
		date = parsed
	}
	view, err := h.service.Day(c.Request.Context(), employeeID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

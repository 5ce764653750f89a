package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffkit/workforce-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func dayRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "employee_id", "shift_id", "date", "status",
		"late_in", "late_in_reason", "early_out", "early_out_reason",
		"created_at", "updated_at",
	}).AddRow("day-1", "emp-1", nil, now, string(models.DayStatusPresent), false, nil, false, nil, now, now)
}

func TestAttendanceGetDay(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, employee_id, shift_id, date, status, .+ FROM attendance_days WHERE employee_id").
		WithArgs("emp-1", now).
		WillReturnRows(dayRows(now))

	segRows := sqlmock.NewRows([]string{"id", "day_id", "position", "clock_in", "clock_out", "duration", "productive_duration", "created_at"}).
		AddRow("seg-1", "day-1", 0, "09:00:00", "17:00:00", "08:00:00", "07:30:00", now)
	mock.ExpectQuery("SELECT id, day_id, position, clock_in, .+ FROM work_segments WHERE day_id IN").
		WillReturnRows(segRows)

	brRows := sqlmock.NewRows([]string{"id", "day_id", "position", "start_at", "end_at", "duration", "reason", "created_at"}).
		AddRow("br-1", "day-1", 0, "12:00:00", "12:30:00", "00:30:00", nil, now)
	mock.ExpectQuery("SELECT id, day_id, position, start_at, .+ FROM break_segments WHERE day_id IN").
		WillReturnRows(brRows)

	day, err := repo.GetDay(context.Background(), "emp-1", now)
	require.NoError(t, err)
	assert.Equal(t, "day-1", day.ID)
	require.Len(t, day.WorkSegments, 1)
	assert.Equal(t, "09:00:00", day.WorkSegments[0].ClockIn)
	require.Len(t, day.Breaks, 1)
	assert.Equal(t, "12:00:00", day.Breaks[0].Start)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceListRangeAttachesSegmentsPerDay(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	listRows := sqlmock.NewRows([]string{
		"id", "employee_id", "shift_id", "date", "status",
		"late_in", "late_in_reason", "early_out", "early_out_reason",
		"created_at", "updated_at",
	}).
		AddRow("day-1", "emp-1", nil, now, string(models.DayStatusPresent), false, nil, false, nil, now, now).
		AddRow("day-2", "emp-1", nil, now.AddDate(0, 0, 1), string(models.DayStatusPresent), false, nil, false, nil, now, now)
	mock.ExpectQuery("SELECT id, employee_id, shift_id, date, status, .+ FROM attendance_days").
		WithArgs("emp-1", now, now.AddDate(0, 0, 30)).
		WillReturnRows(listRows)

	segRows := sqlmock.NewRows([]string{"id", "day_id", "position", "clock_in", "clock_out", "duration", "productive_duration", "created_at"}).
		AddRow("seg-1", "day-1", 0, "09:00:00", "17:00:00", "08:00:00", "08:00:00", now).
		AddRow("seg-2", "day-2", 0, "09:15:00", nil, nil, nil, now)
	mock.ExpectQuery("SELECT id, day_id, position, clock_in, .+ FROM work_segments WHERE day_id IN").
		WillReturnRows(segRows)

	mock.ExpectQuery("SELECT id, day_id, position, start_at, .+ FROM break_segments WHERE day_id IN").
		WillReturnRows(sqlmock.NewRows([]string{"id", "day_id", "position", "start_at", "end_at", "duration", "reason", "created_at"}))

	days, err := repo.ListRange(context.Background(), "emp-1", now, now.AddDate(0, 0, 30))
	require.NoError(t, err)
	require.Len(t, days, 2)
	require.Len(t, days[0].WorkSegments, 1)
	require.Len(t, days[1].WorkSegments, 1)
	assert.True(t, days[1].WorkSegments[0].Open())
	assert.Empty(t, days[0].Breaks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceCreateDay(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO attendance_days").
		WillReturnRows(dayRows(now))

	day, err := repo.CreateDay(context.Background(), &models.DayAttendance{
		EmployeeID: "emp-1",
		Date:       now,
		Status:     models.DayStatusPresent,
	})
	require.NoError(t, err)
	assert.Equal(t, "day-1", day.ID)
	assert.NotNil(t, day.WorkSegments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceUpdateDayFlags(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	late := true
	reason := "traffic"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE attendance_days SET updated_at = $1, late_in = $2, late_in_reason = $3 WHERE id = $4")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateDay(context.Background(), "day-1", UpdateDayParams{LateIn: &late, LateInReason: &reason})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceAddAndCloseWorkSegment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	segRows := sqlmock.NewRows([]string{"id", "day_id", "position", "clock_in", "clock_out", "duration", "productive_duration", "created_at"}).
		AddRow("seg-1", "day-1", 0, "09:00:00", nil, nil, nil, now)
	mock.ExpectQuery("INSERT INTO work_segments").
		WillReturnRows(segRows)

	seg, err := repo.AddWorkSegment(context.Background(), &models.WorkSegment{DayID: "day-1", ClockIn: "09:00:00"})
	require.NoError(t, err)
	assert.Equal(t, 0, seg.Position)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE work_segments SET clock_out = $1, duration = $2, productive_duration = $3 WHERE id = $4")).
		WithArgs("17:00:00", "08:00:00", "07:30:00", "seg-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.CloseWorkSegment(context.Background(), "seg-1", "17:00:00", "08:00:00", "07:30:00")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceAddAndCloseBreak(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	brRows := sqlmock.NewRows([]string{"id", "day_id", "position", "start_at", "end_at", "duration", "reason", "created_at"}).
		AddRow("br-1", "day-1", 0, "12:00:00", nil, nil, nil, now)
	mock.ExpectQuery("INSERT INTO break_segments").
		WillReturnRows(brRows)

	br, err := repo.AddBreak(context.Background(), &models.BreakSegment{DayID: "day-1", Start: "12:00:00"})
	require.NoError(t, err)
	assert.True(t, br.Open())

	mock.ExpectExec(regexp.QuoteMeta("UPDATE break_segments SET end_at = $1, duration = $2, reason = COALESCE($3, reason) WHERE id = $4")).
		WithArgs("12:45:00", "00:45:00", nil, "br-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.CloseBreak(context.Background(), "br-1", "12:45:00", "00:45:00", nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

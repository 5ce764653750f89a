package timeclock

import (
	"time"

	"github.com/staffkit/workforce-api/internal/models"
)

const zeroDuration = "00:00:00"

// BuildMonthlyReport assembles one report row per calendar day of the
// requested month, in ascending date order. For the current month the range
// is capped at today; later days are omitted because absence cannot be
// determined for a day that has not happened. Months entirely after today
// yield no rows.
//
// Status precedence per day, first match wins:
//  1. an attendance record exists: the record's own status is authoritative
//     and its segments are reconciled into durations;
//  2. an approved leave covers the day: on_leave, zero durations;
//  3. otherwise weekend (Saturday/Sunday) or absent, zero durations.
//
// The builder never fails on malformed records; a day whose record has no
// segments simply reports zero durations.
func BuildMonthlyReport(employeeID string, shiftID *string, month time.Month, year int, days []models.DayAttendance, leaves []models.LeaveRange, today time.Time) []models.MonthlyReportRow {
	loc := today.Location()
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	monthEnd := monthStart.AddDate(0, 1, -1)
	todayDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)

	if monthStart.After(todayDate) {
		return nil
	}
	lastDay := monthEnd.Day()
	if monthStart.Year() == todayDate.Year() && monthStart.Month() == todayDate.Month() {
		lastDay = todayDate.Day()
	}

	recordByDate := make(map[string]models.DayAttendance, len(days))
	for _, day := range days {
		key := DateKey(day.Date)
		if _, ok := recordByDate[key]; ok {
			continue
		}
		recordByDate[key] = day
	}

	// First approved leave covering a date wins; later overlaps are a
	// defined tie-break, not an error.
	leaveByDate := make(map[string]models.LeaveRange)
	for _, leave := range leaves {
		if leave.Status != models.LeaveStatusApproved {
			continue
		}
		from := leave.StartDate
		if from.Before(monthStart) {
			from = monthStart
		}
		to := leave.EndDate
		if to.After(monthEnd) {
			to = monthEnd
		}
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			key := DateKey(d)
			if _, ok := leaveByDate[key]; !ok {
				leaveByDate[key] = leave
			}
		}
	}

	rows := make([]models.MonthlyReportRow, 0, lastDay)
	for dayNum := 1; dayNum <= lastDay; dayNum++ {
		date := time.Date(year, month, dayNum, 0, 0, 0, 0, loc)
		key := DateKey(date)

		row := models.MonthlyReportRow{
			Date:               date,
			EmployeeID:         employeeID,
			ShiftID:            shiftID,
			TotalDuration:      zeroDuration,
			ProductiveDuration: zeroDuration,
			BreakDuration:      zeroDuration,
		}

		if record, ok := recordByDate[key]; ok {
			asOf := EndOfDay(date)
			if SameDay(date, today) {
				asOf = today
			}
			totals := ReconcileDay(record.WorkSegments, record.Breaks, date, asOf)

			row.Status = record.Status
			row.ShiftID = record.ShiftID
			row.TotalDuration = FormatHMS(totals.WorkSeconds)
			row.ProductiveDuration = FormatHMS(totals.ProductiveSeconds)
			row.BreakDuration = FormatHMS(totals.BreakSeconds)
			row.LateIn = record.LateIn
			row.LateInReason = record.LateInReason
			row.EarlyOut = record.EarlyOut
			row.EarlyOutReason = record.EarlyOutReason
		} else if _, ok := leaveByDate[key]; ok {
			row.Status = models.DayStatusOnLeave
		} else if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			row.Status = models.DayStatusWeekend
		} else {
			row.Status = models.DayStatusAbsent
		}

		rows = append(rows, row)
	}
	return rows
}

package timeclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffkit/workforce-api/internal/models"
)

func strPtr(s string) *string { return &s }

func TestReconcileDay_BreakInsideSegment(t *testing.T) {
	date := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	work := []models.WorkSegment{{ClockIn: "08:30:00", ClockOut: strPtr("18:00:00")}}
	breaks := []models.BreakSegment{{Start: "13:00:00", End: strPtr("13:30:00")}}

	totals := ReconcileDay(work, breaks, date, EndOfDay(date))

	assert.Equal(t, 34200, totals.WorkSeconds)
	assert.Equal(t, 1800, totals.BreakSeconds)
	assert.Equal(t, 32400, totals.ProductiveSeconds)
	require.Len(t, totals.Segments, 1)
	assert.Equal(t, 34200, totals.Segments[0].WorkSeconds)
	assert.Equal(t, 32400, totals.Segments[0].ProductiveSeconds)
}

func TestReconcileDay_OpenSegmentCreditsUpToAsOf(t *testing.T) {
	date := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	work := []models.WorkSegment{{ClockIn: "09:00:00"}}
	asOf := Compose(date, "11:00:00")

	totals := ReconcileDay(work, nil, date, asOf)

	assert.Equal(t, 7200, totals.WorkSeconds)
	assert.Equal(t, 7200, totals.ProductiveSeconds)
	assert.Equal(t, 0, totals.BreakSeconds)
}

func TestReconcileDay_OpenSegmentOnPastDayBoundedByEndOfDay(t *testing.T) {
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	work := []models.WorkSegment{{ClockIn: "22:00:00"}}

	totals := ReconcileDay(work, nil, date, EndOfDay(date))

	// Credited for the remainder of the calendar day, never unbounded.
	assert.Equal(t, 7199, totals.WorkSeconds)
}

func TestReconcileDay_NoSegments(t *testing.T) {
	date := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	totals := ReconcileDay(nil, nil, date, EndOfDay(date))
	assert.Zero(t, totals.WorkSeconds)
	assert.Zero(t, totals.BreakSeconds)
	assert.Zero(t, totals.ProductiveSeconds)
	assert.Empty(t, totals.Segments)
}

func TestReconcileDay_BreakOutsideSegments(t *testing.T) {
	date := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	work := []models.WorkSegment{{ClockIn: "09:00:00", ClockOut: strPtr("12:00:00")}}
	breaks := []models.BreakSegment{{Start: "13:00:00", End: strPtr("13:45:00")}}

	totals := ReconcileDay(work, breaks, date, EndOfDay(date))

	// Counts towards the break total, deducts nothing from productive time.
	assert.Equal(t, 2700, totals.BreakSeconds)
	assert.Equal(t, 10800, totals.WorkSeconds)
	assert.Equal(t, 10800, totals.ProductiveSeconds)
}

func TestReconcileDay_BreakSpanningTwoSegments(t *testing.T) {
	date := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	work := []models.WorkSegment{
		{ClockIn: "09:00:00", ClockOut: strPtr("12:00:00")},
		{ClockIn: "12:30:00", ClockOut: strPtr("17:00:00")},
	}
	// Break overlaps the tail of the first segment and the head of the second.
	breaks := []models.BreakSegment{{Start: "11:30:00", End: strPtr("13:00:00")}}

	totals := ReconcileDay(work, breaks, date, EndOfDay(date))

	require.Len(t, totals.Segments, 2)
	assert.Equal(t, 10800, totals.Segments[0].WorkSeconds)
	assert.Equal(t, 9000, totals.Segments[0].ProductiveSeconds)
	assert.Equal(t, 16200, totals.Segments[1].WorkSeconds)
	assert.Equal(t, 14400, totals.Segments[1].ProductiveSeconds)
	// Break total is counted once per break, not once per overlapping segment.
	assert.Equal(t, 5400, totals.BreakSeconds)
}

func TestReconcileDay_StoredDurationsPreferredForClosedItems(t *testing.T) {
	date := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	work := []models.WorkSegment{{
		ClockIn:            "09:00:00",
		ClockOut:           strPtr("17:00:00"),
		Duration:           strPtr("07:45:00"),
		ProductiveDuration: strPtr("07:00:00"),
	}}
	breaks := []models.BreakSegment{{
		Start:    "12:00:00",
		End:      strPtr("13:00:00"),
		Duration: strPtr("00:45:00"),
	}}

	totals := ReconcileDay(work, breaks, date, EndOfDay(date))

	assert.Equal(t, 27900, totals.WorkSeconds)
	assert.Equal(t, 25200, totals.ProductiveSeconds)
	assert.Equal(t, 2700, totals.BreakSeconds)
}

func TestReconcileDay_CorruptedOrderFloorsAtZero(t *testing.T) {
	date := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	// Clock-out before clock-in is a data defect, not a negative duration.
	work := []models.WorkSegment{{ClockIn: "15:00:00", ClockOut: strPtr("14:00:00")}}
	breaks := []models.BreakSegment{{Start: "18:00:00", End: strPtr("17:00:00")}}

	totals := ReconcileDay(work, breaks, date, EndOfDay(date))

	assert.Equal(t, 0, totals.WorkSeconds)
	assert.Equal(t, 0, totals.BreakSeconds)
	assert.Equal(t, 0, totals.ProductiveSeconds)
}

func TestReconcileDay_ProductiveNeverExceedsWorked(t *testing.T) {
	date := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name   string
		work   []models.WorkSegment
		breaks []models.BreakSegment
	}{
		{
			"break longer than segment",
			[]models.WorkSegment{{ClockIn: "09:00:00", ClockOut: strPtr("10:00:00")}},
			[]models.BreakSegment{{Start: "08:00:00", End: strPtr("12:00:00")}},
		},
		{
			"stored productive larger than worked",
			[]models.WorkSegment{{
				ClockIn:            "09:00:00",
				ClockOut:           strPtr("10:00:00"),
				Duration:           strPtr("01:00:00"),
				ProductiveDuration: strPtr("05:00:00"),
			}},
			nil,
		},
		{
			"two breaks covering everything",
			[]models.WorkSegment{{ClockIn: "09:00:00", ClockOut: strPtr("17:00:00")}},
			[]models.BreakSegment{
				{Start: "09:00:00", End: strPtr("13:00:00")},
				{Start: "13:00:00", End: strPtr("17:00:00")},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			totals := ReconcileDay(tc.work, tc.breaks, date, EndOfDay(date))
			assert.GreaterOrEqual(t, totals.WorkSeconds, 0)
			assert.GreaterOrEqual(t, totals.BreakSeconds, 0)
			assert.GreaterOrEqual(t, totals.ProductiveSeconds, 0)
			for _, seg := range totals.Segments {
				assert.GreaterOrEqual(t, seg.WorkSeconds, 0)
				assert.GreaterOrEqual(t, seg.ProductiveSeconds, 0)
				assert.LessOrEqual(t, seg.ProductiveSeconds, seg.WorkSeconds)
			}
		})
	}
}

func TestReconcileDay_OpenBreakResolvesToAsOf(t *testing.T) {
	date := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	work := []models.WorkSegment{{ClockIn: "09:00:00"}}
	breaks := []models.BreakSegment{{Start: "12:00:00"}}
	asOf := Compose(date, "12:30:00")

	totals := ReconcileDay(work, breaks, date, asOf)

	assert.Equal(t, 12600, totals.WorkSeconds)
	assert.Equal(t, 1800, totals.BreakSeconds)
	assert.Equal(t, 10800, totals.ProductiveSeconds)
}

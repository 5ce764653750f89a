package timeclock

import (
	"time"

	"github.com/staffkit/workforce-api/internal/models"
)

// SegmentTotals holds derived seconds for one work segment.
type SegmentTotals struct {
	WorkSeconds       int
	ProductiveSeconds int
}

// DayTotals aggregates one day's reconciled durations.
type DayTotals struct {
	Segments          []SegmentTotals
	WorkSeconds       int
	BreakSeconds      int
	ProductiveSeconds int
}

// interval is a resolved [Start, End) window within one day.
type interval struct {
	Start time.Time
	End   time.Time
}

func (iv interval) seconds() int {
	sec := int(iv.End.Sub(iv.Start) / time.Second)
	if sec < 0 {
		return 0
	}
	return sec
}

// overlapSeconds returns the length of the intersection of two intervals.
func overlapSeconds(a, b interval) int {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	sec := int(end.Sub(start) / time.Second)
	if sec < 0 {
		return 0
	}
	return sec
}

// resolveWork anchors a work segment to the date, substituting asOf for a
// missing clock-out so an in-progress segment counts as worked up to now.
func resolveWork(seg models.WorkSegment, date, asOf time.Time) interval {
	iv := interval{Start: Compose(date, seg.ClockIn)}
	if seg.Open() {
		iv.End = asOf
	} else {
		iv.End = Compose(date, *seg.ClockOut)
	}
	return iv
}

func resolveBreak(br models.BreakSegment, date, asOf time.Time) interval {
	iv := interval{Start: Compose(date, br.Start)}
	if br.Open() {
		iv.End = asOf
	} else {
		iv.End = Compose(date, *br.End)
	}
	return iv
}

// ReconcileDay derives work, break and productive seconds for one day's
// segments, evaluated at asOf. Stored duration fields on closed segments and
// breaks are trusted over recomputation; only open items fall back to the
// clock values. The break total is counted once per break, independent of
// segment attribution, so a break straddling segment boundaries is never
// double-counted in the day total. All results are floored at zero.
func ReconcileDay(work []models.WorkSegment, breaks []models.BreakSegment, date, asOf time.Time) DayTotals {
	totals := DayTotals{Segments: make([]SegmentTotals, 0, len(work))}

	breakWindows := make([]interval, len(breaks))
	for i, br := range breaks {
		breakWindows[i] = resolveBreak(br, date, asOf)

		sec := 0
		if !br.Open() && br.Duration != nil && *br.Duration != "" {
			sec = ParseHMS(*br.Duration)
		} else {
			sec = breakWindows[i].seconds()
		}
		totals.BreakSeconds += sec
	}

	for _, seg := range work {
		window := resolveWork(seg, date, asOf)

		workSec := 0
		if !seg.Open() && seg.Duration != nil && *seg.Duration != "" {
			workSec = ParseHMS(*seg.Duration)
		} else {
			workSec = window.seconds()
		}

		productiveSec := 0
		if !seg.Open() && seg.ProductiveDuration != nil && *seg.ProductiveDuration != "" {
			productiveSec = ParseHMS(*seg.ProductiveDuration)
		} else {
			overlap := 0
			for _, bw := range breakWindows {
				overlap += overlapSeconds(window, bw)
			}
			productiveSec = workSec - overlap
			if productiveSec < 0 {
				productiveSec = 0
			}
		}
		if productiveSec > workSec {
			productiveSec = workSec
		}

		totals.Segments = append(totals.Segments, SegmentTotals{
			WorkSeconds:       workSec,
			ProductiveSeconds: productiveSec,
		})
		totals.WorkSeconds += workSec
		totals.ProductiveSeconds += productiveSec
	}

	return totals
}

// Package timeclock implements the attendance aggregation engine: duration
// arithmetic over HH:MM:SS strings, work/break interval reconciliation, and
// the monthly report builder. Everything here is pure computation over
// in-memory snapshots; callers supply the evaluation instant explicitly, so
// results are deterministic and safe for concurrent use.
package timeclock

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseHMS converts an HH:MM:SS duration string into seconds. Malformed or
// empty input yields 0 rather than an error: duration strings are optional
// derived fields throughout the data model and must never block aggregation.
func ParseHMS(s string) int {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0
	}
	sec, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return 0
	}
	return h*3600 + m*60 + sec
}

// FormatHMS renders seconds as a lossless HH:MM:SS string. Hours are not
// bounded at 24. Negative input is clamped to zero.
func FormatHMS(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// FormatDisplay renders seconds in the compact "HH : MM" form used by
// human-facing summaries. The seconds component is dropped.
func FormatDisplay(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d : %02d", seconds/3600, (seconds%3600)/60)
}

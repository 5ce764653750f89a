package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleDocument() ReportDocument {
	return ReportDocument{
		Title:       "Attendance 2025-06 emp-1",
		GeneratedAt: time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC),
		Columns:     []string{"Date", "Status", "Total"},
		Rows: [][]string{
			{"2025-06-02", "present", "08:00:00"},
			{"2025-06-03", "on_leave", "00:00:00"},
		},
		Footer: []string{"TOTAL", "", "08:00:00"},
	}
}

func TestCSVExporterRendersColumnsRowsAndFooter(t *testing.T) {
	payload, err := NewCSVExporter().Render(sampleDocument())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "Date,Status,Total", lines[0])
	require.Equal(t, "2025-06-02,present,08:00:00", lines[1])
	require.Equal(t, "TOTAL,,08:00:00", lines[3])
}

func TestCSVExporterPadsShortRows(t *testing.T) {
	doc := sampleDocument()
	doc.Rows = [][]string{{"2025-06-02"}}

	payload, err := NewCSVExporter().Render(doc)
	require.NoError(t, err)
	require.Contains(t, string(payload), "2025-06-02,,\n")
}

func TestCSVExporterRequiresColumns(t *testing.T) {
	_, err := NewCSVExporter().Render(ReportDocument{})
	require.Error(t, err)
}

func TestPDFExporterRendersDocument(t *testing.T) {
	payload, err := NewPDFExporter().Render(sampleDocument())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

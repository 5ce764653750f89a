package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"
)

// ReportDocument is a rendered monthly attendance report: ordered columns,
// one row per reported day and a totals footer.
type ReportDocument struct {
	Title       string
	GeneratedAt time.Time
	Columns     []string
	Rows        [][]string
	Footer      []string
}

// CSVExporter renders report documents into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes: column header, day rows, totals footer.
// The title and generation time are not emitted; CSV consumers key on columns.
func (e *CSVExporter) Render(doc ReportDocument) ([]byte, error) {
	if len(doc.Columns) == 0 {
		return nil, fmt.Errorf("csv requires at least one column")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(doc.Columns); err != nil {
		return nil, fmt.Errorf("write csv columns: %w", err)
	}
	for _, row := range doc.Rows {
		if err := writer.Write(padRow(row, len(doc.Columns))); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	if len(doc.Footer) > 0 {
		if err := writer.Write(padRow(doc.Footer, len(doc.Columns))); err != nil {
			return nil, fmt.Errorf("write csv footer: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// padRow fits a row to the column count so ragged rows stay aligned.
func padRow(row []string, width int) []string {
	if len(row) == width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/fleetver/fleetver/internal/model"
)

// TableWriter renders rows as a human-readable console table, one visual
// row per report row, columns in the fixed field order of the report.
//
// This sink is for interactive runs; the output is ephemeral by design.
type TableWriter struct {
	baseWriter
}

// NewTableWriter creates a TableWriter that renders to the given writer,
// typically os.Stdout.
func NewTableWriter(output io.Writer) *TableWriter {
	return &TableWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the table.
func (w *TableWriter) Write(rows []model.ReportRow) (int, error) {
	counter := &countingWriter{w: w.output}

	table := tablewriter.NewTable(counter)
	table.Header(model.RowHeader())

	for _, row := range rows {
		if err := table.Append(row.Values()); err != nil {
			return counter.n, fmt.Errorf("append table row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return counter.n, fmt.Errorf("render table: %w", err)
	}
	return counter.n, nil
}

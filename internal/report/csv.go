package report

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/fleetver/fleetver/internal/model"
)

// CSVWriter serializes rows to a CSV file: a header line of field names
// followed by one line per row, in the fixed field order.
//
// Values are quoted per RFC 4180 by encoding/csv, so domains, names and
// emails containing commas or newlines survive a round trip. The target
// path is overwritten unconditionally, but only after all data has been
// collected: a failed run never leaves a partial file behind because this
// sink runs strictly after the build completes, and an empty report never
// reaches it at all (see Emit).
type CSVWriter struct {
	// path is the output file path.
	path string
}

// NewCSVWriter creates a CSVWriter targeting the given path.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Path returns the output file path.
func (w *CSVWriter) Path() string {
	return w.path
}

// Write creates (or truncates) the file and writes header plus rows.
// The returned byte count is the size of the written file.
func (w *CSVWriter) Write(rows []model.ReportRow) (int, error) {
	f, err := os.Create(w.path) //nolint:gosec // User-chosen output path is intentional
	if err != nil {
		return 0, fmt.Errorf("create csv file %s: %w", w.path, err)
	}

	counter := &countingWriter{w: f}
	cw := csv.NewWriter(counter)

	if err := cw.Write(model.RowHeader()); err != nil {
		_ = f.Close()
		return counter.n, fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range rows {
		if err := cw.Write(row.Values()); err != nil {
			_ = f.Close()
			return counter.n, fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		_ = f.Close()
		return counter.n, fmt.Errorf("flush csv: %w", err)
	}

	if err := f.Close(); err != nil {
		return counter.n, fmt.Errorf("close csv file: %w", err)
	}
	return counter.n, nil
}

package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/fleetver/fleetver/internal/model"
)

// JSONReport wraps the rows with run metadata for tool integration.
//
// Design decision: we wrap rather than emitting a bare array so consumers
// can tell an intentionally empty report from a truncated one and can see
// which pattern produced the rows without out-of-band context.
type JSONReport struct {
	// GeneratedAt is the report creation timestamp.
	GeneratedAt time.Time `json:"generated_at"`

	// TargetVersion is the pattern the devices were filtered by.
	TargetVersion string `json:"target_version"`

	// RowCount duplicates len(rows) for cheap access by consumers.
	RowCount int `json:"row_count"`

	// Rows are the matching records in final report order.
	Rows []model.ReportRow `json:"rows"`
}

// JSONWriter outputs the report in JSON format.
//
// Design decision: standard encoding/json is sufficient here; the payload
// is small and write-once, so a faster third-party encoder buys nothing.
type JSONWriter struct {
	baseWriter

	// targetVersion is recorded in the metadata wrapper.
	targetVersion string

	// indent enables pretty-printed output.
	indent bool

	// now is injectable for deterministic tests.
	now func() time.Time
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables two-space indented output.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// withClock overrides the timestamp source. Test-only.
func withClock(now func() time.Time) JSONWriterOption {
	return func(w *JSONWriter) {
		w.now = now
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, targetVersion string, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter:    newBaseWriter(output),
		targetVersion: targetVersion,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the wrapped report.
func (w *JSONWriter) Write(rows []model.ReportRow) (int, error) {
	wrapped := JSONReport{
		GeneratedAt:   w.now().UTC(),
		TargetVersion: w.targetVersion,
		RowCount:      len(rows),
		Rows:          rows,
	}

	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(wrapped, "", "  ")
	} else {
		data, err = json.Marshal(wrapped)
	}
	if err != nil {
		return 0, err
	}

	// Trailing newline for better terminal output
	data = append(data, '\n')
	return w.output.Write(data)
}

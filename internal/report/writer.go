package report

import (
	"io"
	"log/slog"

	"github.com/fleetver/fleetver/internal/model"
)

// Writer renders a finalized row sequence to some destination.
//
// Design decision: our Writer differs from io.Writer because sinks consume
// rows, not bytes. Each implementation reports the number of bytes it
// actually wrote, which the CLI surfaces in verbose mode.
type Writer interface {
	// Write renders the rows. Implementations must not reorder or mutate
	// them; the sequence is finalized before any sink runs.
	Write(rows []model.ReportRow) (int, error)
}

// Emit is the single entry point the CLI uses to render a report.
// An empty row set is logged and produces no output at all: no table is
// printed and no file is created or truncated.
func Emit(rows []model.ReportRow, w Writer, logger *slog.Logger) error {
	if len(rows) == 0 {
		logger.Info("no devices matched the target version, nothing to emit")
		return nil
	}

	n, err := w.Write(rows)
	if err != nil {
		return err
	}
	logger.Debug("report emitted", "rows", len(rows), "bytes", n)
	return nil
}

// baseWriter provides the shared output destination for stream sinks.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// countingWriter wraps an io.Writer and tracks the bytes written through
// it. Used by sinks whose rendering library does not report byte counts.
type countingWriter struct {
	w io.Writer
	n int
}

// Write implements io.Writer.
func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

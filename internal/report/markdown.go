package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/fleetver/fleetver/internal/model"
)

// MarkdownWriter outputs the report as GitHub Flavored Markdown, suitable
// for pasting into an issue or a change ticket.
//
// Design decision: we use the nao1215/markdown library for fluent,
// type-safe markdown generation instead of string concatenation.
type MarkdownWriter struct {
	baseWriter

	// targetVersion is shown in the summary block.
	targetVersion string

	// now is injectable for deterministic tests.
	now func() time.Time
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, targetVersion string) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter:    newBaseWriter(output),
		targetVersion: targetVersion,
		now:           time.Now,
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(rows []model.ReportRow) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Device Version Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target Version", "`" + w.targetVersion + "`"},
			{"Generated", w.now().UTC().Format("2006-01-02 15:04:05 MST")},
			{"Matching Devices", strconv.Itoa(len(rows))},
		},
	})
	md.PlainText("")

	md.H2("Matches")
	md.Table(markdown.TableSet{
		Header: model.RowHeader(),
		Rows:   rowValues(rows),
	})

	return len(md.String()), md.Build()
}

// rowValues converts rows to the [][]string shape the table builder wants.
func rowValues(rows []model.ReportRow) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = row.Values()
	}
	return out
}

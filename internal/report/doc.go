// Package report builds and renders the version-match report.
//
// The Builder orchestrates the API client: one call for the organization
// listing, then a bounded concurrent fan-out of per-organization user
// fetches, then local filtering of each user's devices against the target
// version pattern. Results merge back in original organization order, so
// the output is deterministic regardless of fetch interleaving.
//
// Rendering is decoupled behind the Writer interface. Four sinks exist:
// a console table, a CSV file (RFC 4180 quoted), JSON, and Markdown.
// An empty report short-circuits before any sink runs: nothing is written
// and no output file is created.
package report

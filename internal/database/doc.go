// Package database persists report runs to a local SQLite database.
//
// Every successful report run is recorded with its target pattern, limit,
// and the full row set, so past results can be listed and re-rendered
// without hitting the API again ("fleetver history"). The database lives in
// the XDG data directory and uses modernc.org/sqlite, a pure-Go driver, so
// the binary stays cgo-free.
package database

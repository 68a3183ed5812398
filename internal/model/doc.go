// Package model defines the core data structures used throughout fleetver.
//
// This package contains the following main types:
//   - Organization: A tenant scope in the device-management API
//   - User: A user belonging to one organization, with nested device records
//   - Device: A client installation record carrying a reported version string
//   - ReportRow: One flattened output record for a single matching device
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (api, report, database) need to use these
// types, so centralizing them prevents import cycles.
//
// Every field the remote API may omit is modeled as a pointer. Rendering
// collapses absent values to a single placeholder in one place (ReportRow)
// instead of scattering nil checks across the codebase.
package model

// Package config holds fleetver's runtime configuration.
//
// Configuration comes from three places, in increasing precedence:
//   - an optional YAML file (.fleetver in the working or home directory)
//     carrying connection defaults (endpoint, timeout, concurrency)
//   - environment variables carrying the secrets and the query
//     (API_KEY, APP_VERSION, LIMIT)
//   - command-line flags
//
// The credential deliberately never appears in a flag or config file so it
// cannot leak via shell history or a committed dotfile.
//
// Validation happens exactly once, after all sources are merged and before
// any network activity. Validate returns sentinel errors so callers can use
// errors.Is for programmatic handling.
package config

// Package log provides logging with automatic redaction of credentials,
// built on top of the standard slog package.
//
// fleetver authenticates every API call with a bearer key taken from the
// environment. The RedactHandler guarantees that the key (and anything that
// looks like one) never reaches the log stream, even in verbose mode and
// even when a request or response dump is logged verbatim.
//
// Usage:
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Info("request sent",
//	    "authorization", "Bearer abc123",  // redacted to "[REDACTED]"
//	    "method", "getOrganizations",
//	)
package log

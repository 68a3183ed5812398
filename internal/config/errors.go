package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate and by the environment
// loader. Package-level sentinel errors allow errors.Is at call sites
// while keeping the messages human-readable.
var (
	// ErrMissingAPIKey is returned when API_KEY is unset or empty.
	// Every call to the device-management API requires a bearer credential.
	ErrMissingAPIKey = errors.New("missing API key: set the API_KEY environment variable")

	// ErrPlaceholderAPIKey is returned when API_KEY still carries the
	// placeholder value from the documentation. Sending it would only
	// produce a confusing 401 from the server, so we fail fast instead.
	ErrPlaceholderAPIKey = errors.New("API_KEY is still the placeholder value: set a real credential")

	// ErrMissingTargetVersion is returned when no target version pattern is
	// configured. This is the only fatal condition of the report itself:
	// without a pattern there is nothing to filter by.
	ErrMissingTargetVersion = errors.New("missing target version: set APP_VERSION or pass --app-version")

	// ErrInvalidLimit is returned when LIMIT (or --limit) is not a positive
	// integer. The limit is a count of organizations to process, so zero
	// and negative values are rejected; omit it to process all.
	ErrInvalidLimit = errors.New("invalid limit: must be a positive integer")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the fan-out width is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrMissingEndpoint is returned when the API endpoint is empty.
	ErrMissingEndpoint = errors.New("missing API endpoint")

	// ErrConflictingOutputs is returned when more than one of --csv, --json
	// and --markdown is requested. The report is rendered exactly once.
	ErrConflictingOutputs = errors.New("conflicting output formats: --csv, --json and --markdown are mutually exclusive")
)

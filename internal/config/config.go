package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultEndpoint is the production RPC endpoint of the device-management
	// API. Every call is a POST to this single URL with the method name in
	// the body; there are no per-resource paths.
	DefaultEndpoint = "https://api.devicehub.io/public/v1"

	// DefaultTimeout bounds each API round trip. The API answers tenant
	// listings from an index, so anything slower than this indicates a
	// stuck connection rather than a slow query.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency is the number of per-organization user fetches in
	// flight at once. The upstream API rate-limits aggressively above ~10
	// requests per second per key, so the default stays well below that.
	DefaultConcurrency = 4

	// DefaultCSVPath is where the CSV sink writes when no path is given.
	DefaultCSVPath = "users_with_app_version.csv"

	// PlaceholderAPIKey is the value shipped in the documentation examples.
	// A run configured with it fails validation before any network call.
	PlaceholderAPIKey = "YOUR_API_KEY"

	// AppName is the application name used for XDG directory paths.
	AppName = "fleetver"
)

// Environment variable names. These are part of the tool's public contract.
const (
	// EnvAPIKey carries the bearer credential (required).
	EnvAPIKey = "API_KEY"

	// EnvAppVersion carries the target version substring pattern (required,
	// unless --app-version is given).
	EnvAppVersion = "APP_VERSION"

	// EnvLimit optionally caps the number of organizations processed.
	EnvLimit = "LIMIT"
)

// Config holds all options for a fleetver run.
// It is populated from the config file, the environment and CLI flags, then
// passed through the application by value reference rather than global state.
type Config struct {
	// APIKey is the bearer credential for the device-management API.
	// Sourced exclusively from the API_KEY environment variable.
	APIKey string

	// TargetVersion is the substring pattern devices are filtered by.
	// Matching is case-sensitive containment, not version comparison:
	// "5.5.09" matches both "5.5.09.04" and "5.5.09.99".
	TargetVersion string

	// Limit caps how many organizations (in API-returned order) are queried
	// for users. Zero means no cap. Organizations past the limit are never
	// fetched at all.
	Limit int

	// Endpoint is the API base URL.
	Endpoint string

	// Timeout is the per-request timeout for API calls.
	Timeout time.Duration

	// Concurrency is the maximum number of concurrent per-organization
	// user fetches. The organization listing itself is a single call.
	Concurrency int

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// CSVPath, when non-empty, selects the CSV file sink.
	CSVPath string

	// JSONReport selects the JSON sink instead of the console table.
	JSONReport bool

	// MarkdownReport selects the Markdown sink instead of the console table.
	MarkdownReport bool

	// OutputFile redirects JSON/Markdown output to a file instead of stdout.
	OutputFile string

	// SaveHistory controls whether the run is recorded in the local
	// history database. On by default; --no-history disables it.
	SaveHistory bool

	// DataDir is the directory holding the history database.
	// Defaults to the XDG data directory for fleetver.
	DataDir string
}

// NewConfig creates a Config with default values. Defaults that are
// non-zero live here rather than scattered across flag definitions,
// so this constructor doubles as their documentation.
func NewConfig() *Config {
	return &Config{
		Endpoint:    DefaultEndpoint,
		Timeout:     DefaultTimeout,
		Concurrency: DefaultConcurrency,
		SaveHistory: true,
		DataDir:     XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for fleetver.
// On Linux: ~/.local/share/fleetver.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// LoadEnv merges the environment variables into the config.
// Values already set (e.g. by flags) win over the environment for
// everything except the API key, which only the environment provides.
func (c *Config) LoadEnv() error {
	if key := os.Getenv(EnvAPIKey); key != "" {
		c.APIKey = key
	}

	if c.TargetVersion == "" {
		c.TargetVersion = os.Getenv(EnvAppVersion)
	}

	if c.Limit == 0 {
		if raw := os.Getenv(EnvLimit); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit <= 0 {
				return fmt.Errorf("%w: %s=%q", ErrInvalidLimit, EnvLimit, raw)
			}
			c.Limit = limit
		}
	}

	return nil
}

// Validate checks the merged configuration. It is called once, after CLI
// parsing and environment loading, before any network activity.
//
// It returns the first error found rather than collecting all of them,
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.APIKey == PlaceholderAPIKey {
		return ErrPlaceholderAPIKey
	}
	if c.TargetVersion == "" {
		return ErrMissingTargetVersion
	}
	if c.Limit < 0 {
		return ErrInvalidLimit
	}
	if c.Endpoint == "" {
		return ErrMissingEndpoint
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	outputs := 0
	if c.CSVPath != "" {
		outputs++
	}
	if c.JSONReport {
		outputs++
	}
	if c.MarkdownReport {
		outputs++
	}
	if outputs > 1 {
		return ErrConflictingOutputs
	}

	return nil
}

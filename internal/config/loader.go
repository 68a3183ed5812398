package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".fleetver"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the on-disk YAML configuration. It carries only connection
// defaults; secrets and the query always come from the environment and
// flags so that a committed dotfile can never hold a credential.
type File struct {
	// Endpoint overrides the default API base URL.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Timeout overrides the per-request timeout, as a Go duration string
	// (e.g. "45s").
	Timeout string `yaml:"timeout,omitempty"`

	// Concurrency overrides the user-fetch fan-out width.
	Concurrency int `yaml:"concurrency,omitempty"`
}

// LoadConfigFile loads connection defaults from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers decide
// whether that is fatal based on whether the path was explicitly requested.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Apply merges the file's values into the config. File values only fill
// fields the caller has not already overridden away from the defaults.
func (f *File) Apply(c *Config) error {
	if f.Endpoint != "" && c.Endpoint == DefaultEndpoint {
		c.Endpoint = f.Endpoint
	}

	if f.Timeout != "" && c.Timeout == DefaultTimeout {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("config file: invalid timeout %q: %w", f.Timeout, err)
		}
		c.Timeout = d
	}

	if f.Concurrency != 0 && c.Concurrency == DefaultConcurrency {
		c.Concurrency = f.Concurrency
	}

	return nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .fleetver in the current directory
// 3. Look for .fleetver in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if
// not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

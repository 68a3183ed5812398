package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fleetver/fleetver/internal/api"
	"github.com/fleetver/fleetver/internal/config"
	"github.com/fleetver/fleetver/internal/database"
	"github.com/fleetver/fleetver/internal/log"
	"github.com/fleetver/fleetver/internal/model"
	"github.com/fleetver/fleetver/internal/report"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the version-match report across all organizations",
		Long: `Report enumerates every organization visible to the API key, fetches each
organization's users and devices, and emits one row per device whose
reported client version contains the target pattern.

The credential always comes from the API_KEY environment variable. The
target pattern comes from APP_VERSION or --app-version; --app-version wins
when both are set. LIMIT (or --limit) caps how many organizations are
processed, in API-returned order.

Examples:
  # Console table of all devices on the 5.5.09.x family
  API_KEY=... fleetver report --app-version 5.5.09

  # CSV file (users_with_app_version.csv) for batch runs
  API_KEY=... APP_VERSION=5.5.09.04 fleetver report --csv

  # CSV to a custom path, first 10 organizations only
  API_KEY=... APP_VERSION=5.5.09.04 fleetver report --csv --output /tmp/report.csv --limit 10

  # JSON to stdout for tool integration
  API_KEY=... APP_VERSION=5.5.09.04 fleetver report --json`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}

	// Query flags
	cmd.Flags().StringP("app-version", "a", "",
		"Target version substring pattern (overrides APP_VERSION)")
	cmd.Flags().IntP("limit", "l", 0,
		"Process only the first N organizations (overrides LIMIT; 0 = all)")

	// Connection flags
	cmd.Flags().StringP("endpoint", "e", config.DefaultEndpoint,
		"API endpoint URL")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each API request")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Maximum concurrent per-organization user fetches")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .fleetver in current or home directory)")

	// Output flags
	cmd.Flags().Bool("csv", false,
		"Write a CSV file instead of a console table")
	cmd.Flags().BoolP("json", "j", false,
		"Output a JSON report (mutually exclusive with --csv and --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output a Markdown report (mutually exclusive with --csv and --json)")
	cmd.Flags().StringP("output", "o", "",
		"Output file path (default for --csv: "+config.DefaultCSVPath+"; default otherwise: stdout)")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Do not record this run in the local history database")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildReportConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.LoadEnv(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential redaction
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runReport(ctx, cfg, logger)
}

// buildReportConfig creates a Config from cobra command flags and the
// optional configuration file. Environment merging happens afterwards so
// that flags keep precedence.
func buildReportConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Verbose = getVerboseFlag(cmd)

	cfg.TargetVersion, err = cmd.Flags().GetString("app-version")
	if err != nil {
		return nil, err
	}

	cfg.Limit, err = cmd.Flags().GetInt("limit")
	if err != nil {
		return nil, err
	}

	cfg.Endpoint, err = cmd.Flags().GetString("endpoint")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.OutputFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	csvOut, err := cmd.Flags().GetBool("csv")
	if err != nil {
		return nil, err
	}
	if csvOut {
		cfg.CSVPath = config.DefaultCSVPath
		if cfg.OutputFile != "" {
			cfg.CSVPath = cfg.OutputFile
			cfg.OutputFile = ""
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noHistory

	// Load connection defaults from the config file.
	// An explicitly requested file must exist; the default search may
	// silently find nothing.
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if found := config.FindConfigFile(configPath); found != "" {
		f, err := config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		if err := f.Apply(cfg); err != nil {
			return nil, err
		}
	} else if configPath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// runReport builds the report and renders it through the selected sink.
func runReport(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	client, err := api.NewClient(cfg.Endpoint, cfg.APIKey, cfg.Timeout, api.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	builder := report.NewBuilder(client, cfg.TargetVersion,
		report.WithLimit(cfg.Limit),
		report.WithConcurrency(cfg.Concurrency),
		report.WithBuilderLogger(logger),
	)

	startTime := time.Now()
	rows, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	logger.Info("report build finished",
		"rows", len(rows),
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)

	// History is best effort: a broken local database must not discard a
	// report that was just fetched successfully.
	if cfg.SaveHistory {
		saveRunHistory(ctx, cfg, rows, logger)
	}

	if len(rows) == 0 {
		logger.Info("no devices matched", "target_version", cfg.TargetVersion)
		fmt.Printf("No devices matched version %q.\n", cfg.TargetVersion)
		return nil
	}

	w, dest, closeFn, err := newReportWriter(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := report.Emit(rows, w, logger); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if dest != "" {
		fmt.Printf("Wrote %d matching devices to %s\n", len(rows), dest)
	}
	return nil
}

// newReportWriter selects the sink from the configuration. It returns the
// writer, the destination path for user feedback (empty for stdout), and a
// close function for any file it opened.
func newReportWriter(cfg *config.Config) (report.Writer, string, func(), error) {
	noop := func() {}

	if cfg.CSVPath != "" {
		return report.NewCSVWriter(cfg.CSVPath), cfg.CSVPath, noop, nil
	}

	out := os.Stdout
	dest := ""
	closeFn := noop
	if cfg.OutputFile != "" {
		if dir := filepath.Dir(cfg.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, "", noop, fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.Create(cfg.OutputFile) //nolint:gosec // User-chosen output path is intentional
		if err != nil {
			return nil, "", noop, fmt.Errorf("failed to create output file: %w", err)
		}
		out = f
		dest = cfg.OutputFile
		closeFn = func() { _ = f.Close() }
	}

	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(out, cfg.TargetVersion, report.WithPrettyPrint()), dest, closeFn, nil
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out, cfg.TargetVersion), dest, closeFn, nil
	default:
		return report.NewTableWriter(out), dest, closeFn, nil
	}
}

// saveRunHistory records the run in the local history database.
// Failures are logged and swallowed.
func saveRunHistory(ctx context.Context, cfg *config.Config, rows []model.ReportRow, logger *slog.Logger) {
	db, err := database.Open(cfg.DataDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open history database, run not recorded", "error", err)
		return
	}
	defer db.Close() //nolint:errcheck // Best-effort persistence

	id, err := db.SaveRun(ctx, cfg.TargetVersion, cfg.Limit, rows)
	if err != nil {
		logger.Warn("failed to record run in history", "error", err)
		return
	}
	logger.Debug("run recorded in history", "run_id", id, "db", db.Path())
}

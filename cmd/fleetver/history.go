package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fleetver/fleetver/internal/config"
	"github.com/fleetver/fleetver/internal/database"
	"github.com/fleetver/fleetver/internal/log"
	"github.com/fleetver/fleetver/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or re-render past report runs",
		Long: `History reads the local run database and lists past report runs, newest
first. Each report run is recorded there by default (disable with
"report --no-history").

Examples:
  # List the 20 most recent runs
  fleetver history

  # List the 5 most recent runs
  fleetver history --limit 5

  # Re-render run 3 as a console table, without touching the API
  fleetver history --show 3`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", 20,
		"Maximum number of runs to list")
	cmd.Flags().Int64P("show", "s", 0,
		"Re-render the stored rows of the run with this ID")
	cmd.Flags().StringP("data-dir", "d", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	showID, err := cmd.Flags().GetInt64("show")
	if err != nil {
		return err
	}
	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return err
	}
	if dataDir == "" {
		dataDir = config.XDGDataDir()
	}

	slog.SetDefault(log.NewLogger(os.Stderr, getVerboseFlag(cmd)))

	// Listing history must not create an empty database out of nothing.
	db, err := database.Open(dataDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no run history yet (run \"fleetver report\" first): %w", err)
	}
	defer db.Close() //nolint:errcheck // Read-mostly handle

	if showID > 0 {
		return showRun(cmd, db, showID)
	}
	return listRuns(cmd, db, limit)
}

// showRun re-renders one stored run as a console table.
func showRun(cmd *cobra.Command, db *database.RunDB, id int64) error {
	rec, err := db.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Run %d: target %q, %d matching devices, recorded %s\n\n",
		rec.ID, rec.TargetVersion, rec.RowCount, rec.CreatedAt.Format(time.RFC3339))

	if len(rec.Rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No devices matched in this run.")
		return nil
	}

	if _, err := report.NewTableWriter(cmd.OutOrStdout()).Write(rec.Rows); err != nil {
		return fmt.Errorf("failed to render stored run: %w", err)
	}
	return nil
}

// listRuns prints the run listing as a table.
func listRuns(cmd *cobra.Command, db *database.RunDB, limit int) error {
	records, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs.")
		return nil
	}

	table := tablewriter.NewTable(cmd.OutOrStdout())
	table.Header([]string{"id", "recorded", "target_version", "org_limit", "rows"})
	for _, rec := range records {
		orgLimit := "all"
		if rec.OrgLimit > 0 {
			orgLimit = strconv.Itoa(rec.OrgLimit)
		}
		row := []string{
			strconv.FormatInt(rec.ID, 10),
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.TargetVersion,
			orgLimit,
			strconv.Itoa(rec.RowCount),
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to build history table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render history table: %w", err)
	}
	return nil
}

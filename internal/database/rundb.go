package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/fleetver/fleetver/internal/model"
)

// dbFileName is the SQLite file created inside the data directory.
const dbFileName = "fleetver.db"

// ErrRunNotFound is returned when a requested run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// RunDB provides SQLite-based storage for report runs.
//
// Design decision: rows are stored as a JSON blob per run rather than a
// normalized row table. Runs are written once, read rarely, and never
// queried by field, so a blob keeps the schema and the save path trivial.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if absent.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Recommended; a history write
	// can overlap a history read from another invocation.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB in the given directory.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite DSN: mode=rw prevents creating new files,
	// mode=rwc allows creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports a single writer; history access is short-lived, so
	// one connection is plenty.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// Path returns the database file path.
func (rdb *RunDB) Path() string {
	return rdb.dbPath
}

// createTables creates the schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- One record per report run; rows_json holds the full row set.
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		target_version TEXT NOT NULL,
		org_limit INTEGER NOT NULL DEFAULT 0,
		row_count INTEGER NOT NULL,
		rows_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_version ON runs(target_version);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is one stored report run.
type RunRecord struct {
	// ID is the run's database identifier, shown by "fleetver history".
	ID int64

	// CreatedAt is when the run was saved.
	CreatedAt time.Time

	// TargetVersion is the pattern the run filtered by.
	TargetVersion string

	// OrgLimit is the organization cap in effect, zero for unbounded.
	OrgLimit int

	// RowCount is the number of matching rows.
	RowCount int

	// Rows is the stored row set. ListRuns leaves it nil; GetRun fills it.
	Rows []model.ReportRow
}

// SaveRun stores one completed run and returns its ID.
func (rdb *RunDB) SaveRun(ctx context.Context, targetVersion string, orgLimit int, rows []model.ReportRow) (int64, error) {
	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize rows: %w", err)
	}

	result, err := rdb.db.ExecContext(ctx,
		`INSERT INTO runs (target_version, org_limit, row_count, rows_json) VALUES (?, ?, ?, ?)`,
		targetVersion, orgLimit, len(rows), string(rowsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first, without their row
// payloads. Limit bounds the result; non-positive means a default of 20.
func (rdb *RunDB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := rdb.db.QueryContext(ctx,
		`SELECT id, created_at, target_version, org_limit, row_count
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.TargetVersion, &rec.OrgLimit, &rec.RowCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return records, nil
}

// GetRun returns one stored run including its full row set.
func (rdb *RunDB) GetRun(ctx context.Context, id int64) (*RunRecord, error) {
	var rec RunRecord
	var rowsJSON string

	err := rdb.db.QueryRowContext(ctx,
		`SELECT id, created_at, target_version, org_limit, row_count, rows_json
		 FROM runs WHERE id = ?`, id).
		Scan(&rec.ID, &rec.CreatedAt, &rec.TargetVersion, &rec.OrgLimit, &rec.RowCount, &rowsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %d: %w", id, err)
	}

	if err := json.Unmarshal([]byte(rowsJSON), &rec.Rows); err != nil {
		return nil, fmt.Errorf("failed to decode stored rows for run %d: %w", id, err)
	}
	return &rec, nil
}

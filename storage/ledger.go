package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Run statuses recorded in the ledger.
const (
	StatusExtracted = "extracted"
	StatusCreated   = "created"
	StatusConflict  = "conflict"
	StatusFailed    = "failed"
)

// Run is one provisioning attempt for one identifier.
type Run struct {
	ID          int64
	Identifier  string
	SiteName    string
	SourceSheet string
	SourceRow   int
	SourceCol   int
	CSVLine     string
	Status      string
	Error       string
	CreatedAt   time.Time
}

var ErrRunNotFound = errors.New("run not found")

// Ledger records every extraction/provisioning run in a local SQLite
// database so batches can be audited and replays detected.
type Ledger struct {
	db *sql.DB
}

func OpenLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	ledger := &Ledger{db: db}
	if err := ledger.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return ledger, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	identifier TEXT NOT NULL,
	site_name TEXT NOT NULL DEFAULT '',
	source_sheet TEXT NOT NULL DEFAULT '',
	source_row INTEGER NOT NULL DEFAULT 0,
	source_col INTEGER NOT NULL DEFAULT 0,
	csv_line TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_runs_identifier ON runs(identifier);
CREATE INDEX IF NOT EXISTS idx_runs_site_name ON runs(site_name);
`
	if _, err := l.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (l *Ledger) InsertRun(run Run) (int64, error) {
	result, err := l.db.Exec(`
INSERT INTO runs (identifier, site_name, source_sheet, source_row, source_col, csv_line, status, error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
		run.Identifier,
		run.SiteName,
		run.SourceSheet,
		run.SourceRow,
		run.SourceCol,
		run.CSVLine,
		run.Status,
		run.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read run id: %w", err)
	}
	return id, nil
}

// ListRuns returns runs newest first.
func (l *Ledger) ListRuns() ([]Run, error) {
	rows, err := l.db.Query(`
SELECT id, identifier, site_name, source_sheet, source_row, source_col, csv_line, status, error, created_at
FROM runs ORDER BY id DESC;`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// RunsForIdentifier returns the identifier's runs newest first.
func (l *Ledger) RunsForIdentifier(identifier string) ([]Run, error) {
	rows, err := l.db.Query(`
SELECT id, identifier, site_name, source_sheet, source_row, source_col, csv_line, status, error, created_at
FROM runs WHERE identifier = ? ORDER BY id DESC;`, identifier)
	if err != nil {
		return nil, fmt.Errorf("query runs for %s: %w", identifier, err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// LastCreatedRunForName returns the most recent successful run that produced
// the given site name.
func (l *Ledger) LastCreatedRunForName(siteName string) (*Run, error) {
	rows, err := l.db.Query(`
SELECT id, identifier, site_name, source_sheet, source_row, source_col, csv_line, status, error, created_at
FROM runs WHERE site_name = ? AND status = ? ORDER BY id DESC LIMIT 1;`, siteName, StatusCreated)
	if err != nil {
		return nil, fmt.Errorf("query run for name %s: %w", siteName, err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrRunNotFound
	}
	return &runs[0], nil
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var (
			run       Run
			createdAt string
		)
		if err := rows.Scan(
			&run.ID,
			&run.Identifier,
			&run.SiteName,
			&run.SourceSheet,
			&run.SourceRow,
			&run.SourceCol,
			&run.CSVLine,
			&run.Status,
			&run.Error,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if parsed, err := time.Parse("2006-01-02 15:04:05", createdAt); err == nil {
			run.CreatedAt = parsed
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// OpenDB opens (or creates) the SQLite database and applies the schema.
// Use ":memory:" for throwaway runs.
func OpenDB(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %s: %w", path, err)
	}
	// single writer avoids SQLite lock contention
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := applySchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("database ready", "path", path)
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS contract_jobs (
	id              TEXT PRIMARY KEY,
	source_file     TEXT NOT NULL,
	status          TEXT NOT NULL,
	error_details   TEXT,
	pages_total     INTEGER NOT NULL DEFAULT 0,
	pages_ok        INTEGER NOT NULL DEFAULT 0,
	record_json     TEXT,
	report_json     TEXT,
	lookup_json     TEXT,
	netsheet_json   TEXT,
	created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_contract_jobs_status ON contract_jobs(status);
`

func applySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Package audit persists a write-only record of submitted arbitrage
// transactions for operator forensics. Nothing here is ever
// read back at startup — the bot's decisions never depend on prior runs.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store writes submission records to a local SQLite database.
type Store struct {
	db *sql.DB
}

// Open creates (if missing) the audit database at path and its schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("audit: opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: pinging database: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS submissions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	submitted_at TEXT NOT NULL,
	path        TEXT NOT NULL,
	amount_in   TEXT NOT NULL,
	amount_out  TEXT NOT NULL,
	net_profit  TEXT NOT NULL,
	tx_hash     TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record is one submitted arbitrage transaction.
type Record struct {
	SubmittedAt time.Time
	Path        string
	AmountIn    string
	AmountOut   string
	NetProfit   string
	TxHash      string
}

// RecordSubmission appends one row. Failures are the caller's to log; the
// audit trail is best-effort and never blocks the execution loop's own
// decisions.
func (s *Store) RecordSubmission(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (submitted_at, path, amount_in, amount_out, net_profit, tx_hash) VALUES (?, ?, ?, ?, ?, ?)`,
		r.SubmittedAt.UTC().Format(time.RFC3339), r.Path, r.AmountIn, r.AmountOut, r.NetProfit, r.TxHash,
	)
	if err != nil {
		return fmt.Errorf("audit: inserting submission: %w", err)
	}
	return nil
}

package sqlite

import (
	// Go Internal Packages
	"database/sql"
	"fmt"

	// External Packages
	_ "modernc.org/sqlite"
)

// InitDB opens (or creates) the ledger database at dsn and makes sure the
// tables exist. Pass ":memory:" for a throwaway database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// one writer; also keeps ":memory:" on a single shared connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			nat_key TEXT UNIQUE NOT NULL,
			amount TEXT NOT NULL,
			occurred_at TEXT NOT NULL,
			direction TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			bank_name TEXT NOT NULL,
			counterparty TEXT,
			category TEXT NOT NULL,
			confidence REAL NOT NULL,
			source_text TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_occurred_at ON transactions(occurred_at)`,

		`CREATE TABLE IF NOT EXISTS credit_card_bills (
			id TEXT PRIMARY KEY,
			nat_key TEXT UNIQUE NOT NULL,
			card_last4 TEXT NOT NULL,
			bank_name TEXT NOT NULL,
			bill_period TEXT NOT NULL,
			total_amount TEXT NOT NULL,
			minimum_due TEXT NOT NULL,
			due_date TEXT NOT NULL,
			statement_date TEXT NOT NULL,
			status TEXT NOT NULL,
			paid_amount TEXT NOT NULL,
			remaining_amount TEXT NOT NULL,
			confidence REAL NOT NULL,
			source_text TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bills_card_due ON credit_card_bills(card_last4, due_date)`,

		`CREATE TABLE IF NOT EXISTS credit_card_payments (
			id TEXT PRIMARY KEY,
			nat_key TEXT UNIQUE NOT NULL,
			card_last4 TEXT NOT NULL,
			bank_name TEXT NOT NULL,
			payment_amount TEXT NOT NULL,
			payment_date TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			matched_bill_id TEXT,
			confidence REAL NOT NULL,
			source_text TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_unmatched ON credit_card_payments(matched_bill_id, payment_date)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

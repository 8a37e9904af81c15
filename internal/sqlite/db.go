package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rpggio/grantflow/internal/observability/metrics"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection. A single connection is kept
// open so writers are serialized and in-memory databases survive between calls.
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return &DB{db}, nil
}

type txKey struct{}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn returns the transaction carried by ctx, or the database itself.
func (db *DB) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db.DB
}

// WithinTx runs fn inside a transaction. Nested calls join the outer transaction.
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	start := time.Now()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		metrics.RecordTxLatency(time.Since(start), true)
		return err
	}
	if err := tx.Commit(); err != nil {
		metrics.RecordTxLatency(time.Since(start), true)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	metrics.RecordTxLatency(time.Since(start), false)
	return nil
}

// RunMigrations creates the schema. It is safe to run more than once.
func (db *DB) RunMigrations() error {
	migration := `
-- Treasuries, one per authority
CREATE TABLE IF NOT EXISTS treasuries (
    id TEXT PRIMARY KEY,
    authority TEXT NOT NULL UNIQUE,
    mint TEXT NOT NULL,
    total_grants TEXT NOT NULL DEFAULT '0',
    total_allocated TEXT NOT NULL DEFAULT '0',
    total_paid TEXT NOT NULL DEFAULT '0',
    is_paused INTEGER NOT NULL DEFAULT 0,
    max_grant_amount TEXT NOT NULL,
    max_total_allocation TEXT NOT NULL,
    governance_updated_at TIMESTAMP NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Streams
CREATE TABLE IF NOT EXISTS streams (
    id TEXT PRIMARY KEY,
    treasury_id TEXT NOT NULL,
    recipient TEXT NOT NULL,
    authority TEXT NOT NULL,
    mint TEXT NOT NULL,
    total_amount TEXT NOT NULL,
    withdrawn_amount TEXT NOT NULL DEFAULT '0',
    start_time INTEGER NOT NULL,
    end_time INTEGER NOT NULL,
    category TEXT NOT NULL CHECK(category IN ('contributors', 'grants', 'operations', 'marketing', 'development', 'other')),
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL CHECK(status IN ('ACTIVE', 'PAUSED', 'COMPLETED', 'CANCELLED')),
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (treasury_id, recipient),
    FOREIGN KEY (treasury_id) REFERENCES treasuries(id)
);
CREATE INDEX IF NOT EXISTS idx_treasury_streams ON streams(treasury_id);

-- Vesting grants
CREATE TABLE IF NOT EXISTS vestings (
    id TEXT PRIMARY KEY,
    treasury_id TEXT NOT NULL,
    recipient TEXT NOT NULL,
    authority TEXT NOT NULL,
    mint TEXT NOT NULL,
    kind TEXT NOT NULL CHECK(kind IN ('linear', 'cliff')),
    total_amount TEXT NOT NULL,
    claimed_amount TEXT NOT NULL DEFAULT '0',
    start_time INTEGER NOT NULL,
    cliff_time INTEGER NOT NULL,
    end_time INTEGER NOT NULL,
    category TEXT NOT NULL CHECK(category IN ('contributors', 'grants', 'operations', 'marketing', 'development', 'other')),
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL CHECK(status IN ('ACTIVE', 'PAUSED', 'COMPLETED', 'CANCELLED')),
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (treasury_id, recipient),
    FOREIGN KEY (treasury_id) REFERENCES treasuries(id)
);
CREATE INDEX IF NOT EXISTS idx_treasury_vestings ON vestings(treasury_id);

-- Custody book balances
CREATE TABLE IF NOT EXISTS custody_accounts (
    owner TEXT NOT NULL,
    mint TEXT NOT NULL,
    balance TEXT NOT NULL DEFAULT '0',
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (owner, mint)
);

-- Activity log
CREATE TABLE IF NOT EXISTS activity_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    treasury_id TEXT NOT NULL,
    grant_id TEXT,
    actor TEXT NOT NULL,
    activity_type TEXT NOT NULL,
    amount TEXT NOT NULL DEFAULT '0',
    summary TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_treasury_activity ON activity_log(treasury_id);
CREATE INDEX IF NOT EXISTS idx_grant_activity ON activity_log(grant_id);

-- API keys for authentication
CREATE TABLE IF NOT EXISTS api_keys (
    key_hash TEXT PRIMARY KEY,
    principal TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_used TIMESTAMP,
    description TEXT
);
CREATE INDEX IF NOT EXISTS idx_principal_keys ON api_keys(principal);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Package store provides SQLite-backed persistence for the contract engine.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// schemaV1 defines the initial database schema.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS missions (
	mission_id               TEXT PRIMARY KEY,
	template_id              TEXT NOT NULL DEFAULT '',
	kind                     TEXT NOT NULL,
	title                    TEXT NOT NULL DEFAULT '',
	origin                   TEXT NOT NULL,
	destination              TEXT NOT NULL,
	risk_tier                TEXT NOT NULL,
	payout                   INTEGER NOT NULL DEFAULT 0,
	duration_seconds         INTEGER NOT NULL DEFAULT 0,
	nominal_duration_seconds INTEGER NOT NULL DEFAULT 0,
	required_capability      INTEGER NOT NULL DEFAULT 0,
	state                    TEXT NOT NULL DEFAULT 'available',
	created_at_ns            INTEGER NOT NULL DEFAULT 0,
	started_at_ns            INTEGER NOT NULL DEFAULT 0,
	completed_at_ns          INTEGER NOT NULL DEFAULT 0,
	progress_percent         REAL NOT NULL DEFAULT 0.0,
	assigned_resource_id     TEXT NOT NULL DEFAULT '',
	interruption_json        TEXT NOT NULL DEFAULT '',
	position                 INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_missions_state ON missions(state);

CREATE TABLE IF NOT EXISTS resources (
	resource_id    TEXT PRIMARY KEY,
	name           TEXT NOT NULL DEFAULT '',
	capability     INTEGER NOT NULL DEFAULT 0,
	status         TEXT NOT NULL DEFAULT 'operational',
	current_health INTEGER NOT NULL DEFAULT 0,
	max_health     INTEGER NOT NULL DEFAULT 0,
	position       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS engine_state (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	taken_at_ns INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS mission_events (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	seq_no       INTEGER NOT NULL UNIQUE,
	mission_id   TEXT NOT NULL DEFAULT '',
	event_type   TEXT NOT NULL,
	message      TEXT NOT NULL DEFAULT '',
	payload_json TEXT NOT NULL DEFAULT '{}',
	created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_mission ON mission_events(mission_id, seq_no);

CREATE TABLE IF NOT EXISTS audit_records (
	id          TEXT PRIMARY KEY,
	subject_id  TEXT NOT NULL,
	category    TEXT NOT NULL,
	actor       TEXT NOT NULL DEFAULT '',
	action      TEXT NOT NULL,
	detail_json TEXT NOT NULL DEFAULT '{}',
	severity    TEXT NOT NULL DEFAULT 'info',
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_subject ON audit_records(subject_id);

CREATE TABLE IF NOT EXISTS players (
	player_id       TEXT PRIMARY KEY,
	credits         INTEGER NOT NULL DEFAULT 0,
	reputation      INTEGER NOT NULL DEFAULT 0,
	completed       INTEGER NOT NULL DEFAULT 0,
	updated_at_unix INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS ledger_entries (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	player_id        TEXT NOT NULL,
	mission_id       TEXT NOT NULL,
	credits_delta    INTEGER NOT NULL DEFAULT 0,
	reputation_delta INTEGER NOT NULL DEFAULT 0,
	description      TEXT NOT NULL DEFAULT '',
	created_at       INTEGER NOT NULL,
	UNIQUE(player_id, mission_id)
);
CREATE INDEX IF NOT EXISTS idx_ledger_player ON ledger_entries(player_id, id);
`

// NewDB opens a SQLite database at the given path with recommended pragmas
// and runs the V1 schema migration.
func NewDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Limit connections to 1 for SQLite (WAL allows concurrent reads but single writer).
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	_, err := db.ExecContext(context.Background(), schemaV1)
	return err
}

// Timestamps are stored as Unix nanoseconds; 0 means unset.

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}

// WithTx runs fn inside a transaction, retrying the whole transaction on
// transient SQLite errors.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	return retryOp(defaultRetryConfig, func() error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}

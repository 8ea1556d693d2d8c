package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rogers-f/contract-engine/internal/domain"
)

// PlayerRepo handles persistence for the player aggregate and its ledger.
type PlayerRepo struct{}

// Get returns a player. Returns nil if the player does not exist.
func (r *PlayerRepo) Get(ctx context.Context, db *sql.DB, playerID string) (*domain.Player, error) {
	const q = `SELECT player_id, credits, reputation, completed, updated_at_unix
FROM players WHERE player_id = ?`

	var p domain.Player
	err := db.QueryRowContext(ctx, q, playerID).Scan(&p.PlayerID, &p.Credits, &p.Reputation, &p.Completed, &p.UpdatedAtUnix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get player: %w", err)
	}
	return &p, nil
}

// GetTx is Get within an existing transaction.
func (r *PlayerRepo) GetTx(ctx context.Context, tx *sql.Tx, playerID string) (*domain.Player, error) {
	const q = `SELECT player_id, credits, reputation, completed, updated_at_unix
FROM players WHERE player_id = ?`

	var p domain.Player
	err := tx.QueryRowContext(ctx, q, playerID).Scan(&p.PlayerID, &p.Credits, &p.Reputation, &p.Completed, &p.UpdatedAtUnix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get player: %w", err)
	}
	return &p, nil
}

// UpsertTx writes a player within an existing transaction.
func (r *PlayerRepo) UpsertTx(ctx context.Context, tx *sql.Tx, p domain.Player) error {
	const q = `INSERT INTO players (player_id, credits, reputation, completed, updated_at_unix)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(player_id) DO UPDATE SET
	credits = excluded.credits,
	reputation = excluded.reputation,
	completed = excluded.completed,
	updated_at_unix = excluded.updated_at_unix`
	if _, err := tx.ExecContext(ctx, q, p.PlayerID, p.Credits, p.Reputation, p.Completed, p.UpdatedAtUnix); err != nil {
		return fmt.Errorf("upsert player: %w", err)
	}
	return nil
}

// HasEntryTx reports whether a mission was already credited to the player.
func (r *PlayerRepo) HasEntryTx(ctx context.Context, tx *sql.Tx, playerID, missionID string) (bool, error) {
	var n int
	const q = `SELECT COUNT(*) FROM ledger_entries WHERE player_id = ? AND mission_id = ?`
	if err := tx.QueryRowContext(ctx, q, playerID, missionID).Scan(&n); err != nil {
		return false, fmt.Errorf("check ledger entry: %w", err)
	}
	return n > 0, nil
}

// AppendEntryTx inserts a ledger entry within an existing transaction.
func (r *PlayerRepo) AppendEntryTx(ctx context.Context, tx *sql.Tx, e domain.LedgerEntry) error {
	const q = `INSERT INTO ledger_entries (player_id, mission_id, credits_delta, reputation_delta, description, created_at)
VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q, e.PlayerID, e.MissionID, e.CreditsDelta, e.ReputationDelta, e.Description, e.CreatedAt); err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// ListEntries returns a player's ledger, oldest first.
func (r *PlayerRepo) ListEntries(ctx context.Context, db *sql.DB, playerID string) ([]domain.LedgerEntry, error) {
	const q = `SELECT id, player_id, mission_id, credits_delta, reputation_delta, description, created_at
FROM ledger_entries
WHERE player_id = ?
ORDER BY id ASC`

	rows, err := db.QueryContext(ctx, q, playerID)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()

	entries := []domain.LedgerEntry{}
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.PlayerID, &e.MissionID, &e.CreditsDelta, &e.ReputationDelta, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

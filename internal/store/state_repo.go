package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rogers-f/contract-engine/internal/domain"
)

// StateRepo checkpoints and restores the full mission and fleet state.
type StateRepo struct {
	Missions  MissionRepo
	Resources ResourceRepo
}

// SaveTx replaces the stored state with snap within an existing transaction.
func (r *StateRepo) SaveTx(ctx context.Context, tx *sql.Tx, snap domain.Snapshot) error {
	if err := r.Missions.DeleteAllTx(ctx, tx); err != nil {
		return err
	}
	if err := r.Resources.DeleteAllTx(ctx, tx); err != nil {
		return err
	}
	for i, m := range snap.Missions {
		if err := r.Missions.UpsertTx(ctx, tx, m, i); err != nil {
			return err
		}
	}
	for i, res := range snap.Resources {
		if err := r.Resources.UpsertTx(ctx, tx, res, i); err != nil {
			return err
		}
	}

	const q = `INSERT INTO engine_state (id, taken_at_ns) VALUES (1, ?)
ON CONFLICT(id) DO UPDATE SET taken_at_ns = excluded.taken_at_ns`
	if _, err := tx.ExecContext(ctx, q, toNanos(snap.TakenAt)); err != nil {
		return fmt.Errorf("save engine state: %w", err)
	}
	return nil
}

// Load returns the last checkpoint. Returns nil if nothing was ever saved.
func (r *StateRepo) Load(ctx context.Context, db *sql.DB) (*domain.Snapshot, error) {
	var takenAt int64
	err := db.QueryRowContext(ctx, `SELECT taken_at_ns FROM engine_state WHERE id = 1`).Scan(&takenAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load engine state: %w", err)
	}

	missions, err := r.Missions.List(ctx, db, "")
	if err != nil {
		return nil, err
	}
	ships, err := r.Resources.List(ctx, db)
	if err != nil {
		return nil, err
	}
	return &domain.Snapshot{Missions: missions, Resources: ships, TakenAt: fromNanos(takenAt)}, nil
}

// Checkpoint saves engine snapshots to a database, retrying transient errors.
type Checkpoint struct {
	DB     *sql.DB
	States StateRepo
}

// SaveSnapshot persists snap in a single transaction.
func (c *Checkpoint) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	err := WithTx(ctx, c.DB, func(tx *sql.Tx) error {
		return c.States.SaveTx(ctx, tx, snap)
	})
	if err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, "checkpoint", err)
	}
	return nil
}

// LoadSnapshot returns the last checkpoint, or nil when none exists.
func (c *Checkpoint) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	snap, err := c.States.Load(ctx, c.DB)
	if err != nil {
		return nil, domain.WrapEngineError(domain.ErrStoreQuery.Code, "load checkpoint", err)
	}
	return snap, nil
}

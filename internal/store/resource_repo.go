package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rogers-f/contract-engine/internal/domain"
)

// ResourceRepo handles persistence for ships.
type ResourceRepo struct{}

// UpsertTx writes a ship within an existing transaction.
func (r *ResourceRepo) UpsertTx(ctx context.Context, tx *sql.Tx, res domain.Resource, position int) error {
	const q = `INSERT INTO resources (resource_id, name, capability, status, current_health, max_health, position)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(resource_id) DO UPDATE SET
	name = excluded.name,
	capability = excluded.capability,
	status = excluded.status,
	current_health = excluded.current_health,
	max_health = excluded.max_health,
	position = excluded.position`
	_, err := tx.ExecContext(ctx, q,
		res.ResourceID,
		res.Name,
		res.Capability,
		string(res.Status),
		res.CurrentHealth,
		res.MaxHealth,
		position,
	)
	if err != nil {
		return fmt.Errorf("upsert resource %s: %w", res.ResourceID, err)
	}
	return nil
}

// DeleteAllTx removes every ship row within an existing transaction.
func (r *ResourceRepo) DeleteAllTx(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM resources`); err != nil {
		return fmt.Errorf("delete resources: %w", err)
	}
	return nil
}

// List returns every ship in fleet order.
func (r *ResourceRepo) List(ctx context.Context, db *sql.DB) ([]domain.Resource, error) {
	const q = `SELECT resource_id, name, capability, status, current_health, max_health
FROM resources
ORDER BY position ASC`

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	ships := []domain.Resource{}
	for rows.Next() {
		var res domain.Resource
		var status string
		if err := rows.Scan(&res.ResourceID, &res.Name, &res.Capability, &status,
			&res.CurrentHealth, &res.MaxHealth); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		res.Status = domain.ResourceStatus(status)
		ships = append(ships, res)
	}
	return ships, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rogers-f/contract-engine/internal/domain"
)

// MissionRepo handles persistence for Mission records.
type MissionRepo struct{}

// UpsertTx writes a mission within an existing transaction. position keeps
// the registry's insertion order across restarts.
func (r *MissionRepo) UpsertTx(ctx context.Context, tx *sql.Tx, m domain.Mission, position int) error {
	var interruption string
	if m.PendingInterruption != nil {
		data, err := json.Marshal(m.PendingInterruption)
		if err != nil {
			return fmt.Errorf("encode interruption: %w", err)
		}
		interruption = string(data)
	}

	const q = `INSERT INTO missions (mission_id, template_id, kind, title, origin, destination, risk_tier,
	payout, duration_seconds, nominal_duration_seconds, required_capability, state,
	created_at_ns, started_at_ns, completed_at_ns, progress_percent, assigned_resource_id,
	interruption_json, position)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(mission_id) DO UPDATE SET
	state = excluded.state,
	duration_seconds = excluded.duration_seconds,
	started_at_ns = excluded.started_at_ns,
	completed_at_ns = excluded.completed_at_ns,
	progress_percent = excluded.progress_percent,
	assigned_resource_id = excluded.assigned_resource_id,
	interruption_json = excluded.interruption_json,
	position = excluded.position`
	_, err := tx.ExecContext(ctx, q,
		m.ID,
		m.TemplateID,
		string(m.Kind),
		m.Title,
		m.Origin,
		m.Destination,
		string(m.RiskTier),
		m.Payout,
		m.DurationSeconds,
		m.NominalDurationSeconds,
		m.RequiredCapability,
		string(m.State),
		toNanos(m.CreatedAt),
		toNanos(m.StartedAt),
		toNanos(m.CompletedAt),
		m.ProgressPercent,
		m.AssignedResourceID,
		interruption,
		position,
	)
	if err != nil {
		return fmt.Errorf("upsert mission %s: %w", m.ID, err)
	}
	return nil
}

// DeleteAllTx removes every mission row within an existing transaction.
func (r *MissionRepo) DeleteAllTx(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM missions`); err != nil {
		return fmt.Errorf("delete missions: %w", err)
	}
	return nil
}

// List returns missions in the given state, or all missions when state is
// empty, in registry order.
func (r *MissionRepo) List(ctx context.Context, db *sql.DB, state domain.MissionState) ([]domain.Mission, error) {
	const q = `SELECT mission_id, template_id, kind, title, origin, destination, risk_tier,
	payout, duration_seconds, nominal_duration_seconds, required_capability, state,
	created_at_ns, started_at_ns, completed_at_ns, progress_percent, assigned_resource_id,
	interruption_json
FROM missions
WHERE ? = '' OR state = ?
ORDER BY position ASC`

	rows, err := db.QueryContext(ctx, q, string(state), string(state))
	if err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}
	defer rows.Close()

	missions := []domain.Mission{}
	for rows.Next() {
		var (
			m                           domain.Mission
			kind, tier, st, interrupted string
			created, started, completed int64
		)
		if err := rows.Scan(&m.ID, &m.TemplateID, &kind, &m.Title, &m.Origin, &m.Destination, &tier,
			&m.Payout, &m.DurationSeconds, &m.NominalDurationSeconds, &m.RequiredCapability, &st,
			&created, &started, &completed, &m.ProgressPercent, &m.AssignedResourceID,
			&interrupted); err != nil {
			return nil, fmt.Errorf("scan mission: %w", err)
		}
		m.Kind = domain.Kind(kind)
		m.RiskTier = domain.RiskTier(tier)
		m.State = domain.MissionState(st)
		m.CreatedAt = fromNanos(created)
		m.StartedAt = fromNanos(started)
		m.CompletedAt = fromNanos(completed)
		if interrupted != "" {
			var in domain.Interruption
			if err := json.Unmarshal([]byte(interrupted), &in); err != nil {
				return nil, fmt.Errorf("decode interruption of %s: %w", m.ID, err)
			}
			m.PendingInterruption = &in
		}
		missions = append(missions, m)
	}
	return missions, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rogers-f/contract-engine/internal/domain"
)

// EventRepo handles persistence for the append-only mission event journal.
type EventRepo struct{}

// NextSeqTx returns the next journal sequence number within a transaction.
func (r *EventRepo) NextSeqTx(ctx context.Context, tx *sql.Tx) (int64, error) {
	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq_no), 0) + 1 FROM mission_events`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next event seq: %w", err)
	}
	return seq, nil
}

// AppendTx inserts a mission event within an existing transaction.
func (r *EventRepo) AppendTx(ctx context.Context, tx *sql.Tx, event domain.MissionEvent) error {
	const q = `INSERT INTO mission_events (seq_no, mission_id, event_type, message, payload_json, created_at)
VALUES (?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		event.SeqNo,
		event.MissionID,
		event.EventType,
		event.Message,
		event.PayloadJSON,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ListSince returns up to limit events with sequence numbers greater than
// sinceSeq, ordered by sequence number ascending. limit <= 0 means no limit.
func (r *EventRepo) ListSince(ctx context.Context, db *sql.DB, sinceSeq int64, limit int) ([]domain.MissionEvent, error) {
	if limit <= 0 {
		limit = -1
	}
	const q = `SELECT id, seq_no, mission_id, event_type, message, payload_json, created_at
FROM mission_events
WHERE seq_no > ?
ORDER BY seq_no ASC
LIMIT ?`
	return r.query(ctx, db, q, sinceSeq, limit)
}

// ListByMission returns the events of one mission in sequence order.
func (r *EventRepo) ListByMission(ctx context.Context, db *sql.DB, missionID string) ([]domain.MissionEvent, error) {
	const q = `SELECT id, seq_no, mission_id, event_type, message, payload_json, created_at
FROM mission_events
WHERE mission_id = ?
ORDER BY seq_no ASC`
	return r.query(ctx, db, q, missionID)
}

func (r *EventRepo) query(ctx context.Context, db *sql.DB, q string, args ...any) ([]domain.MissionEvent, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []domain.MissionEvent{}
	for rows.Next() {
		var e domain.MissionEvent
		if err := rows.Scan(&e.ID, &e.SeqNo, &e.MissionID, &e.EventType, &e.Message, &e.PayloadJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

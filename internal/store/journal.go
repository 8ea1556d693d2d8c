package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/rogers-f/contract-engine/internal/domain"
)

// Journal appends engine notifications to the mission_events table.
type Journal struct {
	DB     *sql.DB
	Events EventRepo
	Logger *slog.Logger
}

// Notify writes n as the next journal entry. Failures are logged, never
// returned: the journal must not stall the scheduler.
func (j *Journal) Notify(ctx context.Context, n domain.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		payload = []byte("{}")
	}
	err = WithTx(ctx, j.DB, func(tx *sql.Tx) error {
		seq, err := j.Events.NextSeqTx(ctx, tx)
		if err != nil {
			return err
		}
		return j.Events.AppendTx(ctx, tx, domain.MissionEvent{
			SeqNo:       seq,
			MissionID:   n.MissionID,
			EventType:   string(n.Type),
			Message:     n.Message,
			PayloadJSON: string(payload),
			CreatedAt:   n.CreatedAt.Unix(),
		})
	})
	if err != nil && j.Logger != nil {
		j.Logger.ErrorContext(ctx, "journal append", "type", n.Type, "mission_id", n.MissionID, "error", err)
	}
}

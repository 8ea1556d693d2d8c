// Package player holds the host-side aggregate that receives mission rewards
// and supplies reputation for board generation.
package player

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/rogers-f/contract-engine/internal/domain"
	"github.com/rogers-f/contract-engine/internal/store"
)

// Ledger applies rewards to one player, persisting balances and an
// append-only entry per credited mission.
type Ledger struct {
	DB       *sql.DB
	Players  store.PlayerRepo
	PlayerID string
	Logger   *slog.Logger
	Now      func() time.Time
}

// NewLedger creates a Ledger for playerID.
func NewLedger(db *sql.DB, playerID string, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ledger{DB: db, PlayerID: playerID, Logger: logger, Now: time.Now}
}

// Player returns the current balances. A player that never earned anything
// is returned with zero balances.
func (l *Ledger) Player(ctx context.Context) (domain.Player, error) {
	p, err := l.Players.Get(ctx, l.DB, l.PlayerID)
	if err != nil {
		return domain.Player{}, domain.WrapEngineError(domain.ErrStoreQuery.Code, "get player", err)
	}
	if p == nil {
		return domain.Player{PlayerID: l.PlayerID}, nil
	}
	return *p, nil
}

// Reputation returns the score used to scale generated payouts.
func (l *Ledger) Reputation(ctx context.Context) (int, error) {
	p, err := l.Player(ctx)
	if err != nil {
		return 0, err
	}
	return p.Reputation, nil
}

// ApplyCompletion credits a completion's reward. Crediting the same mission
// twice is a no-op. Transient SQLite errors retry the whole transaction.
func (l *Ledger) ApplyCompletion(ctx context.Context, c domain.Completion) error {
	now := l.Now()
	var applied bool

	err := store.WithTx(ctx, l.DB, func(tx *sql.Tx) error {
		applied = false
		seen, err := l.Players.HasEntryTx(ctx, tx, l.PlayerID, c.Mission.ID)
		if err != nil {
			return domain.WrapEngineError(domain.ErrStoreQuery.Code, "check ledger", err)
		}
		if seen {
			return nil
		}
		p, err := l.Players.GetTx(ctx, tx, l.PlayerID)
		if err != nil {
			return domain.WrapEngineError(domain.ErrStoreQuery.Code, "get player", err)
		}
		if p == nil {
			p = &domain.Player{PlayerID: l.PlayerID}
		}
		p.Credits += c.Reward.CreditsAwarded
		p.Reputation += c.Reward.ReputationDelta
		p.Completed++
		p.UpdatedAtUnix = now.Unix()

		if err := l.Players.UpsertTx(ctx, tx, *p); err != nil {
			return domain.WrapEngineError(domain.ErrStoreWrite.Code, "update player", err)
		}
		entry := domain.LedgerEntry{
			PlayerID:        l.PlayerID,
			MissionID:       c.Mission.ID,
			CreditsDelta:    c.Reward.CreditsAwarded,
			ReputationDelta: c.Reward.ReputationDelta,
			Description:     c.Reward.NarrativeDescription,
			CreatedAt:       now.Unix(),
		}
		if err := l.Players.AppendEntryTx(ctx, tx, entry); err != nil {
			return domain.WrapEngineError(domain.ErrStoreWrite.Code, "append ledger entry", err)
		}
		applied = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("apply completion %s: %w", c.Mission.ID, err)
	}
	if applied {
		l.Logger.Info("reward applied",
			"player_id", l.PlayerID, "mission_id", c.Mission.ID,
			"credits", c.Reward.CreditsAwarded, "reputation", c.Reward.ReputationDelta, "late", c.Reward.Late)
	}
	return nil
}

// Entries returns the player's ledger, oldest first.
func (l *Ledger) Entries(ctx context.Context) ([]domain.LedgerEntry, error) {
	entries, err := l.Players.ListEntries(ctx, l.DB, l.PlayerID)
	if err != nil {
		return nil, domain.WrapEngineError(domain.ErrStoreQuery.Code, "list ledger", err)
	}
	return entries, nil
}

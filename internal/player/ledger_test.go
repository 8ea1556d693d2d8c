package player

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rogers-f/contract-engine/internal/domain"
	"github.com/rogers-f/contract-engine/internal/store"
)

func newLedger(t *testing.T) *Ledger {
	t.Helper()
	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	l := NewLedger(db, "captain", nil)
	l.Now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return l
}

func completion(id string, credits int64, rep int) domain.Completion {
	return domain.Completion{
		Mission:    domain.Mission{ID: id, Kind: domain.KindTrade, State: domain.MissionCompleted},
		Reward:     domain.Reward{MissionID: id, CreditsAwarded: credits, ReputationDelta: rep, NarrativeDescription: "Delivered"},
		ResourceID: "ship-1",
	}
}

func TestLedger_NewPlayerHasZeroBalance(t *testing.T) {
	l := newLedger(t)

	p, err := l.Player(context.Background())
	if err != nil {
		t.Fatalf("Player: %v", err)
	}
	if p.PlayerID != "captain" || p.Credits != 0 || p.Reputation != 0 {
		t.Errorf("Player = %+v, want zero balances", p)
	}
}

func TestLedger_ApplyCompletion(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	if err := l.ApplyCompletion(ctx, completion("m-1", 1800, 1)); err != nil {
		t.Fatalf("ApplyCompletion m-1: %v", err)
	}
	if err := l.ApplyCompletion(ctx, completion("m-2", 800, 0)); err != nil {
		t.Fatalf("ApplyCompletion m-2: %v", err)
	}

	p, err := l.Player(ctx)
	if err != nil {
		t.Fatalf("Player: %v", err)
	}
	if p.Credits != 2600 {
		t.Errorf("Credits = %d, want 2600", p.Credits)
	}
	if p.Completed != 2 {
		t.Errorf("Completed = %d, want 2", p.Completed)
	}
	rep, err := l.Reputation(ctx)
	if err != nil {
		t.Fatalf("Reputation: %v", err)
	}
	if rep != 1 {
		t.Errorf("Reputation = %d, want 1", rep)
	}
}

func TestLedger_ApplyCompletionIsIdempotent(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	c := completion("m-1", 1800, 1)

	for i := 0; i < 3; i++ {
		if err := l.ApplyCompletion(ctx, c); err != nil {
			t.Fatalf("ApplyCompletion #%d: %v", i, err)
		}
	}

	p, _ := l.Player(ctx)
	if p.Credits != 1800 || p.Completed != 1 {
		t.Errorf("Player = %+v, want a single credit", p)
	}
	entries, err := l.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1", len(entries))
	}
}

func TestLedger_FailedApplyCanBeRetried(t *testing.T) {
	l := newLedger(t)
	c := completion("m-1", 1800, 1)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.ApplyCompletion(cancelled, c); err == nil {
		t.Fatal("expected an error on a cancelled context")
	}
	p, _ := l.Player(context.Background())
	if p.Credits != 0 {
		t.Fatalf("Credits = %d after failed apply, want 0", p.Credits)
	}

	if err := l.ApplyCompletion(context.Background(), c); err != nil {
		t.Fatalf("retry ApplyCompletion: %v", err)
	}
	p, _ = l.Player(context.Background())
	if p.Credits != 1800 || p.Completed != 1 {
		t.Errorf("Player = %+v, want the reward credited once", p)
	}
}

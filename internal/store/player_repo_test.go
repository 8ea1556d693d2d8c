package store

import (
	"context"
	"testing"

	"github.com/rogers-f/contract-engine/internal/domain"
)

func TestPlayerRepo_UpsertAndLedger(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := &PlayerRepo{}

	p, err := repo.Get(ctx, db, "captain")
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil for missing player, got %+v", p)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := repo.UpsertTx(ctx, tx, domain.Player{PlayerID: "captain", Credits: 1800, Reputation: 1, Completed: 1}); err != nil {
		t.Fatalf("UpsertTx: %v", err)
	}
	entry := domain.LedgerEntry{PlayerID: "captain", MissionID: "m-1", CreditsDelta: 1800, ReputationDelta: 1, Description: "Delivered", CreatedAt: t0.Unix()}
	if err := repo.AppendEntryTx(ctx, tx, entry); err != nil {
		t.Fatalf("AppendEntryTx: %v", err)
	}
	seen, err := repo.HasEntryTx(ctx, tx, "captain", "m-1")
	if err != nil {
		t.Fatalf("HasEntryTx: %v", err)
	}
	if !seen {
		t.Error("HasEntryTx = false after append")
	}
	if err := repo.AppendEntryTx(ctx, tx, entry); err == nil {
		t.Error("expected error crediting the same mission twice")
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	p, err = repo.Get(ctx, db, "captain")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Credits != 1800 || p.Reputation != 1 || p.Completed != 1 {
		t.Errorf("player = %+v, want 1800/1/1", p)
	}

	entries, err := repo.ListEntries(ctx, db, "captain")
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].MissionID != "m-1" {
		t.Errorf("entries = %+v, want one for m-1", entries)
	}
}

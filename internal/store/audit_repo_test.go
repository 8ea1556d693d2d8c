package store

import (
	"context"
	"testing"

	"github.com/rogers-f/contract-engine/internal/domain"
)

func TestAuditRepo_RecordAndList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := &AuditRepo{}
	now := t0.Unix()

	records := []struct {
		id, subject, action string
		at                  int64
	}{
		{"aud-1", "ship-1", "mark_needs_repair", now},
		{"aud-2", "ship-1", "repair", now + 1},
		{"aud-3", "ship-2", "repair", now + 2},
	}
	for _, r := range records {
		rec := auditRecord(r.id, r.subject, r.action, r.at)
		if err := repo.Record(ctx, db, rec); err != nil {
			t.Fatalf("Record %s: %v", r.id, err)
		}
	}

	got, err := repo.ListBySubject(ctx, db, "ship-1")
	if err != nil {
		t.Fatalf("ListBySubject: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID != "aud-1" || got[1].ID != "aud-2" {
		t.Errorf("order = %q, %q; want aud-1, aud-2", got[0].ID, got[1].ID)
	}
	if got[0].DetailJSON != "{}" {
		t.Errorf("DetailJSON = %q, want {}", got[0].DetailJSON)
	}
}

func TestAuditRepo_DuplicateID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := &AuditRepo{}

	rec := auditRecord("aud-dup", "ship-1", "repair", t0.Unix())
	if err := repo.Record(ctx, db, rec); err != nil {
		t.Fatalf("first Record: %v", err)
	}
	if err := repo.Record(ctx, db, rec); err == nil {
		t.Error("expected error for duplicate audit ID")
	}
}

func auditRecord(id, subject, action string, at int64) domain.AuditRecord {
	return domain.AuditRecord{
		ID: id, SubjectID: subject, Category: "fleet", Actor: "operator",
		Action: action, Severity: "info", CreatedAt: at,
	}
}

package fleet

import (
	"errors"
	"testing"

	"github.com/rogers-f/contract-engine/internal/domain"
)

func testFleet() []domain.Resource {
	return []domain.Resource{
		{ResourceID: "s-1", Name: "Kestrel", Capability: 150, CurrentHealth: 100},
		{ResourceID: "s-2", Name: "Hauler", Capability: 400, CurrentHealth: 80, MaxHealth: 120},
		{ResourceID: "s-3", Name: "Wreck", Capability: 900, Status: domain.ResourceNeedsRepair, CurrentHealth: 10, MaxHealth: 100},
	}
}

func newTestPool(t *testing.T) *Pool {
	t.Helper()
	p, err := NewPool(testFleet())
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	return p
}

func TestNewPool_Defaults(t *testing.T) {
	p := newTestPool(t)

	r, ok := p.Get("s-1")
	if !ok {
		t.Fatal("expected s-1 to exist")
	}
	if r.Status != domain.ResourceOperational {
		t.Errorf("Status = %q, want %q", r.Status, domain.ResourceOperational)
	}
	if r.MaxHealth != 100 {
		t.Errorf("MaxHealth = %d, want 100", r.MaxHealth)
	}
}

func TestNewPool_Duplicate(t *testing.T) {
	ships := append(testFleet(), domain.Resource{ResourceID: "s-1"})
	_, err := NewPool(ships)
	if !errors.Is(err, domain.ErrDuplicateResource) {
		t.Errorf("expected ErrDuplicateResource, got %v", err)
	}
}

func TestFindCapable_FirstFitInFleetOrder(t *testing.T) {
	p := newTestPool(t)

	r, err := p.FindCapable(0)
	if err != nil {
		t.Fatalf("FindCapable: %v", err)
	}
	if r.ResourceID != "s-1" {
		t.Errorf("ResourceID = %q, want s-1", r.ResourceID)
	}

	r, err = p.FindCapable(200)
	if err != nil {
		t.Fatalf("FindCapable(200): %v", err)
	}
	if r.ResourceID != "s-2" {
		t.Errorf("ResourceID = %q, want s-2", r.ResourceID)
	}
}

func TestFindCapable_SkipsNeedsRepair(t *testing.T) {
	p := newTestPool(t)

	// Only s-3 has 900 capability and it is out of service.
	_, err := p.FindCapable(500)
	if err != domain.ErrNoCapableResource {
		t.Errorf("expected ErrNoCapableResource, got %v", err)
	}
}

func TestAssignRelease(t *testing.T) {
	p := newTestPool(t)

	if err := p.Assign("s-1"); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := p.Assign("s-1"); err != domain.ErrResourceBusy {
		t.Errorf("second Assign: expected ErrResourceBusy, got %v", err)
	}

	r, _ := p.FindCapable(0)
	if r.ResourceID != "s-2" {
		t.Errorf("FindCapable after assign = %q, want s-2", r.ResourceID)
	}

	if err := p.Release("s-1"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := p.Release("s-1"); err != domain.ErrResourceNotBound {
		t.Errorf("second Release: expected ErrResourceNotBound, got %v", err)
	}
	if got := p.CountByStatus(domain.ResourceOperational); got != 2 {
		t.Errorf("Operational count = %d, want 2", got)
	}
}

func TestMarkNeedsRepair_RefusesAssigned(t *testing.T) {
	p := newTestPool(t)

	if err := p.Assign("s-2"); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := p.MarkNeedsRepair("s-2", 5); err != domain.ErrResourceBusy {
		t.Errorf("expected ErrResourceBusy, got %v", err)
	}
	if err := p.Repair("s-2"); err != domain.ErrResourceBusy {
		t.Errorf("expected ErrResourceBusy, got %v", err)
	}
}

func TestRepair(t *testing.T) {
	p := newTestPool(t)

	if err := p.Repair("s-3"); err != nil {
		t.Fatalf("Repair: %v", err)
	}
	r, _ := p.Get("s-3")
	if r.Status != domain.ResourceOperational {
		t.Errorf("Status = %q, want operational", r.Status)
	}
	if r.CurrentHealth != 100 {
		t.Errorf("CurrentHealth = %d, want 100", r.CurrentHealth)
	}

	if err := p.MarkNeedsRepair("s-1", 40); err != nil {
		t.Fatalf("MarkNeedsRepair: %v", err)
	}
	r, _ = p.Get("s-1")
	if r.Status != domain.ResourceNeedsRepair || r.CurrentHealth != 40 {
		t.Errorf("got status=%q health=%d, want needs_repair/40", r.Status, r.CurrentHealth)
	}
}

func TestCheckCapable(t *testing.T) {
	p := newTestPool(t)

	if _, err := p.CheckCapable("missing", 0); err != domain.ErrResourceNotFound {
		t.Errorf("expected ErrResourceNotFound, got %v", err)
	}
	if _, err := p.CheckCapable("s-1", 200); !errors.Is(err, domain.ErrNoCapableResource) {
		t.Errorf("expected ErrNoCapableResource, got %v", err)
	}
	if _, err := p.CheckCapable("s-3", 0); !errors.Is(err, domain.ErrNoCapableResource) {
		t.Errorf("expected ErrNoCapableResource for ship under repair, got %v", err)
	}
	if r, err := p.CheckCapable("s-2", 400); err != nil || r.ResourceID != "s-2" {
		t.Errorf("CheckCapable(s-2, 400) = %v, %v", r.ResourceID, err)
	}
}

// Package fleet tracks the player's ships and their exclusive assignment to missions.
package fleet

import (
	"fmt"

	"github.com/rogers-f/contract-engine/internal/domain"
)

// Pool is the set of assignable ships in fleet order.
// Pool is not goroutine-safe: the scheduler owns it and serializes access
// together with the mission registry.
type Pool struct {
	ships map[string]*domain.Resource
	order []string
}

// NewPool creates a pool seeded with the given ships. Ships with no status
// start Operational; ships with no max health start at their current health.
func NewPool(ships []domain.Resource) (*Pool, error) {
	p := &Pool{ships: make(map[string]*domain.Resource, len(ships))}
	for _, s := range ships {
		if err := p.Add(s); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Add registers a new ship.
func (p *Pool) Add(r domain.Resource) error {
	if r.ResourceID == "" {
		return domain.NewEngineError(domain.ErrWorldInvalid.Code, "resource_id is required")
	}
	if _, ok := p.ships[r.ResourceID]; ok {
		return domain.NewEngineError(domain.ErrDuplicateResource.Code,
			fmt.Sprintf("ship %q already exists", r.ResourceID))
	}
	if r.Status == "" {
		r.Status = domain.ResourceOperational
	}
	if r.MaxHealth == 0 {
		r.MaxHealth = r.CurrentHealth
	}
	p.ships[r.ResourceID] = &r
	p.order = append(p.order, r.ResourceID)
	return nil
}

// Get returns a copy of a ship.
func (p *Pool) Get(id string) (domain.Resource, bool) {
	r, ok := p.ships[id]
	if !ok {
		return domain.Resource{}, false
	}
	return *r, true
}

// List returns copies of all ships in fleet order.
func (p *Pool) List() []domain.Resource {
	out := make([]domain.Resource, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, *p.ships[id])
	}
	return out
}

// FindCapable returns the first Operational ship, in fleet order, whose
// capability is at least minCapability.
func (p *Pool) FindCapable(minCapability int) (domain.Resource, error) {
	for _, id := range p.order {
		r := p.ships[id]
		if capable(r, minCapability) {
			return *r, nil
		}
	}
	return domain.Resource{}, domain.ErrNoCapableResource
}

// CheckCapable verifies that a specific ship could take a mission requiring minCapability.
func (p *Pool) CheckCapable(id string, minCapability int) (domain.Resource, error) {
	r, ok := p.ships[id]
	if !ok {
		return domain.Resource{}, domain.ErrResourceNotFound
	}
	if !capable(r, minCapability) {
		return domain.Resource{}, domain.NewEngineError(domain.ErrNoCapableResource.Code,
			fmt.Sprintf("ship %q is %s with capability %d, need operational with %d",
				id, r.Status, r.Capability, minCapability))
	}
	return *r, nil
}

func capable(r *domain.Resource, minCapability int) bool {
	return r.Status == domain.ResourceOperational && r.Capability >= minCapability
}

// Assign moves an Operational ship to Assigned.
func (p *Pool) Assign(id string) error {
	r, ok := p.ships[id]
	if !ok {
		return domain.ErrResourceNotFound
	}
	if r.Status != domain.ResourceOperational {
		return domain.ErrResourceBusy
	}
	r.Status = domain.ResourceAssigned
	return nil
}

// Release returns an Assigned ship to Operational.
func (p *Pool) Release(id string) error {
	r, ok := p.ships[id]
	if !ok {
		return domain.ErrResourceNotFound
	}
	if r.Status != domain.ResourceAssigned {
		return domain.ErrResourceNotBound
	}
	r.Status = domain.ResourceOperational
	return nil
}

// MarkNeedsRepair takes an idle ship out of service. Ships bound to a mission
// cannot be re-statused until the mission completes.
func (p *Pool) MarkNeedsRepair(id string, health int) error {
	r, ok := p.ships[id]
	if !ok {
		return domain.ErrResourceNotFound
	}
	if r.Status == domain.ResourceAssigned {
		return domain.ErrResourceBusy
	}
	r.Status = domain.ResourceNeedsRepair
	if health >= 0 {
		r.CurrentHealth = health
	}
	return nil
}

// Repair restores a ship to full health and returns it to service.
func (p *Pool) Repair(id string) error {
	r, ok := p.ships[id]
	if !ok {
		return domain.ErrResourceNotFound
	}
	if r.Status == domain.ResourceAssigned {
		return domain.ErrResourceBusy
	}
	r.Status = domain.ResourceOperational
	r.CurrentHealth = r.MaxHealth
	return nil
}

// CountByStatus returns how many ships are in the given status.
func (p *Pool) CountByStatus(status domain.ResourceStatus) int {
	n := 0
	for _, r := range p.ships {
		if r.Status == status {
			n++
		}
	}
	return n
}

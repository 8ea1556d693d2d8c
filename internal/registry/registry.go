// Package registry owns every mission across all kinds and enforces the
// Available -> Active -> Completed lifecycle.
package registry

import (
	"fmt"
	"time"

	"github.com/rogers-f/contract-engine/internal/domain"
)

// validTransitions defines the legal mission state transitions.
// Completed is terminal: nothing leads back out of it.
var validTransitions = map[domain.MissionState]map[domain.MissionState]bool{
	domain.MissionAvailable: {domain.MissionActive: true},
	domain.MissionActive:    {domain.MissionCompleted: true},
}

// IsValidTransition checks if a mission state transition is legal.
func IsValidTransition(from, to domain.MissionState) bool {
	targets, ok := validTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// Registry stores missions keyed by ID, preserving insertion order.
// It is not goroutine-safe; the scheduler serializes access.
type Registry struct {
	missions map[string]*domain.Mission
	order    []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{missions: make(map[string]*domain.Mission)}
}

// Insert adds a mission. Used for generation batches and for restoring a checkpoint.
func (r *Registry) Insert(m domain.Mission) error {
	if m.ID == "" {
		return domain.NewEngineError(domain.ErrDuplicateMission.Code, "mission id is required")
	}
	if _, ok := r.missions[m.ID]; ok {
		return domain.NewEngineError(domain.ErrDuplicateMission.Code,
			fmt.Sprintf("mission %q already exists", m.ID))
	}
	r.missions[m.ID] = &m
	r.order = append(r.order, m.ID)
	return nil
}

// Get returns a copy of a mission.
func (r *Registry) Get(id string) (domain.Mission, bool) {
	m, ok := r.missions[id]
	if !ok {
		return domain.Mission{}, false
	}
	return copyMission(m), true
}

// List returns copies of missions in the given state, or all missions when
// state is empty, in insertion order.
func (r *Registry) List(state domain.MissionState) []domain.Mission {
	out := []domain.Mission{}
	for _, id := range r.order {
		m := r.missions[id]
		if state == "" || m.State == state {
			out = append(out, copyMission(m))
		}
	}
	return out
}

// ActiveIDs returns the IDs of all Active missions in insertion order.
func (r *Registry) ActiveIDs() []string {
	var ids []string
	for _, id := range r.order {
		if r.missions[id].State == domain.MissionActive {
			ids = append(ids, id)
		}
	}
	return ids
}

// ActiveCount returns the number of Active missions of a kind.
func (r *Registry) ActiveCount(kind domain.Kind) int {
	n := 0
	for _, m := range r.missions {
		if m.State == domain.MissionActive && m.Kind == kind {
			n++
		}
	}
	return n
}

// ReplaceAvailable drops every Available mission of kind and inserts batch.
// Active and Completed missions are untouched. Returns the number removed.
func (r *Registry) ReplaceAvailable(kind domain.Kind, batch []domain.Mission) (int, error) {
	ids := make(map[string]bool, len(batch))
	for _, m := range batch {
		if ids[m.ID] {
			return 0, domain.NewEngineError(domain.ErrDuplicateMission.Code,
				fmt.Sprintf("mission %q appears twice in batch", m.ID))
		}
		ids[m.ID] = true
		if m.State != domain.MissionAvailable || m.Kind != kind {
			return 0, domain.NewEngineError(domain.ErrInvalidTransition.Code,
				fmt.Sprintf("batch mission %q is %s/%s, want available/%s", m.ID, m.State, m.Kind, kind))
		}
		if old, ok := r.missions[m.ID]; ok && !(old.State == domain.MissionAvailable && old.Kind == kind) {
			return 0, domain.NewEngineError(domain.ErrDuplicateMission.Code,
				fmt.Sprintf("mission %q already exists", m.ID))
		}
	}

	removed := 0
	kept := r.order[:0]
	for _, id := range r.order {
		m := r.missions[id]
		if m.State == domain.MissionAvailable && m.Kind == kind {
			delete(r.missions, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept

	for _, m := range batch {
		if err := r.Insert(m); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// Advance applies fn to an Active mission in place.
func (r *Registry) Advance(id string, fn func(m *domain.Mission)) error {
	m, ok := r.missions[id]
	if !ok {
		return domain.ErrMissionNotFound
	}
	if m.State != domain.MissionActive {
		return domain.ErrMissionNotActive
	}
	fn(m)
	return nil
}

// Complete moves an Active mission to Completed at now, clearing its binding
// and any pending interruption. It returns the completed mission and the ID of
// the ship that was bound to it.
func (r *Registry) Complete(id string, now time.Time) (domain.Mission, string, error) {
	m, ok := r.missions[id]
	if !ok {
		return domain.Mission{}, "", domain.ErrMissionNotFound
	}
	if !IsValidTransition(m.State, domain.MissionCompleted) {
		return domain.Mission{}, "", domain.NewEngineError(domain.ErrInvalidTransition.Code,
			fmt.Sprintf("illegal transition %s -> %s", m.State, domain.MissionCompleted))
	}

	resourceID := m.AssignedResourceID
	m.State = domain.MissionCompleted
	m.CompletedAt = now
	m.ProgressPercent = 100
	m.AssignedResourceID = ""
	m.PendingInterruption = nil
	return copyMission(m), resourceID, nil
}

// ResolveInterruption clears the pending interruption of an Active mission.
func (r *Registry) ResolveInterruption(id string) (domain.Interruption, error) {
	m, ok := r.missions[id]
	if !ok {
		return domain.Interruption{}, domain.ErrMissionNotFound
	}
	if m.State != domain.MissionActive {
		return domain.Interruption{}, domain.ErrMissionNotActive
	}
	if m.PendingInterruption == nil {
		return domain.Interruption{}, domain.ErrNoPendingInterruption
	}
	in := *m.PendingInterruption
	m.PendingInterruption = nil
	return in, nil
}

// Prune removes a Completed mission once the caller has applied its reward.
func (r *Registry) Prune(id string) error {
	m, ok := r.missions[id]
	if !ok {
		return domain.ErrMissionNotFound
	}
	if m.State != domain.MissionCompleted {
		return domain.ErrMissionNotCompleted
	}
	r.remove(id)
	return nil
}

// PruneCompleted removes every Completed mission and returns their IDs.
func (r *Registry) PruneCompleted() []string {
	var pruned []string
	for _, id := range append([]string(nil), r.order...) {
		if r.missions[id].State == domain.MissionCompleted {
			r.remove(id)
			pruned = append(pruned, id)
		}
	}
	return pruned
}

func (r *Registry) remove(id string) {
	delete(r.missions, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func copyMission(m *domain.Mission) domain.Mission {
	c := *m
	if m.PendingInterruption != nil {
		in := *m.PendingInterruption
		c.PendingInterruption = &in
	}
	return c
}

package registry

import (
	"fmt"
	"time"

	"github.com/rogers-f/contract-engine/internal/domain"
)

// ResourceBinder is the slice of the fleet pool that accept needs.
type ResourceBinder interface {
	FindCapable(minCapability int) (domain.Resource, error)
	CheckCapable(id string, minCapability int) (domain.Resource, error)
	Assign(id string) error
}

// Accept binds a ship to an Available mission and moves it to Active.
// When resourceID is empty the first capable ship is chosen. On any error the
// mission and the fleet are left exactly as they were.
func (r *Registry) Accept(missionID, resourceID string, ships ResourceBinder, now time.Time) (domain.Mission, error) {
	m, ok := r.missions[missionID]
	if !ok || m.State != domain.MissionAvailable {
		return domain.Mission{}, domain.NewEngineError(domain.ErrMissionNotFound.Code,
			fmt.Sprintf("no available mission %q", missionID))
	}
	if !IsValidTransition(m.State, domain.MissionActive) {
		return domain.Mission{}, domain.ErrInvalidTransition
	}

	policy, err := domain.PolicyFor(m.Kind)
	if err != nil {
		return domain.Mission{}, err
	}
	if policy.Exclusive && r.ActiveCount(m.Kind) > 0 {
		return domain.Mission{}, domain.NewEngineError(domain.ErrMissionConflict.Code,
			fmt.Sprintf("a %s mission is already active", m.Kind))
	}

	var ship domain.Resource
	if resourceID != "" {
		ship, err = ships.CheckCapable(resourceID, m.RequiredCapability)
	} else {
		ship, err = ships.FindCapable(m.RequiredCapability)
	}
	if err != nil {
		return domain.Mission{}, err
	}

	if err := ships.Assign(ship.ResourceID); err != nil {
		return domain.Mission{}, fmt.Errorf("assign ship %s: %w", ship.ResourceID, err)
	}

	m.State = domain.MissionActive
	m.StartedAt = now
	m.ProgressPercent = 0
	m.AssignedResourceID = ship.ResourceID
	return copyMission(m), nil
}

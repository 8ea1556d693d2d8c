// Package risk rolls per-tick interruptions for active missions.
package risk

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/rogers-f/contract-engine/internal/domain"
)

// DefaultPenaltySeconds is how much an interruption extends a mission.
const DefaultPenaltySeconds = 60

// Engine decides whether an active mission is interrupted on a tick.
// Rolls are independent per mission and per tick: no history, no backoff.
type Engine struct {
	Rand           *rand.Rand
	NewID          func() string
	PenaltySeconds int64
}

// New creates an Engine drawing from rng with the default penalty window.
func New(rng *rand.Rand) *Engine {
	return &Engine{
		Rand:           rng,
		NewID:          uuid.NewString,
		PenaltySeconds: DefaultPenaltySeconds,
	}
}

// Probability returns the per-tick interruption chance for a kind and tier.
// Unknown kinds or tiers never interrupt.
func (e *Engine) Probability(kind domain.Kind, tier domain.RiskTier) float64 {
	policy, err := domain.PolicyFor(kind)
	if err != nil {
		return 0
	}
	return policy.InterruptionChance[tier]
}

// Roll performs a single weighted coin flip. A support crew role does not
// change the odds here; it is carried on the interruption for the downstream
// encounter system.
func (e *Engine) Roll(kind domain.Kind, tier domain.RiskTier, _ bool) bool {
	p := e.Probability(kind, tier)
	if p <= 0 {
		return false
	}
	return e.Rand.Float64() < p
}

// Materialize builds the interruption record for a mission that rolled true.
func (e *Engine) Materialize(m domain.Mission, navigatorAboard bool, now time.Time) domain.Interruption {
	desc := "Unexpected delay en route"
	if policy, err := domain.PolicyFor(m.Kind); err == nil && len(policy.Interruptions) > 0 {
		desc = policy.Interruptions[e.Rand.IntN(len(policy.Interruptions))]
	}
	return domain.Interruption{
		InterruptionID:  e.NewID(),
		MissionID:       m.ID,
		Description:     desc,
		PenaltySeconds:  e.PenaltySeconds,
		NavigatorAboard: navigatorAboard,
		RaisedAt:        now,
	}
}

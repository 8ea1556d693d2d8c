// Package reward turns completed missions into credits and reputation.
package reward

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/rogers-f/contract-engine/internal/domain"
)

// Narrator produces the human-readable completion line. Flavor text is an
// external content provider; PlainNarrator is the built-in fallback.
type Narrator interface {
	Narrate(m domain.Mission, r domain.Reward) string
}

// Resolver computes the reward for a completed mission.
type Resolver struct {
	// GraceFactor is the multiple of the nominal duration allowed before a
	// completion counts as late (default 1.2).
	GraceFactor float64
	// LatePenalty is the fraction of payout withheld on a late completion (default 0.2).
	LatePenalty float64
	Narrator    Narrator
}

// New creates a Resolver with standard thresholds.
func New() *Resolver {
	return &Resolver{
		GraceFactor: 1.2,
		LatePenalty: 0.2,
		Narrator:    PlainNarrator{},
	}
}

// Resolve computes credits and reputation for m completed after elapsedSeconds.
func (r *Resolver) Resolve(m domain.Mission, elapsedSeconds float64) domain.Reward {
	rw := domain.Reward{
		MissionID:      m.ID,
		Kind:           m.Kind,
		CreditsAwarded: m.Payout,
		ElapsedSeconds: elapsedSeconds,
	}

	if r.isLate(m, elapsedSeconds) {
		rw.Late = true
		rw.CreditsAwarded = int64(math.Round(float64(m.Payout) * (1 - r.LatePenalty)))
		rw.ReputationDelta = 0
	} else if policy, err := domain.PolicyFor(m.Kind); err == nil {
		rw.ReputationDelta = policy.ReputationDelta
	}

	narrator := r.Narrator
	if narrator == nil {
		narrator = PlainNarrator{}
	}
	rw.NarrativeDescription = narrator.Narrate(m, rw)
	return rw
}

func (r *Resolver) isLate(m domain.Mission, elapsedSeconds float64) bool {
	nominal := m.NominalDurationSeconds
	if nominal <= 0 {
		nominal = m.DurationSeconds
	}
	if nominal <= 0 {
		return false
	}
	return elapsedSeconds > float64(nominal)*r.GraceFactor
}

// PlainNarrator formats a one-line completion summary.
type PlainNarrator struct{}

// Narrate implements Narrator.
func (PlainNarrator) Narrate(m domain.Mission, r domain.Reward) string {
	verb := "Completed"
	if policy, err := domain.PolicyFor(m.Kind); err == nil {
		verb = policy.Verb
	}
	line := fmt.Sprintf("%s %s: %s -> %s, +%s credits", verb, m.Title, m.Origin, m.Destination,
		humanize.Comma(r.CreditsAwarded))
	if r.Late {
		return line + " (late, penalty applied, no reputation)"
	}
	return fmt.Sprintf("%s, +%d reputation", line, r.ReputationDelta)
}

package reward

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rogers-f/contract-engine/internal/domain"
)

func mission(kind domain.Kind) domain.Mission {
	return domain.Mission{
		ID:                     "m-1",
		Kind:                   kind,
		Title:                  "Grain run",
		Origin:                 "Sol",
		Destination:            "Sirius",
		Payout:                 12500,
		DurationSeconds:        200,
		NominalDurationSeconds: 200,
	}
}

func TestResolve_OnTime(t *testing.T) {
	r := New()

	rw := r.Resolve(mission(domain.KindTrade), 200)

	assert.False(t, rw.Late)
	assert.Equal(t, int64(12500), rw.CreditsAwarded)
	assert.Equal(t, 1, rw.ReputationDelta)
	assert.Equal(t, "m-1", rw.MissionID)
	assert.Contains(t, rw.NarrativeDescription, "12,500")
}

func TestResolve_WithinGrace(t *testing.T) {
	r := New()

	// Exactly at the 20% grace boundary is still on time.
	rw := r.Resolve(mission(domain.KindEscort), 240)
	assert.False(t, rw.Late)
	assert.Equal(t, 2, rw.ReputationDelta)
}

func TestResolve_LateCompletion(t *testing.T) {
	r := New()

	rw := r.Resolve(mission(domain.KindTrade), 1.3*200)

	assert.True(t, rw.Late)
	assert.Equal(t, int64(10000), rw.CreditsAwarded)
	assert.Zero(t, rw.ReputationDelta)
	assert.True(t, strings.Contains(rw.NarrativeDescription, "late"))
}

func TestResolve_UsesNominalNotExtendedDuration(t *testing.T) {
	r := New()
	m := mission(domain.KindDiplomatic)
	m.DurationSeconds = 260 // extended by an interruption

	rw := r.Resolve(m, 260)

	assert.True(t, rw.Late, "260s against a 200s nominal is beyond the grace window")
}

func TestResolve_ReputationByKind(t *testing.T) {
	r := New()
	want := map[domain.Kind]int{
		domain.KindTrade:      1,
		domain.KindTaxi:       1,
		domain.KindEscort:     2,
		domain.KindDiplomatic: 3,
		domain.KindStrike:     2,
	}
	for kind, rep := range want {
		assert.Equal(t, rep, r.Resolve(mission(kind), 100).ReputationDelta, "kind %s", kind)
	}
}

type fixedNarrator struct{}

func (fixedNarrator) Narrate(domain.Mission, domain.Reward) string { return "custom" }

func TestResolve_CustomNarrator(t *testing.T) {
	r := New()
	r.Narrator = fixedNarrator{}

	assert.Equal(t, "custom", r.Resolve(mission(domain.KindTaxi), 10).NarrativeDescription)
}

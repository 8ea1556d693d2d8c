// Package catalog holds the pool of mission templates that boards are drawn from.
package catalog

import (
	"fmt"
	"math/rand/v2"

	"github.com/rogers-f/contract-engine/internal/domain"
)

// Catalog is an immutable set of templates grouped by kind.
// Sample draws from the supplied random source, which is not goroutine-safe;
// callers serialize access the same way they serialize the rest of the engine.
type Catalog struct {
	byKind map[domain.Kind][]domain.MissionTemplate
	rng    *rand.Rand
}

// New validates templates and builds a catalog that samples with rng.
func New(templates []domain.MissionTemplate, rng *rand.Rand) (*Catalog, error) {
	c := &Catalog{
		byKind: make(map[domain.Kind][]domain.MissionTemplate),
		rng:    rng,
	}
	seen := make(map[string]bool, len(templates))
	for _, t := range templates {
		if err := validate(t); err != nil {
			return nil, err
		}
		if seen[t.TemplateID] {
			return nil, domain.NewEngineError(domain.ErrWorldInvalid.Code,
				fmt.Sprintf("duplicate template id %q", t.TemplateID))
		}
		seen[t.TemplateID] = true
		c.byKind[t.Kind] = append(c.byKind[t.Kind], t)
	}
	return c, nil
}

func validate(t domain.MissionTemplate) error {
	var problems []string
	if t.TemplateID == "" {
		problems = append(problems, "template_id is required")
	}
	if !domain.ValidKind(t.Kind) {
		problems = append(problems, fmt.Sprintf("unknown kind %q", t.Kind))
	}
	if !domain.ValidTier(t.RiskTier) {
		problems = append(problems, fmt.Sprintf("unknown risk tier %q", t.RiskTier))
	}
	if t.BasePayout < 0 {
		problems = append(problems, "base_payout must not be negative")
	}
	if t.DurationSeconds <= 0 {
		problems = append(problems, "duration_seconds must be positive")
	}
	if t.RequiredCapability < 0 {
		problems = append(problems, "required_capability must not be negative")
	}
	if len(problems) > 0 {
		return domain.NewEngineError(domain.ErrWorldInvalid.Code,
			fmt.Sprintf("template %q: %v", t.TemplateID, problems))
	}
	return nil
}

// Sample returns up to count templates of kind in random order, without
// replacement. When fewer templates exist, all of them are returned.
func (c *Catalog) Sample(kind domain.Kind, count int) []domain.MissionTemplate {
	pool := c.byKind[kind]
	if count <= 0 || len(pool) == 0 {
		return []domain.MissionTemplate{}
	}

	out := make([]domain.MissionTemplate, len(pool))
	copy(out, pool)
	c.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })

	if count < len(out) {
		out = out[:count]
	}
	return out
}

// Count returns the number of templates of kind.
func (c *Catalog) Count(kind domain.Kind) int {
	return len(c.byKind[kind])
}

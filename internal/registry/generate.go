package registry

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/rogers-f/contract-engine/internal/catalog"
	"github.com/rogers-f/contract-engine/internal/domain"
	"github.com/rogers-f/contract-engine/internal/routes"
)

// Board size bounds used when the generator is built with zero values.
const (
	DefaultMinBoard = 4
	DefaultMaxBoard = 5
)

// Generator turns catalog templates into Available missions for an origin.
type Generator struct {
	Graph    *routes.Graph
	Catalog  *catalog.Catalog
	Rand     *rand.Rand
	NewID    func() string
	MinBoard int
	MaxBoard int
}

// NewGenerator creates a Generator with the default board size and UUID mission IDs.
func NewGenerator(graph *routes.Graph, cat *catalog.Catalog, rng *rand.Rand) *Generator {
	return &Generator{
		Graph:    graph,
		Catalog:  cat,
		Rand:     rng,
		NewID:    uuid.NewString,
		MinBoard: DefaultMinBoard,
		MaxBoard: DefaultMaxBoard,
	}
}

// Generate draws a fresh board of missions of kind departing from origin.
// When origin has no neighbors the result is an empty, non-nil slice together
// with ErrNoRouteAvailable; an empty board is a valid state, not a failure.
func (g *Generator) Generate(origin string, kind domain.Kind, reputation int, now time.Time) ([]domain.Mission, error) {
	policy, err := domain.PolicyFor(kind)
	if err != nil {
		return nil, err
	}

	destinations := g.Graph.Neighbors(origin)
	if len(destinations) == 0 {
		return []domain.Mission{}, domain.NewEngineError(domain.ErrNoRouteAvailable.Code,
			fmt.Sprintf("no lanes leave %q", origin))
	}

	templates := g.Catalog.Sample(kind, g.boardSize())
	missions := make([]domain.Mission, 0, len(templates))
	for _, t := range templates {
		m := domain.Mission{
			ID:                     g.NewID(),
			TemplateID:             t.TemplateID,
			Kind:                   kind,
			Title:                  t.Title,
			Origin:                 origin,
			Destination:            destinations[g.Rand.IntN(len(destinations))],
			RiskTier:               t.RiskTier,
			Payout:                 ScalePayout(t.BasePayout, reputation),
			DurationSeconds:        t.DurationSeconds,
			NominalDurationSeconds: t.DurationSeconds,
			State:                  domain.MissionAvailable,
			CreatedAt:              now,
		}
		if policy.CapabilityGated {
			m.RequiredCapability = t.RequiredCapability
		}
		missions = append(missions, m)
	}
	return missions, nil
}

func (g *Generator) boardSize() int {
	lo, hi := g.MinBoard, g.MaxBoard
	if lo <= 0 {
		lo = DefaultMinBoard
	}
	if hi < lo {
		hi = lo
	}
	return lo + g.Rand.IntN(hi-lo+1)
}

// ScalePayout applies the linear reputation bonus: +0.5% per reputation point,
// unbounded above. Negative reputation reduces payout but never below zero.
func ScalePayout(base int64, reputation int) int64 {
	scaled := math.Round(float64(base) * (1 + float64(reputation)/200))
	if scaled < 0 {
		return 0
	}
	return int64(scaled)
}

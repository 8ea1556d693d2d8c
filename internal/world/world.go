// Package world loads the static universe the engine runs in: locations,
// lanes, the contract catalog and the starting fleet.
package world

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/rogers-f/contract-engine/internal/catalog"
	"github.com/rogers-f/contract-engine/internal/domain"
	"github.com/rogers-f/contract-engine/internal/fleet"
	"github.com/rogers-f/contract-engine/internal/routes"
)

//go:embed default_world.json
var defaultWorld []byte

// World is the JSON world definition.
type World struct {
	Locations []domain.Location        `json:"locations"`
	Lanes     []domain.Lane            `json:"lanes"`
	Templates []domain.MissionTemplate `json:"templates"`
	Fleet     []domain.Resource        `json:"fleet"`
}

// Default returns the built-in world.
func Default() (*World, error) {
	return Parse(defaultWorld)
}

// Load reads and validates a world file. An empty path loads the built-in world.
func Load(path string) (*World, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read world file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a world definition.
func Parse(data []byte) (*World, error) {
	var w World
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parse world JSON: %w", err)
	}
	if err := w.validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

func (w *World) validate() error {
	var problems []string

	known := make(map[string]bool, len(w.Locations))
	for _, l := range w.Locations {
		if l.ID == "" {
			problems = append(problems, "location id is required")
			continue
		}
		if known[l.ID] {
			problems = append(problems, fmt.Sprintf("duplicate location %q", l.ID))
		}
		known[l.ID] = true
	}
	for _, ln := range w.Lanes {
		if !known[ln.A] || !known[ln.B] {
			problems = append(problems, fmt.Sprintf("lane %s-%s references an unknown location", ln.A, ln.B))
		}
	}
	if len(w.Templates) == 0 {
		problems = append(problems, "at least one template is required")
	}
	ships := make(map[string]bool, len(w.Fleet))
	for _, s := range w.Fleet {
		if ships[s.ResourceID] {
			problems = append(problems, fmt.Sprintf("duplicate ship %q", s.ResourceID))
		}
		ships[s.ResourceID] = true
	}

	if len(problems) > 0 {
		return &domain.EngineError{
			Code:    domain.ErrWorldInvalid.Code,
			Message: fmt.Sprintf("%s: %v", domain.ErrWorldInvalid.Message, problems),
		}
	}
	return nil
}

// Graph builds the route graph.
func (w *World) Graph() *routes.Graph {
	return routes.NewGraph(w.Locations, w.Lanes)
}

// Catalog builds the contract catalog sampling from rng.
func (w *World) Catalog(rng *rand.Rand) (*catalog.Catalog, error) {
	return catalog.New(w.Templates, rng)
}

// Pool builds the starting fleet.
func (w *World) Pool() (*fleet.Pool, error) {
	return fleet.NewPool(w.Fleet)
}

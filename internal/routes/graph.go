// Package routes holds the static lane graph between locations.
package routes

import (
	"sort"

	"github.com/rogers-f/contract-engine/internal/domain"
)

// Graph is an immutable undirected graph of locations joined by lanes.
type Graph struct {
	locations map[string]domain.Location
	adj       map[string]map[string]struct{}
}

// NewGraph builds a graph from locations and lanes. Lanes may reference
// locations that were not listed; those are added with their ID as name.
// Self-loops are ignored.
func NewGraph(locations []domain.Location, lanes []domain.Lane) *Graph {
	g := &Graph{
		locations: make(map[string]domain.Location, len(locations)),
		adj:       make(map[string]map[string]struct{}),
	}
	for _, loc := range locations {
		g.locations[loc.ID] = loc
	}
	for _, l := range lanes {
		if l.A == l.B {
			continue
		}
		g.link(l.A, l.B)
		g.link(l.B, l.A)
	}
	return g
}

func (g *Graph) link(from, to string) {
	if _, ok := g.locations[from]; !ok {
		g.locations[from] = domain.Location{ID: from, Name: from}
	}
	set, ok := g.adj[from]
	if !ok {
		set = make(map[string]struct{})
		g.adj[from] = set
	}
	set[to] = struct{}{}
}

// Neighbors returns every location directly connected to location, sorted by ID.
// Unknown locations have no neighbors.
func (g *Graph) Neighbors(location string) []string {
	set := g.adj[location]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Connected reports whether a lane joins a and b.
func (g *Graph) Connected(a, b string) bool {
	_, ok := g.adj[a][b]
	return ok
}

// Location returns a location by ID.
func (g *Graph) Location(id string) (domain.Location, bool) {
	loc, ok := g.locations[id]
	return loc, ok
}

// Locations returns all known locations sorted by ID.
func (g *Graph) Locations() []domain.Location {
	out := make([]domain.Location, 0, len(g.locations))
	for _, loc := range g.locations {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

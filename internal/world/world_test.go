package world

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/rogers-f/contract-engine/internal/domain"
)

func TestDefault(t *testing.T) {
	w, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(w.Fleet) == 0 {
		t.Fatal("default world has no fleet")
	}

	cat, err := w.Catalog(rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	for _, k := range domain.AllKinds() {
		if cat.Count(k) < 4 {
			t.Errorf("Count(%s) = %d, want at least 4", k, cat.Count(k))
		}
	}

	g := w.Graph()
	if n := g.Neighbors("sol"); len(n) == 0 {
		t.Error("sol should have lanes")
	}
	if n := g.Neighbors("wolf-359"); len(n) != 0 {
		t.Errorf("wolf-359 neighbors = %v, want none", n)
	}

	pool, err := w.Pool()
	if err != nil {
		t.Fatalf("Pool: %v", err)
	}
	if got := pool.CountByStatus(domain.ResourceOperational); got != len(w.Fleet) {
		t.Errorf("operational ships = %d, want %d", got, len(w.Fleet))
	}
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	w, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(w.Locations) == 0 {
		t.Error("expected built-in locations")
	}
}

func TestLoad_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "world.json")
	data := `{
		"locations": [{"id": "a"}, {"id": "b"}],
		"lanes": [{"a": "a", "b": "b"}],
		"templates": [{"template_id": "t1", "kind": "escort", "title": "Run", "risk_tier": "low", "base_payout": 10, "duration_seconds": 5}],
		"fleet": [{"resource_id": "s1", "capability": 10, "current_health": 50}]
	}`
	if err := os.WriteFile(p, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	w, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(w.Templates) != 1 || w.Templates[0].Kind != domain.KindEscort {
		t.Errorf("Templates = %+v", w.Templates)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown lane endpoint", `{"locations":[{"id":"a"}],"lanes":[{"a":"a","b":"z"}],"templates":[{"template_id":"t"}]}`},
		{"no templates", `{"locations":[{"id":"a"}]}`},
		{"duplicate ship", `{"locations":[{"id":"a"}],"templates":[{"template_id":"t"}],"fleet":[{"resource_id":"s"},{"resource_id":"s"}]}`},
		{"duplicate location", `{"locations":[{"id":"a"},{"id":"a"}],"templates":[{"template_id":"t"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, domain.ErrWorldInvalid) {
				t.Errorf("err = %v, want ErrWorldInvalid", err)
			}
		})
	}
}

func TestParse_BadJSON(t *testing.T) {
	if _, err := Parse([]byte("{")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rogers-f/contract-engine/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TickInterval() != time.Second {
		t.Errorf("TickInterval = %s, want 1s", cfg.TickInterval())
	}
	if cfg.InterruptionPenaltySec != 60 {
		t.Errorf("InterruptionPenaltySec = %d, want 60", cfg.InterruptionPenaltySec)
	}
	if cfg.LateGraceFactor != 1.2 {
		t.Errorf("LateGraceFactor = %f, want 1.2", cfg.LateGraceFactor)
	}
	if cfg.LatePenaltyFraction != 0.2 {
		t.Errorf("LatePenaltyFraction = %f, want 0.2", cfg.LatePenaltyFraction)
	}
	if cfg.MinBoard != 4 || cfg.MaxBoard != 5 {
		t.Errorf("board = %d..%d, want 4..5", cfg.MinBoard, cfg.MaxBoard)
	}
	if !cfg.PruneCompleted() {
		t.Error("PruneCompleted should default to true")
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `{
		"db_path": "/tmp/contracts.db",
		"tick_interval_ms": 250,
		"seed": 42,
		"auto_prune": false,
		"log_level": "debug"
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/tmp/contracts.db" {
		t.Errorf("DBPath = %q, want /tmp/contracts.db", cfg.DBPath)
	}
	if cfg.TickInterval() != 250*time.Millisecond {
		t.Errorf("TickInterval = %s, want 250ms", cfg.TickInterval())
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
	if cfg.PruneCompleted() {
		t.Error("PruneCompleted = true, want false")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONTRACTS_DB_PATH", "/var/lib/contracts.db")
	t.Setenv("CONTRACTS_TICK_INTERVAL_MS", "500")
	t.Setenv("CONTRACTS_SEED", "7")
	path := writeConfig(t, `{"db_path": "/tmp/file.db", "tick_interval_ms": 100}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/var/lib/contracts.db" {
		t.Errorf("DBPath = %q, want env value", cfg.DBPath)
	}
	if cfg.TickIntervalMs != 500 {
		t.Errorf("TickIntervalMs = %d, want 500", cfg.TickIntervalMs)
	}
	if cfg.Seed != 7 {
		t.Errorf("Seed = %d, want 7", cfg.Seed)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.json"); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	if _, err := Load(writeConfig(t, `{not valid json}`)); err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"grace below one", `{"late_grace_factor": 0.5}`},
		{"penalty above one", `{"late_penalty_fraction": 1.5}`},
		{"board inverted", `{"min_board": 6, "max_board": 3}`},
		{"bad log level", `{"log_level": "loud"}`},
		{"negative tick", `{"tick_interval_ms": -1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.json))
			if !errors.Is(err, domain.ErrConfigInvalid) {
				t.Errorf("err = %v, want ErrConfigInvalid", err)
			}
		})
	}
}

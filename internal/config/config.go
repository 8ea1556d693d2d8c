// Package config loads the contract engine's runtime configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rogers-f/contract-engine/internal/domain"
)

// Config holds the engine's runtime configuration.
type Config struct {
	DBPath                 string  `json:"db_path"`
	ListenAddr             string  `json:"listen_addr"`
	WorldPath              string  `json:"world_path"`
	PlayerID               string  `json:"player_id"`
	Origin                 string  `json:"origin"`
	TickIntervalMs         int     `json:"tick_interval_ms"`
	InterruptionPenaltySec int     `json:"interruption_penalty_sec"`
	LateGraceFactor        float64 `json:"late_grace_factor"`
	LatePenaltyFraction    float64 `json:"late_penalty_fraction"`
	MinBoard               int     `json:"min_board"`
	MaxBoard               int     `json:"max_board"`
	Seed                   uint64  `json:"seed"`
	AutoPrune              *bool   `json:"auto_prune"`
	RateLimitPerMinute     int     `json:"rate_limit_per_minute"`
	LogLevel               string  `json:"log_level"`
	OTELEndpoint           string  `json:"otel_endpoint"`
	OTELInsecure           bool    `json:"otel_insecure"`
	ServiceName            string  `json:"service_name"`
}

// Load reads a JSON config file, applies environment overrides and
// defaults, and validates. An empty path starts from defaults only.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config JSON: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TickInterval returns the scheduler period.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// PruneCompleted reports whether completed missions are removed once credited.
func (c *Config) PruneCompleted() bool {
	return c.AutoPrune == nil || *c.AutoPrune
}

// applyEnv overrides file values with CONTRACTS_* environment variables.
func (c *Config) applyEnv() {
	c.DBPath = envStr("CONTRACTS_DB_PATH", c.DBPath)
	c.ListenAddr = envStr("CONTRACTS_LISTEN_ADDR", c.ListenAddr)
	c.WorldPath = envStr("CONTRACTS_WORLD_PATH", c.WorldPath)
	c.PlayerID = envStr("CONTRACTS_PLAYER_ID", c.PlayerID)
	c.Origin = envStr("CONTRACTS_ORIGIN", c.Origin)
	c.TickIntervalMs = envInt("CONTRACTS_TICK_INTERVAL_MS", c.TickIntervalMs)
	c.InterruptionPenaltySec = envInt("CONTRACTS_INTERRUPTION_PENALTY_SEC", c.InterruptionPenaltySec)
	c.RateLimitPerMinute = envInt("CONTRACTS_RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)
	c.Seed = envUint("CONTRACTS_SEED", c.Seed)
	c.LogLevel = envStr("CONTRACTS_LOG_LEVEL", c.LogLevel)
	c.OTELEndpoint = envStr("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTELEndpoint)
	c.ServiceName = envStr("OTEL_SERVICE_NAME", c.ServiceName)
}

func (c *Config) applyDefaults() {
	if c.DBPath == "" {
		c.DBPath = "contracts.db"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = "127.0.0.1:9810"
	}
	if c.PlayerID == "" {
		c.PlayerID = "captain"
	}
	if c.Origin == "" {
		c.Origin = "sol"
	}
	if c.TickIntervalMs == 0 {
		c.TickIntervalMs = 1000
	}
	if c.InterruptionPenaltySec == 0 {
		c.InterruptionPenaltySec = 60
	}
	if c.LateGraceFactor == 0 {
		c.LateGraceFactor = 1.2
	}
	if c.LatePenaltyFraction == 0 {
		c.LatePenaltyFraction = 0.2
	}
	if c.MinBoard == 0 {
		c.MinBoard = 4
	}
	if c.MaxBoard == 0 {
		c.MaxBoard = 5
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 120
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ServiceName == "" {
		c.ServiceName = "contractd"
	}
}

func (c *Config) validate() error {
	var problems []string

	if c.TickIntervalMs < 0 {
		problems = append(problems, "tick_interval_ms must be positive")
	}
	if c.InterruptionPenaltySec < 0 {
		problems = append(problems, "interruption_penalty_sec must not be negative")
	}
	if c.LateGraceFactor < 1 {
		problems = append(problems, "late_grace_factor must be at least 1")
	}
	if c.LatePenaltyFraction < 0 || c.LatePenaltyFraction > 1 {
		problems = append(problems, "late_penalty_fraction must be within [0, 1]")
	}
	if c.MinBoard < 0 || c.MaxBoard < c.MinBoard {
		problems = append(problems, "board size requires 0 <= min_board <= max_board")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("unknown log_level %q", c.LogLevel))
	}

	if len(problems) > 0 {
		return &domain.EngineError{
			Code:    domain.ErrConfigInvalid.Code,
			Message: fmt.Sprintf("%s: %v", domain.ErrConfigInvalid.Message, problems),
		}
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envUint(key string, defaultVal uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}

// Package cli implements the contractd subcommands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rogers-f/contract-engine/internal/client"
	"github.com/rogers-f/contract-engine/internal/config"
	"github.com/rogers-f/contract-engine/internal/domain"
	"github.com/rogers-f/contract-engine/internal/ipc"
)

// configFileName is looked up next to the executable and in the cwd.
const configFileName = "contracts.json"

// ConfigPath resolves the configuration file: the --config flag, then
// CONTRACTS_CONFIG, then contracts.json next to the executable or in the
// working directory. An empty result means built-in defaults.
func ConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv("CONTRACTS_CONFIG"); p != "" {
		return p
	}
	return discoverConfig()
}

func discoverConfig() string {
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName
	}
	return ""
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flagValue, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(ConfigPath(flagValue))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// NewLogger returns a JSON logger writing to w at the named level.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// newClient builds an API client from --addr, falling back to the
// configured listen address.
func newClient(cmd *cobra.Command) (*client.Client, error) {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, err
		}
		addr = ipc.FormatListenURL(cfg.ListenAddr)
	}
	return client.NewClient(client.Config{BaseURL: addr})
}

// addClientFlags registers the flags shared by commands that talk to a
// running engine.
func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().String("addr", "", "engine URL (default: derived from listen_addr)")
}

func riskColor(tier domain.RiskTier) string {
	switch tier {
	case domain.TierLow:
		return color.New(color.FgGreen).Sprint(tier)
	case domain.TierMedium:
		return color.New(color.FgYellow).Sprint(tier)
	case domain.TierHigh:
		return color.New(color.FgRed).Sprint(tier)
	case domain.TierCritical:
		return color.New(color.FgRed, color.Bold).Sprint(tier)
	}
	return string(tier)
}

func stateColor(state domain.MissionState) string {
	switch state {
	case domain.MissionAvailable:
		return color.New(color.FgBlue).Sprint(state)
	case domain.MissionActive:
		return color.New(color.FgYellow).Sprint(state)
	case domain.MissionCompleted:
		return color.New(color.FgGreen).Sprint(state)
	}
	return string(state)
}

func statusColor(status domain.ResourceStatus) string {
	switch status {
	case domain.ResourceOperational:
		return color.New(color.FgGreen).Sprint(status)
	case domain.ResourceAssigned:
		return color.New(color.FgYellow).Sprint(status)
	case domain.ResourceNeedsRepair:
		return color.New(color.FgRed).Sprint(status)
	}
	return string(status)
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rogers-f/contract-engine/internal/app"
	"github.com/rogers-f/contract-engine/internal/telemetry"
)

// ServeCmd runs the engine: scheduler, HTTP API and telemetry.
func ServeCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the contract engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := NewLogger(os.Stderr, cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Options{
				Endpoint:    cfg.OTELEndpoint,
				ServiceName: cfg.ServiceName,
				Version:     version,
				Insecure:    cfg.OTELInsecure,
			})
			if err != nil {
				return err
			}
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTelemetry(flushCtx); err != nil {
					logger.Error("telemetry shutdown", "error", err)
				}
			}()

			a, err := app.Open(ctx, cfg, logger, version)
			if err != nil {
				return fmt.Errorf("open engine: %w", err)
			}
			defer a.Close()

			logger.Info("contract engine starting",
				"version", version, "db", cfg.DBPath, "player_id", cfg.PlayerID, "tick", cfg.TickInterval())
			if err := a.Run(ctx); err != nil {
				return err
			}
			logger.Info("contract engine stopped")
			return nil
		},
	}
}

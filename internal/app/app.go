// Package app wires the contract engine's components from a Config.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rogers-f/contract-engine/internal/config"
	"github.com/rogers-f/contract-engine/internal/guard"
	"github.com/rogers-f/contract-engine/internal/ipc"
	"github.com/rogers-f/contract-engine/internal/player"
	"github.com/rogers-f/contract-engine/internal/registry"
	"github.com/rogers-f/contract-engine/internal/reward"
	"github.com/rogers-f/contract-engine/internal/risk"
	"github.com/rogers-f/contract-engine/internal/scheduler"
	"github.com/rogers-f/contract-engine/internal/store"
	"github.com/rogers-f/contract-engine/internal/world"
)

// shutdownTimeout bounds the graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// App is a fully wired engine: database, scheduler, ledger and HTTP handler.
type App struct {
	Config    *config.Config
	DB        *sql.DB
	World     *world.World
	Scheduler *scheduler.Scheduler
	Ledger    *player.Ledger
	Guard     *guard.Guard
	Handler   *ipc.Handler
	Logger    *slog.Logger

	checkpoint *store.Checkpoint
}

// Open builds an App from cfg. The last checkpoint, if any, is restored and
// world ships missing from it are added to the fleet.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, version string) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	w, err := world.Load(cfg.WorldPath)
	if err != nil {
		return nil, fmt.Errorf("load world: %w", err)
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a, err := wire(ctx, cfg, w, db, logger, version)
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func wire(ctx context.Context, cfg *config.Config, w *world.World, db *sql.DB, logger *slog.Logger, version string) (*App, error) {
	rng := newRand(cfg.Seed)

	cat, err := w.Catalog(rng)
	if err != nil {
		return nil, err
	}
	pool, err := w.Pool()
	if err != nil {
		return nil, err
	}

	graph := w.Graph()
	gen := registry.NewGenerator(graph, cat, rng)
	gen.MinBoard = cfg.MinBoard
	gen.MaxBoard = cfg.MaxBoard

	re := risk.New(rng)
	re.PenaltySeconds = int64(cfg.InterruptionPenaltySec)

	rr := reward.New()
	rr.GraceFactor = cfg.LateGraceFactor
	rr.LatePenalty = cfg.LatePenaltyFraction

	ledger := player.NewLedger(db, cfg.PlayerID, logger.With("component", "ledger"))
	journal := &store.Journal{DB: db, Logger: logger.With("component", "journal")}
	cp := &store.Checkpoint{DB: db}

	sched, err := scheduler.New(registry.New(), pool, gen, re, rr, scheduler.Options{
		Logger:       logger.With("component", "scheduler"),
		Notifier:     scheduler.Fanout{journal, scheduler.LogNotifier{Logger: logger}},
		Completions:  ledger,
		Checkpoints:  cp,
		TickInterval: cfg.TickInterval(),
		AutoPrune:    cfg.PruneCompleted(),
	})
	if err != nil {
		return nil, err
	}

	if err := restore(ctx, sched, cp, w, logger); err != nil {
		return nil, err
	}

	g := guard.NewGuard(guard.GuardConfig{RateLimitPerMinute: cfg.RateLimitPerMinute})

	handler := &ipc.Handler{
		Scheduler: sched,
		Ledger:    ledger,
		Guard:     g,
		Graph:     graph,
		DB:        db,
		EventRepo: &store.EventRepo{},
		AuditRepo: &store.AuditRepo{},
		Logger:    logger.With("component", "api"),
		Origin:    cfg.Origin,
		Version:   version,
	}

	return &App{
		Config:     cfg,
		DB:         db,
		World:      w,
		Scheduler:  sched,
		Ledger:     ledger,
		Guard:      g,
		Handler:    handler,
		Logger:     logger,
		checkpoint: cp,
	}, nil
}

// restore loads the last checkpoint into sched. Ships defined by the world
// but absent from the checkpoint join the fleet as operational.
func restore(ctx context.Context, sched *scheduler.Scheduler, cp *store.Checkpoint, w *world.World, logger *slog.Logger) error {
	snap, err := cp.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	if snap == nil {
		return nil
	}
	if err := sched.Restore(*snap); err != nil {
		return fmt.Errorf("restore checkpoint: %w", err)
	}

	known := make(map[string]bool, len(snap.Resources))
	for _, r := range snap.Resources {
		known[r.ResourceID] = true
	}
	for _, r := range w.Fleet {
		if known[r.ResourceID] {
			continue
		}
		if err := sched.AddResource(r); err != nil {
			return fmt.Errorf("add ship %s: %w", r.ResourceID, err)
		}
		logger.Info("ship joined fleet", "resource_id", r.ResourceID)
	}
	return nil
}

// Run serves the API and drives the scheduler until ctx is cancelled. The
// final state is checkpointed on the way out.
func (a *App) Run(ctx context.Context) error {
	srv := ipc.NewServer(a.Handler, a.Config.ListenAddr)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Scheduler.Run(gctx)
	})

	g.Go(func() error {
		a.sweepGuard(gctx)
		return nil
	})

	g.Go(func() error {
		a.Logger.Info("contract engine listening",
			"url", ipc.FormatListenURL(a.Config.ListenAddr), "tick", a.Scheduler.Interval())
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Scheduler.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()

	saveCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if cpErr := a.checkpoint.SaveSnapshot(saveCtx, a.Scheduler.Snapshot()); cpErr != nil {
		a.Logger.Error("final checkpoint", "error", cpErr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// sweepGuard drops stale rate-limit windows once a minute.
func (a *App) sweepGuard(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.Guard.Sweep(); n > 0 {
				a.Logger.Debug("rate limit windows swept", "count", n)
			}
		}
	}
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}

// newRand returns the engine's random source. A zero seed draws one from the clock.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

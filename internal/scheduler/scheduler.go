// Package scheduler is the single writer of mission and ship state. It
// serializes generation, acceptance and tick reconciliation behind one lock.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rogers-f/contract-engine/internal/domain"
	"github.com/rogers-f/contract-engine/internal/fleet"
	"github.com/rogers-f/contract-engine/internal/registry"
	"github.com/rogers-f/contract-engine/internal/reward"
)

// DefaultTickInterval is the reconciliation period used by Run.
const DefaultTickInterval = time.Second

// RiskRoller decides and materializes interruptions. *risk.Engine implements it.
type RiskRoller interface {
	Roll(kind domain.Kind, tier domain.RiskTier, crewModifierPresent bool) bool
	Materialize(m domain.Mission, navigatorAboard bool, now time.Time) domain.Interruption
}

// CrewProvider reports whether a ship carries a support role such as a navigator.
type CrewProvider interface {
	HasSupportRole(resourceID string) bool
}

// CompletionHandler applies a completed mission's reward on the host side.
type CompletionHandler interface {
	ApplyCompletion(ctx context.Context, c domain.Completion) error
}

// Checkpointer persists engine snapshots.
type Checkpointer interface {
	SaveSnapshot(ctx context.Context, snap domain.Snapshot) error
}

// Options holds the optional collaborators of a Scheduler.
type Options struct {
	Logger       *slog.Logger
	Notifier     Notifier
	Crew         CrewProvider
	Completions  CompletionHandler
	Checkpoints  Checkpointer
	Now          func() time.Time
	TickInterval time.Duration
	// AutoPrune removes completed missions once Completions accepted them.
	AutoPrune bool
}

// Scheduler owns the mission registry and the fleet pool.
type Scheduler struct {
	mu        sync.Mutex
	missions  *registry.Registry
	ships     *fleet.Pool
	generator *registry.Generator
	risk      RiskRoller
	rewards   *reward.Resolver

	logger      *slog.Logger
	notifier    Notifier
	crew        CrewProvider
	completions CompletionHandler
	checkpoints Checkpointer
	now         func() time.Time
	interval    time.Duration
	autoPrune   bool

	// lastRoll is the latest clock reading that risk was rolled for. Ticks at
	// or before it only recompute progress.
	lastRoll time.Time
	pending  []domain.Notification
	metrics  *metrics

	// owed holds completions the completion handler has not accepted yet.
	owed []domain.Completion

	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a Scheduler. Zero-value options fall back to a discarding
// logger, no notifications, the wall clock and DefaultTickInterval.
func New(reg *registry.Registry, pool *fleet.Pool, gen *registry.Generator, re RiskRoller, rr *reward.Resolver, opts Options) (*Scheduler, error) {
	if reg == nil || pool == nil || gen == nil || re == nil || rr == nil {
		return nil, errors.New("scheduler: registry, pool, generator, risk engine and resolver are required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Notifier == nil {
		opts.Notifier = Discard{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	s := &Scheduler{
		missions:    reg,
		ships:       pool,
		generator:   gen,
		risk:        re,
		rewards:     rr,
		logger:      opts.Logger,
		notifier:    opts.Notifier,
		crew:        opts.Crew,
		completions: opts.Completions,
		checkpoints: opts.Checkpoints,
		now:         opts.Now,
		interval:    opts.TickInterval,
		autoPrune:   opts.AutoPrune,
		stopCh:      make(chan struct{}),
	}
	s.metrics = newMetrics(s)
	return s, nil
}

// Generate replaces the Available missions of kind with a fresh board
// departing from origin. When origin has no lanes the registry is left
// untouched and an empty board is returned with ErrNoRouteAvailable.
func (s *Scheduler) Generate(ctx context.Context, origin string, kind domain.Kind, reputation int) ([]domain.Mission, error) {
	s.mu.Lock()
	now := s.now()
	board, err := s.generator.Generate(origin, kind, reputation, now)
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, domain.ErrNoRouteAvailable) {
			s.logger.Info("no route for board", "origin", origin, "kind", kind)
		}
		return board, err
	}
	removed, err := s.missions.ReplaceAvailable(kind, board)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("replace board: %w", err)
	}
	for _, m := range board {
		s.queue(domain.NotifyGenerated, m, now,
			fmt.Sprintf("New %s contract: %s (%s -> %s), %d credits", m.Kind, m.Title, m.Origin, m.Destination, m.Payout))
	}
	notes := s.drain()
	s.mu.Unlock()

	s.logger.Info("board generated", "origin", origin, "kind", kind, "missions", len(board), "replaced", removed)
	s.metrics.generated(ctx, kind, len(board))
	s.dispatch(ctx, notes)
	return board, nil
}

// Accept binds the first capable operational ship to an Available mission.
func (s *Scheduler) Accept(ctx context.Context, missionID string) (domain.Mission, error) {
	return s.AcceptWith(ctx, missionID, "")
}

// AcceptWith binds the named ship, or the first capable one when resourceID
// is empty. A rejected accept changes nothing.
func (s *Scheduler) AcceptWith(ctx context.Context, missionID, resourceID string) (domain.Mission, error) {
	s.mu.Lock()
	now := s.now()
	m, err := s.missions.Accept(missionID, resourceID, s.ships, now)
	if err != nil {
		s.mu.Unlock()
		s.logger.Debug("accept rejected", "mission_id", missionID, "resource_id", resourceID, "error", err)
		return domain.Mission{}, err
	}
	s.queue(domain.NotifyAccepted, m, now,
		fmt.Sprintf("Accepted %s: %s assigned to %s", m.Title, m.AssignedResourceID, m.Destination))
	notes := s.drain()
	s.mu.Unlock()

	s.logger.Info("mission accepted", "mission_id", m.ID, "kind", m.Kind, "resource_id", m.AssignedResourceID)
	s.metrics.accepted(ctx, m.Kind)
	s.dispatch(ctx, notes)
	return m, nil
}

// ResolveInterruption clears the pending interruption of an Active mission
// once the downstream encounter is over. The duration extension stays.
func (s *Scheduler) ResolveInterruption(ctx context.Context, missionID string) (domain.Interruption, error) {
	s.mu.Lock()
	in, err := s.missions.ResolveInterruption(missionID)
	if err != nil {
		s.mu.Unlock()
		return domain.Interruption{}, err
	}
	m, _ := s.missions.Get(missionID)
	s.queue(domain.NotifyResolved, m, s.now(), "Resolved: "+in.Description)
	notes := s.drain()
	s.mu.Unlock()

	s.logger.Info("interruption resolved", "mission_id", missionID, "interruption_id", in.InterruptionID)
	s.dispatch(ctx, notes)
	return in, nil
}

// Prune removes a Completed mission after its reward was applied.
func (s *Scheduler) Prune(missionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.missions.Prune(missionID)
}

// PruneCompleted removes every Completed mission and returns their IDs.
func (s *Scheduler) PruneCompleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.missions.PruneCompleted()
}

// AddResource registers a newly acquired ship.
func (s *Scheduler) AddResource(r domain.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ships.Add(r)
}

// MarkNeedsRepair takes an idle ship out of service. health < 0 keeps the current value.
func (s *Scheduler) MarkNeedsRepair(resourceID string, health int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ships.MarkNeedsRepair(resourceID, health)
}

// Repair restores a ship to full health and returns it to service.
func (s *Scheduler) Repair(resourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ships.Repair(resourceID)
}

// Mission returns a copy of one mission.
func (s *Scheduler) Mission(id string) (domain.Mission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.missions.Get(id)
}

// Missions lists missions in state, or all of them when state is empty.
func (s *Scheduler) Missions(state domain.MissionState) []domain.Mission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.missions.List(state)
}

// Resources lists every ship in fleet order.
func (s *Scheduler) Resources() []domain.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ships.List()
}

// Snapshot copies the full engine state.
func (s *Scheduler) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Snapshot{
		Missions:  s.missions.List(""),
		Resources: s.ships.List(),
		TakenAt:   s.now(),
	}
}

// Restore replaces the engine state with snap. The snapshot must satisfy the
// binding invariants: each Active mission holds exactly one Assigned ship and
// no ship is Assigned without an Active mission. Open missions must follow a
// lane of the current graph. Completed missions are offered to the
// completion handler again on the next step; crediting is idempotent.
func (s *Scheduler) Restore(snap domain.Snapshot) error {
	pool, err := fleet.NewPool(snap.Resources)
	if err != nil {
		return fmt.Errorf("restore fleet: %w", err)
	}
	reg := registry.New()
	bound := make(map[string]string)
	var owed []domain.Completion
	for _, m := range snap.Missions {
		if err := reg.Insert(m); err != nil {
			return fmt.Errorf("restore missions: %w", err)
		}
		if m.State == domain.MissionCompleted {
			owed = append(owed, domain.Completion{
				Mission: m,
				Reward:  s.rewards.Resolve(m, m.CompletedAt.Sub(m.StartedAt).Seconds()),
			})
			continue
		}
		if !s.generator.Graph.Connected(m.Origin, m.Destination) {
			return domain.NewEngineError(domain.ErrWorldInvalid.Code,
				fmt.Sprintf("mission %s runs %s -> %s, which no lane joins", m.ID, m.Origin, m.Destination))
		}
		if m.State != domain.MissionActive {
			continue
		}
		ship, ok := pool.Get(m.AssignedResourceID)
		if !ok || ship.Status != domain.ResourceAssigned {
			return domain.NewEngineError(domain.ErrResourceNotBound.Code,
				fmt.Sprintf("active mission %s is not bound to an assigned ship", m.ID))
		}
		if other, dup := bound[ship.ResourceID]; dup {
			return domain.NewEngineError(domain.ErrResourceBusy.Code,
				fmt.Sprintf("ship %s bound to both %s and %s", ship.ResourceID, other, m.ID))
		}
		bound[ship.ResourceID] = m.ID
	}
	for _, r := range pool.List() {
		if r.Status == domain.ResourceAssigned && bound[r.ResourceID] == "" {
			return domain.NewEngineError(domain.ErrResourceNotBound.Code,
				fmt.Sprintf("ship %s is assigned without an active mission", r.ResourceID))
		}
	}

	s.mu.Lock()
	s.missions = reg
	s.ships = pool
	s.owed = owed
	s.mu.Unlock()
	s.logger.Info("state restored", "missions", len(snap.Missions), "ships", len(snap.Resources), "owed", len(owed))
	return nil
}

func (s *Scheduler) queue(t domain.NotificationType, m domain.Mission, now time.Time, msg string) {
	s.pending = append(s.pending, domain.Notification{
		Type:      t,
		MissionID: m.ID,
		Kind:      m.Kind,
		Message:   msg,
		CreatedAt: now,
	})
}

func (s *Scheduler) drain() []domain.Notification {
	notes := s.pending
	s.pending = nil
	return notes
}

func (s *Scheduler) dispatch(ctx context.Context, notes []domain.Notification) {
	for _, n := range notes {
		s.notifier.Notify(ctx, n)
	}
}

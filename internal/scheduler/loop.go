package scheduler

import (
	"context"
	"time"

	"github.com/rogers-f/contract-engine/internal/domain"
)

// Run drives Tick on a fixed period until ctx is cancelled or Stop is called.
// After each tick, completions are handed to the completion handler and the
// engine is checkpointed when a checkpointer is configured.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "interval", s.interval)
	for {
		select {
		case <-s.stopCh:
			s.logger.Info("scheduler stopped")
			return nil
		case <-ctx.Done():
			s.logger.Info("scheduler stopped", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			s.step(ctx)
		}
	}
}

// Stop signals Run to return. Safe to call multiple times.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Interval returns the tick period used by Run.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// step runs one tick and hands every completion to the completion handler.
// Completions the handler rejected stay owed and are offered again on the
// next step, ahead of new ones.
func (s *Scheduler) step(ctx context.Context) {
	report := s.Tick(ctx, s.now())

	if s.completions != nil {
		s.mu.Lock()
		due := append(s.owed, report.Completed...)
		s.owed = nil
		s.mu.Unlock()

		var failed []domain.Completion
		for _, c := range due {
			if err := s.completions.ApplyCompletion(ctx, c); err != nil {
				s.logger.Error("apply completion", "mission_id", c.Mission.ID, "error", err)
				failed = append(failed, c)
				continue
			}
			if s.autoPrune {
				if err := s.Prune(c.Mission.ID); err != nil {
					s.logger.Warn("prune completed mission", "mission_id", c.Mission.ID, "error", err)
				}
			}
		}
		if len(failed) > 0 {
			s.mu.Lock()
			s.owed = append(failed, s.owed...)
			s.mu.Unlock()
		}
	}

	if s.checkpoints != nil {
		if err := s.checkpoints.SaveSnapshot(ctx, s.Snapshot()); err != nil {
			s.logger.Error("checkpoint", "error", err)
		}
	}
}

// Owed returns the completions still waiting for the completion handler.
func (s *Scheduler) Owed() []domain.Completion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Completion, len(s.owed))
	copy(out, s.owed)
	return out
}

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rogers-f/contract-engine/internal/domain"
)

// TickReport summarizes one reconciliation pass.
type TickReport struct {
	Now         time.Time             `json:"now"`
	Advanced    int                   `json:"advanced"`
	Interrupted []domain.Interruption `json:"interrupted"`
	Completed   []domain.Completion   `json:"completed"`
}

// Progress recomputes a mission's progress percentage at now from its start
// time and current duration, clamped to [0, 100].
func Progress(m domain.Mission, now time.Time) float64 {
	if m.StartedAt.IsZero() {
		return 0
	}
	if m.DurationSeconds <= 0 {
		return 100
	}
	elapsed := now.Sub(m.StartedAt).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return min(100, 100*elapsed/float64(m.DurationSeconds))
}

// Tick reconciles every Active mission against the same clock reading.
// Progress is recomputed, never incremented, so repeating a tick with the
// same now changes nothing. Risk is rolled at most once per clock reading.
//
// Tick panics if an Active mission is bound to a ship the pool does not
// know: that state is only reachable through registry corruption.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) TickReport {
	start := time.Now()

	s.mu.Lock()
	report := s.reconcile(now)
	notes := s.drain()
	active := len(s.missions.ActiveIDs())
	s.mu.Unlock()

	s.metrics.tick(ctx, time.Since(start), report)
	for _, c := range report.Completed {
		s.logger.Info("mission completed",
			"mission_id", c.Mission.ID, "kind", c.Mission.Kind, "resource_id", c.ResourceID,
			"credits", c.Reward.CreditsAwarded, "reputation", c.Reward.ReputationDelta, "late", c.Reward.Late)
	}
	for _, in := range report.Interrupted {
		s.logger.Info("mission interrupted",
			"mission_id", in.MissionID, "penalty_seconds", in.PenaltySeconds,
			"progress_before", in.ProgressBefore, "progress_after", in.ProgressAfter)
	}
	s.logger.Debug("tick", "now", now, "advanced", report.Advanced, "active", active)
	s.dispatch(ctx, notes)
	return report
}

func (s *Scheduler) reconcile(now time.Time) TickReport {
	report := TickReport{
		Now:         now,
		Interrupted: []domain.Interruption{},
		Completed:   []domain.Completion{},
	}
	roll := now.After(s.lastRoll)
	if roll {
		s.lastRoll = now
	}

	for _, id := range s.missions.ActiveIDs() {
		m, _ := s.missions.Get(id)
		if _, ok := s.ships.Get(m.AssignedResourceID); !ok {
			panic(fmt.Sprintf("scheduler: active mission %s is bound to unknown ship %q", m.ID, m.AssignedResourceID))
		}

		progress := Progress(m, now)
		if progress >= 100 {
			report.Completed = append(report.Completed, s.complete(m, now))
			continue
		}

		var raised *domain.Interruption
		navigator := s.hasNavigator(m.AssignedResourceID)
		if roll && m.PendingInterruption == nil && s.risk.Roll(m.Kind, m.RiskTier, navigator) {
			in := s.risk.Materialize(m, navigator, now)
			in.ProgressBefore = progress
			m.DurationSeconds += in.PenaltySeconds
			in.ProgressAfter = Progress(m, now)
			raised = &in
		}

		err := s.missions.Advance(id, func(am *domain.Mission) {
			if raised != nil {
				am.DurationSeconds = m.DurationSeconds
				am.PendingInterruption = raised
				am.ProgressPercent = raised.ProgressAfter
				return
			}
			am.ProgressPercent = progress
		})
		if err != nil {
			panic(fmt.Sprintf("scheduler: advance active mission %s: %v", m.ID, err))
		}
		report.Advanced++

		if raised != nil {
			report.Interrupted = append(report.Interrupted, *raised)
			s.queue(domain.NotifyInterrupted, m, now,
				fmt.Sprintf("%s delayed: %s (+%ds)", m.Title, raised.Description, raised.PenaltySeconds))
		}
	}
	return report
}

func (s *Scheduler) complete(m domain.Mission, now time.Time) domain.Completion {
	done, resourceID, err := s.missions.Complete(m.ID, now)
	if err != nil {
		panic(fmt.Sprintf("scheduler: complete active mission %s: %v", m.ID, err))
	}
	if err := s.ships.Release(resourceID); err != nil {
		panic(fmt.Sprintf("scheduler: release ship %s of mission %s: %v", resourceID, m.ID, err))
	}
	rw := s.rewards.Resolve(done, now.Sub(m.StartedAt).Seconds())
	s.queue(domain.NotifyCompleted, done, now, rw.NarrativeDescription)
	return domain.Completion{Mission: done, Reward: rw, ResourceID: resourceID}
}

func (s *Scheduler) hasNavigator(resourceID string) bool {
	return s.crew != nil && s.crew.HasSupportRole(resourceID)
}

package scheduler

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/rogers-f/contract-engine/internal/domain"
	"github.com/rogers-f/contract-engine/internal/telemetry"
)

type metrics struct {
	generatedCount   metric.Int64Counter
	acceptedCount    metric.Int64Counter
	completedCount   metric.Int64Counter
	interruptedCount metric.Int64Counter
	tickDuration     metric.Float64Histogram
}

func newMetrics(s *Scheduler) *metrics {
	meter := telemetry.Meter("contract-engine/scheduler")
	m := &metrics{}
	m.generatedCount, _ = meter.Int64Counter("contracts.missions.generated",
		metric.WithDescription("Missions added to the board"))
	m.acceptedCount, _ = meter.Int64Counter("contracts.missions.accepted",
		metric.WithDescription("Missions moved from available to active"))
	m.completedCount, _ = meter.Int64Counter("contracts.missions.completed",
		metric.WithDescription("Missions resolved by the tick"))
	m.interruptedCount, _ = meter.Int64Counter("contracts.missions.interrupted",
		metric.WithDescription("Interruptions raised against active missions"))
	m.tickDuration, _ = meter.Float64Histogram("contracts.tick.duration",
		metric.WithDescription("Time spent reconciling one tick (ms)"),
		metric.WithUnit("ms"))

	_, _ = meter.Int64ObservableGauge("contracts.missions.active",
		metric.WithDescription("Missions currently active"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			s.mu.Lock()
			n := len(s.missions.ActiveIDs())
			s.mu.Unlock()
			o.Observe(int64(n))
			return nil
		}),
	)
	_, _ = meter.Int64ObservableGauge("contracts.ships.operational",
		metric.WithDescription("Ships free for assignment"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			s.mu.Lock()
			n := s.ships.CountByStatus(domain.ResourceOperational)
			s.mu.Unlock()
			o.Observe(int64(n))
			return nil
		}),
	)
	return m
}

func kindAttr(kind domain.Kind) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("kind", string(kind)))
}

func (m *metrics) generated(ctx context.Context, kind domain.Kind, n int) {
	if m.generatedCount != nil {
		m.generatedCount.Add(ctx, int64(n), kindAttr(kind))
	}
}

func (m *metrics) accepted(ctx context.Context, kind domain.Kind) {
	if m.acceptedCount != nil {
		m.acceptedCount.Add(ctx, 1, kindAttr(kind))
	}
}

func (m *metrics) tick(ctx context.Context, elapsed time.Duration, r TickReport) {
	if m.tickDuration != nil {
		m.tickDuration.Record(ctx, float64(elapsed.Microseconds())/1000)
	}
	for _, c := range r.Completed {
		if m.completedCount != nil {
			m.completedCount.Add(ctx, 1, metric.WithAttributes(
				attribute.String("kind", string(c.Mission.Kind)),
				attribute.Bool("late", c.Reward.Late)))
		}
	}
	if m.interruptedCount != nil && len(r.Interrupted) > 0 {
		m.interruptedCount.Add(ctx, int64(len(r.Interrupted)))
	}
}

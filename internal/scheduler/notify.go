package scheduler

import (
	"context"
	"log/slog"

	"github.com/rogers-f/contract-engine/internal/domain"
)

// Notifier receives engine notifications after the scheduler lock is released.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

// Discard drops every notification.
type Discard struct{}

// Notify implements Notifier.
func (Discard) Notify(context.Context, domain.Notification) {}

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (l LogNotifier) Notify(ctx context.Context, n domain.Notification) {
	l.Logger.InfoContext(ctx, n.Message,
		"notification", string(n.Type), "mission_id", n.MissionID, "kind", string(n.Kind))
}

// Fanout delivers each notification to every notifier in order.
type Fanout []Notifier

// Notify implements Notifier.
func (f Fanout) Notify(ctx context.Context, n domain.Notification) {
	for _, nf := range f {
		nf.Notify(ctx, n)
	}
}

// Recorder keeps notifications in memory. Useful for tests and for hosts that poll.
type Recorder struct {
	Notes []domain.Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(_ context.Context, n domain.Notification) {
	r.Notes = append(r.Notes, n)
}

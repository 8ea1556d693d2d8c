// Package guard throttles mutating API requests per client.
package guard

import (
	"sync"
	"time"

	"github.com/rogers-f/contract-engine/internal/domain"
)

// GuardConfig holds the request limits.
type GuardConfig struct {
	RateLimitPerMinute int
}

// Guard enforces a fixed one-minute window per client key.
type Guard struct {
	Config GuardConfig
	Now    func() time.Time

	mu         sync.Mutex
	rateCounts map[string]*rateBucket
}

type rateBucket struct {
	count       int
	windowStart time.Time
}

// NewGuard creates a Guard. A limit of zero or less disables throttling.
func NewGuard(cfg GuardConfig) *Guard {
	return &Guard{
		Config:     cfg,
		Now:        time.Now,
		rateCounts: make(map[string]*rateBucket),
	}
}

// CheckRateLimit counts one request for key and returns ErrRateLimitExceeded
// once the window's allowance is spent.
func (g *Guard) CheckRateLimit(key string) error {
	if g.Config.RateLimitPerMinute <= 0 {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.Now()
	bucket, ok := g.rateCounts[key]
	if !ok || now.Sub(bucket.windowStart) >= time.Minute {
		g.rateCounts[key] = &rateBucket{count: 1, windowStart: now}
		return nil
	}
	if bucket.count >= g.Config.RateLimitPerMinute {
		return domain.ErrRateLimitExceeded
	}
	bucket.count++
	return nil
}

// Sweep drops buckets whose window has expired.
func (g *Guard) Sweep() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.Now()
	n := 0
	for key, b := range g.rateCounts {
		if now.Sub(b.windowStart) >= time.Minute {
			delete(g.rateCounts, key)
			n++
		}
	}
	return n
}

package enhancements

import (
	"sync"
	"time"
)

// DefaultProbeThrottle is the window bootstrap applies between filesystem
// probes for the same enhancement.
const DefaultProbeThrottle = 1 * time.Second

// probeLimiter throttles filesystem checks per enhancement. Reads inside the
// window serve the stored status; detection stays lazy and eventual without a
// stat storm when a client polls aggressively. A nil limiter never throttles.
type probeLimiter struct {
	mu      sync.Mutex
	lastHit map[string]time.Time
	now     func() time.Time
	window  time.Duration
}

func newProbeLimiter(window time.Duration, now func() time.Time) *probeLimiter {
	if now == nil {
		now = time.Now
	}
	if window <= 0 {
		return nil
	}
	return &probeLimiter{
		lastHit: make(map[string]time.Time),
		now:     now,
		window:  window,
	}
}

func (l *probeLimiter) Allow(enhancementID string) bool {
	if l == nil {
		return true
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.lastHit[enhancementID]; ok {
		if now.Sub(last) < l.window {
			return false
		}
	}
	l.lastHit[enhancementID] = now
	return true
}

// Forget clears the throttle entry, freeing memory for deleted enhancements.
func (l *probeLimiter) Forget(enhancementID string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.lastHit, enhancementID)
}

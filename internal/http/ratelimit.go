package http

import (
	"sync"
	"sync/atomic"
	"time"
)

// rateLimiter caps mutating requests per client IP. Reads are never
// throttled; the middleware only consults the limiter for POST/PUT/DELETE
// traffic, so the budget applies to ledger writes alone.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	limit   int
	window  time.Duration

	stopEvict chan struct{}
	stopOnce  sync.Once
}

type clientWindow struct {
	lastSeen time.Time
	requests int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		clients:   make(map[string]*clientWindow),
		limit:     limit,
		window:    window,
		stopEvict: make(chan struct{}),
	}
	go rl.evictLoop()
	return rl
}

// evictLoop periodically drops idle clients so the map does not grow with one
// entry per IP ever seen.
func (rl *rateLimiter) evictLoop() {
	ticker := time.NewTicker(5 * rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle(10 * rl.window)
		case <-rl.stopEvict:
			return
		}
	}
}

func (rl *rateLimiter) evictIdle(idle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-idle)
	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// stop shuts down the eviction goroutine.
func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopEvict)
	})
}

// allow records one request for the IP and reports whether it stays within
// the limit. The counter restarts after a full window of inactivity.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, ok := rl.clients[clientIP]
	if !ok || now.Sub(c.lastSeen) > rl.window {
		rl.clients[clientIP] = &clientWindow{lastSeen: now, requests: 1}
		return true
	}

	c.requests++
	c.lastSeen = now

	if c.requests > rl.limit {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}

package pipeline

import (
	"strconv"
	"sync"
	"time"
)

// RateLimitEntry tracks one client's usage inside the current window.
type RateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

// RateLimiter is a fixed-window per-client limiter. The first request in
// a window starts it; when the window lapses the next request starts a
// fresh one. Denied requests do not consume quota.
type RateLimiter struct {
	mu          sync.Mutex
	clients     map[string]*RateLimitEntry
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

// NewRateLimiter allows maxRequests per client per window.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		clients:     make(map[string]*RateLimitEntry),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Allow reports whether clientID may proceed, consuming one unit of
// quota when it may.
func (r *RateLimiter) Allow(clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.clients[clientID]
	if !ok || now.After(entry.ResetTime) {
		r.clients[clientID] = &RateLimitEntry{
			Count:     1,
			ResetTime: now.Add(r.window),
		}
		return true
	}

	if entry.Count < r.maxRequests {
		entry.Count++
		return true
	}
	return false
}

// Headers returns the standard rate-limit response headers for clientID.
func (r *RateLimiter) Headers(clientID string) map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	remaining := r.maxRequests
	reset := r.now().Add(r.window)

	if entry, ok := r.clients[clientID]; ok && r.now().Before(entry.ResetTime) {
		remaining = r.maxRequests - entry.Count
		if remaining < 0 {
			remaining = 0
		}
		reset = entry.ResetTime
	}

	return map[string]string{
		"X-RateLimit-Limit":     strconv.Itoa(r.maxRequests),
		"X-RateLimit-Remaining": strconv.Itoa(remaining),
		"X-RateLimit-Reset":     strconv.FormatInt(reset.Unix(), 10),
	}
}

// Cleanup drops tracking entries whose window has lapsed.
func (r *RateLimiter) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	now := r.now()
	for id, entry := range r.clients {
		if now.After(entry.ResetTime) {
			delete(r.clients, id)
			removed++
		}
	}
	return removed
}

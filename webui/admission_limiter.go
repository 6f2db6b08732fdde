// Package webui provides the HTTP surface of the art generation backend:
// the server organism, API handlers, admission limiting, and middleware.
package webui

import (
	"context"
	"sync"
	"time"
)

// windowRecord tracks request counts for one client inside the current
// admission window.
type windowRecord struct {
	count   int
	resetAt time.Time
}

// AdmissionLimiter caps how many generation requests a client may make per
// fixed window. The first request in a window starts it; once the window
// expires the count starts over, so a burst at a window boundary can
// briefly exceed the nominal rate. That tradeoff keeps the limiter a
// single map lookup per request.
//
// Thread safety is provided via sync.Mutex for concurrent access.
type AdmissionLimiter struct {
	mu      sync.Mutex
	clients map[string]windowRecord
	limit   int
	window  time.Duration
}

// NewAdmissionLimiter creates a limiter allowing limit requests per window
// per client key.
func NewAdmissionLimiter(limit int, window time.Duration) *AdmissionLimiter {
	return &AdmissionLimiter{
		clients: make(map[string]windowRecord),
		limit:   limit,
		window:  window,
	}
}

// Allow records a request for key and reports whether it is admitted.
// When denied, retryAfter is how long until the window resets.
func (l *AdmissionLimiter) Allow(key string) (allowed bool, retryAfter time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	record, exists := l.clients[key]
	if !exists || now.After(record.resetAt) {
		l.clients[key] = windowRecord{count: 1, resetAt: now.Add(l.window)}
		return true, 0
	}

	if record.count >= l.limit {
		return false, time.Until(record.resetAt)
	}

	record.count++
	l.clients[key] = record
	return true, 0
}

// Remaining returns how many requests key has left in the current window.
func (l *AdmissionLimiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, exists := l.clients[key]
	if !exists || time.Now().After(record.resetAt) {
		return l.limit
	}
	remaining := l.limit - record.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Cleanup removes expired windows and returns how many were dropped.
// Call periodically to bound memory; StartCleanupTicker automates it.
func (l *AdmissionLimiter) Cleanup() int {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, record := range l.clients {
		if now.After(record.resetAt) {
			delete(l.clients, key)
			removed++
		}
	}
	return removed
}

// StartCleanupTicker runs Cleanup on an interval until ctx is cancelled.
func (l *AdmissionLimiter) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Cleanup()
			}
		}
	}()
}

// TrackedClients returns how many client keys currently hold a window.
func (l *AdmissionLimiter) TrackedClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

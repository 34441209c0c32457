package proxy

import (
	"sync"
	"time"
)

// HealthTracker records per-relay failure timestamps so the fetcher can
// skip relays that are still cooling down after a failure. State lives
// for the process session only.
type HealthTracker struct {
	mu           sync.Mutex
	lastFailures map[string]time.Time
	cooldown     time.Duration
}

// NewHealthTracker creates a tracker with the given cooldown window
func NewHealthTracker(cooldown time.Duration) *HealthTracker {
	return &HealthTracker{
		lastFailures: make(map[string]time.Time),
		cooldown:     cooldown,
	}
}

// Available reports whether the relay is outside its cooldown window
func (h *HealthTracker) Available(relay string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	last, failed := h.lastFailures[relay]
	if !failed {
		return true
	}
	return time.Since(last) >= h.cooldown
}

// RecordFailure stamps the relay's last failure at now
func (h *HealthTracker) RecordFailure(relay string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastFailures[relay] = time.Now()
}

// RecordSuccess clears the relay's failure record
func (h *HealthTracker) RecordSuccess(relay string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.lastFailures, relay)
}

// FailureCount returns how many relays currently carry a failure record
func (h *HealthTracker) FailureCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.lastFailures)
}

// HasFailure reports whether the relay carries a failure record
func (h *HealthTracker) HasFailure(relay string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.lastFailures[relay]
	return ok
}

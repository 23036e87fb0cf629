package ai

import "sync"

// UsageTracker accumulates token usage per task type. The server exposes a
// snapshot of it on the usage stats endpoint.
type UsageTracker struct {
	mu     sync.RWMutex
	tokens map[string]int64
}

// NewUsageTracker creates an empty tracker.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{tokens: make(map[string]int64)}
}

// Record adds tokens spent on one completed request.
func (u *UsageTracker) Record(task TaskType, tokens int) {
	if tokens <= 0 {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.tokens[task.String()] += int64(tokens)
}

// Snapshot returns a copy of the per-task totals.
func (u *UsageTracker) Snapshot() map[string]int64 {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make(map[string]int64, len(u.tokens))
	for k, v := range u.tokens {
		out[k] = v
	}
	return out
}

// Total returns the overall token count across tasks.
func (u *UsageTracker) Total() int64 {
	u.mu.RLock()
	defer u.mu.RUnlock()
	var total int64
	for _, v := range u.tokens {
		total += v
	}
	return total
}

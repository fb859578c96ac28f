package weather

import (
	"sync"
	"time"
)

// Status summarizes where the figures of an analysis came from.
type Status string

const (
	StatusUnknown   Status = "unknown"
	StatusLive      Status = "live"
	StatusPartial   Status = "partial"
	StatusSimulated Status = "simulated"
)

// statusFor derives the status from how many of the requested families came back live.
func statusFor(live, requested int) Status {
	switch {
	case requested == 0 || live == 0:
		return StatusSimulated
	case live < requested:
		return StatusPartial
	default:
		return StatusLive
	}
}

// StatusSnapshot is the last known state of the upstream probability service.
type StatusSnapshot struct {
	Status         Status      `json:"status"`
	LiveDimensions []Dimension `json:"liveDimensions"`
	LastError      string      `json:"lastError,omitempty"`
	CheckedAt      time.Time   `json:"checkedAt"`
}

// StatusTracker keeps the most recent StatusSnapshot. It is safe for concurrent use.
type StatusTracker struct {
	mu   sync.RWMutex
	snap StatusSnapshot
}

// NewStatusTracker returns a tracker in the unknown state.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{snap: StatusSnapshot{Status: StatusUnknown}}
}

// Record replaces the current snapshot. Older observations are ignored.
func (t *StatusTracker) Record(s StatusSnapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s.CheckedAt.Before(t.snap.CheckedAt) {
		return
	}
	t.snap = s
}

// Snapshot returns a copy of the current snapshot.
func (t *StatusTracker) Snapshot() StatusSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.snap
	s.LiveDimensions = append([]Dimension(nil), t.snap.LiveDimensions...)
	return s
}

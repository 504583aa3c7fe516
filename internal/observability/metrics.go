package observability

import (
	"sync"
)

// Metrics provides basic in-memory counters for the gateway.
type Metrics struct {
	mu                 sync.Mutex
	sessionsOpened     int64
	sessionsClosed     int64
	dispatchesAccepted int64
	dispatchesRejected int64
	eventsPushed       int64
	backlogFailures    int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordSessionOpened increments the live-session counter.
func (m *Metrics) RecordSessionOpened() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionsOpened++
}

// RecordSessionClosed increments the closed-session counter.
func (m *Metrics) RecordSessionClosed() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionsClosed++
}

// RecordDispatch counts an ingress dispatch; accepted is false on a
// shared-secret rejection.
func (m *Metrics) RecordDispatch(accepted bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if accepted {
		m.dispatchesAccepted++
	} else {
		m.dispatchesRejected++
	}
}

// RecordEventPushed counts events written to client sessions.
func (m *Metrics) RecordEventPushed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsPushed += int64(n)
}

// RecordBacklogFailure counts failed backlog fetches.
func (m *Metrics) RecordBacklogFailure() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backlogFailures++
}

// Snapshot returns current counter values keyed for the readiness payload.
func (m *Metrics) Snapshot() map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]int64{
		"sessions_opened":     m.sessionsOpened,
		"sessions_closed":     m.sessionsClosed,
		"dispatches_accepted": m.dispatchesAccepted,
		"dispatches_rejected": m.dispatchesRejected,
		"events_pushed":       m.eventsPushed,
		"backlog_failures":    m.backlogFailures,
	}
}

package manager

import (
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Statistics is an immutable snapshot of the manager's bookkeeping,
// accumulated monotonically until Destroy.
type Statistics struct {
	TotalConnects     int64
	TotalDisconnects  int64
	MessagesSent      int64
	MessagesReceived  int64
	ReconnectAttempts int64
	Errors            int64
	LastConnectAt     time.Time
	LastDisconnectAt  time.Time
	AverageLatency    time.Duration
	Uptime            time.Duration
}

// statistics is the internal accumulator, updated as a side effect of
// connection events.
type statistics struct {
	connects    *atomic.Int64
	disconnects *atomic.Int64
	sent        *atomic.Int64
	received    *atomic.Int64
	reconnects  *atomic.Int64
	errors      *atomic.Int64

	mu               sync.Mutex
	lastConnectAt    time.Time
	lastDisconnectAt time.Time
	avgLatency       time.Duration
	latencySamples   int64
	lastUptime       time.Duration
}

func newStatistics() *statistics {
	return &statistics{
		connects:    atomic.NewInt64(0),
		disconnects: atomic.NewInt64(0),
		sent:        atomic.NewInt64(0),
		received:    atomic.NewInt64(0),
		reconnects:  atomic.NewInt64(0),
		errors:      atomic.NewInt64(0),
	}
}

func (s *statistics) recordConnect() {
	s.connects.Inc()
	s.mu.Lock()
	s.lastConnectAt = time.Now()
	s.mu.Unlock()
}

func (s *statistics) recordDisconnect() {
	s.disconnects.Inc()
	s.mu.Lock()
	now := time.Now()
	if !s.lastConnectAt.IsZero() {
		s.lastUptime = now.Sub(s.lastConnectAt)
	}
	s.lastDisconnectAt = now
	s.mu.Unlock()
}

// observeLatency folds one round-trip sample into the rolling average.
func (s *statistics) observeLatency(d time.Duration) {
	s.mu.Lock()
	s.latencySamples++
	s.avgLatency += (d - s.avgLatency) / time.Duration(s.latencySamples)
	s.mu.Unlock()
}

// snapshot derives uptime from the last successful connect while connected,
// otherwise reports the last recorded duration.
func (s *statistics) snapshot(connected bool) Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	uptime := s.lastUptime
	if connected && !s.lastConnectAt.IsZero() {
		uptime = time.Since(s.lastConnectAt)
	}

	return Statistics{
		TotalConnects:     s.connects.Load(),
		TotalDisconnects:  s.disconnects.Load(),
		MessagesSent:      s.sent.Load(),
		MessagesReceived:  s.received.Load(),
		ReconnectAttempts: s.reconnects.Load(),
		Errors:            s.errors.Load(),
		LastConnectAt:     s.lastConnectAt,
		LastDisconnectAt:  s.lastDisconnectAt,
		AverageLatency:    s.avgLatency,
		Uptime:            uptime,
	}
}

package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/rmorin/wsbridge/internal/event"
	"github.com/rmorin/wsbridge/internal/wire"
)

// PerformHealthCheck probes the active connection with a ping raced against
// the configured timeout. Without an active connection it returns
// immediately, unhealthy, without sending anything. Scheduled automatically
// once the manager is initialized; also callable on demand.
func (m *Manager) PerformHealthCheck(ctx context.Context) HealthCheck {
	now := time.Now()

	m.mu.Lock()
	active := m.pool.active
	m.mu.Unlock()

	if active == nil || !active.IsConnected() {
		return HealthCheck{
			IsHealthy: false,
			Latency:   -1,
			LastCheck: now,
			Errors:    []string{"Not connected"},
		}
	}

	pongCh := make(chan struct{}, 1)
	sub := active.Events().Subscribe(event.Pong, func(event.Event) {
		select {
		case pongCh <- struct{}{}:
		default:
		}
	})
	defer sub.Unsubscribe()

	start := time.Now()
	if !active.Send(wire.Ping()) {
		m.stats.errors.Inc()
		return HealthCheck{
			IsHealthy: false,
			Latency:   -1,
			LastCheck: now,
			Errors:    []string{"ping send failed"},
		}
	}

	timer := time.NewTimer(m.cfg.HealthCheckTimeout)
	defer timer.Stop()

	select {
	case <-pongCh:
		latency := time.Since(start)
		m.stats.observeLatency(latency)
		return HealthCheck{IsHealthy: true, Latency: latency, LastCheck: now}
	case <-timer.C:
		m.stats.errors.Inc()
		return HealthCheck{
			IsHealthy: false,
			Latency:   -1,
			LastCheck: now,
			Errors:    []string{fmt.Sprintf("health check timed out after %v", m.cfg.HealthCheckTimeout)},
		}
	case <-ctx.Done():
		return HealthCheck{
			IsHealthy: false,
			Latency:   -1,
			LastCheck: now,
			Errors:    []string{ctx.Err().Error()},
		}
	}
}

// LastHealthCheck returns the most recent scheduled health-check result.
func (m *Manager) LastHealthCheck() HealthCheck {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastHealth
}

package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rmorin/wsbridge/internal/backoff"
	"github.com/rmorin/wsbridge/internal/connection"
	"github.com/rmorin/wsbridge/internal/event"
	"github.com/rmorin/wsbridge/internal/wire"
)

// Manager presents one stable connection facade over a set of candidate
// endpoints. Construct one per logical session and inject it into every
// consumer; there is no ambient/global instance.
type Manager struct {
	cfg      Config
	logger   *slog.Logger
	emitter  *event.Emitter
	strategy backoff.Strategy
	stats    *statistics

	// mu guards the pool, lifecycle flags, timers, and cycle channels.
	// Events are always emitted outside the lock.
	mu             sync.Mutex
	pool           pool
	initialized    bool
	destroyed      bool
	connecting     bool
	attempts       int // manager-level, separate from any connection-local counter
	reconnectTimer *time.Timer
	cyclesDone     chan struct{}
	subs           []*event.Subscription
	lastHealth     HealthCheck
}

// New creates a Manager. Call Initialize before Connect.
func New(cfg Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	return &Manager{
		cfg:      cfg,
		logger:   logger,
		emitter:  event.NewEmitter(),
		strategy: cfg.Strategy,
		stats:    newStatistics(),
	}
}

// Events returns the manager's emitter. Connection events are republished
// here unchanged alongside the manager-level vocabulary.
func (m *Manager) Events() *event.Emitter {
	return m.emitter
}

// Initialize constructs the candidate pool, wires event republishing, and
// starts the health-check and statistics cycles. Calling it twice is a
// no-op with a warning.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return ErrDestroyed
	}
	if m.initialized {
		m.mu.Unlock()
		m.logger.Warn("manager already initialized")
		return nil
	}

	build := func(url string) (*connection.Connection, error) {
		ccfg := m.cfg.Connection
		ccfg.URL = url
		return connection.New(ccfg, m.logger)
	}

	primary, err := build(m.cfg.URL)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("build primary connection: %w", err)
	}

	var fallbacks []*connection.Connection
	if m.cfg.EnableConnectionPool {
		for _, url := range m.cfg.FallbackURLs {
			fb, err := build(url)
			if err != nil {
				primary.Destroy()
				for _, f := range fallbacks {
					f.Destroy()
				}
				m.mu.Unlock()
				return fmt.Errorf("build fallback connection: %w", err)
			}
			fallbacks = append(fallbacks, fb)
		}
	}

	m.pool = pool{primary: primary, fallback: fallbacks}
	for _, c := range m.pool.candidates() {
		c := c
		sub := c.Events().SubscribeAll(func(ev event.Event) {
			m.handleConnectionEvent(c, ev)
		})
		m.subs = append(m.subs, sub)
	}

	m.initialized = true
	m.startCyclesLocked()
	m.mu.Unlock()

	m.logger.Info("manager initialized",
		"primary", m.cfg.URL,
		"fallbacks", len(fallbacks),
		"auto_reconnect", m.cfg.EnableAutoReconnect,
	)
	m.emitter.Emit(event.Event{Type: event.ManagerInitialized})
	return nil
}

// Connect attempts the primary, then each fallback in declared order; the
// first to succeed becomes the active connection. Rejects while an attempt
// is in progress or while already connected.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	switch {
	case m.destroyed:
		m.mu.Unlock()
		return ErrDestroyed
	case !m.initialized:
		m.mu.Unlock()
		return ErrNotInitialized
	case m.connecting:
		m.mu.Unlock()
		return ErrConnectInProgress
	}
	if a := m.pool.active; a != nil && a.IsConnected() {
		m.mu.Unlock()
		return ErrAlreadyConnected
	}
	m.connecting = true
	candidates := m.pool.candidates()
	m.mu.Unlock()

	var lastErr error
	for _, c := range candidates {
		if err := c.Connect(ctx); err != nil {
			lastErr = err
			m.logger.Warn("candidate failed", "url", c.URL(), "error", err)
			continue
		}

		m.mu.Lock()
		m.pool.active = c
		m.connecting = false
		m.attempts = 0
		m.startCyclesLocked()
		m.mu.Unlock()

		m.strategy.Reset()
		m.logger.Info("connected", "url", c.URL(), "conn_id", c.ID())
		m.emitter.Emit(event.Event{Type: event.ManagerConnected, Payload: c.URL()})
		return nil
	}

	m.mu.Lock()
	m.connecting = false
	m.mu.Unlock()

	err := ErrAllCandidatesFailed
	if lastErr != nil {
		err = fmt.Errorf("%w: %v", ErrAllCandidatesFailed, lastErr)
	}
	m.emitter.Emit(event.Event{Type: event.ManagerConnectionFailed, Payload: err})

	if m.cfg.EnableAutoReconnect {
		m.scheduleReconnect()
	}
	return err
}

// Send delegates to the active connection. Without one it returns false
// immediately and emits a send-failed event; nothing is queued or buffered.
func (m *Manager) Send(msg wire.Message) bool {
	m.mu.Lock()
	active := m.pool.active
	destroyed := m.destroyed
	m.mu.Unlock()

	if destroyed || active == nil || !active.IsConnected() {
		m.emitter.Emit(event.Event{Type: event.ManagerSendFailed, Payload: event.SendFailedInfo{
			Reason:  "no active connection",
			Message: msg,
		}})
		return false
	}

	if !active.Send(msg) {
		m.emitter.Emit(event.Event{Type: event.ManagerSendFailed, Payload: event.SendFailedInfo{
			Reason:  "write failed",
			Message: msg,
		}})
		return false
	}

	m.stats.sent.Inc()
	m.emitter.Emit(event.Event{Type: event.ManagerMessageSent, Payload: msg})
	return true
}

// Disconnect cleanly closes the active connection and stops the background
// cycles. A later Connect restarts them.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	if m.destroyed || !m.initialized {
		m.mu.Unlock()
		return
	}
	m.stopCyclesLocked()
	m.stopReconnectTimerLocked()
	active := m.pool.active
	m.pool.active = nil
	m.mu.Unlock()

	if active != nil {
		active.Disconnect()
	}
	m.emitter.Emit(event.Event{Type: event.ManagerDisconnected})
}

// Destroy stops every cycle and timer, destroys every pooled connection,
// clears the pool, and marks the manager uninitialized. Idempotent; the
// manager is unusable afterwards.
func (m *Manager) Destroy() {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	m.destroyed = true
	m.initialized = false
	m.stopCyclesLocked()
	m.stopReconnectTimerLocked()
	subs := m.subs
	m.subs = nil
	conns := m.pool.candidates()
	m.pool = pool{}
	m.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
	for _, c := range conns {
		c.Destroy()
	}

	m.logger.Info("manager destroyed")
	m.emitter.Emit(event.Event{Type: event.ManagerDestroyed})
	m.emitter.Clear()
}

// IsConnected reports whether an active connection is currently open.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	active := m.pool.active
	m.mu.Unlock()
	return active != nil && active.IsConnected()
}

// ActiveURL returns the endpoint of the active connection, if any.
func (m *Manager) ActiveURL() (string, bool) {
	m.mu.Lock()
	active := m.pool.active
	m.mu.Unlock()
	if active == nil {
		return "", false
	}
	return active.URL(), true
}

// Statistics returns an immutable snapshot of the accumulated counters.
func (m *Manager) Statistics() Statistics {
	return m.stats.snapshot(m.IsConnected())
}

// handleConnectionEvent updates statistics as a side effect and republishes
// the event unchanged.
func (m *Manager) handleConnectionEvent(c *connection.Connection, ev event.Event) {
	switch ev.Type {
	case event.Connect:
		m.stats.recordConnect()
	case event.Disconnect:
		m.stats.recordDisconnect()
	case event.Message:
		m.stats.received.Inc()
	case event.Reconnecting:
		m.stats.reconnects.Inc()
	case event.Error:
		m.stats.errors.Inc()
		if err, ok := ev.Payload.(error); ok && errors.Is(err, connection.ErrMaxReconnectAttempts) {
			m.handleLocalExhaustion(c)
		}
	}

	m.emitter.Emit(ev)
}

// handleLocalExhaustion escalates a connection's local retry exhaustion to
// manager-level failover right away instead of waiting for the manager's
// own timer.
func (m *Manager) handleLocalExhaustion(c *connection.Connection) {
	m.mu.Lock()
	if m.destroyed || !m.cfg.EnableAutoReconnect || m.connecting {
		m.mu.Unlock()
		return
	}
	if m.pool.active == c {
		m.pool.active = nil
	}
	m.mu.Unlock()

	m.logger.Info("local retries exhausted, starting failover", "conn_id", c.ID())
	go func() {
		if err := m.Connect(context.Background()); err != nil {
			m.logger.Warn("failover after local exhaustion failed", "error", err)
		}
	}()
}

// scheduleReconnect arms the manager-level retry timer using the configured
// strategy, or emits the terminal max-retries event once the strategy says
// to stop.
func (m *Manager) scheduleReconnect() {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	attempt := m.attempts
	if m.strategy.ShouldStop(attempt) {
		m.mu.Unlock()
		m.logger.Warn("manager retries exhausted", "attempts", attempt)
		m.emitter.Emit(event.Event{Type: event.ManagerMaxRetriesReached})
		return
	}
	delay := m.strategy.NextDelay(attempt)
	m.attempts = attempt + 1
	m.reconnectTimer = time.AfterFunc(delay, func() {
		err := m.Connect(context.Background())
		if err != nil && !errors.Is(err, ErrAllCandidatesFailed) {
			// Connect reschedules on candidate failure; anything else ends
			// the retry chain (destroyed, already connected, in progress).
			m.logger.Debug("scheduled reconnect skipped", "reason", err)
		}
	})
	m.mu.Unlock()

	m.logger.Info("manager reconnect scheduled", "attempt", attempt+1, "delay", delay)
	m.emitter.Emit(event.Event{Type: event.ManagerReconnectScheduled, Payload: event.ReconnectScheduledInfo{
		Attempt: attempt + 1,
		Delay:   delay,
	}})
}

func (m *Manager) startCyclesLocked() {
	if m.cyclesDone != nil {
		return
	}
	m.cyclesDone = make(chan struct{})
	go m.healthLoop(m.cyclesDone)
	go m.statsLoop(m.cyclesDone)
}

func (m *Manager) stopCyclesLocked() {
	if m.cyclesDone != nil {
		close(m.cyclesDone)
		m.cyclesDone = nil
	}
}

func (m *Manager) stopReconnectTimerLocked() {
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
}

func (m *Manager) healthLoop(done chan struct{}) {
	ticker := time.NewTicker(m.cfg.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			hc := m.PerformHealthCheck(context.Background())
			m.mu.Lock()
			m.lastHealth = hc
			m.mu.Unlock()
			m.emitter.Emit(event.Event{Type: event.ManagerHealthCheck, Payload: hc})
		}
	}
}

func (m *Manager) statsLoop(done chan struct{}) {
	ticker := time.NewTicker(m.cfg.StatisticsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			m.emitter.Emit(event.Event{Type: event.ManagerStatistics, Payload: m.Statistics()})
		}
	}
}

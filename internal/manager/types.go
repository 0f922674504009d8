package manager

import (
	"errors"
	"time"

	"github.com/rmorin/wsbridge/internal/backoff"
	"github.com/rmorin/wsbridge/internal/connection"
)

// Errors
var (
	ErrNotInitialized      = errors.New("manager not initialized")
	ErrDestroyed           = errors.New("manager destroyed")
	ErrConnectInProgress   = errors.New("connect already in progress")
	ErrAlreadyConnected    = errors.New("already connected")
	ErrAllCandidatesFailed = errors.New("all connection candidates failed")
)

// Config holds manager settings. Every option has a stated default, resolved
// once at construction.
type Config struct {
	URL                  string            // Primary endpoint
	FallbackURLs         []string          // Fallback endpoints, tried in declared order
	EnableConnectionPool bool              // Activates multi-candidate failover
	EnableAutoReconnect  bool              // Manager-level retry on total failover exhaustion
	HealthCheckInterval  time.Duration     // Cadence of the health-check cycle
	HealthCheckTimeout   time.Duration     // Ping/pong race window per check
	StatisticsInterval   time.Duration     // Cadence of the statistics cycle
	Strategy             backoff.Strategy  // Manager-level reconnect strategy (nil = exponential)
	Connection           connection.Config // Template for every pooled candidate (URL overridden)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableAutoReconnect: true,
		HealthCheckInterval: 30 * time.Second,
		HealthCheckTimeout:  5 * time.Second,
		StatisticsInterval:  60 * time.Second,
		Connection:          connection.DefaultConfig(),
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.HealthCheckInterval == 0 {
		c.HealthCheckInterval = def.HealthCheckInterval
	}
	if c.HealthCheckTimeout == 0 {
		c.HealthCheckTimeout = def.HealthCheckTimeout
	}
	if c.StatisticsInterval == 0 {
		c.StatisticsInterval = def.StatisticsInterval
	}
	if c.Strategy == nil {
		c.Strategy = backoff.NewExponential()
	}
	return c
}

// HealthCheck is the result of one round-trip probe. A value object,
// recomputed on demand, never persisted.
type HealthCheck struct {
	IsHealthy bool
	Latency   time.Duration // -1 when the probe did not complete
	LastCheck time.Time
	Errors    []string
}

package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultHealthCheckInterval  = 30 * time.Second
	DefaultHealthCheckTimeout   = 5 * time.Second
	DefaultStatisticsInterval   = 60 * time.Second
	DefaultBackoffType          = "exponential"
	DefaultBackoffBaseDelay     = 1 * time.Second
	DefaultBackoffMaxDelay      = 30 * time.Second
	DefaultBackoffFactor        = 1.5
	DefaultBackoffIncrement     = 1 * time.Second
	DefaultBackoffMaxAttempts   = 10
	DefaultMaxReconnectAttempts = 5
	DefaultReconnectDelay       = 1 * time.Second
	DefaultHandshakeTimeout     = 10 * time.Second
	DefaultWriteTimeout         = 5 * time.Second
	DefaultHeartbeatInterval    = 30 * time.Second
	DefaultHeartbeatTimeout     = 60 * time.Second
	DefaultDBPort               = 5432
	DefaultDBSSLMode            = "prefer"
	DefaultMaxConns             = 10
	DefaultMinConns             = 2
	DefaultBatchSize            = 500
	DefaultFlushInterval        = 1 * time.Second
	DefaultBufferSize           = 5000
)

func (c *MonitorConfig) applyDefaults() {
	// Bridge defaults
	if c.Bridge.HealthCheckInterval == 0 {
		c.Bridge.HealthCheckInterval = DefaultHealthCheckInterval
	}
	if c.Bridge.HealthCheckTimeout == 0 {
		c.Bridge.HealthCheckTimeout = DefaultHealthCheckTimeout
	}
	if c.Bridge.StatisticsInterval == 0 {
		c.Bridge.StatisticsInterval = DefaultStatisticsInterval
	}

	// Backoff defaults
	if c.Bridge.Backoff.Type == "" {
		c.Bridge.Backoff.Type = DefaultBackoffType
	}
	if c.Bridge.Backoff.BaseDelay == 0 {
		c.Bridge.Backoff.BaseDelay = DefaultBackoffBaseDelay
	}
	if c.Bridge.Backoff.MaxDelay == 0 {
		c.Bridge.Backoff.MaxDelay = DefaultBackoffMaxDelay
	}
	if c.Bridge.Backoff.Factor == 0 {
		c.Bridge.Backoff.Factor = DefaultBackoffFactor
	}
	if c.Bridge.Backoff.Increment == 0 {
		c.Bridge.Backoff.Increment = DefaultBackoffIncrement
	}
	if c.Bridge.Backoff.MaxAttempts == 0 {
		c.Bridge.Backoff.MaxAttempts = DefaultBackoffMaxAttempts
	}

	// Connection defaults
	if c.Bridge.Connection.MaxReconnectAttempts == 0 {
		c.Bridge.Connection.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if c.Bridge.Connection.ReconnectDelay == 0 {
		c.Bridge.Connection.ReconnectDelay = DefaultReconnectDelay
	}
	if c.Bridge.Connection.HandshakeTimeout == 0 {
		c.Bridge.Connection.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Bridge.Connection.WriteTimeout == 0 {
		c.Bridge.Connection.WriteTimeout = DefaultWriteTimeout
	}
	if c.Bridge.Connection.HeartbeatInterval == 0 {
		c.Bridge.Connection.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.Bridge.Connection.HeartbeatTimeout == 0 {
		c.Bridge.Connection.HeartbeatTimeout = DefaultHeartbeatTimeout
	}

	// Database defaults
	applyDBDefaults(&c.Database.Timescale)

	// Recorder defaults
	if c.Recorder.BatchSize == 0 {
		c.Recorder.BatchSize = DefaultBatchSize
	}
	if c.Recorder.FlushInterval == 0 {
		c.Recorder.FlushInterval = DefaultFlushInterval
	}
	if c.Recorder.BufferSize == 0 {
		c.Recorder.BufferSize = DefaultBufferSize
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}

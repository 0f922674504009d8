package config

import "time"

// MonitorConfig is the root configuration for a monitor instance.
type MonitorConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Bridge   BridgeConfig   `yaml:"bridge"`
	Database DatabaseConfig `yaml:"database"`
	Recorder RecorderConfig `yaml:"recorder"`
}

// InstanceConfig identifies this monitor.
type InstanceConfig struct {
	ID string `yaml:"id"`
	AZ string `yaml:"az"`
}

// BridgeConfig holds connection manager settings: the endpoint set plus
// failover and health-check behavior.
type BridgeConfig struct {
	URL                  string           `yaml:"url"`
	FallbackURLs         []string         `yaml:"fallback_urls"`
	EnableConnectionPool bool             `yaml:"enable_connection_pool"`
	EnableAutoReconnect  *bool            `yaml:"enable_auto_reconnect"` // nil = enabled
	HealthCheckInterval  time.Duration    `yaml:"health_check_interval"`
	HealthCheckTimeout   time.Duration    `yaml:"health_check_timeout"`
	StatisticsInterval   time.Duration    `yaml:"statistics_interval"`
	Backoff              BackoffConfig    `yaml:"backoff"`
	Connection           ConnectionConfig `yaml:"connection"`
}

// BackoffConfig selects and tunes the manager-level reconnect strategy.
type BackoffConfig struct {
	Type        string        `yaml:"type"` // "exponential" or "linear"
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	Factor      float64       `yaml:"factor"`    // exponential only
	Increment   time.Duration `yaml:"increment"` // linear only
	MaxAttempts int           `yaml:"max_attempts"`
}

// ConnectionConfig holds per-connection transport settings, applied to the
// primary and every fallback alike.
type ConnectionConfig struct {
	Subprotocol          string        `yaml:"subprotocol"`
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
	ReconnectDelay       time.Duration `yaml:"reconnect_delay"`
	HandshakeTimeout     time.Duration `yaml:"handshake_timeout"`
	WriteTimeout         time.Duration `yaml:"write_timeout"`
	HeartbeatInterval    time.Duration `yaml:"heartbeat_interval"`
	HeartbeatTimeout     time.Duration `yaml:"heartbeat_timeout"`
	Compression          string        `yaml:"compression"` // "", "gzip", "snappy"
}

// DatabaseConfig holds the TimescaleDB connection for recorded telemetry.
type DatabaseConfig struct {
	Timescale DBConfig `yaml:"timescale"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// RecorderConfig holds batch recorder settings.
type RecorderConfig struct {
	Enabled       bool          `yaml:"enabled"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// AutoReconnect resolves the tri-state yaml field; absent means enabled.
func (b *BridgeConfig) AutoReconnect() bool {
	return b.EnableAutoReconnect == nil || *b.EnableAutoReconnect
}

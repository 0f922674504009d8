package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrDestroyed            = errors.New("connection destroyed")
	ErrConnectInProgress    = errors.New("connect already in progress")
	ErrMaxReconnectAttempts = errors.New("max reconnect attempts reached")
)

// State is the mutually exclusive connection state, owned exclusively by the
// Connection.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	}
	return "unknown"
}

// Config holds one connection's settings. Immutable after construction; a
// full shutdown/restart re-creates the Connection with a fresh Config.
type Config struct {
	URL                  string        // WebSocket endpoint (ws:// or wss://)
	Subprotocol          string        // Optional sub-protocol identifier
	MaxReconnectAttempts int           // Connection-local retry ceiling
	ReconnectDelay       time.Duration // Base delay, scaled by the attempt number
	HandshakeTimeout     time.Duration // Dial/open handshake timeout
	WriteTimeout         time.Duration // Write deadline for sends
	HeartbeatInterval    time.Duration // Cadence of liveness pings
	HeartbeatTimeout     time.Duration // Elapsed-since-pong threshold before unstable
	Compression          string        // "", "gzip", or "snappy"
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxReconnectAttempts: 5,
		ReconnectDelay:       1 * time.Second,
		HandshakeTimeout:     10 * time.Second,
		WriteTimeout:         5 * time.Second,
		HeartbeatInterval:    30 * time.Second,
		HeartbeatTimeout:     60 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxReconnectAttempts == 0 {
		c.MaxReconnectAttempts = def.MaxReconnectAttempts
	}
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = def.ReconnectDelay
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = def.HeartbeatInterval
	}
	if c.HeartbeatTimeout == 0 {
		c.HeartbeatTimeout = def.HeartbeatTimeout
	}
	return c
}

// Status is a point-in-time snapshot of a connection.
type Status struct {
	ID          string
	URL         string
	State       State
	Unstable    bool
	LastPongAt  time.Time
	IsConnected bool
}

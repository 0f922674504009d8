package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *MonitorConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Bridge.URL == "" {
		return errors.New("bridge.url is required")
	}
	if !hasWSScheme(c.Bridge.URL) {
		return fmt.Errorf("bridge.url must use ws:// or wss://, got %q", c.Bridge.URL)
	}
	for i, url := range c.Bridge.FallbackURLs {
		if !hasWSScheme(url) {
			return fmt.Errorf("bridge.fallback_urls[%d] must use ws:// or wss://, got %q", i, url)
		}
	}
	if len(c.Bridge.FallbackURLs) > 0 && !c.Bridge.EnableConnectionPool {
		return errors.New("bridge.fallback_urls requires bridge.enable_connection_pool")
	}

	switch c.Bridge.Backoff.Type {
	case "exponential", "linear":
	default:
		return fmt.Errorf("bridge.backoff.type must be exponential or linear, got %q", c.Bridge.Backoff.Type)
	}
	if c.Bridge.Backoff.Factor < 1 {
		return errors.New("bridge.backoff.factor must be >= 1")
	}
	if c.Bridge.Backoff.MaxDelay < c.Bridge.Backoff.BaseDelay {
		return errors.New("bridge.backoff.max_delay must be >= base_delay")
	}

	if c.Bridge.Connection.MaxReconnectAttempts < 1 {
		return errors.New("bridge.connection.max_reconnect_attempts must be >= 1")
	}

	switch c.Bridge.Connection.Compression {
	case "", "gzip", "snappy":
	default:
		return fmt.Errorf("bridge.connection.compression must be gzip or snappy, got %q", c.Bridge.Connection.Compression)
	}

	if c.Recorder.Enabled {
		if err := c.Database.Timescale.validate("database.timescale"); err != nil {
			return err
		}
		if c.Recorder.BatchSize < 1 {
			return errors.New("recorder.batch_size must be >= 1")
		}
		if c.Recorder.BufferSize < 1 {
			return errors.New("recorder.buffer_size must be >= 1")
		}
	}

	return nil
}

func hasWSScheme(url string) bool {
	return strings.HasPrefix(url, "ws://") || strings.HasPrefix(url, "wss://")
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

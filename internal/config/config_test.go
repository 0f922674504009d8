package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: test-monitor
  az: us-east-1a
bridge:
  url: wss://feed.example.com/ws
  fallback_urls:
    - wss://feed-b.example.com/ws
  enable_connection_pool: true
database:
  timescale:
    host: localhost
    port: 5432
    name: test_ts
    user: testuser
    password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-monitor" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-monitor")
	}
	if cfg.Bridge.URL != "wss://feed.example.com/ws" {
		t.Errorf("Bridge.URL = %q, want %q", cfg.Bridge.URL, "wss://feed.example.com/ws")
	}
	if len(cfg.Bridge.FallbackURLs) != 1 || cfg.Bridge.FallbackURLs[0] != "wss://feed-b.example.com/ws" {
		t.Errorf("Bridge.FallbackURLs = %v, want one fallback", cfg.Bridge.FallbackURLs)
	}
	if cfg.Database.Timescale.Host != "localhost" {
		t.Errorf("Database.Timescale.Host = %q, want %q", cfg.Database.Timescale.Host, "localhost")
	}
	if !cfg.Bridge.AutoReconnect() {
		t.Error("AutoReconnect() = false when unset, want true")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
instance:
  id: test-monitor
bridge:
  url: wss://feed.example.com/ws
database:
  timescale:
    host: localhost
    name: test_ts
    user: testuser
    password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Timescale.Password != "secret123" {
		t.Errorf("Database.Timescale.Password = %q, want %q", cfg.Database.Timescale.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
instance:
  id: test-monitor
bridge:
  url: wss://feed.example.com/ws
database:
  timescale:
    host: localhost
    name: test_ts
    user: testuser
    password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Bridge.HealthCheckInterval != DefaultHealthCheckInterval {
		t.Errorf("Bridge.HealthCheckInterval = %v, want default %v", cfg.Bridge.HealthCheckInterval, DefaultHealthCheckInterval)
	}
	if cfg.Bridge.Backoff.Type != DefaultBackoffType {
		t.Errorf("Bridge.Backoff.Type = %q, want default %q", cfg.Bridge.Backoff.Type, DefaultBackoffType)
	}
	if cfg.Bridge.Backoff.Factor != DefaultBackoffFactor {
		t.Errorf("Bridge.Backoff.Factor = %v, want default %v", cfg.Bridge.Backoff.Factor, DefaultBackoffFactor)
	}
	if cfg.Bridge.Connection.MaxReconnectAttempts != DefaultMaxReconnectAttempts {
		t.Errorf("Bridge.Connection.MaxReconnectAttempts = %d, want default %d", cfg.Bridge.Connection.MaxReconnectAttempts, DefaultMaxReconnectAttempts)
	}
	if cfg.Database.Timescale.Port != DefaultDBPort {
		t.Errorf("Database.Timescale.Port = %d, want default %d", cfg.Database.Timescale.Port, DefaultDBPort)
	}
	if cfg.Database.Timescale.MaxConns != DefaultMaxConns {
		t.Errorf("Database.Timescale.MaxConns = %d, want default %d", cfg.Database.Timescale.MaxConns, DefaultMaxConns)
	}
	if cfg.Recorder.BatchSize != DefaultBatchSize {
		t.Errorf("Recorder.BatchSize = %d, want default %d", cfg.Recorder.BatchSize, DefaultBatchSize)
	}
}

func TestValidate(t *testing.T) {
	validBridge := BridgeConfig{
		URL: "wss://feed.example.com/ws",
		Backoff: BackoffConfig{
			Type:      "exponential",
			BaseDelay: time.Second,
			MaxDelay:  30 * time.Second,
			Factor:    1.5,
		},
		Connection: ConnectionConfig{MaxReconnectAttempts: 5},
	}

	tests := []struct {
		name    string
		cfg     MonitorConfig
		wantErr string
	}{
		{
			name:    "missing instance id",
			cfg:     MonitorConfig{},
			wantErr: "instance.id is required",
		},
		{
			name: "missing bridge url",
			cfg: MonitorConfig{
				Instance: InstanceConfig{ID: "test"},
			},
			wantErr: "bridge.url is required",
		},
		{
			name: "bad url scheme",
			cfg: MonitorConfig{
				Instance: InstanceConfig{ID: "test"},
				Bridge: func() BridgeConfig {
					b := validBridge
					b.URL = "https://feed.example.com/ws"
					return b
				}(),
			},
			wantErr: `bridge.url must use ws:// or wss://, got "https://feed.example.com/ws"`,
		},
		{
			name: "fallbacks without pool",
			cfg: MonitorConfig{
				Instance: InstanceConfig{ID: "test"},
				Bridge: func() BridgeConfig {
					b := validBridge
					b.FallbackURLs = []string{"wss://feed-b.example.com/ws"}
					return b
				}(),
			},
			wantErr: "bridge.fallback_urls requires bridge.enable_connection_pool",
		},
		{
			name: "bad backoff type",
			cfg: MonitorConfig{
				Instance: InstanceConfig{ID: "test"},
				Bridge: func() BridgeConfig {
					b := validBridge
					b.Backoff.Type = "fibonacci"
					return b
				}(),
			},
			wantErr: `bridge.backoff.type must be exponential or linear, got "fibonacci"`,
		},
		{
			name: "bad compression",
			cfg: MonitorConfig{
				Instance: InstanceConfig{ID: "test"},
				Bridge: func() BridgeConfig {
					b := validBridge
					b.Connection.Compression = "lz4"
					return b
				}(),
			},
			wantErr: `bridge.connection.compression must be gzip or snappy, got "lz4"`,
		},
		{
			name: "recorder enabled without database",
			cfg: MonitorConfig{
				Instance: InstanceConfig{ID: "test"},
				Bridge:   validBridge,
				Recorder: RecorderConfig{Enabled: true, BatchSize: 100, BufferSize: 1000},
			},
			wantErr: "database.timescale.host is required",
		},
		{
			name: "min_conns exceeds max_conns",
			cfg: MonitorConfig{
				Instance: InstanceConfig{ID: "test"},
				Bridge:   validBridge,
				Database: DatabaseConfig{
					Timescale: DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 5, MinConns: 10},
				},
				Recorder: RecorderConfig{Enabled: true, BatchSize: 100, BufferSize: 1000},
			},
			wantErr: "database.timescale.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name: "valid config without recorder",
			cfg: MonitorConfig{
				Instance: InstanceConfig{ID: "test"},
				Bridge:   validBridge,
			},
			wantErr: "",
		},
		{
			name: "valid config with recorder",
			cfg: MonitorConfig{
				Instance: InstanceConfig{ID: "test"},
				Bridge:   validBridge,
				Database: DatabaseConfig{
					Timescale: DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 10, MinConns: 2},
				},
				Recorder: RecorderConfig{Enabled: true, BatchSize: 500, FlushInterval: time.Second, BufferSize: 5000},
			},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/rmorin/wsbridge/internal/backoff"
	"github.com/rmorin/wsbridge/internal/config"
	"github.com/rmorin/wsbridge/internal/connection"
	"github.com/rmorin/wsbridge/internal/database"
	"github.com/rmorin/wsbridge/internal/manager"
	"github.com/rmorin/wsbridge/internal/recorder"
	"github.com/rmorin/wsbridge/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/monitor.local.yaml", "path to config file")
	healthAddr := flag.String("health-addr", ":8080", "health endpoint listen address")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting monitor",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"primary", cfg.Bridge.URL,
		"fallbacks", len(cfg.Bridge.FallbackURLs),
		"recorder", cfg.Recorder.Enabled,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database when recording is enabled
	var pool *pgxpool.Pool
	if cfg.Recorder.Enabled {
		logger.Info("connecting to database",
			"host", cfg.Database.Timescale.Host,
			"port", cfg.Database.Timescale.Port,
			"database", cfg.Database.Timescale.Name,
		)
		pool, err = database.Connect(ctx, cfg.Database.Timescale)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("database connected")
	}

	// Build the connection manager from config
	mgr := manager.New(managerConfig(cfg.Bridge), logger)
	if err := mgr.Initialize(); err != nil {
		logger.Error("failed to initialize manager", "error", err)
		os.Exit(1)
	}

	// Attach the telemetry recorder
	var rec *recorder.Recorder
	if cfg.Recorder.Enabled {
		rec = recorder.New(recorder.Config{
			BatchSize:     cfg.Recorder.BatchSize,
			FlushInterval: cfg.Recorder.FlushInterval,
			BufferSize:    cfg.Recorder.BufferSize,
		}, cfg.Instance.ID, pool, logger)
		rec.Attach(mgr.Events())
		if err := rec.Start(ctx); err != nil {
			logger.Error("failed to start recorder", "error", err)
			os.Exit(1)
		}
	}

	// Health endpoint
	healthServer := &http.Server{
		Addr:    *healthAddr,
		Handler: createHealthHandler(mgr, pool),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting health server", "addr", *healthAddr)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return healthServer.Shutdown(shutdownCtx)
	})

	// Connect; auto-reconnect keeps trying if the first attempt fails.
	if err := mgr.Connect(ctx); err != nil {
		logger.Warn("initial connect failed", "error", err)
	}

	logger.Info("monitor running",
		"instance_id", cfg.Instance.ID,
		"health_addr", *healthAddr,
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	mgr.Destroy()

	if rec != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		rec.Stop(stopCtx)
	}

	if err := g.Wait(); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("monitor stopped")
}

// managerConfig translates the YAML bridge section into a manager config.
func managerConfig(b config.BridgeConfig) manager.Config {
	return manager.Config{
		URL:                  b.URL,
		FallbackURLs:         b.FallbackURLs,
		EnableConnectionPool: b.EnableConnectionPool,
		EnableAutoReconnect:  b.AutoReconnect(),
		HealthCheckInterval:  b.HealthCheckInterval,
		HealthCheckTimeout:   b.HealthCheckTimeout,
		StatisticsInterval:   b.StatisticsInterval,
		Strategy:             buildStrategy(b.Backoff),
		Connection: connection.Config{
			Subprotocol:          b.Connection.Subprotocol,
			MaxReconnectAttempts: b.Connection.MaxReconnectAttempts,
			ReconnectDelay:       b.Connection.ReconnectDelay,
			HandshakeTimeout:     b.Connection.HandshakeTimeout,
			WriteTimeout:         b.Connection.WriteTimeout,
			HeartbeatInterval:    b.Connection.HeartbeatInterval,
			HeartbeatTimeout:     b.Connection.HeartbeatTimeout,
			Compression:          b.Connection.Compression,
		},
	}
}

func buildStrategy(b config.BackoffConfig) backoff.Strategy {
	switch b.Type {
	case "linear":
		return &backoff.Linear{
			Base:        b.BaseDelay,
			Increment:   b.Increment,
			Max:         b.MaxDelay,
			MaxAttempts: b.MaxAttempts,
		}
	default:
		return &backoff.Exponential{
			Base:        b.BaseDelay,
			Factor:      b.Factor,
			Max:         b.MaxDelay,
			MaxAttempts: b.MaxAttempts,
		}
	}
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(mgr *manager.Manager, pool *pgxpool.Pool) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		// Check the active connection
		hc := mgr.PerformHealthCheck(ctx)
		health.Components["connection"] = map[string]any{
			"healthy": hc.IsHealthy,
			"latency": hc.Latency.String(),
			"errors":  hc.Errors,
		}
		if !hc.IsHealthy {
			health.Status = "degraded"
		}

		// Check database
		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components["timescaledb"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["timescaledb"] = "connected"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mgr.Statistics())
	})

	return mux
}

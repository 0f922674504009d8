// probe connects to a WebSocket endpoint and streams the connection's event
// feed to the console. Point it at echod (or any envelope-speaking server)
// to watch heartbeats, drops, reconnects, and failover live.
//
// Usage: go run ./cmd/probe --url ws://localhost:8090/ws --fallbacks ws://localhost:8091/ws
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rmorin/wsbridge/internal/connection"
	"github.com/rmorin/wsbridge/internal/event"
	"github.com/rmorin/wsbridge/internal/manager"
	"github.com/rmorin/wsbridge/internal/wire"
)

func main() {
	url := flag.String("url", "ws://localhost:8090/ws", "primary endpoint")
	fallbacks := flag.String("fallbacks", "", "comma-separated fallback endpoints")
	compression := flag.String("compression", "", "message compression: gzip or snappy")
	sendEvery := flag.Duration("send-every", 5*time.Second, "interval between probe messages (0 = never send)")
	verbose := flag.Bool("verbose", false, "print full event payload JSON")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	connCfg := connection.DefaultConfig()
	connCfg.Compression = *compression

	cfg := manager.DefaultConfig()
	cfg.URL = *url
	cfg.Connection = connCfg
	if *fallbacks != "" {
		cfg.FallbackURLs = strings.Split(*fallbacks, ",")
		cfg.EnableConnectionPool = true
	}

	mgr := manager.New(cfg, logger)
	defer mgr.Destroy()

	// Print every event as it happens
	mgr.Events().SubscribeAll(func(ev event.Event) {
		printEvent(ev, *verbose)
	})

	if err := mgr.Initialize(); err != nil {
		logger.Error("initialize failed", "error", err)
		os.Exit(1)
	}
	if err := mgr.Connect(ctx); err != nil {
		// Auto-reconnect keeps trying in the background.
		logger.Warn("initial connect failed", "error", err)
	}

	// Periodic probe messages
	if *sendEvery > 0 {
		go func() {
			ticker := time.NewTicker(*sendEvery)
			defer ticker.Stop()
			n := 0
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					n++
					msg, err := wire.NewMessage("probe", map[string]int{"seq": n})
					if err != nil {
						continue
					}
					mgr.Send(msg)
				}
			}
		}()
	}

	// Stats printer
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := mgr.Statistics()
				logger.Info("stats",
					"connected", mgr.IsConnected(),
					"connects", stats.TotalConnects,
					"disconnects", stats.TotalDisconnects,
					"sent", stats.MessagesSent,
					"received", stats.MessagesReceived,
					"reconnects", stats.ReconnectAttempts,
					"errors", stats.Errors,
					"avg_latency", stats.AverageLatency,
					"uptime", stats.Uptime,
				)
			}
		}
	}()

	logger.Info("probing started - press Ctrl+C to stop")

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")
	mgr.Destroy()
	logger.Info("shutdown complete")
}

func printEvent(ev event.Event, verbose bool) {
	if ev.Payload == nil {
		fmt.Printf("[%s]\n", strings.ToUpper(string(ev.Type)))
		return
	}

	if verbose {
		data, _ := json.MarshalIndent(ev.Payload, "", "  ")
		fmt.Printf("[%s] %s\n", strings.ToUpper(string(ev.Type)), data)
		return
	}

	switch p := ev.Payload.(type) {
	case wire.Message:
		fmt.Printf("[%s] type=%s data=%s\n", strings.ToUpper(string(ev.Type)), p.Type, p.Data)
	case event.DisconnectInfo:
		fmt.Printf("[%s] code=%d reason=%q clean=%v\n", strings.ToUpper(string(ev.Type)), p.Code, p.Reason, p.WasClean)
	case event.ReconnectingInfo:
		fmt.Printf("[%s] attempt=%d/%d\n", strings.ToUpper(string(ev.Type)), p.Attempt, p.Max)
	case event.ReconnectScheduledInfo:
		fmt.Printf("[%s] attempt=%d delay=%v\n", strings.ToUpper(string(ev.Type)), p.Attempt, p.Delay)
	case error:
		fmt.Printf("[%s] error=%v\n", strings.ToUpper(string(ev.Type)), p)
	default:
		fmt.Printf("[%s] %v\n", strings.ToUpper(string(ev.Type)), p)
	}
}

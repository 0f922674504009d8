// echod is a local WebSocket echo server speaking the envelope protocol.
// Pings are answered with pongs, everything else is echoed back. Useful for
// exercising reconnect behavior: --drop-after severs each connection after
// the given duration.
//
// Usage: go run ./cmd/echod --addr :8090 --drop-after 30s
package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rmorin/wsbridge/internal/wire"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func main() {
	addr := flag.String("addr", ":8090", "listen address")
	path := flag.String("path", "/ws", "websocket endpoint path")
	dropAfter := flag.Duration("drop-after", 0, "sever each connection after this duration (0 = never)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	http.HandleFunc(*path, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("upgrade failed", "error", err, "remote", r.RemoteAddr)
			return
		}
		logger.Info("client connected", "remote", conn.RemoteAddr())
		go serve(conn, *dropAfter, logger)
	})

	logger.Info("echod listening", "addr", *addr, "path", *path, "drop_after", *dropAfter)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func serve(conn *websocket.Conn, dropAfter time.Duration, logger *slog.Logger) {
	defer conn.Close()

	if dropAfter > 0 {
		timer := time.AfterFunc(dropAfter, func() {
			logger.Info("dropping client", "remote", conn.RemoteAddr())
			// Abrupt close, no close frame: the client sees an unclean drop.
			conn.Close()
		})
		defer timer.Stop()
	}

	codec := wire.NewCodec(nil)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			logger.Info("client gone", "remote", conn.RemoteAddr(), "error", err)
			return
		}

		msg, err := codec.Decode(data)
		if err != nil {
			logger.Warn("undecodable message", "error", err)
			continue
		}

		if msg.Type == wire.TypePing {
			out, _ := codec.Encode(wire.Pong())
			if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
				return
			}
			continue
		}

		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

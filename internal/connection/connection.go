package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/atomic"

	"github.com/rmorin/wsbridge/internal/compression"
	"github.com/rmorin/wsbridge/internal/event"
	"github.com/rmorin/wsbridge/internal/wire"
)

// Connection manages exactly one WebSocket and its liveness.
type Connection struct {
	cfg     Config
	logger  *slog.Logger
	codec   *wire.Codec
	emitter *event.Emitter
	id      string

	state     *atomic.Int32
	unstable  *atomic.Bool
	destroyed *atomic.Bool
	lastPong  *atomic.Int64 // unix nanos of the last pong (or connect baseline)

	// mu guards conn, done, attempts, and reconnectTimer. Events are always
	// emitted outside the lock.
	mu             sync.Mutex
	conn           *websocket.Conn
	done           chan struct{}
	attempts       int
	reconnectTimer *time.Timer

	writeMu sync.Mutex
}

// New creates a Connection. It does not dial; call Connect.
func New(cfg Config, logger *slog.Logger) (*Connection, error) {
	if cfg.URL == "" {
		return nil, errors.New("connection URL is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	compressor, err := compression.New(cfg.Compression)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	return &Connection{
		cfg:       cfg,
		logger:    logger.With("conn_id", id),
		codec:     wire.NewCodec(compressor),
		emitter:   event.NewEmitter(),
		id:        id,
		state:     atomic.NewInt32(int32(StateDisconnected)),
		unstable:  atomic.NewBool(false),
		destroyed: atomic.NewBool(false),
		lastPong:  atomic.NewInt64(0),
	}, nil
}

// ID returns the connection's unique identifier.
func (c *Connection) ID() string {
	return c.id
}

// URL returns the configured endpoint.
func (c *Connection) URL() string {
	return c.cfg.URL
}

// Events returns the connection's event emitter.
func (c *Connection) Events() *event.Emitter {
	return c.emitter
}

// IsConnected reports whether the socket is currently open.
func (c *Connection) IsConnected() bool {
	return State(c.state.Load()) == StateConnected
}

// Status returns a point-in-time snapshot.
func (c *Connection) Status() Status {
	st := State(c.state.Load())
	return Status{
		ID:          c.id,
		URL:         c.cfg.URL,
		State:       st,
		Unstable:    c.unstable.Load(),
		LastPongAt:  time.Unix(0, c.lastPong.Load()),
		IsConnected: st == StateConnected,
	}
}

// Connect opens the socket and starts the heartbeat cycle. It is idempotent
// while already open. On success the local attempt counter resets and the
// heartbeat baseline is set to now.
func (c *Connection) Connect(ctx context.Context) error {
	if c.destroyed.Load() {
		return ErrDestroyed
	}

	c.mu.Lock()
	switch State(c.state.Load()) {
	case StateConnected:
		c.mu.Unlock()
		return nil
	case StateConnecting:
		c.mu.Unlock()
		return ErrConnectInProgress
	}
	c.state.Store(int32(StateConnecting))
	c.mu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}
	if c.cfg.Subprotocol != "" {
		dialer.Subprotocols = []string{c.cfg.Subprotocol}
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		c.state.Store(int32(StateDisconnected))
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}

	c.mu.Lock()
	if c.destroyed.Load() {
		c.mu.Unlock()
		conn.Close()
		return ErrDestroyed
	}
	c.conn = conn
	c.done = make(chan struct{})
	done := c.done
	c.attempts = 0
	c.unstable.Store(false)
	c.lastPong.Store(time.Now().UnixNano())
	c.state.Store(int32(StateConnected))
	c.mu.Unlock()

	go c.readLoop(conn, done)
	go c.heartbeatLoop(done)

	c.logger.Debug("connected", "url", c.cfg.URL)
	c.emitter.Emit(event.Event{Type: event.Connect})
	return nil
}

// Send serializes and writes the message if the connection is open. It
// returns false (never an error) when not connected or when the write fails.
func (c *Connection) Send(msg wire.Message) bool {
	if State(c.state.Load()) != StateConnected {
		return false
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return false
	}

	data, err := c.codec.Encode(msg)
	if err != nil {
		c.logger.Warn("encode failed", "type", msg.Type, "error", err)
		return false
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.logger.Warn("write failed", "type", msg.Type, "error", err)
		return false
	}
	return true
}

// Disconnect requests a clean close: heartbeat stops, state becomes
// disconnected, and no reconnection is attempted.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	c.stopReconnectTimerLocked()
	if State(c.state.Load()) != StateConnected {
		c.mu.Unlock()
		return
	}
	conn := c.conn
	c.conn = nil
	c.state.Store(int32(StateDisconnected))
	c.unstable.Store(false)
	close(c.done)
	c.done = nil
	c.mu.Unlock()

	if conn != nil {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		conn.Close()
	}

	c.logger.Debug("disconnected", "clean", true)
	c.emitter.Emit(event.Event{Type: event.Disconnect, Payload: event.DisconnectInfo{
		Code:     websocket.CloseNormalClosure,
		WasClean: true,
	}})
}

// Destroy releases the socket and every timer and leaves the Connection
// unusable. Idempotent.
func (c *Connection) Destroy() {
	if c.destroyed.Swap(true) {
		return
	}

	c.mu.Lock()
	c.stopReconnectTimerLocked()
	conn := c.conn
	c.conn = nil
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
	c.state.Store(int32(StateDisconnected))
	c.unstable.Store(false)
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	c.emitter.Clear()
}

// readLoop consumes envelopes from one socket session. done belongs to the
// same session, so a reconnect cannot race a stale loop.
func (c *Connection) readLoop(conn *websocket.Conn, done chan struct{}) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-done:
				// Close was requested locally; already handled.
			default:
				c.handleUnexpectedClose(conn, err)
			}
			return
		}

		msg, derr := c.codec.Decode(data)
		if derr != nil {
			c.logger.Warn("dropping undecodable message", "error", derr)
			continue
		}

		switch msg.Type {
		case wire.TypePing:
			// Peer-initiated probe: answer, never surface as a message.
			c.Send(wire.Pong())
		case wire.TypePong:
			c.lastPong.Store(time.Now().UnixNano())
			c.unstable.Store(false)
			c.emitter.Emit(event.Event{Type: event.Pong, Payload: msg})
		default:
			c.emitter.Emit(event.Event{Type: event.Message, Payload: msg})
		}
	}
}

// heartbeatLoop sends pings on a fixed interval and flags the connection
// unstable when the last pong is overdue. It never closes the socket; the
// transport's own close signal drives closure.
func (c *Connection) heartbeatLoop(done chan struct{}) {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if State(c.state.Load()) != StateConnected {
				return
			}
			if c.Send(wire.Ping()) {
				c.emitter.Emit(event.Event{Type: event.Ping})
			}

			elapsed := time.Since(time.Unix(0, c.lastPong.Load()))
			if elapsed > c.cfg.HeartbeatTimeout && !c.unstable.Swap(true) {
				c.logger.Warn("heartbeat overdue", "elapsed", elapsed, "timeout", c.cfg.HeartbeatTimeout)
				c.emitter.Emit(event.Event{Type: event.ConnectionUnstable, Payload: elapsed})
			}
		}
	}
}

// handleUnexpectedClose reacts to a close the peer (or network) initiated:
// stop the heartbeat, emit disconnect, and schedule a bounded local retry.
func (c *Connection) handleUnexpectedClose(conn *websocket.Conn, err error) {
	c.mu.Lock()
	if c.conn != conn || State(c.state.Load()) != StateConnected {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.state.Store(int32(StateDisconnected))
	c.unstable.Store(false)
	close(c.done)
	c.done = nil
	c.mu.Unlock()

	conn.Close()

	code := websocket.CloseAbnormalClosure
	reason := err.Error()
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		code = ce.Code
		reason = ce.Text
	}

	c.logger.Warn("connection lost", "code", code, "reason", reason)
	c.emitter.Emit(event.Event{Type: event.Disconnect, Payload: event.DisconnectInfo{
		Code:   code,
		Reason: reason,
	}})

	c.scheduleReconnect()
}

// scheduleReconnect arms the local retry timer, or emits the exhaustion
// error once the attempt ceiling is reached.
func (c *Connection) scheduleReconnect() {
	if c.destroyed.Load() {
		return
	}

	c.mu.Lock()
	if c.attempts >= c.cfg.MaxReconnectAttempts {
		c.mu.Unlock()
		c.logger.Warn("reconnect attempts exhausted", "max", c.cfg.MaxReconnectAttempts)
		c.emitter.Emit(event.Event{
			Type:    event.Error,
			Payload: fmt.Errorf("%w (%d)", ErrMaxReconnectAttempts, c.cfg.MaxReconnectAttempts),
		})
		return
	}
	c.attempts++
	attempt := c.attempts
	delay := c.cfg.ReconnectDelay * time.Duration(attempt)
	c.reconnectTimer = time.AfterFunc(delay, c.retryConnect)
	c.mu.Unlock()

	c.logger.Info("reconnect scheduled", "attempt", attempt, "max", c.cfg.MaxReconnectAttempts, "delay", delay)
	c.emitter.Emit(event.Event{Type: event.Reconnecting, Payload: event.ReconnectingInfo{
		Attempt: attempt,
		Max:     c.cfg.MaxReconnectAttempts,
	}})
}

func (c *Connection) retryConnect() {
	if c.destroyed.Load() || State(c.state.Load()) == StateConnected {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.HandshakeTimeout)
	defer cancel()

	if err := c.Connect(ctx); err != nil {
		c.logger.Warn("reconnect attempt failed", "error", err)
		c.scheduleReconnect()
	}
}

func (c *Connection) stopReconnectTimerLocked() {
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
}

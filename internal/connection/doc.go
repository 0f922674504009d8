// Package connection implements the single-socket connection wrapper.
//
// A Connection owns exactly one WebSocket, runs the heartbeat cycle that
// detects a silently-dead peer, and performs its own bounded reconnection
// after an unsolicited close. Liveness loss marks the connection unstable
// without closing it; closure is always driven by the transport's own
// error/close signal. Lifecycle events are published through a typed
// emitter and republished by the manager layer.
package connection

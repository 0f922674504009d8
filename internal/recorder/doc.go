// Package recorder persists connection telemetry to TimescaleDB. It
// subscribes to a manager's event stream and batch-inserts lifecycle
// events, health checks, and statistics snapshots for later analysis.
//
// The recorder is a passive consumer: the connection layer itself holds no
// persisted state, and a monitor runs fine without a recorder attached.
package recorder

// Package database provides connection pool management for TimescaleDB,
// which stores recorded connection telemetry (health checks, statistics
// snapshots, lifecycle events).
package database

// Package backoff implements pluggable reconnection delay strategies.
//
// A Strategy maps a retry-attempt counter to the delay before the next
// attempt and decides when attempts should stop. Implementations are
// interchangeable behind the Strategy interface so the connection manager
// can be configured with either curve without code changes.
package backoff

// Package event implements the typed publish/subscribe layer shared by the
// connection and manager components.
//
// Events are keyed by a closed set of names, each carrying a fixed payload
// shape. Every Subscribe call returns an explicit unsubscribe handle.
// Handlers for one emitter are invoked synchronously in registration order,
// so events from a single source are observed in the order they were
// produced.
package event

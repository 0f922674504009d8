// Package wire defines the JSON message envelope exchanged with the backend.
//
// Every logical message is one JSON object:
//
//	{ "type": string, "data"?: any, "timestamp"?: number (ms epoch) }
//
// The types "ping" and "pong" are reserved for the heartbeat mechanism and
// are never forwarded to consumers as generic message events.
package wire

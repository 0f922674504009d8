// Package manager implements the connection facade consumers talk to.
//
// The Manager orchestrates an ordered pool of connection candidates (one
// primary plus optional fallbacks), attempts them in declared order on
// connect, applies its own reconnect strategy on top of each connection's
// local retry, runs the periodic health-check and statistics cycles, and
// republishes every connection event under a stable vocabulary so consumers
// never hold a reference to a specific underlying connection.
package manager

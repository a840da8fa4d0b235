// Package daemon coordinates the long-running `newzyx serve` process.
//
// It wires configuration, the episode service, the playback controller, and
// the HTTP API into a single lifecycle with flock-based locking to prevent
// multiple instances on the same state directory.
//
// Keep orchestration logic here: catalog, content and playback behavior live
// in their own packages while the daemon focuses on startup, shutdown, and
// request routing.
package daemon

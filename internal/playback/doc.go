// Package playback drives a single audio session for one episode at a time.
//
// The Controller is a small state machine:
//
//	Idle -> Loading -> Paused <-> Playing
//	          |
//	          +-> Error (until the next Load)
//
// Natural completion returns the session to Paused at position zero; there is
// no playlist and nothing auto-advances. Handles that also implement
// FailureObserver can report a broken stream instead, which pauses the session
// in place and records LastError.
//
// The controller never touches media directly. It drives an opaque Handle
// created by an Opener, so tests substitute a fake and the CLI plugs in the
// ffplay-backed player. Loading a new episode releases the previous handle,
// cancels its observers and invalidates its pending duration lookup, so a slow
// answer for an older episode can never overwrite the current one.
//
// State changes happen under one mutex and are published in order, both to
// synchronous subscribers and to a bounded Hub that HTTP clients long-poll.
package playback

// Package main hosts the newzyx CLI entrypoint and command graph.
//
// The Cobra-based command tree lists the episode window, resolves the latest
// available episode, prints summaries, probes resources, plays podcasts
// through ffplay, exports an RSS feed, and runs the HTTP API server. It
// centralizes configuration resolution and structured logging setup so
// subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main

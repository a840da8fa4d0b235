// Package api defines wire-format types and converters for the HTTP API and
// the CLI's JSON output. It translates catalog, content and playback models
// into transport-friendly DTOs so consumers can render them without coupling
// to internal types.
//
// # Key Types
//
// EpisodeItem: an episode with its locators and pre-rendered date labels.
//
// SummaryResponse: summary text, its "Updated" label, or the failure block
// shown in its place.
//
// PlaybackState/PlaybackEventsResponse: controller snapshots for polling and
// long-poll consumers.
//
// DaemonStatus: runtime information for `serve`, including dependencies.
//
// # Service
//
// EpisodeService wraps the catalog and the content resolver and returns DTOs.
// The CLI and the HTTP server both call it, so the two surfaces agree.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Timestamps use RFC3339 with milliseconds.
package api

// Package config loads, normalizes, and validates newzyx configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// NEWZYX_BASE_URL. The Config type centralizes every knob the CLI and the
// serve runtime need: the backing store location, the catalog window, player
// binaries, the presentation API bind address, and log output.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

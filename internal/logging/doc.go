// Package logging assembles structured slog loggers and formatting helpers used
// across newzyx components.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing (including rotating log files), and exposes context-aware helpers so
// request handlers and playback code can tag log lines with correlation IDs and
// episode keys. The package also provides a no-op logger for tests and wiring
// code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape as the rest of the system.
package logging

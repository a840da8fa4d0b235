// Package catalog derives the rolling window of dated episodes and locates the
// most recent one that actually exists in the backing store.
//
// Generate is pure: given a base URL and "today" it returns one Episode per
// day, newest first, each carrying its summary and podcast locators.
// FindFirstAvailable walks the leading entries with an injected existence
// probe and falls back to the newest entry when nothing is confirmed.
//
// Service wraps both behind a mutex-guarded, published catalog state for the
// CLI and HTTP API.
package catalog

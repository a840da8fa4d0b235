// Package ffprobe wraps ffprobe's JSON output for audio resources.
//
// Inspect runs ffprobe against a local path or remote URL and decodes the
// format and stream sections. Result.DurationSeconds prefers the container
// duration and falls back to the first audio stream, which is what a
// progressive MP3 served over HTTP usually reports.
package ffprobe

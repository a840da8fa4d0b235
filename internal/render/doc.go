// Package render turns core state into the strings the CLI and API show:
// summary text stripped of HTML, display dates, playback clocks and the
// summary failure notice.
package render

// Package player implements playback.Handle on top of ffplay and ffprobe.
//
// ffprobe resolves the duration of the remote MP3. ffplay streams it with no
// window (-nodisp) and exits at end of media (-autoexit). A clean exit is
// reported as completion and an error exit as a failure. ffplay cannot be
// repositioned in place, so Seek while playing restarts the process at the new
// offset. The playhead is derived from the start offset plus wall-clock time
// since launch.
package player

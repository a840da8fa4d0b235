package playback

import (
	"context"
	"time"
)

// Handle is one loaded media resource.
//
// Implementations must not invoke observer callbacks synchronously from
// Start, Stop, Seek or Release, and neither the cancel functions nor Release
// may wait for an in-flight callback to return. The controller calls these
// methods while holding its lock and the callbacks take the same lock.
type Handle interface {
	// Duration resolves the media length in seconds. Zero means unknown.
	Duration(ctx context.Context) (float64, error)
	Start() error
	Stop() error
	Seek(seconds float64) error
	// ObservePosition reports the playhead roughly every interval while playing.
	ObservePosition(interval time.Duration, fn func(seconds float64)) (cancel func())
	// ObserveCompletion reports natural end of media.
	ObserveCompletion(fn func()) (cancel func())
	// Release frees the resource. The handle is unusable afterwards.
	Release()
}

// FailureObserver is implemented by handles that can tell a playback failure
// (a dropped stream, a crashed decoder) apart from natural end of media. The
// same callback rules as Handle apply.
type FailureObserver interface {
	ObserveFailure(fn func(err error)) (cancel func())
}

// Opener creates handles for media URLs.
type Opener interface {
	Open(ctx context.Context, url string) (Handle, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, url string) (Handle, error)

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context, url string) (Handle, error) {
	return f(ctx, url)
}

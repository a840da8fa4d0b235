package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type durationResult struct {
	seconds float64
	err     error
}

type fakeHandle struct {
	url       string
	durations chan durationResult

	mu            sync.Mutex
	started       int
	stopped       int
	seeks         []float64
	released      bool
	positionObs   map[int]func(float64)
	completionObs map[int]func()
	failureObs    map[int]func(error)
	nextObs       int
	startErr      error
}

func newFakeHandle(url string) *fakeHandle {
	return &fakeHandle{
		url:           url,
		durations:     make(chan durationResult, 1),
		positionObs:   make(map[int]func(float64)),
		completionObs: make(map[int]func()),
		failureObs:    make(map[int]func(error)),
	}
}

func (h *fakeHandle) Duration(ctx context.Context) (float64, error) {
	// Deliberately ignores ctx so stale results arrive late.
	res := <-h.durations
	return res.seconds, res.err
}

func (h *fakeHandle) resolve(seconds float64) { h.durations <- durationResult{seconds: seconds} }

func (h *fakeHandle) fail(err error) { h.durations <- durationResult{err: err} }

func (h *fakeHandle) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.startErr != nil {
		return h.startErr
	}
	h.started++
	return nil
}

func (h *fakeHandle) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped++
	return nil
}

func (h *fakeHandle) Seek(seconds float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seeks = append(h.seeks, seconds)
	return nil
}

func (h *fakeHandle) ObservePosition(_ time.Duration, fn func(float64)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextObs
	h.nextObs++
	h.positionObs[id] = fn
	return func() {
		h.mu.Lock()
		delete(h.positionObs, id)
		h.mu.Unlock()
	}
}

func (h *fakeHandle) ObserveCompletion(fn func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextObs
	h.nextObs++
	h.completionObs[id] = fn
	return func() {
		h.mu.Lock()
		delete(h.completionObs, id)
		h.mu.Unlock()
	}
}

func (h *fakeHandle) ObserveFailure(fn func(error)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextObs
	h.nextObs++
	h.failureObs[id] = fn
	return func() {
		h.mu.Lock()
		delete(h.failureObs, id)
		h.mu.Unlock()
	}
}

func (h *fakeHandle) Release() {
	h.mu.Lock()
	h.released = true
	h.mu.Unlock()
}

func (h *fakeHandle) observerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.positionObs) + len(h.completionObs) + len(h.failureObs)
}

func (h *fakeHandle) isReleased() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

func (h *fakeHandle) tick(seconds float64) {
	h.mu.Lock()
	fns := make([]func(float64), 0, len(h.positionObs))
	for _, fn := range h.positionObs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn(seconds)
	}
}

func (h *fakeHandle) finish() {
	h.mu.Lock()
	fns := make([]func(), 0, len(h.completionObs))
	for _, fn := range h.completionObs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (h *fakeHandle) breakStream(err error) {
	h.mu.Lock()
	fns := make([]func(error), 0, len(h.failureObs))
	for _, fn := range h.failureObs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn(err)
	}
}

func (h *fakeHandle) lastSeek() (float64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.seeks) == 0 {
		return 0, false
	}
	return h.seeks[len(h.seeks)-1], true
}

type fakeOpener struct {
	mu      sync.Mutex
	handles []*fakeHandle
	opened  chan *fakeHandle
	err     error
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{opened: make(chan *fakeHandle, 64)}
}

func (o *fakeOpener) Open(_ context.Context, url string) (Handle, error) {
	if o.err != nil {
		return nil, o.err
	}
	h := newFakeHandle(url)
	o.mu.Lock()
	o.handles = append(o.handles, h)
	o.mu.Unlock()
	o.opened <- h
	return h, nil
}

func (o *fakeOpener) all() []*fakeHandle {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*fakeHandle(nil), o.handles...)
}

func (o *fakeOpener) next(t *testing.T) *fakeHandle {
	t.Helper()
	select {
	case h := <-o.opened:
		return h
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for handle")
		return nil
	}
}

func waitForState(t *testing.T, c *Controller, desc string, cond func(State) bool) State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		s := c.Snapshot()
		if cond(s) {
			return s
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s; last state %+v", desc, s)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

// waitReleased tolerates a superseded load whose goroutine releases the
// handle itself after noticing the newer generation.
func waitReleased(t *testing.T, h *fakeHandle) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !h.isReleased() {
		if time.Now().After(deadline) {
			t.Fatalf("handle %s never released", h.url)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

var errBoom = errors.New("boom")

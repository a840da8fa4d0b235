package daemon

import (
	"context"
	"sync"
	"time"

	"newzyx/internal/catalog"
	"newzyx/internal/content"
	"newzyx/internal/playback"
)

var testNow = time.Date(2025, time.March, 9, 10, 0, 0, 0, time.UTC)

type fakeContent struct {
	mu       sync.Mutex
	texts    map[string]string
	existing map[string]bool
	fetchErr error
}

func (f *fakeContent) FetchSummary(_ context.Context, ep catalog.Episode) (content.FetchedContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return content.FetchedContent{}, f.fetchErr
	}
	text, ok := f.texts[ep.ID]
	if !ok {
		return content.FetchedContent{}, &content.HTTPError{URL: ep.SummaryURL, StatusCode: 404}
	}
	return content.FetchedContent{Text: text}, nil
}

func (f *fakeContent) ProbeExists(_ context.Context, locator string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing[locator]
}

func (f *fakeContent) CheckConnection(_ context.Context, locator string) content.Diagnosis {
	return content.Diagnosis{URL: locator, OK: true, StatusCode: 200, Message: "✅ Connection successful! File exists."}
}

type fakePlayback struct {
	mu    sync.Mutex
	hub   *playback.Hub
	state playback.State
	calls []string
	seeks []float64
}

func newFakePlayback() *fakePlayback {
	return &fakePlayback{hub: playback.NewHub(16), state: playback.State{Status: playback.StatusIdle}}
}

func (f *fakePlayback) Snapshot() playback.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakePlayback) Hub() *playback.Hub { return f.hub }

func (f *fakePlayback) Load(ep catalog.Episode) {
	f.mu.Lock()
	f.calls = append(f.calls, "load:"+ep.ID)
	f.state = playback.State{
		Episode:    &ep,
		Status:     playback.StatusLoading,
		IsLoading:  true,
		Generation: f.state.Generation + 1,
	}
	state := f.state
	f.mu.Unlock()
	f.hub.Publish(state)
}

func (f *fakePlayback) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakePlayback) Play()            { f.record("play") }
func (f *fakePlayback) Pause()           { f.record("pause") }
func (f *fakePlayback) TogglePlayPause() { f.record("toggle") }

func (f *fakePlayback) Seek(seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "seek")
	f.seeks = append(f.seeks, seconds)
}

func (f *fakePlayback) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

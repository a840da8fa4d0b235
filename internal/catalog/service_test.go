package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"newzyx/internal/datekey"
)

type fakeProber struct {
	mu       sync.Mutex
	existing map[string]bool
	calls    []string
}

func (f *fakeProber) ProbeExists(_ context.Context, locator string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, locator)
	return f.existing[locator]
}

func newTestService(prober Prober) *Service {
	return NewService(Options{
		BaseURL:    testBase,
		WindowDays: 60,
		ProbeLimit: 10,
		Clock:      testToday,
	}, prober)
}

func TestServiceLatestFindsPublishedEpisode(t *testing.T) {
	prober := &fakeProber{existing: map[string]bool{
		testBase + "/2.27.25_news_summary.txt": true,
		testBase + "/2.20.25_news_summary.txt": true,
	}}
	svc := newTestService(prober)

	ep, found, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if !found || ep.ID != "2.27.25" {
		t.Fatalf("Latest = %s found=%v", ep.ID, found)
	}
	if len(prober.calls) != 4 {
		t.Fatalf("expected 4 probes, got %d", len(prober.calls))
	}
	if svc.Snapshot().IsLoading {
		t.Fatal("loading flag left set")
	}
}

func TestServiceLatestFallsBack(t *testing.T) {
	svc := newTestService(&fakeProber{})
	ep, found, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if found || ep.ID != "3.2.25" {
		t.Fatalf("Latest = %s found=%v", ep.ID, found)
	}
}

func TestServiceRefreshPublishesError(t *testing.T) {
	svc := NewService(Options{BaseURL: "::bad", WindowDays: 5, Clock: testToday}, nil)
	if err := svc.Refresh(testToday()); err == nil {
		t.Fatal("expected refresh error")
	}
	state := svc.Snapshot()
	if state.ErrorMessage == "" || len(state.Episodes) != 0 {
		t.Fatalf("unexpected state %+v", state)
	}
	if _, _, err := svc.Latest(context.Background()); !errors.Is(err, ErrInvalidBaseURL) {
		t.Fatalf("Latest error = %v", err)
	}
}

func TestServiceSnapshotIsACopy(t *testing.T) {
	svc := newTestService(nil)
	if err := svc.Refresh(testToday()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	snap := svc.Snapshot()
	snap.Episodes[0].ID = "mutated"
	if svc.Snapshot().Episodes[0].ID != "3.2.25" {
		t.Fatal("snapshot shares backing array with service state")
	}
	if !svc.Snapshot().GeneratedAt.Equal(testToday()) {
		t.Fatal("generated_at not recorded")
	}
}

func TestServiceLookup(t *testing.T) {
	svc := newTestService(nil)
	if _, err := svc.Episodes(); err != nil {
		t.Fatalf("Episodes: %v", err)
	}
	ep, err := svc.Lookup("3.1.25")
	if err != nil || ep.ID != "3.1.25" {
		t.Fatalf("Lookup in window = %+v, %v", ep, err)
	}
	old, err := svc.Lookup("1.5.24")
	if err != nil {
		t.Fatalf("Lookup outside window: %v", err)
	}
	if !strings.HasSuffix(old.PodcastURL, "/1.5.24_podcast.mp3") {
		t.Fatalf("podcast url = %s", old.PodcastURL)
	}
	if _, err := svc.Lookup("1.5"); !errors.Is(err, datekey.ErrMalformedKey) {
		t.Fatalf("expected malformed key, got %v", err)
	}
}

func TestServiceLatestHonoursCancellation(t *testing.T) {
	svc := newTestService(&fakeProber{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := svc.Latest(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

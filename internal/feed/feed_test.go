package feed

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"newzyx/internal/catalog"
	"newzyx/internal/content"
)

type fakeFetcher struct {
	mu      sync.Mutex
	texts   map[string]string
	failing map[string]error
	calls   int
}

func (f *fakeFetcher) FetchSummary(_ context.Context, ep catalog.Episode) (content.FetchedContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.failing[ep.ID]; ok {
		return content.FetchedContent{}, err
	}
	text, ok := f.texts[ep.ID]
	if !ok {
		return content.FetchedContent{}, &content.HTTPError{StatusCode: 404}
	}
	modified := ep.Date.Add(6 * time.Hour)
	return content.FetchedContent{Text: text, LastModified: &modified}, nil
}

func testEpisodes(t *testing.T) []catalog.Episode {
	t.Helper()
	episodes, err := catalog.Generate(5, "https://store.test/bucket", time.Date(2025, time.March, 9, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return episodes
}

func TestCollectKeepsExistingInOrder(t *testing.T) {
	fetcher := &fakeFetcher{
		texts: map[string]string{
			"3.9.25": "<p>Sunday news</p>",
			"3.7.25": "Friday news",
			"3.5.25": "Wednesday news",
		},
		failing: map[string]error{"3.6.25": &content.TransportError{Err: errors.New("reset")}},
	}
	entries := Collect(context.Background(), fetcher, testEpisodes(t), 3, nil)
	if fetcher.calls != 5 {
		t.Fatalf("expected 5 fetches, got %d", fetcher.calls)
	}
	var ids []string
	for _, e := range entries {
		ids = append(ids, e.Episode.ID)
	}
	if strings.Join(ids, ",") != "3.9.25,3.7.25,3.5.25" {
		t.Fatalf("entries = %v", ids)
	}
	if entries[0].Text != "Sunday news" {
		t.Fatalf("html not rendered: %q", entries[0].Text)
	}
}

func TestWriteProducesRSS(t *testing.T) {
	episodes := testEpisodes(t)
	modified := time.Date(2025, time.March, 9, 6, 0, 0, 0, time.UTC)
	entries := []Entry{
		{Episode: episodes[0], Text: "Top story today", LastModified: &modified},
		{Episode: episodes[1], Text: strings.Repeat("long ", 200)},
	}
	var buf bytes.Buffer
	opts := Options{
		Title:       "Kids News Feed",
		Link:        "https://store.test/bucket",
		Description: "Daily news summaries and podcasts",
		Now:         func() time.Time { return modified.Add(time.Hour) },
	}
	if err := Write(&buf, opts, entries); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<title>Kids News Feed</title>",
		"Sunday, March 9, 2025",
		`url="https://store.test/bucket/3.9.25_podcast.mp3"`,
		"audio/mpeg",
		"https://store.test/bucket/3.8.25_news_summary.txt",
		"Top story today",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("feed missing %q:\n%s", want, out)
		}
	}
}

func TestBuildRequiresEntries(t *testing.T) {
	if _, err := Build(Options{Title: "x"}, nil); !errors.Is(err, ErrNoEntries) {
		t.Fatalf("expected ErrNoEntries, got %v", err)
	}
}

func TestExcerpt(t *testing.T) {
	short := "short"
	if excerpt(short) != short {
		t.Fatal("short text changed")
	}
	long := strings.Repeat("é", excerptRunes+10)
	got := excerpt(long)
	if !strings.HasSuffix(got, "…") || len([]rune(got)) != excerptRunes+1 {
		t.Fatalf("unexpected excerpt length %d", len([]rune(got)))
	}
}

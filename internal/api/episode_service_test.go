package api

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"newzyx/internal/catalog"
	"newzyx/internal/content"
	"newzyx/internal/datekey"
)

const testBase = "https://store.test/bucket"

var testNow = time.Date(2025, time.March, 9, 10, 0, 0, 0, time.UTC)

type fakeContent struct {
	existing map[string]bool
	texts    map[string]string
	modified *time.Time
	fetchErr error
	checked  []string
}

func (f *fakeContent) FetchSummary(_ context.Context, ep catalog.Episode) (content.FetchedContent, error) {
	if f.fetchErr != nil {
		return content.FetchedContent{}, f.fetchErr
	}
	text, ok := f.texts[ep.ID]
	if !ok {
		return content.FetchedContent{}, &content.HTTPError{URL: ep.SummaryURL, StatusCode: 404}
	}
	return content.FetchedContent{Text: text, LastModified: f.modified}, nil
}

func (f *fakeContent) ProbeExists(_ context.Context, locator string) bool {
	return f.existing[locator]
}

func (f *fakeContent) CheckConnection(_ context.Context, locator string) content.Diagnosis {
	f.checked = append(f.checked, locator)
	return content.Diagnosis{URL: locator, OK: true, StatusCode: 200, Message: "✅ Connection successful! File exists."}
}

func newTestService(src *fakeContent) *EpisodeService {
	cat := catalog.NewService(catalog.Options{
		BaseURL:    testBase,
		WindowDays: 7,
		ProbeLimit: 10,
		Clock:      func() time.Time { return testNow },
	}, src)
	return NewEpisodeService(cat, src, ServiceOptions{
		BaseURL:  testBase,
		Location: time.UTC,
		Clock:    func() time.Time { return testNow },
	})
}

func TestEpisodeServiceList(t *testing.T) {
	svc := newTestService(&fakeContent{})
	resp, err := svc.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(resp.Episodes) != 7 {
		t.Fatalf("expected 7 episodes, got %d", len(resp.Episodes))
	}
	first := resp.Episodes[0]
	if first.ID != "3.9.25" || first.DisplayDate != "March 9, 2025" || first.MonthBadge != "MAR" || first.DayBadge != "9" {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if first.Date != "2025-03-09" {
		t.Fatalf("unexpected date %q", first.Date)
	}
	if resp.GeneratedAt == "" {
		t.Fatal("expected generatedAt")
	}
}

func TestEpisodeServiceLatestAndResolve(t *testing.T) {
	src := &fakeContent{existing: map[string]bool{
		testBase + "/3.7.25" + catalog.SummarySuffix: true,
	}}
	svc := newTestService(src)

	latest, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Episode.ID != "3.7.25" || !latest.Confirmed {
		t.Fatalf("unexpected latest: %+v", latest)
	}

	ep, err := svc.Resolve(context.Background(), "LATEST")
	if err != nil || ep.ID != "3.7.25" {
		t.Fatalf("Resolve(latest) = %v, %v", ep.ID, err)
	}
	if _, err := svc.Resolve(context.Background(), "13.1.25"); !errors.Is(err, datekey.ErrMalformedKey) {
		t.Fatalf("expected ErrMalformedKey, got %v", err)
	}
}

func TestEpisodeServiceSummary(t *testing.T) {
	modified := time.Date(2025, time.March, 9, 14, 30, 0, 0, time.UTC)
	src := &fakeContent{
		texts:    map[string]string{"3.9.25": "<p>Hello</p><p>World</p>"},
		modified: &modified,
	}
	svc := newTestService(src)

	resp, err := svc.Summary(context.Background(), "3.9.25")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !strings.Contains(resp.Text, "Hello") || !strings.Contains(resp.Text, "World") {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if resp.Updated != "Updated: Mar 9, 2025 at 2:30 PM" {
		t.Fatalf("unexpected updated label %q", resp.Updated)
	}

	resp, err = svc.Summary(context.Background(), "3.8.25")
	if !content.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !strings.HasPrefix(resp.Text, "Could not load news summary for this date.") {
		t.Fatalf("expected failure text, got %q", resp.Text)
	}
	if resp.Error != "Server error: 404" {
		t.Fatalf("unexpected error field %q", resp.Error)
	}
}

func TestEpisodeServiceExists(t *testing.T) {
	src := &fakeContent{existing: map[string]bool{
		testBase + "/3.9.25" + catalog.PodcastSuffix: true,
	}}
	svc := newTestService(src)
	resp, err := svc.Exists(context.Background(), "3.9.25")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if resp.Summary || !resp.Podcast {
		t.Fatalf("unexpected exists response: %+v", resp)
	}
}

func TestEpisodeServiceDiagnose(t *testing.T) {
	src := &fakeContent{}
	svc := newTestService(src)
	resp, err := svc.Diagnose(context.Background())
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !resp.OK || resp.StatusCode != 200 {
		t.Fatalf("unexpected diagnosis: %+v", resp)
	}
	want := testBase + "/3.9.25" + catalog.SummarySuffix
	if len(src.checked) != 1 || src.checked[0] != want {
		t.Fatalf("checked %v, want %s", src.checked, want)
	}
}

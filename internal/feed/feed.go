package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/eduncan911/podcast"
	"github.com/sourcegraph/conc/iter"

	"newzyx/internal/catalog"
	"newzyx/internal/content"
	"newzyx/internal/logging"
	"newzyx/internal/render"
)

const excerptRunes = 400

// ErrNoEntries is returned when there is nothing to publish.
var ErrNoEntries = errors.New("feed has no episodes")

// Options describes the channel.
type Options struct {
	Title       string
	Link        string
	Description string
	Language    string
	Now         func() time.Time
}

// Entry is one episode confirmed to exist, with its summary text.
type Entry struct {
	Episode      catalog.Episode
	Text         string
	LastModified *time.Time
}

// SummaryFetcher fetches an episode's summary.
type SummaryFetcher interface {
	FetchSummary(ctx context.Context, ep catalog.Episode) (content.FetchedContent, error)
}

// Collect fetches summaries for episodes, at most concurrency at a time, and
// returns the ones that exist in catalog order. Missing episodes are skipped;
// other failures are logged and skipped too.
func Collect(ctx context.Context, fetcher SummaryFetcher, episodes []catalog.Episode, concurrency int, logger *slog.Logger) []Entry {
	logger = logging.NewComponentLogger(logger, "feed")
	if concurrency < 1 {
		concurrency = 1
	}
	mapper := iter.Mapper[catalog.Episode, *Entry]{MaxGoroutines: concurrency}
	results := mapper.Map(episodes, func(ep *catalog.Episode) *Entry {
		if ctx.Err() != nil {
			return nil
		}
		fetched, err := fetcher.FetchSummary(ctx, *ep)
		if err != nil {
			if !content.IsNotFound(err) {
				logging.WarnWithContext(logger, "skipping episode in feed", "feed_fetch_failed",
					logging.Episode(ep.ID),
					logging.Error(err),
					logging.Impact("episode omitted from feed"),
				)
			}
			return nil
		}
		return &Entry{Episode: *ep, Text: render.HTMLToText(fetched.Text), LastModified: fetched.LastModified}
	})

	entries := make([]Entry, 0, len(results))
	for _, entry := range results {
		if entry != nil {
			entries = append(entries, *entry)
		}
	}
	return entries
}

// Build assembles the podcast document.
func Build(opts Options, entries []Entry) (*podcast.Podcast, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	built := now().UTC()
	newest := pubDate(entries[0])

	p := podcast.New(opts.Title, opts.Link, opts.Description, &newest, &built)
	if opts.Language != "" {
		p.Language = opts.Language
	} else {
		p.Language = "en-us"
	}
	p.AddSummary(opts.Description)

	for _, entry := range entries {
		published := pubDate(entry)
		description := excerpt(entry.Text)
		if description == "" {
			description = entry.Episode.DisplayDate
		}
		item := podcast.Item{
			GUID:        entry.Episode.PodcastURL,
			Title:       render.LongDisplayDate(entry.Episode.ID),
			Link:        entry.Episode.SummaryURL,
			Description: description,
			PubDate:     &published,
		}
		item.AddSummary(entry.Text)
		item.AddEnclosure(entry.Episode.PodcastURL, podcast.MP3, 0)
		if _, err := p.AddItem(item); err != nil {
			return nil, fmt.Errorf("add feed item %s: %w", entry.Episode.ID, err)
		}
	}
	return &p, nil
}

// Write builds the document and encodes it to w.
func Write(w io.Writer, opts Options, entries []Entry) error {
	p, err := Build(opts, entries)
	if err != nil {
		return err
	}
	if err := p.Encode(w); err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}
	return nil
}

func pubDate(entry Entry) time.Time {
	if entry.LastModified != nil {
		return entry.LastModified.UTC()
	}
	return entry.Episode.Date
}

func excerpt(text string) string {
	if utf8.RuneCountInString(text) <= excerptRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:excerptRunes]) + "…"
}

package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"newzyx/internal/datekey"
)

const (
	// SummarySuffix is appended to "{base}/{key}" to address the text summary.
	SummarySuffix = "_news_summary.txt"
	// PodcastSuffix is appended to "{base}/{key}" to address the audio file.
	PodcastSuffix = "_podcast.mp3"

	displayDateLayout = "January 2, 2006"
)

// ErrInvalidBaseURL reports a base location that cannot address episodes.
var ErrInvalidBaseURL = errors.New("invalid base url")

// Episode is one dated unit of content. ID is the M.D.YY key itself.
type Episode struct {
	ID          string      `json:"id"`
	Key         datekey.Key `json:"-"`
	Date        time.Time   `json:"date"`
	DisplayDate string      `json:"display_date"`
	SummaryURL  string      `json:"summary_url"`
	PodcastURL  string      `json:"podcast_url"`
}

// IsZero reports whether e is the zero Episode.
func (e Episode) IsZero() bool {
	return e.ID == ""
}

// NewEpisode builds the episode for key under base. The date is midnight in
// time.Local; use NewEpisodeIn to pick a location.
func NewEpisode(key datekey.Key, base string) (Episode, error) {
	return NewEpisodeIn(key, base, time.Local)
}

// NewEpisodeIn builds the episode for key under base with its date in loc.
func NewEpisodeIn(key datekey.Key, base string, loc *time.Location) (Episode, error) {
	root, err := normalizeBase(base)
	if err != nil {
		return Episode{}, err
	}
	return newEpisode(key, root, loc), nil
}

// EpisodeFromID parses an M.D.YY identifier and builds its episode.
func EpisodeFromID(id, base string) (Episode, error) {
	key, err := datekey.Parse(id)
	if err != nil {
		return Episode{}, err
	}
	return NewEpisode(key, base)
}

func newEpisode(key datekey.Key, root string, loc *time.Location) Episode {
	id := key.String()
	date := key.Time(loc)
	prefix := root + "/" + id
	return Episode{
		ID:          id,
		Key:         key,
		Date:        date,
		DisplayDate: date.Format(displayDateLayout),
		SummaryURL:  prefix + SummarySuffix,
		PodcastURL:  prefix + PodcastSuffix,
	}
}

func normalizeBase(base string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidBaseURL)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidBaseURL, base)
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return "", fmt.Errorf("%w: %q must not carry a query or fragment", ErrInvalidBaseURL, base)
	}
	return trimmed, nil
}

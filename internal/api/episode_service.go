package api

import (
	"context"
	"strings"
	"time"

	"newzyx/internal/catalog"
	"newzyx/internal/content"
	"newzyx/internal/preflight"
	"newzyx/internal/render"
)

// LatestID is the episode id alias that resolves to the newest available
// episode.
const LatestID = "latest"

// Catalog abstracts the episode window queries needed by the API.
type Catalog interface {
	Snapshot() catalog.State
	Episodes() ([]catalog.Episode, error)
	Lookup(id string) (catalog.Episode, error)
	Latest(ctx context.Context) (catalog.Episode, bool, error)
}

// Content abstracts backing store access needed by the API.
type Content interface {
	FetchSummary(ctx context.Context, ep catalog.Episode) (content.FetchedContent, error)
	ProbeExists(ctx context.Context, locator string) bool
	CheckConnection(ctx context.Context, locator string) content.Diagnosis
}

// ServiceOptions configures an EpisodeService.
type ServiceOptions struct {
	BaseURL string
	// Location renders "Updated" labels. Defaults to time.Local.
	Location *time.Location
	Clock    func() time.Time
}

// EpisodeService exposes episode operations returning API DTOs.
type EpisodeService struct {
	catalog Catalog
	content Content
	opts    ServiceOptions
}

// NewEpisodeService constructs an EpisodeService.
func NewEpisodeService(cat Catalog, src Content, opts ServiceOptions) *EpisodeService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &EpisodeService{catalog: cat, content: src, opts: opts}
}

// List returns the current window, generating it on first use.
func (s *EpisodeService) List() (CatalogResponse, error) {
	if _, err := s.catalog.Episodes(); err != nil {
		return CatalogResponse{ErrorMessage: err.Error()}, err
	}
	return FromCatalogState(s.catalog.Snapshot()), nil
}

// Latest returns the newest available episode.
func (s *EpisodeService) Latest(ctx context.Context) (LatestResponse, error) {
	ep, confirmed, err := s.catalog.Latest(ctx)
	if err != nil {
		return LatestResponse{}, err
	}
	return LatestResponse{Episode: FromEpisode(ep), Confirmed: confirmed}, nil
}

// Resolve maps an id, or LatestID, to an episode.
func (s *EpisodeService) Resolve(ctx context.Context, id string) (catalog.Episode, error) {
	id = strings.TrimSpace(id)
	if strings.EqualFold(id, LatestID) {
		ep, _, err := s.catalog.Latest(ctx)
		return ep, err
	}
	return s.catalog.Lookup(id)
}

// Summary fetches an episode's summary. When the fetch fails the response
// still carries the failure text to display, and the fetch error is returned
// alongside it.
func (s *EpisodeService) Summary(ctx context.Context, id string) (SummaryResponse, error) {
	ep, err := s.Resolve(ctx, id)
	if err != nil {
		return SummaryResponse{}, err
	}
	resp := SummaryResponse{Episode: FromEpisode(ep)}
	fetched, err := s.content.FetchSummary(ctx, ep)
	if err != nil {
		resp.Text = render.SummaryFailure(err)
		resp.Error = err.Error()
		return resp, err
	}
	resp.Text = render.HTMLToText(fetched.Text)
	resp.Updated = render.UpdatedLabel(fetched.LastModified, s.opts.Location)
	if fetched.LastModified != nil {
		resp.LastModified = formatTime(*fetched.LastModified)
	}
	return resp, nil
}

// Exists probes both of an episode's resources.
func (s *EpisodeService) Exists(ctx context.Context, id string) (ExistsResponse, error) {
	ep, err := s.Resolve(ctx, id)
	if err != nil {
		return ExistsResponse{}, err
	}
	return ExistsResponse{
		Episode: FromEpisode(ep),
		Summary: s.content.ProbeExists(ctx, ep.SummaryURL),
		Podcast: s.content.ProbeExists(ctx, ep.PodcastURL),
	}, nil
}

// Diagnose checks the connection against today's summary.
func (s *EpisodeService) Diagnose(ctx context.Context) (DiagnosticResponse, error) {
	locator, err := preflight.TodayLocator(s.opts.BaseURL, s.opts.Clock())
	if err != nil {
		return DiagnosticResponse{URL: s.opts.BaseURL, Message: "❌ Invalid URL format"}, err
	}
	return FromDiagnosis(s.content.CheckConnection(ctx, locator)), nil
}

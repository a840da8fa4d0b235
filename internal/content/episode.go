package content

import (
	"context"

	"newzyx/internal/catalog"
	"newzyx/internal/services"
)

// FetchSummary fetches the episode's summary text with cache bypass.
func (r *Resolver) FetchSummary(ctx context.Context, ep catalog.Episode) (FetchedContent, error) {
	return r.FetchText(services.WithEpisodeKey(ctx, ep.ID), ep.SummaryURL, BypassCache)
}

// ProbeEpisode reports whether the episode's summary exists.
func (r *Resolver) ProbeEpisode(ctx context.Context, ep catalog.Episode) bool {
	return r.ProbeExists(services.WithEpisodeKey(ctx, ep.ID), ep.SummaryURL)
}

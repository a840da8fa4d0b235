package api

import (
	"time"

	"newzyx/internal/catalog"
	"newzyx/internal/content"
	"newzyx/internal/deps"
	"newzyx/internal/playback"
	"newzyx/internal/render"
)

// FromEpisode converts a catalog episode to its API representation.
func FromEpisode(ep catalog.Episode) EpisodeItem {
	item := EpisodeItem{
		ID:          ep.ID,
		DisplayDate: ep.DisplayDate,
		LongDate:    render.LongDisplayDate(ep.ID),
		MonthBadge:  render.MonthBadge(ep.ID),
		DayBadge:    render.DayBadge(ep.ID),
		SummaryURL:  ep.SummaryURL,
		PodcastURL:  ep.PodcastURL,
	}
	if !ep.Date.IsZero() {
		item.Date = ep.Date.Format(time.DateOnly)
	}
	if item.DisplayDate == "" {
		item.DisplayDate = render.DisplayDate(ep.ID)
	}
	return item
}

// FromEpisodes converts a list of episodes, preserving order.
func FromEpisodes(episodes []catalog.Episode) []EpisodeItem {
	out := make([]EpisodeItem, 0, len(episodes))
	for _, ep := range episodes {
		out = append(out, FromEpisode(ep))
	}
	return out
}

// FromCatalogState converts the catalog snapshot.
func FromCatalogState(state catalog.State) CatalogResponse {
	resp := CatalogResponse{
		Episodes:     FromEpisodes(state.Episodes),
		IsLoading:    state.IsLoading,
		ErrorMessage: state.ErrorMessage,
	}
	resp.GeneratedAt = formatTime(state.GeneratedAt)
	return resp
}

// FromDiagnosis converts a connection check result.
func FromDiagnosis(d content.Diagnosis) DiagnosticResponse {
	return DiagnosticResponse{
		URL:        d.URL,
		OK:         d.OK,
		StatusCode: d.StatusCode,
		Message:    d.Message,
	}
}

// FromPlaybackState converts a controller snapshot.
func FromPlaybackState(s playback.State) PlaybackState {
	out := PlaybackState{
		Status:          string(s.Status),
		IsPlaying:       s.IsPlaying,
		IsLoading:       s.IsLoading,
		PositionSeconds: s.Position,
		DurationSeconds: s.Duration,
		Progress:        render.Progress(s.Position, s.Duration),
		LastError:       s.LastError,
		Generation:      s.Generation,
	}
	if s.Episode != nil {
		item := FromEpisode(*s.Episode)
		out.Episode = &item
	}
	return out
}

// FromPlaybackEvents converts hub events, preserving order.
func FromPlaybackEvents(events []playback.Event) []PlaybackEvent {
	if len(events) == 0 {
		return nil
	}
	out := make([]PlaybackEvent, 0, len(events))
	for _, evt := range events {
		out = append(out, PlaybackEvent{
			Sequence:  evt.Sequence,
			Timestamp: formatTime(evt.Timestamp),
			State:     FromPlaybackState(evt.State),
		})
	}
	return out
}

// FromDependencyStatuses converts dependency checks.
func FromDependencyStatuses(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, 0, len(statuses))
	for _, dep := range statuses {
		out = append(out, DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		})
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

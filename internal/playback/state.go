package playback

import (
	"fmt"

	"newzyx/internal/catalog"
)

// Status names a controller state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusPaused  Status = "paused"
	StatusPlaying Status = "playing"
	StatusError   Status = "error"
)

// State is the published session snapshot. Each Load replaces it wholesale.
type State struct {
	Episode   *catalog.Episode `json:"episode,omitempty"`
	Status    Status           `json:"status"`
	IsPlaying bool             `json:"is_playing"`
	Position  float64          `json:"position_seconds"`
	Duration  float64          `json:"duration_seconds"`
	IsLoading bool             `json:"is_loading"`
	LastError string           `json:"last_error,omitempty"`
	// Generation increments on every Load.
	Generation uint64 `json:"generation"`
}

// Ready reports whether the session accepts play, pause and seek.
func (s State) Ready() bool {
	return s.Status == StatusPaused || s.Status == StatusPlaying
}

func (s State) clone() State {
	if s.Episode != nil {
		ep := *s.Episode
		s.Episode = &ep
	}
	return s
}

// LoadError reports a failure to open an episode's audio or resolve its length.
type LoadError struct {
	EpisodeID string
	Err       error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return "Failed to load audio"
	}
	return fmt.Sprintf("Failed to load audio: %s", e.Err.Error())
}

func (e *LoadError) Unwrap() error { return e.Err }

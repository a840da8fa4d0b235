package catalog

import (
	"fmt"
	"time"

	"newzyx/internal/datekey"
)

// Generate returns windowDays episodes for today, today-1, ... in that order.
// Dates are taken from today's calendar in today's location.
func Generate(windowDays int, base string, today time.Time) ([]Episode, error) {
	if windowDays < 1 {
		return nil, fmt.Errorf("catalog window must be at least 1 day, got %d", windowDays)
	}
	root, err := normalizeBase(base)
	if err != nil {
		return nil, err
	}
	loc := today.Location()
	first := datekey.FromTime(today)
	episodes := make([]Episode, 0, windowDays)
	for offset := 0; offset < windowDays; offset++ {
		episodes = append(episodes, newEpisode(first.AddDays(-offset), root, loc))
	}
	return episodes, nil
}

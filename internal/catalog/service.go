package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"newzyx/internal/datekey"
	"newzyx/internal/logging"
	"newzyx/internal/services"
)

// ErrEmptyCatalog is returned when no episodes have been generated.
var ErrEmptyCatalog = errors.New("catalog is empty")

// Prober checks whether a locator exists without downloading it.
type Prober interface {
	ProbeExists(ctx context.Context, locator string) bool
}

// Options configures a Service.
type Options struct {
	BaseURL     string
	WindowDays  int
	ProbeLimit  int
	Concurrency int
	Clock       func() time.Time
	Logger      *slog.Logger
}

// State is the published catalog snapshot.
type State struct {
	Episodes     []Episode `json:"episodes"`
	IsLoading    bool      `json:"is_loading"`
	ErrorMessage string    `json:"error_message,omitempty"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Service owns the current episode window.
type Service struct {
	opts   Options
	prober Prober
	logger *slog.Logger

	mu    sync.RWMutex
	state State
}

// NewService constructs a catalog service. The window is generated lazily on
// the first Refresh or Latest call.
func NewService(opts Options, prober Prober) *Service {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Service{
		opts:   opts,
		prober: prober,
		logger: logging.NewComponentLogger(opts.Logger, "catalog"),
	}
}

// Refresh regenerates the window ending at today.
func (s *Service) Refresh(today time.Time) error {
	episodes, err := Generate(s.opts.WindowDays, s.opts.BaseURL, today)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state.ErrorMessage = err.Error()
		logging.WarnWithContext(s.logger, "catalog generation failed", "catalog_generate_failed",
			logging.Error(err),
			logging.Hint("check source.base_url and source.window_days"),
			logging.Impact("episode list unavailable"),
		)
		return err
	}
	s.state.Episodes = episodes
	s.state.ErrorMessage = ""
	s.state.GeneratedAt = s.opts.Clock()
	s.logger.Debug("catalog generated",
		logging.Int("episodes", len(episodes)),
		logging.String("newest", episodes[0].ID),
	)
	return nil
}

// Snapshot returns a copy of the published state.
func (s *Service) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.state
	out.Episodes = append([]Episode(nil), s.state.Episodes...)
	return out
}

// Episodes returns the current window, generating it on first use.
func (s *Service) Episodes() ([]Episode, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	return s.Snapshot().Episodes, nil
}

// Lookup resolves an M.D.YY id to an episode. Ids outside the current window
// are still addressable.
func (s *Service) Lookup(id string) (Episode, error) {
	key, err := datekey.Parse(id)
	if err != nil {
		return Episode{}, err
	}
	s.mu.RLock()
	for _, ep := range s.state.Episodes {
		if ep.Key.Equal(key) {
			s.mu.RUnlock()
			return ep, nil
		}
	}
	s.mu.RUnlock()
	return NewEpisodeIn(key, s.opts.BaseURL, s.opts.Clock().Location())
}

// Latest returns the newest episode whose summary exists. found is false
// when the scan confirmed nothing and the newest entry is a best guess.
func (s *Service) Latest(ctx context.Context) (Episode, bool, error) {
	if err := s.ensure(); err != nil {
		return Episode{}, false, err
	}
	episodes := s.Snapshot().Episodes
	if len(episodes) == 0 {
		return Episode{}, false, ErrEmptyCatalog
	}

	s.setLoading(true)
	defer s.setLoading(false)

	var probe Probe
	if s.prober != nil {
		probe = func(ctx context.Context, ep Episode) bool {
			ok := s.prober.ProbeExists(services.WithEpisodeKey(ctx, ep.ID), ep.SummaryURL)
			logging.WithContext(services.WithEpisodeKey(ctx, ep.ID), s.logger).Debug("probed episode",
				logging.Bool("exists", ok),
			)
			return ok
		}
	}
	ep, found := Scan(ctx, episodes, probe, ScanOptions{
		Limit:       s.opts.ProbeLimit,
		Concurrency: s.opts.Concurrency,
	})
	if !found {
		s.logger.Info("no episode confirmed, using newest",
			logging.Episode(ep.ID),
			logging.Int("probed", min(s.opts.ProbeLimit, len(episodes))),
		)
	}
	return ep, found, ctx.Err()
}

func (s *Service) ensure() error {
	s.mu.RLock()
	ready := len(s.state.Episodes) > 0
	s.mu.RUnlock()
	if ready {
		return nil
	}
	return s.Refresh(s.opts.Clock())
}

func (s *Service) setLoading(loading bool) {
	s.mu.Lock()
	s.state.IsLoading = loading
	s.mu.Unlock()
}

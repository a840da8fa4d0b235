package player

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"newzyx/internal/logging"
	"newzyx/internal/media/ffprobe"
	"newzyx/internal/playback"
)

// Options configures a Player.
type Options struct {
	FFplayBinary  string
	FFprobeBinary string
	Logger        *slog.Logger
	// Clock is used for playhead estimates. Nil means time.Now.
	Clock func() time.Time
}

// Player opens ffplay-backed handles. It satisfies playback.Opener.
type Player struct {
	ffplay  string
	ffprobe string
	logger  *slog.Logger
	now     func() time.Time
}

// New constructs a Player.
func New(opts Options) *Player {
	ffplay := strings.TrimSpace(opts.FFplayBinary)
	if ffplay == "" {
		ffplay = "ffplay"
	}
	probe := strings.TrimSpace(opts.FFprobeBinary)
	if probe == "" {
		probe = "ffprobe"
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Player{
		ffplay:  ffplay,
		ffprobe: probe,
		logger:  logging.NewComponentLogger(opts.Logger, "player"),
		now:     clock,
	}
}

// Open returns a stopped handle for url. No process starts until Start.
func (p *Player) Open(ctx context.Context, url string) (playback.Handle, error) {
	logging.WithContext(ctx, p.logger).Debug("opened audio handle", logging.String("url", url))
	return newHandle(p, url), nil
}

func (p *Player) probeDuration(ctx context.Context, url string) (float64, error) {
	return ffprobe.Duration(ctx, p.ffprobe, url)
}

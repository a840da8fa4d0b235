package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"newzyx/internal/catalog"
	"newzyx/internal/logging"
	"newzyx/internal/services"
)

// DefaultPositionInterval is how often the playhead is sampled while playing.
const DefaultPositionInterval = 500 * time.Millisecond

// ErrNoOpener is reported when a controller has no way to open media.
var ErrNoOpener = errors.New("no media opener configured")

// Options configures a Controller.
type Options struct {
	Opener           Opener
	PositionInterval time.Duration
	// BustURL appends a cache-busting token to the audio URL. Nil uses a
	// time-derived t= parameter.
	BustURL          func(string) (string, error)
	Hub              *Hub
	Logger           *slog.Logger
}

// Controller owns one playback session.
type Controller struct {
	opener   Opener
	interval time.Duration
	bust     func(string) (string, error)
	hub      *Hub
	logger   *slog.Logger

	baseCtx    context.Context
	cancelBase context.CancelFunc

	mu         sync.Mutex
	state      State
	lastErr    error
	handle     Handle
	observers  []func()
	generation uint64
	cancelLoad context.CancelFunc
	closed     bool

	// notifyMu is taken before mu is released so deliveries keep commit order.
	notifyMu sync.Mutex
	subs     map[int]func(State)
	nextSub  int
}

// NewController constructs an idle controller.
func NewController(opts Options) *Controller {
	interval := opts.PositionInterval
	if interval <= 0 {
		interval = DefaultPositionInterval
	}
	bust := opts.BustURL
	if bust == nil {
		bust = defaultBuster()
	}
	hub := opts.Hub
	if hub == nil {
		hub = NewHub(0)
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		opener:     opts.Opener,
		interval:   interval,
		bust:       bust,
		hub:        hub,
		logger:     logging.NewComponentLogger(opts.Logger, "playback"),
		baseCtx:    ctx,
		cancelBase: cancel,
		state:      State{Status: StatusIdle},
		subs:       make(map[int]func(State)),
	}
	hub.Publish(c.state)
	return c
}

// Hub returns the event buffer the controller publishes to.
func (c *Controller) Hub() *Hub {
	return c.hub
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Err returns the error behind the current LastError, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Subscribe registers fn for every published state. Callbacks run on the
// publishing goroutine in commit order and must not call back into the
// controller synchronously.
func (c *Controller) Subscribe(fn func(State)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	c.notifyMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.notifyMu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			c.notifyMu.Lock()
			delete(c.subs, id)
			c.notifyMu.Unlock()
		})
	}
}

// Load replaces the session with one for ep. It returns once the Loading
// state is published; the media opens and its duration resolves in the
// background.
func (c *Controller) Load(ep catalog.Episode) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.teardownLocked()
	c.generation++
	gen := c.generation
	ctx, cancel := context.WithCancel(services.WithEpisodeKey(c.baseCtx, ep.ID))
	c.cancelLoad = cancel
	episode := ep
	c.state = State{
		Episode:    &episode,
		Status:     StatusLoading,
		IsLoading:  true,
		Generation: gen,
	}
	c.lastErr = nil
	logging.WithContext(ctx, c.logger).Info("loading episode audio",
		logging.String("url", ep.PodcastURL),
		logging.Int64("generation", int64(gen)),
	)
	c.unlockAndPublish()

	go c.resolve(ctx, gen, ep)
}

func (c *Controller) resolve(ctx context.Context, gen uint64, ep catalog.Episode) {
	if c.opener == nil {
		c.fail(ctx, gen, ep, ErrNoOpener)
		return
	}
	mediaURL, err := c.bust(ep.PodcastURL)
	if err != nil {
		c.fail(ctx, gen, ep, err)
		return
	}
	handle, err := c.opener.Open(ctx, mediaURL)
	if err != nil {
		c.fail(ctx, gen, ep, err)
		return
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		handle.Release()
		return
	}
	c.handle = handle
	c.observers = append(c.observers,
		handle.ObservePosition(c.interval, func(seconds float64) { c.onPosition(gen, seconds) }),
		handle.ObserveCompletion(func() { c.onComplete(gen) }),
	)
	if fo, ok := handle.(FailureObserver); ok {
		c.observers = append(c.observers, fo.ObserveFailure(func(err error) { c.onFailure(gen, err) }))
	}
	c.mu.Unlock()

	duration, err := handle.Duration(ctx)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		c.fail(ctx, gen, ep, err)
		return
	}
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration < 0 {
		duration = 0
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.state.Status = StatusPaused
	c.state.IsLoading = false
	c.state.IsPlaying = false
	c.state.Position = 0
	c.state.Duration = duration
	logging.WithContext(ctx, c.logger).Info("episode audio ready",
		logging.Float64("duration_seconds", duration),
	)
	c.unlockAndPublish()
}

func (c *Controller) fail(ctx context.Context, gen uint64, ep catalog.Episode, cause error) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	loadErr := &LoadError{EpisodeID: ep.ID, Err: cause}
	c.teardownLocked()
	c.lastErr = loadErr
	c.state.Status = StatusError
	c.state.IsLoading = false
	c.state.IsPlaying = false
	c.state.LastError = loadErr.Error()
	logging.WarnWithContext(logging.WithContext(ctx, c.logger), "episode audio failed to load", "playback_load_failed",
		logging.Error(cause),
		logging.Hint("check that the podcast file exists and ffprobe is installed"),
		logging.Impact("episode cannot be played"),
	)
	c.unlockAndPublish()
}

// Play starts playback. It does nothing without a ready session or when
// already playing.
func (c *Controller) Play() {
	c.mu.Lock()
	if c.handle == nil || !c.state.Ready() || c.state.IsPlaying {
		c.mu.Unlock()
		return
	}
	if err := c.handle.Start(); err != nil {
		c.lastErr = err
		c.state.LastError = fmt.Sprintf("Playback failed: %s", err.Error())
		logging.WarnWithContext(c.logger, "playback start failed", "playback_start_failed",
			logging.Error(err),
			logging.Impact("episode remains paused"),
		)
		c.unlockAndPublish()
		return
	}
	c.state.IsPlaying = true
	c.state.Status = StatusPlaying
	c.state.LastError = ""
	c.lastErr = nil
	c.unlockAndPublish()
}

// Pause stops playback, keeping the position. It does nothing unless playing.
func (c *Controller) Pause() {
	c.mu.Lock()
	if c.handle == nil || !c.state.IsPlaying {
		c.mu.Unlock()
		return
	}
	if err := c.handle.Stop(); err != nil {
		c.logger.Debug("playback stop failed", logging.Error(err))
	}
	c.state.IsPlaying = false
	c.state.Status = StatusPaused
	c.unlockAndPublish()
}

// TogglePlayPause pauses when playing and plays otherwise.
func (c *Controller) TogglePlayPause() {
	c.mu.Lock()
	playing := c.state.IsPlaying
	c.mu.Unlock()
	if playing {
		c.Pause()
		return
	}
	c.Play()
}

// Seek moves the playhead, clamped to [0, Duration]. The upper bound applies
// only once the duration is known. Position updates immediately whether or
// not playback is running.
func (c *Controller) Seek(seconds float64) {
	c.mu.Lock()
	if c.handle == nil || !c.state.Ready() {
		c.mu.Unlock()
		return
	}
	target := clampPosition(seconds, c.state.Duration)
	if err := c.handle.Seek(target); err != nil {
		c.logger.Debug("seek failed", logging.Float64("target", target), logging.Error(err))
	}
	c.state.Position = target
	c.unlockAndPublish()
}

func clampPosition(seconds, duration float64) float64 {
	if math.IsNaN(seconds) || seconds < 0 {
		return 0
	}
	if duration > 0 && seconds > duration {
		return duration
	}
	return seconds
}

func (c *Controller) onPosition(gen uint64, seconds float64) {
	c.mu.Lock()
	if gen != c.generation || !c.state.IsPlaying {
		c.mu.Unlock()
		return
	}
	c.state.Position = clampPosition(seconds, c.state.Duration)
	c.unlockAndPublish()
}

func (c *Controller) onComplete(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.handle == nil {
		c.mu.Unlock()
		return
	}
	if err := c.handle.Seek(0); err != nil {
		c.logger.Debug("rewind after completion failed", logging.Error(err))
	}
	c.state.IsPlaying = false
	c.state.Status = StatusPaused
	c.state.Position = 0
	c.logger.Info("episode finished", logging.Episode(episodeID(c.state)))
	c.unlockAndPublish()
}

// onFailure stops a session whose media broke mid-play. The position is kept
// so Play resumes where the failure happened.
func (c *Controller) onFailure(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.generation || c.handle == nil {
		c.mu.Unlock()
		return
	}
	c.lastErr = err
	c.state.IsPlaying = false
	c.state.Status = StatusPaused
	c.state.LastError = fmt.Sprintf("Playback failed: %s", err.Error())
	logging.WarnWithContext(c.logger, "playback stopped unexpectedly", "playback_interrupted",
		logging.Episode(episodeID(c.state)),
		logging.Float64("position_seconds", c.state.Position),
		logging.Error(err),
		logging.Impact("episode paused before the end"),
	)
	c.unlockAndPublish()
}

// Close releases the handle and observers and returns to Idle. Later calls
// are no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.generation++
	c.teardownLocked()
	c.cancelBase()
	c.state = State{Status: StatusIdle, Generation: c.generation}
	c.lastErr = nil
	c.unlockAndPublish()
}

// teardownLocked drops the current handle. Callers hold c.mu.
func (c *Controller) teardownLocked() {
	for _, cancel := range c.observers {
		if cancel != nil {
			cancel()
		}
	}
	c.observers = nil
	if c.handle != nil {
		c.handle.Release()
		c.handle = nil
	}
	if c.cancelLoad != nil {
		c.cancelLoad()
		c.cancelLoad = nil
	}
}

// unlockAndPublish publishes the state and releases c.mu. It must be called
// with c.mu held.
func (c *Controller) unlockAndPublish() {
	snapshot := c.state.clone()
	c.hub.Publish(snapshot)
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	if len(c.subs) == 0 {
		return
	}
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		c.subs[id](snapshot)
	}
}

func episodeID(s State) string {
	if s.Episode == nil {
		return ""
	}
	return s.Episode.ID
}

func defaultBuster() func(string) (string, error) {
	var seq atomic.Uint64
	return func(raw string) (string, error) {
		parsed, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("parse audio url %q: %w", raw, err)
		}
		if parsed.Scheme == "" {
			return "", fmt.Errorf("audio url %q is not absolute", raw)
		}
		query := parsed.Query()
		query.Set("t", strconv.FormatInt(time.Now().UnixNano(), 10)+"."+strconv.FormatUint(seq.Add(1), 10))
		parsed.RawQuery = query.Encode()
		return parsed.String(), nil
	}
}

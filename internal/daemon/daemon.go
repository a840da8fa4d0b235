package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"newzyx/internal/api"
	"newzyx/internal/catalog"
	"newzyx/internal/config"
	"newzyx/internal/deps"
	"newzyx/internal/logging"
	"newzyx/internal/playback"
)

// ErrAlreadyRunning is returned when another process holds the lock.
var ErrAlreadyRunning = errors.New("another newzyx server instance is already running")

// Playback is the controller surface the API drives.
type Playback interface {
	Snapshot() playback.State
	Hub() *playback.Hub
	Load(ep catalog.Episode)
	Play()
	Pause()
	TogglePlayPause()
	Seek(seconds float64)
}

// Refresher regenerates the catalog window.
type Refresher interface {
	Refresh(today time.Time) error
}

// Services bundles the components the daemon serves.
type Services struct {
	Catalog  api.Catalog
	Content  api.Content
	Playback Playback
	Clock    func() time.Time
}

// Daemon owns the API server lifecycle and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	catalog  api.Catalog
	content  api.Content
	playback Playback
	now      func() time.Time

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	mu        sync.Mutex
	running   atomic.Bool
	startedAt time.Time
	cancel    context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	StartedAt    time.Time
	LockFilePath string
	LogPath      string
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, svc Services, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || svc.Catalog == nil || svc.Content == nil || svc.Playback == nil {
		return nil, errors.New("daemon requires config, catalog, content, and playback")
	}
	if svc.Clock == nil {
		svc.Clock = time.Now
	}
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		catalog:  svc.Catalog,
		content:  svc.Content,
		playback: svc.Playback,
		now:      svc.Clock,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the lock and begins serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if d.cfg.API.Bind == "" {
		return errors.New("api.bind is empty; nothing to serve")
	}

	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx, d.cfg.API.Bind); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel
	d.startedAt = d.now()
	d.running.Store(true)
	d.logger.Info("newzyx server started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.addr()),
	)
	return nil
}

// Stop shuts the API down and releases the lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release server lock", "lock_release_failed",
			logging.Error(err),
			logging.Hint("remove "+d.lockPath+" if no server is running"),
		)
	}
	d.running.Store(false)
	d.logger.Info("newzyx server stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Addr returns the bound listener address while running.
func (d *Daemon) Addr() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.api.addr()
}

// Refresh regenerates the catalog window when the catalog supports it.
func (d *Daemon) Refresh() error {
	if r, ok := d.catalog.(Refresher); ok {
		return r.Refresh(d.now())
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(context.Context) Status {
	d.mu.Lock()
	startedAt := d.startedAt
	d.mu.Unlock()
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		StartedAt:    startedAt,
		LockFilePath: d.lockPath,
		LogPath:      d.cfg.LogPath(),
		Dependencies: deps.CheckBinaries(deps.PlayerRequirements(d.cfg.Player.FFplayBinary, d.cfg.Player.FFprobeBinary)),
	}
}

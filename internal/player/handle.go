package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"newzyx/internal/logging"
)

// ErrReleased is returned by operations on a released handle.
var ErrReleased = errors.New("player: handle released")

type handle struct {
	player *Player
	url    string

	mu        sync.Mutex
	cmd       *exec.Cmd
	running   bool
	offset    float64
	startedAt time.Time
	duration  float64
	// proc increments on every launch and every deliberate stop so the wait
	// goroutine can tell a natural exit from one we caused.
	proc     uint64
	released bool

	nextObs    int
	positions  map[int]chan struct{}
	completion map[int]func()
	failure    map[int]func(error)
}

func newHandle(p *Player, url string) *handle {
	return &handle{
		player:     p,
		url:        url,
		positions:  make(map[int]chan struct{}),
		completion: make(map[int]func()),
		failure:    make(map[int]func(error)),
	}
}

func (h *handle) Duration(ctx context.Context) (float64, error) {
	seconds, err := h.player.probeDuration(ctx, h.url)
	if err != nil {
		return 0, err
	}
	h.mu.Lock()
	h.duration = seconds
	h.mu.Unlock()
	return seconds, nil
}

func (h *handle) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return ErrReleased
	}
	if h.running {
		return nil
	}
	return h.launchLocked()
}

func (h *handle) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return nil
	}
	h.offset = h.positionLocked()
	h.haltLocked()
	return nil
}

func (h *handle) Seek(seconds float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return ErrReleased
	}
	if seconds < 0 {
		seconds = 0
	}
	if !h.running {
		h.offset = seconds
		return nil
	}
	h.haltLocked()
	h.offset = seconds
	return h.launchLocked()
}

func (h *handle) ObservePosition(interval time.Duration, fn func(seconds float64)) func() {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	stop := make(chan struct{})
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return func() {}
	}
	id := h.nextObs
	h.nextObs++
	h.positions[id] = stop
	h.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				h.mu.Lock()
				running := h.running
				pos := h.positionLocked()
				h.mu.Unlock()
				if running {
					fn(pos)
				}
			}
		}
	}()

	return func() {
		h.mu.Lock()
		if ch, ok := h.positions[id]; ok {
			delete(h.positions, id)
			close(ch)
		}
		h.mu.Unlock()
	}
}

func (h *handle) ObserveCompletion(fn func()) func() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return func() {}
	}
	id := h.nextObs
	h.nextObs++
	h.completion[id] = fn
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		delete(h.completion, id)
		h.mu.Unlock()
	}
}

// ObserveFailure reports ffplay exiting with an error. Without a failure
// observer such exits are reported as completion.
func (h *handle) ObserveFailure(fn func(err error)) func() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return func() {}
	}
	id := h.nextObs
	h.nextObs++
	h.failure[id] = fn
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		delete(h.failure, id)
		h.mu.Unlock()
	}
}

func (h *handle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return
	}
	h.released = true
	if h.running {
		h.haltLocked()
	}
	for id, ch := range h.positions {
		close(ch)
		delete(h.positions, id)
	}
	clear(h.completion)
	clear(h.failure)
}

func (h *handle) args() []string {
	args := []string{"-nodisp", "-autoexit", "-hide_banner", "-loglevel", "error"}
	if h.offset > 0 {
		args = append(args, "-ss", strconv.FormatFloat(h.offset, 'f', 3, 64))
	}
	return append(args, h.url)
}

func (h *handle) launchLocked() error {
	cmd := exec.Command(h.player.ffplay, h.args()...)
	if err := cmd.Start(); err != nil {
		return err
	}
	h.proc++
	h.cmd = cmd
	h.running = true
	h.startedAt = h.player.now()
	go h.wait(cmd, h.proc)
	return nil
}

// haltLocked signals the running process without waiting for it to exit.
func (h *handle) haltLocked() {
	h.proc++
	h.running = false
	if h.cmd != nil && h.cmd.Process != nil {
		if err := h.cmd.Process.Signal(os.Interrupt); err != nil {
			_ = h.cmd.Process.Kill()
		}
	}
	h.cmd = nil
}

func (h *handle) wait(cmd *exec.Cmd, proc uint64) {
	err := cmd.Wait()

	h.mu.Lock()
	if proc != h.proc || h.released {
		h.mu.Unlock()
		return
	}
	if err != nil && len(h.failure) > 0 {
		h.offset = h.positionLocked()
		h.running = false
		h.cmd = nil
		callbacks := make([]func(error), 0, len(h.failure))
		for _, fn := range h.failure {
			callbacks = append(callbacks, fn)
		}
		h.mu.Unlock()

		logging.WarnWithContext(h.player.logger, "ffplay exited with error", "player_exit_error",
			logging.String("url", h.url),
			logging.Error(err),
			logging.Hint("run ffplay manually against the url to see its output"),
			logging.Impact("playback stopped early"),
		)
		exitErr := fmt.Errorf("ffplay exited: %w", err)
		for _, fn := range callbacks {
			fn(exitErr)
		}
		return
	}
	h.running = false
	h.cmd = nil
	h.offset = 0
	callbacks := make([]func(), 0, len(h.completion))
	for _, fn := range h.completion {
		callbacks = append(callbacks, fn)
	}
	h.mu.Unlock()

	if err != nil {
		h.player.logger.Debug("ffplay exited with error and no failure observer", logging.Error(err))
	}
	for _, fn := range callbacks {
		fn()
	}
}

func (h *handle) positionLocked() float64 {
	pos := h.offset
	if h.running {
		pos += h.player.now().Sub(h.startedAt).Seconds()
	}
	if h.duration > 0 && pos > h.duration {
		pos = h.duration
	}
	return pos
}

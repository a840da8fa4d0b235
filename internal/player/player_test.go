package player

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"newzyx/internal/playback"
	"newzyx/internal/testsupport"
)

const testURL = "https://store.test/bucket/3.9.25_podcast.mp3?t=1"

var _ playback.Opener = (*Player)(nil)

type stubEnv struct {
	dir      string
	argsFile string
	player   *Player
}

// newStubEnv writes ffprobe and ffplay scripts. ffplay records its arguments
// and then runs playBody.
func newStubEnv(t *testing.T, playBody string) stubEnv {
	t.Helper()
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "ffplay.args")
	probe := testsupport.WriteScript(t, filepath.Join(dir, "ffprobe"),
		`echo '{"streams":[{"codec_type":"audio","duration":"42.5"}],"format":{"duration":"42.5"}}'`+"\n")
	play := testsupport.WriteScript(t, filepath.Join(dir, "ffplay"),
		`echo "$@" >> `+argsFile+"\n"+playBody)
	return stubEnv{
		dir:      dir,
		argsFile: argsFile,
		player:   New(Options{FFplayBinary: play, FFprobeBinary: probe}),
	}
}

func (e stubEnv) invocations(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(e.argsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read args: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func (e stubEnv) waitInvocations(t *testing.T, n int) []string {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		lines := e.invocations(t)
		if len(lines) >= n {
			return lines
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected %d ffplay invocations, got %v", n, lines)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func openHandle(t *testing.T, env stubEnv) playback.Handle {
	t.Helper()
	h, err := env.player.Open(context.Background(), testURL)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(h.Release)
	return h
}

func TestDurationUsesFFprobe(t *testing.T) {
	env := newStubEnv(t, "exit 0\n")
	h := openHandle(t, env)
	got, err := h.Duration(context.Background())
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if got != 42.5 {
		t.Fatalf("duration = %v", got)
	}
}

func TestDurationFailure(t *testing.T) {
	dir := t.TempDir()
	probe := testsupport.WriteScript(t, filepath.Join(dir, "ffprobe"), "echo 'HTTP error 404 Not Found' >&2\nexit 1\n")
	p := New(Options{FFprobeBinary: probe})
	h, _ := p.Open(context.Background(), testURL)
	defer h.Release()
	if _, err := h.Duration(context.Background()); err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected ffprobe failure, got %v", err)
	}
}

func TestNaturalExitReportsCompletion(t *testing.T) {
	env := newStubEnv(t, "exit 0\n")
	h := openHandle(t, env)
	done := make(chan struct{}, 1)
	h.ObserveCompletion(func() { done <- struct{}{} })

	if err := h.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("completion not reported")
	}
	args := env.waitInvocations(t, 1)[0]
	for _, want := range []string{"-nodisp", "-autoexit", testURL} {
		if !strings.Contains(args, want) {
			t.Fatalf("ffplay args %q missing %q", args, want)
		}
	}
	if strings.Contains(args, "-ss") {
		t.Fatalf("unexpected seek offset in %q", args)
	}
}

func TestErrorExitReportsFailure(t *testing.T) {
	env := newStubEnv(t, "echo 'connection reset' >&2\nexit 1\n")
	h := openHandle(t, env)
	completed := make(chan struct{}, 1)
	failed := make(chan error, 1)
	h.ObserveCompletion(func() { completed <- struct{}{} })
	h.(playback.FailureObserver).ObserveFailure(func(err error) { failed <- err })

	if err := h.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case err := <-failed:
		if err == nil || !strings.Contains(err.Error(), "ffplay exited") {
			t.Fatalf("unexpected failure error: %v", err)
		}
	case <-completed:
		t.Fatal("error exit reported as completion")
	case <-time.After(3 * time.Second):
		t.Fatal("failure not reported")
	}
}

func TestErrorExitWithoutFailureObserverCompletes(t *testing.T) {
	env := newStubEnv(t, "exit 1\n")
	h := openHandle(t, env)
	done := make(chan struct{}, 1)
	h.ObserveCompletion(func() { done <- struct{}{} })

	if err := h.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("completion not reported")
	}
}

func TestStopDoesNotReportCompletion(t *testing.T) {
	env := newStubEnv(t, "exec sleep 5\n")
	h := openHandle(t, env)
	done := make(chan struct{}, 1)
	h.ObserveCompletion(func() { done <- struct{}{} })

	if err := h.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	env.waitInvocations(t, 1)
	if err := h.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case <-done:
		t.Fatal("deliberate stop reported as completion")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestSeekBeforeStartPassesOffset(t *testing.T) {
	env := newStubEnv(t, "exec sleep 5\n")
	h := openHandle(t, env)
	if err := h.Seek(12); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if err := h.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	args := env.waitInvocations(t, 1)[0]
	if !strings.Contains(args, "-ss 12.000") {
		t.Fatalf("expected offset in %q", args)
	}
}

func TestSeekWhilePlayingRestarts(t *testing.T) {
	env := newStubEnv(t, "exec sleep 5\n")
	h := openHandle(t, env)
	if err := h.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	env.waitInvocations(t, 1)
	if err := h.Seek(30); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	lines := env.waitInvocations(t, 2)
	if !strings.Contains(lines[1], "-ss 30.000") {
		t.Fatalf("restart args %q", lines[1])
	}
}

func TestPositionObserverReportsWhilePlaying(t *testing.T) {
	env := newStubEnv(t, "exec sleep 5\n")
	h := openHandle(t, env)
	positions := make(chan float64, 16)
	cancel := h.ObservePosition(10*time.Millisecond, func(pos float64) {
		select {
		case positions <- pos:
		default:
		}
	})
	defer cancel()

	select {
	case pos := <-positions:
		t.Fatalf("position %v reported before start", pos)
	case <-time.After(50 * time.Millisecond):
	}
	if err := h.Seek(5); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if err := h.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case pos := <-positions:
		if pos < 5 {
			t.Fatalf("position %v below start offset", pos)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no position reported while playing")
	}
}

func TestReleaseStopsEverything(t *testing.T) {
	env := newStubEnv(t, "exec sleep 5\n")
	h, _ := env.player.Open(context.Background(), testURL)
	h.ObservePosition(10*time.Millisecond, func(float64) {})
	h.ObserveCompletion(func() {})
	h.(playback.FailureObserver).ObserveFailure(func(error) {})
	if err := h.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	h.Release()
	h.Release()
	if err := h.Start(); !errors.Is(err, ErrReleased) {
		t.Fatalf("Start after release = %v", err)
	}
	impl := h.(*handle)
	impl.mu.Lock()
	defer impl.mu.Unlock()
	if impl.running || len(impl.positions) != 0 || len(impl.completion) != 0 || len(impl.failure) != 0 {
		t.Fatalf("release left state behind: running=%v positions=%d completion=%d failure=%d",
			impl.running, len(impl.positions), len(impl.completion), len(impl.failure))
	}
}

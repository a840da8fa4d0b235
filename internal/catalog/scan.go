package catalog

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// Probe reports whether an episode's resource exists. It must not fail; any
// problem is reported as false.
type Probe func(ctx context.Context, episode Episode) bool

// ScanOptions bounds a first-available scan.
type ScanOptions struct {
	// Limit caps how many leading entries are probed. Zero or negative means
	// the whole catalog.
	Limit int
	// Concurrency caps probes in flight. Values below 2 scan sequentially.
	Concurrency int
}

// FindFirstAvailable probes at most limit leading entries one at a time and
// returns the first confirmed episode. When none is confirmed it returns
// episodes[0] with found=false. An empty catalog yields the zero Episode.
func FindFirstAvailable(ctx context.Context, episodes []Episode, probe Probe, limit int) (Episode, bool) {
	return Scan(ctx, episodes, probe, ScanOptions{Limit: limit})
}

// Scan is FindFirstAvailable with optional bounded concurrency. The result is
// always the earliest confirmed entry in catalog order.
func Scan(ctx context.Context, episodes []Episode, probe Probe, opts ScanOptions) (Episode, bool) {
	if len(episodes) == 0 {
		return Episode{}, false
	}
	candidates := episodes
	if opts.Limit > 0 && opts.Limit < len(candidates) {
		candidates = candidates[:opts.Limit]
	}
	if probe == nil {
		return episodes[0], false
	}

	var idx int
	if opts.Concurrency > 1 {
		idx = scanConcurrent(ctx, candidates, probe, opts.Concurrency)
	} else {
		idx = scanSequential(ctx, candidates, probe)
	}
	if idx < 0 {
		return episodes[0], false
	}
	return candidates[idx], true
}

func scanSequential(ctx context.Context, candidates []Episode, probe Probe) int {
	for i, ep := range candidates {
		if ctx.Err() != nil {
			return -1
		}
		if probe(ctx, ep) {
			return i
		}
	}
	return -1
}

// scanConcurrent skips candidates that start after an earlier entry has
// already been confirmed, but lets earlier in-flight probes finish so a
// lower index can still win.
func scanConcurrent(ctx context.Context, candidates []Episode, probe Probe, limit int) int {
	var (
		mu   sync.Mutex
		best = -1
	)
	earlierConfirmed := func(i int) bool {
		mu.Lock()
		defer mu.Unlock()
		return best >= 0 && best < i
	}

	p := pool.New().WithMaxGoroutines(limit)
	for i := range candidates {
		i := i
		ep := candidates[i]
		p.Go(func() {
			if ctx.Err() != nil || earlierConfirmed(i) {
				return
			}
			if !probe(ctx, ep) {
				return
			}
			mu.Lock()
			if best < 0 || i < best {
				best = i
			}
			mu.Unlock()
		})
	}
	p.Wait()
	return best
}

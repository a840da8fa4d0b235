package preflight

import (
	"context"
	"fmt"
	"time"

	"newzyx/internal/catalog"
	"newzyx/internal/config"
	"newzyx/internal/content"
	"newzyx/internal/datekey"
	"newzyx/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Detail   string `json:"detail"`
	Optional bool   `json:"optional,omitempty"`
}

// StoreChecker performs the backing store connection test.
type StoreChecker interface {
	CheckConnection(ctx context.Context, locator string) content.Diagnosis
}

// RunAll executes every check for cfg. A nil checker skips the store check.
func RunAll(ctx context.Context, cfg *config.Config, checker StoreChecker, now time.Time) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if cfg.Paths.StateDir != "" {
		results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	for _, status := range CheckSystemDeps(cfg) {
		results = append(results, fromStatus(status))
	}
	if checker != nil {
		results = append(results, CheckStore(ctx, checker, cfg.Source.BaseURL, now))
	}
	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}

// TodayLocator returns the summary URL for the calendar day of now.
func TodayLocator(base string, now time.Time) (string, error) {
	ep, err := catalog.NewEpisodeIn(datekey.FromTime(now), base, now.Location())
	if err != nil {
		return "", err
	}
	return ep.SummaryURL, nil
}

func fromStatus(status deps.Status) Result {
	detail := status.Description
	if status.Available {
		detail = fmt.Sprintf("%s (%s)", status.Path, status.Description)
	} else if status.Detail != "" {
		detail = status.Detail
	}
	return Result{
		Name:     status.Name,
		Passed:   status.Available,
		Detail:   detail,
		Optional: status.Optional,
	}
}

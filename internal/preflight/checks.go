package preflight

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"newzyx/internal/config"
	"newzyx/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the player binaries configured in cfg.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.PlayerRequirements(cfg.Player.FFplayBinary, cfg.Player.FFprobeBinary))
}

// CheckStore runs the connection test against today's summary under base.
// A missing summary still proves the store is reachable, so 404 passes as
// an optional warning.
func CheckStore(ctx context.Context, checker StoreChecker, base string, now time.Time) Result {
	const name = "Backing store"

	locator, err := TodayLocator(base, now)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	diag := checker.CheckConnection(ctx, locator)
	result := Result{Name: name, Passed: diag.OK, Detail: diag.Message}
	if diag.StatusCode == 404 {
		result.Optional = true
	}
	return result
}

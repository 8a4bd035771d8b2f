// Package lockfile provides exclusive-write coordination between registry
// processes via an O_EXCL lock file next to the guarded resource.
package lockfile

import (
	"context"
	"fmt"
	"os"
	"time"
)

// pollInterval is how often a blocked acquirer re-attempts the lock.
const pollInterval = 100 * time.Millisecond

// Acquire takes the lock at path, polling until the lock is free or the
// context is cancelled. The returned release function removes the lock
// and must be called on every exit path.
func Acquire(ctx context.Context, path string) (release func(), err error) {
	tk := time.NewTicker(pollInterval)
	defer tk.Stop()

	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			// Record the holder for operators debugging a stale lock.
			fmt.Fprintf(f, "%d\n", os.Getpid())
			if cerr := f.Close(); cerr != nil {
				os.Remove(path)
				return nil, cerr
			}
			return func() { os.Remove(path) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file %s: %w", path, err)
		}

		select {
		case <-tk.C:
			// retry
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

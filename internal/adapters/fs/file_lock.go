package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// DefaultLockTimeout bounds how long a process waits for another one to
// release the registry
const DefaultLockTimeout = 30 * time.Second

const (
	minLockPoll = 50 * time.Millisecond
	maxLockPoll = time.Second
)

// ErrLockTimeout is returned when the lock file stays held past the timeout
var ErrLockTimeout = errors.New("timed out waiting for lock")

// acquireLock takes an exclusive flock on path, creating it if needed.
// The returned function releases the lock.
func acquireLock(ctx context.Context, path string, timeout time.Duration) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %w", path, err)
	}
	release := func() {
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		_ = file.Close()
	}

	err = syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	if err == nil {
		return release, nil
	}
	if !errors.Is(err, syscall.EWOULDBLOCK) {
		file.Close()
		return nil, fmt.Errorf("flock %s: %w", path, err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	poll := minLockPoll
	for {
		select {
		case <-lockCtx.Done():
			file.Close()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w %s after %v", ErrLockTimeout, path, timeout)
		case <-time.After(poll):
		}
		err = syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return release, nil
		}
		if !errors.Is(err, syscall.EWOULDBLOCK) {
			file.Close()
			return nil, fmt.Errorf("flock %s: %w", path, err)
		}
		poll = min(poll*2, maxLockPoll)
	}
}

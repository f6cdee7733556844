// Package lockfile implements the advisory invocation lock that keeps
// overlapping swact runs from interleaving. The lock is a filesystem
// marker holding the owner PID; waiters poll at a fixed interval with a
// hard ceiling instead of blocking forever.
package lockfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/davidroman0O/swactd/errors"
)

// AcquireResult is the tagged outcome of an Acquire attempt
type AcquireResult int

const (
	// Acquired means this process now owns the lock
	Acquired AcquireResult = iota

	// TimedOut means the lock stayed held past the wait ceiling
	TimedOut
)

// SleepFunc pauses between polls. Tests inject a fake to keep the bounded
// wait instantaneous.
type SleepFunc func(ctx context.Context, d time.Duration) error

// DefaultSleep waits for d or until the context is cancelled
func DefaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Lock is a file-based advisory lock
type Lock struct {
	// Path of the lock marker file
	Path string

	// PollInterval is the pause between acquisition attempts
	PollInterval time.Duration

	// MaxPolls bounds the wait: attempts = MaxPolls before giving up
	MaxPolls int

	// Sleep is the pause implementation; nil means DefaultSleep
	Sleep SleepFunc

	held bool
}

// New creates a lock with the default 5s/120-poll bounds (10-minute ceiling)
func New(path string) *Lock {
	return &Lock{
		Path:         path,
		PollInterval: 5 * time.Second,
		MaxPolls:     120,
	}
}

// Acquire attempts to take the lock, polling a bounded number of times.
// It returns (Acquired, nil) on success and (TimedOut, error) when the
// ceiling is reached with the lock still held. It never exits the process.
func (l *Lock) Acquire(ctx context.Context) (AcquireResult, error) {
	sleep := l.Sleep
	if sleep == nil {
		sleep = DefaultSleep
	}

	polls := l.MaxPolls
	if polls < 1 {
		polls = 1
	}

	for attempt := 0; attempt < polls; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, l.PollInterval); err != nil {
				return TimedOut, errors.Wrap(err, errors.ErrCancelled, "lock wait cancelled")
			}
		}

		ok, err := l.tryAcquire()
		if err != nil {
			return TimedOut, err
		}
		if ok {
			l.held = true
			return Acquired, nil
		}
	}

	return TimedOut, errors.Newf(errors.ErrLockTimeout,
		"lock %s still held after %d polls", l.Path, polls)
}

// tryAcquire attempts a single exclusive creation of the marker. A marker
// owned by a dead process is reclaimed.
func (l *Lock) tryAcquire() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.Path), 0755); err != nil {
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}

	file, err := os.OpenFile(l.Path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err == nil {
		_, werr := fmt.Fprintf(file, "%d\n", os.Getpid())
		cerr := file.Close()
		if werr != nil || cerr != nil {
			os.Remove(l.Path)
			return false, fmt.Errorf("failed to write lock marker: %v", werr)
		}
		return true, nil
	}
	if !os.IsExist(err) {
		return false, fmt.Errorf("failed to create lock marker: %w", err)
	}

	// Marker exists; reclaim it if the owner is gone
	if l.ownerAlive() {
		return false, nil
	}
	if err := os.Remove(l.Path); err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to reclaim stale lock: %w", err)
	}
	return false, nil // retake on the next poll
}

// ownerAlive reports whether the PID recorded in the marker still runs.
// An unreadable or malformed marker counts as alive; reclaiming it on a
// parse hiccup would defeat the mutual exclusion.
func (l *Lock) ownerAlive() bool {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return true
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return true
	}

	// Signal 0 probes existence without touching the process
	return syscall.Kill(pid, 0) == nil
}

// Release removes the marker. Safe to call when the lock was never taken.
func (l *Lock) Release() error {
	if !l.held {
		return nil
	}
	l.held = false

	if err := os.Remove(l.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to release lock %s: %w", l.Path, err)
	}
	return nil
}

// Held reports whether this instance currently owns the lock
func (l *Lock) Held() bool {
	return l.held
}

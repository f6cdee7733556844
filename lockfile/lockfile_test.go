package lockfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidroman0O/swactd/errors"
)

func noSleep(calls *int) SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		*calls++
		return nil
	}
}

func TestAcquireRelease(t *testing.T) {
	dir := t.TempDir()
	lock := New(filepath.Join(dir, "swact.lock"))

	result, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Acquired, result)
	assert.True(t, lock.Held())

	// The marker holds our PID
	data, err := os.ReadFile(lock.Path)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d\n", os.Getpid()), string(data))

	require.NoError(t, lock.Release())
	assert.False(t, lock.Held())
	assert.NoFileExists(t, lock.Path)

	// Releasing twice is fine
	require.NoError(t, lock.Release())
}

func TestAcquireTimesOutAtCeiling(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "swact.lock")

	// Pre-hold the lock with our own live PID so it is never reclaimed
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644))

	sleeps := 0
	lock := New(path)
	lock.MaxPolls = 7
	lock.Sleep = noSleep(&sleeps)

	result, err := lock.Acquire(context.Background())
	assert.Equal(t, TimedOut, result)
	require.Error(t, err)
	assert.True(t, errors.IsLockTimeout(err))

	// Exactly MaxPolls attempts, so MaxPolls-1 sleeps between them
	assert.Equal(t, 6, sleeps)

	// The foreign marker must survive the failed acquisition
	assert.FileExists(t, path)
}

func TestAcquireReclaimsStaleLock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "swact.lock")

	// A PID that cannot exist marks the previous owner as dead
	require.NoError(t, os.WriteFile(path, []byte("4194399999\n"), 0644))

	sleeps := 0
	lock := New(path)
	lock.MaxPolls = 3
	lock.Sleep = noSleep(&sleeps)

	result, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Acquired, result)

	require.NoError(t, lock.Release())
}

func TestAcquireKeepsMalformedMarker(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "swact.lock")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid\n"), 0644))

	sleeps := 0
	lock := New(path)
	lock.MaxPolls = 2
	lock.Sleep = noSleep(&sleeps)

	result, err := lock.Acquire(context.Background())
	assert.Equal(t, TimedOut, result)
	require.Error(t, err)

	// Malformed markers count as held; the file must not be deleted
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "not-a-pid\n", string(data))
}

func TestAcquireCancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "swact.lock")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lock := New(path)
	lock.MaxPolls = 10
	lock.Sleep = DefaultSleep // real sleep, but the context is already done

	result, err := lock.Acquire(ctx)
	assert.Equal(t, TimedOut, result)
	require.Error(t, err)
	assert.True(t, errors.IsCancelled(err))
}

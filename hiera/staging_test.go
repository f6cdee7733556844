package hiera

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidroman0O/swactd/errors"
)

// copyingExecutor fakes the executor but really performs the rsync and rm
// commands with plain filesystem calls, so staging tests can assert on
// actual file layout.
type copyingExecutor struct {
	commands []string
}

func (e *copyingExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")
	e.commands = append(e.commands, cmdline)

	switch name {
	case "rsync":
		src := strings.TrimSuffix(args[len(args)-2], "/")
		dst := strings.TrimSuffix(args[len(args)-1], "/")
		if err := os.MkdirAll(dst, 0755); err != nil {
			return nil, err
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			data, err := os.ReadFile(filepath.Join(src, entry.Name()))
			if err != nil {
				return nil, err
			}
			if err := os.WriteFile(filepath.Join(dst, entry.Name()), data, 0644); err != nil {
				return nil, err
			}
		}
	case "rm":
		return nil, os.RemoveAll(args[len(args)-1])
	}
	return []byte(""), nil
}

func (e *copyingExecutor) ExecuteWithInput(ctx context.Context, input string, name string, args ...string) ([]byte, error) {
	return e.Execute(ctx, name, args...)
}

func (e *copyingExecutor) ExecuteInPath(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	return e.Execute(ctx, name, args...)
}

func TestStaging(t *testing.T) {
	ctx := context.Background()

	permDir := t.TempDir()
	workDir := filepath.Join(t.TempDir(), "puppet")

	snapshot := filepath.Join(permDir, "24.09", "hieradata")
	require.NoError(t, os.MkdirAll(snapshot, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(snapshot, "192.168.204.3.yaml"),
		[]byte("platform::params::hostname: controller-1\n"), 0644))

	exec := &copyingExecutor{}
	staging := NewStaging(exec, permDir, workDir, "24.09")

	t.Run("snapshot presence", func(t *testing.T) {
		assert.True(t, staging.SnapshotExists())

		missing := NewStaging(exec, permDir, workDir, "25.03")
		assert.False(t, missing.SnapshotExists())
	})

	t.Run("stage copies the snapshot", func(t *testing.T) {
		stagedDir, err := staging.Stage(ctx)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(workDir, "hieradata"), stagedDir)
		assert.FileExists(t, filepath.Join(stagedDir, "192.168.204.3.yaml"))
	})

	t.Run("host data lookup", func(t *testing.T) {
		path, err := staging.HostDataFile("192.168.204.3")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(staging.StagedDir(), "192.168.204.3.yaml"), path)

		_, err = staging.HostDataFile("192.168.204.99")
		require.Error(t, err)
		assert.Equal(t, errors.ErrNotProvisioned, errors.GetCode(err))
	})

	t.Run("cleanup removes the scratch dir", func(t *testing.T) {
		require.NoError(t, staging.Cleanup(ctx))
		assert.NoDirExists(t, workDir)

		// Cleanup is idempotent
		require.NoError(t, staging.Cleanup(ctx))
	})

	t.Run("stage fails for a missing snapshot", func(t *testing.T) {
		missing := NewStaging(exec, permDir, workDir, "25.03")
		_, err := missing.Stage(ctx)
		require.Error(t, err)
		assert.Equal(t, errors.ErrNotProvisioned, errors.GetCode(err))
	})
}

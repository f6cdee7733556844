// Package hiera manages the staged copy of the versioned hiera snapshot
// the manifest-apply tool consumes. The permanent snapshot under the
// platform directory is never touched; the apply always runs against a
// scratch copy that is deleted when the run ends.
package hiera

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/davidroman0O/swactd/errors"
	"github.com/davidroman0O/swactd/operations"
)

// Staging owns the scratch copy of the hiera data
type Staging struct {
	fsOps *operations.FilesystemOperations

	// PermDir is the versioned snapshot root, e.g. /opt/platform/puppet
	PermDir string

	// WorkDir is the scratch directory the copy lands in
	WorkDir string

	// Version selects the snapshot, e.g. "24.09"
	Version string
}

// NewStaging creates a Staging for the given snapshot version
func NewStaging(executor operations.CommandExecutor, permDir, workDir, version string) *Staging {
	return &Staging{
		fsOps:   operations.NewFilesystemOperations(executor),
		PermDir: permDir,
		WorkDir: workDir,
		Version: version,
	}
}

// SnapshotDir returns the permanent snapshot directory for the version
func (s *Staging) SnapshotDir() string {
	return filepath.Join(s.PermDir, s.Version, "hieradata")
}

// StagedDir returns where the scratch copy lives once staged
func (s *Staging) StagedDir() string {
	return filepath.Join(s.WorkDir, "hieradata")
}

// SnapshotExists reports whether a snapshot for the version is present
func (s *Staging) SnapshotExists() bool {
	info, err := os.Stat(s.SnapshotDir())
	return err == nil && info.IsDir()
}

// Stage refreshes the scratch copy from the permanent snapshot, replacing
// any stale copy a previous run left behind.
func (s *Staging) Stage(ctx context.Context) (string, error) {
	if !s.SnapshotExists() {
		return "", errors.Newf(errors.ErrNotProvisioned,
			"no hiera snapshot for version %s under %s", s.Version, s.PermDir)
	}

	if err := s.fsOps.CopyDirectory(ctx, s.SnapshotDir(), s.StagedDir()); err != nil {
		return "", errors.Wrap(err, errors.ErrStagingFailure, "failed to stage hiera data")
	}

	return s.StagedDir(), nil
}

// HostDataFile locates the per-host hiera file keyed by IP inside the
// staged copy. Its absence means the host configuration is not yet
// available and the sequence must stop.
func (s *Staging) HostDataFile(hostIP string) (string, error) {
	path := filepath.Join(s.StagedDir(), fmt.Sprintf("%s.yaml", hostIP))
	if _, err := os.Stat(path); err != nil {
		return "", errors.Newf(errors.ErrNotProvisioned,
			"no hiera data for host %s in %s", hostIP, s.StagedDir())
	}
	return path, nil
}

// Cleanup removes the scratch directory. Idempotent; called on every exit
// path.
func (s *Staging) Cleanup(ctx context.Context) error {
	return s.fsOps.Remove(ctx, s.WorkDir, true)
}

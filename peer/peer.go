// Package peer retrieves the peer controller's software version. Two
// backends exist: a read-only mount of the peer's platform export (the
// default) and an SFTP read of the peer's build-info file for hosts
// without the NFS export.
package peer

import (
	"context"
	"path/filepath"

	"github.com/davidroman0O/swactd/errors"
	"github.com/davidroman0O/swactd/operations"
	"github.com/davidroman0O/swactd/platform"
)

// VersionReader reports the peer controller's software version. The read
// is transient: whatever resources it takes (a mount, a connection) are
// released before it returns.
type VersionReader interface {
	Version(ctx context.Context) (string, error)
}

// MountVersionReader mounts the peer's platform export read-only, reads
// the version file inside it and unmounts again.
type MountVersionReader struct {
	fsOps *operations.FilesystemOperations

	// Source is the remote export, e.g. controller-platform-nfs:/opt/platform
	Source string

	// MountPoint is the local attach point
	MountPoint string

	// FSType is passed to mount; empty lets mount guess
	FSType string

	// VersionFile is the path of the version file relative to the mount
	// root, in build-info key=value format
	VersionFile string
}

// NewMountVersionReader creates a mount-backed version reader
func NewMountVersionReader(executor operations.CommandExecutor, source, mountPoint, fsType string) *MountVersionReader {
	return &MountVersionReader{
		fsOps:       operations.NewFilesystemOperations(executor),
		Source:      source,
		MountPoint:  mountPoint,
		FSType:      fsType,
		VersionFile: "version",
	}
}

// Version implements VersionReader. A mount failure means the peer is
// unreachable; the mount is released even when the read inside fails.
func (r *MountVersionReader) Version(ctx context.Context) (version string, err error) {
	if mountErr := r.fsOps.MountReadOnly(ctx, r.Source, r.MountPoint, r.FSType); mountErr != nil {
		return "", errors.Wrap(mountErr, errors.ErrMountFailure, "peer platform export unreachable")
	}

	defer func() {
		if unmountErr := r.fsOps.Unmount(ctx, r.MountPoint); unmountErr != nil && err == nil {
			err = errors.Wrap(unmountErr, errors.ErrMountFailure, "failed to release peer mount")
		}
	}()

	version, readErr := platform.ReadBuildVersion(filepath.Join(r.MountPoint, r.VersionFile))
	if readErr != nil {
		return "", errors.Wrap(readErr, errors.ErrMountFailure, "failed to read peer version")
	}

	return version, nil
}

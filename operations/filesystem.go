package operations

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// FilesystemOperations provides the filesystem side effects of the swact
// sequence: the read-only mount of the peer controller's platform export,
// the hiera staging copy, and scratch cleanup. All of it runs through a
// CommandExecutor so the sequence can be exercised against a fake.
type FilesystemOperations struct {
	executor CommandExecutor
}

// NewFilesystemOperations creates a new FilesystemOperations instance
func NewFilesystemOperations(executor CommandExecutor) *FilesystemOperations {
	return &FilesystemOperations{
		executor: executor,
	}
}

// MountReadOnly mounts a source (typically the peer controller's NFS
// platform export) read-only at mountPoint. The mount point directory is
// created if missing.
func (f *FilesystemOperations) MountReadOnly(ctx context.Context, source, mountPoint, fsType string) error {
	if _, err := ExecuteCommand(f.executor, ctx, "mkdir", "-p", mountPoint); err != nil {
		return NewOperationError("creating mount point", mountPoint, err)
	}

	// Already mounted here from an earlier aborted run; reuse it.
	mounted, err := f.IsMountPoint(ctx, mountPoint)
	if err == nil && mounted {
		return nil
	}

	args := []string{}
	if fsType != "" {
		args = append(args, "-t", fsType)
	}
	args = append(args, "-o", "ro", source, mountPoint)

	if _, err := ExecuteCommand(f.executor, ctx, "mount", args...); err != nil {
		return NewOperationError("mount", fmt.Sprintf("%s at %s", source, mountPoint), err)
	}

	return nil
}

// Unmount unmounts a filesystem. Falls back to a lazy unmount when the
// regular one fails so a stuck NFS export cannot strand the mount point.
func (f *FilesystemOperations) Unmount(ctx context.Context, mountPoint string) error {
	mounted, err := f.IsMountPoint(ctx, mountPoint)
	if err == nil && !mounted {
		return nil // Already unmounted, no error
	}

	output, err := f.executor.Execute(ctx, "umount", mountPoint)
	if err != nil {
		lazyOutput, lazyErr := f.executor.Execute(ctx, "umount", "-l", mountPoint)
		if lazyErr != nil {
			return fmt.Errorf("unmount failed (both regular and lazy): %w, output: %s",
				err, string(output)+"\n"+string(lazyOutput))
		}
	}

	return nil
}

// IsMountPoint checks if a path is a mount point
func (f *FilesystemOperations) IsMountPoint(ctx context.Context, path string) (bool, error) {
	output, err := f.executor.Execute(ctx, "mountpoint", "-q", path)
	if err != nil {
		// Exit code 1 means it's not a mount point
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return false, nil
		}
		return false, fmt.Errorf("error checking mountpoint: %w, output: %s", err, string(output))
	}
	return true, nil
}

// CopyDirectory replicates src into dst, deleting anything in dst that is
// not in src. Used to refresh the staged hiera copy so a stale snapshot
// from a previous run never leaks into the manifest apply.
func (f *FilesystemOperations) CopyDirectory(ctx context.Context, src, dst string) error {
	if _, err := f.executor.Execute(ctx, "mkdir", "-p", dst); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	output, err := f.executor.Execute(ctx, "rsync", "-a", "--delete",
		strings.TrimSuffix(src, "/")+"/", strings.TrimSuffix(dst, "/")+"/")
	if err != nil {
		return fmt.Errorf("rsync failed: %s: %w", string(output), err)
	}

	return nil
}

// Remove removes a file or directory at the specified path. Missing paths
// are not an error; cleanup must be idempotent.
func (f *FilesystemOperations) Remove(ctx context.Context, path string, recursive bool) error {
	if _, err := f.executor.Execute(ctx, "test", "-e", path); err != nil {
		return nil
	}

	args := []string{"-f"}
	if recursive {
		args = append(args, "-r")
	}
	args = append(args, path)

	output, err := f.executor.Execute(ctx, "rm", args...)
	if err != nil {
		return fmt.Errorf("remove operation failed: %w, output: %s", err, string(output))
	}

	return nil
}

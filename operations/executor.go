// Package operations provides a unified interface for the external tools
// the swact sequence drives: mount/umount of the peer platform export,
// staging copies, the puppet manifest-apply tool and the worker-services
// init script.
package operations

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandExecutor defines an interface for executing commands on the host.
// Everything the swact sequence does to the outside world goes through it,
// so tests can substitute a recording fake.
type CommandExecutor interface {
	// Execute runs a command and returns its output
	Execute(ctx context.Context, name string, args ...string) ([]byte, error)

	// ExecuteWithInput runs a command with input and returns its output
	ExecuteWithInput(ctx context.Context, input string, name string, args ...string) ([]byte, error)

	// ExecuteInPath runs a command in a specific directory and returns its output
	ExecuteInPath(ctx context.Context, dir string, name string, args ...string) ([]byte, error)
}

// ExecuteCommand is a helper that executes a command and returns a formatted error if it fails
func ExecuteCommand(executor CommandExecutor, ctx context.Context, name string, args ...string) ([]byte, error) {
	output, err := executor.Execute(ctx, name, args...)
	if err != nil {
		return output, NewCommandError(name, args, string(output), err)
	}
	return output, nil
}

// ExecuteCommandInPath is a helper that executes a command in a specific directory and returns a formatted error if it fails
func ExecuteCommandInPath(executor CommandExecutor, ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	output, err := executor.ExecuteInPath(ctx, dir, name, args...)
	if err != nil {
		cmdErr := NewCommandError(name, args, string(output), err)
		return output, fmt.Errorf("in directory %s: %w", dir, cmdErr)
	}
	return output, nil
}

// NativeExecutor implements CommandExecutor by directly executing commands on the host OS
type NativeExecutor struct{}

// Execute implements CommandExecutor.Execute for native OS execution
func (e *NativeExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// ExecuteWithInput implements CommandExecutor.ExecuteWithInput for native OS execution
func (e *NativeExecutor) ExecuteWithInput(ctx context.Context, input string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(input)
	return cmd.CombinedOutput()
}

// ExecuteInPath implements CommandExecutor.ExecuteInPath for native OS execution
func (e *NativeExecutor) ExecuteInPath(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// ExitCode extracts the process exit code from an execution error.
// Returns -1 when the command never ran or the error carries no exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

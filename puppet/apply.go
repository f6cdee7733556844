// Package puppet wraps the external manifest-apply tool that converges
// host state to the staged hiera configuration.
package puppet

import (
	"context"
	"fmt"

	"github.com/davidroman0O/swactd/errors"
	"github.com/davidroman0O/swactd/operations"
)

// Role tokens accepted by the manifest-apply tool
const (
	RoleWorker = "worker"
)

// Applier runs the manifest apply for one host
type Applier interface {
	// Apply converges the host identified by hostIP using the staged
	// hiera data, acting in the given role
	Apply(ctx context.Context, hieraDir, hostIP, role string) error
}

// ExecApplier invokes the manifest-apply shell tool through an executor
type ExecApplier struct {
	executor operations.CommandExecutor

	// Tool is the manifest-apply command path
	Tool string
}

// NewExecApplier creates an executor-backed Applier
func NewExecApplier(executor operations.CommandExecutor, tool string) *ExecApplier {
	return &ExecApplier{
		executor: executor,
		Tool:     tool,
	}
}

// Apply implements Applier. A non-zero exit aborts the sequence with the
// tool's reported code and output attached.
func (a *ExecApplier) Apply(ctx context.Context, hieraDir, hostIP, role string) error {
	output, err := a.executor.Execute(ctx, a.Tool, hieraDir, hostIP, role)
	if err != nil {
		code := operations.ExitCode(err)
		return errors.Wrap(
			operations.NewCommandError(a.Tool, []string{hieraDir, hostIP, role}, string(output), err),
			errors.ErrManifestApply,
			fmt.Sprintf("manifest apply failed with code %d", code),
		)
	}
	return nil
}

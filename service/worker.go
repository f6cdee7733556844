// Package service controls the worker (compute) services on a combined
// controller+worker host through their init script.
package service

import (
	"context"

	"github.com/davidroman0O/swactd/errors"
	"github.com/davidroman0O/swactd/operations"
)

// Controller starts and stops the worker services
type Controller interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// WorkerServices drives the worker-services init script via an executor
type WorkerServices struct {
	executor operations.CommandExecutor

	// Control is the init script path
	Control string
}

// NewWorkerServices creates an executor-backed worker services controller
func NewWorkerServices(executor operations.CommandExecutor, control string) *WorkerServices {
	return &WorkerServices{
		executor: executor,
		Control:  control,
	}
}

// Start brings the worker services up
func (w *WorkerServices) Start(ctx context.Context) error {
	return w.run(ctx, "start")
}

// Stop takes the worker services down
func (w *WorkerServices) Stop(ctx context.Context) error {
	return w.run(ctx, "stop")
}

func (w *WorkerServices) run(ctx context.Context, verb string) error {
	output, err := w.executor.Execute(ctx, w.Control, verb)
	if err != nil {
		return errors.Wrap(
			operations.NewCommandError(w.Control, []string{verb}, string(output), err),
			errors.ErrServiceControl,
			"worker services "+verb+" failed",
		)
	}
	return nil
}

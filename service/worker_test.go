package service

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidroman0O/swactd/errors"
)

type fakeExecutor struct {
	err      error
	commands []string
}

func (e *fakeExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	e.commands = append(e.commands, strings.Join(append([]string{name}, args...), " "))
	return nil, e.err
}

func (e *fakeExecutor) ExecuteWithInput(ctx context.Context, input string, name string, args ...string) ([]byte, error) {
	return e.Execute(ctx, name, args...)
}

func (e *fakeExecutor) ExecuteInPath(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	return e.Execute(ctx, name, args...)
}

func TestWorkerServices(t *testing.T) {
	ctx := context.Background()

	t.Run("start and stop run the init script", func(t *testing.T) {
		exec := &fakeExecutor{}
		services := NewWorkerServices(exec, "/etc/init.d/worker_services")

		require.NoError(t, services.Stop(ctx))
		require.NoError(t, services.Start(ctx))

		assert.Equal(t, []string{
			"/etc/init.d/worker_services stop",
			"/etc/init.d/worker_services start",
		}, exec.commands)
	})

	t.Run("script failure becomes a service control error", func(t *testing.T) {
		exec := &fakeExecutor{err: stderrors.New("exit status 1")}
		services := NewWorkerServices(exec, "/etc/init.d/worker_services")

		err := services.Start(ctx)
		require.Error(t, err)
		assert.Equal(t, errors.ErrServiceControl, errors.GetCode(err))
	})
}

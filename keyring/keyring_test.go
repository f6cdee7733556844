package keyring

import (
	"context"
	stderrors "errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envCapturingExecutor struct {
	err error
	// seen is the data-home value observed during the lookup
	seen string
}

func (e *envCapturingExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	e.seen = os.Getenv(DataHomeVar)
	if e.err != nil {
		return []byte("keyring.errors.InitError"), e.err
	}
	return []byte("s3cret\n"), nil
}

func (e *envCapturingExecutor) ExecuteWithInput(ctx context.Context, input string, name string, args ...string) ([]byte, error) {
	return e.Execute(ctx, name, args...)
}

func (e *envCapturingExecutor) ExecuteInPath(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	return e.Execute(ctx, name, args...)
}

func TestGetSecret(t *testing.T) {
	ctx := context.Background()

	t.Run("redirects data home during the lookup", func(t *testing.T) {
		t.Setenv(DataHomeVar, "/home/sysadmin/.local/share")

		exec := &envCapturingExecutor{}
		client := NewClient(exec, "keyring", "/opt/platform/.keyring/24.09")

		secret, err := client.GetSecret(ctx, "CGCS", "admin")
		require.NoError(t, err)
		assert.Equal(t, "s3cret", secret)
		assert.Equal(t, "/opt/platform/.keyring/24.09", exec.seen)

		// Prior value is back
		assert.Equal(t, "/home/sysadmin/.local/share", os.Getenv(DataHomeVar))
	})

	t.Run("unset variable stays unset after success", func(t *testing.T) {
		os.Unsetenv(DataHomeVar)

		exec := &envCapturingExecutor{}
		client := NewClient(exec, "keyring", "/opt/platform/.keyring/24.09")

		_, err := client.GetSecret(ctx, "CGCS", "admin")
		require.NoError(t, err)

		_, isSet := os.LookupEnv(DataHomeVar)
		assert.False(t, isSet)
	})

	t.Run("unset variable stays unset after failure", func(t *testing.T) {
		os.Unsetenv(DataHomeVar)

		exec := &envCapturingExecutor{err: stderrors.New("exit status 1")}
		client := NewClient(exec, "keyring", "/opt/platform/.keyring/24.09")

		_, err := client.GetSecret(ctx, "CGCS", "admin")
		require.Error(t, err)

		_, isSet := os.LookupEnv(DataHomeVar)
		assert.False(t, isSet)
	})

	t.Run("prior value restored after failure", func(t *testing.T) {
		t.Setenv(DataHomeVar, "/home/sysadmin/.local/share")

		exec := &envCapturingExecutor{err: stderrors.New("exit status 1")}
		client := NewClient(exec, "keyring", "/opt/platform/.keyring/24.09")

		_, err := client.GetSecret(ctx, "CGCS", "admin")
		require.Error(t, err)
		assert.Equal(t, "/home/sysadmin/.local/share", os.Getenv(DataHomeVar))
	})
}

// Package keyring retrieves platform credentials from the keyring vault.
// The vault tool keys its storage off a data-home environment variable, so
// the lookup temporarily points that variable at the vault directory and
// restores the caller's environment on every path out.
package keyring

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/davidroman0O/swactd/errors"
	"github.com/davidroman0O/swactd/operations"
)

// DataHomeVar is the environment variable the vault tool reads its
// storage location from
const DataHomeVar = "XDG_DATA_HOME"

// Client looks up secrets from the keyring vault
type Client struct {
	executor operations.CommandExecutor

	// Tool is the keyring command
	Tool string

	// VaultDir is the directory the data-home variable points at during
	// the lookup
	VaultDir string
}

// NewClient creates a keyring client
func NewClient(executor operations.CommandExecutor, tool, vaultDir string) *Client {
	return &Client{
		executor: executor,
		Tool:     tool,
		VaultDir: vaultDir,
	}
}

// GetSecret returns the secret stored for (service, account). The
// data-home redirection is scoped to this call: the prior value comes
// back (or the variable is unset again if it was unset) before
// returning, including on lookup failure.
func (c *Client) GetSecret(ctx context.Context, service, account string) (string, error) {
	var secret string
	err := withEnv(DataHomeVar, c.VaultDir, func() error {
		output, err := c.executor.Execute(ctx, c.Tool, "get", service, account)
		if err != nil {
			return errors.Wrap(
				operations.NewCommandError(c.Tool, []string{"get", service, account}, string(output), err),
				errors.ErrConfiguration,
				fmt.Sprintf("no secret for %s/%s", service, account),
			)
		}
		secret = strings.TrimSpace(string(output))
		return nil
	})
	return secret, err
}

// withEnv sets an environment variable around fn, guaranteeing the prior
// state comes back on every path.
func withEnv(key, value string, fn func() error) error {
	prior, wasSet := os.LookupEnv(key)

	if err := os.Setenv(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	defer func() {
		if wasSet {
			os.Setenv(key, prior)
		} else {
			os.Unsetenv(key)
		}
	}()

	return fn()
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "controller-1", cfg.Host.ExpectedHostname)
	assert.Equal(t, 120, cfg.Lock.MaxPolls)
	assert.Equal(t, 5, cfg.Lock.PollIntervalSeconds)
	assert.Equal(t, PeerBackendMount, cfg.Peer.Backend)
	assert.Equal(t, "/opt/platform/puppet", cfg.Puppet.PermDir)
	assert.Equal(t, "/opt/platform/.keyring/24.09", cfg.Keyring.VaultDir("24.09"))
}

func TestLoadConfigFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "swactd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
host:
  expectedHostname: controller-1
  hostsFile: /etc/platform/hosts
lock:
  maxPolls: 3
peer:
  backend: sftp
  sftpHost: controller-0
`), 0644))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/etc/platform/hosts", cfg.Host.HostsFile)
	assert.Equal(t, 3, cfg.Lock.MaxPolls)
	assert.Equal(t, PeerBackendSFTP, cfg.Peer.Backend)
	assert.Equal(t, "controller-0", cfg.Peer.SFTPHost)

	// Untouched values keep their defaults
	assert.Equal(t, "/etc/build.info", cfg.Host.BuildInfo)
	assert.Equal(t, "/etc/init.d/worker_services", cfg.Services.WorkerControl)
}

func TestLoadConfigFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "swactd.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"lock":{"maxPolls":9}}`), 0644))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Lock.MaxPolls)
}

func TestLoadConfigFileUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "swactd.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0644))

	_, err := LoadConfigFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config file format")
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()

	err := ApplyOverrides(cfg, []string{
		"Lock.MaxPolls=2",
		"Peer.Backend=sftp",
		"Host.ExpectedHostname=controller-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Lock.MaxPolls)
	assert.Equal(t, PeerBackendSFTP, cfg.Peer.Backend)

	t.Run("bad format", func(t *testing.T) {
		err := ApplyOverrides(Default(), []string{"Lock.MaxPolls"})
		require.Error(t, err)
	})

	t.Run("unknown field", func(t *testing.T) {
		err := ApplyOverrides(Default(), []string{"Lock.NoSuchField=1"})
		require.Error(t, err)
	})
}

func TestSchemaJSON(t *testing.T) {
	schema, err := SchemaJSON()
	require.NoError(t, err)

	// The schema names the top-level sections
	for _, section := range []string{"host", "flags", "lock", "puppet", "peer", "services", "keyring"} {
		assert.True(t, strings.Contains(schema, `"`+section+`"`), "schema missing section %s", section)
	}
}

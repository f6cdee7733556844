package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidroman0O/swactd/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseConf(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "platform.conf", `# platform config
nodetype=controller
subfunction=controller,worker
sw_version=24.09

management_interface=ens3
`)

	conf, err := ParseConf(path)
	require.NoError(t, err)

	assert.Equal(t, "controller", conf["nodetype"])
	assert.Equal(t, "controller,worker", conf["subfunction"])
	assert.Equal(t, "ens3", conf["management_interface"])
	assert.NotContains(t, conf, "# platform config")
}

func TestReadBuildVersion(t *testing.T) {
	dir := t.TempDir()

	t.Run("quoted version", func(t *testing.T) {
		path := writeFile(t, dir, "build.info", `SW_VERSION="24.09"
BUILD_TARGET="Host Installer"
`)
		version, err := ReadBuildVersion(path)
		require.NoError(t, err)
		assert.Equal(t, "24.09", version)
	})

	t.Run("missing version", func(t *testing.T) {
		path := writeFile(t, dir, "empty.info", "BUILD_TARGET=\"Host Installer\"\n")
		_, err := ReadBuildVersion(path)
		require.Error(t, err)
		assert.Equal(t, errors.ErrConfiguration, errors.GetCode(err))
	})
}

func TestHasSubfunction(t *testing.T) {
	info := &HostInfo{Subfunctions: []string{"controller", "worker"}}
	assert.True(t, info.HasSubfunction(SubfunctionWorker))
	assert.False(t, info.HasSubfunction("storage"))

	none := &HostInfo{}
	assert.False(t, none.HasSubfunction(SubfunctionWorker))
}

func TestLookupHostIP(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hosts", `127.0.0.1 localhost
# management network
192.168.204.2 controller-0
192.168.204.3 controller-1 controller-1.internal
floating controller # malformed line, no IP
`)

	t.Run("direct name", func(t *testing.T) {
		ip, err := LookupHostIP(path, "controller-1")
		require.NoError(t, err)
		assert.Equal(t, "192.168.204.3", ip)
	})

	t.Run("alias", func(t *testing.T) {
		ip, err := LookupHostIP(path, "controller-1.internal")
		require.NoError(t, err)
		assert.Equal(t, "192.168.204.3", ip)
	})

	t.Run("unknown host", func(t *testing.T) {
		_, err := LookupHostIP(path, "worker-5")
		require.Error(t, err)
		assert.Equal(t, errors.ErrHostNotFound, errors.GetCode(err))
	})
}

func TestFlags(t *testing.T) {
	dir := t.TempDir()

	flag := FlagFile{Path: filepath.Join(dir, "run", ".disable_worker_services")}
	assert.False(t, flag.Exists())

	require.NoError(t, flag.Create())
	assert.True(t, flag.Exists())

	// Creating twice is fine
	require.NoError(t, flag.Create())

	require.NoError(t, flag.Remove())
	assert.False(t, flag.Exists())

	// Removing twice is fine
	require.NoError(t, flag.Remove())
}

func TestConfigCompleted(t *testing.T) {
	dir := t.TempDir()

	flags := Flags{
		ConfigPass: FlagFile{Path: filepath.Join(dir, ".config_pass")},
		ConfigFail: FlagFile{Path: filepath.Join(dir, ".config_fail")},
	}

	assert.False(t, flags.ConfigCompleted())

	require.NoError(t, flags.ConfigPass.Create())
	assert.True(t, flags.ConfigCompleted())

	// A fail marker vetoes the pass marker
	require.NoError(t, flags.ConfigFail.Create())
	assert.False(t, flags.ConfigCompleted())
}

// Package config holds the swactd configuration: host identity, platform
// file locations, lock bounds, puppet paths, peer access and service
// control. Everything has a default matching a stock controller install so
// the config file only needs to carry deviations.
package config

import (
	"path/filepath"
	"time"
)

// Config is the root configuration for swactd
type Config struct {
	Host     HostConfig     `yaml:"host" json:"host"`
	Flags    FlagsConfig    `yaml:"flags" json:"flags"`
	Lock     LockConfig     `yaml:"lock" json:"lock"`
	Puppet   PuppetConfig   `yaml:"puppet" json:"puppet"`
	Peer     PeerConfig     `yaml:"peer" json:"peer"`
	Services ServicesConfig `yaml:"services" json:"services"`
	Keyring  KeyringConfig  `yaml:"keyring" json:"keyring"`
}

// HostConfig describes the local host identity and fact sources
type HostConfig struct {
	// ExpectedHostname is the distinguished secondary controller identity;
	// the swact sequence refuses to run anywhere else
	ExpectedHostname string `yaml:"expectedHostname" json:"expectedHostname"`

	// PlaceholderHostname is the generic unconfigured-host name that also
	// disqualifies the run
	PlaceholderHostname string `yaml:"placeholderHostname" json:"placeholderHostname"`

	// PlatformConf is the platform.conf location
	PlatformConf string `yaml:"platformConf" json:"platformConf"`

	// BuildInfo is the build-info file carrying SW_VERSION
	BuildInfo string `yaml:"buildInfo" json:"buildInfo"`

	// HostsFile is the hosts table used for the hostname to IP lookup
	HostsFile string `yaml:"hostsFile" json:"hostsFile"`
}

// FlagsConfig locates the boolean marker files
type FlagsConfig struct {
	ConfigPass             string `yaml:"configPass" json:"configPass"`
	ConfigFail             string `yaml:"configFail" json:"configFail"`
	InitialConfigComplete  string `yaml:"initialConfigComplete" json:"initialConfigComplete"`
	WorkerServicesDisabled string `yaml:"workerServicesDisabled" json:"workerServicesDisabled"`
}

// LockConfig bounds the invocation lock wait
type LockConfig struct {
	Path                string `yaml:"path" json:"path"`
	PollIntervalSeconds int    `yaml:"pollIntervalSeconds" json:"pollIntervalSeconds"`
	MaxPolls            int    `yaml:"maxPolls" json:"maxPolls"`
}

// PollInterval returns the poll interval as a duration
func (l LockConfig) PollInterval() time.Duration {
	return time.Duration(l.PollIntervalSeconds) * time.Second
}

// PuppetConfig locates the hiera snapshot, the scratch staging area and
// the manifest-apply tool
type PuppetConfig struct {
	// PermDir is the versioned snapshot root, e.g. /opt/platform/puppet
	PermDir string `yaml:"permDir" json:"permDir"`

	// WorkDir is the scratch staging directory consumed by the apply tool
	WorkDir string `yaml:"workDir" json:"workDir"`

	// ApplyTool is the external manifest-apply command
	ApplyTool string `yaml:"applyTool" json:"applyTool"`
}

// PeerConfig describes how to reach the peer controller's platform export
type PeerConfig struct {
	// Backend selects the version reader: "mount" or "sftp"
	Backend string `yaml:"backend" json:"backend"`

	// MountSource is the remote export, e.g. controller-platform-nfs:/opt/platform
	MountSource string `yaml:"mountSource" json:"mountSource"`

	// MountPoint is where the export is attached read-only
	MountPoint string `yaml:"mountPoint" json:"mountPoint"`

	// MountFSType is the filesystem type passed to mount ("" lets mount guess)
	MountFSType string `yaml:"mountFSType" json:"mountFSType"`

	// SFTP settings, used when Backend is "sftp"
	SFTPHost      string `yaml:"sftpHost" json:"sftpHost"`
	SFTPPort      int    `yaml:"sftpPort" json:"sftpPort"`
	SFTPUser      string `yaml:"sftpUser" json:"sftpUser"`
	SFTPPassword  string `yaml:"sftpPassword" json:"sftpPassword"`
	SFTPBuildInfo string `yaml:"sftpBuildInfo" json:"sftpBuildInfo"`
}

// ServicesConfig describes the worker-services control command
type ServicesConfig struct {
	// WorkerControl is the init script driving the compute services
	WorkerControl string `yaml:"workerControl" json:"workerControl"`
}

// KeyringConfig describes the credential vault lookup
type KeyringConfig struct {
	// Tool is the keyring command
	Tool string `yaml:"tool" json:"tool"`

	// VaultRoot holds the per-version vault directories; the lookup uses
	// VaultRoot/<software version>
	VaultRoot string `yaml:"vaultRoot" json:"vaultRoot"`
}

// VaultDir returns the vault directory for a software version
func (k KeyringConfig) VaultDir(version string) string {
	return filepath.Join(k.VaultRoot, version)
}

// Peer backend selector values
const (
	PeerBackendMount = "mount"
	PeerBackendSFTP  = "sftp"
)

// Default returns a configuration matching a stock two-controller install
func Default() *Config {
	return &Config{
		Host: HostConfig{
			ExpectedHostname:    "controller-1",
			PlaceholderHostname: "localhost",
			PlatformConf:        "/etc/platform/platform.conf",
			BuildInfo:           "/etc/build.info",
			HostsFile:           "/etc/hosts",
		},
		Flags: FlagsConfig{
			ConfigPass:             "/var/run/.config_pass",
			ConfigFail:             "/var/run/.config_fail",
			InitialConfigComplete:  "/etc/platform/.initial_config_complete",
			WorkerServicesDisabled: "/var/run/.disable_worker_services",
		},
		Lock: LockConfig{
			Path:                "/var/run/.swact_worker_services.lock",
			PollIntervalSeconds: 5,
			MaxPolls:            120,
		},
		Puppet: PuppetConfig{
			PermDir:   "/opt/platform/puppet",
			WorkDir:   "/tmp/puppet",
			ApplyTool: "/usr/local/bin/puppet-manifest-apply.sh",
		},
		Peer: PeerConfig{
			Backend:     PeerBackendMount,
			MountSource: "controller-platform-nfs:/opt/platform",
			MountPoint:  "/mnt/platform",
			MountFSType: "nfs",
			SFTPPort:    22,
			SFTPUser:    "root",
			// Peer path of the build-info file when reading over SFTP
			SFTPBuildInfo: "/etc/build.info",
		},
		Services: ServicesConfig{
			WorkerControl: "/etc/init.d/worker_services",
		},
		Keyring: KeyringConfig{
			Tool:      "keyring",
			VaultRoot: "/opt/platform/.keyring",
		},
	}
}

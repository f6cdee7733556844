package swact

import (
	"github.com/davidroman0O/gostage"
	"github.com/davidroman0O/gostage/store"

	"github.com/davidroman0O/swactd/config"
	"github.com/davidroman0O/swactd/errors"
	"github.com/davidroman0O/swactd/hiera"
	"github.com/davidroman0O/swactd/operations"
	"github.com/davidroman0O/swactd/peer"
	"github.com/davidroman0O/swactd/platform"
	"github.com/davidroman0O/swactd/puppet"
	"github.com/davidroman0O/swactd/service"
)

// Provider bundles the capabilities the actions need. Every external side
// effect runs through one of its fields, so tests swap them for fakes.
type Provider struct {
	// Exec drives every external command
	Exec operations.CommandExecutor

	// Peer reads the peer controller's software version
	Peer peer.VersionReader

	// Applier runs the manifest apply
	Applier puppet.Applier

	// Services controls the worker services
	Services service.Controller

	// Flags are the boolean markers the sequence consults and toggles
	Flags platform.Flags

	// Config carries the paths and identity expectations
	Config *config.Config
}

// NewProvider wires a production provider from the configuration
func NewProvider(cfg *config.Config) *Provider {
	executor := &operations.NativeExecutor{}

	var versionReader peer.VersionReader
	if cfg.Peer.Backend == config.PeerBackendSFTP {
		versionReader = peer.NewSFTPVersionReader(
			cfg.Peer.SFTPHost, cfg.Peer.SFTPPort,
			cfg.Peer.SFTPUser, cfg.Peer.SFTPPassword,
			cfg.Peer.SFTPBuildInfo)
	} else {
		versionReader = peer.NewMountVersionReader(
			executor, cfg.Peer.MountSource, cfg.Peer.MountPoint, cfg.Peer.MountFSType)
	}

	return &Provider{
		Exec:     executor,
		Peer:     versionReader,
		Applier:  puppet.NewExecApplier(executor, cfg.Puppet.ApplyTool),
		Services: service.NewWorkerServices(executor, cfg.Services.WorkerControl),
		Flags: platform.Flags{
			ConfigPass:             platform.FlagFile{Path: cfg.Flags.ConfigPass},
			ConfigFail:             platform.FlagFile{Path: cfg.Flags.ConfigFail},
			InitialConfigComplete:  platform.FlagFile{Path: cfg.Flags.InitialConfigComplete},
			WorkerServicesDisabled: platform.FlagFile{Path: cfg.Flags.WorkerServicesDisabled},
		},
		Config: cfg,
	}
}

// HostInfo loads the local host facts
func (p *Provider) HostInfo() (*platform.HostInfo, error) {
	return platform.LoadHostInfo(p.Config.Host.PlatformConf, p.Config.Host.BuildInfo)
}

// LookupHostIP resolves a hostname through the configured hosts table
func (p *Provider) LookupHostIP(hostname string) (string, error) {
	return platform.LookupHostIP(p.Config.Host.HostsFile, hostname)
}

// Staging returns the hiera staging handle for a snapshot version
func (p *Provider) Staging(version string) *hiera.Staging {
	return hiera.NewStaging(p.Exec, p.Config.Puppet.PermDir, p.Config.Puppet.WorkDir, version)
}

// toolsFrom fetches the provider every action starts with
func toolsFrom(ctx *gostage.ActionContext) (*Provider, error) {
	provider, err := store.Get[*Provider](ctx.Store(), KeyToolsProvider)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfiguration, "tools provider missing from workflow store")
	}
	return provider, nil
}

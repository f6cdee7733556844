package swact

import (
	"github.com/davidroman0O/gostage"
	"github.com/davidroman0O/gostage/store"

	"github.com/davidroman0O/swactd/errors"
	"github.com/davidroman0O/swactd/platform"
	"github.com/davidroman0O/swactd/puppet"
)

// HostnameGuardAction verifies this host is the secondary controller. The
// sequence never runs on the primary controller or on worker-only nodes.
type HostnameGuardAction struct {
	gostage.BaseAction
}

// NewHostnameGuardAction creates the hostname guard
func NewHostnameGuardAction() *HostnameGuardAction {
	return &HostnameGuardAction{
		BaseAction: gostage.NewBaseAction(
			"hostname-guard",
			"Requires the local hostname to be the secondary controller identity",
		),
	}
}

// Execute implements the Action interface
func (a *HostnameGuardAction) Execute(ctx *gostage.ActionContext) error {
	tools, err := toolsFrom(ctx)
	if err != nil {
		return err
	}

	info, err := tools.HostInfo()
	if err != nil {
		return err
	}

	hostCfg := tools.Config.Host
	if info.Hostname == "" || info.Hostname == hostCfg.PlaceholderHostname {
		return errors.Newf(errors.ErrWrongHost, "hostname not yet configured (%q)", info.Hostname)
	}
	if info.Hostname != hostCfg.ExpectedHostname {
		return errors.Newf(errors.ErrWrongHost,
			"swact worker-service toggle only runs on %s, not %s",
			hostCfg.ExpectedHostname, info.Hostname)
	}

	ctx.Logger.Info("Running on %s, software version %s", info.Hostname, info.SWVersion)

	ctx.Store().Put(KeyHostName, info.Hostname)
	ctx.Store().Put(KeyHostVersion, info.SWVersion)
	return nil
}

// SubfunctionGuardAction requires the worker subfunction: only combined
// controller+worker hosts carry compute services worth toggling.
type SubfunctionGuardAction struct {
	gostage.BaseAction
}

// NewSubfunctionGuardAction creates the subfunction guard
func NewSubfunctionGuardAction() *SubfunctionGuardAction {
	return &SubfunctionGuardAction{
		BaseAction: gostage.NewBaseAction(
			"subfunction-guard",
			"Requires the worker subfunction on this host",
		),
	}
}

// Execute implements the Action interface
func (a *SubfunctionGuardAction) Execute(ctx *gostage.ActionContext) error {
	tools, err := toolsFrom(ctx)
	if err != nil {
		return err
	}

	info, err := tools.HostInfo()
	if err != nil {
		return err
	}

	if !info.HasSubfunction(platform.SubfunctionWorker) {
		return errors.Newf(errors.ErrGuardFailed,
			"host has subfunctions %v, not a combined controller+worker node", info.Subfunctions)
	}
	return nil
}

// ConfigFlagsGuardAction requires a cleanly configured host: the config
// pass marker present, no fail marker, and the initial controller
// configuration completed at least once.
type ConfigFlagsGuardAction struct {
	gostage.BaseAction
}

// NewConfigFlagsGuardAction creates the configuration flags guard
func NewConfigFlagsGuardAction() *ConfigFlagsGuardAction {
	return &ConfigFlagsGuardAction{
		BaseAction: gostage.NewBaseAction(
			"config-flags-guard",
			"Requires local configuration to have completed successfully",
		),
	}
}

// Execute implements the Action interface
func (a *ConfigFlagsGuardAction) Execute(ctx *gostage.ActionContext) error {
	tools, err := toolsFrom(ctx)
	if err != nil {
		return err
	}

	if !tools.Flags.ConfigCompleted() {
		return errors.New(errors.ErrGuardFailed, "local configuration has not completed successfully")
	}
	if !tools.Flags.InitialConfigComplete.Exists() {
		return errors.New(errors.ErrGuardFailed, "initial controller configuration has not completed")
	}
	return nil
}

// ResolveHostIPAction resolves the local management IP from the hosts table
type ResolveHostIPAction struct {
	gostage.BaseAction
}

// NewResolveHostIPAction creates the host IP resolution action
func NewResolveHostIPAction() *ResolveHostIPAction {
	return &ResolveHostIPAction{
		BaseAction: gostage.NewBaseAction(
			"resolve-host-ip",
			"Resolves the local hostname through the hosts table",
		),
	}
}

// Execute implements the Action interface
func (a *ResolveHostIPAction) Execute(ctx *gostage.ActionContext) error {
	tools, err := toolsFrom(ctx)
	if err != nil {
		return err
	}

	hostname, err := store.Get[string](ctx.Store(), KeyHostName)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfiguration, "hostname missing from workflow store")
	}

	ip, err := tools.LookupHostIP(hostname)
	if err != nil {
		return err
	}

	ctx.Logger.Debug("Resolved %s to %s", hostname, ip)
	ctx.Store().Put(KeyHostIP, ip)
	return nil
}

// SnapshotGuardAction requires a hiera snapshot for the local software
// version before anything gets staged.
type SnapshotGuardAction struct {
	gostage.BaseAction
}

// NewSnapshotGuardAction creates the snapshot guard
func NewSnapshotGuardAction() *SnapshotGuardAction {
	return &SnapshotGuardAction{
		BaseAction: gostage.NewBaseAction(
			"snapshot-guard",
			"Requires a hiera snapshot for the current software version",
		),
	}
}

// Execute implements the Action interface
func (a *SnapshotGuardAction) Execute(ctx *gostage.ActionContext) error {
	tools, err := toolsFrom(ctx)
	if err != nil {
		return err
	}

	version, err := store.Get[string](ctx.Store(), KeyHostVersion)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfiguration, "host version missing from workflow store")
	}

	if !tools.Staging(version).SnapshotExists() {
		return errors.Newf(errors.ErrNotProvisioned,
			"no platform configuration snapshot for version %s", version)
	}
	return nil
}

// PeerVersionCheckAction reads the peer controller's software version and
// aborts when it matches the local one: equal versions mean no upgrade or
// downgrade window is open and there is nothing to toggle.
type PeerVersionCheckAction struct {
	gostage.BaseAction
}

// NewPeerVersionCheckAction creates the peer version comparison action
func NewPeerVersionCheckAction() *PeerVersionCheckAction {
	return &PeerVersionCheckAction{
		BaseAction: gostage.NewBaseAction(
			"peer-version-check",
			"Compares local and peer software versions",
		),
	}
}

// Execute implements the Action interface
func (a *PeerVersionCheckAction) Execute(ctx *gostage.ActionContext) error {
	tools, err := toolsFrom(ctx)
	if err != nil {
		return err
	}

	localVersion, err := store.Get[string](ctx.Store(), KeyHostVersion)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfiguration, "host version missing from workflow store")
	}

	peerVersion, err := tools.Peer.Version(ctx.GoContext)
	if err != nil {
		return err
	}

	ctx.Logger.Info("Local version %s, peer version %s", localVersion, peerVersion)

	if peerVersion == localVersion {
		return errors.Newf(errors.ErrVersionParity,
			"peer runs the same version %s, no upgrade in progress", localVersion)
	}

	ctx.Store().Put(KeyPeerVersion, peerVersion)
	return nil
}

// StageHieraAction copies the versioned hiera snapshot into the scratch
// working directory, replacing any stale copy.
type StageHieraAction struct {
	gostage.BaseAction
}

// NewStageHieraAction creates the hiera staging action
func NewStageHieraAction() *StageHieraAction {
	return &StageHieraAction{
		BaseAction: gostage.NewBaseAction(
			"stage-hiera",
			"Stages the hiera snapshot into the scratch directory",
		),
	}
}

// Execute implements the Action interface
func (a *StageHieraAction) Execute(ctx *gostage.ActionContext) error {
	tools, err := toolsFrom(ctx)
	if err != nil {
		return err
	}

	version, err := store.Get[string](ctx.Store(), KeyHostVersion)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfiguration, "host version missing from workflow store")
	}

	stagedDir, err := tools.Staging(version).Stage(ctx.GoContext)
	if err != nil {
		return err
	}

	ctx.Logger.Info("Staged hiera data at %s", stagedDir)
	ctx.Store().Put(KeyStagedDir, stagedDir)
	return nil
}

// ToggleServicesAction applies the requested toggle. For stop, the
// disable flag goes down first so the service managers keep the services
// stopped, then the services themselves stop. For start, the disable flag
// is simply removed; the services come up only after the manifest apply.
type ToggleServicesAction struct {
	gostage.BaseAction
}

// NewToggleServicesAction creates the service toggle action
func NewToggleServicesAction() *ToggleServicesAction {
	return &ToggleServicesAction{
		BaseAction: gostage.NewBaseAction(
			"toggle-services",
			"Creates or removes the worker-services disable flag",
		),
	}
}

// Execute implements the Action interface
func (a *ToggleServicesAction) Execute(ctx *gostage.ActionContext) error {
	tools, err := toolsFrom(ctx)
	if err != nil {
		return err
	}

	action, err := store.Get[string](ctx.Store(), KeyAction)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfiguration, "action missing from workflow store")
	}

	switch Action(action) {
	case ActionStop:
		ctx.Logger.Info("Disabling worker services")
		if err := tools.Flags.WorkerServicesDisabled.Create(); err != nil {
			return errors.Wrap(err, errors.ErrServiceControl, "failed to set disable flag")
		}
		return tools.Services.Stop(ctx.GoContext)
	case ActionStart:
		ctx.Logger.Info("Clearing worker-services disable flag")
		if err := tools.Flags.WorkerServicesDisabled.Remove(); err != nil {
			return errors.Wrap(err, errors.ErrServiceControl, "failed to clear disable flag")
		}
		return nil
	}

	return errors.Newf(errors.ErrInvalidInput, "unknown action %q", action)
}

// ManifestApplyAction locates the per-host hiera data and runs the
// manifest apply in the worker role.
type ManifestApplyAction struct {
	gostage.BaseAction
}

// NewManifestApplyAction creates the manifest apply action
func NewManifestApplyAction() *ManifestApplyAction {
	return &ManifestApplyAction{
		BaseAction: gostage.NewBaseAction(
			"manifest-apply",
			"Applies the worker manifest for this host",
		),
	}
}

// Execute implements the Action interface
func (a *ManifestApplyAction) Execute(ctx *gostage.ActionContext) error {
	tools, err := toolsFrom(ctx)
	if err != nil {
		return err
	}

	version, err := store.Get[string](ctx.Store(), KeyHostVersion)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfiguration, "host version missing from workflow store")
	}
	hostIP, err := store.Get[string](ctx.Store(), KeyHostIP)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfiguration, "host IP missing from workflow store")
	}
	stagedDir, err := store.Get[string](ctx.Store(), KeyStagedDir)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfiguration, "staged dir missing from workflow store")
	}

	// The apply tool wants the per-host file present, keyed by IP
	if _, err := tools.Staging(version).HostDataFile(hostIP); err != nil {
		return err
	}

	ctx.Logger.Info("Applying worker manifest for %s", hostIP)
	return tools.Applier.Apply(ctx.GoContext, stagedDir, hostIP, puppet.RoleWorker)
}

// StartServicesAction brings the worker services up after a successful
// manifest apply. Only the start action reaches here with work to do.
type StartServicesAction struct {
	gostage.BaseAction
}

// NewStartServicesAction creates the post-apply service start action
func NewStartServicesAction() *StartServicesAction {
	return &StartServicesAction{
		BaseAction: gostage.NewBaseAction(
			"start-services",
			"Starts the worker services after the manifest apply",
		),
	}
}

// Execute implements the Action interface
func (a *StartServicesAction) Execute(ctx *gostage.ActionContext) error {
	tools, err := toolsFrom(ctx)
	if err != nil {
		return err
	}

	action, err := store.Get[string](ctx.Store(), KeyAction)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfiguration, "action missing from workflow store")
	}

	if Action(action) != ActionStart {
		return nil
	}

	ctx.Logger.Info("Starting worker services")
	return tools.Services.Start(ctx.GoContext)
}

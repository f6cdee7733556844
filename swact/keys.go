// Package swact orchestrates the worker-service toggle that runs on the
// secondary controller during a swact. The sequence is a gostage workflow:
// a preflight stage of environmental guards, a peer version comparison, a
// hiera staging step, the service toggle and the manifest apply. Any guard
// failure ends the run as a clean no-op; every resource the run creates is
// released on the way out.
package swact

// Store key constants for workflow data
const (
	// KeyToolsProvider holds the capability provider for all actions
	KeyToolsProvider = "swactd.tools.provider"

	// KeyAction holds the requested action, "start" or "stop"
	KeyAction = "swactd.action"

	// KeyHostName is the resolved local hostname
	KeyHostName = "swactd.host.name"

	// KeyHostIP is the management IP resolved from the hosts table
	KeyHostIP = "swactd.host.ip"

	// KeyHostVersion is the local software version
	KeyHostVersion = "swactd.host.version"

	// KeyPeerVersion is the peer controller's software version
	KeyPeerVersion = "swactd.peer.version"

	// KeyStagedDir is the scratch hiera directory consumed by the apply
	KeyStagedDir = "swactd.staging.dir"
)

package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// FlagFile is a boolean filesystem marker. The configuration subsystem
// produces the pass/fail and initial-config markers; swactd only reads
// those. The worker-services disable flag is the one marker swactd owns.
type FlagFile struct {
	Path string
}

// Exists reports whether the flag is set
func (f FlagFile) Exists() bool {
	_, err := os.Stat(f.Path)
	return err == nil
}

// Create sets the flag. Creating an already-set flag is not an error.
func (f FlagFile) Create() error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
		return fmt.Errorf("failed to create flag directory: %w", err)
	}

	file, err := os.OpenFile(f.Path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create flag %s: %w", f.Path, err)
	}
	return file.Close()
}

// Remove clears the flag. Removing an unset flag is not an error.
func (f FlagFile) Remove() error {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove flag %s: %w", f.Path, err)
	}
	return nil
}

// Flags groups the markers the swact sequence consults or toggles
type Flags struct {
	// ConfigPass is set by the configuration subsystem once the local
	// configuration has been applied successfully
	ConfigPass FlagFile

	// ConfigFail is set when the local configuration failed; its presence
	// vetoes ConfigPass
	ConfigFail FlagFile

	// InitialConfigComplete marks that the initial controller
	// configuration has ever completed on this host
	InitialConfigComplete FlagFile

	// WorkerServicesDisabled tells the service managers to keep the
	// worker services down across restarts
	WorkerServicesDisabled FlagFile
}

// ConfigCompleted reports whether the local configuration finished cleanly
func (f Flags) ConfigCompleted() bool {
	return f.ConfigPass.Exists() && !f.ConfigFail.Exists()
}

package swact

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/davidroman0O/gostage"

	"github.com/davidroman0O/swactd/config"
	"github.com/davidroman0O/swactd/errors"
	"github.com/davidroman0O/swactd/lockfile"
)

// Action is the requested toggle direction
type Action string

const (
	// ActionStart enables the worker services after the manifest apply
	ActionStart Action = "start"

	// ActionStop disables and stops the worker services
	ActionStop Action = "stop"
)

// ParseAction validates a raw action string
func ParseAction(raw string) (Action, error) {
	switch Action(raw) {
	case ActionStart, ActionStop:
		return Action(raw), nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unknown action %q, want start or stop", raw)
}

// Outcome classifies how a run ended
type Outcome int

const (
	// OutcomeCompleted means the full toggle sequence ran
	OutcomeCompleted Outcome = iota

	// OutcomeNoOp means an environmental guard stopped the run cleanly
	OutcomeNoOp

	// OutcomeFailed means a tool invocation or the lock acquisition failed
	OutcomeFailed
)

// String returns a human-readable outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeNoOp:
		return "no-op"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Result reports a finished run
type Result struct {
	// Outcome classifies the run
	Outcome Outcome

	// Reason explains no-op and failed outcomes
	Reason string
}

// Engine assembles and runs the toggle workflow
type Engine struct {
	cfg      *config.Config
	provider *Provider
	logger   gostage.Logger
	lock     *lockfile.Lock
}

// NewEngine creates an engine with a production provider
func NewEngine(cfg *config.Config, logger gostage.Logger) *Engine {
	return NewEngineWithProvider(cfg, NewProvider(cfg), logger)
}

// NewEngineWithProvider creates an engine around an existing provider.
// Tests use this to substitute fake capabilities.
func NewEngineWithProvider(cfg *config.Config, provider *Provider, logger gostage.Logger) *Engine {
	if logger == nil {
		logger = NewStdLogger()
	}

	lock := lockfile.New(cfg.Lock.Path)
	if d := cfg.Lock.PollInterval(); d > 0 {
		lock.PollInterval = d
	}
	if cfg.Lock.MaxPolls > 0 {
		lock.MaxPolls = cfg.Lock.MaxPolls
	}

	return &Engine{
		cfg:      cfg,
		provider: provider,
		logger:   logger,
		lock:     lock,
	}
}

// Run executes the toggle sequence for the given action. Guard failures
// come back as a no-op result with a nil error; only invalid input and
// tool failures return a non-nil error.
func (e *Engine) Run(ctx context.Context, action Action) (*Result, error) {
	if _, err := e.lock.Acquire(ctx); err != nil {
		return &Result{Outcome: OutcomeFailed, Reason: err.Error()}, err
	}
	defer func() {
		// A stranded marker stalls the next invocation until the dead-owner
		// reclaim kicks in, so a failed removal must at least be visible
		if err := e.lock.Release(); err != nil {
			e.logger.Warn("Failed to release invocation lock: %v", err)
		}
	}()

	workflow := e.buildWorkflow(action)

	runner := gostage.NewRunner()
	runner.Use(func(next gostage.RunnerFunc) gostage.RunnerFunc {
		return func(ctx context.Context, w *gostage.Workflow, logger gostage.Logger) error {
			logger.Info("Starting workflow: %s", w.Name)

			if err := os.MkdirAll(e.cfg.Puppet.WorkDir, 0o755); err != nil {
				return fmt.Errorf("failed to create working directory: %w", err)
			}
			// The scratch directory never outlives the run
			defer os.RemoveAll(e.cfg.Puppet.WorkDir)

			return next(ctx, w, logger)
		}
	})

	if err := runner.Execute(ctx, workflow, e.logger); err != nil {
		if errors.IsGuardFailure(err) {
			e.logger.Info("Nothing to do: %v", err)
			return &Result{Outcome: OutcomeNoOp, Reason: err.Error()}, nil
		}
		return &Result{Outcome: OutcomeFailed, Reason: err.Error()}, err
	}

	return &Result{Outcome: OutcomeCompleted}, nil
}

// buildWorkflow assembles the staged action sequence for one run
func (e *Engine) buildWorkflow(action Action) *gostage.Workflow {
	workflow := gostage.NewWorkflow(
		fmt.Sprintf("swact-%s", action),
		fmt.Sprintf("Worker services %s", action),
		"Toggles the worker services on the secondary controller",
	)

	preflight := gostage.NewStage("preflight", "Preflight",
		"Environmental guards that decide whether this run applies")
	preflight.AddAction(NewHostnameGuardAction())
	preflight.AddAction(NewSubfunctionGuardAction())
	preflight.AddAction(NewConfigFlagsGuardAction())
	preflight.AddAction(NewResolveHostIPAction())
	preflight.AddAction(NewSnapshotGuardAction())
	workflow.AddStage(preflight)

	versionCheck := gostage.NewStage("version-check", "Version check",
		"Compares local and peer software versions")
	versionCheck.AddAction(NewPeerVersionCheckAction())
	workflow.AddStage(versionCheck)

	staging := gostage.NewStage("staging", "Staging",
		"Stages hiera data into the scratch directory")
	staging.AddAction(NewStageHieraAction())
	workflow.AddStage(staging)

	toggle := gostage.NewStage("toggle", "Toggle",
		"Flips the disable flag and stops services when requested")
	toggle.AddAction(NewToggleServicesAction())
	workflow.AddStage(toggle)

	apply := gostage.NewStage("apply", "Apply",
		"Applies the worker manifest and starts services when requested")
	apply.AddAction(NewManifestApplyAction())
	apply.AddAction(NewStartServicesAction())
	workflow.AddStage(apply)

	workflow.Store.Put(KeyToolsProvider, e.provider)
	workflow.Store.Put(KeyAction, string(action))

	return workflow
}

// StdLogger writes workflow logs through the standard logger
type StdLogger struct{}

// NewStdLogger creates a standard-library backed workflow logger
func NewStdLogger() gostage.Logger {
	return &StdLogger{}
}

// Debug implements Logger.Debug
func (l *StdLogger) Debug(format string, args ...interface{}) {
	log.Printf("DEBUG "+format, args...)
}

// Info implements Logger.Info
func (l *StdLogger) Info(format string, args ...interface{}) {
	log.Printf(format, args...)
}

// Warn implements Logger.Warn
func (l *StdLogger) Warn(format string, args ...interface{}) {
	log.Printf("WARN "+format, args...)
}

// Error implements Logger.Error
func (l *StdLogger) Error(format string, args ...interface{}) {
	log.Printf("ERROR "+format, args...)
}

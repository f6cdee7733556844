package operations

import (
	"fmt"
	"strings"
)

// CommandError carries the full invocation and captured output of a failed
// external tool. The manifest apply and the mount commands can fail with
// useful diagnostics only in their output, so it travels with the error.
type CommandError struct {
	Command string   // The command that was executed
	Args    []string // The arguments passed to the command
	Output  string   // Combined stdout/stderr
	Err     error    // The underlying error
}

// Error implements the error interface
func (e *CommandError) Error() string {
	fullCmd := e.Command
	if len(e.Args) > 0 {
		fullCmd += " " + strings.Join(e.Args, " ")
	}

	if e.Output == "" {
		return fmt.Sprintf("command failed: '%s': %v", fullCmd, e.Err)
	}

	return fmt.Sprintf("command failed: '%s': %v\nOutput: %s",
		fullCmd, e.Err, formatCommandOutput(e.Output))
}

// Unwrap returns the underlying error
func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError
func NewCommandError(command string, args []string, output string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Args:    args,
		Output:  output,
		Err:     err,
	}
}

// formatCommandOutput trims, bounds and indents tool output so multi-line
// puppet logs stay readable inside a single error message
func formatCommandOutput(output string) string {
	if output == "" {
		return "<no output>"
	}

	output = strings.TrimSpace(output)
	if len(output) > 1000 {
		output = output[:1000] + "... [output truncated]"
	}

	if strings.Contains(output, "\n") {
		lines := strings.Split(output, "\n")
		for i, line := range lines {
			lines[i] = "  | " + line
		}
		return "\n" + strings.Join(lines, "\n")
	}

	return output
}

// OperationError wraps a failure of a named filesystem operation with the
// path or mount it was working on
type OperationError struct {
	Operation string // The operation that failed
	Target    string // The path or mount the operation worked on
	Err       error  // The underlying error
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s failed for %s: %v", e.Operation, e.Target, e.Err)
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	return e.Err
}

// NewOperationError creates a new OperationError
func NewOperationError(operation string, target string, err error) *OperationError {
	return &OperationError{
		Operation: operation,
		Target:    target,
		Err:       err,
	}
}

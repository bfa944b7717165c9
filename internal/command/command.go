package command

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
)

// Runner executes OS commands
type Runner interface {
	// Output runs a command to completion and returns its stdout
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// Run runs a command to completion, discarding output
	Run(ctx context.Context, name string, args ...string) error

	// Start launches a command and does not wait for it
	Start(name string, args ...string) error
}

// ExecRunner implements Runner with os/exec
type ExecRunner struct{}

// Output runs the command and returns what it wrote to stdout
func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	slog.Debug("running command", "name", name, "args", args)

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return out, fmt.Errorf("command %s %v failed: %w", name, args, err)
	}
	return out, nil
}

// Run runs the command, returning the exit error if any
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	slog.Debug("running command", "name", name, "args", args)

	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("command %s %v failed: %w, output: %s", name, args, err, out)
	}
	return nil
}

// Start launches the command detached from this process. The child is
// released so it keeps running after ndmpadm exits.
func (ExecRunner) Start(name string, args ...string) error {
	slog.Debug("starting command", "name", name, "args", args)

	cmd := exec.Command(name, args...)
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", name, err)
	}
	return cmd.Process.Release()
}

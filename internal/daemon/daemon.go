package daemon

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"

	"github.com/ndmpd/ndmpadm/internal/command"
)

// Options configures the controller
type Options struct {
	Binary      string // Daemon executable
	ConfigFile  string // Passed as -f <file>
	ProcessName string // Name matched by pkill
	PkillPath   string
}

// Controller starts and stops the NDMP daemon. Requests are fire-and-forget:
// nothing checks that the daemon actually came up or went away.
type Controller struct {
	opts   Options
	runner command.Runner
}

// New creates a Controller
func New(opts Options, runner command.Runner) *Controller {
	if opts.PkillPath == "" {
		opts.PkillPath = "pkill"
	}
	return &Controller{opts: opts, runner: runner}
}

// Start launches the daemon in the background
func (c *Controller) Start(ctx context.Context) error {
	return c.runner.Start(c.opts.Binary, "-f", c.opts.ConfigFile)
}

// Stop signals every process named like the daemon to terminate. pkill
// exiting non-zero (usually: nothing was running) is not an error.
func (c *Controller) Stop(ctx context.Context) error {
	err := c.runner.Run(ctx, c.opts.PkillPath, c.opts.ProcessName)

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		slog.Debug("pkill exited non-zero", "process", c.opts.ProcessName, "code", exitErr.ExitCode())
		return nil
	}
	return err
}

// Restart stops then starts the daemon
func (c *Controller) Restart(ctx context.Context) error {
	if err := c.Stop(ctx); err != nil {
		return err
	}
	return c.Start(ctx)
}

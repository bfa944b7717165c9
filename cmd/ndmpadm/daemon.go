package main

import (
	"log/slog"

	"github.com/ndmpd/ndmpadm/internal/daemon"
	"github.com/spf13/cobra"
)

func startCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the NDMP daemon",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Debug("starting daemon", "binary", a.cfg.Daemon.Binary)
			return a.controller().Start(cmd.Context())
		},
	}
}

func stopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the NDMP daemon",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Debug("stopping daemon", "process", a.cfg.Daemon.ProcessName)
			return a.controller().Stop(cmd.Context())
		},
	}
}

func restartCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart the NDMP daemon",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.controller().Restart(cmd.Context())
		},
	}
}

func (a *app) controller() *daemon.Controller {
	return daemon.New(daemon.Options{
		Binary:      a.cfg.Daemon.Binary,
		ConfigFile:  a.cfg.NDMPD.ConfigFile,
		ProcessName: a.cfg.Daemon.ProcessName,
		PkillPath:   a.cfg.Daemon.PkillPath,
	}, a.runner)
}

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/ndmpd/ndmpadm/internal/config"
	"github.com/ndmpd/ndmpadm/internal/logging"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func settingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the effective ndmpadm settings",
		Long:  "Prints the ndmpadm settings after defaults and NDMPADM_* environment overrides are applied.",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			a.stdout.Write(data)
			return nil
		},
	}

	cmd.AddCommand(settingsInitCmd(a))

	return cmd
}

func settingsInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default settings file",
		Args:  noArgs,
		// An existing file may be broken; do not load it
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}
			logging.Setup(a.stderr, level, true)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.settingsPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", a.settingsPath)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			if err := config.DefaultConfig().Save(a.settingsPath); err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}

			fmt.Fprintf(a.stdout, "Wrote default settings to %s\n", a.settingsPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

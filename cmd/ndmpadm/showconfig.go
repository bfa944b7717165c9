package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ndmpd/ndmpadm/internal/ndmpconf"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func showconfigCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "showconfig",
		Short: "Show the current ndmpd configuration",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.NDMPD.ConfigFile
			values, err := ndmpconf.Read(path)
			if err != nil {
				slog.Debug("config read failed", "path", path, "err", err)
				fmt.Fprintln(a.stdout, "Read config file fail")
				return errReported
			}
			return a.printConfig(values, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, yaml or json")

	return cmd
}

func (a *app) printConfig(values map[string]string, output string) error {
	switch output {
	case "text", "":
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(a.stdout, "%s:%s\n", k, values[k])
		}

	case "yaml":
		data, err := yaml.Marshal(values)
		if err != nil {
			return err
		}
		a.stdout.Write(data)

	case "json":
		data, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, string(data))

	default:
		return fmt.Errorf("%w: unknown output format %q", errUsage, output)
	}
	return nil
}

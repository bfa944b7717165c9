package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func listnicCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "listnic",
		Short: "Show all network interfaces",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nics, err := a.enumerator().List(cmd.Context())
			if err != nil {
				return err
			}

			for _, name := range nics.Names() {
				fmt.Fprintln(a.stdout, nics.Format(name))
			}
			return nil
		},
	}
}

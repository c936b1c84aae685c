package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repofab/repofab/pkg/export"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <manifest.toml> <dir>",
		Short: "Build the repository and write compressed loose objects",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := buildFromManifest(args[0])
			if err != nil {
				return err
			}
			w := export.NewWriter(args[1])
			if err := w.WriteRepository(r); err != nil {
				return err
			}
			fmt.Printf("exported to %s\n", args[1])
			return nil
		},
	}
}

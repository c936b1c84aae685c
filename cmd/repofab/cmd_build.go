package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build <manifest.toml>",
		Short: "Build the repository in memory and print its refs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := buildFromManifest(args[0])
			if err != nil {
				return err
			}
			refs, err := r.Refs()
			if err != nil {
				return err
			}

			names := make([]string, 0, len(refs))
			for name := range refs {
				names = append(names, name)
			}
			sort.Strings(names)

			yellow := color.New(color.FgYellow)
			for _, name := range names {
				yellow.Print(refs[name])
				fmt.Printf(" %s\n", name)
			}
			return nil
		},
	}
}

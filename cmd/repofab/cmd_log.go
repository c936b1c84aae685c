package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log <manifest.toml> <branch>",
		Short: "Print a branch's history, newest first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := buildFromManifest(args[0])
			if err != nil {
				return err
			}
			b := r.Branch(args[1])
			if b == nil {
				return fmt.Errorf("log: branch %q not found", args[1])
			}

			yellow := color.New(color.FgYellow)
			green := color.New(color.FgGreen)

			shown := 0
			for c := b.Head(); c != nil; c = c.Parent() {
				if limit > 0 && shown >= limit {
					break
				}
				sum, err := c.Hash()
				if err != nil {
					return err
				}
				subject, _, _ := strings.Cut(c.Message(), "\n")
				yellow.Print(sum.String()[:8])
				fmt.Printf(" %s", subject)
				for _, t := range c.Tags() {
					green.Printf(" (tag: %s)", t.Name())
				}
				fmt.Println()
				shown++
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "n", "n", 0, "Limit the number of commits to show")
	return cmd
}

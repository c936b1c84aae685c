package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/repofab/repofab/pkg/object"
)

func newShowCmd() *cobra.Command {
	var framed bool

	cmd := &cobra.Command{
		Use:   "show <manifest.toml> <hash>",
		Short: "Resolve an object by hash and print its bytes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := buildFromManifest(args[0])
			if err != nil {
				return err
			}
			h, err := object.ParseHash(args[1])
			if err != nil {
				return err
			}
			obj, err := r.ByHash(h)
			if err != nil {
				return err
			}
			if obj == nil {
				return fmt.Errorf("show: no object %s", h)
			}

			var data []byte
			if framed {
				data, err = obj.Bytes()
			} else {
				data, err = obj.Content()
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%s %s\n", obj.Kind(), h)
			os.Stdout.Write(data)
			return nil
		},
	}
	cmd.Flags().BoolVar(&framed, "framed", false, "Print the framed \"<kind> <len>\\0\" payload instead of the content")
	return cmd
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// boxCommand creates the box command, which traces a box through operations
// without reading any pixels.
func (c *CLI) boxCommand() *cobra.Command {
	var (
		ops     opFlags
		size    string
		box     string
		asJSON  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "box",
		Short: "Trace a bounding box through operations without an image",
		Example: `  augment box --size 640x480 --box 100,80,300,260 --rotate 15 --scale 1.5 --keep-resolution
  augment box --size 640x480 --box 100,80,300,260 --recipe tilt.toml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recipe, err := ops.build(cmd)
			if err != nil {
				return err
			}
			extent, err := parseSize(size)
			if err != nil {
				return err
			}
			b, err := parseBox(box)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(runnerOptions{noCache: noCache, noRecord: true})
			if err != nil {
				return err
			}
			defer runner.Close()

			trace, _, err := runner.Trace(cmd.Context(), extent, b, recipe)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(trace)
			}
			fmt.Println(traceTable(trace))
			printWarnings(trace.Warnings())
			return nil
		},
	}

	ops.register(cmd)
	cmd.Flags().StringVar(&size, "size", "", "image size WIDTHxHEIGHT (required)")
	cmd.Flags().StringVar(&box, "box", "", "bounding box xmin,ymin,xmax,ymax")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the trace as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the trace cache")
	_ = cmd.MarkFlagRequired("size")

	return cmd
}

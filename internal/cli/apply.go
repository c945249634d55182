package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/augment/pkg/pipeline"
	"github.com/matzehuels/augment/pkg/raster"
)

// applyCommand creates the apply command for augmenting a single image.
func (c *CLI) applyCommand() *cobra.Command {
	var (
		ops      opFlags
		output   string
		box      string
		format   string
		quality  int
		noCache  bool
		noRecord bool
		refresh  bool
	)

	cmd := &cobra.Command{
		Use:   "apply IMAGE",
		Short: "Augment an image and recompute its bounding box",
		Long: `Augment an image and recompute its bounding box.

Operations come from a TOML recipe (--recipe) or from flags, which run in
the order crop, rotate, scale, shear, translate.`,
		Example: `  augment apply cat.jpg --box 10,20,110,140 --rotate 30 -o cat-rot.jpg
  augment apply cat.jpg --box 10,20,110,140 --recipe tilt.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipe, err := ops.build(cmd)
			if err != nil {
				return err
			}
			b, err := parseBox(box)
			if err != nil {
				return err
			}
			input := args[0]
			if output == "" {
				output, err = defaultOutput(input, format)
				if err != nil {
					return err
				}
			}

			runner, err := c.newRunner(runnerOptions{noCache: noCache, noRecord: noRecord})
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := runner.Execute(cmd.Context(), pipeline.Options{
				Input:   input,
				Output:  output,
				Recipe:  recipe,
				Box:     b,
				Format:  format,
				Quality: quality,
				Refresh: refresh,
				Logger:  loggerFromContext(cmd.Context()),
			})
			if err != nil {
				return err
			}

			printSuccess("Augmented %s", input)
			printSampleStats(res.Extent, res.Box, res.CacheInfo.ArtifactHit)
			printWarnings(res.Warnings)
			printFile(res.Output)
			if res.RecordID != "" {
				printNextStep("Inspect the record", fmt.Sprintf("%s records show %s", appName, res.RecordID))
			}
			return nil
		},
	}

	ops.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output image (default: IMAGE with an -aug suffix)")
	cmd.Flags().StringVar(&box, "box", "", "bounding box xmin,ymin,xmax,ymax")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: png, jpeg, gif, bmp, tiff (default: from output extension)")
	cmd.Flags().IntVarP(&quality, "quality", "q", pipeline.DefaultQuality, "JPEG quality (1-100)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "do not store an annotation record")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached artifacts")

	return cmd
}

// defaultOutput derives "dir/name-aug.ext" from input. ext follows format
// when one is given.
func defaultOutput(input, format string) (string, error) {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	if format != "" {
		f, err := raster.FormatOf(format)
		if err != nil {
			return "", err
		}
		ext = "." + f
	}
	return base + "-aug" + ext, nil
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/augment/pkg/errors"
	"github.com/matzehuels/augment/pkg/geom"
	"github.com/matzehuels/augment/pkg/observability"
	"github.com/matzehuels/augment/pkg/pipeline"
	"github.com/matzehuels/augment/pkg/raster"
)

// sidecarName is the per-directory box annotation file read by batch.
const sidecarName = "boxes.toml"

// sidecar maps image file names to their boxes:
//
//	[boxes]
//	"cat.jpg" = [10, 20, 110, 140]
type sidecar struct {
	Boxes map[string][]float64 `toml:"boxes"`
}

// batchCommand creates the batch command for augmenting a directory.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		ops         opFlags
		output      string
		format      string
		quality     int
		concurrency int
		noCache     bool
		noRecord    bool
		refresh     bool
	)

	cmd := &cobra.Command{
		Use:   "batch DIR",
		Short: "Augment every image in a directory",
		Long: `Augment every image in a directory.

Boxes are read from DIR/boxes.toml:

  [boxes]
  "cat.jpg" = [10, 20, 110, 140]

Images without an entry are augmented without a box.`,
		Example: `  augment batch ./train --recipe tilt.toml -o ./train-tilt -j 8`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			recipe, err := ops.build(cmd)
			if err != nil {
				return err
			}
			if output == "" {
				output = filepath.Join(dir, "augmented")
			}

			images, err := listImages(dir)
			if err != nil {
				return err
			}
			if len(images) == 0 {
				printInfo("No images in %s", dir)
				return nil
			}
			boxes, err := loadSidecar(dir)
			if err != nil {
				return err
			}

			batch := make([]pipeline.Options, len(images))
			for i, name := range images {
				out, err := batchOutput(output, name, format)
				if err != nil {
					return err
				}
				batch[i] = pipeline.Options{
					Input:   filepath.Join(dir, name),
					Output:  out,
					Recipe:  recipe,
					Box:     boxes[name],
					Format:  format,
					Quality: quality,
					Refresh: refresh,
				}
			}

			runner, err := c.newRunner(runnerOptions{noCache: noCache, noRecord: noRecord})
			if err != nil {
				return err
			}
			defer runner.Close()

			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)
			spinner := newSpinnerWithContext(cmd.Context(), fmt.Sprintf("Augmenting %d images...", len(batch)))
			spinner.Start()
			restore := trackProgress(spinner, len(batch))
			results, err := runner.ExecuteBatch(cmd.Context(), batch, concurrency)
			restore()
			if err != nil {
				spinner.StopWithError("Batch failed")
				return err
			}
			spinner.Stop()
			prog.done(fmt.Sprintf("Augmented %d images", len(results)))

			var cached, warned, lost int
			for _, res := range results {
				if res.CacheInfo.ArtifactHit {
					cached++
				}
				if len(res.Warnings) > 0 {
					warned++
				}
				if b, ok := res.Box.Get(); ok && b.IsSentinel() {
					lost++
				}
			}
			printSuccess("Augmented %d images", len(results))
			printDetail("%d from cache · %d with warnings · %d boxes left the frame", cached, warned, lost)
			printFile(output)
			return nil
		},
	}

	ops.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default: DIR/augmented)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format (default: keep each input's format)")
	cmd.Flags().IntVarP(&quality, "quality", "q", pipeline.DefaultQuality, "JPEG quality (1-100)")
	cmd.Flags().IntVarP(&concurrency, "jobs", "j", pipeline.DefaultConcurrency(), "images processed concurrently")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "do not store annotation records")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached artifacts")

	return cmd
}

// batchProgress counts completed samples into the spinner message and
// forwards every event to the hooks it replaced.
type batchProgress struct {
	observability.PipelineHooks
	spinner *Spinner
	total   int
	done    atomic.Int64
}

func (p *batchProgress) OnSampleComplete(ctx context.Context, source string, warnings int, d time.Duration, err error) {
	p.PipelineHooks.OnSampleComplete(ctx, source, warnings, d, err)
	n := p.done.Add(1)
	p.spinner.SetMessage(fmt.Sprintf("Augmenting images... %d/%d", n, p.total))
}

// trackProgress installs a batchProgress hook and returns a func that puts
// the previous hooks back.
func trackProgress(s *Spinner, total int) func() {
	prev := observability.Pipeline()
	observability.SetPipelineHooks(&batchProgress{PipelineHooks: prev, spinner: s, total: total})
	return func() { observability.SetPipelineHooks(prev) }
}

// listImages returns the names of supported image files in dir, sorted.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "directory not found: %s", dir)
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := raster.FormatFromPath(e.Name()); err == nil {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// loadSidecar reads dir/boxes.toml. A missing file yields no boxes.
func loadSidecar(dir string) (map[string]geom.OptBox, error) {
	path := filepath.Join(dir, sidecarName)
	var sc sidecar
	md, err := toml.DecodeFile(path, &sc)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]geom.OptBox{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: unknown key %q", path, undecoded[0].String())
	}

	boxes := make(map[string]geom.OptBox, len(sc.Boxes))
	for name, v := range sc.Boxes {
		b, err := geom.BoxFromSlice(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", path, name, err)
		}
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", path, name, err)
		}
		boxes[name] = geom.Some(b)
	}
	return boxes, nil
}

// batchOutput places name in dir, switching its extension to format when
// one is given.
func batchOutput(dir, name, format string) (string, error) {
	if format == "" {
		return filepath.Join(dir, name), nil
	}
	f, err := raster.FormatOf(format)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, strings.TrimSuffix(name, filepath.Ext(name))+"."+f), nil
}

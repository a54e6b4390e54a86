package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacklane/pkg/pipeline"
	"github.com/matzehuels/stacklane/pkg/timeline"
)

// renderOpts holds the render-only flags.
type renderOpts struct {
	output  string
	formats string
	scale   float64
	noAxis  bool
	cluster bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags layoutFlags
		ro    = renderOpts{scale: pipeline.DefaultScale}
	)

	cmd := &cobra.Command{
		Use:   "render [timeline | layout.json]",
		Short: "Render a timeline to SVG, PNG, PDF, JSON or DOT",
		Long: `Render a timeline document, or a layout.json produced by 'layout'.

Formats (comma-separated with -f):
  svg      lane timeline (default)
  png,pdf  raster/vector conversion of the SVG (needs rsvg-convert)
  json     the serialized layout
  dot      Graphviz overlap graph of the intervals
  overlap  the overlap graph drawn by Graphviz

Output files are named <base><ext>, where base is -o without a known
extension, or the input path without its extension.`,
		Example: `  stacklane render trials.toml
  stacklane render trials.toml -f svg,png -o out/trials
  stacklane render trials.layout.json -f pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], &flags, &ro)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file or base path")
	cmd.Flags().StringVarP(&ro.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot, overlap")
	cmd.Flags().Float64Var(&ro.scale, "scale", ro.scale, "raster scale factor for png")
	cmd.Flags().BoolVar(&ro.noAxis, "no-axis", false, "omit the date axis")
	cmd.Flags().BoolVar(&ro.cluster, "cluster", false, "group DOT nodes by lane")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, flags *layoutFlags, ro *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	ui := c.ui()

	formats, err := pipeline.ParseFormats(ro.formats)
	if err != nil {
		return err
	}

	opts := c.options(cmd, flags)
	opts.Formats = formats
	opts.Scale = ro.scale
	opts.NoAxis = ro.noAxis
	opts.ClusterLanes = ro.cluster
	opts.SetRenderDefaults()
	if err := opts.ValidateForRender(); err != nil {
		return err
	}

	runner, err := c.newRunner(cmd, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, cmd.ErrOrStderr(), "Loading "+input+"...")
	spinner.Start()
	defer spinner.Stop()

	var (
		l         timeline.Layout
		layoutHit bool
	)
	if isLayoutFile(input) {
		if l, err = timeline.ReadLayoutFile(input); err != nil {
			return fmt.Errorf("load layout %s: %w", input, err)
		}
		layoutHit = true
		prog.step("loaded layout")
	} else {
		doc, err := readInput(cmd, input)
		if err != nil {
			return fmt.Errorf("load timeline %s: %w", input, err)
		}
		spinner.Update(fmt.Sprintf("Stacking %s...", plural(len(doc.Intervals), "interval")))
		if l, layoutHit, err = runner.ComputeLayoutWithCacheInfo(ctx, doc, opts); err != nil {
			return fmt.Errorf("compute layout: %w", err)
		}
		prog.step("computed layout")
	}

	spinner.Update("Rendering " + strings.Join(opts.Formats, ", ") + "...")
	artifacts, renderHit, err := runner.RenderWithCacheInfo(ctx, l, opts)
	spinner.Stop()
	if spinner.Cancelled() {
		return ctx.Err()
	}
	if err != nil {
		ui.error("Render failed")
		return fmt.Errorf("render: %w", err)
	}

	src := input
	if src == "-" {
		src = "timeline.json"
	}
	paths, err := writeArtifacts(basePath(ro.output, src), artifacts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s", plural(len(paths), "file")))

	ui.success("Render complete")
	for _, p := range paths {
		ui.file(p)
	}
	ui.stats(len(l.Blocks), l.MaxConcurrency, compactedBlocks(l), layoutHit && renderHit)
	return nil
}

// writeArtifacts writes each artifact to base+extension in a stable order
// and returns the paths written.
func writeArtifacts(base string, artifacts map[string][]byte) ([]string, error) {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := base + pipeline.Extension(f)
		if err := os.WriteFile(path, artifacts[f], 0644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

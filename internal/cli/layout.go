package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacklane/pkg/timeline"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [timeline]",
		Short: "Assign lanes and compute block rectangles for a timeline",
		Long: `Compute the lane layout of a timeline document.

The input is a JSON, YAML or TOML timeline ("-" reads JSON from stdin). The
output is a layout.json file holding every block's lane, compaction flag and
rectangle. It can be rendered with 'stacklane render <file>.layout.json'.

Results are cached; use --refresh to recompute or --no-cache to bypass.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, args[0], output, &flags)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runLayout(cmd *cobra.Command, input, output string, flags *layoutFlags) error {
	ctx := cmd.Context()
	ui := c.ui()

	doc, err := readInput(cmd, input)
	if err != nil {
		return fmt.Errorf("load timeline %s: %w", input, err)
	}

	runner, err := c.newRunner(cmd, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Stacking %s...", plural(len(doc.Intervals), "interval")))
	spinner.Start()

	l, hit, err := runner.ComputeLayoutWithCacheInfo(ctx, doc, c.options(cmd, flags))
	spinner.Stop()
	if spinner.Cancelled() {
		return ctx.Err()
	}
	if err != nil {
		ui.error("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}

	outputPath := output
	if outputPath == "" {
		if input == "-" {
			input = "timeline.json"
		}
		outputPath = basePath("", input) + ".layout.json"
	}
	if err := timeline.WriteLayoutFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	ui.success("Layout complete")
	ui.file(outputPath)
	ui.stats(len(l.Blocks), l.MaxConcurrency, compactedBlocks(l), hit)
	ui.newline()
	ui.nextStep("Render", appName+" render "+outputPath)
	return nil
}

func compactedBlocks(l timeline.Layout) int {
	n := 0
	for _, b := range l.Blocks {
		if b.Compacted {
			n++
		}
	}
	return n
}

// Package cli implements the stacklane command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stacklane/internal/config"
	"github.com/matzehuels/stacklane/pkg/buildinfo"
	"github.com/matzehuels/stacklane/pkg/cache"
	"github.com/matzehuels/stacklane/pkg/pipeline"
	"github.com/matzehuels/stacklane/pkg/timeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stacklane"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any command runs.
	Config config.Config

	configPath string
	out        io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output (not logs).
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Stacklane stacks overlapping intervals into lanes",
		Long:         `Stacklane assigns overlapping time intervals to the fewest horizontal lanes and draws them as a timeline, compacting blocks that would otherwise leave gaps.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/stacklane/config.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.sampleCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Cache entries are scoped
// to the build version.
func (c *CLI) newRunner(cmd *cobra.Command, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(cmd, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.CacheScope())
	return pipeline.NewRunner(ch, keyer, c.Logger), nil
}

func (c *CLI) newCache(cmd *cobra.Command, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	return c.Config.OpenCache(cmd.Context(), c.Logger)
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags are the canvas flags shared by layout, render, inspect, view.
type layoutFlags struct {
	width      float64
	height     float64
	margin     float64
	unit       string
	epoch      string
	labelEvery int
	noCache    bool
	refresh    bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.width, "width", 0, "frame width (default from config, 1080)")
	cmd.Flags().Float64Var(&f.height, "height", 0, "frame height (default from config, 300)")
	cmd.Flags().Float64Var(&f.margin, "margin", 0, "vertical margin inside each lane band (default from config, 7)")
	cmd.Flags().StringVar(&f.unit, "unit", "", "axis unit: month, day, year, none (default: document's)")
	cmd.Flags().StringVar(&f.epoch, "epoch", "", "calendar date of value 0, YYYY-MM-DD (default: document's)")
	cmd.Flags().IntVar(&f.labelEvery, "label-every", 0, "label every n-th axis tick")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even if cached")
}

// options merges config defaults with the flags the user actually set.
func (c *CLI) options(cmd *cobra.Command, f *layoutFlags) pipeline.Options {
	opts := c.Config.PipelineOptions()
	flags := cmd.Flags()
	if flags.Changed("width") {
		opts.Width = f.width
	}
	if flags.Changed("height") {
		opts.Height = f.height
	}
	if flags.Changed("margin") {
		m := f.margin
		opts.LaneMargin = &m
	}
	if flags.Changed("unit") {
		opts.Unit = f.unit
	}
	if flags.Changed("epoch") {
		opts.Epoch = f.epoch
	}
	if flags.Changed("label-every") {
		opts.LabelEvery = f.labelEvery
	}
	opts.Refresh = f.refresh
	opts.Logger = c.Logger
	return opts
}

// readInput loads a timeline document; "-" reads JSON from stdin.
func readInput(cmd *cobra.Command, path string) (*timeline.Document, error) {
	if path == "-" {
		return timeline.Read(cmd.InOrStdin(), timeline.FormatJSON)
	}
	return timeline.ReadFile(path)
}

// isLayoutFile reports whether path names a serialized layout rather than
// a timeline document.
func isLayoutFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".layout.json")
}

// basePath derives the output base path: the output flag with any known
// extension removed, or the input without its extension.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".layout")
	}
	// longest match wins so ".overlap.svg" beats ".svg"
	trim := ""
	for format := range pipeline.ValidFormats {
		if ext := pipeline.Extension(format); strings.HasSuffix(output, ext) && len(ext) > len(trim) {
			trim = ext
		}
	}
	return strings.TrimSuffix(output, trim)
}

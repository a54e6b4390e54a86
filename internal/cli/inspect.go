package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stacklane/pkg/core/lanes"
	"github.com/matzehuels/stacklane/pkg/timeline"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tableBorderStyle = lipgloss.NewStyle().Foreground(colorDim)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		flags  layoutFlags
		events bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [timeline]",
		Short: "Print lane assignments and block rectangles as a table",
		Long: `Print the layout of a timeline as a table: one row per interval with its
lane, compaction flag and rectangle. With --events the sweep order of all
interval endpoints is printed too, along with the number of active
intervals after each event.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd, args[0], &flags, events)
		},
	}

	cmd.Flags().BoolVar(&events, "events", false, "also print the endpoint sweep")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runInspect(cmd *cobra.Command, input string, flags *layoutFlags, events bool) error {
	doc, err := readInput(cmd, input)
	if err != nil {
		return fmt.Errorf("load timeline %s: %w", input, err)
	}

	runner, err := c.newRunner(cmd, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	l, hit, err := runner.ComputeLayoutWithCacheInfo(cmd.Context(), doc, c.options(cmd, flags))
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	ui := c.ui()
	title := l.Title
	if title == "" {
		title = input
	}
	fmt.Fprintln(c.out, StyleTitle.Render(title))
	ui.keyValue("Canvas", fmt.Sprintf("%gx%g", l.Width, l.Height))
	ui.keyValue("Lanes", strconv.Itoa(l.MaxConcurrency))
	ui.keyValue("Px per unit", strconv.FormatFloat(l.PixelsPerUnit, 'f', -1, 64))
	ui.stats(len(l.Blocks), l.MaxConcurrency, compactedBlocks(l), hit)
	ui.newline()
	fmt.Fprintln(c.out, blockTable(l))

	if events {
		ivs, err := doc.LaneIntervals()
		if err != nil {
			return err
		}
		ui.newline()
		fmt.Fprintln(c.out, StyleTitle.Render("Sweep"))
		fmt.Fprintln(c.out, eventTable(ivs))
	}
	return nil
}

// blockTable renders one row per block ordered by ID.
func blockTable(l timeline.Layout) string {
	rows := make([][]string, 0, len(l.Blocks))
	for _, b := range l.Blocks {
		compacted := ""
		if b.Compacted {
			compacted = iconSuccess
		}
		rows = append(rows, []string{
			strconv.Itoa(b.ID),
			b.Title,
			formatValue(b.Start),
			formatValue(b.End),
			strconv.Itoa(b.Lane),
			compacted,
			fmt.Sprintf("%g,%g %gx%g", b.Left, b.Top, b.Width, b.Height),
			b.Label,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers("ID", "Title", "Start", "End", "Lane", "Compacted", "Rect", "Label").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle.Padding(0, 1)
			}
			if col == 5 {
				return tableCellStyle.Foreground(colorGreen)
			}
			return tableCellStyle
		}).
		Render()
}

// eventTable renders the sweep: each endpoint in processing order with
// the number of intervals active after it.
func eventTable(intervals []lanes.Interval) string {
	active := 0
	rows := make([][]string, 0, 2*len(intervals))
	for _, e := range lanes.Events(intervals) {
		if e.IsStart {
			active++
		} else {
			active--
		}
		rows = append(rows, []string{formatValue(e.Value), e.Kind(), strconv.Itoa(e.IntervalID), strconv.Itoa(active)})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers("Value", "Event", "ID", "Active").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle.Padding(0, 1)
			}
			if col == 1 && rows[row][1] == "end" {
				return tableCellStyle.Foreground(colorGray)
			}
			return tableCellStyle
		}).
		Render()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package cli

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stacklane/pkg/timeline"
)

const stripWidth = 60

var (
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	stripFullStyle = lipgloss.NewStyle().Foreground(colorCyan)
	stripHalfStyle = lipgloss.NewStyle().Foreground(colorGreen)
)

// viewCommand creates the interactive lane browser.
func (c *CLI) viewCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "view [timeline | layout.json]",
		Short: "Browse lanes interactively in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.loadLayout(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewLaneModel(l),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()))
			_, err = p.Run()
			return err
		},
	}

	flags.register(cmd)
	return cmd
}

// loadLayout reads a serialized layout or computes one from a timeline.
func (c *CLI) loadLayout(cmd *cobra.Command, input string, flags *layoutFlags) (timeline.Layout, error) {
	if isLayoutFile(input) {
		return timeline.ReadLayoutFile(input)
	}
	doc, err := readInput(cmd, input)
	if err != nil {
		return timeline.Layout{}, fmt.Errorf("load timeline %s: %w", input, err)
	}
	runner, err := c.newRunner(cmd, flags.noCache)
	if err != nil {
		return timeline.Layout{}, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	return runner.ComputeLayout(cmd.Context(), doc, c.options(cmd, flags))
}

// =============================================================================
// LaneModel - Interactive lane browser
// =============================================================================

// LaneModel is the bubbletea model for browsing a layout lane by lane.
// The upper list shows one occupancy strip per lane; the lower table
// lists the blocks of the lane under the cursor.
type LaneModel struct {
	Layout timeline.Layout
	Lanes  [][]timeline.Block
	Cursor int
	Height int
	Offset int
}

// NewLaneModel groups the layout's blocks by lane.
func NewLaneModel(l timeline.Layout) LaneModel {
	byLane := make([][]timeline.Block, l.MaxConcurrency)
	for _, b := range l.Blocks {
		byLane[b.Lane] = append(byLane[b.Lane], b)
	}
	return LaneModel{Layout: l, Lanes: byLane, Height: 10}
}

func (m LaneModel) Init() tea.Cmd {
	return nil
}

func (m LaneModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Lanes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = max(len(m.Lanes)-1, 0)
			m.Offset = max(m.Cursor-m.Height+1, 0)
		}
	case tea.WindowSizeMsg:
		// leave room for the header and the block table
		m.Height = max(msg.Height/2-4, 3)
	}
	return m, nil
}

func (m LaneModel) View() string {
	var b strings.Builder

	title := m.Layout.Title
	if title == "" {
		title = "Lanes"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	if len(m.Lanes) == 0 {
		b.WriteString(listDimStyle.Render("  no intervals"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Lanes))
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		label := fmt.Sprintf("lane %-3d", i)
		if i == m.Cursor {
			cursor = "▸ "
			label = StyleTitle.Render(label)
		} else {
			label = StyleDim.Render(label)
		}
		b.WriteString(cursor + label + " " + m.strip(i) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(laneTable(m.Lanes[m.Cursor]))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Lanes))))

	return b.String()
}

// strip draws a lane's occupancy scaled to stripWidth columns. Compacted
// blocks use a lighter glyph.
func (m LaneModel) strip(lane int) string {
	cells := make([]rune, stripWidth)
	for i := range cells {
		cells[i] = '·'
	}
	if m.Layout.Width > 0 {
		scale := stripWidth / m.Layout.Width
		for _, blk := range m.Lanes[lane] {
			from := int(math.Floor(blk.Left * scale))
			to := max(int(math.Ceil((blk.Left+blk.Width)*scale)), from+1)
			glyph := '█'
			if blk.Compacted {
				glyph = '▄'
			}
			for x := max(from, 0); x < min(to, stripWidth); x++ {
				cells[x] = glyph
			}
		}
	}

	var b strings.Builder
	for _, r := range cells {
		switch r {
		case '█':
			b.WriteString(stripFullStyle.Render(string(r)))
		case '▄':
			b.WriteString(stripHalfStyle.Render(string(r)))
		default:
			b.WriteString(listDimStyle.Render(string(r)))
		}
	}
	return b.String()
}

func laneTable(blocks []timeline.Block) string {
	rows := make([][]string, 0, len(blocks))
	for _, blk := range blocks {
		compacted := ""
		if blk.Compacted {
			compacted = iconSuccess
		}
		rows = append(rows, []string{
			fmt.Sprint(blk.ID),
			blk.Title,
			blk.Label,
			compacted,
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers("ID", "Title", "Period", "Compacted").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle.Padding(0, 1)
			}
			return tableCellStyle
		}).
		Render()
}

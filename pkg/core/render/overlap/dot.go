package overlap

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stacklane/pkg/core/lanes"
	"github.com/matzehuels/stacklane/pkg/core/render/timeline/layout"
)

// Options configures conflict graph rendering.
type Options struct {
	// Detailed adds the date range and compaction flag to node labels.
	// When false, only the title (or #ID) is shown.
	Detailed bool

	// ClusterLanes groups nodes into one box per lane.
	ClusterLanes bool
}

// Edge is a pair of overlapping intervals, identified by ID with From < To.
type Edge struct {
	From, To int
}

// Edges returns every overlapping pair in intervals, sorted by (From, To).
// Touching intervals produce no edges.
func Edges(intervals []lanes.Interval) []Edge {
	sorted := slices.Clone(intervals)
	slices.SortStableFunc(sorted, func(a, b lanes.Interval) int {
		return cmp.Compare(a.Start, b.Start)
	})

	var edges []Edge
	for i, a := range sorted {
		for _, b := range sorted[i+1:] {
			if b.Start >= a.End {
				break
			}
			if a.Overlaps(b) {
				edges = append(edges, Edge{From: min(a.ID, b.ID), To: max(a.ID, b.ID)})
			}
		}
	}
	slices.SortFunc(edges, func(x, y Edge) int {
		return cmp.Or(cmp.Compare(x.From, y.From), cmp.Compare(x.To, y.To))
	})
	return edges
}

// ToDOT converts a layout to an undirected Graphviz graph with one node per
// interval and one edge per overlapping pair. Nodes of compacted intervals
// are drawn dashed.
//
// Any valid lane assignment is a proper coloring of this graph, so
// adjacent nodes never share a lane.
func ToDOT(l layout.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if opts.ClusterLanes {
		for lane := range l.MaxConcurrency {
			fmt.Fprintf(&buf, "  subgraph cluster_lane_%d {\n", lane)
			fmt.Fprintf(&buf, "    label=\"lane %d\";\n", lane)
			for _, b := range l.Lane(lane) {
				fmt.Fprintf(&buf, "    %s\n", fmtNode(b, opts.Detailed))
			}
			buf.WriteString("  }\n")
		}
	} else {
		for _, b := range l.Blocks {
			fmt.Fprintf(&buf, "  %s\n", fmtNode(b, opts.Detailed))
		}
	}

	buf.WriteString("\n")
	for _, e := range Edges(l.Intervals()) {
		fmt.Fprintf(&buf, "  %s -- %s;\n", nodeID(e.From), nodeID(e.To))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtNode(b layout.Block, detailed bool) string {
	label := b.Interval.Title
	if label == "" {
		label = fmt.Sprintf("#%d", b.Interval.ID)
	}
	if detailed {
		label += fmt.Sprintf("\n%s\nlane %d", b.Label, b.Lane)
		if b.Compacted {
			label += " (compacted)"
		}
	}
	attrs := fmt.Sprintf("label=%q", label)
	if b.Compacted {
		attrs += ", style=\"rounded,filled,dashed\", fillcolor=lightgrey"
	}
	return fmt.Sprintf("%s [%s];", nodeID(b.Interval.ID), attrs)
}

// nodeID names the node of interval id. Negative IDs are quoted since a
// bare minus sign is not part of a DOT identifier.
func nodeID(id int) string {
	if id < 0 {
		return fmt.Sprintf("\"n%d\"", id)
	}
	return fmt.Sprintf("n%d", id)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// pixel-sized one anchored at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

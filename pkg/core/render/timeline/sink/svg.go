package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/stacklane/pkg/core/render/timeline/layout"
)

const (
	headerHeight = 40.0 // space above the canvas when a title is shown
	axisHeight   = 36.0 // space below the canvas for ticks and labels
	tickLength   = 6.0
	textInset    = 4.0
)

const trialCSS = `
    .trial rect { stroke-width: 1; transition: stroke-width 0.2s ease; }
    .trial:hover rect { stroke-width: 3; }
    .trial text { font-family: Helvetica, Arial, sans-serif; pointer-events: none; }
    .trial .name { font-size: 12px; font-weight: bold; }
    .trial .dates { font-size: 10px; }
    .axis line { stroke: #555; }
    .axis text { font-family: Helvetica, Arial, sans-serif; font-size: 11px; fill: #555; }
    .title { font-family: Helvetica, Arial, sans-serif; font-size: 18px; font-weight: bold; }`

// DefaultPalette colors blocks by lane, cycling when there are more lanes.
var DefaultPalette = []string{"#cfe8fc", "#fde2c8", "#d7f5d3", "#ead9fb", "#fbd3dc", "#f9f3c4"}

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	palette  []string
	stroke   string
	showAxis bool
	showText bool
	title    string
}

// WithPalette sets the lane fill colors.
func WithPalette(colors ...string) SVGOption {
	return func(r *svgRenderer) {
		if len(colors) > 0 {
			r.palette = colors
		}
	}
}

// WithStroke sets the block outline color.
func WithStroke(color string) SVGOption { return func(r *svgRenderer) { r.stroke = color } }

// WithoutAxis omits the tick axis below the canvas.
func WithoutAxis() SVGOption { return func(r *svgRenderer) { r.showAxis = false } }

// WithoutText omits block titles and date labels.
func WithoutText() SVGOption { return func(r *svgRenderer) { r.showText = false } }

// WithTitle draws a heading above the canvas. It overrides the layout title.
func WithTitle(s string) SVGOption { return func(r *svgRenderer) { r.title = s } }

// RenderSVG draws a layout as a standalone SVG document. Blocks are drawn in
// input order so later intervals sit on top of earlier ones.
func RenderSVG(l layout.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(l, opts...)
	width, height, offset := r.dimensions(l)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", trialCSS)

	if r.title != "" {
		fmt.Fprintf(&buf, `  <text class="title" x="%.1f" y="%.1f">%s</text>`+"\n",
			textInset, headerHeight*0.65, html.EscapeString(r.title))
	}

	fmt.Fprintf(&buf, `  <g class="trials" transform="translate(0, %.1f)">`+"\n", offset)
	for _, b := range l.Blocks {
		r.renderBlock(&buf, b)
	}
	buf.WriteString("  </g>\n")

	if r.showAxis {
		r.renderAxis(&buf, l, offset+l.FrameHeight)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(l layout.Layout, opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		palette:  DefaultPalette,
		stroke:   "#333333",
		showAxis: true,
		showText: true,
		title:    l.Title,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r svgRenderer) dimensions(l layout.Layout) (width, height, offset float64) {
	width, height = l.FrameWidth, l.FrameHeight
	if r.title != "" {
		offset = headerHeight
		height += headerHeight
	}
	if r.showAxis {
		height += axisHeight
	}
	return width, height, offset
}

func (r svgRenderer) renderBlock(buf *bytes.Buffer, b layout.Block) {
	fill := r.palette[b.Lane%len(r.palette)]
	class := "trial"
	if b.Compacted {
		class += " compacted"
	}
	name := b.Interval.Title
	if name == "" {
		name = fmt.Sprintf("#%d", b.Interval.ID)
	}

	fmt.Fprintf(buf, `    <g class="%s" id="trial-%d" data-lane="%d">`+"\n", class, b.Interval.ID, b.Lane)
	fmt.Fprintf(buf, "      <title>%s (%s)</title>\n", html.EscapeString(name), html.EscapeString(b.Label))
	fmt.Fprintf(buf, `      <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="%s"/>`+"\n",
		b.Rect.Left, b.Rect.Top, b.Rect.Width, b.Rect.Height, fill, r.stroke)
	if r.showText && b.Rect.Height > 0 && b.Rect.Width > 0 {
		x := b.Rect.Left + textInset
		fmt.Fprintf(buf, `      <text class="name" x="%.1f" y="%.1f">%s</text>`+"\n",
			x, b.Rect.Top+14, html.EscapeString(name))
		fmt.Fprintf(buf, `      <text class="dates" x="%.1f" y="%.1f">%s</text>`+"\n",
			x, b.Rect.Top+27, html.EscapeString(b.Label))
	}
	buf.WriteString("    </g>\n")
}

func (r svgRenderer) renderAxis(buf *bytes.Buffer, l layout.Layout, y float64) {
	fmt.Fprintf(buf, `  <g class="axis" transform="translate(0, %.1f)">`+"\n", y)
	fmt.Fprintf(buf, `    <line x1="0" y1="0" x2="%.1f" y2="0"/>`+"\n", l.FrameWidth)
	for _, t := range l.Axis.Ticks {
		fmt.Fprintf(buf, `    <line x1="%.1f" y1="0" x2="%.1f" y2="%.1f"/>`+"\n", t.X, t.X, tickLength)
		if t.Label != "" {
			fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" text-anchor="middle">%s</text>`+"\n",
				t.X, tickLength+14, html.EscapeString(t.Label))
		}
	}
	buf.WriteString("  </g>\n")
}

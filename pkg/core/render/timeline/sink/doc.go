// Package sink renders timeline layouts to output formats.
//
// [RenderSVG] draws each block as a rectangle filled by lane, with the
// interval title and its date range inside, and an axis of year ticks
// below the canvas. The output is a self-contained SVG document that can be
// converted to PNG or PDF with [render.Convert].
//
// The renderer only reads the geometry in a [layout.Layout]; it never
// recomputes lanes.
//
// [render.Convert]: github.com/matzehuels/stacklane/pkg/core/render.Convert
package sink

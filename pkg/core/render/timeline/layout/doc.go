// Package layout computes block positions for timeline visualizations.
//
// # Overview
//
// Once [lanes.Compute] has assigned every interval a lane, this package maps
// each interval to a rectangle on a fixed-size canvas and builds the
// horizontal date axis. The result is a complete [Layout] containing all
// information needed for rendering:
//
//   - Block rectangles (left, top, width, height in pixels)
//   - Lane and compaction flags per block
//   - Axis ticks and their labels
//
// # Geometry
//
// The canvas is split into MaxConcurrency horizontal bands of equal height.
// Lane 0 is the bottom band. A block spans horizontally from
// floor(start*ppu) for floor((end-start)*ppu) pixels. Vertically a
// compacted block fills its own band, while any other block reaches from
// its band up to the top of the canvas so that long intervals tower over
// the short ones stacked beside them. [LaneMargin] pixels are trimmed from
// both the top and the bottom of every block.
//
// [Map] implements the formula for one interval; [Build] applies it to a
// whole input.
//
// # Building a Layout
//
//	l, err := layout.Build(intervals, 1080, 300,
//	    layout.WithUnit(layout.UnitMonth),
//	    layout.WithLaneMargin(7),
//	)
//
// # Options
//
//   - [WithLaneMargin]: vertical gap per block side (default 7)
//   - [WithEpoch]: calendar date of value 0 (default 2000-01-01)
//   - [WithUnit]: month, day, year or none (default month)
//   - [WithPixelsPerUnit]: fixed horizontal scale
//   - [WithLabelEvery]: tick label stride (default 2)
//
// # Serialization
//
// [Layout.Export] and [Parse] convert to and from [timeline.Layout], the
// JSON form used by files, the cache and the HTTP API.
//
// [LaneMargin]: WithLaneMargin
// [lanes.Compute]: github.com/matzehuels/stacklane/pkg/core/lanes.Compute
// [timeline.Layout]: github.com/matzehuels/stacklane/pkg/timeline.Layout
package layout

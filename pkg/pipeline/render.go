package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/stacklane/pkg/core/render"
	"github.com/matzehuels/stacklane/pkg/core/render/overlap"
	"github.com/matzehuels/stacklane/pkg/core/render/timeline/layout"
	"github.com/matzehuels/stacklane/pkg/core/render/timeline/sink"
	"github.com/matzehuels/stacklane/pkg/timeline"
)

// RenderFromLayout generates artifacts in the requested formats without
// caching. The SVG is rendered at most once and reused for PNG and PDF.
func RenderFromLayout(ctx context.Context, sl timeline.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	l, err := layout.Parse(sl)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	var svg []byte
	svgOnce := func() []byte {
		if svg == nil {
			svg = sink.RenderSVG(l, svgOptions(opts)...)
		}
		return svg
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = svgOnce()
		case FormatPNG:
			data, err = render.Convert(ctx, svgOnce(), render.FormatPNG, opts.Scale)
		case FormatPDF:
			data, err = render.Convert(ctx, svgOnce(), render.FormatPDF, 0)
		case FormatJSON:
			data, err = timeline.MarshalLayout(sl)
		case FormatDOT:
			data = []byte(overlap.ToDOT(l, overlap.Options{Detailed: true, ClusterLanes: opts.ClusterLanes}))
		case FormatOverlap:
			dot := overlap.ToDOT(l, overlap.Options{Detailed: true, ClusterLanes: opts.ClusterLanes})
			data, err = overlap.RenderSVG(ctx, dot)
		default:
			err = ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func svgOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.NoAxis {
		out = append(out, sink.WithoutAxis())
	}
	return out
}

package layout

import (
	"math"

	errs "github.com/matzehuels/stacklane/pkg/errors"
)

// Rect is a block's box in canvas pixels. Top is measured from the top of
// the canvas, Y growing downward.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns Left + Width.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns Top + Height.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// CenterX returns the horizontal center of the box.
func (r Rect) CenterX() float64 { return r.Left + r.Width/2 }

// MapInput is everything [Map] needs to place one interval.
type MapInput struct {
	Start, End     float64
	Lane           int
	Compacted      bool
	MaxConcurrency int
	CanvasHeight   float64
	LaneMargin     float64
	PixelsPerUnit  float64
}

// LaneHeight returns the height of one lane band.
func LaneHeight(canvasHeight float64, maxConcurrency int) (float64, error) {
	if maxConcurrency < 1 {
		return 0, errs.New(errs.ErrCodeInvalidArgument, "max concurrency must be at least 1, got %d", maxConcurrency)
	}
	return canvasHeight / float64(maxConcurrency), nil
}

// Map converts an interval's lane placement into a canvas rectangle.
//
// Lanes stack upward from the bottom of the canvas. A compacted interval is
// confined to its own band; any other interval extends through every band
// above its lane. Height never drops below zero, even if LaneMargin is
// larger than half a band.
func Map(in MapInput) (Rect, error) {
	laneHeight, err := LaneHeight(in.CanvasHeight, in.MaxConcurrency)
	if err != nil {
		return Rect{}, err
	}

	bands := 1
	if !in.Compacted {
		bands = in.MaxConcurrency - in.Lane
	}
	height := max(0, float64(bands)*laneHeight-2*in.LaneMargin)

	return Rect{
		Left:   math.Floor(in.Start * in.PixelsPerUnit),
		Top:    in.CanvasHeight - height - float64(in.Lane)*laneHeight,
		Width:  math.Floor((in.End - in.Start) * in.PixelsPerUnit),
		Height: height,
	}, nil
}

package layout

import (
	"math"
	"time"

	"github.com/matzehuels/stacklane/pkg/core/lanes"
	errs "github.com/matzehuels/stacklane/pkg/errors"
)

// Defaults for [Build].
const (
	DefaultWidth      = 1080.0
	DefaultHeight     = 300.0
	DefaultLaneMargin = 7.0
	DefaultLabelEvery = 2
)

// Layout is a computed timeline: every interval placed in a lane and
// mapped to a canvas rectangle, plus the horizontal axis.
type Layout struct {
	FrameWidth     float64
	FrameHeight    float64
	LaneMargin     float64
	PixelsPerUnit  float64
	MaxConcurrency int
	Unit           Unit
	Epoch          time.Time
	Title          string
	Blocks         []Block // parallel to the input intervals
	Axis           Axis
}

// Block is one placed interval.
type Block struct {
	Interval  lanes.Interval
	Lane      int
	Compacted bool
	Rect      Rect
	Label     string // date range, e.g. "Jun 2000 to Mar 2004"
}

// Option configures [Build].
type Option func(*options)

type options struct {
	margin     float64
	epoch      time.Time
	unit       Unit
	ppu        float64
	labelEvery int
	title      string
}

// WithLaneMargin sets the vertical gap trimmed from each side of a block.
func WithLaneMargin(m float64) Option { return func(o *options) { o.margin = m } }

// WithEpoch sets the calendar date of axis value 0.
func WithEpoch(t time.Time) Option { return func(o *options) { o.epoch = t } }

// WithUnit sets the axis unit.
func WithUnit(u Unit) Option { return func(o *options) { o.unit = u } }

// WithPixelsPerUnit fixes the horizontal scale instead of fitting the axis
// to the frame width.
func WithPixelsPerUnit(ppu float64) Option { return func(o *options) { o.ppu = ppu } }

// WithLabelEvery labels every nth tick. Zero disables tick labels.
func WithLabelEvery(n int) Option { return func(o *options) { o.labelEvery = n } }

// WithTitle sets the layout title.
func WithTitle(s string) Option { return func(o *options) { o.title = s } }

// Build lays out intervals on a width x height canvas.
//
// Lanes come from [lanes.Compute]. Unless [WithPixelsPerUnit] is given, the
// horizontal scale fits the axis span (whole periods covering the latest
// end) to width.
func Build(intervals []lanes.Interval, width, height float64, opts ...Option) (Layout, error) {
	if !(width > 0 && height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return Layout{}, errs.New(errs.ErrCodeInvalidArgument, "canvas must have finite positive dimensions, got %vx%v", width, height)
	}
	o := options{
		margin:     DefaultLaneMargin,
		epoch:      DefaultEpoch,
		unit:       UnitMonth,
		labelEvery: DefaultLabelEvery,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if !(o.margin >= 0 && o.ppu >= 0) || math.IsInf(o.margin, 0) || math.IsInf(o.ppu, 0) {
		return Layout{}, errs.New(errs.ErrCodeInvalidArgument, "lane margin and pixels per unit must not be negative")
	}

	res, err := lanes.Compute(intervals)
	if err != nil {
		return Layout{}, err
	}

	var maxEnd float64
	for _, iv := range intervals {
		maxEnd = max(maxEnd, iv.End)
	}
	axis := buildAxis(o.unit, o.epoch, maxEnd, 0, o.labelEvery)
	ppu := o.ppu
	if ppu == 0 {
		ppu = width / axis.Span
	}
	for i := range axis.Ticks {
		axis.Ticks[i].X = axis.Ticks[i].Value * ppu
	}

	l := Layout{
		FrameWidth:     width,
		FrameHeight:    height,
		LaneMargin:     o.margin,
		PixelsPerUnit:  ppu,
		MaxConcurrency: res.MaxConcurrency,
		Unit:           o.unit,
		Epoch:          o.epoch,
		Title:          o.title,
		Blocks:         make([]Block, len(intervals)),
		Axis:           axis,
	}
	for i, iv := range intervals {
		a := res.Assignments[i]
		r, err := Map(MapInput{
			Start:          iv.Start,
			End:            iv.End,
			Lane:           a.Lane,
			Compacted:      a.Compacted,
			MaxConcurrency: res.MaxConcurrency,
			CanvasHeight:   height,
			LaneMargin:     o.margin,
			PixelsPerUnit:  ppu,
		})
		if err != nil {
			return Layout{}, err
		}
		l.Blocks[i] = Block{
			Interval:  iv,
			Lane:      a.Lane,
			Compacted: a.Compacted,
			Rect:      r,
			Label:     o.unit.RangeLabel(o.epoch, iv.Start, iv.End),
		}
	}
	return l, nil
}

// Lane returns the blocks in lane k, in input order.
func (l Layout) Lane(k int) []Block {
	var out []Block
	for _, b := range l.Blocks {
		if b.Lane == k {
			out = append(out, b)
		}
	}
	return out
}

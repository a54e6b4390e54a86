package layout

import (
	"github.com/matzehuels/stacklane/pkg/core/lanes"
	"github.com/matzehuels/stacklane/pkg/timeline"
)

// Export converts an internal layout to the serialization format.
//
// Use this when you need to serialize the layout for:
//   - JSON file output (via timeline.WriteLayoutFile)
//   - API responses
//   - Caching
func (l Layout) Export() timeline.Layout {
	out := timeline.Layout{
		Title:          l.Title,
		Width:          l.FrameWidth,
		Height:         l.FrameHeight,
		LaneMargin:     l.LaneMargin,
		PixelsPerUnit:  l.PixelsPerUnit,
		MaxConcurrency: l.MaxConcurrency,
		Unit:           string(l.Unit),
		Span:           l.Axis.Span,
		Blocks:         make([]timeline.Block, len(l.Blocks)),
		Ticks:          make([]timeline.Tick, len(l.Axis.Ticks)),
	}
	if !l.Epoch.IsZero() {
		out.Epoch = l.Epoch.Format(EpochLayout)
	}
	for i, b := range l.Blocks {
		out.Blocks[i] = timeline.Block{
			ID:        b.Interval.ID,
			Title:     b.Interval.Title,
			Start:     b.Interval.Start,
			End:       b.Interval.End,
			Lane:      b.Lane,
			Compacted: b.Compacted,
			Left:      b.Rect.Left,
			Top:       b.Rect.Top,
			Width:     b.Rect.Width,
			Height:    b.Rect.Height,
			Label:     b.Label,
		}
	}
	for i, t := range l.Axis.Ticks {
		out.Ticks[i] = timeline.Tick{Value: t.Value, X: t.X, Label: t.Label}
	}
	return out
}

// Parse converts a serialized layout to an internal layout.
//
// Use this when you need to render from a previously serialized layout:
//   - Loading from JSON file (via timeline.ReadLayoutFile)
//   - Receiving from API/cache
func Parse(s timeline.Layout) (Layout, error) {
	unit, err := ParseUnit(s.Unit)
	if err != nil {
		return Layout{}, err
	}
	epoch, err := ParseEpoch(s.Epoch)
	if err != nil {
		return Layout{}, err
	}

	l := Layout{
		FrameWidth:     s.Width,
		FrameHeight:    s.Height,
		LaneMargin:     s.LaneMargin,
		PixelsPerUnit:  s.PixelsPerUnit,
		MaxConcurrency: s.MaxConcurrency,
		Unit:           unit,
		Epoch:          epoch,
		Title:          s.Title,
		Blocks:         make([]Block, len(s.Blocks)),
		Axis:           Axis{Span: s.Span, Ticks: make([]Tick, len(s.Ticks))},
	}
	if n := len(s.Ticks); n > 0 {
		l.Axis.Periods = n - 1
	}
	for i, b := range s.Blocks {
		l.Blocks[i] = Block{
			Interval:  lanes.Interval{ID: b.ID, Start: b.Start, End: b.End, Title: b.Title},
			Lane:      b.Lane,
			Compacted: b.Compacted,
			Rect:      Rect{Left: b.Left, Top: b.Top, Width: b.Width, Height: b.Height},
			Label:     b.Label,
		}
	}
	for i, t := range s.Ticks {
		l.Axis.Ticks[i] = Tick{Value: t.Value, X: t.X, Label: t.Label}
	}
	return l, nil
}

// Intervals returns the layout's intervals in block order.
func (l Layout) Intervals() []lanes.Interval {
	out := make([]lanes.Interval, len(l.Blocks))
	for i, b := range l.Blocks {
		out[i] = b.Interval
	}
	return out
}

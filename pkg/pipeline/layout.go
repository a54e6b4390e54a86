package pipeline

import (
	"github.com/matzehuels/stacklane/pkg/core/render/timeline/layout"
	errs "github.com/matzehuels/stacklane/pkg/errors"
	"github.com/matzehuels/stacklane/pkg/timeline"
)

// GenerateLayout lays out a document without caching.
func GenerateLayout(doc *timeline.Document, opts Options) (timeline.Layout, error) {
	if doc == nil {
		return timeline.Layout{}, errs.New(errs.ErrCodeInvalidInput, "no timeline document")
	}
	if err := opts.ValidateForLayout(); err != nil {
		return timeline.Layout{}, err
	}

	intervals, err := doc.LaneIntervals()
	if err != nil {
		return timeline.Layout{}, err
	}

	unitName, epochStr := opts.resolve(doc)
	unit, err := layout.ParseUnit(unitName)
	if err != nil {
		return timeline.Layout{}, err
	}
	epoch, err := layout.ParseEpoch(epochStr)
	if err != nil {
		return timeline.Layout{}, err
	}

	l, err := layout.Build(intervals, opts.Width, opts.Height,
		layout.WithLaneMargin(*opts.LaneMargin),
		layout.WithUnit(unit),
		layout.WithEpoch(epoch),
		layout.WithLabelEvery(opts.LabelEvery),
		layout.WithTitle(doc.Title),
	)
	if err != nil {
		return timeline.Layout{}, err
	}
	return l.Export(), nil
}

func layoutStats(l timeline.Layout) Stats {
	s := Stats{Intervals: len(l.Blocks), MaxConcurrency: l.MaxConcurrency}
	for _, b := range l.Blocks {
		if b.Compacted {
			s.Compacted++
		}
	}
	return s
}

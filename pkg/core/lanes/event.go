package lanes

import (
	"cmp"
	"slices"
)

// Event is one endpoint of an interval in sweep order.
type Event struct {
	Value      float64 `json:"value"`
	IntervalID int     `json:"interval_id"`
	IsStart    bool    `json:"is_start"`

	// pos is the interval's position in the input, used to keep the start
	// and end of a zero-length interval adjacent.
	pos int
	// point marks events of zero-length intervals.
	point bool
}

// Kind returns "start" or "end".
func (e Event) Kind() string {
	if e.IsStart {
		return "start"
	}
	return "end"
}

// rank orders events sharing a value: ends, then zero-length intervals,
// then starts.
func (e Event) rank() int {
	switch {
	case e.point:
		return 1
	case e.IsStart:
		return 2
	default:
		return 0
	}
}

// Events returns the endpoint events of intervals in the order [Compute]
// sweeps them. The input is not validated.
func Events(intervals []Interval) []Event {
	events := make([]Event, 0, 2*len(intervals))
	for i, iv := range intervals {
		point := iv.Start == iv.End
		events = append(events,
			Event{Value: iv.Start, IntervalID: iv.ID, IsStart: true, pos: i, point: point},
			Event{Value: iv.End, IntervalID: iv.ID, IsStart: false, pos: i, point: point},
		)
	}
	slices.SortStableFunc(events, compareEvents)
	return events
}

func compareEvents(a, b Event) int {
	if c := cmp.Compare(a.Value, b.Value); c != 0 {
		return c
	}
	if c := cmp.Compare(a.rank(), b.rank()); c != 0 {
		return c
	}
	if !a.point {
		return 0
	}
	// Zero-length intervals at the same value: one interval at a time,
	// start before end.
	if c := cmp.Compare(a.pos, b.pos); c != 0 {
		return c
	}
	switch {
	case a.IsStart == b.IsStart:
		return 0
	case a.IsStart:
		return -1
	default:
		return 1
	}
}

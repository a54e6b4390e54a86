package lanes

import (
	"math"

	errs "github.com/matzehuels/stacklane/pkg/errors"
)

// Interval is a closed-open range [Start, End) on an ordinal axis.
// ID must be unique within one call to [Compute].
type Interval struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Title string  `json:"title,omitempty"`
}

// Len returns End - Start.
func (iv Interval) Len() float64 { return iv.End - iv.Start }

// Overlaps reports whether iv and other are both active at some instant.
// Touching intervals do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Assignment is the placement of one interval.
type Assignment struct {
	ID        int  `json:"id"`
	Lane      int  `json:"lane"`
	Compacted bool `json:"compacted"`
}

// Result is the output of [Compute].
//
// Assignments is parallel to the input slice: Assignments[i] belongs to
// intervals[i]. Use [Result.Assignment] to look one up by ID.
type Result struct {
	Assignments    []Assignment `json:"assignments"`
	MaxConcurrency int          `json:"max_concurrency"`

	byID map[int]int
}

// Len returns the number of assigned intervals.
func (r *Result) Len() int { return len(r.Assignments) }

// Assignment returns the placement of the interval with the given ID.
func (r *Result) Assignment(id int) (Assignment, bool) {
	if r.byID == nil {
		r.index()
	}
	i, ok := r.byID[id]
	if !ok {
		return Assignment{}, false
	}
	return r.Assignments[i], true
}

// Lanes groups interval IDs by lane, in input order within each lane.
// The returned slice has MaxConcurrency entries.
func (r *Result) Lanes() [][]int {
	out := make([][]int, r.MaxConcurrency)
	for _, a := range r.Assignments {
		out[a.Lane] = append(out[a.Lane], a.ID)
	}
	return out
}

func (r *Result) index() {
	r.byID = make(map[int]int, len(r.Assignments))
	for i, a := range r.Assignments {
		r.byID[a.ID] = i
	}
}

// Validate checks that every interval has finite bounds with Start <= End
// and that IDs are unique. Errors carry [errs.ErrCodeInvalidInterval].
func Validate(intervals []Interval) error {
	seen := make(map[int]struct{}, len(intervals))
	for _, iv := range intervals {
		if math.IsNaN(iv.Start) || math.IsNaN(iv.End) || math.IsInf(iv.Start, 0) || math.IsInf(iv.End, 0) {
			return errs.New(errs.ErrCodeInvalidInterval, "interval %d: bounds must be finite", iv.ID)
		}
		if iv.Start > iv.End {
			return errs.New(errs.ErrCodeInvalidInterval, "interval %d: start %v is after end %v", iv.ID, iv.Start, iv.End)
		}
		if _, dup := seen[iv.ID]; dup {
			return errs.New(errs.ErrCodeInvalidInterval, "interval %d: duplicate id", iv.ID)
		}
		seen[iv.ID] = struct{}{}
	}
	return nil
}

// FromRanges builds intervals from bare [start, end] pairs, numbering them
// by position.
func FromRanges(ranges [][2]float64) []Interval {
	out := make([]Interval, len(ranges))
	for i, r := range ranges {
		out[i] = Interval{ID: i, Start: r[0], End: r[1]}
	}
	return out
}

// Compute assigns a lane and compaction flag to every interval and reports
// the maximum number of simultaneously active intervals.
//
// The batch is rejected as a whole if any interval is invalid; see
// [Validate]. An empty input yields an empty Result with MaxConcurrency 0.
func Compute(intervals []Interval) (*Result, error) {
	if err := Validate(intervals); err != nil {
		return nil, err
	}

	res := &Result{Assignments: make([]Assignment, len(intervals))}
	pos := make(map[int]int, len(intervals))
	for i, iv := range intervals {
		res.Assignments[i].ID = iv.ID
		pos[iv.ID] = i
	}

	var (
		active    int
		freeLanes []int
		prev      *Event
	)
	events := Events(intervals)
	for i := range events {
		ev := &events[i]
		cur := &res.Assignments[pos[ev.IntervalID]]

		if ev.IsStart {
			active++
			res.MaxConcurrency = max(res.MaxConcurrency, active)

			if prev != nil && prev.IsStart {
				res.Assignments[pos[prev.IntervalID]].Compacted = true
			}

			if n := len(freeLanes); n > 0 {
				cur.Lane = freeLanes[n-1]
				freeLanes = freeLanes[:n-1]
			} else {
				cur.Lane = active - 1
			}
		} else {
			active--
			freeLanes = append(freeLanes, cur.Lane)

			if prev != nil && !prev.IsStart {
				cur.Compacted = true
			}
		}
		prev = ev
	}

	res.index()
	return res, nil
}

// Package lanes assigns stacking lanes to intervals on a timeline.
//
// # Overview
//
// A timeline that draws intervals as horizontal bars needs to stack bars
// that overlap in time so they never collide. [Compute] performs a single
// sweep over the interval endpoints and returns, for every interval:
//
//   - Lane: the 0-based vertical slot the interval occupies
//   - Compacted: whether the interval is sandwiched between neighbours and
//     must stay within its own lane band
//
// together with MaxConcurrency, the largest number of intervals active at
// any instant. MaxConcurrency is also the number of lanes used: lanes freed
// by ending intervals are reused last-in first-out, so no assignment can use
// fewer lanes.
//
// # Event Ordering
//
// Endpoints are sorted by value. When an end and a start share a value, the
// end comes first: an interval closing at T releases its lane before an
// interval opening at T claims one, so touching intervals [0,10) and [10,20)
// share lane 0. Equal events of the same kind keep input order.
//
// Zero-length intervals (Start == End) are swept as a start immediately
// followed by their own end, after every other end and before every other
// start at the same value.
//
// # Compaction
//
// Compaction is a local heuristic over adjacent events:
//
//   - two consecutive starts compact the earlier interval
//   - two consecutive ends compact the later interval
//
// An interval can overlap others without being compacted when its
// neighbouring events alternate.
//
// # Usage
//
//	res, err := lanes.Compute([]lanes.Interval{
//	    {ID: 0, Start: 5, End: 50, Title: "Study of Bendamustine"},
//	    {ID: 1, Start: 55, End: 85, Title: "ASCT With Nivolumab"},
//	})
//	if err != nil {
//	    return err
//	}
//	a, _ := res.Assignment(1)
//	fmt.Println(a.Lane, res.MaxConcurrency)
//
// Compute is pure: it keeps no state between calls, never mutates its input
// and is safe for concurrent use.
package lanes

package layout

import (
	"fmt"
	"math"
	"strconv"
	"time"

	errs "github.com/matzehuels/stacklane/pkg/errors"
)

// Unit says what one step on the interval axis means.
type Unit string

const (
	UnitMonth Unit = "month" // months since the epoch (default)
	UnitDay   Unit = "day"   // days since the epoch
	UnitYear  Unit = "year"  // years since the epoch
	UnitNone  Unit = "none"  // plain numbers, no calendar labels
)

// DefaultEpoch is the calendar date of axis value 0.
var DefaultEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// EpochLayout is the date format of serialized epochs.
const EpochLayout = "2006-01-02"

// maxTicks bounds the tick count; longer axes widen the period instead.
const maxTicks = 1000

// ParseEpoch parses a YYYY-MM-DD epoch. The empty string means [DefaultEpoch].
func ParseEpoch(s string) (time.Time, error) {
	if s == "" {
		return DefaultEpoch, nil
	}
	t, err := time.Parse(EpochLayout, s)
	if err != nil {
		return time.Time{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid epoch %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// ParseUnit validates a unit name. The empty string means [UnitMonth].
func ParseUnit(s string) (Unit, error) {
	switch u := Unit(s); u {
	case "":
		return UnitMonth, nil
	case UnitMonth, UnitDay, UnitYear, UnitNone:
		return u, nil
	default:
		return "", errs.New(errs.ErrCodeInvalidArgument, "invalid unit: %q (must be one of: month, day, year, none)", s)
	}
}

// period is the number of units between two ticks.
func (u Unit) period() float64 {
	switch u {
	case UnitDay:
		return 7
	case UnitYear:
		return 1
	default:
		return 12
	}
}

// Date returns the calendar date of axis value v. Fractions are truncated.
func (u Unit) Date(epoch time.Time, v float64) time.Time {
	n := int(math.Floor(v))
	switch u {
	case UnitDay:
		return epoch.AddDate(0, 0, n)
	case UnitYear:
		return epoch.AddDate(n, 0, 0)
	default:
		return epoch.AddDate(0, n, 0)
	}
}

// Format renders axis value v for display.
func (u Unit) Format(epoch time.Time, v float64) string {
	switch u {
	case UnitNone:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case UnitDay:
		return u.Date(epoch, v).Format("Jan 2 2006")
	case UnitYear:
		return u.Date(epoch, v).Format("2006")
	default:
		return u.Date(epoch, v).Format("Jan 2006")
	}
}

// RangeLabel renders an interval's date range, e.g. "Jun 2000 to Mar 2004".
func (u Unit) RangeLabel(epoch time.Time, start, end float64) string {
	return fmt.Sprintf("%s to %s", u.Format(epoch, start), u.Format(epoch, end))
}

// Tick is one mark on the horizontal axis.
type Tick struct {
	Value float64 // axis value
	X     float64 // canvas position
	Label string  // empty for unlabelled ticks
}

// Axis describes the horizontal extent of a timeline.
type Axis struct {
	Periods int     // whole tick periods covered
	Span    float64 // axis length in units (Periods * period)
	Ticks   []Tick
}

// buildAxis covers [0, maxEnd] with whole periods, one more unit than
// maxEnd so an interval ending exactly on a boundary has room to its right.
func buildAxis(u Unit, epoch time.Time, maxEnd, ppu float64, labelEvery int) Axis {
	period := u.period()
	if u == UnitNone {
		period = niceStep((maxEnd + 1) / 10)
	} else if (maxEnd+1)/period > maxTicks {
		period *= niceStep((maxEnd + 1) / (period * maxTicks))
	}
	periods := max(1, int(math.Ceil((maxEnd+1)/period)))

	ticks := make([]Tick, 0, periods+1)
	for i := 0; i <= periods; i++ {
		v := float64(i) * period
		t := Tick{Value: v, X: v * ppu}
		if labelEvery > 0 && i%labelEvery == 0 {
			t.Label = u.tickLabel(epoch, v)
		}
		ticks = append(ticks, t)
	}
	return Axis{Periods: periods, Span: float64(periods) * period, Ticks: ticks}
}

func (u Unit) tickLabel(epoch time.Time, v float64) string {
	switch u {
	case UnitMonth, UnitYear:
		return u.Date(epoch, v).Format("2006")
	default:
		return u.Format(epoch, v)
	}
}

// niceStep rounds x up to 1, 2 or 5 times a power of ten.
func niceStep(x float64) float64 {
	if x <= 0 {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(x)))
	for _, m := range []float64{1, 2, 5, 10} {
		if x <= m*exp {
			return m * exp
		}
	}
	return 10 * exp
}

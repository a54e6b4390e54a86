package layout

import (
	"math"
	"testing"
	"time"

	"github.com/matzehuels/stacklane/pkg/core/lanes"
	errs "github.com/matzehuels/stacklane/pkg/errors"
	"github.com/matzehuels/stacklane/pkg/timeline"
)

func trials() []lanes.Interval {
	return []lanes.Interval{
		{ID: 0, Start: 5, End: 50, Title: "Study of Bendamustine"},
		{ID: 1, Start: 55, End: 85, Title: "ASCT With Nivolumab"},
		{ID: 2, Start: 70, End: 100, Title: "Study of Stockolm"},
		{ID: 3, Start: 90, End: 115, Title: "Bortezomib"},
	}
}

func TestBuild(t *testing.T) {
	l, err := Build(trials(), DefaultWidth, DefaultHeight)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if l.MaxConcurrency != 2 {
		t.Errorf("MaxConcurrency = %d, want 2", l.MaxConcurrency)
	}
	if l.Axis.Span != 120 {
		t.Errorf("Axis.Span = %v, want 120", l.Axis.Span)
	}
	if l.PixelsPerUnit != 9 {
		t.Errorf("PixelsPerUnit = %v, want 9", l.PixelsPerUnit)
	}

	want := []Rect{
		{Left: 45, Top: 14, Width: 405, Height: 286},
		{Left: 495, Top: 164, Width: 270, Height: 136},
		{Left: 630, Top: 14, Width: 270, Height: 136},
		{Left: 810, Top: 164, Width: 225, Height: 136},
	}
	for i, b := range l.Blocks {
		if b.Rect != want[i] {
			t.Errorf("block %d Rect = %+v, want %+v", i, b.Rect, want[i])
		}
	}
	if got := l.Blocks[0].Label; got != "Jun 2000 to Mar 2004" {
		t.Errorf("block 0 Label = %q, want %q", got, "Jun 2000 to Mar 2004")
	}
}

func TestBuildAxis(t *testing.T) {
	l, err := Build(trials(), DefaultWidth, DefaultHeight)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Axis.Ticks) != 11 {
		t.Fatalf("len(Ticks) = %d, want 11", len(l.Axis.Ticks))
	}
	for i, tk := range l.Axis.Ticks {
		if tk.X != float64(i)*108 {
			t.Errorf("tick %d X = %v, want %v", i, tk.X, float64(i)*108)
		}
		labelled := tk.Label != ""
		if labelled != (i%2 == 0) {
			t.Errorf("tick %d label = %q", i, tk.Label)
		}
	}
	if got := l.Axis.Ticks[2].Label; got != "2002" {
		t.Errorf("tick 2 label = %q, want 2002", got)
	}
}

func TestBuildOptions(t *testing.T) {
	epoch := time.Date(2010, time.March, 1, 0, 0, 0, 0, time.UTC)
	l, err := Build(trials(), 500, 100,
		WithLaneMargin(0),
		WithPixelsPerUnit(2),
		WithEpoch(epoch),
		WithUnit(UnitDay),
		WithLabelEvery(0),
		WithTitle("t"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if l.PixelsPerUnit != 2 {
		t.Errorf("PixelsPerUnit = %v, want 2", l.PixelsPerUnit)
	}
	if l.Title != "t" {
		t.Errorf("Title = %q", l.Title)
	}
	if b := l.Blocks[0]; b.Rect.Left != 10 || b.Rect.Height != 100 {
		t.Errorf("block 0 Rect = %+v", b.Rect)
	}
	for _, tk := range l.Axis.Ticks {
		if tk.Label != "" {
			t.Errorf("unexpected tick label %q", tk.Label)
		}
	}
	if got := l.Blocks[0].Label; got != "Mar 6 2010 to Apr 20 2010" {
		t.Errorf("Label = %q", got)
	}
}

func TestBuildEmpty(t *testing.T) {
	l, err := Build(nil, 100, 100)
	if err != nil {
		t.Fatalf("Build(nil) error: %v", err)
	}
	if len(l.Blocks) != 0 || l.MaxConcurrency != 0 {
		t.Errorf("Build(nil) = %d blocks, max %d", len(l.Blocks), l.MaxConcurrency)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name      string
		intervals []lanes.Interval
		w, h      float64
		opts      []Option
		code      errs.Code
	}{
		{"zero width", trials(), 0, 100, nil, errs.ErrCodeInvalidArgument},
		{"negative margin", trials(), 100, 100, []Option{WithLaneMargin(-1)}, errs.ErrCodeInvalidArgument},
		{"bad interval", []lanes.Interval{{ID: 0, Start: 5, End: 1}}, 100, 100, nil, errs.ErrCodeInvalidInterval},
		{"NaN width", trials(), math.NaN(), 100, nil, errs.ErrCodeInvalidArgument},
		{"infinite height", trials(), 100, math.Inf(1), nil, errs.ErrCodeInvalidArgument},
		{"NaN margin", trials(), 100, 100, []Option{WithLaneMargin(math.NaN())}, errs.ErrCodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.intervals, tt.w, tt.h, tt.opts...)
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestLayoutLane(t *testing.T) {
	l, err := Build(trials(), DefaultWidth, DefaultHeight)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(l.Lane(0)); got != 3 {
		t.Errorf("len(Lane(0)) = %d, want 3", got)
	}
	if got := l.Lane(1); len(got) != 1 || got[0].Interval.ID != 2 {
		t.Errorf("Lane(1) = %+v", got)
	}
}

func TestRoundTrip(t *testing.T) {
	orig, err := Build(trials(), DefaultWidth, DefaultHeight, WithTitle("Clinical trials"))
	if err != nil {
		t.Fatal(err)
	}
	data, err := timeline.MarshalLayout(orig.Export())
	if err != nil {
		t.Fatal(err)
	}
	s, err := timeline.UnmarshalLayout(data)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if got.Title != orig.Title || got.MaxConcurrency != orig.MaxConcurrency || got.Unit != orig.Unit {
		t.Errorf("header mismatch: got %+v", got)
	}
	if !got.Epoch.Equal(orig.Epoch) {
		t.Errorf("Epoch = %v, want %v", got.Epoch, orig.Epoch)
	}
	if got.Axis.Periods != orig.Axis.Periods {
		t.Errorf("Periods = %d, want %d", got.Axis.Periods, orig.Axis.Periods)
	}
	for i := range orig.Blocks {
		if got.Blocks[i] != orig.Blocks[i] {
			t.Errorf("block %d = %+v, want %+v", i, got.Blocks[i], orig.Blocks[i])
		}
	}
}

func TestParseInvalidUnit(t *testing.T) {
	_, err := Parse(timeline.Layout{Width: 1, Height: 1, Unit: "fortnight"})
	if err == nil {
		t.Fatal("expected error for unknown unit")
	}
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in      string
		want    Unit
		wantErr bool
	}{
		{"", UnitMonth, false},
		{"month", UnitMonth, false},
		{"day", UnitDay, false},
		{"year", UnitYear, false},
		{"none", UnitNone, false},
		{"week", "", true},
	}
	for _, tt := range tests {
		got, err := ParseUnit(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseUnit(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseUnit(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnitFormat(t *testing.T) {
	tests := []struct {
		unit Unit
		v    float64
		want string
	}{
		{UnitMonth, 0, "Jan 2000"},
		{UnitMonth, 50, "Mar 2004"},
		{UnitMonth, 5.9, "Jun 2000"},
		{UnitDay, 31, "Feb 1 2000"},
		{UnitYear, 3, "2003"},
		{UnitNone, 2.5, "2.5"},
	}
	for _, tt := range tests {
		if got := tt.unit.Format(DefaultEpoch, tt.v); got != tt.want {
			t.Errorf("%s.Format(%v) = %q, want %q", tt.unit, tt.v, got, tt.want)
		}
	}
}

func TestNiceStep(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 1},
		{0.3, 0.5},
		{1, 1},
		{1.5, 2},
		{3, 5},
		{7, 10},
		{11.6, 20},
	}
	for _, tt := range tests {
		if got := niceStep(tt.in); got != tt.want {
			t.Errorf("niceStep(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBuildUnitNone(t *testing.T) {
	l, err := Build([]lanes.Interval{{ID: 0, Start: 0, End: 99}}, 1000, 100, WithUnit(UnitNone))
	if err != nil {
		t.Fatal(err)
	}
	if l.Axis.Span != 100 {
		t.Errorf("Span = %v, want 100", l.Axis.Span)
	}
	if l.Blocks[0].Label != "0 to 99" {
		t.Errorf("Label = %q", l.Blocks[0].Label)
	}
}

func TestBuildBoundsTicks(t *testing.T) {
	for _, u := range []Unit{UnitDay, UnitMonth, UnitYear, UnitNone} {
		l, err := Build([]lanes.Interval{{ID: 0, Start: 0, End: 1e12}}, 1080, 300, WithUnit(u))
		if err != nil {
			t.Fatalf("%s: %v", u, err)
		}
		if n := len(l.Axis.Ticks); n > maxTicks+1 {
			t.Errorf("%s: got %d ticks, want at most %d", u, n, maxTicks+1)
		}
		if l.Axis.Span < 1e12 {
			t.Errorf("%s: Span = %v does not cover the interval", u, l.Axis.Span)
		}
		if r := l.Blocks[0].Rect; r.Width > 1080 {
			t.Errorf("%s: block width %v exceeds the frame", u, r.Width)
		}
	}
}

func TestBuildWidensPeriodInWholeUnits(t *testing.T) {
	l, err := Build([]lanes.Interval{{ID: 0, Start: 0, End: 100000}}, 1080, 300, WithUnit(UnitDay))
	if err != nil {
		t.Fatal(err)
	}
	step := l.Axis.Ticks[1].Value - l.Axis.Ticks[0].Value
	if step <= 7 || int(step)%7 != 0 {
		t.Errorf("tick step = %v, want a multiple of a week above one week", step)
	}
}

func TestParseEpoch(t *testing.T) {
	got, err := ParseEpoch("")
	if err != nil || !got.Equal(DefaultEpoch) {
		t.Errorf("ParseEpoch(\"\") = %v, %v; want DefaultEpoch", got, err)
	}

	got, err = ParseEpoch("2015-06-01")
	if err != nil {
		t.Fatal(err)
	}
	if got.Year() != 2015 || got.Month() != time.June {
		t.Errorf("epoch = %v", got)
	}

	if _, err := ParseEpoch("June 2015"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

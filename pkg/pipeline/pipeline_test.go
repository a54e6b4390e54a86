package pipeline

import (
	"math"
	"reflect"
	"testing"

	"github.com/matzehuels/stacklane/pkg/cache"
	errs "github.com/matzehuels/stacklane/pkg/errors"
	"github.com/matzehuels/stacklane/pkg/timeline"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"overlap", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && errs.GetCode(err) != errs.ErrCodeInvalidFormat {
			t.Errorf("ValidateFormat(%q) code = %v, want INVALID_FORMAT", tt.format, errs.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{"svg", []string{"svg"}, false},
		{"svg,json", []string{"svg", "json"}, false},
		{" SVG , png ,svg", []string{"svg", "png"}, false},
		{"", nil, false},
		{"svg,,json", []string{"svg", "json"}, false},
		{"svg,gif", nil, true},
	}

	for _, tt := range tests {
		got, err := ParseFormats(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormats(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"svg":     ".svg",
		"png":     ".png",
		"json":    ".layout.json",
		"overlap": ".overlap.svg",
	}
	for format, want := range tests {
		if got := Extension(format); got != want {
			t.Errorf("Extension(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestSetLayoutDefaults(t *testing.T) {
	var opts Options
	opts.SetLayoutDefaults()

	if opts.Width != DefaultWidth {
		t.Errorf("Width = %v, want %v", opts.Width, DefaultWidth)
	}
	if opts.Height != DefaultHeight {
		t.Errorf("Height = %v, want %v", opts.Height, DefaultHeight)
	}
	if opts.LaneMargin == nil || *opts.LaneMargin != DefaultLaneMargin {
		t.Errorf("LaneMargin = %v, want %v", opts.LaneMargin, DefaultLaneMargin)
	}
	if opts.LabelEvery != DefaultLabelEvery {
		t.Errorf("LabelEvery = %d, want %d", opts.LabelEvery, DefaultLabelEvery)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}
}

func TestSetLayoutDefaultsKeepsZeroMargin(t *testing.T) {
	zero := 0.0
	opts := Options{LaneMargin: &zero}
	opts.SetLayoutDefaults()
	if *opts.LaneMargin != 0 {
		t.Errorf("explicit zero margin replaced with %v", *opts.LaneMargin)
	}
}

func TestSetRenderDefaults(t *testing.T) {
	var opts Options
	opts.SetRenderDefaults()

	if !reflect.DeepEqual(opts.Formats, []string{"svg"}) {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %v, want %v", opts.Scale, DefaultScale)
	}
}

func TestOptionsValidateForLayout(t *testing.T) {
	neg := -1.0
	nan := math.NaN()
	tests := []struct {
		name string
		opts Options
		code errs.Code
	}{
		{"defaults", Options{}, ""},
		{"negative width", Options{Width: -10}, errs.ErrCodeInvalidArgument},
		{"negative height", Options{Height: -1}, errs.ErrCodeInvalidArgument},
		{"negative margin", Options{LaneMargin: &neg}, errs.ErrCodeInvalidArgument},
		{"negative label every", Options{LabelEvery: -2}, errs.ErrCodeInvalidArgument},
		{"bad unit", Options{Unit: "fortnight"}, errs.ErrCodeInvalidArgument},
		{"NaN width", Options{Width: math.NaN()}, errs.ErrCodeInvalidArgument},
		{"infinite height", Options{Height: math.Inf(1)}, errs.ErrCodeInvalidArgument},
		{"NaN margin", Options{LaneMargin: &nan}, errs.ErrCodeInvalidArgument},
		{"year unit", Options{Unit: "year"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLayout()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v", got, tt.code)
			}
		})
	}
}

func TestOptionsValidateForRender(t *testing.T) {
	opts := Options{Formats: []string{"svg", "gif"}}
	if err := opts.ValidateForRender(); err == nil {
		t.Error("expected error for gif")
	}

	opts = Options{Scale: -1}
	if err := opts.ValidateForRender(); err == nil {
		t.Error("expected error for negative scale")
	}

	opts = Options{Scale: math.Inf(1)}
	if err := opts.ValidateForRender(); errs.GetCode(err) != errs.ErrCodeInvalidArgument {
		t.Errorf("infinite scale: code = %v, want INVALID_ARGUMENT", errs.GetCode(err))
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Formats: []string{"json"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("first call: %v", err)
	}
	first := opts
	firstMargin := *opts.LaneMargin
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if opts.Width != first.Width || opts.Height != first.Height || *opts.LaneMargin != firstMargin {
		t.Errorf("options changed on second call: %+v vs %+v", opts, first)
	}
	if !reflect.DeepEqual(opts.Formats, first.Formats) {
		t.Errorf("formats changed: %v vs %v", opts.Formats, first.Formats)
	}
}

func TestLayoutKeyOptsResolvesDocument(t *testing.T) {
	doc := timeline.Sample()

	var a Options
	a.SetLayoutDefaults()
	b := a
	b.Unit = "month"
	b.Epoch = "2000-01-01"

	if a.LayoutKeyOpts(doc) != b.LayoutKeyOpts(doc) {
		t.Error("override equal to the document value should key identically")
	}

	c := a
	c.Unit = "year"
	if a.LayoutKeyOpts(doc) == c.LayoutKeyOpts(doc) {
		t.Error("different unit should change key options")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Scale: 3, NoAxis: true, ClusterLanes: true}

	if k := opts.ArtifactKeyOpts("png"); k.Scale != 3 || !k.NoAxis || k.Cluster {
		t.Errorf("png key = %+v", k)
	}
	if k := opts.ArtifactKeyOpts("svg"); k.Scale != 0 || !k.NoAxis {
		t.Errorf("svg key = %+v", k)
	}
	if k := opts.ArtifactKeyOpts("dot"); !k.Cluster || k.NoAxis {
		t.Errorf("dot key = %+v", k)
	}
	if k := opts.ArtifactKeyOpts("json"); k != (cache.ArtifactKeyOpts{Format: "json"}) {
		t.Errorf("json key = %+v, want format only", k)
	}
}

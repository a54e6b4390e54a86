package sink

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/stacklane/pkg/core/lanes"
	"github.com/matzehuels/stacklane/pkg/core/render/timeline/layout"
)

func buildTrials(t *testing.T, opts ...layout.Option) layout.Layout {
	t.Helper()
	l, err := layout.Build([]lanes.Interval{
		{ID: 0, Start: 5, End: 50, Title: "Study of Bendamustine"},
		{ID: 1, Start: 55, End: 85, Title: "ASCT <With> Nivolumab"},
		{ID: 2, Start: 70, End: 100},
		{ID: 3, Start: 90, End: 115, Title: "Bortezomib"},
	}, 1080, 300, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestRenderSVGWellFormed(t *testing.T) {
	svg := RenderSVG(buildTrials(t, layout.WithTitle("Trials & more")))
	dec := xml.NewDecoder(strings.NewReader(string(svg)))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("invalid XML: %v\n%s", err, svg)
		}
	}
}

func TestRenderSVGBlocks(t *testing.T) {
	svg := string(RenderSVG(buildTrials(t)))

	if got := strings.Count(svg, "<rect "); got != 4 {
		t.Errorf("rect count = %d, want 4", got)
	}
	for _, want := range []string{
		`id="trial-0" data-lane="0"`,
		`class="trial compacted" id="trial-1"`,
		`id="trial-2" data-lane="1"`,
		`<rect x="45.0" y="14.0" width="405.0" height="286.0"`,
		`ASCT &lt;With&gt; Nivolumab`,
		`>#2<`,
		`Jun 2000 to Mar 2004`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
}

func TestRenderSVGDimensions(t *testing.T) {
	tests := []struct {
		name string
		l    layout.Layout
		opts []SVGOption
		want string
	}{
		{"default", buildTrials(t), nil, `width="1080" height="336"`},
		{"title", buildTrials(t, layout.WithTitle("x")), nil, `width="1080" height="376"`},
		{"no axis", buildTrials(t), []SVGOption{WithoutAxis()}, `width="1080" height="300"`},
		{"title option", buildTrials(t), []SVGOption{WithTitle("y"), WithoutAxis()}, `width="1080" height="340"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svg := string(RenderSVG(tt.l, tt.opts...))
			if !strings.Contains(svg, tt.want) {
				t.Errorf("SVG header missing %q:\n%s", tt.want, svg[:120])
			}
		})
	}
}

func TestRenderSVGOptions(t *testing.T) {
	svg := string(RenderSVG(buildTrials(t), WithPalette("red", "blue"), WithStroke("black"), WithoutText()))
	if !strings.Contains(svg, `fill="red" stroke="black"`) || !strings.Contains(svg, `fill="blue"`) {
		t.Error("palette or stroke not applied")
	}
	if strings.Contains(svg, `class="name"`) {
		t.Error("WithoutText still rendered block text")
	}
}

func TestRenderSVGAxis(t *testing.T) {
	svg := string(RenderSVG(buildTrials(t)))
	for _, year := range []string{">2000<", ">2002<", ">2010<"} {
		if !strings.Contains(svg, year) {
			t.Errorf("axis missing label %s", year)
		}
	}
	if strings.Contains(svg, ">2001<") {
		t.Error("odd years should not be labelled")
	}
}

func TestRenderSVGEmpty(t *testing.T) {
	l, err := layout.Build(nil, 200, 100)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(RenderSVG(l))
	if strings.Contains(svg, "<rect") {
		t.Error("empty layout rendered blocks")
	}
}

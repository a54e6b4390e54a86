package timeline

import (
	"path/filepath"
	"testing"
)

func testLayout() Layout {
	return Layout{
		Title:          "T",
		Width:          100,
		Height:         50,
		LaneMargin:     2,
		PixelsPerUnit:  1,
		MaxConcurrency: 2,
		Unit:           "none",
		Span:           100,
		Blocks: []Block{
			{ID: 0, Start: 0, End: 10, Lane: 0, Left: 0, Top: 2, Width: 10, Height: 46},
			{ID: 1, Start: 5, End: 8, Lane: 1, Compacted: true, Left: 5, Top: 2, Width: 3, Height: 21},
		},
		Ticks: []Tick{{Value: 0, X: 0, Label: "0"}},
	}
}

func TestLayoutFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteLayoutFile(testLayout(), path); err != nil {
		t.Fatalf("WriteLayoutFile() error: %v", err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile() error: %v", err)
	}
	want := testLayout()
	if got.Title != want.Title || got.MaxConcurrency != want.MaxConcurrency || len(got.Blocks) != 2 {
		t.Fatalf("got %+v", got)
	}
	for i := range want.Blocks {
		if got.Blocks[i] != want.Blocks[i] {
			t.Errorf("block %d = %+v, want %+v", i, got.Blocks[i], want.Blocks[i])
		}
	}
}

func TestUnmarshalLayoutInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "nope"},
		{"zero size", `{"width":0,"height":10,"blocks":[]}`},
		{"missing concurrency", `{"width":10,"height":10,"blocks":[{"id":0,"lane":0}]}`},
		{"lane out of range", `{"width":10,"height":10,"max_concurrency":1,"blocks":[{"id":0,"lane":1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UnmarshalLayout([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReadLayoutFileMissing(t *testing.T) {
	if _, err := ReadLayoutFile(filepath.Join(t.TempDir(), "x.json")); err == nil {
		t.Error("expected error")
	}
}

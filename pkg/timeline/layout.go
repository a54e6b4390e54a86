package timeline

import (
	"encoding/json"
	"fmt"
	"os"
)

// Layout is the serialization format for a laid-out timeline.
//
// Block coordinates are canvas pixels with the origin at the top-left;
// Ticks are positions on the horizontal axis below the canvas. The
// internal representation used during computation lives in
// pkg/core/render/timeline/layout; use its Export and Parse to convert.
type Layout struct {
	Title          string  `json:"title,omitempty"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	LaneMargin     float64 `json:"lane_margin"`
	PixelsPerUnit  float64 `json:"pixels_per_unit"`
	MaxConcurrency int     `json:"max_concurrency"`
	Unit           string  `json:"unit,omitempty"`
	Epoch          string  `json:"epoch,omitempty"`
	Span           float64 `json:"span"`

	Blocks []Block `json:"blocks"`
	Ticks  []Tick  `json:"ticks,omitempty"`
}

// Block is one positioned interval.
type Block struct {
	ID        int     `json:"id"`
	Title     string  `json:"title,omitempty"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Lane      int     `json:"lane"`
	Compacted bool    `json:"compacted,omitempty"`

	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Label string `json:"label,omitempty"`
}

// Tick is one mark on the horizontal axis.
type Tick struct {
	Value float64 `json:"value"`
	X     float64 `json:"x"`
	Label string  `json:"label,omitempty"`
}

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout and checks that
// the lane fields are consistent.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.Width <= 0 || l.Height <= 0 {
		return Layout{}, fmt.Errorf("layout must have positive dimensions, got %vx%v", l.Width, l.Height)
	}
	if len(l.Blocks) > 0 && l.MaxConcurrency < 1 {
		return Layout{}, fmt.Errorf("layout with blocks must have max_concurrency >= 1")
	}
	for _, b := range l.Blocks {
		if b.Lane < 0 || b.Lane >= max(l.MaxConcurrency, 1) {
			return Layout{}, fmt.Errorf("block %d: lane %d out of range", b.ID, b.Lane)
		}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}

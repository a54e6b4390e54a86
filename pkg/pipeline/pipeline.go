// Package pipeline provides the layout → render pipeline for stacklane.
//
// This package is shared by the CLI and the HTTP API so that both apply the
// same defaults, cache keys and validation.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Layout: assign lanes and map every interval to a canvas rectangle
//  2. Render: generate output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// Each stage is cached by content hash and can be run on its own.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, doc, pipeline.Options{
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	l, err := runner.ComputeLayout(ctx, doc, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
package pipeline

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacklane/pkg/cache"
	"github.com/matzehuels/stacklane/pkg/core/render"
	"github.com/matzehuels/stacklane/pkg/core/render/timeline/layout"
	errs "github.com/matzehuels/stacklane/pkg/errors"
	"github.com/matzehuels/stacklane/pkg/timeline"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	DefaultWidth      = layout.DefaultWidth
	DefaultHeight     = layout.DefaultHeight
	DefaultLaneMargin = layout.DefaultLaneMargin
	DefaultLabelEvery = layout.DefaultLabelEvery

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG     = render.FormatSVG
	FormatPNG     = render.FormatPNG
	FormatPDF     = render.FormatPDF
	FormatJSON    = render.FormatJSON
	FormatDOT     = render.FormatDOT
	FormatOverlap = "overlap" // conflict graph as SVG
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:     true,
	FormatPNG:     true,
	FormatPDF:     true,
	FormatJSON:    true,
	FormatDOT:     true,
	FormatOverlap: true,
}

// Extension returns the file extension for an output format.
func Extension(format string) string {
	switch format {
	case FormatJSON:
		return ".layout.json"
	case FormatOverlap:
		return ".overlap.svg"
	default:
		return "." + format
	}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Width      float64  `json:"width,omitempty"`
	Height     float64  `json:"height,omitempty"`
	LaneMargin *float64 `json:"lane_margin,omitempty"` // nil means DefaultLaneMargin
	Unit       string   `json:"unit,omitempty"`        // overrides the document's unit
	Epoch      string   `json:"epoch,omitempty"`       // overrides the document's epoch
	LabelEvery int      `json:"label_every,omitempty"`

	// Render options
	Formats      []string `json:"formats,omitempty"`
	Scale        float64  `json:"scale,omitempty"`
	NoAxis       bool     `json:"no_axis,omitempty"`
	ClusterLanes bool     `json:"cluster_lanes,omitempty"`

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the computed layout in serialized form.
	Layout timeline.Layout

	// LayoutHash is the content hash of the serialized layout.
	LayoutHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Intervals      int
	MaxConcurrency int
	Compacted      int
	LayoutTime     time.Duration
	RenderTime     time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(formatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(out, f) {
			continue
		}
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.LaneMargin == nil {
		m := DefaultLaneMargin
		o.LaneMargin = &m
	}
	if o.LabelEvery == 0 {
		o.LabelEvery = DefaultLabelEvery
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if !finite(o.Width, o.Height, *o.LaneMargin) {
		return errs.New(errs.ErrCodeInvalidArgument, "width, height and lane margin must be finite numbers")
	}
	if o.Width <= 0 || o.Height <= 0 {
		return errs.New(errs.ErrCodeInvalidArgument, "width and height must be positive, got %vx%v", o.Width, o.Height)
	}
	if *o.LaneMargin < 0 {
		return errs.New(errs.ErrCodeInvalidArgument, "lane margin must not be negative, got %v", *o.LaneMargin)
	}
	if o.LabelEvery < 0 {
		return errs.New(errs.ErrCodeInvalidArgument, "label_every must not be negative, got %d", o.LabelEvery)
	}
	if _, err := layout.ParseUnit(o.Unit); o.Unit != "" && err != nil {
		return err
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if !finite(o.Scale) || o.Scale < 0 {
		return errs.New(errs.ErrCodeInvalidArgument, "scale must be positive, got %v", o.Scale)
	}
	return ValidateFormats(o.Formats)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ValidateAndSetDefaults checks and fills in options for the full pipeline.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// LayoutKeyOpts returns cache key options for layout computation. Unit and
// epoch are resolved against doc so overrides and document values key alike.
func (o *Options) LayoutKeyOpts(doc *timeline.Document) cache.LayoutKeyOpts {
	unit, epoch := o.resolve(doc)
	margin := DefaultLaneMargin
	if o.LaneMargin != nil {
		margin = *o.LaneMargin
	}
	return cache.LayoutKeyOpts{
		Width:      o.Width,
		Height:     o.Height,
		LaneMargin: margin,
		Unit:       unit,
		Epoch:      epoch,
		LabelEvery: o.LabelEvery,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatPNG:
		k.Scale = o.Scale
		k.NoAxis = o.NoAxis
	case FormatSVG, FormatPDF:
		k.NoAxis = o.NoAxis
	case FormatDOT, FormatOverlap:
		k.Cluster = o.ClusterLanes
	}
	return k
}

func (o *Options) resolve(doc *timeline.Document) (unit, epoch string) {
	unit, epoch = o.Unit, o.Epoch
	if doc != nil {
		if unit == "" {
			unit = doc.Unit
		}
		if epoch == "" {
			epoch = doc.Epoch
		}
	}
	return unit, epoch
}

func (o Options) String() string {
	return fmt.Sprintf("%vx%v formats=%v", o.Width, o.Height, o.Formats)
}

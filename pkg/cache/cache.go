// Package cache stores computed layouts and rendered artifacts.
//
// Layout computation is cheap but rendering PNG and PDF shells out to
// rsvg-convert, and the HTTP API may see the same timeline many times, so
// both stages are cached by content hash. Three backends share the [Cache]
// interface:
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (API server)
//   - [NullCache]: never stores anything (--no-cache)
//
// Keys are built by a [Keyer] so every entry point derives the same key
// for the same input.
package cache

import (
	"context"
	"time"
)

// Entry lifetimes. Layouts and artifacts are pure functions of their key,
// so they only expire to bound disk and memory use.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored bytes and true, or false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// LayoutKeyOpts are the layout parameters that change the result.
type LayoutKeyOpts struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	LaneMargin float64 `json:"lane_margin"`
	Unit       string  `json:"unit"`
	Epoch      string  `json:"epoch"`
	LabelEvery int     `json:"label_every"`
}

// ArtifactKeyOpts are the render parameters that change the output.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Scale   float64 `json:"scale,omitempty"`
	NoAxis  bool    `json:"no_axis,omitempty"`
	Cluster bool    `json:"cluster,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey keys a layout by the hash of its input timeline.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered output by the hash of its layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces keys of the form "layout:<sha256>" and
// "artifact:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

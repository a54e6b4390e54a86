package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacklane/pkg/cache"
	errs "github.com/matzehuels/stacklane/pkg/errors"
	"github.com/matzehuels/stacklane/pkg/observability"
	"github.com/matzehuels/stacklane/pkg/timeline"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs layout then render with caching.
func (r *Runner) Execute(ctx context.Context, doc *timeline.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	layoutStart := time.Now()
	l, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats = layoutStats(l)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit
	if result.LayoutHash, err = cache.HashJSON(l); err != nil {
		return nil, err
	}

	r.Logger.Info("computed layout",
		"intervals", result.Stats.Intervals,
		"lanes", result.Stats.MaxConcurrency,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComputeLayoutWithCacheInfo lays out doc, consulting the cache first, and
// reports whether the result came from the cache.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, doc *timeline.Document, opts Options) (timeline.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return timeline.Layout{}, false, err
	}
	if doc == nil {
		return timeline.Layout{}, false, errs.New(errs.ErrCodeInvalidInput, "no timeline document")
	}
	if _, err := doc.LaneIntervals(); err != nil {
		return timeline.Layout{}, false, err
	}
	hooks := observability.Pipeline()
	n := len(doc.Intervals)

	inputHash, err := cache.HashJSON(doc)
	if err != nil {
		return timeline.Layout{}, false, err
	}
	key := r.Keyer.LayoutKey(inputHash, opts.LayoutKeyOpts(doc))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if cached, err := timeline.UnmarshalLayout(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
			// undecodable entry: recompute and overwrite
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	hooks.OnLayoutStart(ctx, n)
	start := time.Now()
	l, err := GenerateLayout(doc, opts)
	hooks.OnLayoutComplete(ctx, n, l.MaxConcurrency, time.Since(start), err)
	if err != nil {
		return timeline.Layout{}, false, err
	}

	if data, err := timeline.MarshalLayout(l); err == nil {
		r.store(ctx, "layout", key, data, cache.TTLLayout)
	}
	return l, false, nil
}

// ComputeLayout is ComputeLayoutWithCacheInfo without the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, doc *timeline.Document, opts Options) (timeline.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, doc, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching. The hit flag is
// true only if every requested format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l timeline.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutHash, err := cache.HashJSON(l)
	if err != nil {
		return nil, false, fmt.Errorf("hash layout for cache key: %w", err)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if opts.Refresh {
			missing = append(missing, format)
			continue
		}
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()
	partial := opts
	partial.Formats = missing
	rendered, err := RenderFromLayout(ctx, l, partial)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.store(ctx, "artifact", key, data, cache.TTLArtifact)
	}
	return artifacts, false, nil
}

// Render is RenderWithCacheInfo without the cache hit info.
func (r *Runner) Render(ctx context.Context, l timeline.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// store writes a cache entry, retrying transient failures. Cache errors
// never fail the pipeline.
func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	err := cache.RetryWithBackoff(ctx, 3, 50*time.Millisecond, func() error {
		return r.Cache.Set(ctx, key, data, ttl)
	})
	if err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// Package config loads stacklane settings.
//
// Values are layered: built-in defaults, then the TOML config file, then
// STACKLANE_* environment variables. Command-line flags are applied last by
// the CLI itself.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacklane/pkg/cache"
	"github.com/matzehuels/stacklane/pkg/pipeline"
)

const appName = "stacklane"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the merged application configuration.
type Config struct {
	Canvas Canvas      `toml:"canvas"`
	Cache  CacheConfig `toml:"cache"`
	Server Server      `toml:"server"`
}

// Canvas holds layout defaults.
type Canvas struct {
	Width      float64 `toml:"width"       env:"STACKLANE_WIDTH"`
	Height     float64 `toml:"height"      env:"STACKLANE_HEIGHT"`
	LaneMargin float64 `toml:"lane_margin" env:"STACKLANE_LANE_MARGIN"`
	Unit       string  `toml:"unit"        env:"STACKLANE_UNIT"`
	Epoch      string  `toml:"epoch"       env:"STACKLANE_EPOCH"`
	LabelEvery int     `toml:"label_every" env:"STACKLANE_LABEL_EVERY"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"        env:"STACKLANE_CACHE"`
	Dir           string `toml:"dir"            env:"STACKLANE_CACHE_DIR"`
	RedisAddr     string `toml:"redis_addr"     env:"STACKLANE_REDIS_ADDR"`
	RedisPassword string `toml:"redis_password" env:"STACKLANE_REDIS_PASSWORD"`
	RedisDB       int    `toml:"redis_db"       env:"STACKLANE_REDIS_DB"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string        `toml:"addr"             env:"STACKLANE_ADDR"`
	RequestTimeout  time.Duration `toml:"request_timeout"  env:"STACKLANE_REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"STACKLANE_SHUTDOWN_TIMEOUT"`
	MaxBodyBytes    int64         `toml:"max_body_bytes"   env:"STACKLANE_MAX_BODY_BYTES"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Canvas: Canvas{
			Width:      pipeline.DefaultWidth,
			Height:     pipeline.DefaultHeight,
			LaneMargin: pipeline.DefaultLaneMargin,
			LabelEvery: pipeline.DefaultLabelEvery,
		},
		Cache: CacheConfig{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
		},
		Server: Server{
			Addr:            ":8080",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
	}
}

// Path returns the config file location: $STACKLANE_CONFIG if set,
// otherwise config.toml under the XDG config directory.
func Path() (string, error) {
	if p := os.Getenv("STACKLANE_CONFIG"); p != "" {
		return p, nil
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config file at path (a missing file is not an error) and
// applies environment overrides. An empty path means [Path].
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := Path()
		if err != nil {
			return Config{}, fmt.Errorf("locate config: %w", err)
		}
		path = p
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv overlays STACKLANE_* environment variables onto target.
// Unset variables leave the existing values alone.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the merged configuration.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return fmt.Errorf("invalid cache backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas dimensions must be positive, got %vx%v", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Canvas.LaneMargin < 0 {
		return fmt.Errorf("lane margin must not be negative, got %v", c.Canvas.LaneMargin)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	return nil
}

// PipelineOptions returns layout options seeded from the canvas section.
func (c Config) PipelineOptions() pipeline.Options {
	margin := c.Canvas.LaneMargin
	return pipeline.Options{
		Width:      c.Canvas.Width,
		Height:     c.Canvas.Height,
		LaneMargin: &margin,
		Unit:       c.Canvas.Unit,
		Epoch:      c.Canvas.Epoch,
		LabelEvery: c.Canvas.LabelEvery,
	}
}

// RedisConfig returns the redis connection settings.
func (c Config) RedisConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Addr:           c.Cache.RedisAddr,
		Password:       c.Cache.RedisPassword,
		DB:             c.Cache.RedisDB,
		DisableOnError: true,
	}
}

// CacheDir returns the file cache directory: the configured one, or the
// per-user default from [cache.DefaultDir].
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// OpenCache builds the configured cache backend. An unreachable redis
// server yields a disabled cache, not an error.
func (c Config) OpenCache(ctx context.Context, logger *log.Logger) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		return cache.NewRedisCache(ctx, c.RedisConfig(), logger), nil
	default:
		dir, err := c.CacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

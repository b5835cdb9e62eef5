// Package config loads serdegraph.toml project files.
//
// A project file fixes the inputs and options of a run so that
// "serdegraph graph" needs no arguments inside the project:
//
//	model    = "target/serde-model.json"
//	rules    = "serdegraph-rules.toml"
//	output   = "docs/types"
//	formats  = ["csv", "svg"]
//	only_json = true
//
//	[cache]
//	backend = "redis"
//	ttl     = "72h"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
// Relative paths are resolved against the directory holding the file.
// Command-line flags override every value.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/serdegraph/pkg/cache"
	errs "github.com/matzehuels/serdegraph/pkg/errors"
	"github.com/matzehuels/serdegraph/pkg/resolve"
)

// FileName is the project file looked up by [Discover].
const FileName = "serdegraph.toml"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the decoded project file.
type Config struct {
	Model  string `toml:"model"`
	Rules  string `toml:"rules"`
	Output string `toml:"output"`
	// BareRules starts from an empty rule set instead of the built-in
	// table before applying Rules.
	BareRules bool `toml:"bare_rules"`

	Formats     []string `toml:"formats"`
	OnlyJSON    bool     `toml:"only_json"`
	NoHeader    bool     `toml:"no_header"`
	FailFast    bool     `toml:"fail_fast"`
	StrictImpls bool     `toml:"strict_impls"`
	Workers     int      `toml:"workers"`
	Title       string   `toml:"title"`
	Namespace   string   `toml:"namespace"`
	RankDir     string   `toml:"rank_dir"`
	Detailed    bool     `toml:"detailed"`

	Cache CacheConfig `toml:"cache"`

	// path is the file this config was read from; empty for defaults.
	path string
}

// CacheConfig selects and configures the artifact cache.
type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	TTL     Duration    `toml:"ttl"`
	Prefix  string      `toml:"prefix"`
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig addresses the Redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Duration is a time.Duration written as a string such as "72h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no project file exists.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend: BackendFile,
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
	}
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string { return c.path }

// Load reads the project file at path on top of [Default].
func Load(path string) (*Config, error) {
	c := Default()
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "config %s: unknown key %q", path, undecoded[0].String())
	}
	c.path = path
	c.resolvePaths(filepath.Dir(path))
	if err := c.Validate(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return c, nil
}

// Discover looks for FileName in dir and its parents. It returns
// [Default] when none is found.
func Discover(dir string) (*Config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		p := filepath.Join(dir, FileName)
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{&c.Model, &c.Rules, &c.Output, &c.Cache.Dir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// Validate checks value ranges. Format names are checked by the pipeline.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if c.Cache.TTL.Duration < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if !slices.Contains([]string{"", BackendFile, BackendRedis, BackendNone}, c.Cache.Backend) {
		return fmt.Errorf("unknown cache backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required for the redis backend")
	}
	return nil
}

// LoadRules returns the resolver rules: the built-in table (or an empty
// one with BareRules) merged with the rules file, if any.
func (c *Config) LoadRules() (*resolve.Rules, error) {
	base := resolve.DefaultRules()
	if c.BareRules {
		base = resolve.Empty()
	}
	if c.Rules == "" {
		return base, nil
	}
	extra, err := resolve.LoadRules(c.Rules)
	if err != nil {
		return nil, err
	}
	return base.Merge(extra), nil
}

// CacheDir returns the file cache directory, defaulting to
// [cache.DefaultDir].
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// OpenCache opens the configured backend. The returned keyer scopes keys
// with Cache.Prefix when set.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, cache.Keyer, error) {
	var keyer cache.Keyer = cache.NewDefaultKeyer()
	if c.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(keyer, c.Cache.Prefix)
	}

	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), keyer, nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return cache.WithTTL(rc, c.Cache.TTL.Duration), keyer, nil
	}

	dir, err := c.CacheDir()
	if err != nil {
		return nil, nil, fmt.Errorf("cache dir: %w", err)
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, err
	}
	return cache.WithTTL(fc, c.Cache.TTL.Duration), keyer, nil
}

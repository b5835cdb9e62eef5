package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/serdegraph/pkg/cache"
	"github.com/matzehuels/serdegraph/pkg/config"
)

func TestCacheLocation(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  func(*config.Config)
		want string
	}{
		{"file dir", func(c *config.Config) { c.Cache.Dir = dir }, dir},
		{"none", func(c *config.Config) { c.Cache.Backend = config.BackendNone }, "caching disabled"},
		{"redis", func(c *config.Config) {
			c.Cache.Backend = config.BackendRedis
			c.Cache.Redis.DB = 2
			c.Cache.Prefix = "proj:"
		}, "redis://localhost:6379/2 serdegraph:proj:*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.cfg(cfg)
			if got := cacheLocation(cfg); got != tt.want {
				t.Errorf("cacheLocation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheLocationDefaultDir(t *testing.T) {
	got := cacheLocation(config.Default())
	if filepath.Base(got) != appName {
		t.Errorf("cacheLocation() = %q, should end with %q", got, appName)
	}
}

func TestCacheClearCommand(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
	}{
		{"plain", 0},
		{"with ttl", time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				t.Fatal(err)
			}
			ctx := context.Background()
			for _, k := range []string{"report:a", "artifact:b", "artifact:c"} {
				if err := fc.Set(ctx, k, []byte("v"), 0); err != nil {
					t.Fatal(err)
				}
			}

			var logs strings.Builder
			c := New(&logs, LogInfo)
			c.cfg = config.Default()
			c.cfg.Cache.Dir = dir
			c.cfg.Cache.TTL.Duration = tt.ttl

			cmd := c.cacheClearCommand()
			cmd.SetArgs(nil)
			if err := cmd.Execute(); err != nil {
				t.Fatalf("cache clear: %v", err)
			}
			if n, err := fc.Len(); err != nil || n != 0 {
				t.Errorf("entries after clear = %d, %v", n, err)
			}
			if logs.Len() != 0 {
				t.Errorf("unexpected log output: %s", logs.String())
			}
		})
	}
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always return a nil miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if cleared, err := Clear(ctx, c); cleared || err != nil {
		t.Errorf("Clear(NullCache) = %v, %v", cleared, err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) = %v, %v", hit, err)
	}

	if err := c.Set(ctx, "report:1", []byte(`{"ok":true}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "report:1")
	if err != nil || !hit || string(data) != `{"ok":true}` {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if n, err := c.Len(); err != nil || n != 1 {
		t.Errorf("Len = %d, %v", n, err)
	}

	if err := c.Delete(ctx, "report:1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "report:1"); hit {
		t.Error("entry should be gone after Delete")
	}
	if err := c.Delete(ctx, "report:1"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}

	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero ttl should never expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	cleared, err := Clear(ctx, c)
	if !cleared || err != nil {
		t.Fatalf("Clear = %v, %v", cleared, err)
	}
	if n, _ := c.Len(); n != 0 {
		t.Errorf("Len after Clear = %d", n)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Clear must keep the directory: %v", err)
	}
}

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheWithClient(client, "")
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) = %v, %v", hit, err)
	}

	if err := c.Set(ctx, "artifact:1", []byte("digraph {}"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists(DefaultRedisPrefix + "artifact:1") {
		t.Error("key should be stored under the default prefix")
	}
	data, hit, err := c.Get(ctx, "artifact:1")
	if err != nil || !hit || string(data) != "digraph {}" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "artifact:1"); hit {
		t.Error("entry should expire with its ttl")
	}

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry should be gone after Delete")
	}
}

func TestRedisCacheClearKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	for i := range 250 {
		if err := c.Set(ctx, "k"+string(rune('a'+i%26))+strings.Repeat("x", i), []byte("v"), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := mr.Set("other:key", "keep"); err != nil {
		t.Fatal(err)
	}

	if cleared, err := Clear(ctx, c); !cleared || err != nil {
		t.Fatalf("Clear = %v, %v", cleared, err)
	}
	keys := mr.Keys()
	if len(keys) != 1 || keys[0] != "other:key" {
		t.Errorf("keys after Clear = %v", keys)
	}
}

func TestRedisCacheClearSpansScanPages(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	for i := range 150 {
		if err := c.Set(ctx, fmt.Sprintf("report:%03d", i), []byte("v"), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if left := len(mr.Keys()); left != 0 {
		t.Errorf("%d of 150 keys left after Clear", left)
	}
}

func TestLen(t *testing.T) {
	ctx := context.Background()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b"} {
		if err := fc.Set(ctx, k, []byte("v"), 0); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name    string
		c       Cache
		want    int
		counted bool
	}{
		{"file", fc, 2, true},
		{"file behind ttl", WithTTL(fc, time.Hour), 2, true},
		{"null", NewNullCache(), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, counted, err := Len(tt.c)
			if err != nil || n != tt.want || counted != tt.counted {
				t.Errorf("Len() = %d, %v, %v; want %d, %v", n, counted, err, tt.want, tt.counted)
			}
		})
	}
}

func TestNewRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), RedisOptions{Addr: mr.Addr(), Prefix: "test:"})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()
	if c.prefix != "test:" {
		t.Errorf("prefix = %q", c.prefix)
	}
}

func TestNewRedisCacheUnavailable(t *testing.T) {
	fastBackoff(t)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), RedisOptions{Addr: addr})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}

	if HashAll([]byte("ab"), []byte("c")) == HashAll([]byte("a"), []byte("bc")) {
		t.Error("HashAll must separate its parts")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	r1 := k.ReportKey("model", ReportKeyOpts{RulesHash: "r"})
	r2 := k.ReportKey("model", ReportKeyOpts{RulesHash: "r", OnlyJSON: true})
	if r1 == r2 {
		t.Error("different ReportKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(r1, "report:") {
		t.Errorf("ReportKey = %q", r1)
	}
	if r1 != k.ReportKey("model", ReportKeyOpts{RulesHash: "r"}) {
		t.Error("ReportKey should be deterministic")
	}

	a1 := k.ArtifactKey("report", ArtifactKeyOpts{Format: "svg"})
	a2 := k.ArtifactKey("report", ArtifactKeyOpts{Format: "png"})
	if a1 == a2 {
		t.Error("different ArtifactKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(a1, "artifact:") {
		t.Errorf("ArtifactKey = %q", a1)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "project:")

	opts := ArtifactKeyOpts{Format: "csv"}
	if got, want := scoped.ArtifactKey("h", opts), "project:"+inner.ArtifactKey("h", opts); got != want {
		t.Errorf("ArtifactKey = %q, want %q", got, want)
	}
	if got := NewScopedKeyer(nil, "p:").ReportKey("h", ReportKeyOpts{}); !strings.HasPrefix(got, "p:report:") {
		t.Errorf("nil inner should use DefaultKeyer: %q", got)
	}
}

// fastBackoff shortens connectBackoff for the duration of the test.
func fastBackoff(t *testing.T) {
	t.Helper()
	old := connectBackoff
	connectBackoff.Base = time.Millisecond
	t.Cleanup(func() { connectBackoff = old })
}

func TestBackoffDo(t *testing.T) {
	b := Backoff{Attempts: 3, Base: time.Millisecond}
	plain := errors.New("boom")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{"first try", 0, nil, 1, nil},
		{"transient then ok", 2, Retryable(ErrUnavailable), 3, nil},
		{"always transient", 5, Retryable(ErrUnavailable), 3, ErrUnavailable},
		{"permanent", 5, plain, 1, plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := b.Do(context.Background(), func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil || tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBackoffDoCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := Backoff{Attempts: 3, Base: time.Hour}
	if err := b.Do(ctx, func() error { return Retryable(ErrUnavailable) }); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := fmt.Errorf("ping: %w", Retryable(ErrUnavailable))
	if !IsRetryable(err) || !errors.Is(err, ErrUnavailable) {
		t.Errorf("wrapped retryable error lost its marks: %v", err)
	}
	if IsRetryable(ErrUnavailable) {
		t.Error("unmarked error reported as retryable")
	}
}

func TestWithTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	if WithTTL(c, 0) != Cache(c) {
		t.Error("zero ttl should return the cache unchanged")
	}

	wrapped := WithTTL(c, time.Minute)
	if err := wrapped.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL(DefaultRedisPrefix + "k"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}
	if cleared, err := Clear(ctx, wrapped); !cleared || err != nil {
		t.Errorf("Clear through wrapper = %v, %v", cleared, err)
	}
	if mr.Exists(DefaultRedisPrefix + "k") {
		t.Error("Clear should reach the wrapped cache")
	}
}

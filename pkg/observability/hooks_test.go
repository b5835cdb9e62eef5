package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// countingHooks records how often each cache event fired.
type countingHooks struct {
	NoopPipelineHooks
	hits, misses, sets map[CacheKind]int
}

func newCountingHooks() *countingHooks {
	return &countingHooks{hits: map[CacheKind]int{}, misses: map[CacheKind]int{}, sets: map[CacheKind]int{}}
}

func (c *countingHooks) OnCacheHit(_ context.Context, k CacheKind)        { c.hits[k]++ }
func (c *countingHooks) OnCacheMiss(_ context.Context, k CacheKind)       { c.misses[k]++ }
func (c *countingHooks) OnCacheSet(_ context.Context, k CacheKind, _ int) { c.sets[k]++ }

func TestDefaultsAreNoop(t *testing.T) {
	t.Cleanup(Reset)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T", Cache())
	}

	ctx := context.Background()
	Pipeline().OnBuildComplete(ctx, 1, 1, 0, time.Second, nil)
	Cache().OnCacheSet(ctx, CacheArtifact, 10)
}

func TestSetHooks(t *testing.T) {
	t.Cleanup(Reset)

	c := newCountingHooks()
	SetCacheHooks(c)
	SetPipelineHooks(c)
	SetCacheHooks(nil)

	ctx := context.Background()
	Cache().OnCacheMiss(ctx, CacheReport)
	Cache().OnCacheSet(ctx, CacheReport, 42)
	Cache().OnCacheHit(ctx, CacheReport)
	Cache().OnCacheHit(ctx, CacheArtifact)

	if c.hits[CacheReport] != 1 || c.hits[CacheArtifact] != 1 || c.misses[CacheReport] != 1 || c.sets[CacheReport] != 1 {
		t.Errorf("counts: hits=%v misses=%v sets=%v", c.hits, c.misses, c.sets)
	}
	if Pipeline() != PipelineHooks(c) {
		t.Error("SetPipelineHooks did not replace the hooks")
	}

	Reset()
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset() must restore the no-op cache hooks")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	ctx := context.Background()

	h.OnBuildComplete(ctx, 3, 2, 1, time.Millisecond, nil)
	h.OnRenderComplete(ctx, []string{"svg"}, time.Millisecond, errors.New("no graphviz"))
	h.OnCacheHit(ctx, CacheReport)

	out := buf.String()
	for _, want := range []string{"build done", "unresolved=1", "render done", "no graphviz", "cache hit", "kind=report"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksRespectLevel(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))
	h.OnLoadStart(context.Background(), "model.json")
	if buf.Len() != 0 {
		t.Errorf("debug records leaked at info level: %s", buf.String())
	}
}

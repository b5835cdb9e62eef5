// Package observability lets binaries watch the serdegraph pipeline without
// the libraries depending on a metrics or tracing stack.
//
// Library code reports through [Pipeline] and [Cache]. Until a binary
// registers something else both return no-op hooks, so tests and embedders
// pay nothing. The CLI installs [LogHooks] at startup:
//
//	hooks := observability.NewLogHooks(logger)
//	observability.SetPipelineHooks(hooks)
//	observability.SetCacheHooks(hooks)
package observability

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// PipelineHooks observes the load, build and render stages. Every Complete
// call follows its Start call, with err set when the stage failed.
type PipelineHooks interface {
	OnLoadStart(ctx context.Context, path string)
	OnLoadComplete(ctx context.Context, path string, types, orphans int, duration time.Duration, err error)

	OnBuildStart(ctx context.Context, types int)
	OnBuildComplete(ctx context.Context, nodes, edges, unresolved int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheKind names what a cache entry holds.
type CacheKind string

const (
	CacheReport   CacheKind = "report"
	CacheArtifact CacheKind = "artifact"
)

// CacheHooks observes lookups and stores in the pipeline cache.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, kind CacheKind)
	OnCacheMiss(ctx context.Context, kind CacheKind)
	OnCacheSet(ctx context.Context, kind CacheKind, size int)
}

// NoopPipelineHooks ignores every event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string)                                  {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnBuildStart(context.Context, int)                                     {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, int, int, int, time.Duration, error)  {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                               {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)      {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, CacheKind)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, CacheKind)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, CacheKind, int) {}

// LogHooks writes each event as a debug record. It serves as both
// [PipelineHooks] and [CacheHooks].
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks logs through l under the "hooks" prefix.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l.WithPrefix("hooks")}
}

func (h *LogHooks) stage(stage, phase string, keyvals ...any) {
	h.logger.Debug(stage+" "+phase, keyvals...)
}

func (h *LogHooks) OnLoadStart(_ context.Context, path string) {
	h.stage("load", "start", "path", path)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, path string, types, orphans int, d time.Duration, err error) {
	h.stage("load", "done", "path", path, "types", types, "orphans", orphans, "elapsed", d, "err", err)
}

func (h *LogHooks) OnBuildStart(_ context.Context, types int) {
	h.stage("build", "start", "types", types)
}

func (h *LogHooks) OnBuildComplete(_ context.Context, nodes, edges, unresolved int, d time.Duration, err error) {
	h.stage("build", "done", "nodes", nodes, "edges", edges, "unresolved", unresolved, "elapsed", d, "err", err)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.stage("render", "start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.stage("render", "done", "formats", formats, "elapsed", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, kind CacheKind) {
	h.stage("cache", "hit", "kind", kind)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, kind CacheKind) {
	h.stage("cache", "miss", "kind", kind)
}

func (h *LogHooks) OnCacheSet(_ context.Context, kind CacheKind, size int) {
	h.stage("cache", "store", "kind", kind, "bytes", size)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
)

// Registered hooks are boxed so atomic.Value always stores one concrete type.
type (
	pipelineBox struct{ PipelineHooks }
	cacheBox    struct{ CacheHooks }
)

var pipelineHooks, cacheHooks atomic.Value

func init() { Reset() }

// SetPipelineHooks replaces the pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineHooks.Store(pipelineBox{h})
	}
}

// SetCacheHooks replaces the cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheHooks.Store(cacheBox{h})
	}
}

// Pipeline returns the current pipeline hooks.
func Pipeline() PipelineHooks { return pipelineHooks.Load().(pipelineBox).PipelineHooks }

// Cache returns the current cache hooks.
func Cache() CacheHooks { return cacheHooks.Load().(cacheBox).CacheHooks }

// Reset reinstalls the no-op hooks.
func Reset() {
	pipelineHooks.Store(pipelineBox{NoopPipelineHooks{}})
	cacheHooks.Store(cacheBox{NoopCacheHooks{}})
}

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/serdegraph/pkg/builder"
	"github.com/matzehuels/serdegraph/pkg/cache"
	errs "github.com/matzehuels/serdegraph/pkg/errors"
	sgio "github.com/matzehuels/serdegraph/pkg/io"
	"github.com/matzehuels/serdegraph/pkg/observability"
)

// Runner executes the pipeline with caching.
//
// The Runner is stateless except for the cache and logger; it does not
// store pipeline results. Multiple goroutines can use the same Runner with
// different options.
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
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs load → build → render.
//
// Unresolved references do not stop the run: Execute renders what did
// resolve and returns the complete result together with an
// *errors.UnresolvedReferences. With FailFast, or on any other failure, the
// result is nil.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.NewString()}
	logger := opts.Logger.With("run", result.RunID[:8])
	opts.Logger = logger

	loadStart := time.Now()
	raw, err := ReadModel(opts)
	if err != nil {
		return nil, err
	}
	result.ModelHash = cache.Hash(raw)
	result.Stats.LoadTime = time.Since(loadStart)

	build, report, orphans, hit, buildErr := r.BuildWithCacheInfo(ctx, raw, opts)
	if build == nil {
		return nil, buildErr
	}
	result.Build = build
	result.Orphans = orphans
	result.ReportHash = cache.Hash(report)
	result.CacheInfo.BuildHit = hit
	result.Stats.Types = len(build.Nodes)
	result.Stats.Edges = len(build.Edges)
	result.Stats.Unresolved = len(build.Unresolved)
	result.Stats.BuildTime = time.Since(loadStart) - result.Stats.LoadTime

	logger.Info("classified types",
		"types", result.Stats.Types,
		"edges", result.Stats.Edges,
		"unresolved", result.Stats.Unresolved,
		"cached", hit)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, build, result.ReportHash, opts, result.RunID)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = renderHit
	result.Stats.RenderTime = time.Since(renderStart)

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, buildErr
}

// BuildWithCacheInfo returns the build result for raw together with its
// canonical report encoding, the orphan impls seen while loading and
// whether the report came from the cache.
//
// A result with unresolved references is cached like any other; a cache
// hit then reproduces the same *errors.UnresolvedReferences. FailFast runs
// never reuse such an entry, since the first unresolved reference in field
// order is not recorded in the report.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, raw []byte, opts Options) (*builder.Result, []byte, []string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, nil, false, err
	}

	rh, err := rulesHash(opts.Rules)
	if err != nil {
		return nil, nil, nil, false, err
	}
	key := r.Keyer.ReportKey(cache.Hash(raw), opts.ReportKeyOpts(rh))

	if !opts.Refresh {
		if res, report, orphans, ok := r.cachedReport(ctx, key, opts); ok {
			observability.Cache().OnCacheHit(ctx, observability.CacheReport)
			warnOrphans(opts, orphans)
			var err error
			if agg := errs.NewUnresolvedReferences(res.Unresolved); agg != nil {
				err = agg
			}
			return res, report, orphans, true, err
		}
		observability.Cache().OnCacheMiss(ctx, observability.CacheReport)
	}

	m, err := Load(ctx, raw, opts)
	if err != nil {
		return nil, nil, nil, false, err
	}
	res, buildErr := Build(ctx, m, opts)
	if res == nil {
		return nil, nil, nil, false, buildErr
	}

	var buf bytes.Buffer
	if err := sgio.WriteReport(res, &buf, sgio.ReportOptions{Orphans: m.Orphans}); err != nil {
		return nil, nil, nil, false, fmt.Errorf("encode report: %w", err)
	}
	report := buf.Bytes()
	if err := r.Cache.Set(ctx, key, report, cache.TTLReport); err != nil {
		opts.Logger.Warn("cache write failed", "key", key, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, observability.CacheReport, len(report))
	}
	return res, report, m.Orphans, false, buildErr
}

// cachedReport also returns the orphan impls recorded with the report.
func (r *Runner) cachedReport(ctx context.Context, key string, opts Options) (*builder.Result, []byte, []string, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Warn("cache read failed", "key", key, "err", err)
		return nil, nil, nil, false
	}
	if !hit {
		return nil, nil, nil, false
	}
	res, info, err := sgio.ReadReport(bytes.NewReader(data))
	if err != nil {
		opts.Logger.Debug("discarding unreadable cache entry", "key", key, "err", err)
		return nil, nil, nil, false
	}
	if opts.FailFast && len(res.Unresolved) > 0 {
		return nil, nil, nil, false
	}
	return res, data, info.Orphans, true
}

// RenderWithCacheInfo renders every requested format, reusing cached
// artifacts. The JSON report carries the run id and is never cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *builder.Result, reportHash string, opts Options, runID string) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, f := range opts.Formats {
		if f == FormatJSON {
			missing = append(missing, f)
			continue
		}
		key := r.Keyer.ArtifactKey(reportHash, opts.ArtifactKeyOpts(f))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, observability.CacheArtifact)
				artifacts[f] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, observability.CacheArtifact)
		}
		missing = append(missing, f)
	}

	allHit := true
	for _, f := range missing {
		if f != FormatJSON {
			allHit = false
		}
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	rendered, err := Render(ctx, res, missing, opts, runID)
	if err != nil {
		return nil, false, err
	}
	for f, data := range rendered {
		artifacts[f] = data
		if f == FormatJSON {
			continue
		}
		key := r.Keyer.ArtifactKey(reportHash, opts.ArtifactKeyOpts(f))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("cache write failed", "key", key, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, observability.CacheArtifact, len(data))
	}
	return artifacts, allHit, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// IsUnresolved reports whether err only signals unresolved references, in
// which case the accompanying result is usable.
func IsUnresolved(err error) bool {
	var agg *errs.UnresolvedReferences
	return errors.As(err, &agg)
}

// Package pipeline runs the load → build → render sequence shared by every
// serdegraph command.
//
// # Stages
//
//  1. Load: decode the JSON model into a frozen registry.
//  2. Build: classify public types and resolve their field references.
//  3. Render: produce draw.io CSV, DOT, SVG, PNG or the JSON report.
//
// Build results are cached as JSON reports keyed by the model, the rules
// and the options that change the output. Rendered artifacts are cached by
// the report hash, so editing the title of a CSV does not rebuild the
// graph, and reloading an unchanged model does not re-run the resolver.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    ModelPath: "model.json",
//	    Formats:   []string{pipeline.FormatCSV, pipeline.FormatSVG},
//	})
//	var unresolved *errors.UnresolvedReferences
//	if err != nil && !stderrors.As(err, &unresolved) {
//	    return err
//	}
//	os.WriteFile("types.csv", res.Artifacts["csv"], 0o644)
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/serdegraph/pkg/builder"
	"github.com/matzehuels/serdegraph/pkg/cache"
	"github.com/matzehuels/serdegraph/pkg/resolve"
)

// Output formats.
const (
	FormatCSV  = "csv"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// Formats lists every supported format in canonical order.
var Formats = []string{FormatCSV, FormatDOT, FormatSVG, FormatPNG, FormatJSON}

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = FormatCSV

// DefaultRankDir lays out DOT output left to right.
const DefaultRankDir = "LR"

var validRankDirs = map[string]bool{"LR": true, "RL": true, "TB": true, "BT": true}

// Options configures a pipeline run.
type Options struct {
	// Load options
	ModelPath   string `json:"model_path,omitempty"`
	StrictImpls bool   `json:"strict_impls,omitempty"`

	// Build options
	OnlyJSON bool `json:"only_json,omitempty"`
	FailFast bool `json:"fail_fast,omitempty"`
	Workers  int  `json:"workers,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	NoHeader  bool     `json:"no_header,omitempty"`
	Title     string   `json:"title,omitempty"`
	Namespace string   `json:"namespace,omitempty"`
	RankDir   string   `json:"rank_dir,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"`

	// Refresh ignores cached entries but still writes new ones.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)

	// Model holds the raw model. When nil it is read from ModelPath.
	Model []byte `json:"-"`
	// Rules drives the resolver. Nil means resolve.DefaultRules.
	Rules  *resolve.Rules `json:"-"`
	Logger *log.Logger    `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and in the JSON report.
	RunID string

	// Build is the classification and linking result. When the run
	// reports unresolved references it is still complete for everything
	// that did resolve.
	Build *builder.Result

	// ModelHash is the content hash of the raw model.
	ModelHash string

	// ReportHash is the content hash of the canonical report; artifact
	// cache keys derive from it.
	ReportHash string

	// Orphans lists impl targets that were never declared. A cached build
	// reports the orphans recorded with its report.
	Orphans []string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Types      int
	Edges      int
	Unresolved int
	LoadTime   time.Duration
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each cached stage.
type CacheInfo struct {
	BuildHit  bool // the report came from cache
	RenderHit bool // every cacheable artifact came from cache
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return fmt.Errorf("invalid format: %q (must be one of: %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated list such as "csv,svg", trims
// blanks and drops duplicates.
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

// ValidateAndSetDefaults checks required fields and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Model == nil && o.ModelPath == "" {
		return fmt.Errorf("model or model path is required")
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must not be negative: %d", o.Workers)
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.RankDir == "" {
		o.RankDir = DefaultRankDir
	}
	if !validRankDirs[o.RankDir] {
		return fmt.Errorf("invalid rank_dir: %q (must be one of: LR, RL, TB, BT)", o.RankDir)
	}
	if o.Rules == nil {
		o.Rules = resolve.DefaultRules()
	}
	if err := o.Rules.Validate(); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ReportKeyOpts returns the cache key options for the build stage.
func (o *Options) ReportKeyOpts(rulesHash string) cache.ReportKeyOpts {
	return cache.ReportKeyOpts{
		RulesHash:   rulesHash,
		OnlyJSON:    o.OnlyJSON,
		StrictImpls: o.StrictImpls,
	}
}

// ArtifactKeyOpts returns the cache key options for one rendered format.
// Only the options that affect that format are included.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatCSV:
		k.NoHeader = o.NoHeader
		k.Title = o.Title
		k.Namespace = o.Namespace
	case FormatDOT, FormatSVG, FormatPNG:
		k.RankDir = o.RankDir
		k.Detailed = o.Detailed
	}
	return k
}

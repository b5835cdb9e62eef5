package pipeline

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/serdegraph/pkg/cache"
	errs "github.com/matzehuels/serdegraph/pkg/errors"
	"github.com/matzehuels/serdegraph/pkg/resolve"
)

const fooBar = `{
  "declarations": [
    {"id": "a::Foo", "kind": "struct", "public": true, "serialize": true, "deserialize": true, "fields": ["Bar"]},
    {"id": "a::Bar", "kind": "enum", "public": true, "serialize": true, "deserialize": true}
  ]
}`

const withUnresolved = `{
  "declarations": [
    {"id": "x::Thing", "kind": "struct", "public": true, "serialize": true, "deserialize": true, "fields": ["Id", "Other"]},
    {"id": "x::Other", "kind": "struct", "public": true}
  ],
  "impls": [{"id": "y::Ghost", "trait": "Serialize"}]
}`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"csv", false},
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"json", false},
		{"pdf", true},
		{"SVG", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats(" csv, SVG,,csv ,json")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"csv", "svg", "json"}; !slices.Equal(got, want) {
		t.Errorf("ParseFormats = %v, want %v", got, want)
	}
	if _, err := ParseFormats("csv,pdf"); err == nil {
		t.Error("pdf should be rejected")
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{ModelPath: "model.json"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(opts.Formats, []string{DefaultFormat}) || opts.RankDir != DefaultRankDir {
		t.Errorf("defaults not applied: %+v", opts)
	}
	if opts.Rules == nil || opts.Logger == nil {
		t.Error("rules and logger must default")
	}

	bad := []Options{
		{},
		{ModelPath: "m", Workers: -1},
		{ModelPath: "m", Formats: []string{"pdf"}},
		{ModelPath: "m", RankDir: "diagonal"},
		{ModelPath: "m", Rules: &resolve.Rules{Domains: []string{""}}},
	}
	for i, o := range bad {
		if err := o.ValidateAndSetDefaults(); err == nil {
			t.Errorf("case %d: expected error for %+v", i, o)
		}
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	a := Options{Title: "A", RankDir: "LR"}
	b := Options{Title: "B", RankDir: "LR"}
	if a.ArtifactKeyOpts(FormatCSV) == b.ArtifactKeyOpts(FormatCSV) {
		t.Error("title must change the csv key")
	}
	if a.ArtifactKeyOpts(FormatSVG) != b.ArtifactKeyOpts(FormatSVG) {
		t.Error("title must not change the svg key")
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Model:   []byte(fooBar),
		Formats: []string{FormatCSV, FormatDOT, FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.RunID == "" || res.ModelHash == "" || res.ReportHash == "" {
		t.Errorf("missing identifiers: %+v", res)
	}
	if res.Stats.Types != 2 || res.Stats.Edges != 1 {
		t.Errorf("Stats = %+v", res.Stats)
	}

	csv := string(res.Artifacts[FormatCSV])
	if !strings.Contains(csv, `a::Foo,rectangle,green,"a::Bar",""`) {
		t.Errorf("csv missing Foo row:\n%s", csv)
	}
	if dot := string(res.Artifacts[FormatDOT]); !strings.Contains(dot, `"a::Foo" -> "a::Bar"`) {
		t.Errorf("dot missing edge:\n%s", dot)
	}
	if js := string(res.Artifacts[FormatJSON]); !strings.Contains(js, res.RunID) {
		t.Error("json report must carry the run id")
	}
}

func TestExecuteFromFile(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{ModelPath: filepath.Join(t.TempDir(), "missing.json")})
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestExecuteUnresolved(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{Model: []byte(withUnresolved)})

	var agg *errs.UnresolvedReferences
	if !errors.As(err, &agg) || !IsUnresolved(err) {
		t.Fatalf("error = %v, want UnresolvedReferences", err)
	}
	if res == nil || len(res.Artifacts[FormatCSV]) == 0 {
		t.Fatal("partial result must be rendered")
	}
	if len(agg.Errs) != 1 || agg.Errs[0].Source != "x::Thing" || agg.Errs[0].Reference != "Id" {
		t.Errorf("unresolved = %v", agg.Errs)
	}
	if !slices.Equal(res.Orphans, []string{"y::Ghost"}) {
		t.Errorf("Orphans = %v", res.Orphans)
	}
}

func TestExecuteFailFast(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{Model: []byte(withUnresolved), FailFast: true})

	var ue *errs.UnresolvedReferenceError
	if !errors.As(err, &ue) || res != nil {
		t.Fatalf("Execute = %v, %v; want nil result and UnresolvedReferenceError", res, err)
	}
}

func TestExecuteStrictImpls(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{Model: []byte(withUnresolved), StrictImpls: true})
	if !errs.Is(err, errs.ErrCodeOrphanImpl) {
		t.Errorf("error = %v, want ORPHAN_IMPL", err)
	}
}

func TestExecuteCaching(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	opts := Options{Model: []byte(fooBar), Formats: []string{FormatCSV, FormatJSON}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.BuildHit || first.CacheInfo.RenderHit {
		t.Errorf("first run hit the cache: %+v", first.CacheInfo)
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.BuildHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run missed the cache: %+v", second.CacheInfo)
	}
	if string(first.Artifacts[FormatCSV]) != string(second.Artifacts[FormatCSV]) {
		t.Error("cached csv differs")
	}
	if first.ReportHash != second.ReportHash {
		t.Error("report hash must be stable")
	}
	if first.RunID == second.RunID {
		t.Error("each run gets its own id")
	}

	opts.OnlyJSON = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.BuildHit {
		t.Error("changed build options must miss")
	}

	opts.OnlyJSON = false
	opts.Refresh = true
	fourth, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.BuildHit || fourth.CacheInfo.RenderHit {
		t.Error("Refresh must bypass cached entries")
	}
}

func TestExecuteCachedUnresolved(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	opts := Options{Model: []byte(withUnresolved)}

	if _, err := r.Execute(ctx, opts); !IsUnresolved(err) {
		t.Fatalf("first run error = %v", err)
	}
	res, err := r.Execute(ctx, opts)
	if !IsUnresolved(err) || !res.CacheInfo.BuildHit {
		t.Fatalf("cached run = %+v, %v", res, err)
	}

	opts.FailFast = true
	res, err = r.Execute(ctx, opts)
	if res != nil || !errs.Is(err, errs.ErrCodeUnresolvedReference) {
		t.Errorf("FailFast over cached entry = %v, %v", res, err)
	}
}

func TestExecuteCachedOrphans(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	r := NewRunner(fc, nil, log.New(&logs))
	opts := Options{Model: []byte(withUnresolved)}

	for _, wantHit := range []bool{false, true} {
		logs.Reset()
		res, err := r.Execute(ctx, opts)
		if !IsUnresolved(err) {
			t.Fatalf("Execute error = %v", err)
		}
		if res.CacheInfo.BuildHit != wantHit {
			t.Errorf("BuildHit = %v, want %v", res.CacheInfo.BuildHit, wantHit)
		}
		if !slices.Equal(res.Orphans, []string{"y::Ghost"}) {
			t.Errorf("hit=%v: Orphans = %v", wantHit, res.Orphans)
		}
		if !strings.Contains(logs.String(), "impl for undeclared type dropped") {
			t.Errorf("hit=%v: orphan warning missing:\n%s", wantHit, logs.String())
		}
	}
}

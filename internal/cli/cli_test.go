package cli

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/serdegraph/pkg/config"
	errs "github.com/matzehuels/serdegraph/pkg/errors"
)

const fooBarModel = `{
  "declarations": [
    {"id": "a::Foo", "kind": "struct", "public": true, "serialize": true, "deserialize": true, "fields": ["Bar"]},
    {"id": "a::Bar", "kind": "enum", "public": true, "serialize": true, "deserialize": true}
  ]
}`

const unresolvedModel = `{
  "declarations": [
    {"id": "x::Thing", "kind": "struct", "public": true, "serialize": true, "fields": ["Id"]}
  ]
}`

func writeModel(t *testing.T, dir, src string) string {
	t.Helper()
	path := filepath.Join(dir, "model.json")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	c := New(&strings.Builder{}, LogInfo)
	c.cfg = config.Default()
	c.cfg.Cache.Backend = config.BackendNone
	return c
}

func TestRootCommandSubcommands(t *testing.T) {
	root := newTestCLI(t).RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"graph", "classify", "resolve", "browse", "rules", "cache", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing subcommand %q in %v", want, names)
		}
	}
}

func TestModelPath(t *testing.T) {
	cfg := config.Default()
	if _, err := modelPath(nil, cfg); err == nil {
		t.Error("modelPath() without argument or config must fail")
	}
	cfg.Model = "from-config.json"
	if got, _ := modelPath(nil, cfg); got != "from-config.json" {
		t.Errorf("modelPath() = %q", got)
	}
	if got, _ := modelPath([]string{"arg.json"}, cfg); got != "arg.json" {
		t.Errorf("modelPath() = %q, argument must win", got)
	}
}

func TestBasePathAndOutputPath(t *testing.T) {
	if got := basePath("dir/model.json"); got != "dir/model" {
		t.Errorf("basePath() = %q", got)
	}
	tests := []struct{ base, format, want string }{
		{"out/types", "csv", "out/types.csv"},
		{"out/types.svg", "svg", "out/types.svg"},
		{"out/types.svg", "png", "out/types.svg.png"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.base, tt.format); got != tt.want {
			t.Errorf("outputPath(%q, %q) = %q, want %q", tt.base, tt.format, got, tt.want)
		}
	}
}

func TestApplyGraphFlags(t *testing.T) {
	c := newTestCLI(t)
	c.cfg.Formats = []string{"svg", "json"}
	c.cfg.Title = "From config"
	c.cfg.OnlyJSON = true
	c.cfg.Detailed = true

	cmd := c.graphCommand()
	if err := cmd.ParseFlags([]string{"--title", "From flag", "--workers", "4"}); err != nil {
		t.Fatal(err)
	}
	var flags graphFlags
	flags.title = "From flag"
	flags.workers = 4
	flags.rankDir = "LR"
	applyGraphFlags(cmd, &flags, c.cfg)

	if flags.formats != "svg,json" {
		t.Errorf("formats = %q, want config value", flags.formats)
	}
	if flags.title != "From flag" || c.cfg.Title != "From flag" {
		t.Errorf("title = %q / %q, flag must win", flags.title, c.cfg.Title)
	}
	if !flags.onlyJSON {
		t.Error("onlyJSON must come from config when the flag is unset")
	}
	if !flags.detailed {
		t.Error("detailed must come from config when the flag is unset")
	}
	if c.cfg.Workers != 4 {
		t.Errorf("Workers = %d", c.cfg.Workers)
	}
}

func TestGraphCommand(t *testing.T) {
	dir := t.TempDir()
	model := writeModel(t, dir, fooBarModel)
	out := filepath.Join(dir, "out", "types")

	root := newTestCLI(t).RootCommand()
	root.SetArgs([]string{"graph", model, "-f", "csv,json", "-o", out})
	if err := root.Execute(); err != nil {
		t.Fatalf("graph: %v", err)
	}

	csv, err := os.ReadFile(out + ".csv")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(csv), `a::Foo,rectangle,green,"a::Bar",""`) {
		t.Errorf("csv:\n%s", csv)
	}
	if _, err := os.Stat(out + ".json"); err != nil {
		t.Errorf("json report not written: %v", err)
	}
}

func TestGraphCommandUnresolved(t *testing.T) {
	dir := t.TempDir()
	model := writeModel(t, dir, unresolvedModel)

	root := newTestCLI(t).RootCommand()
	root.SetArgs([]string{"graph", model})
	err := root.Execute()
	if !IsReported(err) {
		t.Fatalf("error = %v, want a reported error", err)
	}
	var agg *errs.UnresolvedReferences
	if !errors.As(err, &agg) || agg.Errs[0].Reference != "Id" {
		t.Errorf("error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "model.csv")); err != nil {
		t.Errorf("partial graph must still be written: %v", err)
	}
}

func TestGraphCommandFailFast(t *testing.T) {
	dir := t.TempDir()
	model := writeModel(t, dir, unresolvedModel)

	root := newTestCLI(t).RootCommand()
	root.SetArgs([]string{"graph", model, "--fail-fast"})
	err := root.Execute()
	if !errs.Is(err, errs.ErrCodeUnresolvedReference) || IsReported(err) {
		t.Errorf("error = %v, want unreported unresolved reference", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "model.csv")); err == nil {
		t.Error("fail-fast run must not write output")
	}
}

func TestGraphCommandBadFormat(t *testing.T) {
	dir := t.TempDir()
	model := writeModel(t, dir, fooBarModel)

	root := newTestCLI(t).RootCommand()
	root.SetArgs([]string{"graph", model, "-f", "pdf"})
	if err := root.Execute(); err == nil {
		t.Error("unknown format must fail")
	}
}

func TestClassifyAndResolveCommands(t *testing.T) {
	dir := t.TempDir()
	model := writeModel(t, dir, fooBarModel)

	tests := []struct {
		name string
		args []string
		ok   bool
	}{
		{"classify", []string{"classify", model}, true},
		{"classify by category", []string{"classify", model, "--category", "green"}, true},
		{"classify bad category", []string{"classify", model, "--category", "purple"}, false},
		{"classify roots", []string{"classify", model, "--roots"}, true},
		{"resolve", []string{"resolve", model, "a::Foo", "Bar"}, true},
		{"resolve unresolved", []string{"resolve", model, "a::Foo", "Missing"}, false},
		{"rules", []string{"rules"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newTestCLI(t).RootCommand()
			root.SetArgs(tt.args)
			if err := root.Execute(); (err == nil) != tt.ok {
				t.Errorf("Execute(%v) error = %v, want ok=%v", tt.args, err, tt.ok)
			}
		})
	}
}

func TestReportUnresolved(t *testing.T) {
	if err := reportUnresolved("m.json", nil); err != nil {
		t.Errorf("nil error became %v", err)
	}
	plain := errors.New("boom")
	if err := reportUnresolved("m.json", plain); err != plain || IsReported(err) {
		t.Errorf("plain error changed: %v", err)
	}
	agg := errs.NewUnresolvedReferences([]*errs.UnresolvedReferenceError{{Source: "x::Thing", Reference: "Id"}})
	if err := reportUnresolved("m.json", agg); !IsReported(err) {
		t.Errorf("aggregate must be marked reported: %v", err)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			root := newTestCLI(t).RootCommand()
			var out strings.Builder
			root.SetOut(&out)
			root.SetArgs([]string{"completion", shell})
			if err := root.Execute(); err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !strings.Contains(out.String(), appName) {
				t.Errorf("completion %s does not mention %s", shell, appName)
			}
		})
	}

	root := newTestCLI(t).RootCommand()
	root.SetArgs([]string{"completion", "tcsh"})
	if err := root.Execute(); err == nil {
		t.Error("unknown shell must fail")
	}
}

func TestRootNodes(t *testing.T) {
	nodes, err := rootNodes(testResult())
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	if want := []string{"a::Foo", "a::Raw"}; !slices.Equal(ids, want) {
		t.Errorf("rootNodes() = %v, want %v", ids, want)
	}
}

package resolve

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/serdegraph/pkg/errors"
)

func TestDefaultRulesValid(t *testing.T) {
	if err := DefaultRules().Validate(); err != nil {
		t.Fatalf("DefaultRules().Validate(): %v", err)
	}
}

func TestRulesEncodeDecode(t *testing.T) {
	var buf bytes.Buffer
	if err := DefaultRules().Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := DecodeRules(&buf)
	if err != nil {
		t.Fatalf("DecodeRules: %v", err)
	}
	want := DefaultRules()
	if len(got.Pairs) != len(want.Pairs) || len(got.Skips) != len(want.Skips) {
		t.Fatalf("decoded %d pairs, %d skips; want %d, %d", len(got.Pairs), len(got.Skips), len(want.Pairs), len(want.Skips))
	}
	for i := range want.Pairs {
		if got.Pairs[i] != want.Pairs[i] {
			t.Errorf("pair %d = %+v, want %+v", i, got.Pairs[i], want.Pairs[i])
		}
	}
	if got.SnakeOverrides["Type"] != "msg_type" {
		t.Errorf("SnakeOverrides = %v", got.SnakeOverrides)
	}
}

func TestDecodeRules(t *testing.T) {
	const src = `
domains = ["proto"]

[snake_overrides]
ID = "id"

[[pairs]]
reference = "Root"
target    = "tree::Node"

[[skips]]
source    = "tree::Node"
reference = "Foreign"
`
	rules, err := DecodeRules(strings.NewReader(src))
	if err != nil {
		t.Fatalf("DecodeRules: %v", err)
	}

	r := New(newKeys("tree::Node", "proto/leaf::Leaf"), rules)
	if res, err := r.Resolve("tree::Node", "Root"); err != nil || res.Target != "tree::Node" {
		t.Errorf("Resolve(Root) = %+v, %v", res, err)
	}
	if res, err := r.Resolve("tree::Node", "Leaf"); err != nil || res.Rule != RuleDomainShortened {
		t.Errorf("Resolve(Leaf) = %+v, %v", res, err)
	}
	if res, err := r.Resolve("tree::Node", "Foreign"); err != nil || !res.Skipped {
		t.Errorf("Resolve(Foreign) = %+v, %v", res, err)
	}
}

func TestDecodeRulesInvalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `domains = [`},
		{"unknown key", `colour = "red"`},
		{"empty domain", `domains = [""]`},
		{"pair without reference", "[[pairs]]\ntarget = \"a::A\""},
		{"pair target not qualified", "[[pairs]]\nreference = \"A\"\ntarget = \"A\""},
		{"skip without source", "[[skips]]\nreference = \"A\""},
		{"duplicate skip", "[[skips]]\nsource = \"a::A\"\nreference = \"B\"\n[[skips]]\nsource = \"a::A\"\nreference = \"B\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRules(strings.NewReader(tt.src))
			if !errs.Is(err, errs.ErrCodeInvalidRules) {
				t.Errorf("DecodeRules() error = %v, want %s", err, errs.ErrCodeInvalidRules)
			}
		})
	}
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.toml")
	if err := os.WriteFile(path, []byte(`domains = ["abci"]`), 0o644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if len(rules.Domains) != 1 || rules.Domains[0] != "abci" {
		t.Errorf("Domains = %v", rules.Domains)
	}

	if _, err := LoadRules(filepath.Join(dir, "missing.toml")); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("LoadRules(missing) error = %v", err)
	}
}

func TestMerge(t *testing.T) {
	base := DefaultRules()
	extra := &Rules{
		Domains:        []string{"abci", "proto"},
		SnakeOverrides: map[string]string{"Type": "kind"},
		Pairs:          []Pair{{Reference: "Extra", Target: "extra::Extra"}},
	}

	merged := base.Merge(extra)
	if len(merged.Domains) != 2 {
		t.Errorf("Domains = %v", merged.Domains)
	}
	if merged.SnakeOverrides["Type"] != "kind" || merged.SnakeOverrides["AppHash"] != "hash" {
		t.Errorf("SnakeOverrides = %v", merged.SnakeOverrides)
	}
	if len(merged.Pairs) != len(base.Pairs)+1 {
		t.Errorf("Pairs = %d", len(merged.Pairs))
	}
	if base.SnakeOverrides["Type"] != "msg_type" {
		t.Error("Merge must not modify the receiver")
	}
}

package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	old := Version
	Version = "v0.3.0"
	defer func() { Version = old }()

	s := String()
	for _, want := range []string{"version: v0.3.0", "commit: ", "built: "} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
	if !strings.HasPrefix(Template(), "{{.Name}} version v0.3.0") {
		t.Errorf("Template() = %q", Template())
	}
}

func TestGenerator(t *testing.T) {
	old := Version
	Version = "v1.2.3"
	defer func() { Version = old }()

	if got := Generator(); got != "serdegraph v1.2.3" {
		t.Errorf("Generator() = %q", got)
	}
}

package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/serdegraph/pkg/observability"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("x") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("x") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("x") }, true},
		{"warn at info", log.InfoLevel, func(l *log.Logger) { l.Warn("x") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			tt.emit(newLogger(&out, tt.level))
			if got := out.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimed(t *testing.T) {
	var out strings.Builder
	done := timed(newLogger(&out, log.InfoLevel))
	done("classified types", "types", 3)

	line := out.String()
	for _, want := range []string{"classified types", "types=3", "elapsed="} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	var out strings.Builder
	c := New(&out, LogInfo)
	t.Cleanup(observability.Reset)
	c.Logger.Debug("hidden")
	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")

	if s := out.String(); strings.Contains(s, "hidden") || !strings.Contains(s, "shown") {
		t.Errorf("output = %q", s)
	}
}

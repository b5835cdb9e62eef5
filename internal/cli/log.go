package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// logTimeFormat shows hundredths of a second, e.g. "14:32:01.45".
const logTimeFormat = "15:04:05.00"

// newLogger creates the CLI logger: leveled, timestamped lines on w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
	})
}

// timed starts a clock and returns a func that logs msg at info level with
// the elapsed time appended as "elapsed", rounded to the millisecond.
func timed(l *log.Logger) func(msg string, keyvals ...any) {
	start := time.Now()
	return func(msg string, keyvals ...any) {
		keyvals = append(keyvals, "elapsed", time.Since(start).Round(time.Millisecond))
		l.Info(msg, keyvals...)
	}
}

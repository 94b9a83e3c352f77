// ABOUTME: Structured logger construction shared by the server, CLI and workers
// ABOUTME: Wraps charmbracelet/log with a level string and component sub-loggers
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New builds a timestamped logger writing to w at the given level.
// Unknown levels fall back to info.
func New(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "medrag",
	})
}

// Default logs to stderr at info
func Default() *log.Logger {
	return New(os.Stderr, "info")
}

// Discard returns a logger that drops everything (for tests)
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// Component derives a sub-logger tagged with the component name
func Component(l *log.Logger, name string) *log.Logger {
	if l == nil {
		l = Discard()
	}
	return l.With("component", name)
}

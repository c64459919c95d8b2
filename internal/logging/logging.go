// Package logging builds the charmbracelet/log loggers used across catch.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// New returns a timestamped logger writing to w. Unknown levels fall back
// to info.
func New(w io.Writer, level, prefix string) *log.Logger {
	lvl, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil || level == "" {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           lvl,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// OpenFile opens (appending) a log file, creating parent directories.
// The caller closes the returned file.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logging: cannot create directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: cannot open %s: %w", path, err)
	}
	return f, nil
}

// Package logging provides structured logging with file output support.
// It uses environment variables for configuration and supports file cleanup.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

// LoggerCloser wraps a logger and provides a Close method for cleanup
type LoggerCloser struct {
	*log.Logger
	closer io.Closer
}

// Close closes the underlying writer if it's closeable
func (lc *LoggerCloser) Close() error {
	if lc.closer != nil {
		return lc.closer.Close()
	}
	return nil
}

// NewLoggerWithWriter creates a new logger with the provided writer
func NewLoggerWithWriter(w io.Writer) *LoggerCloser {
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})

	// Set log level from environment
	level := os.Getenv("DIS86_LOG_LEVEL")
	switch level {
	case "debug":
		lg.SetLevel(log.DebugLevel)
	case "warn":
		lg.SetLevel(log.WarnLevel)
	case "error":
		lg.SetLevel(log.ErrorLevel)
	default:
		lg.SetLevel(log.InfoLevel)
	}

	// Set prefix from environment
	prefix := os.Getenv("DIS86_LOG_PREFIX")
	if prefix == "" {
		prefix = "dis86 "
	}

	var closer io.Closer
	if c, ok := w.(io.Closer); ok {
		closer = c
	}

	return &LoggerCloser{
		Logger: lg.WithPrefix(prefix),
		closer: closer,
	}
}

// NewLogger creates a new logger based on environment variables
// DIS86_LOG_LEVEL: debug, info, warn, error (default: info)
// DIS86_LOG_PREFIX: prefix for log messages (default: "dis86 ")
// DIS86_LOG_TO_FILE: when set to "1", logs to a timestamped file instead of stderr
// DIS86_LOG_DIR: directory for that file (default: current directory)
func NewLogger() *LoggerCloser {
	output := io.Writer(os.Stderr)

	if os.Getenv("DIS86_LOG_TO_FILE") == "1" {
		f, err := os.OpenFile(DebugLogPath(time.Now()), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err == nil {
			output = f
		}
		// If file creation fails, fall back to stderr
	}

	return NewLoggerWithWriter(output)
}

// DebugLogPath returns the per-run debug log file name for t.
func DebugLogPath(t time.Time) string {
	name := fmt.Sprintf("dis86-%s-debug.log", t.Format("20060102-150405"))
	return filepath.Join(os.Getenv("DIS86_LOG_DIR"), name)
}

// LatestDebugLog returns the newest debug log in DIS86_LOG_DIR, or an error
// if there is none.
func LatestDebugLog() (string, error) {
	dir := os.Getenv("DIS86_LOG_DIR")
	if dir == "" {
		dir = "."
	}
	matches, err := filepath.Glob(filepath.Join(dir, "dis86-*-debug.log"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no debug logs in %s", dir)
	}
	// timestamps in the name sort lexically
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// IsDebug returns true if debug logging is enabled
func IsDebug() bool {
	return os.Getenv("DIS86_LOG_LEVEL") == "debug"
}

// Package debug is intellect's diagnostic log. It is silent unless
// INTELLECT_DEBUG is set or a host calls SetEnabled:
//
//	INTELLECT_DEBUG=1 intellect snapshot graph.svg
//
// Lines go to stderr with a timestamp and an [INTELLECT] prefix. Data
// integrity drops, rebinds and focus changes are logged here; nothing in
// this package is meant for end users.
package debug

import (
	"io"
	"log"
	"os"
	"time"
)

// EnvVar switches debug logging on when non-empty.
const EnvVar = "INTELLECT_DEBUG"

var (
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv(EnvVar) != "" {
		enabled = true
		logger = newLogger(os.Stderr)
	}
}

// Enabled reports whether lines are being written.
func Enabled() bool {
	return enabled
}

// SetEnabled turns logging on or off, creating the stderr logger on first use.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = newLogger(os.Stderr)
	}
}

// SetOutput redirects debug output. The TUI host uses this to keep log lines
// off the alternate screen.
func SetOutput(w io.Writer) {
	logger = newLogger(w)
}

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, "[INTELLECT] ", log.Ltime|log.Lmicroseconds)
}

// Log writes a printf-style line.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming records how long name took.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Printf("%s took %v", name, d)
}

// LogIf is Log guarded by cond.
func LogIf(cond bool, format string, args ...any) {
	if !enabled || !cond {
		return
	}
	logger.Printf(format, args...)
}

// LogEnterExit logs "-> name" now and "<- name (elapsed)" when the returned
// func runs:
//
//	defer debug.LogEnterExit("engine: rebind")()
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Printf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Printf("<- %s (%v)", name, time.Since(start))
	}
}

// Section marks the start of a phase in the log.
func Section(name string) {
	if !enabled {
		return
	}
	logger.Printf("=== %s ===", name)
}

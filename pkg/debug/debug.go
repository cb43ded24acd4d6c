// Package debug provides conditional debug logging for leadsheet.
//
// Debug logging is enabled by setting the LEADSHEET_DEBUG environment variable:
//
//	LEADSHEET_DEBUG=1 leadsheet song.txt
//
// When enabled, debug messages are written to stderr with timestamps, or to
// the file named by LEADSHEET_DEBUG_FILE. When disabled (default), all debug
// functions are no-ops.
package debug

import (
	"io"
	"log"
	"os"
	"sync"
	"time"
)

const prefix = "[LEADSHEET] "

var (
	mu sync.Mutex
	// enabled is true when LEADSHEET_DEBUG env var is set
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv("LEADSHEET_DEBUG") == "" {
		return
	}
	enabled = true
	var out io.Writer = os.Stderr
	if path := os.Getenv("LEADSHEET_DEBUG_FILE"); path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			out = f
		}
	}
	logger = log.New(out, prefix, log.Ltime|log.Lmicroseconds)
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, prefix, log.Ltime|log.Lmicroseconds)
	}
}

// SetOutput redirects debug output. The TUI uses this to keep log lines off
// the alternate screen.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = log.New(w, prefix, log.Ltime|log.Lmicroseconds)
		return
	}
	logger.SetOutput(w)
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	Log("%s took %v", name, d)
}

// LogEnterExit logs function entry and exit with timing.
//
//	defer debug.LogEnterExit("engine.RetrieveFileContents")()
func LogEnterExit(name string) func() {
	if !Enabled() {
		return func() {}
	}
	Log("-> %s", name)
	start := time.Now()
	return func() {
		LogTiming("<- "+name, time.Since(start))
	}
}

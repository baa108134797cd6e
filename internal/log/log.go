// Package log is Perth's process-wide logger. It mirrors the teacher's
// log package contract (Initialize/ErrorLog/WarningLog/InfoLog/Close) rather
// than introducing a new one, since every ambient caller in this codebase
// was written against that shape.
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrorLog, WarningLog, and InfoLog are the three severities callers
	// log at. They are safe to use before Initialize is called (they
	// default to writing to stderr) so packages can log during early
	// startup failures.
	ErrorLog   = stdlog.New(os.Stderr, "ERROR: ", stdlog.LstdFlags)
	WarningLog = stdlog.New(os.Stderr, "WARN:  ", stdlog.LstdFlags)
	InfoLog    = stdlog.New(os.Stderr, "INFO:  ", stdlog.LstdFlags)

	logFile *os.File
)

// Initialize opens the log file for this run and redirects ErrorLog,
// WarningLog, and InfoLog to it. The first variadic bool, when true,
// indicates telemetry is enabled and lines are also tee'd to stderr so a
// foreground run stays visible; its absence means "telemetry off".
func Initialize(daemon bool, telemetryEnabled ...bool) {
	tee := len(telemetryEnabled) > 0 && telemetryEnabled[0]

	dir, err := logDir()
	if err != nil {
		ErrorLog.Printf("could not resolve log directory, logging to stderr only: %v", err)
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		ErrorLog.Printf("could not create log directory %s: %v", dir, err)
		return
	}

	name := "perth.log"
	if daemon {
		name = "perth-daemon.log"
	}
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		ErrorLog.Printf("could not open log file %s: %v", path, err)
		return
	}
	logFile = f

	var out io.Writer = f
	if tee {
		out = io.MultiWriter(f, os.Stderr)
	}

	ErrorLog = stdlog.New(out, "ERROR: ", stdlog.LstdFlags)
	WarningLog = stdlog.New(out, "WARN:  ", stdlog.LstdFlags)
	InfoLog = stdlog.New(out, "INFO:  ", stdlog.LstdFlags)

	InfoLog.Printf("perth log started at %s", time.Now().UTC().Format(time.RFC3339))
}

// Close flushes and closes the log file opened by Initialize. It is a no-op
// if Initialize was never called or failed to open a file.
func Close() {
	if logFile == nil {
		return
	}
	_ = logFile.Close()
	logFile = nil
}

func logDir() (string, error) {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "perth", "log"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "perth", "log"), nil
}

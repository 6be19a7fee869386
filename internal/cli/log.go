// Package cli implements the dashgrid command-line interface.
//
// The CLI is built using cobra and logs through charmbracelet/log. Commands
// cover the whole layout lifecycle: inspecting topologies, compiling
// geometry, simulating drags, reading and writing persisted layouts,
// serving the HTTP API, and an interactive terminal board.
//
// # Commands
//
// The main commands are:
//   - topology: List, describe and graph the registered topologies
//   - compile: Print the CSS geometry of a topology
//   - drag: Replay a scripted divider drag and print each published vector
//   - layout: Get, set, reset, import and export persisted layouts
//   - serve: Run the HTTP API
//   - tui: Drag dividers with the mouse in the terminal
//   - cache: Manage the local layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. When the
// config sets log_file, log lines are also written to that file, rotated by
// size. Loggers are passed through context.Context to allow structured
// progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file rotation limits.
const (
	logMaxSizeMB  = 10
	logMaxBackups = 3
	logMaxAgeDays = 28
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// newLogWriter tees w into a size-rotated log file. The returned function
// closes the file.
func newLogWriter(w io.Writer, file string) (io.Writer, func() error) {
	rotator := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAge:     logMaxAgeDays,
		Compress:   true,
	}
	return io.MultiWriter(w, rotator), rotator.Close
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Imported 4 layouts (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

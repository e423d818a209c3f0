package sepia

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the default logger for strategies created by New.
// By default sepia produces no log output. Pass nil to restore silence.
//
// Strategies capture the logger when they are created; call SetLogger before
// New, or pass WithLogger.
//
// Log levels used by sepia:
//   - [slog.LevelDebug]: per-run diagnostics (dimensions, stripes, intermediates)
//   - [slog.LevelWarn]: an abandoned asynchronous wait
//   - [slog.LevelError]: a recovered backend failure
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current default logger. It is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// Package logutil - slog-Logger mit zusaetzlichem TRACE-Level
//
// Dieses Modul enthaelt:
// - LevelTrace: Log-Level unterhalb von DEBUG
// - NewLogger: Text-Handler mit kurzen Quelldateinamen
// - Trace/TraceContext: Logging auf TRACE-Level ueber den Default-Logger
package logutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"
)

const LevelTrace slog.Level = -8

// NewLogger returns a text logger writing to w. Records below level are
// dropped; TRACE records are labelled "TRACE".
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				if level, ok := attr.Value.Any().(slog.Level); ok && level == LevelTrace {
					attr.Value = slog.StringValue("TRACE")
				}
			case slog.SourceKey:
				if source, ok := attr.Value.Any().(*slog.Source); ok {
					source.File = filepath.Base(source.File)
				}
			}
			return attr
		},
	}))
}

// Trace logs msg at TRACE level on the default logger.
func Trace(msg string, args ...any) {
	log(context.Background(), slog.Default(), LevelTrace, msg, args...)
}

// TraceContext logs msg at TRACE level on the default logger.
func TraceContext(ctx context.Context, msg string, args ...any) {
	log(ctx, slog.Default(), LevelTrace, msg, args...)
}

// Log writes a record to logger, reporting the caller of Log as source
// location.
func Log(ctx context.Context, logger *slog.Logger, level slog.Level, msg string, args ...any) {
	log(ctx, logger, level, msg, args...)
}

func log(ctx context.Context, logger *slog.Logger, level slog.Level, msg string, args ...any) {
	if !logger.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = logger.Handler().Handle(ctx, r)
}

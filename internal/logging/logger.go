// Package logging defines the structured-logging interface used across
// MedTrack and its slog and zerolog implementations.
package logging

import (
	"context"
	"io"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are key-value pairs:
//
//	log.Info(ctx, "snapshot delivered", "collection", "logs", "count", n)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}

// Output formats accepted by New.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New builds a Logger writing to w. "console" selects the zerolog console
// writer, anything else the slog JSON handler.
func New(format, level string, w io.Writer) Logger {
	if strings.EqualFold(format, FormatConsole) {
		return NewConsoleLogger(w, level)
	}
	return NewJSONLogger(w, level)
}

// Nop discards everything. Handy in tests.
type Nop struct{}

func (Nop) Debug(context.Context, string, ...any) {}
func (Nop) Info(context.Context, string, ...any) {}
func (Nop) Warn(context.Context, string, ...any) {}
func (Nop) Error(context.Context, string, ...any) {}
func (n Nop) With(...any) Logger { return n }

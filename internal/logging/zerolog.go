package logging

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts zerolog to Logger.
type ZerologLogger struct {
	l zerolog.Logger
}

func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{l: l}
}

// NewConsoleLogger returns a human-readable logger for terminals.
func NewConsoleLogger(w io.Writer, level string) *ZerologLogger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return NewZerologLogger(zerolog.New(out).Level(lvl).With().Timestamp().Logger())
}

func (z *ZerologLogger) Debug(ctx context.Context, msg string, args ...any) {
	z.event(z.l.Debug(), args).Msg(msg)
}

func (z *ZerologLogger) Info(ctx context.Context, msg string, args ...any) {
	z.event(z.l.Info(), args).Msg(msg)
}

func (z *ZerologLogger) Warn(ctx context.Context, msg string, args ...any) {
	z.event(z.l.Warn(), args).Msg(msg)
}

func (z *ZerologLogger) Error(ctx context.Context, msg string, args ...any) {
	z.event(z.l.Error(), args).Msg(msg)
}

func (z *ZerologLogger) With(args ...any) Logger {
	c := z.l.With()
	for i := 0; i < len(args); i += 2 {
		key, val := pair(args, i)
		c = c.Interface(key, val)
	}
	return &ZerologLogger{l: c.Logger()}
}

func (z *ZerologLogger) event(e *zerolog.Event, args []any) *zerolog.Event {
	for i := 0; i < len(args); i += 2 {
		key, val := pair(args, i)
		if err, ok := val.(error); ok {
			e = e.AnErr(key, err)
			continue
		}
		e = e.Interface(key, val)
	}
	return e
}

// pair mirrors slog's handling of a dangling value: it is logged under "!BADKEY".
func pair(args []any, i int) (string, any) {
	if i+1 >= len(args) {
		return "!BADKEY", args[i]
	}
	key, ok := args[i].(string)
	if !ok {
		key = fmt.Sprint(args[i])
	}
	return key, args[i+1]
}

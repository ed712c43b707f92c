// Package logging configures the process-wide structured logger.
//
// Every line is one JSON object with "ts" (RFC3339Nano in the configured location), "level" and "msg".
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// New builds a JSON logger writing to w. Timestamps are rendered in loc.
func New(w io.Writer, loc *time.Location, level slog.Leveler) *slog.Logger {
	if loc == nil {
		loc = time.UTC
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				return slog.String("ts", a.Value.Time().In(loc).Format(time.RFC3339Nano))
			case slog.LevelKey:
				return slog.String(slog.LevelKey, strings.ToLower(a.Value.String()))
			}
			return a
		},
	}))
}

// Setup installs a stdout logger as the slog default and returns it.
// LOG_LEVEL accepts debug, info, warn or error.
func Setup(loc *time.Location) *slog.Logger {
	logger := New(os.Stdout, loc, levelFromEnv())
	slog.SetDefault(logger)
	return logger
}

func levelFromEnv() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(os.Getenv("LOG_LEVEL"))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

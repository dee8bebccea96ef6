// Package alog provides the structured logging used across codecamp.
//
// All constructors return a *slog.Logger. Records are enriched with the
// trace and span ids of the active span and attached to the span as events,
// so logs and traces can be correlated.
package alog

import (
	"context"
	"log/slog"
)

// Logger interface is a subset of slog.Logger, with the aim to:
//  1. encourage the use of the methods offering context.Context, so that tracing information can be correlated.
//  2. encourage the use of the levels `DEBUG` and `INFO` over others, but without preventing them, see:
//     https://dave.cheney.net/2015/11/05/lets-talk-about-logging
type Logger interface {
	Log(ctx context.Context, level slog.Level, msg string, args ...any)
	LogAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr)
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
}

const (
	// LevelInfo is used to see what is going on inside the data access layer and the use case decorators.
	LevelInfo = slog.Level(-8)

	// LevelDebug logs every statement sent to the database, with its arguments.
	LevelDebug = slog.Level(-12)
)

// MapLogLevelsToName replaces the default name of a custom log level with a speaking name.
func MapLogLevelsToName(_ []string, attr slog.Attr) slog.Attr {
	if attr.Key == slog.LevelKey {
		level, _ := attr.Value.Any().(slog.Level)

		levelLabel, exists := levelNames()[level]
		if !exists {
			levelLabel = level.String()
		}

		attr.Value = slog.StringValue(levelLabel)
	}

	return attr
}

func levelNames() map[slog.Leveler]string {
	return map[slog.Leveler]string{
		LevelInfo:  "CODECAMP:INFO",
		LevelDebug: "CODECAMP:DEBUG",
	}
}

// ParseLevel returns the level for a configuration value.
// Next to the slog names, "codecamp:info" and "codecamp:debug" are accepted.
// Unknown values fall back to slog.LevelInfo.
func ParseLevel(s string) slog.Level {
	switch s {
	case "codecamp:debug", "CODECAMP:DEBUG":
		return LevelDebug
	case "codecamp:info", "CODECAMP:INFO":
		return LevelInfo
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}

	return level
}

package alog

import (
	"context"
	"log/slog"
)

// NewNoop returns a Logger discarding every record.
// It is the default of components that are given no logger, e.g. the repository executor.
func NewNoop() *slog.Logger {
	return slog.New(discardHandler{})
}

// discardHandler reports every level as disabled, so records are never built.
type discardHandler struct{}

var _ slog.Handler = discardHandler{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler     { return d }
func (d discardHandler) WithGroup(string) slog.Handler          { return d }

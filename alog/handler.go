package alog

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LoggerOpt allows to initialise a logger with custom options.
type LoggerOpt func(logger *handler)

// WithHandler adds a slog.Handler to be logged to.
// You can set as many as you want.
func WithHandler(h slog.Handler) LoggerOpt {
	return func(l *handler) {
		l.handlers = append(l.handlers, h)
	}
}

// WithLevel initialises the logger with a starting level.
// To change the level at runtime use Unwrap(logger).SetLevel(LevelInfo).
func WithLevel(level slog.Level) LoggerOpt {
	return func(l *handler) {
		l.level.Set(level)
	}
}

// New returns a production ready logger.
//
// If no options are given it creates a default handler, logging JSON to Stderr.
// Otherwise, use WithHandler to set your own loggers.
func New(opts ...LoggerOpt) *slog.Logger {
	return slog.New(newHandler(opts...))
}

// NewDevelopment returns a logger ready for local development purposes.
// It logs human-readable text to Stderr and, if loki is not nil, ships all records to loki.
func NewDevelopment(loki *LokiHandlerOptions) *slog.Logger {
	config := []LoggerOpt{
		WithLevel(slog.LevelDebug),
		WithHandler(slog.NewTextHandler(os.Stderr, debugHandlerOptions())),
	}

	if loki != nil {
		config = append(config, WithHandler(NewLokiHandler(loki)))
	}

	return New(config...)
}

// newHandler does not output anything directly and relies on other slog.Handlers to do so.
// If no Handlers are provided via WithHandler, a default JSON handler logs to os.Stderr.
func newHandler(opts ...LoggerOpt) *handler {
	logger := &handler{
		handlers: []slog.Handler{},
		level:    &slog.LevelVar{},
	}
	logger.level.Set(slog.LevelInfo)

	for _, opt := range opts {
		opt(logger)
	}

	if len(logger.handlers) == 0 {
		logger.handlers = []slog.Handler{slog.NewJSONHandler(os.Stderr, defaultHandlerOptions())}
	}

	return logger
}

// handler fans out to multiple handlers and does the lifting for observability:
// records carry the trace and span ids and are added to the active span as events.
type handler struct {
	// level is shared by all copies created via WithAttrs and WithGroup.
	// The level of individual handlers set via WithHandler is ignored.
	level *slog.LevelVar

	handlers []slog.Handler
}

var (
	_ slog.Handler = (*handler)(nil)
	_ Leveler      = (*handler)(nil)
)

func (l *handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= l.level.Level()
}

func (l *handler) Handle(ctx context.Context, record slog.Record) error {
	span := trace.SpanFromContext(ctx)

	record = addTraceAndSpanIDsToLogs(span, record)

	if attrs, ok := FromContext(ctx); ok {
		record.AddAttrs(attrs...)
	}

	if span.IsRecording() {
		addLogsToActiveSpanAsEvent(span, spanAttrsFromRecord(record), record)
	}

	var retErr error

	for _, h := range l.handlers {
		err := h.Handle(ctx, record)
		retErr = errors.Join(retErr, err)
	}

	return retErr
}

func (l *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(l.handlers))

	for i, h := range l.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}

	return &handler{handlers: handlers, level: l.level}
}

func (l *handler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(l.handlers))

	for i, h := range l.handlers {
		handlers[i] = h.WithGroup(name)
	}

	return &handler{handlers: handlers, level: l.level}
}

// SetLevel changes the level for all handlers set with WithHandler().
// Even the ones "copied" via any WithX method.
func (l *handler) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// Level returns the log level of the handler.
func (l *handler) Level() slog.Level {
	return l.level.Level()
}

// Leveler offers control over the level of a logger at run time.
// Unwrap a logger to get access to it.
type Leveler interface {
	SetLevel(level slog.Level)
	Level() slog.Level
}

// Unwrap returns the Leveler of the given logger.
// For loggers not created by this package, it returns nil.
func Unwrap(logger Logger) Leveler { //nolint:ireturn // TestLogger and handler are both valid
	if l, ok := logger.(*TestLogger); ok {
		return l
	}

	sl, ok := logger.(*slog.Logger)
	if !ok {
		return nil
	}

	if l, ok := sl.Handler().(*handler); ok {
		return l
	}

	return nil
}

func addTraceAndSpanIDsToLogs(span trace.Span, record slog.Record) slog.Record {
	sCtx := span.SpanContext()

	if sCtx.HasTraceID() {
		record.AddAttrs(slog.String("traceID", sCtx.TraceID().String()))
	}

	if sCtx.HasSpanID() {
		record.AddAttrs(slog.String("spanID", sCtx.SpanID().String()))
	}

	return record
}

func addLogsToActiveSpanAsEvent(span trace.Span, attrs []attribute.KeyValue, record slog.Record) {
	span.AddEvent("log", trace.WithAttributes(attrs...))

	if record.Level >= slog.LevelError {
		span.SetStatus(codes.Error, record.Message)
	}
}

func spanAttrsFromRecord(record slog.Record) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("log.severity", record.Level.String()),
		attribute.String("log.message", record.Message),
	}

	record.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, attribute.String(a.Key, a.Value.String()))

		return true
	})

	return attrs
}

func defaultHandlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		AddSource:   true,
		Level:       LevelDebug, // filtering is done by handler, so let every record through
		ReplaceAttr: MapLogLevelsToName,
	}
}

// debugHandlerOptions keeps the log output more readable, by removing not essential keys.
func debugHandlerOptions() *slog.HandlerOptions {
	opt := defaultHandlerOptions()
	opt.AddSource = false

	return opt
}

// Package app holds the use case signatures of the application layer
// and the decorators wrapping them with tracing, metrics, logging, validation and transactions.
package app

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/coreapi/codecamp/alog"
)

// Request can produce side effects and return data.
type Request[Req any, Res any] interface {
	H(ctx context.Context, req Req) (Res, error)
}

// Command produces side effects, e.g. mutate state.
type Command[C any] interface {
	H(ctx context.Context, cmd C) error
}

// Query does not produce side effects and returns data.
type Query[Q any, Res any] interface {
	H(ctx context.Context, query Q) (Res, error)
}

// NewInstrumentedRequest wraps req with tracing, metrics and logging.
// The span is the outermost layer, so metrics and logs are recorded inside of it.
func NewInstrumentedRequest[Req any, Res any](
	traceProvider trace.TracerProvider,
	meterProvider metric.MeterProvider,
	logger alog.Logger,
	req Request[Req, Res],
) Request[Req, Res] {
	logged := NewLoggedRequest(logger, req)
	metered := NewMeteredRequest(meterProvider, logged)

	return NewTracedRequest(traceProvider, metered)
}

// NewInstrumentedCommand is the Command variant of NewInstrumentedRequest.
func NewInstrumentedCommand[C any](
	traceProvider trace.TracerProvider,
	meterProvider metric.MeterProvider,
	logger alog.Logger,
	cmd Command[C],
) Command[C] {
	logged := NewLoggedCommand(logger, cmd)
	metered := NewMeteredCommand(meterProvider, logged)

	return NewTracedCommand(traceProvider, metered)
}

// NewInstrumentedQuery is the Query variant of NewInstrumentedRequest.
func NewInstrumentedQuery[Q any, Res any](
	traceProvider trace.TracerProvider,
	meterProvider metric.MeterProvider,
	logger alog.Logger,
	query Query[Q, Res],
) Query[Q, Res] {
	logged := NewLoggedQuery(logger, query)
	metered := NewMeteredQuery(meterProvider, logged)

	return NewTracedQuery(traceProvider, metered)
}

// commandName names the use case input in, e.g. camps.application.GetCampQuery.
// Types declared below contexts/<name>/internal/ are prefixed with the name of their context.
func commandName(in any) string {
	name := fmt.Sprintf("%T", in)

	typ := reflect.TypeOf(in)
	if typ == nil {
		return name
	}

	_, afterContexts, found := strings.Cut(typ.PkgPath(), "/contexts/")
	if !found {
		return name
	}

	boundedContext, _, found := strings.Cut(afterContexts, "/internal/")
	if !found {
		return name
	}

	return boundedContext + "." + name
}

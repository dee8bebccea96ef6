package app

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "codecamp.application"

// traced wraps run in a span named usecase.
// A failing use case marks the span as failed and records the error as span event.
func traced(ctx context.Context, tracer trace.Tracer, kind string, in any, run func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "usecase",
		trace.WithAttributes(
			attribute.String("command", commandName(in)),
			attribute.String("kind", kind),
		),
	)
	defer span.End()

	err := run(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}

func NewTracedRequest[Req any, Res any](traceProvider trace.TracerProvider, req Request[Req, Res]) Request[Req, Res] {
	return &requestTracingDecorator[Req, Res]{
		tracer: traceProvider.Tracer(tracerName),
		base:   req,
	}
}

type requestTracingDecorator[Req any, Res any] struct {
	tracer trace.Tracer
	base   Request[Req, Res]
}

func (d *requestTracingDecorator[Req, Res]) H(ctx context.Context, req Req) (Res, error) { //nolint:ireturn,lll // valid use of generics
	var res Res

	err := traced(ctx, d.tracer, "request", req, func(ctx context.Context) error {
		var err error
		res, err = d.base.H(ctx, req)

		return err
	})

	return res, err
}

func NewTracedCommand[C any](traceProvider trace.TracerProvider, cmd Command[C]) Command[C] {
	return &commandTracingDecorator[C]{
		tracer: traceProvider.Tracer(tracerName),
		base:   cmd,
	}
}

type commandTracingDecorator[C any] struct {
	tracer trace.Tracer
	base   Command[C]
}

func (d *commandTracingDecorator[C]) H(ctx context.Context, cmd C) error {
	return traced(ctx, d.tracer, "command", cmd, func(ctx context.Context) error {
		return d.base.H(ctx, cmd)
	})
}

func NewTracedQuery[Q any, Res any](traceProvider trace.TracerProvider, query Query[Q, Res]) Query[Q, Res] {
	return &queryTracingDecorator[Q, Res]{
		tracer: traceProvider.Tracer(tracerName),
		base:   query,
	}
}

type queryTracingDecorator[Q any, Res any] struct {
	tracer trace.Tracer
	base   Query[Q, Res]
}

func (d *queryTracingDecorator[Q, Res]) H(ctx context.Context, query Q) (Res, error) { //nolint:ireturn,lll // valid use of generics
	var res Res

	err := traced(ctx, d.tracer, "query", query, func(ctx context.Context) error {
		var err error
		res, err = d.base.H(ctx, query)

		return err
	})

	return res, err
}

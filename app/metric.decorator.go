package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// useCaseMetrics are recorded for every decorated use case,
// labeled by command and status (success or failure).
type useCaseMetrics struct {
	counter  metric.Int64Counter
	duration metric.Float64Histogram
}

func newUseCaseMetrics(meterProvider metric.MeterProvider) useCaseMetrics {
	meter := meterProvider.Meter("codecamp.application")

	counter, _ := meter.Int64Counter("usecases", metric.WithDescription("number of executed use cases"))
	duration, _ := meter.Float64Histogram("usecases_duration_seconds", metric.WithDescription("duration of executed use cases"))

	return useCaseMetrics{counter: counter, duration: duration}
}

func (m useCaseMetrics) record(ctx context.Context, name string, run func() error) error {
	start := time.Now()

	err := run()

	status := "success"
	if err != nil {
		status = "failure"
	}

	opt := metric.WithAttributes(
		attribute.String("command", name),
		attribute.String("status", status),
	)

	m.counter.Add(ctx, 1, opt)
	m.duration.Record(ctx, time.Since(start).Seconds(), opt)

	return err
}

func NewMeteredRequest[Req any, Res any](meterProvider metric.MeterProvider, req Request[Req, Res]) Request[Req, Res] {
	return &requestMeteringDecorator[Req, Res]{
		metrics: newUseCaseMetrics(meterProvider),
		base:    req,
	}
}

type requestMeteringDecorator[Req any, Res any] struct {
	metrics useCaseMetrics
	base    Request[Req, Res]
}

func (d *requestMeteringDecorator[Req, Res]) H(ctx context.Context, req Req) (Res, error) { //nolint:ireturn,lll // valid use of generics
	var res Res

	err := d.metrics.record(ctx, commandName(req), func() error {
		var err error
		res, err = d.base.H(ctx, req)

		return err //nolint:wrapcheck // decorate but not change anything
	})

	return res, err
}

func NewMeteredCommand[C any](meterProvider metric.MeterProvider, cmd Command[C]) Command[C] {
	return &commandMeteringDecorator[C]{
		metrics: newUseCaseMetrics(meterProvider),
		base:    cmd,
	}
}

type commandMeteringDecorator[C any] struct {
	metrics useCaseMetrics
	base    Command[C]
}

func (d *commandMeteringDecorator[C]) H(ctx context.Context, cmd C) error {
	return d.metrics.record(ctx, commandName(cmd), func() error {
		return d.base.H(ctx, cmd) //nolint:wrapcheck // decorate but not change anything
	})
}

func NewMeteredQuery[Q any, Res any](meterProvider metric.MeterProvider, query Query[Q, Res]) Query[Q, Res] {
	return &queryMeteringDecorator[Q, Res]{
		metrics: newUseCaseMetrics(meterProvider),
		base:    query,
	}
}

type queryMeteringDecorator[Q any, Res any] struct {
	metrics useCaseMetrics
	base    Query[Q, Res]
}

func (d *queryMeteringDecorator[Q, Res]) H(ctx context.Context, query Q) (Res, error) { //nolint:ireturn,lll // valid use of generics
	var res Res

	err := d.metrics.record(ctx, commandName(query), func() error {
		var err error
		res, err = d.base.H(ctx, query)

		return err //nolint:wrapcheck // decorate but not change anything
	})

	return res, err
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	ctx2 "github.com/coreapi/codecamp/ctx"
)

const spanKey ctx2.CTXKey = "codecamp.pgx_span"

var _ pgx.QueryTracer = (*pgxTraceAdapter)(nil)

// pgxTraceAdapter opens one span per statement sent to PostgreSQL.
type pgxTraceAdapter struct {
	tracer trace.Tracer
}

func (p pgxTraceAdapter) TraceQueryStart(
	ctx context.Context,
	conn *pgx.Conn,
	data pgx.TraceQueryStartData,
) context.Context {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.statement", data.SQL),
		attribute.StringSlice("db.statement.args", argsToStrings(data.Args)),
	}

	if conn != nil {
		attrs = append(attrs,
			attribute.String("db.name", conn.Config().Database),
			attribute.String("db.user", conn.Config().User),
			attribute.String("net.peer.name", conn.Config().Host),
			attribute.Int("net.peer.port", int(conn.Config().Port)),
		)
	}

	ctx, span := p.tracer.Start(ctx, "pgx", trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))

	return context.WithValue(ctx, spanKey, span)
}

func (p pgxTraceAdapter) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span, ok := ctx.Value(spanKey).(trace.Span)
	if !ok {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))

	if data.Err != nil {
		span.RecordError(data.Err)
		span.SetStatus(codes.Error, data.Err.Error())
	}

	span.End()
}

func argsToStrings(in []any) []string {
	s := make([]string, len(in))

	for i := range in {
		s[i] = fmt.Sprintf("%v", in[i])
	}

	return s
}

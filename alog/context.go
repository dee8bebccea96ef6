package alog

import (
	"context"
	"log/slog"

	ctx2 "github.com/coreapi/codecamp/ctx"
)

const ctxAttrs ctx2.CTXKey = "codecamp.log_attrs"

// AddAttr returns a context carrying attr in addition to all attributes already in ctx.
// Every record logged with the returned context has these attributes.
func AddAttr(ctx context.Context, attr ...slog.Attr) context.Context {
	existing, _ := FromContext(ctx)

	attrs := make([]slog.Attr, 0, len(existing)+len(attr))
	attrs = append(attrs, existing...)
	attrs = append(attrs, attr...)

	return context.WithValue(ctx, ctxAttrs, attrs)
}

// FromContext returns the attributes added with AddAttr.
func FromContext(ctx context.Context) ([]slog.Attr, bool) {
	attrs, ok := ctx.Value(ctxAttrs).([]slog.Attr)

	return attrs, ok && len(attrs) > 0
}

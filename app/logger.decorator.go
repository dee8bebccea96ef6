package app

import (
	"context"
	"log/slog"

	"github.com/coreapi/codecamp/alog"
)

func NewLoggedRequest[Req any, Res any](logger alog.Logger, req Request[Req, Res]) Request[Req, Res] {
	return &requestLoggingDecorator[Req, Res]{
		logger: logger,
		base:   req,
	}
}

type requestLoggingDecorator[Req any, Res any] struct {
	logger alog.Logger
	base   Request[Req, Res]
}

func (d *requestLoggingDecorator[Req, Res]) H(ctx context.Context, req Req) (Res, error) { //nolint:ireturn,lll // valid use of generics
	var res Res

	err := logged(ctx, d.logger, "request", commandName(req), func() error {
		var err error
		res, err = d.base.H(ctx, req)

		return err
	})

	return res, err
}

func NewLoggedCommand[C any](logger alog.Logger, cmd Command[C]) Command[C] {
	return &commandLoggingDecorator[C]{
		logger: logger,
		base:   cmd,
	}
}

type commandLoggingDecorator[C any] struct {
	logger alog.Logger
	base   Command[C]
}

func (d *commandLoggingDecorator[C]) H(ctx context.Context, cmd C) error {
	return logged(ctx, d.logger, "command", commandName(cmd), func() error {
		return d.base.H(ctx, cmd)
	})
}

func NewLoggedQuery[Q any, Res any](logger alog.Logger, query Query[Q, Res]) Query[Q, Res] {
	return &queryLoggingDecorator[Q, Res]{
		logger: logger,
		base:   query,
	}
}

type queryLoggingDecorator[Q any, Res any] struct {
	logger alog.Logger
	base   Query[Q, Res]
}

func (d *queryLoggingDecorator[Q, Res]) H(ctx context.Context, query Q) (Res, error) { //nolint:ireturn,lll // valid use of generics
	var res Res

	err := logged(ctx, d.logger, "query", commandName(query), func() error {
		var err error
		res, err = d.base.H(ctx, query)

		return err
	})

	return res, err
}

func logged(ctx context.Context, logger alog.Logger, kind string, name string, run func() error) error {
	logger.DebugContext(ctx, "executing "+kind,
		slog.String("command", name),
	)

	err := run()

	if err != nil {
		logger.DebugContext(ctx, "failed to execute "+kind,
			slog.String("command", name),
			slog.String("error", err.Error()),
		)
	} else {
		logger.DebugContext(ctx, kind+" executed successfully",
			slog.String("command", name))
	}

	return err //nolint:wrapcheck // decorate but not change anything
}

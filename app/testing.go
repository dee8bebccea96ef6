package app

import (
	"context"
	"errors"
)

//
// This file contains convenience helpers you can use to easier test
// your calling code relying on this usecase pattern.
//

var ErrUseCaseFailed = errors.New("usecase failed")

// TestRequestHandler turns fn into a Request, e.g. to assert on the context a decorator passes on.
func TestRequestHandler[Req any, Res any](fn func(ctx context.Context, req Req) (Res, error)) Request[Req, Res] {
	return requestFunc[Req, Res](fn)
}

type requestFunc[Req any, Res any] func(ctx context.Context, req Req) (Res, error)

func (f requestFunc[Req, Res]) H(ctx context.Context, req Req) (Res, error) { return f(ctx, req) } //nolint:ireturn,lll // valid use of generics

func TestQueryHandler[Q any, Res any](fn func(ctx context.Context, query Q) (Res, error)) Query[Q, Res] {
	return requestFunc[Q, Res](fn)
}

func TestCommandHandler[C any](fn func(ctx context.Context, cmd C) error) Command[C] {
	return commandFunc[C](fn)
}

type commandFunc[C any] func(ctx context.Context, cmd C) error

func (f commandFunc[C]) H(ctx context.Context, cmd C) error { return f(ctx, cmd) }

func TestSuccessRequestHandler[Req any, Res any]() Request[Req, Res] {
	return TestRequestHandler(func(context.Context, Req) (Res, error) {
		var result Res

		return result, nil
	})
}

func TestFailureRequestHandler[Req any, Res any]() Request[Req, Res] {
	return TestRequestHandler(func(context.Context, Req) (Res, error) {
		var result Res

		return result, ErrUseCaseFailed
	})
}

func TestSuccessCommandHandler[C any]() Command[C] {
	return TestCommandHandler(func(context.Context, C) error { return nil })
}

func TestFailureCommandHandler[C any]() Command[C] {
	return TestCommandHandler(func(context.Context, C) error { return ErrUseCaseFailed })
}

func TestSuccessQueryHandler[Q any, Res any]() Query[Q, Res] {
	return TestSuccessRequestHandler[Q, Res]()
}

func TestFailureQueryHandler[Q any, Res any]() Query[Q, Res] {
	return TestFailureRequestHandler[Q, Res]()
}

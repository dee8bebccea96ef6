package app

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"

	ctx2 "github.com/coreapi/codecamp/ctx"
)

const CtxValidated ctx2.CTXKey = "codecamp.validated"

// defaultValidator is shared by all decorators given no validator,
// so the struct information validator caches is built once per type.
var defaultValidator = sync.OnceValue(func() *validator.Validate { //nolint:gochecknoglobals
	return validator.New(validator.WithRequiredStructEnabled())
})

// PassedValidation reports whether the request passed a validation decorator.
// Use it in a use case that must not run on unvalidated input.
func PassedValidation(ctx context.Context) bool {
	if v, ok := ctx.Value(CtxValidated).(bool); ok {
		return v
	}

	return false
}

// validated runs next only if in passes validate.
// The error is a validator.ValidationErrors, so callers can report every failed field.
func validated(ctx context.Context, validate *validator.Validate, in any, next func(ctx context.Context) error) error {
	if err := validate.Struct(in); err != nil {
		return err //nolint:wrapcheck // validation error is returned on purpose
	}

	return next(context.WithValue(ctx, CtxValidated, true))
}

func validatorOrDefault(validate *validator.Validate) *validator.Validate {
	if validate == nil {
		return defaultValidator()
	}

	return validate
}

func NewValidatedRequest[Req any, Res any](validate *validator.Validate, req Request[Req, Res]) Request[Req, Res] {
	return &requestValidatingDecorator[Req, Res]{
		validate: validatorOrDefault(validate),
		base:     req,
	}
}

type requestValidatingDecorator[Req any, Res any] struct {
	validate *validator.Validate
	base     Request[Req, Res]
}

func (d *requestValidatingDecorator[Req, Res]) H(ctx context.Context, req Req) (Res, error) { //nolint:ireturn,lll // valid use of generics
	var res Res

	err := validated(ctx, d.validate, req, func(ctx context.Context) error {
		var err error
		res, err = d.base.H(ctx, req)

		return err
	})

	return res, err
}

func NewValidatedCommand[C any](validate *validator.Validate, cmd Command[C]) Command[C] {
	return &commandValidatingDecorator[C]{
		validate: validatorOrDefault(validate),
		base:     cmd,
	}
}

type commandValidatingDecorator[C any] struct {
	validate *validator.Validate
	base     Command[C]
}

func (d *commandValidatingDecorator[C]) H(ctx context.Context, cmd C) error {
	return validated(ctx, d.validate, cmd, func(ctx context.Context) error {
		return d.base.H(ctx, cmd)
	})
}

func NewValidatedQuery[Q any, Res any](validate *validator.Validate, query Query[Q, Res]) Query[Q, Res] {
	return &queryValidatingDecorator[Q, Res]{
		validate: validatorOrDefault(validate),
		base:     query,
	}
}

type queryValidatingDecorator[Q any, Res any] struct {
	validate *validator.Validate
	base     Query[Q, Res]
}

func (d *queryValidatingDecorator[Q, Res]) H(ctx context.Context, query Q) (Res, error) { //nolint:ireturn,lll // valid use of generics
	var res Res

	err := validated(ctx, d.validate, query, func(ctx context.Context) error {
		var err error
		res, err = d.base.H(ctx, query)

		return err
	})

	return res, err
}

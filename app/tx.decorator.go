package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/coreapi/codecamp/postgres"
)

var ErrTransaction = errors.New("transaction failed")

// TxBeginner starts transactions, e.g. a *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NewTxRequest runs req in a transaction placed in the context under postgres.CtxTX.
// If the context already carries a transaction, a savepoint inside of it is used.
func NewTxRequest[Req any, Res any](db TxBeginner, req Request[Req, Res]) Request[Req, Res] {
	return &requestTxDecorator[Req, Res]{
		db:   db,
		base: req,
	}
}

type requestTxDecorator[Req any, Res any] struct {
	db   TxBeginner
	base Request[Req, Res]
}

func (d *requestTxDecorator[Req, Res]) H(ctx context.Context, req Req) (Res, error) { //nolint:ireturn,lll // valid use of generics
	var res Res

	err := inTx(ctx, d.db, func(ctx context.Context) error {
		var err error
		res, err = d.base.H(ctx, req)

		return err
	})
	if err != nil {
		return *new(Res), err
	}

	return res, nil
}

// NewTxCommand runs cmd in a transaction placed in the context under postgres.CtxTX.
func NewTxCommand[C any](db TxBeginner, cmd Command[C]) Command[C] {
	return &commandTxDecorator[C]{
		db:   db,
		base: cmd,
	}
}

type commandTxDecorator[C any] struct {
	db   TxBeginner
	base Command[C]
}

func (d *commandTxDecorator[C]) H(ctx context.Context, cmd C) error {
	return inTx(ctx, d.db, func(ctx context.Context) error {
		return d.base.H(ctx, cmd)
	})
}

func inTx(ctx context.Context, db TxBeginner, run func(ctx context.Context) error) error {
	var beginner TxBeginner = db
	if tx, ok := ctx.Value(postgres.CtxTX).(pgx.Tx); ok {
		beginner = tx
	}

	tx, err := beginner.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: could not start transaction: %v", ErrTransaction, err) //nolint:errorlint // prevent err in api
	}

	err = run(context.WithValue(ctx, postgres.CtxTX, tx))
	if err != nil {
		if rb := tx.Rollback(ctx); rb != nil {
			return fmt.Errorf("%w: could not rollback transaction: %v: %w", ErrTransaction, rb, err) //nolint:errorlint,lll // keep the use case error
		}

		return err //nolint:wrapcheck // decorate but not change anything
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: could not commit transaction: %v", ErrTransaction, err) //nolint:errorlint // prevent err in api
	}

	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/coreapi/codecamp/alog"
	"github.com/coreapi/codecamp/postgres"
	"github.com/coreapi/codecamp/repository/q"
)

// ExecutorOption allows to initialise an Executor with custom options.
type ExecutorOption func(*Executor)

// WithLogger logs every statement at alog.LevelDebug and every failure at alog.LevelInfo.
func WithLogger(logger alog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithTracerProvider opens a span for every call of the Executor.
func WithTracerProvider(tp trace.TracerProvider) ExecutorOption {
	return func(e *Executor) {
		e.tracer = tp.Tracer("codecamp.repository")
	}
}

// NewExecutor returns an Executor compiling all queries with dialect
// and running them on connections of provider.
func NewExecutor(provider ConnectionProvider, dialect q.Dialect, opts ...ExecutorOption) *Executor {
	e := &Executor{
		provider: provider,
		dialect:  dialect,
		logger:   alog.NewNoop(),
		tracer:   noop.NewTracerProvider().Tracer(""),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Executor compiles queries, runs them, and maps the results.
// It holds no state between calls and is safe for concurrent use.
type Executor struct {
	provider ConnectionProvider
	logger   alog.Logger
	tracer   trace.Tracer
	dialect  q.Dialect
}

// Execute runs a statement that returns no rows.
// It reports whether at least one row was affected.
func (e *Executor) Execute(ctx context.Context, query q.Query) (bool, error) {
	return e.exec(ctx, "execute", query)
}

// Delete runs a delete statement and reports whether at least one row was removed.
func (e *Executor) Delete(ctx context.Context, query q.Query) (bool, error) {
	return e.exec(ctx, "delete", query)
}

// CreateAndReturnID returns the first column of the first row as an id.
// Use it for inserts with q.Query.Returning or for id lookups.
// If there is no row, or the value is NULL, the id is 0. Callers must treat 0 as not found.
func (e *Executor) CreateAndReturnID(ctx context.Context, query q.Query) (int, error) {
	var id *int

	err := e.query(ctx, "create_and_return_id", query, func(rows pgx.Rows) error {
		if !rows.Next() {
			return rows.Err()
		}

		return rows.Scan(&id) //nolint:wrapcheck // wrapped by query
	})
	if err != nil || id == nil {
		return 0, err
	}

	return *id, nil
}

// BulkOperation runs all queries in one transaction.
// If any of them fails, everything is rolled back and the error returned.
// Otherwise, the transaction is committed once after the last statement.
//
// If ctx already carries a transaction, a savepoint inside of it is used.
func (e *Executor) BulkOperation(ctx context.Context, queries []q.Query) (bool, error) {
	ctx, span := e.tracer.Start(ctx, "repository.bulk_operation",
		trace.WithAttributes(attribute.Int("db.statements", len(queries))))
	defer span.End()

	compiled := make([]q.Compiled, 0, len(queries))

	for _, query := range queries {
		c, err := e.compile(query)
		if err != nil {
			return false, e.fail(ctx, span, "bulk_operation", err)
		}

		compiled = append(compiled, c)
	}

	conn, err := e.conn(ctx)
	if err != nil {
		return false, e.fail(ctx, span, "bulk_operation", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return false, e.fail(ctx, span, "bulk_operation",
			fmt.Errorf("%w: could not start transaction: %v", ErrDatabaseFailure, err)) //nolint:errorlint,lll // prevent err in api
	}

	for i, c := range compiled {
		e.logStatement(ctx, "bulk_operation", c)

		_, err = tx.Exec(ctx, c.SQL, c.Args...)
		if err != nil {
			err = fmt.Errorf("%w: could not execute statement %d of %d on %s: %v", //nolint:errorlint // prevent err in api
				ErrDatabaseFailure, i+1, len(compiled), queries[i].Table(), err)

			if rb := tx.Rollback(ctx); rb != nil {
				err = fmt.Errorf("%w: could not rollback transaction: %v", err, rb) //nolint:errorlint // prevent err in api
			}

			return false, e.fail(ctx, span, "bulk_operation", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, e.fail(ctx, span, "bulk_operation",
			fmt.Errorf("%w: could not commit transaction: %v", ErrDatabaseFailure, err)) //nolint:errorlint,lll // prevent err in api
	}

	return true, nil
}

// Get returns the first row mapped to T, or nil if there is none.
// Columns are mapped to the fields of T by their db tag or snake_case name.
func Get[T any](ctx context.Context, e *Executor, query q.Query) (*T, error) {
	var result *T

	err := e.query(ctx, "get", query, func(rows pgx.Rows) error {
		if !rows.Next() {
			return rows.Err()
		}

		result = new(T)

		return pgxscan.ScanRow(result, rows) //nolint:wrapcheck // wrapped by query
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetList returns all rows mapped to T. Without rows, the slice is empty.
func GetList[T any](ctx context.Context, e *Executor, query q.Query) ([]T, error) {
	result := []T{}

	err := e.query(ctx, "get_list", query, func(rows pgx.Rows) error {
		return pgxscan.ScanAll(&result, rows) //nolint:wrapcheck // wrapped by query
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (e *Executor) exec(ctx context.Context, op string, query q.Query) (bool, error) {
	ctx, span := e.start(ctx, op, query)
	defer span.End()

	compiled, err := e.compile(query)
	if err != nil {
		return false, e.fail(ctx, span, op, err)
	}

	conn, err := e.conn(ctx)
	if err != nil {
		return false, e.fail(ctx, span, op, err)
	}
	defer conn.Release()

	e.logStatement(ctx, op, compiled)

	tag, err := conn.Exec(ctx, compiled.SQL, compiled.Args...)
	if err != nil {
		return false, e.fail(ctx, span, op,
			fmt.Errorf("%w: could not %s on %s: %v", ErrDatabaseFailure, query.Kind(), query.Table(), err)) //nolint:errorlint,lll // prevent err in api
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tag.RowsAffected()))

	return tag.RowsAffected() > 0, nil
}

// query runs a statement returning rows and hands them to read.
// The rows are closed and the connection is released afterwards.
func (e *Executor) query(ctx context.Context, op string, query q.Query, read func(rows pgx.Rows) error) error {
	ctx, span := e.start(ctx, op, query)
	defer span.End()

	compiled, err := e.compile(query)
	if err != nil {
		return e.fail(ctx, span, op, err)
	}

	conn, err := e.conn(ctx)
	if err != nil {
		return e.fail(ctx, span, op, err)
	}
	defer conn.Release()

	e.logStatement(ctx, op, compiled)

	rows, err := conn.Query(ctx, compiled.SQL, compiled.Args...)
	if err != nil {
		return e.fail(ctx, span, op,
			fmt.Errorf("%w: could not query %s: %v", ErrDatabaseFailure, query.Table(), err)) //nolint:errorlint,lll // prevent err in api
	}
	defer rows.Close()

	err = read(rows)
	if err == nil {
		rows.Close()
		err = rows.Err()
	}

	if err != nil {
		if errors.Is(err, ErrDatabaseFailure) {
			return e.fail(ctx, span, op, err)
		}

		return e.fail(ctx, span, op,
			fmt.Errorf("%w: could not read %s: %v", ErrDatabaseFailure, query.Table(), err)) //nolint:errorlint,lll // prevent err in api
	}

	return nil
}

func (e *Executor) compile(query q.Query) (q.Compiled, error) {
	compiled, err := query.Compile(e.dialect)
	if err != nil {
		return q.Compiled{}, fmt.Errorf("%w: %w", ErrDatabaseFailure, err)
	}

	return compiled, nil
}

// conn prefers the transaction in ctx over a new connection from the provider.
func (e *Executor) conn(ctx context.Context) (Conn, error) { //nolint:ireturn // tx or pool conn
	if tx, ok := ctx.Value(postgres.CtxTX).(pgx.Tx); ok {
		return txConn{tx}, nil
	}

	conn, err := e.provider.Acquire(ctx)
	if err != nil {
		if !errors.Is(err, ErrConnection) {
			err = fmt.Errorf("%w: %v", ErrConnection, err) //nolint:errorlint // prevent err in api
		}

		return nil, fmt.Errorf("%w: %w", ErrDatabaseFailure, err)
	}

	return conn, nil
}

func (e *Executor) start(ctx context.Context, op string, query q.Query) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "repository."+op, trace.WithAttributes(
		attribute.String("db.operation", query.Kind().String()),
		attribute.String("db.sql.table", query.Table()),
	))
}

func (e *Executor) logStatement(ctx context.Context, op string, c q.Compiled) {
	e.logger.Log(ctx, alog.LevelDebug, "run statement",
		slog.String("op", op),
		slog.String("sql", c.SQL),
		slog.Any("args", c.Args),
	)
}

func (e *Executor) fail(ctx context.Context, span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	e.logger.Log(ctx, alog.LevelInfo, "statement failed",
		slog.String("op", op),
		slog.String("err", err.Error()),
	)

	return err
}

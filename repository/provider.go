package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Conn is a live database connection owned by the caller until Release.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Release()
}

// ConnectionProvider hands out one connection per logical call.
type ConnectionProvider interface {
	Acquire(ctx context.Context) (Conn, error)
}

var _ Conn = (*pgxpool.Conn)(nil)

// NewPoolProvider returns a ConnectionProvider backed by a pgx pool.
// Pooling is left to pgxpool completely.
func NewPoolProvider(pool *pgxpool.Pool) *PoolProvider {
	return &PoolProvider{pool: pool}
}

type PoolProvider struct {
	pool *pgxpool.Pool
}

var _ ConnectionProvider = (*PoolProvider)(nil)

func (p *PoolProvider) Acquire(ctx context.Context) (Conn, error) { //nolint:ireturn // the pool conn is one of many
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: could not acquire connection: %v", ErrConnection, err) //nolint:errorlint,lll // prevent err in api
	}

	return conn, nil
}

// txConn lets a transaction from the context stand in for a connection.
// The transaction belongs to whoever put it into the context, so Release is a no-op.
type txConn struct {
	pgx.Tx
}

func (txConn) Release() {}

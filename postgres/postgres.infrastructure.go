// Package postgres connects the service to PostgreSQL and migrates its schema.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.opentelemetry.io/otel/trace"

	ctx2 "github.com/coreapi/codecamp/ctx"
)

// CtxTX holds the pgx.Tx of a running use case, set by the tx decorator.
// Everything executed through the repository package joins it.
const CtxTX ctx2.CTXKey = "codecamp.tx"

var (
	ErrConnectionFailed = errors.New("connection failed")
	ErrMigrationFailed  = errors.New("migration failed")
)

const defaultMaxConns = 10

// Config holds all values used to connect to a postgres database.
// Migrations is only required by Migrate and ConnectAndMigrate.
type Config struct {
	Migrations fs.FS
	User       string
	Password   string
	Database   string
	SSLMode    string
	Host       string
	Port       int
	MaxConns   int
}

// dsn renders c as connection url; user and password are escaped.
func (c Config) dsn() string {
	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	query.Set("pool_max_conns", strconv.Itoa(c.MaxConns))

	if c.SSLMode == "" {
		query.Set("sslmode", "disable")
	}

	if c.MaxConns <= 0 { // pgxpool rejects pool_max_conns < 1
		query.Set("pool_max_conns", strconv.Itoa(defaultMaxConns))
	}

	u := url.URL{ //nolint:exhaustruct
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: query.Encode(),
	}

	return u.String()
}

// Handler owns both connections to the database:
// a pgx pool for the application and a database/sql handle for migrate and test fixtures.
type Handler struct {
	PGx    *pgxpool.Pool
	DB     *sql.DB
	Config Config
}

// Connect opens the pool, verifies it with a ping and registers the
// same connection config for database/sql.
// Statements are traced with tracerProvider.
func Connect(ctx context.Context, conf Config, tracerProvider trace.TracerProvider) (*Handler, error) {
	poolConf, err := pgxpool.ParseConfig(conf.dsn())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid config: %v", ErrConnectionFailed, err) //nolint:errorlint // prevent err in api
	}

	poolConf.ConnConfig.RuntimeParams["application_name"] = "codecamp"
	poolConf.ConnConfig.Tracer = &pgxTraceAdapter{tracer: tracerProvider.Tracer("codecamp.pgx")}

	pool, err := pgxpool.NewWithConfig(ctx, poolConf)
	if err != nil {
		return nil, fmt.Errorf("%w: could not create pool: %v", ErrConnectionFailed, err) //nolint:errorlint // prevent err in api
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("%w: database not reachable: %v", ErrConnectionFailed, err) //nolint:errorlint // prevent err in api
	}

	return &Handler{
		PGx:    pool,
		DB:     stdlib.OpenDB(*poolConf.ConnConfig),
		Config: conf,
	}, nil
}

// ConnectWithRetry calls Connect with exponential backoff until it succeeds or maxWait is used up.
// It is meant for process start, when the database might still be booting.
func ConnectWithRetry(
	ctx context.Context,
	conf Config,
	tracerProvider trace.TracerProvider,
	maxWait time.Duration,
) (*Handler, error) {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxWait

	//nolint:wrapcheck // Connect wraps with ErrConnectionFailed
	return backoff.RetryWithData(func() (*Handler, error) {
		return Connect(ctx, conf, tracerProvider)
	}, backoff.WithContext(bo, ctx))
}

// ConnectAndMigrate connects and brings the schema to the latest version.
func ConnectAndMigrate(ctx context.Context, conf Config, tracerProvider trace.TracerProvider) (*Handler, error) {
	if conf.Migrations == nil {
		return nil, fmt.Errorf("%w: no migration files given", ErrMigrationFailed)
	}

	handler, err := Connect(ctx, conf, tracerProvider)
	if err != nil {
		return nil, err
	}

	if err = handler.Migrate(); err != nil {
		_ = handler.Shutdown(ctx)

		return nil, err
	}

	return handler, nil
}

// Shutdown closes the pool, waiting for acquired connections to be released, and the sql handle.
func (h *Handler) Shutdown(_ context.Context) error {
	h.PGx.Close()

	if h.DB == nil {
		return nil
	}

	return h.DB.Close() //nolint:wrapcheck
}

//go:build integration

// Package tests starts docker containers for integration tests
// and prepares databases with fixtures for them.
package tests

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/go-testfixtures/testfixtures/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/khaiql/dbcleaner"
	"github.com/khaiql/dbcleaner/engine"
	"github.com/ory/dockertest/v3"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/coreapi/codecamp/postgres"
)

const (
	// commonFixture is loaded before the fixtures of a test, if the package has one.
	commonFixture = "testdata/fixtures/_common.yaml"

	// fixtures set serial ids explicitly, inserts of the tests get ids from here on.
	sequenceStart = 1000
)

// SharedPostgres returns the postgres container shared by all integration tests of a package.
// The first call starts the container and migrates the database; it panics if that fails.
//
//nolint:gochecknoglobals
var SharedPostgres = sync.OnceValue(func() *PostgresDocker {
	options := postgresRunOptions()
	options.Name = fmt.Sprintf("codecamp-testing-postgres-%d", rand.IntN(1000)) //nolint:gosec,mnd // prevent name collisions only

	var handler *postgres.Handler

	purge, err := StartDockerContainer(options, func(resource *dockertest.Resource) func() error {
		conf := postgresConfig()
		conf.Port, _ = strconv.Atoi(resource.GetPort("5432/tcp"))

		return func() error {
			h, err := postgres.ConnectAndMigrate(context.Background(), conf, noop.NewTracerProvider())
			if err != nil {
				return err //nolint:wrapcheck
			}

			handler = h

			return nil
		}
	})
	if err != nil {
		panic(err)
	}

	return &PostgresDocker{pg: handler, purge: purge}
})

func postgresConfig() postgres.Config {
	return postgres.Config{ //nolint:exhaustruct
		User:       "codecamp",
		Password:   "secret",
		Database:   "codecamp_test",
		Host:       "localhost",
		Port:       5432, //nolint:mnd
		SSLMode:    "disable",
		MaxConns:   10, //nolint:mnd
		Migrations: postgres.CodecampMigrations,
	}
}

func postgresRunOptions() *dockertest.RunOptions {
	conf := postgresConfig()

	return &dockertest.RunOptions{ //nolint:exhaustruct
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_USER=" + conf.User,
			"POSTGRES_PASSWORD=" + conf.Password,
			"POSTGRES_DB=" + conf.Database,
			"listen_addresses = '*'",
		},
		// every test database brings its own pool
		Cmd: []string{"-c", "max_connections=1000"},
	}
}

// PostgresDocker is a running postgres container with a connection to its migrated default database.
type PostgresDocker struct {
	pg    *postgres.Handler
	purge func() error
}

// NewTestDatabase creates a fresh, migrated database with the fixtures of files loaded
// and returns a pool connected to it. The pool is closed when t finishes.
// Every call gets its own database, so tests using it can run in parallel.
func (pd *PostgresDocker) NewTestDatabase(t testing.TB, files ...string) *pgxpool.Pool {
	t.Helper()

	name := randomDatabaseName()
	if _, err := pd.pg.PGx.Exec(context.Background(), "CREATE DATABASE "+name); err != nil {
		t.Fatalf("could not create test database: %v", err)
	}

	conf := pd.pg.Config
	conf.Database = name

	handler, err := postgres.ConnectAndMigrate(context.Background(), conf, noop.NewTracerProvider())
	if err != nil {
		t.Fatalf("could not connect to test database: %v", err)
	}

	t.Cleanup(func() { _ = handler.Shutdown(context.Background()) })

	if err := loadFixtures(handler, files); err != nil {
		t.Fatalf("could not load fixtures: %v", err)
	}

	return handler.PGx
}

// PrepareDatabase truncates all tables of the default database and loads the fixtures of files.
// It panics on failure.
func (pd *PostgresDocker) PrepareDatabase(files ...string) {
	c := pd.pg.Config

	cleaner := dbcleaner.New()
	cleaner.SetEngine(engine.NewPostgresEngine(fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		c.User, c.Password, net.JoinHostPort(c.Host, strconv.Itoa(c.Port)), c.Database)))

	var tables []string

	err := pgxscan.Select(context.Background(), pd.PGx(), &tables, `
		SELECT table_schema || '.' || table_name
		FROM information_schema.tables
		WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
		  AND table_type = 'BASE TABLE'
		  AND table_name <> 'schema_migrations'`)
	if err != nil {
		panic(err)
	}

	cleaner.Clean(tables...)
	_ = cleaner.Close()

	if err := loadFixtures(pd.pg, files); err != nil {
		panic(err)
	}
}

// Cleanup closes the connection and removes the container.
// Call it explicitly in TestMain, os.Exit skips deferred calls.
func (pd *PostgresDocker) Cleanup() {
	if err := errors.Join(pd.pg.Shutdown(context.Background()), pd.purge()); err != nil {
		panic(err)
	}
}

// PGx returns the pool of the default database.
func (pd *PostgresDocker) PGx() *pgxpool.Pool {
	return pd.pg.PGx
}

func loadFixtures(pg *postgres.Handler, files []string) error {
	if _, err := os.Stat(commonFixture); err == nil {
		files = append([]string{commonFixture}, files...)
	}

	if len(files) == 0 {
		return nil
	}

	fixtures, err := testfixtures.New(
		testfixtures.Database(pg.DB),
		testfixtures.Dialect("postgres"),
		testfixtures.FilesMultiTables(files...),
		testfixtures.ResetSequencesTo(sequenceStart),
	)
	if err != nil {
		return fmt.Errorf("invalid fixtures: %w", err)
	}

	return fixtures.Load() //nolint:wrapcheck
}

func randomDatabaseName() string {
	const letters = "abcdefghijklmnopqrstuvwxyz"

	b := make([]byte, 16) //nolint:mnd
	for i := range b {
		b[i] = letters[rand.IntN(len(letters))] //nolint:gosec // names only
	}

	return string(b) + "_test"
}

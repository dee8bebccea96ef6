package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// FakeResult is the answer of a FakeProvider to one statement.
type FakeResult struct {
	Err          error
	Columns      []string
	Rows         [][]any
	RowsAffected int64
}

// Statement is a statement received by a FakeProvider.
type Statement struct {
	SQL  string
	Args []any
	// InTx is true if the statement was sent inside a transaction.
	InTx bool
}

// NewFakeProvider returns a ConnectionProvider for unit tests.
// It answers statements with results in the given order; once they are used up,
// every statement returns no rows and affects none.
func NewFakeProvider(results ...FakeResult) *FakeProvider {
	return &FakeProvider{results: results} //nolint:exhaustruct
}

// FakeProvider records everything that is sent to it.
type FakeProvider struct {
	// AcquireErr is returned by Acquire, if set.
	AcquireErr error

	results    []FakeResult
	statements []Statement

	mu sync.Mutex

	acquired   int
	released   int
	began      int
	committed  int
	rolledBack int
}

var _ ConnectionProvider = (*FakeProvider)(nil)

func (p *FakeProvider) Acquire(_ context.Context) (Conn, error) { //nolint:ireturn // fake
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.AcquireErr != nil {
		return nil, p.AcquireErr
	}

	p.acquired++

	return &fakeConn{p: p}, nil
}

// Tx returns a transaction as a caller would put it under postgres.CtxTX.
func (p *FakeProvider) Tx() pgx.Tx { //nolint:ireturn // fake
	return &fakeTx{p: p} //nolint:exhaustruct
}

// Statements returns all statements received so far.
func (p *FakeProvider) Statements() []Statement {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]Statement(nil), p.statements...)
}

// Open returns the number of acquired connections that are not released.
func (p *FakeProvider) Open() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.acquired - p.released
}

func (p *FakeProvider) Acquired() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.acquired
}

// TxStats returns how many transactions were begun, committed, and rolled back.
func (p *FakeProvider) TxStats() (began, committed, rolledBack int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.began, p.committed, p.rolledBack
}

func (p *FakeProvider) next(sql string, args []any, inTx bool) FakeResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.statements = append(p.statements, Statement{SQL: sql, Args: args, InTx: inTx})

	if len(p.results) == 0 {
		return FakeResult{} //nolint:exhaustruct
	}

	res := p.results[0]
	p.results = p.results[1:]

	return res
}

func (p *FakeProvider) exec(sql string, args []any, inTx bool) (pgconn.CommandTag, error) {
	res := p.next(sql, args, inTx)
	if res.Err != nil {
		return pgconn.CommandTag{}, res.Err
	}

	return pgconn.NewCommandTag(fmt.Sprintf("UPDATE %d", res.RowsAffected)), nil
}

func (p *FakeProvider) query(sql string, args []any, inTx bool) (pgx.Rows, error) { //nolint:ireturn // fake
	res := p.next(sql, args, inTx)
	if res.Err != nil {
		return nil, res.Err
	}

	return &fakeRows{columns: res.Columns, rows: res.Rows}, nil //nolint:exhaustruct
}

type fakeConn struct {
	p *FakeProvider
}

func (c *fakeConn) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return c.p.exec(sql, args, false)
}

func (c *fakeConn) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) { //nolint:ireturn // fake
	return c.p.query(sql, args, false)
}

func (c *fakeConn) Begin(_ context.Context) (pgx.Tx, error) { //nolint:ireturn // fake
	c.p.mu.Lock()
	defer c.p.mu.Unlock()

	c.p.began++

	return &fakeTx{p: c.p}, nil //nolint:exhaustruct
}

func (c *fakeConn) Release() {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()

	c.p.released++
}

// fakeTx implements the parts of pgx.Tx the repository package uses.
// Calling any other method panics.
type fakeTx struct {
	pgx.Tx

	p *FakeProvider
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.p.exec(sql, args, true)
}

func (t *fakeTx) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) { //nolint:ireturn // fake
	return t.p.query(sql, args, true)
}

func (t *fakeTx) Begin(_ context.Context) (pgx.Tx, error) { //nolint:ireturn // fake
	t.p.mu.Lock()
	defer t.p.mu.Unlock()

	t.p.began++

	return &fakeTx{p: t.p}, nil //nolint:exhaustruct
}

func (t *fakeTx) Commit(_ context.Context) error {
	t.p.mu.Lock()
	defer t.p.mu.Unlock()

	t.p.committed++

	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	t.p.mu.Lock()
	defer t.p.mu.Unlock()

	t.p.rolledBack++

	return nil
}

type fakeRows struct {
	err     error
	columns []string
	rows    [][]any
	pos     int
	closed  bool
}

var _ pgx.Rows = (*fakeRows)(nil)

func (r *fakeRows) Close()     { r.closed = true }
func (r *fakeRows) Err() error { return r.err }

func (r *fakeRows) CommandTag() pgconn.CommandTag {
	return pgconn.NewCommandTag(fmt.Sprintf("SELECT %d", len(r.rows)))
}

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	if r.columns == nil {
		return nil
	}

	fields := make([]pgconn.FieldDescription, len(r.columns))
	for i, c := range r.columns {
		fields[i] = pgconn.FieldDescription{Name: c} //nolint:exhaustruct
	}

	return fields
}

func (r *fakeRows) Next() bool {
	if r.closed || r.pos >= len(r.rows) {
		r.closed = true

		return false
	}

	r.pos++

	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.pos == 0 || r.pos > len(r.rows) {
		return errNoRow
	}

	row := r.rows[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("%w: %d targets for %d values", errScan, len(dest), len(row))
	}

	for i := range dest {
		if err := assign(dest[i], row[i]); err != nil {
			r.err = err

			return err
		}
	}

	return nil
}

func (r *fakeRows) Values() ([]any, error) {
	if r.pos == 0 || r.pos > len(r.rows) {
		return nil, errNoRow
	}

	return r.rows[r.pos-1], nil
}

func (r *fakeRows) RawValues() [][]byte { return nil }
func (r *fakeRows) Conn() *pgx.Conn     { return nil }

var (
	errNoRow = errors.New("no current row")
	errScan  = errors.New("can not scan")
)

// assign sets the value pointed to by dst to v, allocating pointers on the way,
// the way pgx scans into nullable targets.
func assign(dst any, v any) error {
	target := reflect.ValueOf(dst)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return fmt.Errorf("%w: target must be a non nil pointer, got %T", errScan, dst)
	}

	target = target.Elem()

	if v == nil {
		target.Set(reflect.Zero(target.Type()))

		return nil
	}

	src := reflect.ValueOf(v)

	for target.Kind() == reflect.Pointer && !src.Type().AssignableTo(target.Type()) {
		if target.IsNil() {
			target.Set(reflect.New(target.Type().Elem()))
		}

		target = target.Elem()
	}

	switch {
	case src.Type().AssignableTo(target.Type()):
		target.Set(src)
	case src.CanInt() && target.CanInt():
		target.SetInt(src.Int())
	default:
		return fmt.Errorf("%w: %T into %s", errScan, v, target.Type())
	}

	return nil
}

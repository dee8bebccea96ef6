package q

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Masterminds/squirrel"
)

// ErrCompilation is returned for queries that can not be translated into SQL.
// It always points to a programming error in the caller.
var ErrCompilation = errors.New("query compilation failed")

// Dialect holds the rules of one SQL engine: placeholders, identifier quoting, paging, and generated keys.
type Dialect struct {
	placeholder squirrel.PlaceholderFormat
	paging      func(limit, offset uint64) string
	returning   func(quoted string) string
	name        string
	openQuote   string
	closeQuote  string
	// pagingNeedsOrder forces an ORDER BY clause whenever paging is used.
	pagingNeedsOrder bool
}

func (d Dialect) String() string { return d.name }

//nolint:gochecknoglobals // dialects are constant configuration
var (
	// Postgres compiles to `$1` placeholders, "double quoted" identifiers, LIMIT/OFFSET, and RETURNING.
	Postgres = Dialect{
		name:        "postgres",
		placeholder: squirrel.Dollar,
		openQuote:   `"`,
		closeQuote:  `"`,
		paging: func(limit, offset uint64) string {
			var parts []string
			if limit > 0 {
				parts = append(parts, "LIMIT "+strconv.FormatUint(limit, 10))
			}

			if offset > 0 {
				parts = append(parts, "OFFSET "+strconv.FormatUint(offset, 10))
			}

			return strings.Join(parts, " ")
		},
		returning: func(quoted string) string {
			return "RETURNING " + quoted
		},
		pagingNeedsOrder: false,
	}

	// SQLServer compiles to `@p1` placeholders, [bracketed] identifiers, OFFSET/FETCH, and SCOPE_IDENTITY.
	SQLServer = Dialect{
		name:        "sqlserver",
		placeholder: squirrel.AtP,
		openQuote:   "[",
		closeQuote:  "]",
		paging: func(limit, offset uint64) string {
			s := "OFFSET " + strconv.FormatUint(offset, 10) + " ROWS"
			if limit > 0 {
				s += " FETCH NEXT " + strconv.FormatUint(limit, 10) + " ROWS ONLY"
			}

			return s
		},
		returning: func(string) string {
			return "; SELECT CAST(SCOPE_IDENTITY() AS int)"
		},
		pagingNeedsOrder: true,
	}
)

// Compiled is the SQL text of a query and its positional arguments.
type Compiled struct {
	SQL  string
	Args []any
}

// Bindings returns the arguments by parameter name: p1, p2, ...
// The numbers match the placeholders in SQL.
func (c Compiled) Bindings() map[string]any {
	bindings := make(map[string]any, len(c.Args))

	for i, arg := range c.Args {
		bindings["p"+strconv.Itoa(i+1)] = arg
	}

	return bindings
}

// Compile translates the query for the given dialect.
// Values are never written into the SQL text, they are always bound as arguments.
func (q Query) Compile(d Dialect) (Compiled, error) {
	if err := q.validate(); err != nil {
		return Compiled{}, err
	}

	var (
		sql  string
		args []any
		err  error
	)

	switch q.kind {
	case KindSelect:
		sql, args, err = q.compileSelect(d)
	case KindInsert:
		sql, args, err = q.compileInsert(d)
	case KindUpdate:
		sql, args, err = q.compileUpdate(d)
	case KindDelete:
		sql, args, err = q.compileDelete(d)
	default:
		err = fmt.Errorf("unknown query kind: %d", q.kind)
	}

	if err != nil {
		if errors.Is(err, ErrCompilation) {
			return Compiled{}, err
		}

		return Compiled{}, fmt.Errorf("%w: %s on %s: %v", ErrCompilation, q.kind, q.table, err) //nolint:errorlint,lll // prevent err in api
	}

	return Compiled{SQL: sql, Args: args}, nil
}

func (q Query) validate() error {
	fail := func(reason string) error {
		return fmt.Errorf("%w: %s on %q: %s", ErrCompilation, q.kind, q.table, reason)
	}

	if q.table == "" {
		return fail("missing table")
	}

	if q.kind != KindSelect && (len(q.orders) > 0 || q.limit > 0 || q.offset > 0 || q.distinct) {
		return fail("ordering, paging, and distinct are only supported for selects")
	}

	if q.kind != KindSelect && len(q.columns) > 0 {
		return fail("selected columns are only supported for selects")
	}

	if q.returning != "" && q.kind != KindInsert {
		return fail("returning is only supported for inserts")
	}

	switch q.kind {
	case KindInsert:
		if len(q.fields) == 0 {
			return fail("no fields to insert")
		}

		if len(q.wheres) > 0 || len(q.joins) > 0 {
			return fail("inserts can not be filtered or joined")
		}
	case KindUpdate:
		if len(q.fields) == 0 {
			return fail("no fields to update")
		}

		if len(q.joins) > 0 {
			return fail("updates can not be joined")
		}
	case KindSelect, KindDelete:
	}

	return nil
}

func (q Query) compileSelect(d Dialect) (string, []any, error) {
	columns := []string{"*"}
	if len(q.columns) > 0 {
		columns = make([]string, 0, len(q.columns))

		for _, c := range q.columns {
			quoted, err := d.quote(c)
			if err != nil {
				return "", nil, err
			}

			columns = append(columns, quoted)
		}
	}

	table, err := d.quote(q.table)
	if err != nil {
		return "", nil, err
	}

	builder := squirrel.StatementBuilder.PlaceholderFormat(d.placeholder).
		Select(columns...).
		From(table)

	if q.distinct {
		builder = builder.Distinct()
	}

	for _, j := range q.joins {
		joined, err := d.quote(j.table)
		if err != nil {
			return "", nil, err
		}

		on, err := d.joinCondition(j)
		if err != nil {
			return "", nil, err
		}

		builder = builder.Join(joined + " ON " + on)
	}

	builder, err = applyWheres(d, builder, q.wheres)
	if err != nil {
		return "", nil, err
	}

	for _, o := range q.orders {
		col, err := d.quote(o.column)
		if err != nil {
			return "", nil, err
		}

		if o.desc {
			col += " DESC"
		}

		builder = builder.OrderBy(col)
	}

	if q.limit > 0 || q.offset > 0 {
		if d.pagingNeedsOrder && len(q.orders) == 0 {
			// a distinct select may only be ordered by selected columns
			if q.distinct {
				return "", nil, fmt.Errorf("%w: %s on %q: distinct paging needs an explicit order", ErrCompilation, q.kind, q.table)
			}

			builder = builder.OrderBy("(SELECT 0)")
		}

		builder = builder.Suffix(d.paging(q.limit, q.offset))
	}

	return builder.ToSql() //nolint:wrapcheck // wrapped in Compile
}

func (q Query) compileInsert(d Dialect) (string, []any, error) {
	table, err := d.quote(q.table)
	if err != nil {
		return "", nil, err
	}

	columns, values, err := d.sortedFields(q.fields)
	if err != nil {
		return "", nil, err
	}

	builder := squirrel.StatementBuilder.PlaceholderFormat(d.placeholder).
		Insert(table).
		Columns(columns...).
		Values(values...)

	if q.returning != "" {
		col, err := d.quote(q.returning)
		if err != nil {
			return "", nil, err
		}

		builder = builder.Suffix(d.returning(col))
	}

	return builder.ToSql() //nolint:wrapcheck // wrapped in Compile
}

func (q Query) compileUpdate(d Dialect) (string, []any, error) {
	table, err := d.quote(q.table)
	if err != nil {
		return "", nil, err
	}

	columns, values, err := d.sortedFields(q.fields)
	if err != nil {
		return "", nil, err
	}

	builder := squirrel.StatementBuilder.PlaceholderFormat(d.placeholder).Update(table)
	for i := range columns {
		builder = builder.Set(columns[i], values[i])
	}

	for _, w := range q.wheres {
		col, err := d.quote(w.column)
		if err != nil {
			return "", nil, err
		}

		builder = builder.Where(squirrel.Eq{col: w.value})
	}

	return builder.ToSql() //nolint:wrapcheck // wrapped in Compile
}

// compileDelete scopes a delete on joined tables with a correlated EXISTS,
// as DELETE ... JOIN is not portable between engines.
func (q Query) compileDelete(d Dialect) (string, []any, error) {
	table, err := d.quote(q.table)
	if err != nil {
		return "", nil, err
	}

	builder := squirrel.StatementBuilder.PlaceholderFormat(d.placeholder).Delete(table)

	if len(q.joins) == 0 {
		for _, w := range q.wheres {
			col, err := d.quote(w.column)
			if err != nil {
				return "", nil, err
			}

			builder = builder.Where(squirrel.Eq{col: w.value})
		}

		return builder.ToSql() //nolint:wrapcheck // wrapped in Compile
	}

	tables := make([]string, 0, len(q.joins))
	sub := squirrel.Select("1")

	for _, j := range q.joins {
		joined, err := d.quote(j.table)
		if err != nil {
			return "", nil, err
		}

		on, err := d.joinCondition(j)
		if err != nil {
			return "", nil, err
		}

		tables = append(tables, joined)
		sub = sub.Where(on)
	}

	sub, err = applyWheres(d, sub.From(strings.Join(tables, ", ")), q.wheres)
	if err != nil {
		return "", nil, err
	}

	// placeholders stay as ? here and are replaced once for the whole statement
	subSQL, subArgs, err := sub.PlaceholderFormat(squirrel.Question).ToSql()
	if err != nil {
		return "", nil, err //nolint:wrapcheck // wrapped in Compile
	}

	return builder.Where(squirrel.Expr("EXISTS ("+subSQL+")", subArgs...)).ToSql() //nolint:wrapcheck,lll // wrapped in Compile
}

func applyWheres(d Dialect, builder squirrel.SelectBuilder, wheres []condition) (squirrel.SelectBuilder, error) {
	for _, w := range wheres {
		col, err := d.quote(w.column)
		if err != nil {
			return builder, err
		}

		builder = builder.Where(squirrel.Eq{col: w.value})
	}

	return builder, nil
}

func (d Dialect) joinCondition(j join) (string, error) {
	left, err := d.quote(j.left)
	if err != nil {
		return "", err
	}

	right, err := d.quote(j.right)
	if err != nil {
		return "", err
	}

	return left + " = " + right, nil
}

// sortedFields returns the quoted columns in alphabetical order, so the SQL is stable across calls.
func (d Dialect) sortedFields(fields Fields) ([]string, []any, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}

	slices.Sort(names)

	columns := make([]string, 0, len(names))
	values := make([]any, 0, len(names))

	for _, name := range names {
		col, err := d.quote(name)
		if err != nil {
			return nil, nil, err
		}

		columns = append(columns, col)
		values = append(values, fields[name])
	}

	return columns, values, nil
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// quote quotes every part of a possibly table qualified identifier.
// A trailing * is kept as is, anything else that is not a plain identifier is rejected.
func (d Dialect) quote(name string) (string, error) {
	parts := strings.Split(name, ".")

	for i, part := range parts {
		if part == "*" && i == len(parts)-1 {
			continue
		}

		if !identifier.MatchString(part) {
			return "", fmt.Errorf("%w: invalid identifier: %q", ErrCompilation, name)
		}

		parts[i] = d.openQuote + part + d.closeQuote
	}

	return strings.Join(parts, "."), nil
}

// Package q describes SQL statements as plain values.
//
// A Query is built fluently and never touches a database.
// Every builder method returns a modified copy, so a base query
// can be kept around and specialised as often as needed:
//
//	talks := q.From("talks").Select("talks.talk_id", "talks.title")
//	byCamp := talks.Where("talks.camp_id", 1)
//	byTitle := talks.Where("talks.title", "Go") // talks is unchanged
//
// Compile turns a Query into SQL text and bound arguments for a Dialect.
package q

import "maps"

// Kind is the statement type a Query compiles to.
type Kind int

const (
	KindSelect Kind = iota
	KindInsert
	KindUpdate
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "select"
	case KindInsert:
		return "insert"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Fields maps column names to the values written by an insert or update.
type Fields map[string]any

type join struct {
	table string
	left  string
	right string
}

type condition struct {
	column string
	value  any
}

type ordering struct {
	column string
	desc   bool
}

// Query is the description of a single statement.
// The zero value has no table and fails to compile.
type Query struct {
	fields    Fields
	table     string
	returning string
	columns   []string
	joins     []join
	wheres    []condition
	orders    []ordering
	limit     uint64
	offset    uint64
	kind      Kind
	distinct  bool
}

// From starts a select on table.
func From(table string) Query {
	return Query{table: table} //nolint:exhaustruct // zero values are the defaults
}

// Table returns the main table of the query.
func (q Query) Table() string { return q.table }

// Kind returns the statement type.
func (q Query) Kind() Kind { return q.kind }

// Clone returns a deep copy. No slice or map is shared with q.
func (q Query) Clone() Query {
	c := q

	c.columns = append([]string(nil), q.columns...)
	c.joins = append([]join(nil), q.joins...)
	c.wheres = append([]condition(nil), q.wheres...)
	c.orders = append([]ordering(nil), q.orders...)

	if q.fields != nil {
		c.fields = maps.Clone(q.fields)
	}

	return c
}

// Select adds columns to the result. Without any, all columns are selected.
func (q Query) Select(columns ...string) Query {
	c := q.Clone()
	c.columns = append(c.columns, columns...)

	return c
}

// Join adds an inner join of table on left = right.
func (q Query) Join(table string, left string, right string) Query {
	c := q.Clone()
	c.joins = append(c.joins, join{table: table, left: left, right: right})

	return c
}

// Where filters by column = value. Multiple calls are combined with AND.
// A nil value matches NULL. A slice value matches any of its elements (IN),
// an empty slice matches no row.
func (q Query) Where(column string, value any) Query {
	c := q.Clone()
	c.wheres = append(c.wheres, condition{column: column, value: value})

	return c
}

func (q Query) OrderBy(column string) Query {
	c := q.Clone()
	c.orders = append(c.orders, ordering{column: column, desc: false})

	return c
}

func (q Query) OrderByDesc(column string) Query {
	c := q.Clone()
	c.orders = append(c.orders, ordering{column: column, desc: true})

	return c
}

func (q Query) Limit(n uint64) Query {
	c := q.Clone()
	c.limit = n

	return c
}

func (q Query) Offset(n uint64) Query {
	c := q.Clone()
	c.offset = n

	return c
}

// Distinct removes duplicate rows from the result.
func (q Query) Distinct() Query {
	c := q.Clone()
	c.distinct = true

	return c
}

// AsInsert turns the query into an insert of fields into its table.
func (q Query) AsInsert(fields Fields) Query {
	c := q.Clone()
	c.kind = KindInsert
	c.fields = maps.Clone(fields)

	return c
}

// AsUpdate turns the query into an update of fields for all rows matching the filters.
func (q Query) AsUpdate(fields Fields) Query {
	c := q.Clone()
	c.kind = KindUpdate
	c.fields = maps.Clone(fields)

	return c
}

// AsDelete turns the query into a delete of all rows matching the filters and joins.
func (q Query) AsDelete() Query {
	c := q.Clone()
	c.kind = KindDelete

	return c
}

// Returning makes an insert return the generated value of column,
// e.g. a serial primary key.
func (q Query) Returning(column string) Query {
	c := q.Clone()
	c.returning = column

	return c
}

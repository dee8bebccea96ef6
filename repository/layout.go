package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/coreapi/codecamp/repository/q"
)

// Fragment is the part of a joined row that belongs to one table.
type Fragment struct {
	Table   string
	Columns []string
}

// Layout describes the result of a joined query: which fragments
// a row consists of, in select order, and how they are put together.
//
// The first column of every fragment after the first is its split column.
// Before any row is read, the split columns are checked against the result's
// column names, so a query and its Layout can not drift apart silently.
type Layout[T any] interface {
	Fragments() []Fragment

	// Row returns the scan targets of one row, in column order over all fragments,
	// and a func assembling T from them once they are filled.
	Row() (targets []any, assemble func() T)
}

// SelectFragments adds the qualified columns of all fragments to query, in order.
func SelectFragments(query q.Query, fragments []Fragment) q.Query {
	columns := make([]string, 0)

	for _, f := range fragments {
		for _, c := range f.Columns {
			columns = append(columns, f.Table+"."+c)
		}
	}

	return query.Select(columns...)
}

// GetJoined returns the first joined row assembled into T, or nil if there is none.
func GetJoined[T any](ctx context.Context, e *Executor, query q.Query, layout Layout[T]) (*T, error) {
	var result *T

	err := e.query(ctx, "get_joined", query, func(rows pgx.Rows) error {
		if err := checkSplit(rows.FieldDescriptions(), layout.Fragments()); err != nil {
			return err
		}

		if !rows.Next() {
			return rows.Err()
		}

		targets, assemble := layout.Row()
		if err := rows.Scan(targets...); err != nil {
			return err //nolint:wrapcheck // wrapped by query
		}

		v := assemble()
		result = &v

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetJoinedList returns all joined rows assembled into T. Without rows, the slice is empty.
func GetJoinedList[T any](ctx context.Context, e *Executor, query q.Query, layout Layout[T]) ([]T, error) {
	result := []T{}

	err := e.query(ctx, "get_joined_list", query, func(rows pgx.Rows) error {
		if err := checkSplit(rows.FieldDescriptions(), layout.Fragments()); err != nil {
			return err
		}

		for rows.Next() {
			targets, assemble := layout.Row()
			if err := rows.Scan(targets...); err != nil {
				return err //nolint:wrapcheck // wrapped by query
			}

			result = append(result, assemble())
		}

		return rows.Err() //nolint:wrapcheck // wrapped by query
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func checkSplit(fields []pgconn.FieldDescription, fragments []Fragment) error {
	if fields == nil {
		return nil // nothing to check against
	}

	total := 0
	for _, f := range fragments {
		total += len(f.Columns)
	}

	if len(fields) != total {
		return fmt.Errorf("%w: %w: result has %d columns, layout has %d",
			ErrDatabaseFailure, ErrSplitMismatch, len(fields), total)
	}

	offset := 0

	for i, f := range fragments {
		if i > 0 && len(f.Columns) > 0 && fields[offset].Name != f.Columns[0] {
			return fmt.Errorf("%w: %w: expected split on %s at column %d, got %s",
				ErrDatabaseFailure, ErrSplitMismatch, f.Columns[0], offset, fields[offset].Name)
		}

		offset += len(f.Columns)
	}

	return nil
}

// Package repository executes queries built with package q against PostgreSQL
// and maps the results into Go values.
//
// Each call acquires its own connection and releases it on every exit path.
// If the context carries a transaction under postgres.CtxTX, that transaction is used instead.
//
// Absence is never an error: single reads return nil, list reads an empty slice.
package repository

import (
	"errors"
)

var (
	// ErrDatabaseFailure wraps every failure of the data access layer.
	// Callers are expected to translate it into a generic error for their clients.
	ErrDatabaseFailure = errors.New("database failure")

	// ErrConnection is returned, together with ErrDatabaseFailure, if no working connection could be acquired.
	ErrConnection = errors.New("connection error")

	// ErrSplitMismatch is returned, together with ErrDatabaseFailure, if the columns of a joined
	// result do not line up with the fragments declared by its Layout.
	ErrSplitMismatch = errors.New("split column mismatch")
)

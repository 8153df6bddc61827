// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package schema

import (
	"context"
	"database/sql"
	"errors"
)

// A NotExistError wraps another error to retain its original text
// but makes it possible for callers to catch it. It is returned by
// inspectors when the requested table does not exist, which usually
// signals a not-yet-created table that should be skipped from
// planning rather than planned against.
type NotExistError struct {
	Err error
}

func (e *NotExistError) Error() string { return e.Err.Error() }

// IsNotExistError reports if an error is a NotExistError.
func IsNotExistError(err error) bool {
	if err == nil {
		return false
	}
	var e *NotExistError
	return errors.As(err, &e)
}

// ExecQuerier wraps the standard sql.DB methods.
type ExecQuerier interface {
	QueryRow(query string, args ...any) *sql.Row
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Inspector is the interface implemented by the different database
// drivers for reading the physical definition of a table from the
// live database catalog. Implementations must not cache results
// across calls; the catalog is re-read on every invocation.
type Inspector interface {
	// InspectTable returns the table description by its name. A NotExistError
	// is returned if the table does not exist in the database.
	InspectTable(ctx context.Context, name string) (*Table, error)
}

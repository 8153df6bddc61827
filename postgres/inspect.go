// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/transmetadb/transmeta/internal/sqlx"
	"github.com/transmetadb/transmeta/schema"
)

// An inspect provides a PostgreSQL implementation for schema.Inspector.
type inspect struct{ conn }

var _ schema.Inspector = (*inspect)(nil)

// InspectTable returns the column description of the table in the
// connected schema. The catalog is re-read on every call.
func (i *inspect) InspectTable(ctx context.Context, name string) (*schema.Table, error) {
	var exists bool
	if err := i.QueryRowContext(ctx, existsQuery, name).Scan(&exists); err != nil {
		return nil, fmt.Errorf("postgres: checking table %q: %w", name, err)
	}
	if !exists {
		return nil, &schema.NotExistError{Err: fmt.Errorf("postgres: table %q was not found", name)}
	}
	rows, err := i.QueryContext(ctx, columnsQuery, name)
	if err != nil {
		return nil, fmt.Errorf("postgres: querying %q columns: %w", name, err)
	}
	defer rows.Close()
	t := schema.NewTable(name)
	for rows.Next() {
		if err := i.addColumn(t, rows); err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: reading %q columns: %w", name, err)
	}
	return t, nil
}

// addColumn scans the current row and adds a new column from it to the table.
func (i *inspect) addColumn(t *schema.Table, rows *sql.Rows) error {
	var (
		maxlen, precision, scale      sql.NullInt64
		name, typ, nullable, defaults sql.NullString
	)
	if err := rows.Scan(&name, &typ, &nullable, &defaults, &maxlen, &precision, &scale); err != nil {
		return err
	}
	c := &schema.Column{
		Name: name.String,
		Type: &schema.ColumnType{
			Raw:  typ.String,
			Null: nullable.String == "YES",
		},
	}
	ct, err := ParseType(columnDesc{
		typ:       typ.String,
		size:      maxlen.Int64,
		precision: precision.Int64,
		scale:     scale.Int64,
	})
	if err != nil {
		return err
	}
	c.Type.Type = ct
	if sqlx.ValidString(defaults) {
		c.Default = &schema.RawExpr{X: defaults.String}
	}
	t.AddColumns(c)
	return nil
}

const (
	// Query to check the existence of a table in the connected schema.
	existsQuery = `SELECT EXISTS (SELECT 1 FROM "information_schema"."tables" WHERE "table_schema" = CURRENT_SCHEMA() AND "table_name" = $1)`

	// Query to list table columns.
	columnsQuery = `
SELECT
	"column_name",
	"data_type",
	"is_nullable",
	"column_default",
	"character_maximum_length",
	"numeric_precision",
	"numeric_scale"
FROM
	"information_schema"."columns"
WHERE
	"table_schema" = CURRENT_SCHEMA() AND "table_name" = $1
ORDER BY
	"ordinal_position"
`
)

// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package sqlite provides the SQLite driver for inspecting
// per-language columns and rendering and applying field plans.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/transmetadb/transmeta/internal/sqlx"
	"github.com/transmetadb/transmeta/migrate"
	"github.com/transmetadb/transmeta/schema"
)

type (
	// Driver represents a SQLite driver for introspecting table
	// columns and planning changes to translatable fields.
	Driver struct {
		conn
		schema.Inspector
		migrate.PlanApplier
	}

	// database connection and its information.
	conn struct {
		schema.ExecQuerier
		// System variables that are set on Open.
		version     string
		placeholder string
	}

	// Option configures the driver.
	Option func(*conn)
)

// WithPlaceholder sets the value used to backfill non-nullable columns
// that have no declared default. Usually lang.Config.Placeholder.
func WithPlaceholder(v string) Option {
	return func(c *conn) {
		c.placeholder = v
	}
}

// Open opens a new SQLite driver. DROP COLUMN support requires
// SQLite 3.35 or newer.
func Open(db schema.ExecQuerier, opts ...Option) (*Driver, error) {
	c := conn{ExecQuerier: db}
	if err := db.QueryRow("SELECT sqlite_version()").Scan(&c.version); err != nil {
		return nil, fmt.Errorf("sqlite: scanning database version: %w", err)
	}
	for _, opt := range opts {
		opt(&c)
	}
	return &Driver{
		conn:        c,
		Inspector:   &inspect{c},
		PlanApplier: &planApply{c},
	}, nil
}

// SQLite standard data types as defined in its codebase and documentation.
// https://www.sqlite.org/datatype3.html
const (
	TypeInteger = "integer"
	TypeReal    = "real"
	TypeText    = "text"
	TypeBlob    = "blob"
)

// An inspect provides a SQLite implementation for schema.Inspector.
type inspect struct{ conn }

var _ schema.Inspector = (*inspect)(nil)

// InspectTable returns the column description of the table. The
// catalog is re-read on every call.
func (i *inspect) InspectTable(ctx context.Context, name string) (*schema.Table, error) {
	var tname string
	err := i.QueryRowContext(ctx, existsQuery, name).Scan(&tname)
	switch {
	case err == sql.ErrNoRows:
		return nil, &schema.NotExistError{Err: fmt.Errorf("sqlite: table %q was not found", name)}
	case err != nil:
		return nil, fmt.Errorf("sqlite: checking table %q: %w", name, err)
	}
	rows, err := i.QueryContext(ctx, columnsQuery, name)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying %q columns: %w", name, err)
	}
	defer rows.Close()
	t := schema.NewTable(name)
	for rows.Next() {
		var (
			nullable             sql.NullInt64
			cname, typ, defaults sql.NullString
		)
		if err := rows.Scan(&cname, &typ, &nullable, &defaults); err != nil {
			return nil, fmt.Errorf("sqlite: scanning %q column: %w", name, err)
		}
		c := &schema.Column{
			Name: cname.String,
			Type: &schema.ColumnType{
				Raw:  typ.String,
				Null: nullable.Int64 == 0,
				Type: ParseType(typ.String),
			},
		}
		if sqlx.ValidString(defaults) {
			c.Default = &schema.RawExpr{X: defaults.String}
		}
		t.AddColumns(c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: reading %q columns: %w", name, err)
	}
	return t, nil
}

const (
	// Query to check the existence of a table.
	existsQuery = "SELECT `name` FROM `sqlite_master` WHERE `type` = 'table' AND `name` = ?"

	// Query to list table columns.
	columnsQuery = "SELECT `name`, `type`, `notnull`, `dflt_value` FROM pragma_table_info(?) ORDER BY `cid`"
)

// ParseType converts the raw column type to its schema.Type
// representation, following SQLite's type-affinity rules.
func ParseType(raw string) schema.Type {
	t := strings.ToLower(raw)
	// Strip a size suffix like "varchar(255)".
	if i := strings.IndexByte(t, '('); i > 0 {
		t = t[:i]
	}
	switch {
	case strings.Contains(t, "int"):
		return &schema.IntegerType{T: t}
	case strings.Contains(t, "char"), strings.Contains(t, "clob"), t == TypeText:
		return &schema.StringType{T: t}
	case t == TypeBlob, t == "":
		return &schema.BinaryType{T: TypeBlob}
	case strings.Contains(t, "real"), strings.Contains(t, "floa"), strings.Contains(t, "doub"):
		return &schema.FloatType{T: t}
	case t == "boolean" || t == "bool":
		return &schema.BoolType{T: t}
	case t == "numeric" || t == "decimal":
		return &schema.DecimalType{T: t}
	case t == "date" || t == "datetime" || t == "timestamp":
		return &schema.TimeType{T: t}
	case t == "json":
		return &schema.JSONType{T: t}
	default:
		return &schema.UnsupportedType{T: t}
	}
}

// FormatType converts a schema type to its column form in the database.
func FormatType(t schema.Type) (string, error) {
	switch t := t.(type) {
	case *schema.IntegerType, *schema.BoolType:
		return TypeInteger, nil
	case *schema.FloatType, *schema.DecimalType:
		return TypeReal, nil
	case *schema.StringType, *schema.EnumType, *schema.TimeType, *schema.JSONType:
		return TypeText, nil
	case *schema.BinaryType:
		return TypeBlob, nil
	case *schema.UnsupportedType:
		return "", fmt.Errorf("sqlite: unsupported type %q", t.T)
	default:
		return "", fmt.Errorf("sqlite: invalid schema type %T", t)
	}
}

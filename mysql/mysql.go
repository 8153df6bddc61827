// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package mysql provides the MySQL driver for inspecting per-language
// columns and rendering and applying field plans.
package mysql

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
	// Driver represents a MySQL driver for introspecting table
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

// Open opens a new MySQL driver.
func Open(db schema.ExecQuerier, opts ...Option) (*Driver, error) {
	c := conn{ExecQuerier: db}
	if err := db.QueryRow("SELECT VERSION()").Scan(&c.version); err != nil {
		return nil, fmt.Errorf("mysql: scanning server version: %w", err)
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

// MySQL data types used for formatting expanded columns.
const (
	TypeBool     = "bool"
	TypeTinyInt  = "tinyint"
	TypeSmallInt = "smallint"
	TypeInt      = "int"
	TypeBigInt   = "bigint"
	TypeFloat    = "float"
	TypeDouble   = "double"
	TypeDecimal  = "decimal"
	TypeVarchar  = "varchar"
	TypeChar     = "char"
	TypeText     = "text"
	TypeLongText = "longtext"
	TypeBlob     = "blob"
	TypeEnum     = "enum"
	TypeDate     = "date"
	TypeDatetime = "datetime"
	TypeJSON     = "json"
)

// An inspect provides a MySQL implementation for schema.Inspector.
type inspect struct{ conn }

var _ schema.Inspector = (*inspect)(nil)

// InspectTable returns the column description of the table in the
// connected database. The catalog is re-read on every call.
func (i *inspect) InspectTable(ctx context.Context, name string) (*schema.Table, error) {
	var exists bool
	if err := i.QueryRowContext(ctx, existsQuery, name).Scan(&exists); err != nil {
		return nil, fmt.Errorf("mysql: checking table %q: %w", name, err)
	}
	if !exists {
		return nil, &schema.NotExistError{Err: fmt.Errorf("mysql: table %q was not found", name)}
	}
	rows, err := i.QueryContext(ctx, columnsQuery, name)
	if err != nil {
		return nil, fmt.Errorf("mysql: querying %q columns: %w", name, err)
	}
	defer rows.Close()
	t := schema.NewTable(name)
	for rows.Next() {
		var cname, typ, ctype, nullable, defaults sql.NullString
		if err := rows.Scan(&cname, &typ, &ctype, &nullable, &defaults); err != nil {
			return nil, fmt.Errorf("mysql: scanning %q column: %w", name, err)
		}
		c := &schema.Column{
			Name: cname.String,
			Type: &schema.ColumnType{
				Raw:  ctype.String,
				Null: nullable.String == "YES",
				Type: ParseType(typ.String, ctype.String),
			},
		}
		if sqlx.ValidString(defaults) {
			c.Default = &schema.RawExpr{X: defaults.String}
		}
		t.AddColumns(c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: reading %q columns: %w", name, err)
	}
	return t, nil
}

const (
	// Query to check the existence of a table in the connected database.
	existsQuery = "SELECT EXISTS (SELECT 1 FROM `INFORMATION_SCHEMA`.`TABLES` WHERE `TABLE_SCHEMA` = (SELECT DATABASE()) AND `TABLE_NAME` = ?)"

	// Query to list table columns.
	columnsQuery = "SELECT `COLUMN_NAME`, `DATA_TYPE`, `COLUMN_TYPE`, `IS_NULLABLE`, `COLUMN_DEFAULT` FROM `INFORMATION_SCHEMA`.`COLUMNS` WHERE `TABLE_SCHEMA` = (SELECT DATABASE()) AND `TABLE_NAME` = ? ORDER BY `ORDINAL_POSITION`"
)

// ParseType converts the raw catalog type to its schema.Type representation.
func ParseType(dataType, columnType string) (typ schema.Type) {
	switch t := strings.ToLower(dataType); t {
	case TypeTinyInt:
		// tinyint(1) is the storage form of bool.
		if strings.HasPrefix(strings.ToLower(columnType), "tinyint(1)") {
			return &schema.BoolType{T: TypeBool}
		}
		return &schema.IntegerType{T: t}
	case TypeSmallInt, "mediumint", TypeInt, TypeBigInt:
		return &schema.IntegerType{T: t, Unsigned: strings.Contains(columnType, "unsigned")}
	case TypeFloat, TypeDouble:
		return &schema.FloatType{T: t}
	case TypeDecimal, "numeric":
		return &schema.DecimalType{T: TypeDecimal}
	case TypeVarchar, TypeChar, TypeText, TypeLongText, "mediumtext", "tinytext":
		return &schema.StringType{T: t}
	case TypeBlob, "longblob", "mediumblob", "tinyblob", "varbinary", "binary":
		return &schema.BinaryType{T: t}
	case TypeEnum:
		return &schema.EnumType{T: t}
	case TypeDate, TypeDatetime, "timestamp", "time", "year":
		return &schema.TimeType{T: t}
	case TypeJSON:
		return &schema.JSONType{T: t}
	default:
		return &schema.UnsupportedType{T: t}
	}
}

// FormatType converts a schema type to its column form in the database.
func FormatType(t schema.Type) (string, error) {
	switch t := t.(type) {
	case *schema.BoolType:
		return TypeBool, nil
	case *schema.IntegerType:
		f := t.T
		if f == "" || f == "integer" {
			f = TypeInt
		}
		if t.Unsigned {
			f += " unsigned"
		}
		return f, nil
	case *schema.FloatType:
		if t.T == TypeFloat {
			return TypeFloat, nil
		}
		return TypeDouble, nil
	case *schema.DecimalType:
		switch {
		case t.Precision == 0:
			return TypeDecimal, nil
		case t.Scale == 0:
			return fmt.Sprintf("%s(%d)", TypeDecimal, t.Precision), nil
		default:
			return fmt.Sprintf("%s(%d,%d)", TypeDecimal, t.Precision, t.Scale), nil
		}
	case *schema.StringType:
		if t.Size > 0 {
			return fmt.Sprintf("%s(%d)", TypeVarchar, t.Size), nil
		}
		if t.T == TypeVarchar || t.T == TypeChar {
			return fmt.Sprintf("%s(255)", TypeVarchar), nil
		}
		return TypeText, nil
	case *schema.EnumType:
		if len(t.Values) == 0 {
			return "", fmt.Errorf("mysql: missing values for enum column")
		}
		b := &sqlx.Builder{}
		b.WriteString(TypeEnum)
		b.Wrap(func(b *sqlx.Builder) {
			b.MapComma(len(t.Values), func(i int, b *sqlx.Builder) {
				b.WriteString(quote(t.Values[i]))
			})
		})
		return b.String(), nil
	case *schema.BinaryType:
		return TypeBlob, nil
	case *schema.TimeType:
		if t.T == "" {
			return TypeDatetime, nil
		}
		return t.T, nil
	case *schema.JSONType:
		return TypeJSON, nil
	case *schema.UnsupportedType:
		return "", fmt.Errorf("mysql: unsupported type %q", t.T)
	default:
		return "", fmt.Errorf("mysql: invalid schema type %T", t)
	}
}

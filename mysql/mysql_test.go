// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package mysql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/transmetadb/transmeta/internal/sqltest"
	"github.com/transmetadb/transmeta/plan"
	"github.com/transmetadb/transmeta/schema"
)

func open(t *testing.T, opts ...Option) (*Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, m, err := sqlmock.New()
	require.NoError(t, err)
	m.ExpectQuery(sqltest.Escape("SELECT VERSION()")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("8.0.33"))
	drv, err := Open(db, opts...)
	require.NoError(t, err)
	return drv, m
}

func TestDriver_InspectTable(t *testing.T) {
	drv, m := open(t)
	m.ExpectQuery(sqltest.Escape(existsQuery)).
		WithArgs("books").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))
	m.ExpectQuery(sqltest.Escape(columnsQuery)).
		WithArgs("books").
		WillReturnRows(sqltest.Rows(`
+----------------+-----------+-------------+-------------+----------------+
| COLUMN_NAME    | DATA_TYPE | COLUMN_TYPE | IS_NULLABLE | COLUMN_DEFAULT |
+----------------+-----------+-------------+-------------+----------------+
| id             | int       | int         | NO          | nil            |
| active         | tinyint   | tinyint(1)  | NO          | 1              |
| description_es | text      | text        | YES         | nil            |
+----------------+-----------+-------------+-------------+----------------+
`))
	tbl, err := drv.InspectTable(context.Background(), "books")
	require.NoError(t, err)
	require.Len(t, tbl.Columns, 3)

	active, ok := tbl.Column("active")
	require.True(t, ok)
	require.IsType(t, &schema.BoolType{}, active.Type.Type)
	require.Equal(t, &schema.RawExpr{X: "1"}, active.Default)

	desc, ok := tbl.Column("description_es")
	require.True(t, ok)
	require.True(t, desc.Type.Null)
}

func TestDriver_InspectTable_NotExist(t *testing.T) {
	drv, m := open(t)
	m.ExpectQuery(sqltest.Escape(existsQuery)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(0))
	_, err := drv.InspectTable(context.Background(), "missing")
	require.True(t, schema.IsNotExistError(err))
}

func TestDriver_PlanField(t *testing.T) {
	drv, _ := open(t)
	priceES := schema.NewFloatColumn("price_es", "double")
	p, err := drv.PlanField(&plan.FieldPlan{
		Model: "Book", Table: "books", Field: "price",
		Changes: []schema.Change{
			&schema.AddColumn{C: schema.NewNullFloatColumn("price_en", "double")},
			&schema.AddColumnBackfill{C: priceES, Source: schema.NewFloatColumn("price", "double")},
			&schema.ModifyNull{C: priceES, Null: false},
			&schema.DropColumn{C: schema.NewFloatColumn("price", "double")},
		},
	})
	require.NoError(t, err)
	require.False(t, p.Transactional)
	var cmds []string
	for _, c := range p.Changes {
		cmds = append(cmds, c.Cmd)
	}
	require.Equal(t, []string{
		"ALTER TABLE `books` ADD COLUMN `price_en` double NULL",
		"ALTER TABLE `books` ADD COLUMN `price_es` double NULL",
		"UPDATE `books` SET `price_es` = `price`",
		"ALTER TABLE `books` MODIFY COLUMN `price_es` double NOT NULL",
		"ALTER TABLE `books` DROP COLUMN `price`",
	}, cmds)
}

func TestFormatType(t *testing.T) {
	for _, tt := range []struct {
		typ    schema.Type
		expect string
	}{
		{&schema.BoolType{}, "bool"},
		{&schema.IntegerType{T: "bigint", Unsigned: true}, "bigint unsigned"},
		{&schema.StringType{T: "varchar", Size: 140}, "varchar(140)"},
		{&schema.StringType{T: "text"}, "text"},
		{&schema.DecimalType{Precision: 10, Scale: 2}, "decimal(10,2)"},
		{&schema.EnumType{Values: []string{"a", "b"}}, "enum('a', 'b')"},
	} {
		f, err := FormatType(tt.typ)
		require.NoError(t, err)
		require.Equal(t, tt.expect, f)
	}
}

// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package postgres

import (
	"fmt"
	"strings"

	"github.com/transmetadb/transmeta/internal/sqlx"
	"github.com/transmetadb/transmeta/migrate"
	"github.com/transmetadb/transmeta/plan"
	"github.com/transmetadb/transmeta/schema"
)

// A planApply provides migration capabilities for translatable fields.
type planApply struct{ conn }

var _ migrate.PlanApplier = (*planApply)(nil)

// PlanField renders the field changeset into PostgreSQL statements.
// DDL is transactional in PostgreSQL, so a failed statement rolls the
// whole field back.
func (p *planApply) PlanField(fp *plan.FieldPlan) (*migrate.Plan, error) {
	out := &migrate.Plan{
		Model:         fp.Model,
		Table:         fp.Table,
		Field:         fp.Field,
		Reversible:    fp.Reversible(),
		Transactional: true,
		Destructive:   fp.Destructive(),
	}
	for _, c := range fp.Changes {
		switch c := c.(type) {
		case *schema.AddColumn:
			stmt, err := p.addColumn(fp.Table, c.C)
			if err != nil {
				return nil, err
			}
			out.Changes = append(out.Changes, &migrate.Change{
				Cmd:     stmt,
				Comment: fmt.Sprintf("add column %q", c.C.Name),
				Source:  c,
			})
		case *schema.AddColumnBackfill:
			add := *c.C
			add.Type = &schema.ColumnType{Type: c.C.Type.Type, Null: true}
			stmt, err := p.addColumn(fp.Table, &add)
			if err != nil {
				return nil, err
			}
			out.Changes = append(out.Changes,
				&migrate.Change{
					Cmd:     stmt,
					Comment: fmt.Sprintf("add column %q", c.C.Name),
					Source:  c,
				},
				&migrate.Change{
					Cmd:     p.Build("UPDATE").Table(fp.Table).P("SET").Ident(c.C.Name).P("=").Ident(c.Source.Name).String(),
					Comment: fmt.Sprintf("backfill %q from %q", c.C.Name, c.Source.Name),
					Source:  c,
				},
			)
		case *schema.ModifyNull:
			out.Changes = append(out.Changes, p.modifyNull(fp.Table, c)...)
		case *schema.DropColumn:
			comment := fmt.Sprintf("drop column %q", c.C.Name)
			if c.Stale {
				comment = fmt.Sprintf("drop stale language column %q", c.C.Name)
			}
			out.Changes = append(out.Changes, &migrate.Change{
				Cmd:     p.Build("ALTER TABLE").Table(fp.Table).P("DROP COLUMN").Ident(c.C.Name).String(),
				Comment: comment,
				Source:  c,
			})
		default:
			return nil, fmt.Errorf("postgres: unsupported change %T", c)
		}
	}
	return out, nil
}

// addColumn builds the query for adding the column to the table.
func (p *planApply) addColumn(table string, c *schema.Column) (string, error) {
	typ, err := FormatType(c.Type.Type)
	if err != nil {
		return "", err
	}
	b := p.Build("ALTER TABLE").Table(table).P("ADD COLUMN").Ident(c.Name).P(typ)
	x := c.Default
	if x == nil && !c.Type.Null {
		// A non-nullable column with no declared default cannot be
		// added to a non-empty table. The configured placeholder
		// fills existing rows.
		if p.placeholder == "" {
			return "", fmt.Errorf("postgres: adding non-nullable column %q requires a default or a configured placeholder", c.Name)
		}
		x = &schema.Literal{V: quote(p.placeholder)}
	}
	if x != nil {
		b.P("DEFAULT", mustExpr(x))
	}
	if !c.Type.Null {
		b.P("NOT")
	}
	b.P("NULL")
	return b.String(), nil
}

// modifyNull builds the queries for changing the nullability of the column.
func (p *planApply) modifyNull(table string, c *schema.ModifyNull) []*migrate.Change {
	var changes []*migrate.Change
	if !c.Null && p.placeholder != "" {
		// Rows left NULL by the backfill receive the placeholder
		// before the constraint is enforced.
		changes = append(changes, &migrate.Change{
			Cmd: p.Build("UPDATE").Table(table).P("SET").Ident(c.C.Name).P("=", quote(p.placeholder)).
				P("WHERE").Ident(c.C.Name).P("IS NULL").String(),
			Comment: fmt.Sprintf("fill remaining NULL values of %q", c.C.Name),
			Source:  c,
		})
	}
	b := p.Build("ALTER TABLE").Table(table).P("ALTER COLUMN").Ident(c.C.Name)
	op := "SET NOT NULL"
	if c.Null {
		op = "DROP NOT NULL"
	}
	return append(changes, &migrate.Change{
		Cmd:     b.P(op).String(),
		Comment: fmt.Sprintf("modify nullability of %q", c.C.Name),
		Source:  c,
	})
}

// Build instantiates a new builder and writes the given phrase to it.
func (p *planApply) Build(phrase string) *sqlx.Builder {
	b := &sqlx.Builder{QuoteChar: '"'}
	return b.P(phrase)
}

func mustExpr(x schema.Expr) string {
	switch x := x.(type) {
	case *schema.Literal:
		return x.V
	case *schema.RawExpr:
		return x.X
	}
	panic(fmt.Sprintf("postgres: unexpected expression %T", x))
}

// quote single-quotes the given string as an SQL literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package plan_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transmetadb/transmeta/field"
	"github.com/transmetadb/transmeta/lang"
	"github.com/transmetadb/transmeta/plan"
	"github.com/transmetadb/transmeta/schema"
)

func book(t *testing.T, def string, langs ...string) *field.Model {
	t.Helper()
	c, err := lang.Resolve(lang.Settings{DefaultLanguage: def, Languages: langs})
	require.NoError(t, err)
	m, err := field.Define(c, "Book",
		[]*schema.Column{schema.NewIntColumn("id", "integer")},
		[]*field.Spec{
			{Name: "price", Type: &schema.FloatType{T: "float"}},
			{Name: "description", Type: &schema.StringType{T: "text"}, Null: true},
		},
	)
	require.NoError(t, err)
	return m
}

func TestField_NewFieldMigration(t *testing.T) {
	m := book(t, "es", "es", "en")
	f, _ := m.Field("price")
	actual := schema.NewTable("books").AddColumns(
		schema.NewIntColumn("id", "integer"),
		schema.NewFloatColumn("price", "float"),
	)
	p, err := plan.Field(m, f, actual, nil)
	require.NoError(t, err)
	require.Len(t, p.Changes, 4)

	add, ok := p.Changes[0].(*schema.AddColumn)
	require.True(t, ok)
	require.Equal(t, "price_en", add.C.Name)
	require.True(t, add.C.Type.Null)

	backfill, ok := p.Changes[1].(*schema.AddColumnBackfill)
	require.True(t, ok)
	require.Equal(t, "price_es", backfill.C.Name)
	require.Equal(t, "price", backfill.Source.Name)

	modify, ok := p.Changes[2].(*schema.ModifyNull)
	require.True(t, ok)
	require.Equal(t, "price_es", modify.C.Name)
	require.False(t, modify.Null)

	drop, ok := p.Changes[3].(*schema.DropColumn)
	require.True(t, ok)
	require.Equal(t, "price", drop.C.Name)
	require.False(t, drop.Stale)

	require.True(t, p.Migrates())
	require.False(t, p.Destructive())
	require.False(t, p.Reversible())
}

func TestField_MigrationTargetOverride(t *testing.T) {
	m := book(t, "es", "es", "en")
	f, _ := m.Field("price")
	actual := schema.NewTable("books").AddColumns(schema.NewFloatColumn("price", "float"))
	p, err := plan.Field(m, f, actual, &plan.Options{Target: "en"})
	require.NoError(t, err)
	backfill, ok := p.Changes[1].(*schema.AddColumnBackfill)
	require.True(t, ok)
	require.Equal(t, "price_en", backfill.C.Name)
	// The target column keeps its declared shape; the en column is
	// nullable, so no constraining step follows the backfill.
	drop, ok := p.Changes[2].(*schema.DropColumn)
	require.True(t, ok)
	require.Equal(t, "price", drop.C.Name)

	_, err = plan.Field(m, f, actual, &plan.Options{Target: "it"})
	var pe *plan.PlanningError
	require.ErrorAs(t, err, &pe)
}

func TestField_NewLanguage(t *testing.T) {
	m := book(t, "es", "es", "en", "fr")
	f, _ := m.Field("description")
	actual := schema.NewTable("books").AddColumns(
		schema.NewNullStringColumn("description_es", "text"),
		schema.NewNullStringColumn("description_en", "text"),
	)
	p, err := plan.Field(m, f, actual, nil)
	require.NoError(t, err)
	require.Len(t, p.Changes, 1)
	add, ok := p.Changes[0].(*schema.AddColumn)
	require.True(t, ok)
	require.Equal(t, "description_fr", add.C.Name)
	require.True(t, add.C.Type.Null)
	require.True(t, p.Reversible())
}

func TestField_StaleLanguage(t *testing.T) {
	m := book(t, "es", "es", "en")
	f, _ := m.Field("description")
	actual := schema.NewTable("books").AddColumns(
		schema.NewNullStringColumn("description_es", "text"),
		schema.NewNullStringColumn("description_en", "text"),
		schema.NewNullStringColumn("description_it", "text"),
	)
	p, err := plan.Field(m, f, actual, nil)
	require.NoError(t, err)
	require.Len(t, p.Changes, 1)
	drop, ok := p.Changes[0].(*schema.DropColumn)
	require.True(t, ok)
	require.Equal(t, "description_it", drop.C.Name)
	require.True(t, drop.Stale)
	require.True(t, p.Destructive())
	require.False(t, p.Reversible())
}

func TestField_NonLanguageSuffixKept(t *testing.T) {
	m := book(t, "es", "es", "en")
	f, _ := m.Field("description")
	actual := schema.NewTable("books").AddColumns(
		schema.NewNullStringColumn("description_es", "text"),
		schema.NewNullStringColumn("description_en", "text"),
		// Not a language code suffix; must not be planned for removal.
		schema.NewNullStringColumn("description_plain", "text"),
	)
	p, err := plan.Field(m, f, actual, nil)
	require.NoError(t, err)
	require.True(t, p.Empty())
}

func TestField_Idempotent(t *testing.T) {
	m := book(t, "es", "es", "en")
	actual := schema.NewTable("books").AddColumns(
		schema.NewIntColumn("id", "integer"),
		schema.NewFloatColumn("price_es", "float"),
		schema.NewNullFloatColumn("price_en", "float"),
		schema.NewNullStringColumn("description_es", "text"),
		schema.NewNullStringColumn("description_en", "text"),
	)
	for _, f := range m.Fields {
		p, err := plan.Field(m, f, actual, nil)
		require.NoError(t, err)
		require.True(t, p.Empty(), f.Name)
	}
}

func TestField_MigrationStaleConflict(t *testing.T) {
	m := book(t, "es", "es", "en")
	f, _ := m.Field("price")
	actual := schema.NewTable("books").AddColumns(
		schema.NewFloatColumn("price", "float"),
		schema.NewNullFloatColumn("price_it", "float"),
	)
	_, err := plan.Field(m, f, actual, nil)
	var pe *plan.PlanningError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "Book", pe.Model)
	require.Equal(t, "price", pe.Field)
	require.ErrorContains(t, err, "resolve manually")
}

func TestModel_IsolatesFieldErrors(t *testing.T) {
	m := book(t, "es", "es", "en")
	actual := schema.NewTable("books").AddColumns(
		// price is in the conflicting state, description needs "en".
		schema.NewFloatColumn("price", "float"),
		schema.NewNullFloatColumn("price_it", "float"),
		schema.NewNullStringColumn("description_es", "text"),
	)
	plans, err := plan.Model(m, actual, nil)
	require.Error(t, err)
	var pe *plan.PlanningError
	require.ErrorAs(t, err, &pe)
	require.Len(t, plans, 1)
	require.Equal(t, "description", plans[0].Field)
	require.Len(t, plans[0].Changes, 1)
}

func TestModel_NoChanges(t *testing.T) {
	m := book(t, "es", "es", "en")
	actual := schema.NewTable("books").AddColumns(
		schema.NewFloatColumn("price_es", "float"),
		schema.NewNullFloatColumn("price_en", "float"),
		schema.NewNullStringColumn("description_es", "text"),
		schema.NewNullStringColumn("description_en", "text"),
	)
	plans, err := plan.Model(m, actual, nil)
	require.NoError(t, err)
	require.Empty(t, plans)
}

// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package field

import (
	"fmt"

	"github.com/go-openapi/inflect"

	"github.com/transmetadb/transmeta/lang"
	"github.com/transmetadb/transmeta/schema"
)

type (
	// A Model is a registered schema type with translatable fields.
	// Its Table holds the expected physical definition: the plain
	// columns as declared, plus one column per language per
	// translatable field.
	Model struct {
		Name   string
		Table  *schema.Table
		Fields []*Spec

		config   *lang.Config
		physical map[string][]*Physical
	}

	// DefineOption configures a model definition.
	DefineOption func(*defineOptions)

	defineOptions struct {
		table string
	}
)

// WithTable overrides the derived table name.
func WithTable(name string) DefineOption {
	return func(o *defineOptions) {
		o.table = name
	}
}

// Define registers a model: it takes the plain (non-translatable)
// columns and the translatable field specs, and returns a Model whose
// table carries the expanded per-language columns. This is the single
// explicit registration step; there is no implicit hook into type
// construction. The table name is derived from the model name
// (underscored and pluralized) unless overridden with WithTable.
func Define(c *lang.Config, name string, columns []*schema.Column, fields []*Spec, opts ...DefineOption) (*Model, error) {
	o := &defineOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.table == "" {
		o.table = inflect.Pluralize(inflect.Underscore(name))
	}
	m := &Model{
		Name:     name,
		Table:    schema.NewTable(o.table).AddColumns(columns...),
		Fields:   fields,
		config:   c,
		physical: make(map[string][]*Physical, len(fields)),
	}
	for _, f := range fields {
		if _, ok := m.Table.Column(f.Name); ok {
			return nil, fmt.Errorf("field: model %q declares translatable field %q shadowing a plain column", name, f.Name)
		}
		if _, ok := m.physical[f.Name]; ok {
			return nil, fmt.Errorf("field: model %q declares translatable field %q twice", name, f.Name)
		}
		ps := Expand(f, c)
		for _, p := range ps {
			if _, ok := m.Table.Column(p.Column.Name); ok {
				return nil, fmt.Errorf("field: model %q: column %q already defined", name, p.Column.Name)
			}
			m.Table.AddColumns(p.Column)
		}
		m.physical[f.Name] = ps
	}
	return m, nil
}

// Field returns the translatable field spec with the given name.
func (m *Model) Field(name string) (*Spec, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Physical returns the expanded per-language columns of the given
// translatable field, in configuration order.
func (m *Model) Physical(name string) ([]*Physical, bool) {
	ps, ok := m.physical[name]
	return ps, ok
}

// Config returns the language configuration the model was defined with.
func (m *Model) Config() *lang.Config { return m.config }

// A Row holds the raw column values of one record, keyed by physical
// column name. It is the unit the logical accessors operate on.
type Row map[string]any

// absent reports if a physical value counts as missing for fallback
// purposes. Both nil and the empty string do.
func absent(v any, ok bool) bool {
	if !ok || v == nil {
		return true
	}
	s, isStr := v.(string)
	return isStr && s == ""
}

// Read resolves the value of a logical field under the given active
// language: the physical value for the active language if present and
// non-empty, otherwise the default language's value, otherwise nil.
// It never falls back to an arbitrary third language, so partially
// translated rows resolve predictably. A *FieldError is returned for
// an undeclared field or an unconfigured language.
func (m *Model) Read(row Row, name, active string) (any, error) {
	if err := m.check(name, active); err != nil {
		return nil, err
	}
	if v, ok := row[PhysicalName(name, active)]; !absent(v, ok) {
		return v, nil
	}
	if active == m.config.Default {
		return nil, nil
	}
	if v, ok := row[PhysicalName(name, m.config.Default)]; !absent(v, ok) {
		return v, nil
	}
	return nil, nil
}

// Write sets the physical value of a logical field for the given
// active language. Only that one column is touched; other languages'
// values are never modified. A *FieldError is returned for an
// undeclared field or an unconfigured language.
func (m *Model) Write(row Row, name, active string, v any) error {
	if err := m.check(name, active); err != nil {
		return err
	}
	row[PhysicalName(name, active)] = v
	return nil
}

func (m *Model) check(name, active string) error {
	if _, ok := m.Field(name); !ok {
		return &FieldError{Model: m.Name, Field: name, Err: fmt.Errorf("not declared translatable")}
	}
	if !m.config.Has(active) {
		return &FieldError{Model: m.Name, Field: name, Err: fmt.Errorf("language %q is not configured", active)}
	}
	return nil
}

// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package field expands logical translatable field declarations into
// their per-language physical columns, and resolves logical reads and
// writes against an active language.
package field

import (
	"fmt"
	"strings"

	"github.com/transmetadb/transmeta/lang"
	"github.com/transmetadb/transmeta/schema"
)

type (
	// A Spec describes a logical translatable field as declared on a
	// model: its name, base column type, and the nullability and
	// default the default-language column inherits. Specs are declared
	// once at model definition time and are immutable afterwards.
	Spec struct {
		Name    string
		Type    schema.Type
		Null    bool
		Default schema.Expr
	}

	// A Physical describes one concrete per-language storage column
	// derived from a Spec. Exactly one Physical exists per configured
	// language per Spec.
	Physical struct {
		Spec *Spec
		Lang string
		// Required reports if the column must be filled at the UI
		// level. Only the default-language column of a non-nullable
		// field is required; all other language columns stay optional
		// to support incremental translation.
		Required bool
		Column   *schema.Column
	}
)

// A FieldError is returned on logical-field access with an undeclared
// field or an unconfigured language.
type FieldError struct {
	Model string
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field: %s.%s: %s", e.Model, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// PhysicalName composes the column name storing the given language's
// value of a logical field.
func PhysicalName(field, code string) string {
	return field + "_" + code
}

// Expand derives the set of physical per-language columns for the
// given field. The result is deterministic and contains exactly one
// entry per configured language, in configuration order. The column
// for the default language inherits the field's nullability and
// default; all other columns are forced nullable with no default,
// regardless of the base declaration, so rows can be translated
// incrementally.
func Expand(f *Spec, c *lang.Config) []*Physical {
	ps := make([]*Physical, 0, len(c.Languages))
	for _, code := range c.Languages {
		p := &Physical{
			Spec: f,
			Lang: code,
			Column: &schema.Column{
				Name: PhysicalName(f.Name, code),
				Type: &schema.ColumnType{Type: f.Type, Null: true},
			},
		}
		if code == c.Default {
			p.Column.Type.Null = f.Null
			p.Column.Default = f.Default
			p.Required = !f.Null
		}
		ps = append(ps, p)
	}
	return ps
}

// CanonicalName recovers the logical field name from a physical column
// name: the trailing "_<code>" suffix is stripped iff the code is a
// configured language and the remaining prefix is a declared
// translatable field of the model. Otherwise the input is returned
// unchanged. External UI code uses this to apply one customization to
// all language variants of a logical field.
func CanonicalName(c *lang.Config, m *Model, column string) string {
	i := strings.LastIndexByte(column, '_')
	if i <= 0 {
		return column
	}
	name, code := column[:i], column[i+1:]
	if !c.Has(code) {
		return column
	}
	if _, ok := m.Field(name); !ok {
		return column
	}
	return name
}

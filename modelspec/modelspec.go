// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package modelspec loads model declarations from HCL documents and
// resolves them into registered models. A document declares models with
// their plain columns and their translatable fields:
//
//	model "Book" {
//	  column "isbn" {
//	    type = "string"
//	    size = 20
//	  }
//	  field "title" {
//	    type    = "string"
//	    size    = 200
//	    default = "untitled"
//	  }
//	  field "description" {
//	    type = "text"
//	    null = true
//	  }
//	}
package modelspec

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/transmetadb/transmeta/field"
	"github.com/transmetadb/transmeta/lang"
	"github.com/transmetadb/transmeta/schema"
)

type (
	// A File is the decoded form of one model declaration document.
	File struct {
		Models []*ModelSpec `hcl:"model,block"`
	}

	// A ModelSpec declares one model: its optional physical table name,
	// its plain columns and its translatable fields.
	ModelSpec struct {
		Name    string        `hcl:"name,label"`
		Table   string        `hcl:"table,optional"`
		Columns []*ColumnSpec `hcl:"column,block"`
		Fields  []*FieldSpec  `hcl:"field,block"`
	}

	// A ColumnSpec declares a plain, non-translatable column.
	ColumnSpec struct {
		Name    string    `hcl:"name,label"`
		Type    string    `hcl:"type"`
		Null    bool      `hcl:"null,optional"`
		Size    int       `hcl:"size,optional"`
		Values  []string  `hcl:"values,optional"`
		Default cty.Value `hcl:"default,optional"`
	}

	// A FieldSpec declares a translatable field. Its type, nullability
	// and default describe the logical field; the per-language columns
	// are derived from it at resolution time.
	FieldSpec struct {
		Name      string    `hcl:"name,label"`
		Type      string    `hcl:"type"`
		Null      bool      `hcl:"null,optional"`
		Size      int       `hcl:"size,optional"`
		Precision int       `hcl:"precision,optional"`
		Scale     int       `hcl:"scale,optional"`
		Values    []string  `hcl:"values,optional"`
		Default   cty.Value `hcl:"default,optional"`
	}
)

// Parse decodes the given HCL document. The filename is used for
// diagnostics only.
func Parse(src []byte, filename string) (*File, error) {
	p := hclparse.NewParser()
	hf, diags := p.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("modelspec: parse %s: %w", filename, diags)
	}
	var f File
	if diags := gohcl.DecodeBody(hf.Body, nil, &f); diags.HasErrors() {
		return nil, fmt.Errorf("modelspec: decode %s: %w", filename, diags)
	}
	return &f, nil
}

// Resolve turns the decoded declarations into registered models under
// the given language configuration. Declaration errors (unknown types,
// colliding columns) abort the resolution.
func Resolve(f *File, c *lang.Config) ([]*field.Model, error) {
	ms := make([]*field.Model, 0, len(f.Models))
	for _, spec := range f.Models {
		m, err := resolveModel(spec, c)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	return ms, nil
}

func resolveModel(spec *ModelSpec, c *lang.Config) (*field.Model, error) {
	columns := make([]*schema.Column, 0, len(spec.Columns))
	for _, cs := range spec.Columns {
		t, err := columnType(cs.Type, cs.Size, 0, 0, cs.Values)
		if err != nil {
			return nil, fmt.Errorf("modelspec: model %q: column %q: %w", spec.Name, cs.Name, err)
		}
		col := &schema.Column{
			Name: cs.Name,
			Type: &schema.ColumnType{Type: t, Null: cs.Null},
		}
		if col.Default, err = literal(cs.Default); err != nil {
			return nil, fmt.Errorf("modelspec: model %q: column %q: %w", spec.Name, cs.Name, err)
		}
		columns = append(columns, col)
	}
	fields := make([]*field.Spec, 0, len(spec.Fields))
	for _, fs := range spec.Fields {
		t, err := columnType(fs.Type, fs.Size, fs.Precision, fs.Scale, fs.Values)
		if err != nil {
			return nil, fmt.Errorf("modelspec: model %q: field %q: %w", spec.Name, fs.Name, err)
		}
		f := &field.Spec{Name: fs.Name, Type: t, Null: fs.Null}
		if f.Default, err = literal(fs.Default); err != nil {
			return nil, fmt.Errorf("modelspec: model %q: field %q: %w", spec.Name, fs.Name, err)
		}
		fields = append(fields, f)
	}
	var opts []field.DefineOption
	if spec.Table != "" {
		opts = append(opts, field.WithTable(spec.Table))
	}
	return field.Define(c, spec.Name, columns, fields, opts...)
}

// columnType maps a declared type name to its schema type.
func columnType(name string, size, precision, scale int, values []string) (schema.Type, error) {
	switch name {
	case "bool":
		return &schema.BoolType{T: name}, nil
	case "int", "bigint":
		return &schema.IntegerType{T: name}, nil
	case "float":
		return &schema.FloatType{T: name}, nil
	case "decimal":
		return &schema.DecimalType{T: name, Precision: precision, Scale: scale}, nil
	case "string":
		return &schema.StringType{T: name, Size: size}, nil
	case "text":
		return &schema.StringType{T: name}, nil
	case "time":
		return &schema.TimeType{T: name}, nil
	case "json":
		return &schema.JSONType{T: name}, nil
	case "enum":
		if len(values) == 0 {
			return nil, fmt.Errorf("enum type requires values")
		}
		return &schema.EnumType{T: name, Values: values}, nil
	default:
		return nil, fmt.Errorf("unknown type %q", name)
	}
}

// literal converts a decoded default value to its SQL literal form.
// Strings are quoted; numbers and booleans render bare.
func literal(v cty.Value) (schema.Expr, error) {
	if v == cty.NilVal || v.IsNull() {
		return nil, nil
	}
	switch t := v.Type(); {
	case t == cty.String:
		return &schema.Literal{V: "'" + strings.ReplaceAll(v.AsString(), "'", "''") + "'"}, nil
	case t == cty.Number:
		return &schema.Literal{V: v.AsBigFloat().Text('f', -1)}, nil
	case t == cty.Bool:
		if v.True() {
			return &schema.Literal{V: "true"}, nil
		}
		return &schema.Literal{V: "false"}, nil
	default:
		return nil, fmt.Errorf("unsupported default value type %s", t.FriendlyName())
	}
}

// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package schema

// The methods and functions below provide a DSL for creating schema
// resources programmatically.

// NewTable creates a new Table.
func NewTable(name string) *Table {
	return &Table{Name: name}
}

// SetComment sets or appends the Comment attribute
// to the table with the given value.
func (t *Table) SetComment(v string) *Table {
	replaceOrAppend(&t.Attrs, &Comment{Text: v})
	return t
}

// AddColumns appends the given columns to the table column list.
func (t *Table) AddColumns(columns ...*Column) *Table {
	t.Columns = append(t.Columns, columns...)
	return t
}

// NewColumn creates a new column with the given name.
func NewColumn(name string) *Column {
	return &Column{Name: name}
}

// NewNullColumn creates a new nullable column with the given name.
func NewNullColumn(name string) *Column {
	return NewColumn(name).SetNull(true)
}

// NewBoolColumn creates a new BoolType column.
func NewBoolColumn(name, typ string) *Column {
	return NewColumn(name).SetType(&BoolType{T: typ})
}

// NewNullBoolColumn creates a new nullable BoolType column.
func NewNullBoolColumn(name, typ string) *Column {
	return NewBoolColumn(name, typ).SetNull(true)
}

// NewIntColumn creates a new IntegerType column.
func NewIntColumn(name, typ string) *Column {
	return NewColumn(name).SetType(&IntegerType{T: typ})
}

// NewNullIntColumn creates a new nullable IntegerType column.
func NewNullIntColumn(name, typ string) *Column {
	return NewIntColumn(name, typ).SetNull(true)
}

// StringOption allows configuring StringType columns using functional options.
type StringOption func(*StringType)

// StringSize configures the size of the string type.
func StringSize(size int) StringOption {
	return func(b *StringType) {
		b.Size = size
	}
}

// NewStringColumn creates a new StringType column.
func NewStringColumn(name, typ string, opts ...StringOption) *Column {
	t := &StringType{T: typ}
	for _, opt := range opts {
		opt(t)
	}
	return NewColumn(name).SetType(t)
}

// NewNullStringColumn creates a new nullable StringType column.
func NewNullStringColumn(name, typ string, opts ...StringOption) *Column {
	return NewStringColumn(name, typ, opts...).SetNull(true)
}

// NewFloatColumn creates a new FloatType column.
func NewFloatColumn(name, typ string) *Column {
	return NewColumn(name).SetType(&FloatType{T: typ})
}

// NewNullFloatColumn creates a new nullable FloatType column.
func NewNullFloatColumn(name, typ string) *Column {
	return NewFloatColumn(name, typ).SetNull(true)
}

// NewDecimalColumn creates a new DecimalType column.
func NewDecimalColumn(name, typ string) *Column {
	return NewColumn(name).SetType(&DecimalType{T: typ})
}

// NewTimeColumn creates a new TimeType column.
func NewTimeColumn(name, typ string) *Column {
	return NewColumn(name).SetType(&TimeType{T: typ})
}

// NewEnumColumn creates a new EnumType column.
func NewEnumColumn(name, typ string, values ...string) *Column {
	return NewColumn(name).SetType(&EnumType{T: typ, Values: values})
}

// SetNull configures the nullability of the column.
func (c *Column) SetNull(b bool) *Column {
	if c.Type == nil {
		c.Type = &ColumnType{}
	}
	c.Type.Null = b
	return c
}

// SetType configures the type of the column.
func (c *Column) SetType(t Type) *Column {
	if c.Type == nil {
		c.Type = &ColumnType{}
	}
	c.Type.Type = t
	return c
}

// SetDefault configures the default of the column.
func (c *Column) SetDefault(x Expr) *Column {
	c.Default = x
	return c
}

// SetComment sets or appends the Comment attribute
// to the column with the given value.
func (c *Column) SetComment(v string) *Column {
	replaceOrAppend(&c.Attrs, &Comment{Text: v})
	return c
}

// replaceOrAppend searches an attribute of the same type as v in
// the list and replaces it. Otherwise, v is appended to the list.
func replaceOrAppend(attrs *[]Attr, v Attr) {
	t := *attrs
	for i := range t {
		if sameAttr(t[i], v) {
			t[i] = v
			return
		}
	}
	*attrs = append(t, v)
}

func sameAttr(a, b Attr) bool {
	switch a.(type) {
	case *Comment:
		_, ok := b.(*Comment)
		return ok
	case *Collation:
		_, ok := b.(*Collation)
		return ok
	}
	return false
}

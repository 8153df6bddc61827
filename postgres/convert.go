// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package postgres

import (
	"fmt"
	"strings"

	"github.com/transmetadb/transmeta/schema"
)

// columnDesc describes the raw catalog form of a column type.
type columnDesc struct {
	typ       string
	size      int64
	precision int64
	scale     int64
}

// ParseType converts the raw catalog type to its schema.Type representation.
func ParseType(d columnDesc) (schema.Type, error) {
	switch t := strings.ToLower(d.typ); t {
	case TypeBoolean, "bool":
		return &schema.BoolType{T: TypeBoolean}, nil
	case TypeSmallInt, TypeInteger, TypeBigInt, "int", "int2", "int4", "int8":
		return &schema.IntegerType{T: t}, nil
	case TypeReal, TypeDouble, "float4", "float8":
		return &schema.FloatType{T: t, Precision: int(d.precision)}, nil
	case TypeNumeric, "decimal":
		return &schema.DecimalType{T: TypeNumeric, Precision: int(d.precision), Scale: int(d.scale)}, nil
	case TypeText:
		return &schema.StringType{T: t}, nil
	case TypeVarchar, "varchar", TypeChar, "char", "bpchar":
		return &schema.StringType{T: t, Size: int(d.size)}, nil
	case TypeBytea:
		return &schema.BinaryType{T: t}, nil
	case TypeDate, TypeTime, TypeTimestamp, TypeTimestampTZ, "timestamp", "timestamptz", "time":
		return &schema.TimeType{T: t}, nil
	case TypeJSON, TypeJSONB:
		return &schema.JSONType{T: t}, nil
	default:
		return &schema.UnsupportedType{T: t}, nil
	}
}

// FormatType converts a schema type to its column form in the database.
func FormatType(t schema.Type) (string, error) {
	switch t := t.(type) {
	case *schema.BoolType:
		return TypeBoolean, nil
	case *schema.IntegerType:
		switch t.T {
		case "", TypeInteger, "int", "int4":
			return TypeInteger, nil
		case TypeSmallInt, "int2":
			return TypeSmallInt, nil
		case TypeBigInt, "int8":
			return TypeBigInt, nil
		default:
			return t.T, nil
		}
	case *schema.FloatType:
		switch t.T {
		case TypeReal, "float4":
			return TypeReal, nil
		default:
			return TypeDouble, nil
		}
	case *schema.DecimalType:
		switch {
		case t.Precision == 0:
			return TypeNumeric, nil
		case t.Scale == 0:
			return fmt.Sprintf("%s(%d)", TypeNumeric, t.Precision), nil
		default:
			return fmt.Sprintf("%s(%d,%d)", TypeNumeric, t.Precision, t.Scale), nil
		}
	case *schema.StringType:
		switch {
		case t.T == TypeText || t.T == "text":
			return TypeText, nil
		case t.Size > 0:
			return fmt.Sprintf("varchar(%d)", t.Size), nil
		default:
			return "varchar", nil
		}
	case *schema.BinaryType:
		return TypeBytea, nil
	case *schema.TimeType:
		if t.T == "" {
			return TypeTimestamp, nil
		}
		return t.T, nil
	case *schema.EnumType:
		// Enum values are stored in a domain-independent text column.
		return TypeText, nil
	case *schema.JSONType:
		if t.T == TypeJSON {
			return TypeJSON, nil
		}
		return TypeJSONB, nil
	case *schema.UnsupportedType:
		return "", fmt.Errorf("postgres: unsupported type %q", t.T)
	default:
		return "", fmt.Errorf("postgres: invalid schema type %T", t)
	}
}

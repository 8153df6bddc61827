// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package schema

type (
	// A Change represents a schema change. The types below implement this
	// interface and can be used for describing schema changes.
	//
	// The Change interface can also be implemented outside this package
	// as follows:
	//
	//	type RenameColumn struct {
	//		schema.Change
	//		From, To string
	//	}
	//
	//	var c schema.Change = &RenameColumn{From: "old", To: "new"}
	//
	Change interface {
		change()
	}

	// AddColumn describes a column creation change.
	AddColumn struct {
		C *Column
	}

	// AddColumnBackfill describes a column creation change that is
	// followed by copying the data of an existing source column into
	// the new column. It is used when relocating an untranslated
	// column into its designated per-language column.
	AddColumnBackfill struct {
		C      *Column
		Source *Column
	}

	// ModifyNull describes a change to the nullability of a column.
	ModifyNull struct {
		C    *Column
		Null bool
	}

	// DropColumn describes a column removal change. Stale indicates the
	// column belongs to a language that was removed from the configuration,
	// and therefore its removal loses translated data.
	DropColumn struct {
		C     *Column
		Stale bool
	}
)

// changes.
func (*AddColumn) change()         {}
func (*AddColumnBackfill) change() {}
func (*ModifyNull) change()        {}
func (*DropColumn) change()        {}

// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package plan diffs the expected per-language columns of translatable
// fields against the inspected physical schema, and produces the
// ordered change list that reconciles them.
package plan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/transmetadb/transmeta/field"
	"github.com/transmetadb/transmeta/lang"
	"github.com/transmetadb/transmeta/schema"
)

type (
	// A FieldPlan is the ordered change list for one translatable
	// field of one model. Changes must be applied in emitted order:
	// additions before backfills, backfills before constraining, and
	// drops last, because later steps depend on columns created by
	// earlier ones.
	FieldPlan struct {
		Model   string
		Table   string
		Field   string
		Changes []schema.Change
	}

	// Options configures planning.
	Options struct {
		// Target optionally overrides the language that receives the
		// untranslated column's data during a one-time field
		// migration. Defaults to the configured default language.
		Target string
	}
)

// A PlanningError is reported when conflicting conditions are detected
// for one field and no plan can be emitted for it. Plans of other
// fields are not affected.
type PlanningError struct {
	Model string
	Field string
	Err   error
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("plan: %s.%s: %s", e.Model, e.Field, e.Err)
}

func (e *PlanningError) Unwrap() error { return e.Err }

// Empty reports if the plan contains no changes, i.e. the physical
// schema already matches the expected one.
func (p *FieldPlan) Empty() bool { return len(p.Changes) == 0 }

// Destructive reports if the plan removes columns that still hold
// translated data (a language removed from the configuration). Such
// plans require separate, explicit confirmation.
func (p *FieldPlan) Destructive() bool {
	for _, c := range p.Changes {
		if d, ok := c.(*schema.DropColumn); ok && d.Stale {
			return true
		}
	}
	return false
}

// Migrates reports if the plan relocates an untranslated column into a
// per-language column. The relocation is irreversible once the source
// column is dropped.
func (p *FieldPlan) Migrates() bool {
	for _, c := range p.Changes {
		if _, ok := c.(*schema.AddColumnBackfill); ok {
			return true
		}
	}
	return false
}

// Reversible reports if the plan can be undone without data loss.
// Plain column additions are reversible; backfill-then-drop
// relocations and stale-language drops are not.
func (p *FieldPlan) Reversible() bool {
	for _, c := range p.Changes {
		switch c.(type) {
		case *schema.AddColumnBackfill, *schema.DropColumn:
			return false
		}
	}
	return true
}

// Field computes the change list reconciling the actual table columns
// with the expected per-language columns of one translatable field.
//
// Four cases are handled, per field:
//
//   - New field: none of the expected columns exist, but the plain
//     untranslated column does. Its data is relocated losslessly into
//     the target language's column and the original is dropped.
//   - New language: an expected column is missing. A plain addition.
//   - Stale language: a per-language column exists whose code is no
//     longer configured. Dropped, flagged destructive.
//   - No-op: columns already match; the plan is empty.
//
// A *PlanningError is returned when a new-field relocation and a
// stale-language drop are pending simultaneously for the same field,
// since no safe ordering exists without manual resolution.
func Field(m *field.Model, f *field.Spec, actual *schema.Table, opts *Options) (*FieldPlan, error) {
	if opts == nil {
		opts = &Options{}
	}
	expected, ok := m.Physical(f.Name)
	if !ok {
		return nil, &PlanningError{Model: m.Name, Field: f.Name, Err: errors.New("field is not registered on model")}
	}
	p := &FieldPlan{Model: m.Name, Table: m.Table.Name, Field: f.Name}
	var (
		missing []*field.Physical
		stale   []*schema.Column
	)
	for _, ph := range expected {
		if _, ok := actual.Column(ph.Column.Name); !ok {
			missing = append(missing, ph)
		}
	}
	for _, c := range actual.Columns {
		if code, ok := languageSuffix(f.Name, c.Name); ok && !m.Config().Has(code) {
			stale = append(stale, c)
		}
	}
	source, hasSource := actual.Column(f.Name)
	switch {
	// New-field migration: the untranslated column exists and none of
	// the per-language columns do.
	case hasSource && len(missing) == len(expected):
		if len(stale) > 0 {
			return nil, &PlanningError{
				Model: m.Name,
				Field: f.Name,
				Err: fmt.Errorf("untranslated column %q pending migration while stale language columns %v pending removal; resolve manually",
					f.Name, columnNames(stale)),
			}
		}
		target, err := m.Config().Target(opts.Target)
		if err != nil {
			return nil, &PlanningError{Model: m.Name, Field: f.Name, Err: err}
		}
		var targetCol *schema.Column
		for _, ph := range expected {
			if ph.Lang == target {
				targetCol = ph.Column
				continue
			}
			p.Changes = append(p.Changes, &schema.AddColumn{C: ph.Column})
		}
		// The target column is created nullable, backfilled from the
		// untranslated column, and only then constrained, so rows are
		// never rejected mid-migration.
		p.Changes = append(p.Changes, &schema.AddColumnBackfill{C: targetCol, Source: source})
		if !targetCol.Type.Null {
			p.Changes = append(p.Changes, &schema.ModifyNull{C: targetCol, Null: false})
		}
		p.Changes = append(p.Changes, &schema.DropColumn{C: source})
	default:
		// New languages: per-language additions only. These columns
		// are declared nullable unless they are the default-language
		// column, so no backfill or constraining step is needed.
		for _, ph := range missing {
			p.Changes = append(p.Changes, &schema.AddColumn{C: ph.Column})
		}
		// Stale languages: drops come last and are flagged so the
		// executor can demand separate confirmation.
		for _, c := range stale {
			p.Changes = append(p.Changes, &schema.DropColumn{C: c, Stale: true})
		}
	}
	return p, nil
}

// Model plans all translatable fields of the model against the actual
// table. Planning failures are isolated per field: plans for clean
// fields are returned alongside the joined errors of the failed ones.
func Model(m *field.Model, actual *schema.Table, opts *Options) ([]*FieldPlan, error) {
	var (
		plans []*FieldPlan
		errs  []error
	)
	for _, f := range m.Fields {
		p, err := Field(m, f, actual, opts)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !p.Empty() {
			plans = append(plans, p)
		}
	}
	return plans, errors.Join(errs...)
}

// languageSuffix splits a physical column name into the given logical
// field name and its trailing language code, if it has that shape.
// Suffixes that are not valid language codes ("description_plain") do
// not count, so unrelated columns are never planned for removal.
func languageSuffix(fieldName, column string) (string, bool) {
	if !strings.HasPrefix(column, fieldName+"_") {
		return "", false
	}
	code := column[len(fieldName)+1:]
	if !lang.ValidCode(code) {
		return "", false
	}
	return code, true
}

func columnNames(cols []*schema.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

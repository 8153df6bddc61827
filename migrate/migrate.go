// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package migrate renders field plans into concrete SQL statements and
// applies confirmed statement lists to the database.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/transmetadb/transmeta/plan"
	"github.com/transmetadb/transmeta/schema"
)

type (
	// A Plan defines the rendered changeset of one field. Its
	// statements bring the field's physical columns to the expected
	// state when executed in order.
	Plan struct {
		// Model, Table and Field identify the owner of the changeset.
		Model string
		Table string
		Field string

		// Reversible describes if the changeset is reversible.
		Reversible bool

		// Transactional describes if the changeset is transactional,
		// i.e. the dialect can roll back its DDL.
		Transactional bool

		// Destructive describes if the changeset removes columns that
		// still hold data. Destructive changesets require separate,
		// explicit confirmation.
		Destructive bool

		// Changes defines the list of statements in the plan.
		Changes []*Change
	}

	// A Change of migration.
	Change struct {
		// Cmd or statement to execute.
		Cmd string

		// Args for placeholder parameters in the statement above.
		Args []any

		// A Comment describes the change.
		Comment string

		// The Source that caused this change, or nil.
		Source schema.Change
	}

	// PlanApplier wraps the method for rendering a field plan into
	// dialect-specific statements. It is implemented by the drivers.
	PlanApplier interface {
		// PlanField returns the statement plan for applying the given
		// field changeset. The rendering is pure; nothing is executed.
		PlanField(*plan.FieldPlan) (*Plan, error)
	}
)

// A ConfirmFunc is the approval gate invoked once per field before any
// of its statements are issued. Returning false skips the field's plan
// entirely. It is the only cooperative cancellation point.
type ConfirmFunc func(*Plan) bool

// ApproveAll approves every plan. Destructive plans still reach the
// gate; callers wanting a safety net must supply their own ConfirmFunc.
func ApproveAll(*Plan) bool { return true }

// Status of one field's execution.
type Status string

const (
	StatusApplied Status = "applied"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

type (
	// A Report summarizes one execution cycle.
	Report struct {
		Fields []*FieldResult
	}

	// A FieldResult records the outcome for one field's plan.
	FieldResult struct {
		Plan   *Plan
		Status Status
		Err    error
	}
)

// Failed reports if any field's execution failed. Skipped fields do
// not count as failures.
func (r *Report) Failed() bool {
	for _, f := range r.Fields {
		if f.Status == StatusFailed {
			return true
		}
	}
	return false
}

// An ExecError is returned when the database rejects a statement. The
// failed field's transaction is rolled back; remaining fields proceed.
type ExecError struct {
	Model string
	Field string
	Err   error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("migrate: %s.%s: %s", e.Model, e.Field, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// An Executor applies confirmed field plans. It is the only component
// that mutates live schema and data. Executions targeting the same
// table are serialized; distinct tables may execute concurrently.
type Executor struct {
	db  *sql.DB
	drv PlanApplier

	mu     sync.Mutex
	tables map[string]*sync.Mutex
}

// NewExecutor returns an Executor applying plans rendered by drv on db.
func NewExecutor(db *sql.DB, drv PlanApplier) *Executor {
	return &Executor{db: db, drv: drv, tables: make(map[string]*sync.Mutex)}
}

// Execute renders, confirms and applies the given field plans in
// order. Each field's statements run inside their own transaction: a
// statement failure rolls back that field's changes only, records a
// failure in the report, and execution continues with the remaining
// fields. A nil confirm approves every field.
func (e *Executor) Execute(ctx context.Context, plans []*plan.FieldPlan, confirm ConfirmFunc) (*Report, error) {
	if confirm == nil {
		confirm = ApproveAll
	}
	r := &Report{}
	for _, fp := range plans {
		p, err := e.drv.PlanField(fp)
		if err != nil {
			r.Fields = append(r.Fields, &FieldResult{
				Plan:   &Plan{Model: fp.Model, Table: fp.Table, Field: fp.Field},
				Status: StatusFailed,
				Err:    err,
			})
			continue
		}
		if len(p.Changes) == 0 {
			continue
		}
		if !confirm(p) {
			r.Fields = append(r.Fields, &FieldResult{Plan: p, Status: StatusSkipped})
			continue
		}
		res := &FieldResult{Plan: p, Status: StatusApplied}
		if err := e.applyField(ctx, p); err != nil {
			res.Status = StatusFailed
			res.Err = &ExecError{Model: p.Model, Field: p.Field, Err: err}
		}
		r.Fields = append(r.Fields, res)
	}
	return r, nil
}

// applyField applies one field's statements inside a transaction while
// holding the table's lock. The lock is released on commit or
// rollback, including on failure.
func (e *Executor) applyField(ctx context.Context, p *Plan) (err error) {
	unlock := e.lockTable(p.Table)
	defer unlock()
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			// Rollback error is secondary to the statement error.
			_ = tx.Rollback()
		}
	}()
	for _, c := range p.Changes {
		if _, err = tx.ExecContext(ctx, c.Cmd, c.Args...); err != nil {
			return fmt.Errorf("executing %q: %w", c.Cmd, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (e *Executor) lockTable(name string) func() {
	e.mu.Lock()
	l, ok := e.tables[name]
	if !ok {
		l = &sync.Mutex{}
		e.tables[name] = l
	}
	e.mu.Unlock()
	l.Lock()
	return l.Unlock
}

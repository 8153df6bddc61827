// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package migrate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/transmetadb/transmeta/internal/sqltest"
	"github.com/transmetadb/transmeta/migrate"
	"github.com/transmetadb/transmeta/plan"
)

// renderer is a static PlanApplier returning canned plans per field.
type renderer map[string]*migrate.Plan

func (r renderer) PlanField(fp *plan.FieldPlan) (*migrate.Plan, error) {
	p, ok := r[fp.Field]
	if !ok {
		return nil, errors.New("unknown field")
	}
	return p, nil
}

func pricePlan() *migrate.Plan {
	return &migrate.Plan{
		Model: "Book", Table: "books", Field: "price",
		Transactional: true,
		Changes: []*migrate.Change{
			{Cmd: `ALTER TABLE "books" ADD COLUMN "price_en" double precision NULL`},
			{Cmd: `ALTER TABLE "books" ADD COLUMN "price_es" double precision NULL`},
			{Cmd: `UPDATE "books" SET "price_es" = "price"`},
			{Cmd: `ALTER TABLE "books" ALTER COLUMN "price_es" SET NOT NULL`},
			{Cmd: `ALTER TABLE "books" DROP COLUMN "price"`},
		},
	}
}

func fieldPlans() []*plan.FieldPlan {
	return []*plan.FieldPlan{
		{Model: "Book", Table: "books", Field: "price"},
	}
}

func TestExecutor_Applies(t *testing.T) {
	db, m, err := sqlmock.New()
	require.NoError(t, err)
	p := pricePlan()
	m.ExpectBegin()
	for _, c := range p.Changes {
		m.ExpectExec(sqltest.Escape(c.Cmd)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	m.ExpectCommit()

	ex := migrate.NewExecutor(db, renderer{"price": p})
	report, err := ex.Execute(context.Background(), fieldPlans(), nil)
	require.NoError(t, err)
	require.False(t, report.Failed())
	require.Len(t, report.Fields, 1)
	require.Equal(t, migrate.StatusApplied, report.Fields[0].Status)
	require.NoError(t, m.ExpectationsWereMet())
}

func TestExecutor_RollsBackFailedField(t *testing.T) {
	db, m, err := sqlmock.New()
	require.NoError(t, err)
	p := pricePlan()
	m.ExpectBegin()
	m.ExpectExec(sqltest.Escape(p.Changes[0].Cmd)).WillReturnResult(sqlmock.NewResult(0, 0))
	m.ExpectExec(sqltest.Escape(p.Changes[1].Cmd)).WillReturnResult(sqlmock.NewResult(0, 0))
	m.ExpectExec(sqltest.Escape(p.Changes[2].Cmd)).WillReturnResult(sqlmock.NewResult(0, 0))
	// Constraining fails after the adds and the backfill succeeded.
	// The whole field rolls back; no partial columns remain.
	m.ExpectExec(sqltest.Escape(p.Changes[3].Cmd)).WillReturnError(errors.New("constraint violation"))
	m.ExpectRollback()

	ex := migrate.NewExecutor(db, renderer{"price": p})
	report, err := ex.Execute(context.Background(), fieldPlans(), nil)
	require.NoError(t, err)
	require.True(t, report.Failed())
	require.Equal(t, migrate.StatusFailed, report.Fields[0].Status)

	var ee *migrate.ExecError
	require.ErrorAs(t, report.Fields[0].Err, &ee)
	require.Equal(t, "Book", ee.Model)
	require.Equal(t, "price", ee.Field)
	require.NoError(t, m.ExpectationsWereMet())
}

func TestExecutor_FailureDoesNotAbortRemainingFields(t *testing.T) {
	db, m, err := sqlmock.New()
	require.NoError(t, err)
	bad := &migrate.Plan{
		Model: "Book", Table: "books", Field: "price",
		Changes: []*migrate.Change{{Cmd: `ALTER TABLE "books" ADD COLUMN "price_es" double precision NULL`}},
	}
	good := &migrate.Plan{
		Model: "Book", Table: "books", Field: "description",
		Changes: []*migrate.Change{{Cmd: `ALTER TABLE "books" ADD COLUMN "description_fr" text NULL`}},
	}
	m.ExpectBegin()
	m.ExpectExec(sqltest.Escape(bad.Changes[0].Cmd)).WillReturnError(errors.New("boom"))
	m.ExpectRollback()
	m.ExpectBegin()
	m.ExpectExec(sqltest.Escape(good.Changes[0].Cmd)).WillReturnResult(sqlmock.NewResult(0, 0))
	m.ExpectCommit()

	ex := migrate.NewExecutor(db, renderer{"price": bad, "description": good})
	report, err := ex.Execute(context.Background(), []*plan.FieldPlan{
		{Model: "Book", Table: "books", Field: "price"},
		{Model: "Book", Table: "books", Field: "description"},
	}, nil)
	require.NoError(t, err)
	require.True(t, report.Failed())
	require.Len(t, report.Fields, 2)
	require.Equal(t, migrate.StatusFailed, report.Fields[0].Status)
	require.Equal(t, migrate.StatusApplied, report.Fields[1].Status)
	require.NoError(t, m.ExpectationsWereMet())
}

func TestExecutor_DeclinedFieldSkipsEntirely(t *testing.T) {
	db, m, err := sqlmock.New()
	require.NoError(t, err)
	// No statements are issued for a declined field.
	ex := migrate.NewExecutor(db, renderer{"price": pricePlan()})
	report, err := ex.Execute(context.Background(), fieldPlans(), func(p *migrate.Plan) bool {
		return false
	})
	require.NoError(t, err)
	require.False(t, report.Failed())
	require.Equal(t, migrate.StatusSkipped, report.Fields[0].Status)
	require.NoError(t, m.ExpectationsWereMet())
}

func TestExecutor_RenderErrorRecorded(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	ex := migrate.NewExecutor(db, renderer{})
	report, err := ex.Execute(context.Background(), fieldPlans(), nil)
	require.NoError(t, err)
	require.True(t, report.Failed())
	require.EqualError(t, report.Fields[0].Err, "unknown field")
}

func TestExecutor_TableUnlockedAfterRollback(t *testing.T) {
	db, m, err := sqlmock.New()
	require.NoError(t, err)
	bad := &migrate.Plan{
		Model: "Book", Table: "books", Field: "price",
		Changes: []*migrate.Change{{Cmd: `ALTER TABLE "books" ADD COLUMN "price_es" double precision NULL`}},
	}
	good := &migrate.Plan{
		Model: "Book", Table: "books", Field: "description",
		Changes: []*migrate.Change{{Cmd: `ALTER TABLE "books" ADD COLUMN "description_fr" text NULL`}},
	}
	m.ExpectBegin()
	m.ExpectExec(sqltest.Escape(bad.Changes[0].Cmd)).WillReturnError(errors.New("boom"))
	m.ExpectRollback()
	m.ExpectBegin()
	m.ExpectExec(sqltest.Escape(good.Changes[0].Cmd)).WillReturnResult(sqlmock.NewResult(0, 0))
	m.ExpectCommit()

	// The failed execution must release the table lock on rollback,
	// or the following execution against the same table deadlocks.
	ex := migrate.NewExecutor(db, renderer{"price": bad, "description": good})
	report, err := ex.Execute(context.Background(), []*plan.FieldPlan{
		{Model: "Book", Table: "books", Field: "price"},
	}, nil)
	require.NoError(t, err)
	require.True(t, report.Failed())

	report, err = ex.Execute(context.Background(), []*plan.FieldPlan{
		{Model: "Book", Table: "books", Field: "description"},
	}, nil)
	require.NoError(t, err)
	require.False(t, report.Failed())
	require.Equal(t, migrate.StatusApplied, report.Fields[0].Status)
	require.NoError(t, m.ExpectationsWereMet())
}

func TestExecutor_SerializesSameTable(t *testing.T) {
	db, m, err := sqlmock.New()
	require.NoError(t, err)
	first := &migrate.Plan{
		Model: "Book", Table: "books", Field: "price",
		Changes: []*migrate.Change{{Cmd: `ALTER TABLE "books" ADD COLUMN "price_es" double precision NULL`}},
	}
	second := &migrate.Plan{
		Model: "Book", Table: "books", Field: "description",
		Changes: []*migrate.Change{{Cmd: `ALTER TABLE "books" ADD COLUMN "description_es" text NULL`}},
	}
	// Expectations are matched in order. The delayed statement holds
	// the first field's transaction open; if executions on the same
	// table interleaved, the second Begin would arrive mid-transaction
	// and fail the ordered expectations.
	m.ExpectBegin()
	m.ExpectExec(sqltest.Escape(first.Changes[0].Cmd)).
		WillDelayFor(100 * time.Millisecond).
		WillReturnResult(sqlmock.NewResult(0, 0))
	m.ExpectCommit()
	m.ExpectBegin()
	m.ExpectExec(sqltest.Escape(second.Changes[0].Cmd)).WillReturnResult(sqlmock.NewResult(0, 0))
	m.ExpectCommit()

	ex := migrate.NewExecutor(db, renderer{"price": first, "description": second})
	done := make(chan error, 1)
	go func() {
		_, err := ex.Execute(context.Background(), []*plan.FieldPlan{
			{Model: "Book", Table: "books", Field: "price"},
		}, nil)
		done <- err
	}()
	// Let the first execution take the table lock.
	time.Sleep(20 * time.Millisecond)
	report, err := ex.Execute(context.Background(), []*plan.FieldPlan{
		{Model: "Book", Table: "books", Field: "description"},
	}, nil)
	require.NoError(t, err)
	require.NoError(t, <-done)
	require.Equal(t, migrate.StatusApplied, report.Fields[0].Status)
	require.NoError(t, m.ExpectationsWereMet())
}

func TestExecutor_EmptyPlanIgnored(t *testing.T) {
	db, m, err := sqlmock.New()
	require.NoError(t, err)
	ex := migrate.NewExecutor(db, renderer{"price": {Model: "Book", Table: "books", Field: "price"}})
	confirmed := false
	report, err := ex.Execute(context.Background(), fieldPlans(), func(*migrate.Plan) bool {
		confirmed = true
		return true
	})
	require.NoError(t, err)
	require.Empty(t, report.Fields)
	require.False(t, confirmed)
	require.NoError(t, m.ExpectationsWereMet())
}

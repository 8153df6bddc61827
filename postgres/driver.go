// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package postgres provides the PostgreSQL driver for inspecting
// per-language columns and rendering and applying field plans.
package postgres

import (
	"fmt"

	"github.com/transmetadb/transmeta/migrate"
	"github.com/transmetadb/transmeta/schema"
)

type (
	// Driver represents a PostgreSQL driver for introspecting table
	// columns and planning changes to translatable fields.
	Driver struct {
		conn
		schema.Inspector
		migrate.PlanApplier
	}

	// database connection and its information.
	conn struct {
		schema.ExecQuerier
		// System variables that are set on Open.
		version string
		// placeholder optionally backfills non-nullable columns
		// that have no declared default.
		placeholder string
	}

	// Option configures the driver.
	Option func(*conn)
)

// WithPlaceholder sets the value used to backfill non-nullable columns
// that have no declared default. Usually lang.Config.Placeholder.
func WithPlaceholder(v string) Option {
	return func(c *conn) {
		c.placeholder = v
	}
}

// Open opens a new PostgreSQL driver.
func Open(db schema.ExecQuerier, opts ...Option) (*Driver, error) {
	c := conn{ExecQuerier: db}
	if err := db.QueryRow("SHOW server_version_num").Scan(&c.version); err != nil {
		return nil, fmt.Errorf("postgres: scanning server version: %w", err)
	}
	for _, opt := range opts {
		opt(&c)
	}
	return &Driver{
		conn:        c,
		Inspector:   &inspect{c},
		PlanApplier: &planApply{c},
	}, nil
}

// PostgreSQL data types used for formatting expanded columns.
const (
	TypeBoolean     = "boolean"
	TypeSmallInt    = "smallint"
	TypeInteger     = "integer"
	TypeBigInt      = "bigint"
	TypeReal        = "real"
	TypeDouble      = "double precision"
	TypeNumeric     = "numeric"
	TypeText        = "text"
	TypeVarchar     = "character varying"
	TypeChar        = "character"
	TypeBytea       = "bytea"
	TypeDate        = "date"
	TypeTime        = "time without time zone"
	TypeTimestamp   = "timestamp without time zone"
	TypeTimestampTZ = "timestamp with time zone"
	TypeJSON        = "json"
	TypeJSONB       = "jsonb"
)

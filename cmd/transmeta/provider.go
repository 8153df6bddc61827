// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package main

import (
	"database/sql"

	"github.com/transmetadb/transmeta/mysql"
	"github.com/transmetadb/transmeta/postgres"
	"github.com/transmetadb/transmeta/sqlite"
)

func init() {
	defaultMux.RegisterProvider("mysql", mysqlProvider)
	defaultMux.RegisterProvider("postgres", postgresProvider)
	defaultMux.RegisterProvider("sqlite", sqliteProvider)
}

func mysqlProvider(dsn, placeholder string) (*Driver, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	drv, err := mysql.Open(db, mysql.WithPlaceholder(placeholder))
	if err != nil {
		return nil, err
	}
	return &Driver{DB: db, Inspector: drv, PlanApplier: drv}, nil
}

func postgresProvider(dsn, placeholder string) (*Driver, error) {
	db, err := sql.Open("postgres", "postgres://"+dsn)
	if err != nil {
		return nil, err
	}
	drv, err := postgres.Open(db, postgres.WithPlaceholder(placeholder))
	if err != nil {
		return nil, err
	}
	return &Driver{DB: db, Inspector: drv, PlanApplier: drv}, nil
}

func sqliteProvider(dsn, placeholder string) (*Driver, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	drv, err := sqlite.Open(db, sqlite.WithPlaceholder(placeholder))
	if err != nil {
		return nil, err
	}
	return &Driver{DB: db, Inspector: drv, PlanApplier: drv}, nil
}

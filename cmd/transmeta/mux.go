// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package main

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/transmetadb/transmeta/migrate"
	"github.com/transmetadb/transmeta/schema"
)

type (
	// Mux routes a dsn to the provider registered for its scheme.
	Mux struct {
		providers map[string]func(dsn, placeholder string) (*Driver, error)
	}

	// Driver bundles an open connection with the dialect's inspection
	// and planning capabilities.
	Driver struct {
		DB *sql.DB
		schema.Inspector
		migrate.PlanApplier
	}
)

// NewMux returns a new Mux.
func NewMux() *Mux {
	return &Mux{
		providers: make(map[string]func(string, string) (*Driver, error)),
	}
}

var defaultMux = NewMux()

// RegisterProvider registers a Driver provider by scheme key.
func (u *Mux) RegisterProvider(key string, p func(string, string) (*Driver, error)) {
	if _, ok := u.providers[key]; ok {
		panic("provider is already initialized")
	}
	u.providers[key] = p
}

// Open opens a driver on the given data source. The placeholder is the
// configured fill value for non-nullable columns.
func (u *Mux) Open(dsn, placeholder string) (*Driver, error) {
	key, dsn, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}
	p, ok := u.providers[key]
	if !ok {
		return nil, fmt.Errorf("unknown database type: %q", key)
	}
	return p(dsn, placeholder)
}

func parseDSN(url string) (string, string, error) {
	a := strings.SplitN(url, "://", 2)
	if len(a) != 2 {
		return "", "", fmt.Errorf("failed to parse dsn: %q", url)
	}
	return a[0], a[1], nil
}

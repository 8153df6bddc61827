// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package sqlx

import (
	"database/sql"
	"strings"
)

// ValidString reports if the given string is not null and valid.
func ValidString(s sql.NullString) bool {
	return s.Valid && s.String != "" && strings.ToLower(s.String) != "null"
}

// Builder provides a helper method for building SQL statements
// with identifier quoting handled per dialect.
type Builder struct {
	strings.Builder
	QuoteChar byte
}

// P writes a list of phrases to the builder separated and
// suffixed with whitespace.
func (b *Builder) P(phrases ...string) *Builder {
	for _, p := range phrases {
		if p == "" {
			continue
		}
		if b.Len() > 0 && b.lastByte() != ' ' {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	return b
}

// Ident writes the given string quoted as an SQL identifier.
func (b *Builder) Ident(s string) *Builder {
	if s != "" {
		if b.Len() > 0 && b.lastByte() != ' ' {
			b.WriteByte(' ')
		}
		b.WriteByte(b.QuoteChar)
		b.WriteString(s)
		b.WriteByte(b.QuoteChar)
	}
	return b
}

// Table writes the table identifier to the builder.
func (b *Builder) Table(name string) *Builder {
	return b.Ident(name)
}

// Comma writes a comma in case the buffer is not empty, or replaces
// the last char if it is a whitespace.
func (b *Builder) Comma() *Builder {
	switch {
	case b.Len() == 0:
	case b.lastByte() == ' ':
		b.rewriteLastByte(',')
		b.WriteByte(' ')
	default:
		b.WriteString(", ")
	}
	return b
}

// MapComma maps the slice mapping indexes to callback, and joins
// its result with a comma.
func (b *Builder) MapComma(n int, f func(i int, b *Builder)) *Builder {
	for i := 0; i < n; i++ {
		if i > 0 {
			b.Comma()
		}
		f(i, b)
	}
	return b
}

// Wrap wraps the output of f in parentheses.
func (b *Builder) Wrap(f func(b *Builder)) *Builder {
	b.WriteByte('(')
	f(b)
	if b.lastByte() != ' ' {
		b.WriteByte(')')
	} else {
		b.rewriteLastByte(')')
	}
	return b
}

// String overrides the Stringer interface to ensure no
// trailing whitespace is returned.
func (b *Builder) String() string {
	return strings.TrimSpace(b.Builder.String())
}

func (b *Builder) lastByte() byte {
	if b.Len() == 0 {
		return 0
	}
	return b.Builder.String()[b.Len()-1]
}

func (b *Builder) rewriteLastByte(c byte) {
	if b.Len() == 0 {
		return
	}
	s := b.Builder.String()
	b.Builder.Reset()
	b.WriteString(s[:len(s)-1])
	b.WriteByte(c)
}

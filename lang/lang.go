// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package lang resolves the effective language configuration used for
// expanding translatable fields into per-language columns.
package lang

import (
	"fmt"
	"regexp"
)

type (
	// Settings carries the raw configuration inputs a Config is resolved
	// from. The transmeta-specific keys take precedence over the host
	// application's general locale settings.
	Settings struct {
		// DefaultLanguage is the transmeta-specific default language
		// override. Falls back to Locale when empty.
		DefaultLanguage string

		// Languages is the transmeta-specific language list override.
		// Falls back to Locales when empty.
		Languages []string

		// Placeholder is the value used to backfill non-nullable,
		// non-default columns during migration. Optional.
		Placeholder string

		// Locale and Locales are the host application's general
		// locale settings.
		Locale  string
		Locales []string
	}

	// A Config describes the resolved language configuration: the
	// default language, the full ordered language set, and the
	// placeholder value used during migrations. It is computed once
	// per process and treated as immutable afterwards.
	Config struct {
		// Default is the language whose physical column inherits the
		// logical field's nullability and default.
		Default string

		// Languages is the ordered set of configured language codes.
		// Codes are unique and Default is always a member.
		Languages []string

		// Placeholder optionally backfills non-nullable columns that
		// have no declared default during migration.
		Placeholder string
	}
)

// A ConfigError is returned when the language configuration is
// invalid or missing. It is fatal and aborts before any planning.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return e.Err.Error() }

func (e *ConfigError) Unwrap() error { return e.Err }

func configErrorf(format string, args ...any) error {
	return &ConfigError{Err: fmt.Errorf(format, args...)}
}

// codeRE matches supported language codes: a two- or three-letter
// base, optionally followed by a dashed region subtag ("pt-br").
// Underscored forms ("pt_BR") are rejected; the underscore separates
// field names from language codes in physical column names and cannot
// appear inside a code.
var codeRE = regexp.MustCompile(`^[a-z]{2,3}(-[a-zA-Z]{2,8})?$`)

// ValidCode reports if the given string has the shape of a supported
// language code.
func ValidCode(code string) bool {
	return codeRE.MatchString(code)
}

// Resolve computes the effective Config from the given settings. It is
// a pure function of its input. An error of type *ConfigError is
// returned when no languages are configured, when the default language
// is not a member of the language set, when the set contains duplicate
// codes, or when a code is not of a supported shape.
func Resolve(s Settings) (*Config, error) {
	langs := s.Languages
	if len(langs) == 0 {
		langs = s.Locales
	}
	if len(langs) == 0 {
		return nil, configErrorf("lang: no languages configured")
	}
	seen := make(map[string]bool, len(langs))
	for _, code := range langs {
		if code == "" {
			return nil, configErrorf("lang: empty language code")
		}
		if !ValidCode(code) {
			return nil, configErrorf("lang: invalid language code %q", code)
		}
		if seen[code] {
			return nil, configErrorf("lang: duplicate language code %q", code)
		}
		seen[code] = true
	}
	def := s.DefaultLanguage
	if def == "" {
		def = s.Locale
	}
	if def == "" {
		// No explicit default. The first configured language wins.
		def = langs[0]
	}
	if !seen[def] {
		return nil, configErrorf("lang: default language %q is not in languages %v", def, langs)
	}
	c := &Config{
		Default:     def,
		Languages:   make([]string, len(langs)),
		Placeholder: s.Placeholder,
	}
	copy(c.Languages, langs)
	return c, nil
}

// Has reports if the given code is a configured language.
func (c *Config) Has(code string) bool {
	for _, l := range c.Languages {
		if l == code {
			return true
		}
	}
	return false
}

// Target returns the language that receives the data of an
// untranslated column during a one-time field migration. An explicit
// override takes precedence over the default language. An error of
// type *ConfigError is returned if the override is not configured.
func (c *Config) Target(override string) (string, error) {
	if override == "" {
		return c.Default, nil
	}
	if !c.Has(override) {
		return "", configErrorf("lang: migration target language %q is not in languages %v", override, c.Languages)
	}
	return override, nil
}

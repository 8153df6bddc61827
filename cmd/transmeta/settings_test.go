// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transmetadb/transmeta/lang"
)

func TestLoadSettings_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transmeta.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
transmeta:
  default_language: es
  languages: [es, en]
  default_value: "-"
language: de
languages: [de, fr]
`), 0600))
	s, err := loadSettings(path)
	require.NoError(t, err)
	require.Equal(t, lang.Settings{
		DefaultLanguage: "es",
		Languages:       []string{"es", "en"},
		Placeholder:     "-",
		Locale:          "de",
		Locales:         []string{"de", "fr"},
	}, s)
}

func TestLoadSettings_Env(t *testing.T) {
	t.Setenv("TRANSMETA_DEFAULT_LANGUAGE", "fr")
	t.Setenv("TRANSMETA_LANGUAGES", "fr en")
	t.Setenv("TRANSMETA_DEFAULT_VALUE", "n/a")
	s, err := loadSettings("")
	require.NoError(t, err)
	require.Equal(t, "fr", s.DefaultLanguage)
	require.Equal(t, []string{"fr", "en"}, s.Languages)
	require.Equal(t, "n/a", s.Placeholder)
}

func TestLoadSettings_MissingFileTolerated(t *testing.T) {
	s, err := loadSettings("")
	require.NoError(t, err)
	require.Empty(t, s.DefaultLanguage)

	_, err = loadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

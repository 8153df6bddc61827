// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package main

import (
	"errors"

	"github.com/spf13/viper"

	"github.com/transmetadb/transmeta/lang"
)

// loadSettings reads the project settings file and maps it to the
// language settings. When file is empty, a file named "transmeta" with
// any supported extension is searched in the working directory.
// Settings may also come from TRANSMETA_* environment variables. A
// missing settings file is not an error; the host-locale fallback keys
// may still be set through the environment.
func loadSettings(file string) (lang.Settings, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("transmeta")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("transmeta")
	v.AutomaticEnv()
	// The namespaced keys bind to their flat TRANSMETA_* variables;
	// the automatic prefixing would otherwise double the prefix.
	for key, env := range map[string]string{
		"transmeta.default_language": "TRANSMETA_DEFAULT_LANGUAGE",
		"transmeta.languages":        "TRANSMETA_LANGUAGES",
		"transmeta.default_value":    "TRANSMETA_DEFAULT_VALUE",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return lang.Settings{}, err
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &nf) {
			return lang.Settings{}, err
		}
	}
	return lang.Settings{
		DefaultLanguage: v.GetString("transmeta.default_language"),
		Languages:       v.GetStringSlice("transmeta.languages"),
		Placeholder:     v.GetString("transmeta.default_value"),
		Locale:          v.GetString("language"),
		Locales:         v.GetStringSlice("languages"),
	}, nil
}

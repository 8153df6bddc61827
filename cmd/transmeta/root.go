// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "transmeta",
	Short:        "Manage per-language storage columns for translatable model fields.",
	SilenceUsage: true,
}

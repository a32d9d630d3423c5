// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wayvid is the CLI entrypoint: run, check, import, and
// workshop subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "wayvid",
	Short: "Animated Wayland wallpaper engine",
	Long:  `wayvid plays video and scene wallpapers as a Wayland layer-shell background on every connected output.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

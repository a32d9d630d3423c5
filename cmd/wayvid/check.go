// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wayvid.dev/wayvid/internal/config"
)

var checkConfigPath string

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkConfigPath, "config", "", "path to config.yaml (default: $XDG_CONFIG_HOME/wayvid/config.yaml)")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate config.yaml without starting the engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := checkConfigPath
		if path == "" {
			p, err := config.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}
		base, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("wayvid: %w", err)
		}
		resolver := config.NewResolver(base)
		for pattern := range base.PerOutput {
			if _, err := resolver.ForOutput(pattern); err != nil {
				return fmt.Errorf("wayvid: per_output[%q]: %w", pattern, err)
			}
		}
		fmt.Printf("%s: OK (%d per-output override(s))\n", path, len(base.PerOutput))
		return nil
	},
}

// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"wayvid.dev/wayvid/internal/workshop"
)

var importOut string

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importOut, "out", "o", "", "write the resulting config.yaml here instead of stdout")
}

var importCmd = &cobra.Command{
	Use:   "import <project-dir>",
	Short: "Import a third-party project.json into a wayvid config.yaml",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		projectFile, err := workshop.DetectProject(dir)
		if err != nil {
			return fmt.Errorf("wayvid: %w", err)
		}
		desc, videoPath, err := workshop.Import(projectFile)
		if err != nil {
			return fmt.Errorf("wayvid: %w", err)
		}
		base := workshop.ToBaseConfig(desc, videoPath)
		doc := workshop.ToDoc(base)

		out, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("wayvid: encoding config: %w", err)
		}
		if importOut == "" {
			_, err = os.Stdout.Write(out)
			return err
		}
		if err := os.WriteFile(importOut, out, 0o644); err != nil {
			return fmt.Errorf("wayvid: writing %s: %w", importOut, err)
		}
		fmt.Printf("imported %q -> %s\n", desc.Title, importOut)
		return nil
	},
}

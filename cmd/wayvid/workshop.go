// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"wayvid.dev/wayvid/internal/workshop"
)

var workshopOut string

func init() {
	rootCmd.AddCommand(workshopCmd)
	workshopCmd.AddCommand(workshopListCmd, workshopInfoCmd, workshopSearchCmd,
		workshopDownloadCmd, workshopInstallCmd, workshopImportCmd, workshopCacheCmd)
	workshopImportCmd.Flags().StringVarP(&workshopOut, "out", "o", "", "write the resulting config.yaml here instead of stdout")
	workshopCacheCmd.AddCommand(workshopCacheClearCmd, workshopCacheClearAllCmd)
}

var workshopCmd = &cobra.Command{
	Use:   "workshop",
	Short: "Manage Workshop-style wallpaper downloads",
}

func openWorkshopCache() (*workshop.Cache, error) {
	dir, err := workshop.DefaultCacheDir()
	if err != nil {
		return nil, err
	}
	return workshop.OpenCache(dir)
}

func parseItemID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("wayvid: invalid item id %q: %w", s, err)
	}
	return id, nil
}

var workshopListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached Workshop items",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openWorkshopCache()
		if err != nil {
			return err
		}
		items, err := cache.List()
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("no cached Workshop items")
			return nil
		}
		for _, it := range items {
			fmt.Printf("%d\t%s\t%s\n", it.ID, it.Title, it.Dir)
		}
		return nil
	},
}

var workshopInfoCmd = &cobra.Command{
	Use:   "info <id>",
	Short: "Show metadata for a Workshop item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseItemID(args[0])
		if err != nil {
			return err
		}
		cache, err := openWorkshopCache()
		if err != nil {
			return err
		}
		details, err := workshop.NewDownloader(cache).GetItemDetails(context.Background(), id)
		if err != nil {
			return fmt.Errorf("wayvid: %w", err)
		}
		fmt.Printf("title: %s\ncreator: %s\nsubscriptions: %d\nfavorited: %d\ntags: %v\n",
			details.Title, details.Creator, details.Subscriptions, details.Favorited, details.Tags)
		return nil
	},
}

var workshopSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search Workshop items (requires Steam API authentication upstream)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openWorkshopCache()
		if err != nil {
			return err
		}
		results, err := workshop.NewDownloader(cache).Search(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("wayvid: %w", err)
		}
		for _, r := range results {
			fmt.Printf("%d\t%s\n", r.ID, r.Title)
		}
		return nil
	},
}

func downloadItem(idArg string) (string, error) {
	id, err := parseItemID(idArg)
	if err != nil {
		return "", err
	}
	cache, err := openWorkshopCache()
	if err != nil {
		return "", err
	}
	dir, err := workshop.NewDownloader(cache).Download(context.Background(), id)
	if err != nil {
		return "", fmt.Errorf("wayvid: %w", err)
	}
	return dir, nil
}

var workshopDownloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Download a Workshop item into the local cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := downloadItem(args[0])
		if err != nil {
			return err
		}
		fmt.Println(dir)
		return nil
	},
}

// workshopInstallCmd is an alias for download: wayvid only ever has
// one download path.
var workshopInstallCmd = &cobra.Command{
	Use:   "install <id>",
	Short: "Download and prepare a Workshop item for use (alias of download)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := downloadItem(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("installed to %s\n", dir)
		return nil
	},
}

var workshopImportCmd = &cobra.Command{
	Use:   "import <id>",
	Short: "Convert a cached Workshop item into a config.yaml",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseItemID(args[0])
		if err != nil {
			return err
		}
		cache, err := openWorkshopCache()
		if err != nil {
			return err
		}
		itemDir := cache.ItemDir(id)
		projectFile, err := workshop.DetectProject(itemDir)
		if err != nil {
			return fmt.Errorf("wayvid: item %d was not downloaded as a project bundle: %w", id, err)
		}
		desc, videoPath, err := workshop.Import(projectFile)
		if err != nil {
			return fmt.Errorf("wayvid: %w", err)
		}
		doc := workshop.ToDoc(workshop.ToBaseConfig(desc, videoPath))
		out, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("wayvid: encoding config: %w", err)
		}
		if workshopOut == "" {
			_, err = os.Stdout.Write(out)
			return err
		}
		return os.WriteFile(workshopOut, out, 0o644)
	},
}

var workshopCacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the Workshop download cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := workshop.DefaultCacheDir()
		if err != nil {
			return err
		}
		fmt.Println(filepath.Clean(dir))
		return nil
	},
}

var workshopCacheClearCmd = &cobra.Command{
	Use:   "clear <id>",
	Short: "Remove one cached item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseItemID(args[0])
		if err != nil {
			return err
		}
		cache, err := openWorkshopCache()
		if err != nil {
			return err
		}
		return cache.Clear(id)
	},
}

var workshopCacheClearAllCmd = &cobra.Command{
	Use:   "clear-all",
	Short: "Remove every cached item",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openWorkshopCache()
		if err != nil {
			return err
		}
		return cache.ClearAll()
	},
}

// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package workshop

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

// manifestEntry is one cached item's on-disk record (cache.toml).
type manifestEntry struct {
	ID          uint64 `toml:"id"`
	Title       string `toml:"title"`
	Dir         string `toml:"dir"`
	SourceFile  string `toml:"source_file"`
}

// manifest is the TOML document persisted at <cache_dir>/cache.toml,
// tracking what has been downloaded so `workshop list`/`workshop cache`
// don't need to re-walk the filesystem to recover titles.
type manifest struct {
	Items []manifestEntry `toml:"item"`
}

// Cache manages the on-disk Workshop download cache and its manifest.
type Cache struct {
	dir string
}

// DefaultCacheDir returns ${XDG_CACHE_HOME:-~/.cache}/wayvid/workshop.
func DefaultCacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "wayvid", "workshop"), nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("workshop: resolving home directory: %w", err)
	}
	return filepath.Join(home, ".cache", "wayvid", "workshop"), nil
}

// OpenCache creates dir if needed and returns a Cache rooted there.
func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("workshop: creating cache dir %s: %w", dir, err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) manifestPath() string { return filepath.Join(c.dir, "cache.toml") }

func (c *Cache) load() (*manifest, error) {
	b, err := os.ReadFile(c.manifestPath())
	if os.IsNotExist(err) {
		return &manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("workshop: reading cache manifest: %w", err)
	}
	var m manifest
	if err := toml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("workshop: parsing cache manifest: %w", err)
	}
	return &m, nil
}

func (c *Cache) save(m *manifest) error {
	b, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("workshop: encoding cache manifest: %w", err)
	}
	return os.WriteFile(c.manifestPath(), b, 0o644)
}

// ItemDir returns the on-disk directory an item is (or would be)
// downloaded into.
func (c *Cache) ItemDir(id uint64) string {
	return filepath.Join(c.dir, fmt.Sprint(id))
}

// Record adds or updates an entry after a successful download/install.
func (c *Cache) Record(id uint64, title, sourceFile string) error {
	m, err := c.load()
	if err != nil {
		return err
	}
	for i := range m.Items {
		if m.Items[i].ID == id {
			m.Items[i] = manifestEntry{ID: id, Title: title, Dir: c.ItemDir(id), SourceFile: sourceFile}
			return c.save(m)
		}
	}
	m.Items = append(m.Items, manifestEntry{ID: id, Title: title, Dir: c.ItemDir(id), SourceFile: sourceFile})
	return c.save(m)
}

// List returns every item recorded in the manifest, sorted by ID. Item
// directories with no manifest entry are not listed.
func (c *Cache) List() ([]manifestEntry, error) {
	m, err := c.load()
	if err != nil {
		return nil, err
	}
	items := append([]manifestEntry(nil), m.Items...)
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// Clear removes one cached item's directory and manifest entry.
func (c *Cache) Clear(id uint64) error {
	if err := os.RemoveAll(c.ItemDir(id)); err != nil {
		return fmt.Errorf("workshop: clearing cache for item %d: %w", id, err)
	}
	m, err := c.load()
	if err != nil {
		return err
	}
	kept := m.Items[:0]
	for _, it := range m.Items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	m.Items = kept
	return c.save(m)
}

// ClearAll wipes the entire cache directory and manifest.
func (c *Cache) ClearAll() error {
	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("workshop: clearing cache: %w", err)
	}
	return os.MkdirAll(c.dir, 0o755)
}

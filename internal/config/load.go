// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
	"wayvid.dev/wayvid/internal/wlog"
	"wayvid.dev/wayvid/internal/wire"
)

// DefaultPath returns ${XDG_CONFIG_HOME:-~/.config}/wayvid/config.yaml.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "wayvid", "config.yaml"), nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("config: resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "wayvid", "config.yaml"), nil
}

// Load reads and parses a config.yaml at path into a BaseConfig.
func Load(path string) (*wire.BaseConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var doc Doc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return doc.ToWire()
}

// Watcher reloads config.yaml on every write or create event for its
// path and delivers the refreshed BaseConfig on Changes from one watcher
// goroutine. Changes holds at most one pending reload: a newer reload
// replaces one that has not been received yet.
type Watcher struct {
	path    string
	fsw     *fsnotify.Watcher
	Changes chan *wire.BaseConfig
	done    chan struct{}
}

// Watch starts watching path's containing directory (editors typically
// replace the file rather than write in place, which only a directory
// watch reliably observes).
func Watch(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: starting watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("config: watching %s: %w", filepath.Dir(path), err)
	}
	w := &Watcher{path: path, fsw: fsw, Changes: make(chan *wire.BaseConfig, 1), done: make(chan struct{})}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			bc, err := Load(w.path)
			if err != nil {
				wlog.Warn("config reload failed", "path", w.path, "error", err)
				continue
			}
			select {
			case w.Changes <- bc:
			default:
				// Drop the stale pending reload, keep the newest.
				select {
				case <-w.Changes:
				default:
				}
				w.Changes <- bc
			}
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

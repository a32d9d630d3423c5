// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package control

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"wayvid.dev/wayvid/internal/wire"
)

// detectSource classifies an ApplyWallpaper path into its VideoSource
// kind: URLs by scheme, "-" and named pipes as Pipe, directories
// holding a project.json as scene or engine-video projects, bare
// directories as playlists, and everything else as a file on disk.
// A nonexistent path still yields FileOnDisk; the player reports the
// open failure as a session error instead of the command failing
// up front.
func detectSource(path string) wire.VideoSource {
	switch {
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return wire.HTTPURL{URL: path}
	case strings.HasPrefix(path, "rtsp://"):
		return wire.RTSPURL{URL: path}
	case path == "-":
		return wire.Pipe{}
	}

	p := wire.Canonicalize(path)
	info, err := os.Stat(p)
	if err != nil {
		return wire.FileOnDisk{Path: p}
	}
	if info.IsDir() {
		if t, ok := projectType(p); ok {
			switch t {
			case "scene":
				return wire.LayeredScene{ProjectPath: p}
			case "video":
				return wire.EngineVideoProject{ProjectPath: p}
			}
		}
		return wire.Directory{Path: p}
	}
	if info.Mode()&os.ModeNamedPipe != 0 {
		return wire.Pipe{Path: p}
	}
	return wire.FileOnDisk{Path: p}
}

// projectType peeks at dir/project.json's type field, without pulling
// in the full workshop descriptor parse.
func projectType(dir string) (string, bool) {
	raw, err := os.ReadFile(filepath.Join(dir, "project.json"))
	if err != nil {
		return "", false
	}
	var doc struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", false
	}
	return doc.Type, true
}

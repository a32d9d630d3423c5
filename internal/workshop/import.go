// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package workshop

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"wayvid.dev/wayvid/internal/config"
	"wayvid.dev/wayvid/internal/wire"
	"wayvid.dev/wayvid/internal/wlog"
)

var commonVideoExtensions = map[string]bool{
	".mp4": true, ".webm": true, ".mkv": true, ".avi": true, ".mov": true, ".m4v": true,
}

// DetectProject locates project.json inside dir, the on-disk marker
// of a Workshop project directory.
func DetectProject(dir string) (string, error) {
	candidate := filepath.Join(dir, "project.json")
	info, err := os.Stat(candidate)
	if err != nil {
		return "", fmt.Errorf("workshop: %s is not a Workshop project (missing project.json): %w", dir, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("workshop: %s is a directory, expected project.json", candidate)
	}
	return candidate, nil
}

// Import reads and validates a project.json at projectFile, resolving its
// video file relative to the descriptor's own directory, and returns the
// descriptor plus the absolute path to the validated video file.
func Import(projectFile string) (*Descriptor, string, error) {
	data, err := os.ReadFile(projectFile)
	if err != nil {
		return nil, "", fmt.Errorf("workshop: reading %s: %w", projectFile, err)
	}
	desc, err := ParseDescriptor(data)
	if err != nil {
		return nil, "", err
	}
	projectDir := filepath.Dir(projectFile)
	videoPath := filepath.Join(projectDir, desc.FilePath)
	info, err := os.Stat(videoPath)
	if err != nil {
		return nil, "", fmt.Errorf("workshop: video file %q referenced by %s does not exist: %w", videoPath, projectFile, err)
	}
	if !info.Mode().IsRegular() {
		return nil, "", fmt.Errorf("workshop: video path %q is not a regular file", videoPath)
	}
	ext := strings.ToLower(filepath.Ext(videoPath))
	if !commonVideoExtensions[ext] {
		wlog.Warn("workshop: unrecognized video extension, importing anyway", "path", videoPath, "ext", ext)
	}
	if kind, err := filetype.MatchFile(videoPath); err == nil && kind != filetype.Unknown && kind.MIME.Type != "video" {
		wlog.Warn("workshop: descriptor file does not look like a video by content sniffing", "path", videoPath, "detected", kind.MIME.Value)
	}
	if desc.Properties.AudioProcessing {
		wlog.Warn("workshop: project requests audioprocessing, which wayvid does not support", "title", desc.Title)
	}
	if desc.Properties.PlaybackMode == 1 {
		wlog.Warn("workshop: playbackmode=1 (\"pause at end\") is ambiguous in the source format; defaulting to loop", "title", desc.Title)
	}
	return desc, videoPath, nil
}

// alignmentLayout maps the descriptor's numeric alignment to a LayoutMode
// 0 center / 1 fit / 2 fill / 3 stretch maps to
// Centre / Contain / Cover / Fill.
func alignmentLayout(alignment int64) wire.LayoutMode {
	switch alignment {
	case 0:
		return wire.LayoutCentre
	case 1:
		return wire.LayoutContain
	case 2:
		return wire.LayoutCover
	case 3:
		return wire.LayoutFill
	default:
		return wire.LayoutContain
	}
}

// ToBaseConfig converts an imported descriptor and its resolved video path
// into a single-source BaseConfig document ready for ToWire/serialization.
func ToBaseConfig(desc *Descriptor, videoPath string) *wire.BaseConfig {
	p := desc.Properties
	return &wire.BaseConfig{
		Source:        wire.FileOnDisk{Path: wire.Canonicalize(videoPath)},
		Layout:        alignmentLayout(p.Alignment),
		Loop:          true, // playbackmode=1 is logged and defaulted to loop, see Import
		PlaybackRate:  orDefault(p.Rate, 1.0),
		Mute:          p.Volume == 0,
		Volume:        p.Volume / 100.0,
		HWDec:         wire.HWDecAuto,
		HDR:           wire.HDRAuto,
		RenderBackend: wire.BackendAuto,
		ToneMap:       wire.ToneMapParams{Algorithm: wire.ToneMapHable, Mode: wire.ToneModeAuto, TargetNits: 203},
		PerOutput:     map[string]*wire.Override{},
	}
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// ToDoc converts a BaseConfig back into the config package's YAML-shaped
// Doc, for writing out via `wayvid import <dir> -o <path>`.
func ToDoc(bc *wire.BaseConfig) *config.Doc {
	fod, _ := bc.Source.(wire.FileOnDisk)
	return &config.Doc{
		Source:        &config.SourceDoc{Type: "file", Path: fod.Path},
		Layout:        string(bc.Layout),
		Loop:          bc.Loop,
		PlaybackRate:  bc.PlaybackRate,
		Mute:          bc.Mute,
		Volume:        bc.Volume,
		HWDec:         string(bc.HWDec),
		HDR:           string(bc.HDR),
		RenderBackend: string(bc.RenderBackend),
		ToneMap: config.ToneMapDoc{
			Algorithm:  string(bc.ToneMap.Algorithm),
			Mode:       string(bc.ToneMap.Mode),
			TargetNits: bc.ToneMap.TargetNits,
		},
	}
}

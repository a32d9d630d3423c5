// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wire holds the value types shared across the engine: wallpaper
// sources, effective configuration, and the command/event sum types that
// cross the control-plane channel boundary.
package wire

import (
	"fmt"
	"math"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
)

// VideoSource identifies where a Session's frames come from. Exactly one
// of the concrete types below satisfies it.
type VideoSource interface {
	isVideoSource()
	// Key returns a value suitable for map keys and equality comparisons.
	// Floating-point fields are folded in bitwise (via math.Float64bits)
	// so that VideoSource is totally and exactly comparable.
	Key() string
}

// Canonicalize resolves a leading "~" against the user's home directory
// and cleans the remaining path. It never fails on a path with no "~".
func Canonicalize(path string) string {
	p, err := homedir.Expand(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.Clean(p)
}

type FileOnDisk struct{ Path string }

func (FileOnDisk) isVideoSource()  {}
func (s FileOnDisk) Key() string   { return "file:" + s.Path }

type Directory struct {
	Path     string
	Playlist []string
}

func (Directory) isVideoSource() {}
func (s Directory) Key() string  { return "dir:" + s.Path }

type HTTPURL struct{ URL string }

func (HTTPURL) isVideoSource() {}
func (s HTTPURL) Key() string  { return "http:" + s.URL }

type RTSPURL struct{ URL string }

func (RTSPURL) isVideoSource() {}
func (s RTSPURL) Key() string  { return "rtsp:" + s.URL }

// Pipe sources from a named pipe, or stdin when Path is empty.
type Pipe struct{ Path string }

func (Pipe) isVideoSource() {}
func (s Pipe) Key() string  { return "pipe:" + s.Path }

type ImageSequence struct {
	Path string
	FPS  float64
}

func (ImageSequence) isVideoSource() {}
func (s ImageSequence) Key() string {
	return fmt.Sprintf("imgseq:%s:%x", s.Path, math.Float64bits(s.FPS))
}

type LayeredScene struct{ ProjectPath string }

func (LayeredScene) isVideoSource() {}
func (s LayeredScene) Key() string  { return "scene:" + s.ProjectPath }

type EngineVideoProject struct{ ProjectPath string }

func (EngineVideoProject) isVideoSource() {}
func (s EngineVideoProject) Key() string  { return "wve:" + s.ProjectPath }

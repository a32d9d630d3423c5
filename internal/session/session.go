// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package session implements the Session Manager: one Session
// per output, driven entirely from the Control Plane's single
// cooperative loop — there is exactly one goroutine calling into
// a Manager, so unlike driver/base's AppMulti (which guards its
// per-window map because GUI platforms can callback from arbitrary
// threads) this package carries no locks of its own.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"wayvid.dev/wayvid/internal/gpux"
	"wayvid.dev/wayvid/internal/player"
	"wayvid.dev/wayvid/internal/wire"
	"wayvid.dev/wayvid/internal/workshop"
)

// Session is one output's playback state. GPU/player
// resources are nil until the first successful render; GPU and player
// creation are deferred to that point.
type Session struct {
	Output string

	cfg         wire.EffectiveConfig
	state       wire.PlaybackState
	initialized bool
	width       int
	height      int

	backend gpux.Backend
	target  gpux.Target
	adapter player.Adapter

	lastErr string
}

// sourcePath resolves a VideoSource to the single path the adapter's
// LoadFile takes: the media file itself for disk/pipe sources, the
// project directory for layered scenes, the descriptor-referenced
// video for engine-video projects, and the first playlist entry for
// directories.
func sourcePath(v wire.VideoSource) (string, error) {
	switch s := v.(type) {
	case wire.FileOnDisk:
		return s.Path, nil
	case wire.Pipe:
		return s.Path, nil
	case wire.HTTPURL:
		return s.URL, nil
	case wire.RTSPURL:
		return s.URL, nil
	case wire.LayeredScene:
		return s.ProjectPath, nil
	case wire.EngineVideoProject:
		projectFile, err := workshop.DetectProject(s.ProjectPath)
		if err != nil {
			return "", err
		}
		_, videoPath, err := workshop.Import(projectFile)
		if err != nil {
			return "", err
		}
		return videoPath, nil
	case wire.Directory:
		if len(s.Playlist) > 0 {
			return s.Playlist[0], nil
		}
		return firstVideoIn(s.Path)
	default:
		// ImageSequence is fed to the adapter frame by frame, not as a
		// single openable path; it has no direct-playback resolution.
		return "", fmt.Errorf("session: unsupported source kind %T for direct playback", v)
	}
}

var videoExtensions = map[string]bool{
	".mp4": true, ".webm": true, ".mkv": true, ".avi": true, ".mov": true, ".m4v": true,
}

func firstVideoIn(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("session: reading playlist directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if videoExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("session: no video files in %s", dir)
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0]), nil
}

// newAdapter picks the adapter implementation for a source: the scene
// compositor for layered scenes, the embedded video player for
// everything else.
func newAdapter(source wire.VideoSource, opts player.CreateOptions) player.Adapter {
	if _, ok := source.(wire.LayeredScene); ok {
		return player.NewSceneAdapter(opts)
	}
	return player.NewReisenAdapter(opts)
}

// sameAdapterKind reports whether a hot-swap from a to b can reuse the
// existing adapter via LoadFile, or must recreate it (Surface and GPU
// Target are preserved either way).
func sameAdapterKind(a, b wire.VideoSource) bool {
	_, as := a.(wire.LayeredScene)
	_, bs := b.(wire.LayeredScene)
	return as == bs
}

func toCreateOptions(cfg wire.EffectiveConfig) player.CreateOptions {
	return player.CreateOptions{
		HWDec:        cfg.HWDec,
		Layout:       cfg.Layout,
		Loop:         cfg.Loop,
		StartTime:    cfg.StartTime,
		PlaybackRate: cfg.PlaybackRate,
		Mute:         cfg.Mute,
		Volume:       cfg.Volume,
		FPSLimit:     cfg.FPSLimit,
	}
}

// statsProvider is implemented by player.Adapter backends that expose
// frame-timing statistics; not every Adapter implementation need
// support it.
type statsProvider interface {
	Stats() (rendered, skipped uint64, loadPct float64, skipMode bool, avgMillis float64)
}

func (s *Session) status() wire.SessionStatus {
	st := wire.SessionStatus{
		Output:    s.Output,
		State:     s.state,
		Volume:    s.cfg.Volume,
		LastError: s.lastErr,
	}
	if s.cfg.Source != nil {
		st.Source = s.cfg.Source.Key()
	}
	if sp, ok := s.adapter.(statsProvider); ok {
		rendered, skipped, load, skip, avg := sp.Stats()
		st.FramesRendered = rendered
		st.FramesSkipped = skipped
		st.LoadPercent = load
		st.InSkipMode = skip
		st.AvgFrameMillis = avg
	}
	return st
}

// teardown ordering is load-bearing: stop the player first, then
// destroy the GPU Target, then drop the Session state.
func (s *Session) teardown() {
	if s.adapter != nil {
		s.adapter.Destroy()
		s.adapter = nil
	}
	if s.target != nil {
		s.target.Destroy()
		s.target = nil
	}
	s.initialized = false
	s.state = wire.StateStopped
}

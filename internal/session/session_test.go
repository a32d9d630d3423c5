// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayvid.dev/wayvid/internal/player"
	"wayvid.dev/wayvid/internal/wire"
)

func TestSourcePath_FileOnDisk(t *testing.T) {
	p, err := sourcePath(wire.FileOnDisk{Path: "/videos/rain.mp4"})
	require.NoError(t, err)
	assert.Equal(t, "/videos/rain.mp4", p)
}

func TestSourcePath_Pipe(t *testing.T) {
	p, err := sourcePath(wire.Pipe{Path: "/tmp/wayvid.pipe"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/wayvid.pipe", p)
}

func TestSourcePath_LayeredSceneIsProjectDir(t *testing.T) {
	p, err := sourcePath(wire.LayeredScene{ProjectPath: "/wallpapers/aurora"})
	require.NoError(t, err)
	assert.Equal(t, "/wallpapers/aurora", p)
}

func TestSourcePath_URLsPassThrough(t *testing.T) {
	p, err := sourcePath(wire.HTTPURL{URL: "https://example.com/v.mp4"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/v.mp4", p)

	p, err = sourcePath(wire.RTSPURL{URL: "rtsp://cam.local/stream"})
	require.NoError(t, err)
	assert.Equal(t, "rtsp://cam.local/stream", p)
}

func TestSourcePath_DirectoryUsesPlaylistHead(t *testing.T) {
	p, err := sourcePath(wire.Directory{Path: "/videos", Playlist: []string{"/videos/b.mp4", "/videos/a.mp4"}})
	require.NoError(t, err)
	assert.Equal(t, "/videos/b.mp4", p)
}

func TestSourcePath_DirectoryScansForFirstVideo(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"z.mp4", "a.webm", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	p, err := sourcePath(wire.Directory{Path: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.webm"), p)
}

func TestSourcePath_EmptyDirectoryErrors(t *testing.T) {
	_, err := sourcePath(wire.Directory{Path: t.TempDir()})
	assert.Error(t, err)
}

func TestSourcePath_RejectsImageSequence(t *testing.T) {
	_, err := sourcePath(wire.ImageSequence{Path: "/frames", FPS: 24})
	assert.Error(t, err)
}

func TestNewAdapter_DispatchesByKind(t *testing.T) {
	a := newAdapter(wire.LayeredScene{ProjectPath: "/p"}, player.CreateOptions{})
	assert.IsType(t, &player.SceneAdapter{}, a)

	a = newAdapter(wire.FileOnDisk{Path: "/a.mp4"}, player.CreateOptions{})
	assert.IsType(t, &player.ReisenAdapter{}, a)
}

func TestSameAdapterKind(t *testing.T) {
	assert.True(t, sameAdapterKind(wire.FileOnDisk{Path: "/a.mp4"}, wire.FileOnDisk{Path: "/b.mp4"}))
	assert.True(t, sameAdapterKind(wire.FileOnDisk{Path: "/a.mp4"}, wire.HTTPURL{URL: "http://x/v.mp4"}))
	assert.True(t, sameAdapterKind(wire.LayeredScene{ProjectPath: "/p"}, wire.LayeredScene{ProjectPath: "/q"}))
	assert.False(t, sameAdapterKind(wire.FileOnDisk{Path: "/a.mp4"}, wire.LayeredScene{ProjectPath: "/p"}))
}

func TestSessionStatus_ReportsSourceKeyAndVolume(t *testing.T) {
	s := &Session{
		Output: "DP-1",
		cfg:    wire.EffectiveConfig{Source: wire.FileOnDisk{Path: "/a.mp4"}, Volume: 0.5},
		state:  wire.StatePlaying,
	}
	st := s.status()
	assert.Equal(t, "DP-1", st.Output)
	assert.Equal(t, "file:/a.mp4", st.Source)
	assert.Equal(t, wire.StatePlaying, st.State)
	assert.InDelta(t, 0.5, st.Volume, 0.001)
}

func TestSessionStatus_NoAdapterOmitsFrameStats(t *testing.T) {
	s := &Session{Output: "DP-1", cfg: wire.EffectiveConfig{Source: wire.FileOnDisk{Path: "/a.mp4"}}}
	st := s.status()
	assert.Zero(t, st.FramesRendered)
	assert.False(t, st.InSkipMode)
}

func TestToCreateOptions_CarriesPlaybackFields(t *testing.T) {
	cfg := wire.EffectiveConfig{
		HWDec: wire.HWDecForce, Loop: true, StartTime: 12.5,
		PlaybackRate: 1.5, Mute: false, Volume: 0.8, FPSLimit: 30,
	}
	opts := toCreateOptions(cfg)
	assert.Equal(t, wire.HWDecForce, opts.HWDec)
	assert.True(t, opts.Loop)
	assert.InDelta(t, 12.5, opts.StartTime, 0.001)
	assert.InDelta(t, 1.5, opts.PlaybackRate, 0.001)
	assert.Equal(t, 30, opts.FPSLimit)
}

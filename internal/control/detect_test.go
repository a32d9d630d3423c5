// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package control

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayvid.dev/wayvid/internal/wire"
)

func TestDetectSource_URLs(t *testing.T) {
	assert.Equal(t, wire.HTTPURL{URL: "https://example.com/v.mp4"}, detectSource("https://example.com/v.mp4"))
	assert.Equal(t, wire.HTTPURL{URL: "http://example.com/v.mp4"}, detectSource("http://example.com/v.mp4"))
	assert.Equal(t, wire.RTSPURL{URL: "rtsp://cam.local/stream"}, detectSource("rtsp://cam.local/stream"))
}

func TestDetectSource_Stdin(t *testing.T) {
	assert.Equal(t, wire.Pipe{}, detectSource("-"))
}

func TestDetectSource_RegularFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.mp4")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	assert.Equal(t, wire.FileOnDisk{Path: path}, detectSource(path))
}

func TestDetectSource_MissingPathStillFileOnDisk(t *testing.T) {
	src := detectSource("/nonexistent/b.mp4")
	assert.Equal(t, wire.FileOnDisk{Path: "/nonexistent/b.mp4"}, src)
}

func TestDetectSource_SceneProjectDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "project.json"),
		[]byte(`{"type": "scene", "scene": "scene.json"}`), 0o644))
	assert.Equal(t, wire.LayeredScene{ProjectPath: dir}, detectSource(dir))
}

func TestDetectSource_VideoProjectDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "project.json"),
		[]byte(`{"type": "video", "file": "a.mp4"}`), 0o644))
	assert.Equal(t, wire.EngineVideoProject{ProjectPath: dir}, detectSource(dir))
}

func TestDetectSource_BareDirectoryIsPlaylist(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, wire.Directory{Path: dir}, detectSource(dir))
}

func TestDetectSource_MalformedProjectJSONFallsBackToPlaylist(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "project.json"), []byte("{nope"), 0o644))
	assert.Equal(t, wire.Directory{Path: dir}, detectSource(dir))
}

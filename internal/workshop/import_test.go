// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package workshop

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayvid.dev/wayvid/internal/wire"
)

func writeProject(t *testing.T, dir, descriptorJSON, videoName string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "video.mp4"), []byte("fake"), 0o644))
	if videoName != "" && videoName != "video.mp4" {
		require.NoError(t, os.Rename(filepath.Join(dir, "video.mp4"), filepath.Join(dir, videoName)))
	}
	projectFile := filepath.Join(dir, "project.json")
	require.NoError(t, os.WriteFile(projectFile, []byte(descriptorJSON), 0o644))
	return projectFile
}

func TestDetectProject_FindsDescriptor(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "project.json"), []byte("{}"), 0o644))
	found, err := DetectProject(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "project.json"), found)
}

func TestDetectProject_MissingFileErrors(t *testing.T) {
	_, err := DetectProject(t.TempDir())
	assert.Error(t, err)
}

func TestImport_ResolvesVideoPathAndProperties(t *testing.T) {
	dir := t.TempDir()
	projectFile := writeProject(t, dir, `{
		"type": "video",
		"file": "video.mp4",
		"title": "Clouds",
		"general": {"properties": {"alignment": {"value": 2}, "volume": {"value": 0}}}
	}`, "video.mp4")

	desc, videoPath, err := Import(projectFile)
	require.NoError(t, err)
	assert.Equal(t, "Clouds", desc.Title)
	assert.Equal(t, filepath.Join(dir, "video.mp4"), videoPath)
	assert.Equal(t, int64(2), desc.Properties.Alignment)
	assert.Equal(t, float64(0), desc.Properties.Volume)
}

func TestImport_MissingVideoFileErrors(t *testing.T) {
	dir := t.TempDir()
	projectFile := filepath.Join(dir, "project.json")
	require.NoError(t, os.WriteFile(projectFile, []byte(`{"type":"video","file":"missing.mp4"}`), 0o644))
	_, _, err := Import(projectFile)
	assert.Error(t, err)
}

func TestAlignmentLayout_MapsAllFourValues(t *testing.T) {
	assert.Equal(t, wire.LayoutCentre, alignmentLayout(0))
	assert.Equal(t, wire.LayoutContain, alignmentLayout(1))
	assert.Equal(t, wire.LayoutCover, alignmentLayout(2))
	assert.Equal(t, wire.LayoutFill, alignmentLayout(3))
}

func TestToBaseConfig_MutesWhenVolumeZero(t *testing.T) {
	desc := &Descriptor{Properties: Properties{Rate: 1, Volume: 0, Alignment: 1}}
	bc := ToBaseConfig(desc, "/tmp/a.mp4")
	assert.True(t, bc.Mute)
	assert.Equal(t, float64(0), bc.Volume)
	assert.Equal(t, wire.FileOnDisk{Path: "/tmp/a.mp4"}, bc.Source)
}

func TestToBaseConfig_ScalesVolumeTo0To1(t *testing.T) {
	desc := &Descriptor{Properties: Properties{Rate: 1, Volume: 75, Alignment: 1}}
	bc := ToBaseConfig(desc, "/tmp/a.mp4")
	assert.False(t, bc.Mute)
	assert.InDelta(t, 0.75, bc.Volume, 0.0001)
}

func TestToDoc_RoundTripsSourcePath(t *testing.T) {
	bc := &wire.BaseConfig{Source: wire.FileOnDisk{Path: "/tmp/a.mp4"}, Layout: wire.LayoutCover}
	doc := ToDoc(bc)
	require.NotNil(t, doc.Source)
	assert.Equal(t, "/tmp/a.mp4", doc.Source.Path)
	assert.Equal(t, "cover", doc.Layout)
}

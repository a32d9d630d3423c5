// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadProject_OrdersObjectsByID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "project.json"), `{"type":"scene","scene":"scene.json"}`)
	writeFile(t, filepath.Join(dir, "scene.json"), `{
		"orthogonalProjection": {"width": 1920, "height": 1080},
		"objects": [
			{"id": 2, "name": "back", "image": {"image": "bg.png"}},
			{"id": 1, "name": "front", "image": {"image": "fg.png"}}
		]
	}`)
	writeFile(t, filepath.Join(dir, "bg.png"), "x")
	writeFile(t, filepath.Join(dir, "fg.png"), "x")

	sc, err := LoadProject(dir)
	require.NoError(t, err)
	require.Len(t, sc.Objects, 2)
	assert.Equal(t, 1, sc.Objects[0].ID)
	assert.Equal(t, 2, sc.Objects[1].ID)
	assert.Equal(t, 1920, sc.Projection.Width)
}

func TestSettingWrapperUnification(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "project.json"), `{"type":"scene"}`)
	writeFile(t, filepath.Join(dir, "scene.json"), `{
		"objects": [
			{"id": 0, "visible": {"value": false}, "image": {"image": "a.png", "alpha": {"value": 0.5}}}
		]
	}`)
	writeFile(t, filepath.Join(dir, "a.png"), "x")

	sc, err := LoadProject(dir)
	require.NoError(t, err)
	require.Len(t, sc.Objects, 1)
	assert.False(t, sc.Objects[0].Visible)
	assert.InDelta(t, 0.5, sc.Objects[0].Image.Alpha, 0.0001)
}

func TestComputeRenderRect_Fullscreen(t *testing.T) {
	obj := SceneObject{Scale: Vec3{1, 1, 1}, Image: &ImagePayload{Fullscreen: true, Alignment: AlignCenter}}
	rect := ComputeRenderRect(obj, 1920, 1080, 2560, 1440, 64, 64)
	assert.Equal(t, 2560.0, rect.Width)
	assert.Equal(t, 1440.0, rect.Height)
}

func TestRenderer_VisibleImagesSkipsHidden(t *testing.T) {
	sc := &Scene{Objects: []SceneObject{
		{ID: 0, Kind: KindImage, Visible: true, Image: &ImagePayload{}},
		{ID: 1, Kind: KindImage, Visible: false, Image: &ImagePayload{}},
		{ID: 2, Kind: KindSound, Visible: true},
	}}
	r := NewRenderer(sc)
	vis := r.VisibleImages()
	require.Len(t, vis, 1)
	assert.Equal(t, 0, vis[0].ID)
}

func TestSettingVec3_SpaceSeparatedString(t *testing.T) {
	v := settingVec3([]byte(`"0.5 0.25 1"`), Vec3{})
	assert.InDelta(t, 0.5, v.X, 0.0001)
	assert.InDelta(t, 0.25, v.Y, 0.0001)
	assert.InDelta(t, 1.0, v.Z, 0.0001)
}

func TestParseScene_ClearColorBecomesBackground(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "project.json"), `{"type":"scene"}`)
	writeFile(t, filepath.Join(dir, "scene.json"), `{"general": {"clearColor": "0.1 0.2 0.3"}, "objects": []}`)

	sc, err := LoadProject(dir)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, sc.General.Background.R, 0.0001)
	assert.InDelta(t, 0.2, sc.General.Background.G, 0.0001)
	assert.InDelta(t, 0.3, sc.General.Background.B, 0.0001)
}

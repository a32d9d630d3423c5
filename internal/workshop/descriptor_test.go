// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package workshop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDescriptor_MinimalVideoProject(t *testing.T) {
	data := []byte(`{
		"type": "video",
		"file": "video.mp4",
		"title": "Test Video",
		"description": "A test video wallpaper"
	}`)
	desc, err := ParseDescriptor(data)
	require.NoError(t, err)
	assert.Equal(t, "Test Video", desc.Title)
	assert.Equal(t, "video.mp4", desc.FilePath)
	assert.Equal(t, DefaultProperties(), desc.Properties)
}

func TestParseDescriptor_RejectsNonVideoType(t *testing.T) {
	data := []byte(`{"type": "web", "file": "index.html", "title": "Web Wallpaper"}`)
	_, err := ParseDescriptor(data)
	require.Error(t, err)
	var unsupported *ErrUnsupportedType
	assert.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "web", unsupported.Type)
}

func TestParseDescriptor_RejectsMissingFile(t *testing.T) {
	_, err := ParseDescriptor([]byte(`{"type": "video"}`))
	require.Error(t, err)
}

func TestParseDescriptor_ExtractsWrappedProperties(t *testing.T) {
	data := []byte(`{
		"type": "video",
		"file": "v.mp4",
		"general": {
			"properties": {
				"rate": {"order": 0, "text": "Rate", "type": "slider", "value": 1.5, "min": 0.1, "max": 5},
				"volume": {"order": 1, "text": "Volume", "type": "slider", "value": 0},
				"playbackmode": {"order": 2, "text": "Mode", "type": "combo", "value": 1},
				"alignment": {"order": 3, "text": "Align", "type": "combo", "value": 2},
				"audioprocessing": {"order": 4, "text": "Audio", "type": "checkbox", "value": true}
			}
		}
	}`)
	desc, err := ParseDescriptor(data)
	require.NoError(t, err)
	assert.Equal(t, 1.5, desc.Properties.Rate)
	assert.Equal(t, float64(0), desc.Properties.Volume)
	assert.Equal(t, int64(1), desc.Properties.PlaybackMode)
	assert.Equal(t, int64(2), desc.Properties.Alignment)
	assert.True(t, desc.Properties.AudioProcessing)
}

func TestParseDescriptor_MissingPropertiesUseDefaults(t *testing.T) {
	desc, err := ParseDescriptor([]byte(`{"type": "video", "file": "v.mp4"}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultProperties(), desc.Properties)
}

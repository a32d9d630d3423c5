// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayvid.dev/wayvid/internal/wire"
)

func TestParseRequest_RequiresType(t *testing.T) {
	_, err := parseRequest([]byte(`{"path":"/tmp/a.mp4"}`))
	assert.Error(t, err)
}

func TestParseRequest_DecodesApply(t *testing.T) {
	req, err := parseRequest([]byte(`{"type":"Apply","path":"/tmp/a.mp4","output":"HDMI-A-1"}`))
	require.NoError(t, err)
	assert.Equal(t, ReqApply, req.Type)
	assert.Equal(t, "/tmp/a.mp4", req.Path)
	assert.Equal(t, "HDMI-A-1", req.Output)
}

func TestStatusResponse_ProjectsSnapshot(t *testing.T) {
	snap := wire.StatusSnapshot{
		Running: true, Version: "0.1.0",
		Outputs: []wire.OutputInfo{{Name: "DP-1", Width: 2560, Height: 1440, Scale: 1, Active: true}},
	}
	resp := statusResponse(snap)
	assert.Equal(t, RespStatus, resp.Type)
	assert.True(t, resp.Running)
	assert.Equal(t, "0.1.0", resp.Version)
	require.Len(t, resp.Outputs, 1)
	assert.Equal(t, "DP-1", resp.Outputs[0].Name)
}

func TestLibraryResponse_SetsTotal(t *testing.T) {
	resp := libraryResponse([]LibraryItem{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}})
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, RespLibrary, resp.Type)
}

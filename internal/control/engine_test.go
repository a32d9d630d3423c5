// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package control

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wayvid.dev/wayvid/internal/waybackend"
)

func TestToWireOutputInfo_CopiesGeometryAndMarksActive(t *testing.T) {
	in := waybackend.OutputInfo{Name: "DP-1", X: 1920, Y: 0, Width: 2560, Height: 1440, Scale: 1.5}
	out := toWireOutputInfo(in)
	assert.Equal(t, "DP-1", out.Name)
	assert.Equal(t, 1920, out.X)
	assert.Equal(t, 2560, out.Width)
	assert.InDelta(t, 1.5, out.Scale, 0.001)
	assert.True(t, out.Active)
}

// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package player

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wayvid.dev/wayvid/internal/wire"
)

func TestLayoutRect_StretchAndFillCoverTarget(t *testing.T) {
	for _, mode := range []wire.LayoutMode{wire.LayoutStretch, wire.LayoutFill, ""} {
		x, y, w, h := layoutRect(mode, 1920, 1080, 1280, 720)
		assert.True(t, coversTarget(x, y, w, h, 1920, 1080), "mode %q", mode)
	}
}

func TestLayoutRect_ContainLetterboxes(t *testing.T) {
	// 4:3 source on a 16:9 output: full height, pillarboxed.
	x, y, w, h := layoutRect(wire.LayoutContain, 1920, 1080, 640, 480)
	assert.InDelta(t, 1440, w, 0.001)
	assert.InDelta(t, 1080, h, 0.001)
	assert.InDelta(t, 240, x, 0.001)
	assert.InDelta(t, 0, y, 0.001)
}

func TestLayoutRect_CoverCrops(t *testing.T) {
	// 4:3 source on a 16:9 output: full width, cropped top/bottom.
	x, y, w, h := layoutRect(wire.LayoutCover, 1920, 1080, 640, 480)
	assert.InDelta(t, 1920, w, 0.001)
	assert.InDelta(t, 1440, h, 0.001)
	assert.InDelta(t, 0, x, 0.001)
	assert.InDelta(t, -180, y, 0.001)
}

func TestLayoutRect_CentreKeepsNativeSize(t *testing.T) {
	x, y, w, h := layoutRect(wire.LayoutCentre, 1920, 1080, 1280, 720)
	assert.InDelta(t, 1280, w, 0.001)
	assert.InDelta(t, 720, h, 0.001)
	assert.InDelta(t, 320, x, 0.001)
	assert.InDelta(t, 180, y, 0.001)
}

func TestLayoutRect_DegenerateFrameFallsBackToFull(t *testing.T) {
	x, y, w, h := layoutRect(wire.LayoutContain, 1920, 1080, 0, 0)
	assert.True(t, coversTarget(x, y, w, h, 1920, 1080))
}

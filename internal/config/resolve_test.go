// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"wayvid.dev/wayvid/internal/wire"
)

func layout(l wire.LayoutMode) *wire.LayoutMode { return &l }

// TestForOutput_PerOutputOverrideSelection is end-to-end scenario 3.
func TestForOutput_PerOutputOverrideSelection(t *testing.T) {
	base := &wire.BaseConfig{
		Source: wire.FileOnDisk{Path: "/def.mp4"},
		Layout: wire.LayoutFill,
		PerOutput: map[string]*wire.Override{
			"HDMI-*": {Layout: layout(wire.LayoutContain)},
			"eDP-1":  {Layout: layout(wire.LayoutCover)},
		},
	}
	r := NewResolver(base)

	ec, err := r.ForOutput("HDMI-A-1")
	require.NoError(t, err)
	assert.Equal(t, wire.LayoutContain, ec.Layout)

	ec, err = r.ForOutput("eDP-1")
	require.NoError(t, err)
	assert.Equal(t, wire.LayoutCover, ec.Layout)

	ec, err = r.ForOutput("DP-1")
	require.NoError(t, err)
	assert.Equal(t, wire.LayoutFill, ec.Layout)
}

// Exact match always wins over any wildcard entry regardless of
// declared priority.
func TestForOutput_ExactBeatsWildcard(t *testing.T) {
	base := &wire.BaseConfig{
		Layout: wire.LayoutFill,
		PerOutput: map[string]*wire.Override{
			"HDMI-*":   {Priority: 100, Layout: layout(wire.LayoutContain)},
			"HDMI-A-1": {Priority: 0, Layout: layout(wire.LayoutCover)},
		},
	}
	r := NewResolver(base)
	ec, err := r.ForOutput("HDMI-A-1")
	require.NoError(t, err)
	assert.Equal(t, wire.LayoutCover, ec.Layout)
}

// Resolution must be a pure function of (config, output name).
func TestForOutput_Deterministic(t *testing.T) {
	base := &wire.BaseConfig{
		Layout: wire.LayoutFill,
		PerOutput: map[string]*wire.Override{
			"HDMI-*": {Layout: layout(wire.LayoutContain)},
		},
	}
	r := NewResolver(base)
	a, err := r.ForOutput("HDMI-A-1")
	require.NoError(t, err)
	b, err := r.ForOutput("HDMI-A-1")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestClamp(t *testing.T) {
	ec := wire.EffectiveConfig{PlaybackRate: 500, Volume: 2, StartTime: -5}
	ec.Clamp()
	assert.InDelta(t, 10.0, ec.PlaybackRate, 0.0001)
	assert.Equal(t, 1.0, ec.Volume)
	assert.Equal(t, 0.0, ec.StartTime)
}

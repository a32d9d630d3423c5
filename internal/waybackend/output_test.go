// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package waybackend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputRegistry_PromotesOnDone(t *testing.T) {
	r := newOutputRegistry()
	r.beginOutput(7)
	r.onGeometry(7, 0, 0)
	r.onMode(7, 2560, 1440)
	r.onScale(7, 2)
	r.onName(7, "DP-1")

	info, ok := r.onDone(7)
	require.True(t, ok)
	assert.Equal(t, "DP-1", info.Name)
	assert.Equal(t, 2560, info.Width)
	assert.Equal(t, 1440, info.Height)
	assert.InDelta(t, 2.0, info.Scale, 0.001)

	snap := r.snapshot()
	require.Len(t, snap, 1)
}

func TestOutputRegistry_DuplicateDoneIgnored(t *testing.T) {
	r := newOutputRegistry()
	r.beginOutput(1)
	r.onName(1, "eDP-1")
	_, ok := r.onDone(1)
	require.True(t, ok)

	_, ok = r.onDone(1)
	assert.False(t, ok, "duplicate Done after ready must be ignored")
}

func TestOutputRegistry_GlobalRemoveDropsReadyOutput(t *testing.T) {
	r := newOutputRegistry()
	r.beginOutput(3)
	r.onName(3, "HDMI-A-1")
	r.onDone(3)

	name, wasReady := r.onGlobalRemove(3)
	assert.Equal(t, "HDMI-A-1", name)
	assert.True(t, wasReady)
	assert.Empty(t, r.snapshot())
}

func TestOutputRegistry_GlobalRemoveBeforeDoneIsNotReady(t *testing.T) {
	r := newOutputRegistry()
	r.beginOutput(9)
	_, wasReady := r.onGlobalRemove(9)
	assert.False(t, wasReady)
}

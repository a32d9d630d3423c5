// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameTiming_NoSkipUntilEnoughHistory(t *testing.T) {
	ft := NewFrameTiming(60)
	for i := 0; i < 5; i++ {
		ft.BeginFrame()
		time.Sleep(time.Millisecond)
		ft.EndFrame()
		assert.False(t, ft.ShouldSkipFrame())
	}
}

func TestFrameTiming_EntersSkipModeUnderSustainedOverload(t *testing.T) {
	ft := NewFrameTiming(1000) // 1ms budget, easy to overload
	for i := 0; i < 15; i++ {
		ft.BeginFrame()
		time.Sleep(5 * time.Millisecond) // 5x budget
		ft.EndFrame()
	}
	var skipping bool
	for i := 0; i < 5; i++ {
		skipping = ft.ShouldSkipFrame()
		if skipping {
			break
		}
	}
	require.True(t, skipping)
	rendered, skipped, loadPct, inSkip, _ := ft.Stats()
	assert.Equal(t, uint64(15), rendered)
	assert.Equal(t, uint64(0), skipped)
	assert.True(t, inSkip)
	assert.Greater(t, loadPct, 100.0)
}

// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package power

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wayvid.dev/wayvid/internal/wire"
)

func TestPolicy_PausesOnBatteryTransition(t *testing.T) {
	p := NewPolicy(wire.PowerPolicy{PauseOnBattery: true})
	assert.Equal(t, TransitionNone, p.Evaluate(false))
	assert.Equal(t, TransitionPauseAll, p.Evaluate(true))
	assert.True(t, p.Paused())
	assert.Equal(t, TransitionNone, p.Evaluate(true), "already paused, no repeat transition")
}

func TestPolicy_ResumesWhenBackOnAC(t *testing.T) {
	p := NewPolicy(wire.PowerPolicy{PauseOnBattery: true})
	p.Evaluate(true)
	assert.Equal(t, TransitionResumeAll, p.Evaluate(false))
	assert.False(t, p.Paused())
}

func TestPolicy_DisabledNeverTransitions(t *testing.T) {
	p := NewPolicy(wire.PowerPolicy{PauseOnBattery: false})
	assert.Equal(t, TransitionNone, p.Evaluate(true))
	assert.False(t, p.Paused())
}

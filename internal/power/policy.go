// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package power

import "wayvid.dev/wayvid/internal/wire"

// Policy tracks the power-paused transition: if pause_on_battery and
// on-battery, and not already power-paused, pause every session and
// set power_paused=true. The reverse transition resumes.
type Policy struct {
	cfg    wire.PowerPolicy
	paused bool
}

func NewPolicy(cfg wire.PowerPolicy) *Policy {
	return &Policy{cfg: cfg}
}

// Transition is PauseAll, ResumeAll, or None — what the caller must do
// in response to this evaluation.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionPauseAll
	TransitionResumeAll
)

// Evaluate applies the on-battery reading against current state and
// returns the transition the Control Plane must carry out.
func (p *Policy) Evaluate(onBattery bool) Transition {
	if !p.cfg.PauseOnBattery {
		return TransitionNone
	}
	switch {
	case onBattery && !p.paused:
		p.paused = true
		return TransitionPauseAll
	case !onBattery && p.paused:
		p.paused = false
		return TransitionResumeAll
	default:
		return TransitionNone
	}
}

// Paused reports the current power_paused flag for StatusSnapshot
// reporting.
func (p *Policy) Paused() bool { return p.paused }

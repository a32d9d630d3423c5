// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Adaptive frame-skip tracking: overload-hysteresis logic for a
// background renderer that must never starve the compositor.

package player

import (
	"sync"
	"time"

	"wayvid.dev/wayvid/internal/wire"
)

const (
	frameHistorySize  = 60
	overloadThreshold = 0.80
	recoveryThreshold = 0.60
	hysteresisFrames  = 3
)

// FrameTiming tracks recent frame durations and decides when to skip
// a render to avoid falling behind.
type FrameTiming struct {
	mu sync.Mutex

	durations    []time.Duration
	head         int
	filled       int
	frameStart   time.Time
	targetFrame  time.Duration

	framesSkipped  uint64
	framesRendered uint64
	inSkipMode     bool
	consecutive    int
	lastLoadPct    float64
}

// NewFrameTiming creates a tracker targeting fps (0 defaults to 60,
// mirroring FrameTiming::new).
func NewFrameTiming(fps int) *FrameTiming {
	if fps <= 0 {
		fps = 60
	}
	return &FrameTiming{
		durations:   make([]time.Duration, frameHistorySize),
		targetFrame: time.Second / time.Duration(fps),
	}
}

// BeginFrame records the start of a new frame.
func (f *FrameTiming) BeginFrame() {
	f.mu.Lock()
	f.frameStart = time.Now()
	f.mu.Unlock()
}

// EndFrame records a completed, rendered frame.
func (f *FrameTiming) EndFrame() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushDuration(time.Since(f.frameStart))
	f.framesRendered++
}

// RecordSkip records a frame that was deliberately not rendered.
func (f *FrameTiming) RecordSkip() {
	f.mu.Lock()
	f.framesSkipped++
	f.mu.Unlock()
}

func (f *FrameTiming) pushDuration(d time.Duration) {
	f.durations[f.head] = d
	f.head = (f.head + 1) % frameHistorySize
	if f.filled < frameHistorySize {
		f.filled++
	}
}

// loadPercentage is avg(recent frame durations) / target frame
// duration; >1.0 means frames take longer than the budget.
// ShouldSkipFrame counts a frame as overloaded above overloadThreshold.
func (f *FrameTiming) loadPercentage() float64 {
	if f.filled == 0 {
		return 0
	}
	var total time.Duration
	for i := 0; i < f.filled; i++ {
		total += f.durations[i]
	}
	avg := total / time.Duration(f.filled)
	return float64(avg) / float64(f.targetFrame)
}

// ShouldSkipFrame applies hysteresis (enter skip mode after
// hysteresisFrames consecutive overloaded frames, exit after
// hysteresisFrames consecutive recovered frames) to decide whether the
// next render should be skipped.
func (f *FrameTiming) ShouldSkipFrame() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.filled < 10 {
		return false
	}

	loadPct := f.loadPercentage()
	f.lastLoadPct = loadPct
	overloaded := loadPct > overloadThreshold
	recovered := loadPct < recoveryThreshold

	if f.inSkipMode {
		if recovered {
			f.consecutive++
		} else {
			f.consecutive = 0
		}
		if f.consecutive >= hysteresisFrames {
			f.inSkipMode = false
			f.consecutive = 0
		}
	} else {
		if overloaded {
			f.consecutive++
		} else {
			f.consecutive = 0
		}
		if f.consecutive >= hysteresisFrames {
			f.inSkipMode = true
			f.consecutive = 0
		}
	}
	return f.inSkipMode
}

// Stats reports the frame-timing counters into a StatusSnapshot's
// per-output slice.
func (f *FrameTiming) Stats() (rendered, skipped uint64, loadPct float64, skipMode bool, avgMillis float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rendered, skipped = f.framesRendered, f.framesSkipped
	loadPct = f.lastLoadPct * 100
	skipMode = f.inSkipMode
	if f.filled > 0 {
		var total time.Duration
		for i := 0; i < f.filled; i++ {
			total += f.durations[i]
		}
		avgMillis = float64(total/time.Duration(f.filled)) / float64(time.Millisecond)
	}
	return
}

// ApplyTo merges the tracker's counters into a SessionStatus.
func (f *FrameTiming) ApplyTo(s *wire.SessionStatus) {
	rendered, skipped, loadPct, skipMode, avgMillis := f.Stats()
	s.FramesRendered = rendered
	s.FramesSkipped = skipped
	s.LoadPercent = loadPct
	s.InSkipMode = skipMode
	s.AvgFrameMillis = avgMillis
}

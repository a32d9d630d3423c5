// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package player

import (
	"image"

	"wayvid.dev/wayvid/internal/gpux"
	"wayvid.dev/wayvid/internal/wire"
)

// Adapter is the thin, capability-shaped contract over an embedded
// media player. One Adapter per Session; the handle may outlive
// the goroutine that created it but is only ever driven from one
// goroutine at a time — except for the
// update callback, which the decode goroutine invokes independently and
// which must only touch atomic state.
type Adapter interface {
	// InitRenderContext binds the player's output to the GPU API
	// backing target, registering the update callback that flips the
	// frame-available flag.
	InitRenderContext(target gpux.Target, getProc gpux.ProcAddressFunc) error
	// LoadFile replaces the current source.
	LoadFile(path string) error
	// HasFrame reports a new frame is ready and clears the flag on
	// consumption.
	HasFrame() bool
	// Render draws the current frame into the target's default
	// framebuffer, Y-flipped to match compositor convention; false
	// means no new frame was drawn and the caller must not swap
	// buffers.
	Render(width, height int) (bool, error)
	Pause() error
	Resume() error
	SetVolume(v float64) error
	// HDRMetadata returns the decoded source's dynamic-range info, if
	// known yet.
	HDRMetadata() (HDRMetadata, bool)
	// ConfigureToneMapping sets up HDR->SDR mapping for this source;
	// a no-op if the source is SDR.
	ConfigureToneMapping(params wire.ToneMapParams)
	// Destroy frees the render context strictly before the player
	// handle.
	Destroy()
}

// CreateOptions is the player-facing slice of an EffectiveConfig.
type CreateOptions struct {
	HWDec        wire.HWDecMode
	Layout       wire.LayoutMode
	Loop         bool
	StartTime    float64
	PlaybackRate float64
	Mute         bool
	Volume       float64 // 0..1; player-facing volume is v*100
	FPSLimit     int
}

// decodedFrame is one RGBA frame handed from the decode goroutine to
// the render path via the frame-available flag.
type decodedFrame struct {
	img *image.RGBA
	pts float64
}

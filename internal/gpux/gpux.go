// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gpux provides the GPU Context component: a renderable
// target bound to a compositor surface, behind one interface shared by
// an OpenGL/EGL backend and a Vulkan backend.
package gpux

import "errors"

// APIType names which backend produced a Target, so a caller (the media
// adapter) can select the matching proc-address convention.
type APIType int

const (
	APIOpenGL APIType = iota
	APIVulkan
)

func (a APIType) String() string {
	if a == APIVulkan {
		return "vulkan"
	}
	return "opengl"
}

// SurfaceHandle is the opaque compositor surface a Target binds to: a
// Wayland wl_surface plus its wl_display, as raw pointers owned by
// internal/waybackend. gpux never dereferences these itself beyond
// passing them to EGL/Vulkan surface-creation calls.
type SurfaceHandle struct {
	Display uintptr
	Surface uintptr
}

// ProcAddressFunc resolves a GL function pointer by name, the hook the
// media adapter's embedded player needs to load its own GL entry points
//.
type ProcAddressFunc func(name string) uintptr

var (
	// ErrNoDevice is returned when a backend cannot find a usable
	// GPU/display on Init.
	ErrNoDevice = errors.New("gpux: no usable device found")
	// ErrTargetDestroyed is returned by any Target method called after
	// Destroy.
	ErrTargetDestroyed = errors.New("gpux: target already destroyed")
)

// Target is one renderable surface: a window plus whatever per-surface
// GPU state (EGLSurface+EGLContext, or swapchain+framebuffers) the
// backend needs to draw into and present it.
type Target interface {
	// API reports which backend owns this Target.
	API() APIType
	// MakeCurrent binds this Target's context for the calling
	// goroutine. For the Vulkan backend this is a no-op: "current" is
	// abstracted by command-buffer recording.
	MakeCurrent() error
	// FramebufferID is the backend-specific default framebuffer to draw
	// into this frame. 0 for GL's default framebuffer; for Vulkan it
	// acquires (if not already acquired this frame) and returns the
	// current swapchain image's index.
	FramebufferID() uint32
	// UploadFrame draws a tightly-packed RGBA frame into FramebufferID
	// full-viewport. pix is w*h*4 bytes.
	UploadFrame(pix []byte, w, h int) error
	// BeginFrame clears FramebufferID to a flat color, starting a
	// composited frame built from one or more DrawSprite calls, as
	// distinct from UploadFrame's single full-viewport video quad.
	BeginFrame(r, g, b, a float32) error
	// DrawSprite composites one decoded RGBA texture (texW*texH*4
	// bytes) using transform, a row-major 3x3 affine mapping the
	// texture's unit quad ([-1,1]x[-1,1]) into this Target's clip space
	// (see ClipFromPixel), and a glBlendFunc-style factor pair such as
	// GLBlendFunc returns.
	DrawSprite(pix []byte, texW, texH int, transform [9]float64, alpha float64, blendSrc, blendDst string) error
	// SwapBuffers presents the frame most recently drawn into
	// FramebufferID, whether by UploadFrame or by BeginFrame+DrawSprite.
	SwapBuffers() error
	// Resize updates size-dependent state: the Vulkan backend recreates
	// its swapchain after a device-idle wait; the OpenGL backend resizes
	// its wl_egl_window in place.
	Resize(w, h int) error
	// Destroy releases all per-surface GPU resources. Idempotent.
	Destroy()
}

// ClipFromPixel returns the fixed affine mapping a Target of size
// outputW x outputH uses to turn top-left-origin, Y-down pixel
// coordinates into [-1,1] clip space. A caller building a DrawSprite
// transform composes this with the object's own BuildTransform via
// Mul; a software compositor recovers the same mapping to rasterize a
// DrawSprite call without a GPU.
func ClipFromPixel(outputW, outputH float64) [9]float64 {
	return [9]float64{
		2 / outputW, 0, -1,
		0, -2 / outputH, 1,
		0, 0, 1,
	}
}

// Backend creates Targets bound to compositor surfaces and owns
// process-wide GPU state (instance/device, EGL display).
type Backend interface {
	API() APIType
	// CreateWindow binds a new Target to surface at the given pixel
	// size.
	CreateWindow(surface SurfaceHandle, w, h int) (Target, error)
	// GetProcAddress is nil for the Vulkan backend.
	GetProcAddress() ProcAddressFunc
	// Destroy releases process-wide GPU state. Call only after every
	// Target it produced has been destroyed.
	Destroy()
}

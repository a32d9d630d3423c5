// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// OpenGL/EGL backend: small cgo wrappers over libEGL/libGLESv2 and
// wayland-egl, raw C handles held in small Go structs, no code
// generation.

package gpux

/*
#cgo pkg-config: egl glesv2 wayland-egl
#include <EGL/egl.h>
#include <wayland-egl.h>
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// OpenGLBackend owns the process-wide EGLDisplay and EGLContext config
// created from the compositor's opaque display pointer.
type OpenGLBackend struct {
	display C.EGLDisplay
	config  C.EGLConfig
	context C.EGLContext
}

// NewOpenGLBackend initializes EGL against the Wayland wl_display
// pointer owned by internal/waybackend.
func NewOpenGLBackend(wlDisplay uintptr) (*OpenGLBackend, error) {
	disp := C.eglGetDisplay(C.EGLNativeDisplayType(unsafe.Pointer(wlDisplay)))
	if disp == C.EGL_NO_DISPLAY {
		return nil, fmt.Errorf("gpux: eglGetDisplay failed")
	}
	var major, minor C.EGLint
	if C.eglInitialize(disp, &major, &minor) == C.EGL_FALSE {
		return nil, fmt.Errorf("gpux: eglInitialize failed")
	}
	if C.eglBindAPI(C.EGL_OPENGL_ES_API) == C.EGL_FALSE {
		return nil, fmt.Errorf("gpux: eglBindAPI failed")
	}

	// 8-bit RGBA + 24-bit depth + 8-bit stencil + window-surface +
	// OpenGL-renderable.
	attribs := []C.EGLint{
		C.EGL_SURFACE_TYPE, C.EGL_WINDOW_BIT,
		C.EGL_RENDERABLE_TYPE, C.EGL_OPENGL_ES3_BIT,
		C.EGL_RED_SIZE, 8,
		C.EGL_GREEN_SIZE, 8,
		C.EGL_BLUE_SIZE, 8,
		C.EGL_ALPHA_SIZE, 8,
		C.EGL_DEPTH_SIZE, 24,
		C.EGL_STENCIL_SIZE, 8,
		C.EGL_NONE,
	}
	var config C.EGLConfig
	var numConfigs C.EGLint
	if C.eglChooseConfig(disp, &attribs[0], &config, 1, &numConfigs) == C.EGL_FALSE || numConfigs == 0 {
		return nil, fmt.Errorf("gpux: eglChooseConfig found no matching config")
	}

	ctxAttribs := []C.EGLint{
		C.EGL_CONTEXT_CLIENT_VERSION, 3,
		C.EGL_NONE,
	}
	ctx := C.eglCreateContext(disp, config, nil, &ctxAttribs[0])
	if ctx == C.EGL_NO_CONTEXT {
		return nil, fmt.Errorf("gpux: eglCreateContext failed")
	}

	return &OpenGLBackend{display: disp, config: config, context: ctx}, nil
}

func (b *OpenGLBackend) API() APIType { return APIOpenGL }

func (b *OpenGLBackend) GetProcAddress() ProcAddressFunc {
	return func(name string) uintptr {
		cname := C.CString(name)
		defer C.free(unsafe.Pointer(cname))
		return uintptr(unsafe.Pointer(C.eglGetProcAddress(cname)))
	}
}

func (b *OpenGLBackend) Destroy() {
	if b.context != nil {
		C.eglDestroyContext(b.display, b.context)
	}
	if b.display != nil {
		C.eglTerminate(b.display)
	}
}

// CreateWindow wraps the Wayland wl_surface in a wl_egl_window and
// creates the matching EGLSurface.
func (b *OpenGLBackend) CreateWindow(surface SurfaceHandle, w, h int) (Target, error) {
	eglWin := C.wl_egl_window_create(
		(*C.struct_wl_surface)(unsafe.Pointer(surface.Surface)),
		C.int(w), C.int(h))
	if eglWin == nil {
		return nil, fmt.Errorf("gpux: wl_egl_window_create failed")
	}
	eglSurf := C.eglCreateWindowSurface(b.display, b.config,
		C.EGLNativeWindowType(unsafe.Pointer(eglWin)), nil)
	if eglSurf == C.EGL_NO_SURFACE {
		C.wl_egl_window_destroy(eglWin)
		return nil, fmt.Errorf("gpux: eglCreateWindowSurface failed")
	}
	return &openGLTarget{backend: b, eglWin: eglWin, eglSurf: eglSurf, w: w, h: h}, nil
}

// openGLTarget is one EGLSurface+wl_egl_window pair.
type openGLTarget struct {
	backend   *OpenGLBackend
	eglWin    *C.struct_wl_egl_window
	eglSurf   C.EGLSurface
	w, h      int
	destroyed bool
	quad      glQuad
	sprite    glSprite
}

func (t *openGLTarget) API() APIType { return APIOpenGL }

func (t *openGLTarget) MakeCurrent() error {
	if t.destroyed {
		return ErrTargetDestroyed
	}
	if C.eglMakeCurrent(t.backend.display, t.eglSurf, t.eglSurf, t.backend.context) == C.EGL_FALSE {
		return fmt.Errorf("gpux: eglMakeCurrent failed")
	}
	return nil
}

// FramebufferID is always 0: GL's default (window-system-provided)
// framebuffer.
func (t *openGLTarget) FramebufferID() uint32 { return 0 }

func (t *openGLTarget) SwapBuffers() error {
	if t.destroyed {
		return ErrTargetDestroyed
	}
	if C.eglSwapBuffers(t.backend.display, t.eglSurf) == C.EGL_FALSE {
		return fmt.Errorf("gpux: eglSwapBuffers failed")
	}
	return nil
}

// Resize updates the wl_egl_window's logical size.
// EGL/wl_egl_window do not require a device-idle wait the way Vulkan's
// swapchain recreation does; resizing is just a resize call.
func (t *openGLTarget) Resize(w, h int) error {
	if t.destroyed {
		return ErrTargetDestroyed
	}
	C.wl_egl_window_resize(t.eglWin, C.int(w), C.int(h), 0, 0)
	t.w, t.h = w, h
	return nil
}

func (t *openGLTarget) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyQuad()
	t.destroySprite()
	C.eglDestroySurface(t.backend.display, t.eglSurf)
	C.wl_egl_window_destroy(t.eglWin)
	t.destroyed = true
}

// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Background surface lifecycle: layer-surface creation with the
// "anchor all four edges, exclusive-zone -1" background contract,
// Configure/Closed handler wiring, and frame-callback pacing.

package waybackend

import (
	"fmt"

	"github.com/rajveermalviya/go-wayland/wayland/client"
	zwlrlayershell "github.com/rajveermalviya/go-wayland/wayland/wlr-layer-shell-unstable-v1"

	"wayvid.dev/wayvid/internal/gpux"
)

const layerNamespace = "wayvid"

// backgroundSurface is one output's live layer-shell surface.
type backgroundSurface struct {
	output       string
	surface      *client.Surface
	layerSurface *zwlrlayershell.LayerSurfaceV1
	frameCB      *client.Callback

	configured   bool
	framePending bool
	width        int
	height       int
}

// CreateBackgroundSurface anchors all four edges, exclusive-zone -1, no keyboard interactivity,
// size (0,0) ("compositor chooses"), commits, and waits for the first
// Configure asynchronously — bring-up may span several main-loop ticks,
// so this returns immediately with `configured=false`.
func (b *Backend) CreateBackgroundSurface(outputName string) error {
	if b.compositor == nil || b.layerShell == nil {
		return fmt.Errorf("waybackend: globals not bound")
	}
	if _, exists := b.surfaces[outputName]; exists {
		return nil
	}
	var outputProxy *client.Output
	for cookie, info := range b.outputs.ready {
		if info.Name == outputName {
			outputProxy = b.outputObj[cookie]
			break
		}
	}
	if outputProxy == nil {
		return fmt.Errorf("waybackend: unknown output %q", outputName)
	}

	surface, err := b.compositor.CreateSurface()
	if err != nil {
		return fmt.Errorf("waybackend: create_surface: %w", err)
	}
	layerSurface, err := b.layerShell.GetLayerSurface(surface, outputProxy,
		zwlrlayershell.LayerShellV1LayerBackground, layerNamespace)
	if err != nil {
		return fmt.Errorf("waybackend: get_layer_surface: %w", err)
	}

	bs := &backgroundSurface{output: outputName, surface: surface, layerSurface: layerSurface}
	b.surfaces[outputName] = bs

	anchor := zwlrlayershell.LayerSurfaceV1AnchorTop |
		zwlrlayershell.LayerSurfaceV1AnchorBottom |
		zwlrlayershell.LayerSurfaceV1AnchorLeft |
		zwlrlayershell.LayerSurfaceV1AnchorRight
	layerSurface.SetAnchor(uint32(anchor))
	layerSurface.SetExclusiveZone(-1)
	layerSurface.SetKeyboardInteractivity(zwlrlayershell.LayerSurfaceV1KeyboardInteractivityNone)
	layerSurface.SetSize(0, 0) // compositor chooses full-output size

	layerSurface.SetConfigureHandler(func(e zwlrlayershell.LayerSurfaceV1ConfigureEvent) {
		b.onSurfaceConfigure(bs, e)
	})
	layerSurface.SetClosedHandler(func(zwlrlayershell.LayerSurfaceV1ClosedEvent) {
		b.emit(SurfaceClosed{Output: outputName})
	})

	return surface.Commit()
}

// onSurfaceConfigure records the dimensions, sets configured=true and frame_pending=true, ack with the exact serial,
// then commit.
func (b *Backend) onSurfaceConfigure(bs *backgroundSurface, e zwlrlayershell.LayerSurfaceV1ConfigureEvent) {
	bs.width = int(e.Width)
	bs.height = int(e.Height)
	bs.configured = true
	bs.framePending = true
	bs.layerSurface.AckConfigure(e.Serial)
	bs.surface.Commit()
	b.requestFrameCallback(bs)
	b.emit(SurfaceConfigure{Output: bs.output, Serial: e.Serial, Width: bs.width, Height: bs.height})
}

// requestFrameCallback arms the one outstanding frame-callback per
// surface: exactly one pending frame-callback is outstanding at a
// time.
func (b *Backend) requestFrameCallback(bs *backgroundSurface) {
	if bs.frameCB != nil {
		return
	}
	cb, err := bs.surface.Frame()
	if err != nil {
		return
	}
	bs.frameCB = cb
	cb.SetDoneHandler(func(client.CallbackDoneEvent) {
		bs.frameCB = nil
		bs.framePending = true
		b.emit(FrameDone{Output: bs.output})
	})
}

// nativePointerer is satisfied by Wayland bindings that expose the
// underlying libwayland object. EGL and Vulkan surface creation both
// need the real wl_display/wl_surface pointers; a binding that cannot
// provide them makes SurfaceHandle report false, which keeps the
// session Stopped with a GPU error rather than failing the engine.
type nativePointerer interface {
	NativePointer() uintptr
}

func nativePointer(v any) (uintptr, bool) {
	np, ok := v.(nativePointerer)
	if !ok {
		return 0, false
	}
	return np.NativePointer(), true
}

// SurfaceHandle returns the raw pointers gpux needs to create an EGL/
// Vulkan Target for this output's surface.
func (b *Backend) SurfaceHandle(outputName string) (gpux.SurfaceHandle, bool) {
	bs, ok := b.surfaces[outputName]
	if !ok {
		return gpux.SurfaceHandle{}, false
	}
	display, okD := nativePointer(b.conn.Context())
	surface, okS := nativePointer(bs.surface)
	if !okD || !okS {
		return gpux.SurfaceHandle{}, false
	}
	return gpux.SurfaceHandle{Display: display, Surface: surface}, true
}

// Configured reports whether the given output's surface has received
// its first Configure.
func (b *Backend) Configured(outputName string) (w, h int, ok bool) {
	bs, exists := b.surfaces[outputName]
	if !exists || !bs.configured {
		return 0, 0, false
	}
	return bs.width, bs.height, true
}

// ConsumeFramePending clears and reports frame_pending for an output,
// re-arming the next frame callback.
func (b *Backend) ConsumeFramePending(outputName string) bool {
	bs, ok := b.surfaces[outputName]
	if !ok || !bs.framePending {
		return false
	}
	bs.framePending = false
	b.requestFrameCallback(bs)
	return true
}

// DestroySurface tears down an output's layer surface. Idempotent
//.
func (b *Backend) DestroySurface(outputName string) {
	bs, ok := b.surfaces[outputName]
	if !ok {
		return
	}
	bs.destroy()
	delete(b.surfaces, outputName)
}

func (s *backgroundSurface) destroy() {
	if s.frameCB != nil {
		s.frameCB.Destroy()
	}
	if s.layerSurface != nil {
		s.layerSurface.Destroy()
	}
	if s.surface != nil {
		s.surface.Destroy()
	}
}

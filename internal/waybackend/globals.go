// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Global registry binding: one struct holding every bound global, a
// registry global handler that binds by interface name on first
// sight, and a Sync() roundtrip to wait for the initial burst of
// globals.

package waybackend

import (
	"fmt"

	"github.com/rajveermalviya/go-wayland/wayland/client"
	zwlrlayershell "github.com/rajveermalviya/go-wayland/wayland/wlr-layer-shell-unstable-v1"

	"wayvid.dev/wayvid/internal/wlog"
)

const (
	compositorMaxVersion = 4
	layerShellMaxVersion = 4
)

// Backend owns the Wayland connection, the bound globals, and every
// live background Surface.
type Backend struct {
	conn       *client.Display
	registry   *client.Registry
	compositor *client.Compositor
	layerShell *zwlrlayershell.LayerShellV1

	outputs   *outputRegistry
	outputObj map[uint32]*client.Output // cookie -> wl_output proxy

	surfaces map[string]*backgroundSurface

	sink Sink
}

// Connect opens the Wayland connection (empty name uses $WAYLAND_DISPLAY)
// and performs the initial registry roundtrip.
func Connect(sink Sink) (*Backend, error) {
	display, err := client.Connect("")
	if err != nil {
		return nil, fmt.Errorf("waybackend: connect: %w", err)
	}
	b := &Backend{
		conn:      display,
		outputs:   newOutputRegistry(),
		outputObj: make(map[uint32]*client.Output),
		surfaces:  make(map[string]*backgroundSurface),
		sink:      sink,
	}

	registry, err := display.GetRegistry()
	if err != nil {
		return nil, fmt.Errorf("waybackend: get_registry: %w", err)
	}
	b.registry = registry
	registry.SetGlobalHandler(b.onGlobal)
	registry.SetGlobalRemoveHandler(b.onGlobalRemove)

	if err := roundtrip(display); err != nil {
		return nil, err
	}

	if b.compositor == nil || b.layerShell == nil {
		return nil, fmt.Errorf("waybackend: compositor or layer-shell global not found (%w)", errMissingGlobal)
	}
	return b, nil
}

var errMissingGlobal = fmt.Errorf("required compositor global missing after initial roundtrip")

// roundtrip blocks until every currently-queued Wayland event has
// been dispatched, by waiting on a display.Sync() callback.
func roundtrip(display *client.Display) error {
	callback, err := display.Sync()
	if err != nil {
		return fmt.Errorf("waybackend: sync: %w", err)
	}
	done := make(chan struct{})
	callback.SetDoneHandler(func(client.CallbackDoneEvent) { close(done) })
	for {
		if err := display.Context().Dispatch(); err != nil {
			return fmt.Errorf("waybackend: dispatch: %w", err)
		}
		select {
		case <-done:
			return nil
		default:
		}
	}
}

// onGlobal binds the 2D-surface factory and layer-shell on first sight,
// and begins an output's pending record for every wl_output global
//.
func (b *Backend) onGlobal(e client.RegistryGlobalEvent) {
	switch e.Interface {
	case "wl_compositor":
		if b.compositor != nil {
			return
		}
		v := minVersion(e.Version, compositorMaxVersion)
		compositor := client.NewCompositor(b.conn.Context())
		if err := b.registry.Bind(e.Name, e.Interface, v, compositor); err != nil {
			wlog.Warn("waybackend: bind wl_compositor failed", "err", err)
			return
		}
		b.compositor = compositor
	case "zwlr_layer_shell_v1":
		if b.layerShell != nil {
			return
		}
		v := minVersion(e.Version, layerShellMaxVersion)
		ls := zwlrlayershell.NewLayerShellV1(b.conn.Context())
		if err := b.registry.Bind(e.Name, e.Interface, v, ls); err != nil {
			wlog.Warn("waybackend: bind zwlr_layer_shell_v1 failed", "err", err)
			return
		}
		b.layerShell = ls
	case "wl_output":
		out := client.NewOutput(b.conn.Context())
		if err := b.registry.Bind(e.Name, e.Interface, minVersion(e.Version, 4), out); err != nil {
			wlog.Warn("waybackend: bind wl_output failed", "err", err)
			return
		}
		b.outputObj[e.Name] = out
		b.outputs.beginOutput(e.Name)
		b.attachOutputHandlers(e.Name, out)
	}
}

func (b *Backend) attachOutputHandlers(cookie uint32, out *client.Output) {
	out.SetGeometryHandler(func(e client.OutputGeometryEvent) {
		b.outputs.onGeometry(cookie, int(e.X), int(e.Y))
	})
	out.SetModeHandler(func(e client.OutputModeEvent) {
		// Only the current mode updates the live geometry.
		if e.Flags&client.OutputModeCurrent == 0 {
			return
		}
		b.outputs.onMode(cookie, int(e.Width), int(e.Height))
	})
	out.SetScaleHandler(func(e client.OutputScaleEvent) {
		b.outputs.onScale(cookie, float64(e.Factor))
	})
	out.SetNameHandler(func(e client.OutputNameEvent) {
		b.outputs.onName(cookie, e.Name)
	})
	out.SetDoneHandler(func(client.OutputDoneEvent) {
		if info, ok := b.outputs.onDone(cookie); ok {
			b.emit(OutputAdded{Output: info})
		}
	})
}

// onGlobalRemove matches cookie against a known output and tears down
// any Session bound to it via the emitted event.
func (b *Backend) onGlobalRemove(e client.RegistryGlobalRemoveEvent) {
	name, wasReady := b.outputs.onGlobalRemove(e.Name)
	delete(b.outputObj, e.Name)
	if wasReady {
		if s, ok := b.surfaces[name]; ok {
			s.destroy()
			delete(b.surfaces, name)
		}
		b.emit(OutputRemoved{Name: name})
	}
}

func (b *Backend) emit(ev Event) {
	if b.sink != nil {
		b.sink(ev)
	}
}

// EnumerateOutputs returns a snapshot of every ready output.
func (b *Backend) EnumerateOutputs() []OutputInfo {
	return b.outputs.snapshot()
}

func minVersion(have, cap uint32) uint32 {
	if have > cap {
		return cap
	}
	return have
}

// Dispatch drains one round of pending Wayland events; called by the
// Control Plane's main loop each tick.
func (b *Backend) Dispatch() error {
	return b.conn.Context().Dispatch()
}

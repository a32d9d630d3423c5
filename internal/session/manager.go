// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package session

import (
	"fmt"

	"wayvid.dev/wayvid/internal/config"
	"wayvid.dev/wayvid/internal/gpux"
	"wayvid.dev/wayvid/internal/player"
	"wayvid.dev/wayvid/internal/waybackend"
	"wayvid.dev/wayvid/internal/wire"
	"wayvid.dev/wayvid/internal/wlog"
)

// Manager owns and drives one Session per output.
type Manager struct {
	wb       *waybackend.Backend
	resolver *config.Resolver
	appName  string
	debug    bool

	sessions map[string]*Session
	// backends caches one process-wide GPU Backend per render-backend
	// choice; a Backend owns instance/device state that must outlive
	// every Target it created, so it is never per-Session.
	backends map[wire.RenderBackend]gpux.Backend
}

// NewManager wires the Session Manager to a live Display Backend
// connection and a Config Resolver.
func NewManager(wb *waybackend.Backend, resolver *config.Resolver, appName string, debug bool) *Manager {
	return &Manager{
		wb:       wb,
		resolver: resolver,
		appName:  appName,
		debug:    debug,
		sessions: make(map[string]*Session),
		backends: make(map[wire.RenderBackend]gpux.Backend),
	}
}

// SetResolver swaps in a newly-reloaded Config Resolver (hot reload
// via internal/config.Watch). Safe only from the engine's own
// goroutine, like every other Manager method (package doc comment).
func (m *Manager) SetResolver(resolver *config.Resolver) {
	m.resolver = resolver
}

// Apply hot-swaps an already-
// initialized Session's source, keeping its Surface and GPU Target (the
// player adapter is replaced only when the swap crosses between video
// and scene playback), or runs the full bring-up path for a new output.
func (m *Manager) Apply(output string, source wire.VideoSource) error {
	if s, ok := m.sessions[output]; ok && s.initialized {
		path, err := sourcePath(source)
		if err != nil {
			s.lastErr = err.Error()
			return err
		}
		if !sameAdapterKind(s.cfg.Source, source) {
			// Swapping between video and scene playback replaces the
			// adapter but keeps the Surface and GPU Target.
			s.adapter.Destroy()
			a := newAdapter(source, toCreateOptions(s.cfg))
			if err := a.InitRenderContext(s.target, s.backend.GetProcAddress()); err != nil {
				s.adapter = nil
				s.initialized = false
				s.lastErr = err.Error()
				return fmt.Errorf("session: hot-swap init_render_context: %w", err)
			}
			s.adapter = a
		}
		if err := s.adapter.LoadFile(path); err != nil {
			s.lastErr = err.Error()
			return fmt.Errorf("session: hot-swap load_file: %w", err)
		}
		configureToneMapping(s.adapter, s.cfg)
		s.cfg.Source = source
		s.state = wire.StatePlaying
		s.lastErr = ""
		return nil
	}

	cfg, err := m.resolver.ForOutput(output)
	if err != nil {
		return fmt.Errorf("session: resolve config for %q: %w", output, err)
	}
	cfg.Source = source
	cfg.Clamp()

	s, exists := m.sessions[output]
	if !exists {
		if err := m.wb.CreateBackgroundSurface(output); err != nil {
			return fmt.Errorf("session: create_background_surface: %w", err)
		}
		s = &Session{Output: output}
		m.sessions[output] = s
	}
	s.cfg = cfg
	s.state = wire.StateStopped
	s.lastErr = ""
	return nil
}

// ApplyConfigured starts the config-declared wallpaper on a newly
// added output: if the effective config names a source and no session
// exists yet, it runs Apply and returns the source it used. A nil
// source return means there was nothing to do.
func (m *Manager) ApplyConfigured(output string) (wire.VideoSource, error) {
	if _, exists := m.sessions[output]; exists {
		return nil, nil
	}
	cfg, err := m.resolver.ForOutput(output)
	if err != nil {
		return nil, err
	}
	if cfg.Source == nil {
		return nil, nil
	}
	if err := m.Apply(output, cfg.Source); err != nil {
		return nil, err
	}
	return cfg.Source, nil
}

// Clear tears down the Session and its Surface.
func (m *Manager) Clear(output string) {
	s, ok := m.sessions[output]
	if !ok {
		return
	}
	s.teardown()
	delete(m.sessions, output)
	m.wb.DestroySurface(output)
}

// SetVolume applies to one output, or every session if output is empty
//.
func (m *Manager) SetVolume(output string, v float64) error {
	return m.forEachTarget(output, func(s *Session) error {
		s.cfg.Volume = v
		if s.adapter == nil {
			return nil
		}
		return s.adapter.SetVolume(v)
	})
}

// Pause applies to one output, or every session if output is empty.
func (m *Manager) Pause(output string) error {
	return m.forEachTarget(output, func(s *Session) error {
		if s.adapter == nil {
			s.state = wire.StatePaused
			return nil
		}
		if err := s.adapter.Pause(); err != nil {
			return err
		}
		s.state = wire.StatePaused
		return nil
	})
}

// Resume applies to one output, or every session if output is empty.
func (m *Manager) Resume(output string) error {
	return m.forEachTarget(output, func(s *Session) error {
		if s.adapter == nil {
			s.state = wire.StatePlaying
			return nil
		}
		if err := s.adapter.Resume(); err != nil {
			return err
		}
		s.state = wire.StatePlaying
		return nil
	})
}

func (m *Manager) forEachTarget(output string, fn func(*Session) error) error {
	if output != "" {
		s, ok := m.sessions[output]
		if !ok {
			return fmt.Errorf("session: no session for output %q", output)
		}
		return fn(s)
	}
	var firstErr error
	for _, s := range m.sessions {
		if err := fn(s); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Status answers the GetStatus command.
func (m *Manager) Status() []wire.SessionStatus {
	out := make([]wire.SessionStatus, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.status())
	}
	return out
}

// RenderPending is invoked each main-loop tick; it renders every
// session whose surface is
// configured-and-frame-pending.
func (m *Manager) RenderPending() {
	for output, s := range m.sessions {
		w, h, configured := m.wb.Configured(output)
		if !configured {
			continue
		}
		if !m.wb.ConsumeFramePending(output) {
			continue
		}
		if err := m.renderOne(s, w, h); err != nil {
			s.lastErr = err.Error()
			wlog.Warn("session: render failed", "output", output, "err", err)
		}
	}
}

// renderOne runs one session's per-frame render (frame_pending is
// already cleared by the caller).
func (m *Manager) renderOne(s *Session, w, h int) error {
	if !s.initialized {
		if err := m.bringUp(s, w, h); err != nil {
			return err
		}
	}
	if w != s.width || h != s.height {
		if err := s.target.Resize(w, h); err != nil {
			return fmt.Errorf("resize target: %w", err)
		}
		s.width, s.height = w, h
	}
	if err := s.target.MakeCurrent(); err != nil {
		return fmt.Errorf("make current: %w", err)
	}
	if !s.adapter.HasFrame() {
		// No new frame: do not swap, keep the previous framebuffer
		// intact.
		return nil
	}
	ok, err := s.adapter.Render(w, h)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if !ok {
		return nil
	}
	return s.target.SwapBuffers()
}

// bringUp runs the deferred half of session bring-up: lazily create
// the Target, load proc addresses, create the player, load the source,
// and transition to Playing.
func (m *Manager) bringUp(s *Session, w, h int) error {
	handle, ok := m.wb.SurfaceHandle(s.Output)
	if !ok {
		return fmt.Errorf("no surface handle for output %q yet", s.Output)
	}

	backend, err := m.backendFor(s.cfg.RenderBackend, handle.Display)
	if err != nil {
		return fmt.Errorf("gpu backend: %w", err)
	}
	target, err := backend.CreateWindow(handle, w, h)
	if err != nil {
		return fmt.Errorf("create_window: %w", err)
	}

	adapter := newAdapter(s.cfg.Source, toCreateOptions(s.cfg))
	if err := adapter.InitRenderContext(target, backend.GetProcAddress()); err != nil {
		target.Destroy()
		return fmt.Errorf("init_render_context: %w", err)
	}
	path, err := sourcePath(s.cfg.Source)
	if err != nil {
		adapter.Destroy()
		target.Destroy()
		return err
	}
	if err := adapter.LoadFile(path); err != nil {
		adapter.Destroy()
		target.Destroy()
		return fmt.Errorf("load_file: %w", err)
	}
	configureToneMapping(adapter, s.cfg)

	s.backend = backend
	s.target = target
	s.adapter = adapter
	s.width, s.height = w, h
	s.initialized = true
	s.state = wire.StatePlaying
	return nil
}

// configureToneMapping applies the HDR policy after a source load:
// if the source reports HDR metadata, or the effective config's HDR
// mode is Force, and ResolveToneMap decides to map, hand the resulting
// params to the adapter.
func configureToneMapping(a player.Adapter, cfg wire.EffectiveConfig) {
	meta, ok := a.HDRMetadata()
	if !ok && cfg.HDR != wire.HDRForce {
		return
	}
	if params, apply := player.ResolveToneMap(cfg.HDR, meta, cfg.ToneMap); apply {
		a.ConfigureToneMapping(params)
	}
}

// backendFor returns the process-wide Backend for choice, creating it
// on first use; GL/Vulkan function pointers load once per process.
func (m *Manager) backendFor(choice wire.RenderBackend, wlDisplay uintptr) (gpux.Backend, error) {
	if b, ok := m.backends[choice]; ok {
		return b, nil
	}
	b, err := gpux.NewBackend(choice, m.appName, wlDisplay, m.debug)
	if err != nil {
		return nil, err
	}
	m.backends[choice] = b
	return b, nil
}

// Shutdown tears down every session, releasing its player before its
// GPU target and then its surface, and finally releases the backends.
func (m *Manager) Shutdown() {
	for output, s := range m.sessions {
		s.teardown()
		m.wb.DestroySurface(output)
		delete(m.sessions, output)
	}
	for choice, b := range m.backends {
		b.Destroy()
		delete(m.backends, choice)
	}
}

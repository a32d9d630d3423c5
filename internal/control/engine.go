// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package control implements the control plane: a single cooperative
// main loop dispatching over the Wayland event queue, a cross-thread
// command channel, and a bounded render timer.
package control

import (
	"io/fs"
	"time"

	"wayvid.dev/wayvid/internal/config"
	"wayvid.dev/wayvid/internal/power"
	"wayvid.dev/wayvid/internal/session"
	"wayvid.dev/wayvid/internal/waybackend"
	"wayvid.dev/wayvid/internal/wire"
	"wayvid.dev/wayvid/internal/wlog"
)

const powerPollInterval = 10 * time.Second
const powerPausedTick = 100 * time.Millisecond
const defaultFPS = 60

// Engine is the Control Plane's single main-loop owner.
type Engine struct {
	wb       *waybackend.Backend
	sessions *session.Manager
	policy   *power.Policy
	powerFS  fs.FS

	commands chan wire.Command
	events   chan wire.Event
	shutdown chan struct{}

	tickInterval time.Duration
	version      string
}

// Config bundles Engine construction parameters.
type Config struct {
	PowerPolicy wire.PowerPolicy
	PowerFS     fs.FS // e.g. os.DirFS("/sys/class/power_supply")
	FPSLimit    int
	Version     string
}

func NewEngine(wb *waybackend.Backend, sessions *session.Manager, cfg Config) *Engine {
	fps := cfg.FPSLimit
	if fps <= 0 {
		fps = defaultFPS
	}
	return &Engine{
		wb:           wb,
		sessions:     sessions,
		policy:       power.NewPolicy(cfg.PowerPolicy),
		powerFS:      cfg.PowerFS,
		commands:     make(chan wire.Command, 16),
		events:       make(chan wire.Event, 16),
		shutdown:     make(chan struct{}),
		tickInterval: time.Second / time.Duration(fps),
		version:      cfg.Version,
	}
}

// Commands is the cross-thread command channel producers (CLI, IPC,
// GUI) send into.
func (e *Engine) Commands() chan<- wire.Command { return e.commands }

// Events is the event channel consumers fan out from.
func (e *Engine) Events() <-chan wire.Event { return e.events }

func (e *Engine) emit(ev wire.Event) {
	select {
	case e.events <- ev:
	default:
		wlog.Warn("control: event channel full, dropping event")
	}
}

// OnWaybackendEvent is the Sink passed to waybackend.Connect: it
// translates Display Backend events into Control Plane events and
// drives session tear-down on output loss.
func (e *Engine) OnWaybackendEvent(ev waybackend.Event) {
	switch v := ev.(type) {
	case waybackend.OutputAdded:
		e.emit(wire.OutputAdded{Info: toWireOutputInfo(v.Output)})
		src, err := e.sessions.ApplyConfigured(v.Output.Name)
		if err != nil {
			e.emit(wire.Error{Message: err.Error()})
		} else if src != nil {
			e.emit(wire.WallpaperApplied{Output: v.Output.Name, Path: src.Key()})
		}
	case waybackend.OutputRemoved:
		e.sessions.Clear(v.Name)
		e.emit(wire.OutputRemoved{Name: v.Name})
	case waybackend.SurfaceClosed:
		e.sessions.Clear(v.Output)
	}
}

func toWireOutputInfo(o waybackend.OutputInfo) wire.OutputInfo {
	return wire.OutputInfo{
		Name: o.Name, X: o.X, Y: o.Y,
		Width: o.Width, Height: o.Height, Scale: o.Scale,
		Active: true,
	}
}

// Run is the single cooperative loop; it
// returns once Shutdown is observed and tear-down completes.
func (e *Engine) Run() {
	e.emit(wire.Started{})

	renderTicker := time.NewTicker(e.tickInterval)
	defer renderTicker.Stop()
	powerTicker := time.NewTicker(powerPollInterval)
	defer powerTicker.Stop()

	for {
		select {
		case <-e.shutdown:
			e.sessions.Shutdown()
			e.emit(wire.Stopped{})
			return
		case cmd := <-e.commands:
			if _, isShutdown := cmd.(wire.Shutdown); isShutdown {
				close(e.shutdown)
				continue
			}
			e.handleCommand(cmd)
		case <-powerTicker.C:
			e.evaluatePower(renderTicker)
		case <-renderTicker.C:
			if err := e.wb.Dispatch(); err != nil {
				wlog.Warn("control: wayland dispatch failed", "err", err)
				continue
			}
			if !e.policy.Paused() {
				e.sessions.RenderPending()
			}
		}
	}
}

func (e *Engine) evaluatePower(renderTicker *time.Ticker) {
	if e.powerFS == nil {
		return
	}
	onBattery, err := power.OnBattery(e.powerFS)
	if err != nil {
		wlog.Warn("control: battery read failed", "err", err)
		return
	}
	switch e.policy.Evaluate(onBattery) {
	case power.TransitionPauseAll:
		e.sessions.Pause("")
		renderTicker.Reset(powerPausedTick)
	case power.TransitionResumeAll:
		e.sessions.Resume("")
		renderTicker.Reset(e.tickInterval)
	}
}

func (e *Engine) handleCommand(cmd wire.Command) {
	switch c := cmd.(type) {
	case wire.ApplyWallpaper:
		src := detectSource(c.Path)
		e.forEachOutput(c.Output, func(output string) error {
			return e.sessions.Apply(output, src)
		}, func(output string) {
			e.emit(wire.WallpaperApplied{Output: output, Path: c.Path})
		})
	case wire.ClearWallpaper:
		e.forEachOutput(c.Output, func(output string) error {
			e.sessions.Clear(output)
			return nil
		}, func(output string) {
			e.emit(wire.WallpaperCleared{Output: output})
		})
	case wire.SetVolume:
		e.runOrError(e.sessions.SetVolume(c.Output, c.Volume))
	case wire.Pause:
		e.runOrError(e.sessions.Pause(c.Output))
	case wire.Resume:
		e.runOrError(e.sessions.Resume(c.Output))
	case wire.GetOutputs:
		outs := e.wb.EnumerateOutputs()
		wireOuts := make([]wire.OutputInfo, len(outs))
		for i, o := range outs {
			wireOuts[i] = toWireOutputInfo(o)
		}
		e.emit(wire.OutputsList{Outputs: wireOuts})
	case wire.GetStatus:
		e.emit(wire.Status{Snapshot: e.statusSnapshot()})
	case wire.ReloadConfig:
		e.sessions.SetResolver(config.NewResolver(c.Base))
	}
}

func (e *Engine) runOrError(err error) {
	if err != nil {
		e.emit(wire.Error{Message: err.Error()})
	}
}

// forEachOutput applies fn to output, or to every known output when
// output is empty.
func (e *Engine) forEachOutput(output string, fn func(string) error, onSuccess func(string)) {
	targets := []string{output}
	if output == "" {
		targets = targets[:0]
		for _, o := range e.wb.EnumerateOutputs() {
			targets = append(targets, o.Name)
		}
	}
	for _, t := range targets {
		if err := fn(t); err != nil {
			e.emit(wire.Error{Message: err.Error()})
			continue
		}
		onSuccess(t)
	}
}

func (e *Engine) statusSnapshot() wire.StatusSnapshot {
	outs := e.wb.EnumerateOutputs()
	wireOuts := make([]wire.OutputInfo, len(outs))
	for i, o := range outs {
		wireOuts[i] = toWireOutputInfo(o)
	}
	sessions := e.sessions.Status()
	for i := range sessions {
		sessions[i].PowerPaused = e.policy.Paused()
	}
	return wire.StatusSnapshot{
		Running:  true,
		Version:  e.version,
		Outputs:  wireOuts,
		Sessions: sessions,
	}
}

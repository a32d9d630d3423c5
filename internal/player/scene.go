// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package player

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"wayvid.dev/wayvid/internal/gpux"
	"wayvid.dev/wayvid/internal/scene"
	"wayvid.dev/wayvid/internal/wire"
	"wayvid.dev/wayvid/internal/wlog"
)

// SceneAdapter implements Adapter over the layered-scene renderer,
// so a LayeredScene source plugs into the Session Manager
// through the exact same contract as video playback. The "player" here
// is the scene compositor itself: LoadFile takes a project directory,
// the tick goroutine plays the role of the decode thread, and Render
// composites via the Target's BeginFrame/DrawSprite path instead of a
// single full-viewport video quad.
type SceneAdapter struct {
	opts CreateOptions

	target gpux.Target

	mu       sync.Mutex
	renderer *scene.Renderer
	textures map[int]sceneTexture
	lastTick time.Time

	// frameAvailable mirrors the video adapter's update-callback flag:
	// written by the tick goroutine, read-and-cleared by HasFrame.
	frameAvailable atomic.Bool
	paused         atomic.Bool

	stopTick chan struct{}
	tickWg   sync.WaitGroup

	stats *FrameTiming
}

// sceneTexture is one object's decoded texture, tint already baked in
// (textures are immutable for the lifetime of the Scene).
type sceneTexture struct {
	pix  []byte
	w, h int
}

// NewSceneAdapter constructs a scene-backed adapter. Volume/mute
// options are accepted for contract parity but never used: Sound
// objects are parsed, not rendered.
func NewSceneAdapter(opts CreateOptions) *SceneAdapter {
	return &SceneAdapter{opts: opts, stats: NewFrameTiming(opts.FPSLimit)}
}

func (a *SceneAdapter) InitRenderContext(target gpux.Target, getProc gpux.ProcAddressFunc) error {
	a.target = target
	_ = getProc // the scene compositor draws through Target, not raw GL entry points
	return nil
}

// LoadFile parses the scene project at dir, decodes every Image
// object's texture (visible or not) up front, and starts the tick goroutine that paces
// re-composition.
func (a *SceneAdapter) LoadFile(dir string) error {
	a.stopTickLocked()

	sc, err := scene.LoadProject(dir)
	if err != nil {
		return err
	}
	assets, err := scene.NewFileSource(dir)
	if err != nil {
		return err
	}
	textures := make(map[int]sceneTexture)
	for _, obj := range sc.Objects {
		if obj.Kind != scene.KindImage || obj.Image.TexturePath == "" {
			continue
		}
		pix, w, h, err := scene.LoadTexture(assets, obj.Image.TexturePath)
		if err != nil {
			// Decode failures keep rendering alive: the object is
			// simply skipped at draw time.
			wlog.Warn("player: scene texture decode failed", "object", obj.Name, "path", obj.Image.TexturePath, "err", err)
			continue
		}
		tintPixels(pix, obj.Image.Tint)
		textures[obj.ID] = sceneTexture{pix: pix, w: w, h: h}
	}

	a.mu.Lock()
	a.renderer = scene.NewRenderer(sc)
	a.textures = textures
	a.lastTick = time.Now()
	a.mu.Unlock()
	a.frameAvailable.Store(true)

	interval := time.Second / 60
	if a.opts.FPSLimit > 0 {
		interval = time.Second / time.Duration(a.opts.FPSLimit)
	}
	a.stopTick = make(chan struct{})
	a.tickWg.Add(1)
	go a.tickLoop(a.stopTick, interval)
	return nil
}

// tickLoop is the scene's analogue of the video decode goroutine: it
// only ever touches the atomic flag.
func (a *SceneAdapter) tickLoop(stop chan struct{}, interval time.Duration) {
	defer a.tickWg.Done()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if !a.paused.Load() {
				a.frameAvailable.Store(true)
			}
		}
	}
}

func (a *SceneAdapter) HasFrame() bool {
	return a.frameAvailable.CompareAndSwap(true, false)
}

// Render advances the scene clock and composites every visible Image
// object back-to-front into the target.
func (a *SceneAdapter) Render(width, height int) (bool, error) {
	a.mu.Lock()
	r := a.renderer
	textures := a.textures
	now := time.Now()
	dt := now.Sub(a.lastTick).Seconds()
	a.lastTick = now
	a.mu.Unlock()
	if r == nil {
		return false, nil
	}
	if a.stats.ShouldSkipFrame() {
		a.stats.RecordSkip()
		return false, nil
	}
	a.stats.BeginFrame()
	if err := a.target.MakeCurrent(); err != nil {
		return false, err
	}
	r.Update(dt)

	bg := r.Scene.General.Background
	if err := a.target.BeginFrame(float32(bg.R), float32(bg.G), float32(bg.B), 1); err != nil {
		return false, err
	}

	projW := float64(r.Scene.Projection.Width)
	projH := float64(r.Scene.Projection.Height)
	if projW <= 0 || projH <= 0 {
		projW, projH = float64(width), float64(height)
	}
	clip := scene.Mat3(gpux.ClipFromPixel(float64(width), float64(height)))
	projToOut := clip.Mul(scene.BuildTransform(0, 0, 0, float64(width)/projW, float64(height)/projH))

	for _, obj := range r.VisibleImages() {
		tex, ok := textures[obj.ID]
		if !ok {
			continue
		}
		rect := scene.ComputeRenderRect(obj, projW, projH, projW, projH, float64(tex.w), float64(tex.h))
		objT := scene.BuildTransform(
			rect.X+rect.Width/2, rect.Y+rect.Height/2,
			obj.Angles.Z,
			rect.Width/2, rect.Height/2,
		)
		src, dst := scene.GLBlendFunc(obj.Image.Blend)
		m := projToOut.Mul(objT)
		if err := a.target.DrawSprite(tex.pix, tex.w, tex.h, [9]float64(m), obj.Image.Alpha, src, dst); err != nil {
			return false, fmt.Errorf("player: scene object %q: %w", obj.Name, err)
		}
	}
	a.stats.EndFrame()
	return true, nil
}

// tintPixels bakes a solid-color tint into decoded RGBA pixels once at
// load time, keeping DrawSprite's per-draw inputs to transform + alpha.
func tintPixels(pix []byte, tint scene.Color) {
	if tint.R == 1 && tint.G == 1 && tint.B == 1 {
		return
	}
	mul := func(b byte, f float64) byte {
		v := float64(b) * f
		if v > 255 {
			return 255
		}
		if v < 0 {
			return 0
		}
		return byte(v)
	}
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i+0] = mul(pix[i+0], tint.R)
		pix[i+1] = mul(pix[i+1], tint.G)
		pix[i+2] = mul(pix[i+2], tint.B)
	}
}

func (a *SceneAdapter) Pause() error {
	a.paused.Store(true)
	return nil
}

func (a *SceneAdapter) Resume() error {
	a.paused.Store(false)
	a.frameAvailable.Store(true)
	return nil
}

// SetVolume is accepted but inert: Sound objects are not rendered.
func (a *SceneAdapter) SetVolume(v float64) error {
	a.opts.Volume = v
	return nil
}

// HDRMetadata always reports SDR: scene textures are 8-bit RGBA.
func (a *SceneAdapter) HDRMetadata() (HDRMetadata, bool) {
	return HDRMetadata{}, false
}

func (a *SceneAdapter) ConfigureToneMapping(params wire.ToneMapParams) {
	_ = params
}

// Stats implements the session's statsProvider.
func (a *SceneAdapter) Stats() (rendered, skipped uint64, loadPct float64, skipMode bool, avgMillis float64) {
	return a.stats.Stats()
}

func (a *SceneAdapter) Destroy() {
	a.stopTickLocked()
	// Render context is released before scene state, matching the
	// adapter destroy ordering contract.
	a.target = nil
	a.mu.Lock()
	a.renderer = nil
	a.textures = nil
	a.mu.Unlock()
}

func (a *SceneAdapter) stopTickLocked() {
	if a.stopTick != nil {
		close(a.stopTick)
		a.tickWg.Wait()
		a.stopTick = nil
	}
}

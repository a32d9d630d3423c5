// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package waybackend

// OutputInfo is the ready-state record for one compositor output
//.
type OutputInfo struct {
	Name   string
	X, Y   int
	Width  int
	Height int
	Scale  float64
	cookie uint32 // the wl_registry global name, for matching global-remove
}

// pendingOutput accumulates Geometry/Mode(Current)/Scale/Name events
// until Done promotes it to ready. Zero value is the
// correct "nothing seen yet" state.
type pendingOutput struct {
	cookie uint32
	name   string
	x, y   int
	width  int
	height int
	scale  float64
	ready  bool
}

func newPendingOutput(cookie uint32) *pendingOutput {
	return &pendingOutput{cookie: cookie, scale: 1}
}

func (p *pendingOutput) toReady() OutputInfo {
	return OutputInfo{
		Name: p.name, X: p.x, Y: p.y,
		Width: p.width, Height: p.height, Scale: p.scale,
		cookie: p.cookie,
	}
}

// outputRegistry tracks every output from first global-sighting to
// global-remove. It holds no Wayland handles
// itself so it can be exercised directly in tests.
type outputRegistry struct {
	byCookie map[uint32]*pendingOutput
	ready    map[uint32]OutputInfo
}

func newOutputRegistry() *outputRegistry {
	return &outputRegistry{
		byCookie: make(map[uint32]*pendingOutput),
		ready:    make(map[uint32]OutputInfo),
	}
}

func (r *outputRegistry) beginOutput(cookie uint32) {
	r.byCookie[cookie] = newPendingOutput(cookie)
}

func (r *outputRegistry) onGeometry(cookie uint32, x, y int) {
	if p, ok := r.byCookie[cookie]; ok {
		p.x, p.y = x, y
	}
}

func (r *outputRegistry) onMode(cookie uint32, w, h int) {
	if p, ok := r.byCookie[cookie]; ok {
		p.width, p.height = w, h
	}
}

func (r *outputRegistry) onScale(cookie uint32, scale float64) {
	if p, ok := r.byCookie[cookie]; ok {
		p.scale = scale
	}
}

func (r *outputRegistry) onName(cookie uint32, name string) {
	if p, ok := r.byCookie[cookie]; ok {
		p.name = name
	}
}

// onDone promotes pending to ready, returning the new OutputInfo and
// true on the first Done; subsequent Done events for an already-ready
// output are ignored.
func (r *outputRegistry) onDone(cookie uint32) (OutputInfo, bool) {
	p, ok := r.byCookie[cookie]
	if !ok || p.ready {
		return OutputInfo{}, false
	}
	p.ready = true
	info := p.toReady()
	r.ready[cookie] = info
	return info, true
}

// onGlobalRemove drops pending/ready state for cookie, returning the
// removed output's name if it had been ready.
func (r *outputRegistry) onGlobalRemove(cookie uint32) (name string, wasReady bool) {
	if info, ok := r.ready[cookie]; ok {
		delete(r.ready, cookie)
		delete(r.byCookie, cookie)
		return info.Name, true
	}
	delete(r.byCookie, cookie)
	return "", false
}

// snapshot returns every ready output.
func (r *outputRegistry) snapshot() []OutputInfo {
	out := make([]OutputInfo, 0, len(r.ready))
	for _, info := range r.ready {
		out = append(out, info)
	}
	return out
}

func (r *outputRegistry) byName(name string) (OutputInfo, bool) {
	for _, info := range r.ready {
		if info.Name == name {
			return info, true
		}
	}
	return OutputInfo{}, false
}

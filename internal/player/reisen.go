// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// ReisenAdapter implements Adapter over github.com/cogentcore/reisen
// (video decode) and github.com/faiface/beep (audio pass-through).
// reisen hands this adapter decoded RGBA frames rather than drawing
// into a caller-supplied framebuffer itself, so Render uploads the
// frame to the GPU target here.

package player

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cogentcore/reisen"
	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"

	"wayvid.dev/wayvid/internal/gpux"
	"wayvid.dev/wayvid/internal/scene"
	"wayvid.dev/wayvid/internal/wire"
)

// ReisenAdapter is the concrete Media Playback Adapter.
type ReisenAdapter struct {
	opts CreateOptions

	media       *reisen.Media
	videoStream *reisen.VideoStream
	audioStream *reisen.AudioStream

	target  gpux.Target
	getProc gpux.ProcAddressFunc

	// frameAvailable is the lock-free, re-entrancy-safe flag the update
	// callback sets. Only ever written by
	// the decode goroutine and read/cleared by HasFrame.
	frameAvailable atomic.Bool

	mu          sync.Mutex
	latest      *decodedFrame
	stopDecode  chan struct{}
	decodeWg    sync.WaitGroup
	paused      atomic.Bool

	volumeCtrl *effects.Volume
	speakerOn  bool

	hdr    HDRMetadata
	hasHDR bool

	stats *FrameTiming
}

// NewReisenAdapter constructs an adapter with the given create
// options. Loop, playback rate, mute/volume, layout and FPS limit are
// applied; HWDec and StartTime are kept in opts but never read, so no
// hardware decoder is requested and playback starts at the beginning
// of the file.
func NewReisenAdapter(opts CreateOptions) *ReisenAdapter {
	return &ReisenAdapter{opts: opts, stats: NewFrameTiming(opts.FPSLimit)}
}

func (a *ReisenAdapter) InitRenderContext(target gpux.Target, getProc gpux.ProcAddressFunc) error {
	a.target = target
	a.getProc = getProc
	return nil
}

// LoadFile opens path, selects the first video (and optional audio)
// stream, and starts the decode goroutine.
func (a *ReisenAdapter) LoadFile(path string) error {
	a.stopDecodeLocked()

	media, err := reisen.NewMedia(path)
	if err != nil {
		return fmt.Errorf("player: open %s: %w", path, err)
	}
	if err := media.OpenDecode(); err != nil {
		return fmt.Errorf("player: decode %s: %w", path, err)
	}

	var vs *reisen.VideoStream
	var as *reisen.AudioStream
	for _, s := range media.Streams() {
		switch st := s.(type) {
		case *reisen.VideoStream:
			if vs == nil {
				vs = st
			}
		case *reisen.AudioStream:
			if as == nil {
				as = st
			}
		}
	}
	if vs == nil {
		media.CloseDecode()
		return fmt.Errorf("player: %s has no video stream", path)
	}
	if err := vs.Open(); err != nil {
		media.CloseDecode()
		return fmt.Errorf("player: open video stream: %w", err)
	}
	if as != nil {
		if err := as.Open(); err != nil {
			as = nil // audio is best-effort; silent playback is still valid
		}
	}

	a.media = media
	a.videoStream = vs
	a.audioStream = as
	a.hasHDR = false

	if !a.opts.Mute && as != nil {
		a.startAudio(as)
	}

	a.stopDecode = make(chan struct{})
	a.decodeWg.Add(1)
	go a.decodeLoop(a.stopDecode)
	return nil
}

// decodeLoop is the player's own decode thread. It must never touch
// anything but the atomic flag and the mutex-protected latest frame.
func (a *ReisenAdapter) decodeLoop(stop chan struct{}) {
	defer a.decodeWg.Done()
	frameDur := time.Second / 30
	if fr := a.videoStream.FrameRate(); fr > 0 {
		frameDur = time.Duration(float64(time.Second) / fr)
	}
	if a.opts.PlaybackRate > 0 {
		frameDur = time.Duration(float64(frameDur) / a.opts.PlaybackRate)
	}

	for {
		select {
		case <-stop:
			return
		default:
		}
		if a.paused.Load() {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		packet, gotPacket, err := a.media.ReadPacket()
		if err != nil {
			return
		}
		if !gotPacket {
			if a.opts.Loop {
				if seekErr := a.media.Rewind(0); seekErr != nil {
					return
				}
				continue
			}
			return
		}
		if packet.Type() != reisen.StreamVideo || packet.StreamIndex() != a.videoStream.Index() {
			continue
		}
		frame, gotFrame, err := a.videoStream.ReadVideoFrame()
		if err != nil || !gotFrame {
			continue
		}

		a.mu.Lock()
		a.latest = &decodedFrame{img: frame.Image(), pts: frame.PresentationOffset().Seconds()}
		a.mu.Unlock()
		a.frameAvailable.Store(true) // the update callback

		time.Sleep(frameDur)
	}
}

func (a *ReisenAdapter) startAudio(as *reisen.AudioStream) {
	sampleRate := beep.SampleRate(as.SampleRate())
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return
	}
	streamer := newReisenAudioStreamer(a.media, as)
	a.volumeCtrl = &effects.Volume{Streamer: streamer, Base: 2, Volume: 0, Silent: a.opts.Mute}
	speaker.Play(a.volumeCtrl)
	a.speakerOn = true
	a.SetVolume(a.opts.Volume)
}

// HasFrame reports whether the shared atomic flag is set, clearing it
// on consumption.
func (a *ReisenAdapter) HasFrame() bool {
	return a.frameAvailable.CompareAndSwap(true, false)
}

// Render uploads the latest decoded frame to the target's framebuffer,
// Y-flipped. Returns false (and draws nothing) when no frame has been
// decoded yet or when the frame-timing tracker skips this frame.
func (a *ReisenAdapter) Render(width, height int) (bool, error) {
	a.mu.Lock()
	f := a.latest
	a.mu.Unlock()
	if f == nil {
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
	flipped := flipVertical(f.img)
	b := flipped.Bounds()
	fw, fh := b.Dx(), b.Dy()

	outW, outH := float64(width), float64(height)
	x, y, w, h := layoutRect(a.opts.Layout, outW, outH, float64(fw), float64(fh))
	if coversTarget(x, y, w, h, outW, outH) {
		if err := a.target.UploadFrame(flipped.Pix, fw, fh); err != nil {
			return false, err
		}
	} else {
		// Letterboxed/cropped/centred placement goes through the sprite
		// path so the bars clear to opaque black.
		if err := a.target.BeginFrame(0, 0, 0, 1); err != nil {
			return false, err
		}
		clip := scene.Mat3(gpux.ClipFromPixel(outW, outH))
		m := clip.Mul(scene.BuildTransform(x+w/2, y+h/2, 0, w/2, h/2))
		if err := a.target.DrawSprite(flipped.Pix, fw, fh, [9]float64(m), 1, "GL_ONE", "GL_ZERO"); err != nil {
			return false, err
		}
	}
	a.stats.EndFrame()
	return true, nil
}

func flipVertical(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	stride := img.Stride
	h := b.Dy()
	for y := 0; y < h; y++ {
		srcRow := img.Pix[y*stride : y*stride+stride]
		dstRow := out.Pix[(h-1-y)*stride : (h-1-y)*stride+stride]
		copy(dstRow, srcRow)
	}
	return out
}

func (a *ReisenAdapter) Pause() error {
	a.paused.Store(true)
	if a.speakerOn {
		speaker.Lock()
		a.volumeCtrl.Silent = true
		speaker.Unlock()
	}
	return nil
}

func (a *ReisenAdapter) Resume() error {
	a.paused.Store(false)
	if a.speakerOn {
		speaker.Lock()
		a.volumeCtrl.Silent = a.opts.Mute
		speaker.Unlock()
	}
	return nil
}

// SetVolume maps v in [0,1] onto beep's logarithmic Volume control
//.
func (a *ReisenAdapter) SetVolume(v float64) error {
	a.opts.Volume = v
	if !a.speakerOn {
		return nil
	}
	speaker.Lock()
	if v <= 0 {
		a.volumeCtrl.Silent = true
	} else {
		a.volumeCtrl.Silent = a.opts.Mute
		a.volumeCtrl.Volume = volumeToDecibelsLike(v)
	}
	speaker.Unlock()
	return nil
}

// volumeToDecibelsLike maps linear [0,1] to beep's Volume field, which
// is additive in log2 space (each -1 halves perceived loudness).
func volumeToDecibelsLike(v float64) float64 {
	if v >= 1 {
		return 0
	}
	if v <= 0 {
		return -10
	}
	// log2(v) is negative for v in (0,1); clamp to beep's practical range.
	lg := log2(v)
	if lg < -10 {
		lg = -10
	}
	return lg
}

// Stats implements the session's statsProvider.
func (a *ReisenAdapter) Stats() (rendered, skipped uint64, loadPct float64, skipMode bool, avgMillis float64) {
	return a.stats.Stats()
}

// HDRMetadata always reports no metadata: LoadFile does not read the
// stream's color properties, so hasHDR stays false.
func (a *ReisenAdapter) HDRMetadata() (HDRMetadata, bool) {
	return a.hdr, a.hasHDR
}

// ConfigureToneMapping applies no mapping: params are discarded and
// frames are uploaded as decoded, HDR or not.
func (a *ReisenAdapter) ConfigureToneMapping(params wire.ToneMapParams) {
	_ = params
}

func (a *ReisenAdapter) Destroy() {
	a.stopDecodeLocked()
	if a.speakerOn {
		speaker.Clear()
		a.speakerOn = false
	}
	// Render context must be freed before the player handle.
	a.target = nil
	if a.media != nil {
		a.media.CloseDecode()
		a.media = nil
	}
}

func (a *ReisenAdapter) stopDecodeLocked() {
	if a.stopDecode != nil {
		close(a.stopDecode)
		a.decodeWg.Wait()
		a.stopDecode = nil
	}
}

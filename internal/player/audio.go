// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package player

import (
	"encoding/binary"
	"math"

	"github.com/cogentcore/reisen"
)

// reisenAudioStreamer adapts reisen's decoded PCM frames to beep's
// beep.Streamer interface; audio is disabled by default unless mute
// is false. Frame data arrives
// as raw bytes holding interleaved little-endian float64 stereo
// samples, 16 bytes per sample pair.
type reisenAudioStreamer struct {
	media    *reisen.Media
	stream   *reisen.AudioStream
	leftover []byte
}

func newReisenAudioStreamer(media *reisen.Media, stream *reisen.AudioStream) *reisenAudioStreamer {
	return &reisenAudioStreamer{media: media, stream: stream}
}

// Stream fills samples from the stream's decoded PCM, matching beep's
// [][2]float64 contract. Returns ok=false once the audio stream has no
// more frames for this load cycle.
func (s *reisenAudioStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) {
		if len(s.leftover) >= 16 {
			samples[n][0] = math.Float64frombits(binary.LittleEndian.Uint64(s.leftover[0:8]))
			samples[n][1] = math.Float64frombits(binary.LittleEndian.Uint64(s.leftover[8:16]))
			s.leftover = s.leftover[16:]
			n++
			continue
		}
		frame, gotFrame, err := s.stream.ReadAudioFrame()
		if err != nil || !gotFrame {
			if n > 0 {
				return n, true
			}
			return 0, false
		}
		s.leftover = append(s.leftover, frame.Data()...)
	}
	return n, true
}

func (s *reisenAudioStreamer) Err() error { return nil }

func log2(x float64) float64 {
	return math.Log2(x)
}

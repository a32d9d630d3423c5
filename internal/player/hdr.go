// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package player implements the media playback adapter: a thin
// contract over an embedded media player (github.com/cogentcore/reisen
// for video decode, github.com/faiface/beep for audio pass-through),
// plus the HDR tone-mapping policy, frame-timing statistics, and a
// scene-compositor adapter for layered-scene sources.
package player

import "wayvid.dev/wayvid/internal/wire"

// ColorSpace is the decoded content's nominal color space.
type ColorSpace int

const (
	ColorSpaceSDR ColorSpace = iota
	ColorSpaceHDR10
	ColorSpaceHLG
	ColorSpaceDolbyVision
	ColorSpaceUnknown
)

// IsHDR reports whether cs is one of the HDR color spaces.
func (cs ColorSpace) IsHDR() bool {
	return cs == ColorSpaceHDR10 || cs == ColorSpaceHLG || cs == ColorSpaceDolbyVision
}

// TransferFunction is the decoded content's transfer function (EOTF).
type TransferFunction int

const (
	TransferSRGB TransferFunction = iota
	TransferPQ
	TransferHLG
	TransferUnknown
)

// IsHDR reports whether tf is an HDR transfer function.
func (tf TransferFunction) IsHDR() bool {
	return tf == TransferPQ || tf == TransferHLG
}

// HDRMetadata is what the decoder reports about a source's dynamic
// range.
type HDRMetadata struct {
	ColorSpace       ColorSpace
	TransferFunction TransferFunction
	Primaries        string
	PeakNits         float64
	AvgNits          float64
	MinNits          float64
}

// IsHDR reports whether this metadata describes HDR content.
func (m HDRMetadata) IsHDR() bool {
	return m.ColorSpace.IsHDR() || m.TransferFunction.IsHDR()
}

// ContentType buckets HDR content for tone-map policy selection.
type ContentType int

const (
	ContentGeneral ContentType = iota
	ContentCinema
	ContentAnimation
	ContentDocumentary
	ContentLowDynamicRange
)

// DetectContentType buckets by peak luminance alone. It never returns
// ContentAnimation: that bucket is reachable only through the policy
// tables below, not from source metadata.
func DetectContentType(m HDRMetadata) ContentType {
	switch {
	case m.PeakNits > 2000:
		return ContentCinema
	case m.PeakNits > 1000:
		return ContentDocumentary
	case m.PeakNits > 0 && m.PeakNits < 400:
		return ContentLowDynamicRange
	default:
		return ContentGeneral
	}
}

// recommendedAlgorithm picks the tone-map curve by content type:
// high-peak cinema content gets Hable, animated content Mobius,
// broadcast content BT.2390, low peak falls back to Reinhard.
func recommendedAlgorithm(ct ContentType) wire.ToneMapAlgorithm {
	switch ct {
	case ContentAnimation:
		return wire.ToneMapMobius
	case ContentDocumentary:
		return wire.ToneMapBT2390
	case ContentLowDynamicRange:
		return wire.ToneMapReinhard
	default: // ContentGeneral, ContentCinema
		return wire.ToneMapHable
	}
}

// recommendedParam is the per-(content,algorithm) tuning table, with
// recommendedDefault as the fallback.
func recommendedParam(ct ContentType, algo wire.ToneMapAlgorithm) float64 {
	switch {
	case ct == ContentCinema && algo == wire.ToneMapHable:
		return 1.2
	case ct == ContentCinema && algo == wire.ToneMapMobius:
		return 0.25
	case ct == ContentAnimation && algo == wire.ToneMapMobius:
		return 0.35
	case ct == ContentAnimation && algo == wire.ToneMapHable:
		return 0.9
	case ct == ContentDocumentary && (algo == wire.ToneMapBT2390 || algo == wire.ToneMapHable):
		return 1.0
	case ct == ContentLowDynamicRange && algo == wire.ToneMapReinhard:
		return 0.6
	default:
		return recommendedDefault(algo)
	}
}

// recommendedDefault is each algorithm's intrinsic default param.
func recommendedDefault(algo wire.ToneMapAlgorithm) float64 {
	switch algo {
	case wire.ToneMapMobius:
		return 0.3
	case wire.ToneMapReinhard:
		return 0.5
	default: // Hable, BT2390, Clip
		return 1.0
	}
}

const defaultTargetNits = 203.0

// ResolveToneMap decides whether to tone
// map at all (by HDRMode and source metadata), and if so which
// algorithm/params to use, honoring any explicit override the caller
// supplied ("the caller may override by explicit parameters" — a
// non-zero Algorithm/Param in override wins over the content-aware
// pick).
func ResolveToneMap(mode wire.HDRMode, meta HDRMetadata, override wire.ToneMapParams) (wire.ToneMapParams, bool) {
	switch mode {
	case wire.HDRDisable:
		return wire.ToneMapParams{}, false
	case wire.HDRForce:
		// apply regardless of source metadata
	default: // wire.HDRAuto
		if !meta.IsHDR() {
			return wire.ToneMapParams{}, false
		}
	}

	ct := DetectContentType(meta)
	algo := recommendedAlgorithm(ct)
	param := recommendedParam(ct, algo)
	mapMode := wire.ToneModeHybrid
	switch ct {
	case ContentCinema:
		mapMode = wire.ToneModeRGB
	case ContentAnimation:
		mapMode = wire.ToneModeLuma
	case ContentDocumentary:
		mapMode = wire.ToneModeAuto
	}

	if override.Algorithm != "" {
		algo = override.Algorithm
	}
	if override.Param != 0 {
		param = override.Param
	}
	if override.Mode != "" {
		mapMode = override.Mode
	}
	targetNits := override.TargetNits
	if targetNits == 0 {
		targetNits = defaultTargetNits
	}

	return wire.ToneMapParams{
		Algorithm:  algo,
		Mode:       mapMode,
		Param:      param,
		TargetNits: targetNits,
	}, true
}

// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

// LayoutMode controls how a decoded frame is fit into the surface.
type LayoutMode string

const (
	LayoutFill    LayoutMode = "fill"
	LayoutContain LayoutMode = "contain"
	LayoutStretch LayoutMode = "stretch"
	LayoutCover   LayoutMode = "cover"
	LayoutCentre  LayoutMode = "centre"
)

// HWDecMode is the hardware-decode preference.
type HWDecMode string

const (
	HWDecAuto  HWDecMode = "auto"
	HWDecForce HWDecMode = "force"
	HWDecOff   HWDecMode = "off"
)

// HDRMode is the HDR tone-mapping preference.
type HDRMode string

const (
	HDRAuto    HDRMode = "auto"
	HDRForce   HDRMode = "force"
	HDRDisable HDRMode = "disable"
)

// RenderBackend selects the GPU context implementation.
type RenderBackend string

const (
	BackendAuto   RenderBackend = "auto"
	BackendOpenGL RenderBackend = "opengl"
	BackendVulkan RenderBackend = "vulkan"
)

// ToneMapAlgorithm enumerates the supported HDR→SDR tone-mapping curves.
type ToneMapAlgorithm string

const (
	ToneMapHable    ToneMapAlgorithm = "hable"
	ToneMapMobius   ToneMapAlgorithm = "mobius"
	ToneMapReinhard ToneMapAlgorithm = "reinhard"
	ToneMapBT2390   ToneMapAlgorithm = "bt2390"
	ToneMapClip     ToneMapAlgorithm = "clip"
)

// ToneMapMode is the desaturation mode used during tone mapping.
type ToneMapMode string

const (
	ToneModeAuto   ToneMapMode = "auto"
	ToneModeRGB    ToneMapMode = "rgb"
	ToneModeHybrid ToneMapMode = "hybrid"
	ToneModeLuma   ToneMapMode = "luma"
	ToneModeMax    ToneMapMode = "max"
)

// ToneMapParams parameterizes HDR tone mapping.
type ToneMapParams struct {
	Algorithm  ToneMapAlgorithm
	Mode       ToneMapMode
	Param      float64 // [0,10]
	TargetNits float64 // SDR target peak, ~203 nits by default
}

// PowerPolicy governs pause-on-battery behavior.
type PowerPolicy struct {
	PauseOnBattery bool
}

// BaseConfig is the config document loaded from config.yaml: global
// defaults plus a pattern-keyed per-output override map.
type BaseConfig struct {
	Source        VideoSource
	Layout        LayoutMode
	Loop          bool
	StartTime     float64
	PlaybackRate  float64
	Mute          bool
	Volume        float64
	HWDec         HWDecMode
	HDR           HDRMode
	ToneMap       ToneMapParams
	RenderBackend RenderBackend
	Power         PowerPolicy
	FPSLimit      int

	PerOutput map[string]*Override
}

// Override is one pattern-keyed entry of the per_output map. Nil fields
// mean "inherit the base value".
type Override struct {
	Priority     int
	Source       VideoSource
	Layout       *LayoutMode
	StartTime    *float64
	PlaybackRate *float64
	Mute         *bool
	Volume       *float64
}

// EffectiveConfig is the flattened, validated configuration for one
// output.
type EffectiveConfig struct {
	Output        string
	Source        VideoSource
	Layout        LayoutMode
	Loop          bool
	StartTime     float64
	PlaybackRate  float64
	Mute          bool
	Volume        float64
	HWDec         HWDecMode
	HDR           HDRMode
	ToneMap       ToneMapParams
	RenderBackend RenderBackend
	Power         PowerPolicy
	FPSLimit      int
}

// Clamp enforces the config document's numeric bounds.
func (c *EffectiveConfig) Clamp() {
	// Valid outer range is [0.1, 100.0); outside that, clamp to the
	// narrower default range rather than reject.
	if c.PlaybackRate < 0.1 || c.PlaybackRate >= 100.0 {
		c.PlaybackRate = clampF(c.PlaybackRate, 0.1, 10.0)
	}
	c.Volume = clampF(c.Volume, 0, 1)
	if c.StartTime < 0 {
		c.StartTime = 0
	}
	c.ToneMap.Param = clampF(c.ToneMap.Param, 0, 10)
	switch c.ToneMap.Mode {
	case ToneModeAuto, ToneModeRGB, ToneModeHybrid, ToneModeLuma, ToneModeMax:
	default:
		c.ToneMap.Mode = ToneModeAuto
	}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

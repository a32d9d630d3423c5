// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayvid.dev/wayvid/internal/wire"
)

func TestResolveToneMap_DisableModeSkips(t *testing.T) {
	meta := HDRMetadata{ColorSpace: ColorSpaceHDR10, TransferFunction: TransferPQ, PeakNits: 1000}
	_, ok := ResolveToneMap(wire.HDRDisable, meta, wire.ToneMapParams{})
	assert.False(t, ok)
}

func TestResolveToneMap_AutoSkipsSDRSource(t *testing.T) {
	meta := HDRMetadata{ColorSpace: ColorSpaceSDR, TransferFunction: TransferSRGB}
	_, ok := ResolveToneMap(wire.HDRAuto, meta, wire.ToneMapParams{})
	assert.False(t, ok)
}

func TestResolveToneMap_CinemaContentPrefersHableWithHigherParam(t *testing.T) {
	meta := HDRMetadata{ColorSpace: ColorSpaceHDR10, TransferFunction: TransferPQ, PeakNits: 4000}
	params, ok := ResolveToneMap(wire.HDRAuto, meta, wire.ToneMapParams{})
	require.True(t, ok)
	assert.Equal(t, wire.ToneMapHable, params.Algorithm)
	assert.InDelta(t, 1.2, params.Param, 0.001)
	assert.InDelta(t, defaultTargetNits, params.TargetNits, 0.001)
}

// DetectContentType buckets by peak luminance alone and never yields
// ContentAnimation (a 700-nit HLG source is General content), so the
// animation preference is checked on the policy table itself.
func TestResolveToneMap_AnimationPrefersMobius(t *testing.T) {
	meta := HDRMetadata{ColorSpace: ColorSpaceHLG, TransferFunction: TransferHLG, PeakNits: 700}
	require.Equal(t, ContentGeneral, DetectContentType(meta))
	assert.Equal(t, wire.ToneMapMobius, recommendedAlgorithm(ContentAnimation))
}

func TestResolveToneMap_LowPeakFallsBackToReinhard(t *testing.T) {
	meta := HDRMetadata{ColorSpace: ColorSpaceHDR10, TransferFunction: TransferPQ, PeakNits: 300}
	params, ok := ResolveToneMap(wire.HDRAuto, meta, wire.ToneMapParams{})
	require.True(t, ok)
	assert.Equal(t, wire.ToneMapReinhard, params.Algorithm)
	assert.InDelta(t, 0.6, params.Param, 0.001)
}

func TestResolveToneMap_ExplicitOverrideWins(t *testing.T) {
	meta := HDRMetadata{ColorSpace: ColorSpaceHDR10, TransferFunction: TransferPQ, PeakNits: 4000}
	override := wire.ToneMapParams{Algorithm: wire.ToneMapClip, Param: 7}
	params, ok := ResolveToneMap(wire.HDRAuto, meta, override)
	require.True(t, ok)
	assert.Equal(t, wire.ToneMapClip, params.Algorithm)
	assert.InDelta(t, 7.0, params.Param, 0.001)
}

func TestResolveToneMap_ForceModeIgnoresSourceMetadata(t *testing.T) {
	meta := HDRMetadata{ColorSpace: ColorSpaceSDR, TransferFunction: TransferSRGB}
	_, ok := ResolveToneMap(wire.HDRForce, meta, wire.ToneMapParams{})
	assert.True(t, ok)
}

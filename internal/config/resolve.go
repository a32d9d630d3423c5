// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"github.com/gobwas/glob"
	"wayvid.dev/wayvid/internal/wire"
)

// match is one per_output entry ranked against an output name.
type match struct {
	pattern   string
	wildcards int
	override  *wire.Override
	exact     bool
}

func countWildcards(pattern string) int {
	n := 0
	for _, r := range pattern {
		if r == '*' || r == '?' {
			n++
		}
	}
	return n
}

// score ranks a matching entry: exact match scores 0; otherwise
// score = priority*10000 + wildcards*1000 - len(pattern). Lower wins;
// ties broken by fewer wildcards, then longer pattern.
func (m match) score() int {
	if m.exact {
		return 0
	}
	return m.override.Priority*10000 + m.wildcards*1000 - len(m.pattern)
}

func less(a, b match) bool {
	if a.exact != b.exact {
		return a.exact
	}
	sa, sb := a.score(), b.score()
	if sa != sb {
		return sa < sb
	}
	if a.wildcards != b.wildcards {
		return a.wildcards < b.wildcards
	}
	return len(a.pattern) > len(b.pattern)
}

// Resolver holds a compiled BaseConfig and produces EffectiveConfigs.
type Resolver struct {
	base *wire.BaseConfig
}

func NewResolver(base *wire.BaseConfig) *Resolver {
	return &Resolver{base: base}
}

// ForOutput is a pure function: for a fixed Resolver and output name
// it always returns an equal EffectiveConfig.
func (r *Resolver) ForOutput(name string) (wire.EffectiveConfig, error) {
	b := r.base
	ec := wire.EffectiveConfig{
		Output:        name,
		Source:        b.Source,
		Layout:        b.Layout,
		Loop:          b.Loop,
		StartTime:     b.StartTime,
		PlaybackRate:  b.PlaybackRate,
		Mute:          b.Mute,
		Volume:        b.Volume,
		HWDec:         b.HWDec,
		HDR:           b.HDR,
		ToneMap:       b.ToneMap,
		RenderBackend: b.RenderBackend,
		Power:         b.Power,
		FPSLimit:      b.FPSLimit,
	}

	var best *match
	for pattern, ov := range b.PerOutput {
		exact := pattern == name
		if !exact {
			g, err := glob.Compile(pattern)
			if err != nil {
				return ec, err
			}
			if !g.Match(name) {
				continue
			}
		}
		m := match{pattern: pattern, wildcards: countWildcards(pattern), override: ov, exact: exact}
		if best == nil || less(m, *best) {
			mCopy := m
			best = &mCopy
		}
	}

	if best != nil {
		ov := best.override
		if ov.Source != nil {
			ec.Source = ov.Source
		}
		if ov.Layout != nil {
			ec.Layout = *ov.Layout
		}
		if ov.StartTime != nil {
			ec.StartTime = *ov.StartTime
		}
		if ov.PlaybackRate != nil {
			ec.PlaybackRate = *ov.PlaybackRate
		}
		if ov.Mute != nil {
			ec.Mute = *ov.Mute
		}
		if ov.Volume != nil {
			ec.Volume = *ov.Volume
		}
	}

	ec.Clamp()
	return ec, nil
}

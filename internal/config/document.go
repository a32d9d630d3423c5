// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config implements config resolution: loading
// config.yaml and computing, for a given output name, the flattened
// EffectiveConfig.
package config

import (
	"fmt"

	"wayvid.dev/wayvid/internal/wire"
)

// SourceDoc is the YAML-level encoding of a wire.VideoSource: a tagged
// union discriminated by Type, since YAML has no sum types of its own.
type SourceDoc struct {
	Type     string  `yaml:"type"`
	Path     string  `yaml:"path,omitempty"`
	URL      string  `yaml:"url,omitempty"`
	Playlist []string `yaml:"playlist,omitempty"`
	FPS      float64 `yaml:"fps,omitempty"`
}

// ToWire converts a SourceDoc into the corresponding wire.VideoSource,
// canonicalizing any path/URL field.
func (s *SourceDoc) ToWire() (wire.VideoSource, error) {
	if s == nil {
		return nil, nil
	}
	switch s.Type {
	case "", "file":
		return wire.FileOnDisk{Path: wire.Canonicalize(s.Path)}, nil
	case "directory":
		return wire.Directory{Path: wire.Canonicalize(s.Path), Playlist: s.Playlist}, nil
	case "http":
		return wire.HTTPURL{URL: s.URL}, nil
	case "rtsp":
		return wire.RTSPURL{URL: s.URL}, nil
	case "pipe":
		return wire.Pipe{Path: s.Path}, nil
	case "image_sequence":
		return wire.ImageSequence{Path: wire.Canonicalize(s.Path), FPS: s.FPS}, nil
	case "scene":
		return wire.LayeredScene{ProjectPath: wire.Canonicalize(s.Path)}, nil
	case "engine_video_project":
		return wire.EngineVideoProject{ProjectPath: wire.Canonicalize(s.Path)}, nil
	default:
		return nil, fmt.Errorf("config: unknown source type %q", s.Type)
	}
}

// ToneMapDoc is the YAML encoding of wire.ToneMapParams.
type ToneMapDoc struct {
	Algorithm  string  `yaml:"algorithm,omitempty"`
	Mode       string  `yaml:"mode,omitempty"`
	Param      float64 `yaml:"param,omitempty"`
	TargetNits float64 `yaml:"target_nits,omitempty"`
}

func (t ToneMapDoc) toWire() wire.ToneMapParams {
	return wire.ToneMapParams{
		Algorithm:  wire.ToneMapAlgorithm(orDefault(t.Algorithm, string(wire.ToneMapHable))),
		Mode:       wire.ToneMapMode(orDefault(t.Mode, string(wire.ToneModeAuto))),
		Param:      t.Param,
		TargetNits: orDefaultF(t.TargetNits, 203),
	}
}

// Doc is the top-level config.yaml document (base + per_output map).
type Doc struct {
	Source        *SourceDoc            `yaml:"source,omitempty"`
	Layout        string                `yaml:"layout,omitempty"`
	Loop          bool                  `yaml:"loop,omitempty"`
	StartTime     float64               `yaml:"start_time,omitempty"`
	PlaybackRate  float64               `yaml:"playback_rate,omitempty"`
	Mute          bool                  `yaml:"mute,omitempty"`
	Volume        float64               `yaml:"volume,omitempty"`
	HWDec         string                `yaml:"hwdec,omitempty"`
	HDR           string                `yaml:"hdr,omitempty"`
	ToneMap       ToneMapDoc            `yaml:"tone_map,omitempty"`
	RenderBackend string                `yaml:"render_backend,omitempty"`
	PauseOnBattery bool                 `yaml:"pause_on_battery,omitempty"`
	FPSLimit      int                   `yaml:"fps_limit,omitempty"`
	PerOutput     map[string]*OverrideDoc `yaml:"per_output,omitempty"`
}

// OverrideDoc is one per_output entry. Pointer fields distinguish
// "absent" from "explicit zero value" for the override merge.
type OverrideDoc struct {
	Priority     int      `yaml:"priority,omitempty"`
	Source       *SourceDoc `yaml:"source,omitempty"`
	Layout       *string  `yaml:"layout,omitempty"`
	StartTime    *float64 `yaml:"start_time,omitempty"`
	PlaybackRate *float64 `yaml:"playback_rate,omitempty"`
	Mute         *bool    `yaml:"mute,omitempty"`
	Volume       *float64 `yaml:"volume,omitempty"`
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultF(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// ToWire converts the parsed document into the engine's BaseConfig.
func (d *Doc) ToWire() (*wire.BaseConfig, error) {
	src, err := d.Source.ToWire()
	if err != nil {
		return nil, err
	}
	bc := &wire.BaseConfig{
		Source:        src,
		Layout:        wire.LayoutMode(orDefault(d.Layout, string(wire.LayoutFill))),
		Loop:          d.Loop,
		StartTime:     d.StartTime,
		PlaybackRate:  orDefaultF(d.PlaybackRate, 1.0),
		Mute:          d.Mute,
		Volume:        d.Volume,
		HWDec:         wire.HWDecMode(orDefault(d.HWDec, string(wire.HWDecAuto))),
		HDR:           wire.HDRMode(orDefault(d.HDR, string(wire.HDRAuto))),
		ToneMap:       d.ToneMap.toWire(),
		RenderBackend: wire.RenderBackend(orDefault(d.RenderBackend, string(wire.BackendAuto))),
		Power:         wire.PowerPolicy{PauseOnBattery: d.PauseOnBattery},
		FPSLimit:      d.FPSLimit,
		PerOutput:     map[string]*wire.Override{},
	}
	for pat, o := range d.PerOutput {
		wo := &wire.Override{Priority: o.Priority}
		if o.Source != nil {
			ws, err := o.Source.ToWire()
			if err != nil {
				return nil, fmt.Errorf("config: per_output[%q]: %w", pat, err)
			}
			wo.Source = ws
		}
		if o.Layout != nil {
			lm := wire.LayoutMode(*o.Layout)
			wo.Layout = &lm
		}
		wo.StartTime = o.StartTime
		wo.PlaybackRate = o.PlaybackRate
		wo.Mute = o.Mute
		wo.Volume = o.Volume
		bc.PerOutput[pat] = wo
	}
	return bc, nil
}

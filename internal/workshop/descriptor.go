// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package workshop implements the Workshop Importer: mapping a
// third-party "project descriptor" JSON at an arbitrary path into a
// VideoSource and base config, plus a small cache-manifest layer for
// downloaded items.
package workshop

import (
	"encoding/json"
	"fmt"
)

// projectDoc is the JSON shape of a project descriptor (project.json).
// Mirrors the fields the original importer reads; unknown fields are
// ignored by encoding/json.
type projectDoc struct {
	Type        string                     `json:"type"`
	File        string                     `json:"file"`
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Preview     string                     `json:"preview"`
	WorkshopID  string                     `json:"workshopid"`
	Tags        []string                   `json:"tags"`
	General     struct {
		Properties map[string]json.RawMessage `json:"properties"`
	} `json:"general"`
}

// property is a heterogeneous project property: Combo(int), Slider(float),
// Bool, or Color(string). The descriptor may encode the value either as a
// bare scalar or as a {"value": ...} wrapper ("Heterogeneous per-property
// parsing"); readers try both shapes.
type property struct {
	raw json.RawMessage
}

// isObject reports whether raw's first non-whitespace byte opens a JSON
// object, i.e. the property is encoded as a {"value": ...} wrapper rather
// than a bare scalar.
func (p property) isObject() bool {
	for _, b := range p.raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}

func (p property) asFloat() (float64, bool) {
	if p.isObject() {
		var wrapped struct {
			Value float64 `json:"value"`
		}
		if err := json.Unmarshal(p.raw, &wrapped); err != nil {
			return 0, false
		}
		return wrapped.Value, true
	}
	var f float64
	if json.Unmarshal(p.raw, &f) == nil {
		return f, true
	}
	return 0, false
}

func (p property) asInt() (int64, bool) {
	f, ok := p.asFloat()
	if !ok {
		return 0, false
	}
	return int64(f), true
}

func (p property) asBool() (bool, bool) {
	if p.isObject() {
		var wrapped struct {
			Value bool `json:"value"`
		}
		if err := json.Unmarshal(p.raw, &wrapped); err != nil {
			return false, false
		}
		return wrapped.Value, true
	}
	var b bool
	if json.Unmarshal(p.raw, &b) == nil {
		return b, true
	}
	return false, false
}

func (p property) asString() (string, bool) {
	if p.isObject() {
		var wrapped struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(p.raw, &wrapped); err != nil {
			return "", false
		}
		return wrapped.Value, true
	}
	var s string
	if json.Unmarshal(p.raw, &s) == nil {
		return s, true
	}
	return "", false
}

// Properties holds the simplified set of properties extracted from a
// descriptor's general.properties map.
type Properties struct {
	Rate            float64
	Volume          float64 // 0-100, as declared by the descriptor
	PlaybackMode    int64   // 0 = loop, 1 = pause at end
	Alignment       int64   // 0 center / 1 fit / 2 fill / 3 stretch
	AudioProcessing bool
}

// DefaultProperties mirrors the original importer's defaults.
func DefaultProperties() Properties {
	return Properties{Rate: 1.0, Volume: 50.0, PlaybackMode: 0, Alignment: 1}
}

func extractProperties(raw map[string]json.RawMessage) Properties {
	p := DefaultProperties()
	if v, ok := raw["rate"]; ok {
		if f, ok := (property{v}).asFloat(); ok {
			p.Rate = f
		}
	}
	if v, ok := raw["volume"]; ok {
		if f, ok := (property{v}).asFloat(); ok {
			p.Volume = f
		}
	}
	if v, ok := raw["playbackmode"]; ok {
		if i, ok := (property{v}).asInt(); ok {
			p.PlaybackMode = i
		}
	}
	if v, ok := raw["alignment"]; ok {
		if i, ok := (property{v}).asInt(); ok {
			p.Alignment = i
		}
	}
	if v, ok := raw["audioprocessing"]; ok {
		if b, ok := (property{v}).asBool(); ok {
			p.AudioProcessing = b
		}
	}
	return p
}

// Descriptor is a parsed project.json.
type Descriptor struct {
	Title       string
	Description string
	WorkshopID  string
	Tags        []string
	FilePath    string // relative to the descriptor's directory
	Properties  Properties
}

// ErrUnsupportedType is returned when a descriptor names a project type
// other than "video".
type ErrUnsupportedType struct{ Type string }

func (e *ErrUnsupportedType) Error() string {
	return fmt.Sprintf("workshop: unsupported project type %q (wayvid only imports type=\"video\")", e.Type)
}

// ParseDescriptor decodes a project.json's raw bytes into a Descriptor,
// rejecting anything that isn't a video project.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var doc projectDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("workshop: parsing project descriptor: %w", err)
	}
	if doc.Type != "video" {
		return nil, &ErrUnsupportedType{Type: doc.Type}
	}
	if doc.File == "" {
		return nil, fmt.Errorf("workshop: project descriptor has no \"file\" field")
	}
	return &Descriptor{
		Title:       doc.Title,
		Description: doc.Description,
		WorkshopID:  doc.WorkshopID,
		Tags:        doc.Tags,
		FilePath:    doc.File,
		Properties:  extractProperties(doc.General.Properties),
	}, nil
}

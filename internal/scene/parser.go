// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AlignMode is the 9-point alignment enum for Image scene objects.
type AlignMode string

const (
	AlignCenter      AlignMode = "center"
	AlignTopLeft     AlignMode = "top_left"
	AlignTop         AlignMode = "top"
	AlignTopRight    AlignMode = "top_right"
	AlignLeft        AlignMode = "left"
	AlignRight       AlignMode = "right"
	AlignBottomLeft  AlignMode = "bottom_left"
	AlignBottom      AlignMode = "bottom"
	AlignBottomRight AlignMode = "bottom_right"
)

// BlendMode maps to the obvious glBlendFunc pairs.
type BlendMode string

const (
	BlendNormal   BlendMode = "normal"
	BlendAdditive BlendMode = "additive"
	BlendMultiply BlendMode = "multiply"
	BlendScreen   BlendMode = "screen"
	BlendOverlay  BlendMode = "overlay" // falls back to BlendNormal at draw time
)

// Vec2 / Vec3 / Color are the value types used across scene objects.
type Vec2 struct{ X, Y float64 }
type Vec3 struct{ X, Y, Z float64 }
type Color struct{ R, G, B, A float64 }

// Camera / Projection / General mirror the scene document fields.
type Camera struct {
	Position Vec3
	Rotation Vec3
}

type Projection struct {
	Width  int
	Height int
}

type General struct {
	Background Color
	Near       float64
	Far        float64
	Zoom       float64
}

// ImagePayload is the variant payload for image SceneObjects.
type ImagePayload struct {
	TexturePath string
	Size        Vec2
	Alignment   AlignMode
	Alpha       float64
	Tint        Color
	Blend       BlendMode
	Fullscreen  bool
	Autosize    bool
}

// ParticlePayload is an out-of-scope stub.
type ParticlePayload struct{}

// SoundPayload is parsed but never rendered.
type SoundPayload struct {
	Path string
}

// ObjectKind discriminates a SceneObject's variant payload.
type ObjectKind int

const (
	KindImage ObjectKind = iota
	KindParticle
	KindSound
	KindUnknown
)

// SceneObject is one entry of the layered composition.
type SceneObject struct {
	ID       int
	Name     string
	Visible  bool
	Origin   Vec3
	Scale    Vec3
	Angles   Vec3
	Parallax float64

	Kind     ObjectKind
	Image    *ImagePayload
	Particle *ParticlePayload
	Sound    *SoundPayload
}

// Scene is the fully parsed layered-scene tree.
type Scene struct {
	Camera     Camera
	Projection Projection
	General    General
	Objects    []SceneObject // ascending id order
}

// settingWrapper unifies a raw JSON value with an authoring-tool
// "{ value: ... }" wrapper.
type settingWrapper struct {
	Value json.RawMessage `json:"value"`
}

func unwrapSetting(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return raw
	}
	var w settingWrapper
	if err := json.Unmarshal(raw, &w); err == nil && len(w.Value) > 0 {
		return w.Value
	}
	return raw
}

func settingFloat(raw json.RawMessage, def float64) float64 {
	v := unwrapSetting(raw)
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return def
	}
	return f
}

func settingBool(raw json.RawMessage, def bool) bool {
	v := unwrapSetting(raw)
	var b bool
	if err := json.Unmarshal(v, &b); err != nil {
		return def
	}
	return b
}

func settingVec3(raw json.RawMessage, def Vec3) Vec3 {
	v := unwrapSetting(raw)
	var arr [3]float64
	if err := json.Unmarshal(v, &arr); err == nil {
		return Vec3{arr[0], arr[1], arr[2]}
	}
	var obj struct{ X, Y, Z float64 }
	if err := json.Unmarshal(v, &obj); err == nil {
		return Vec3{obj.X, obj.Y, obj.Z}
	}
	// Authoring tools also store vectors as space-separated strings
	// ("0.8 0.2 1").
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if fields := strings.Fields(s); len(fields) == 3 {
			var out Vec3
			var ok = true
			for i, f := range fields {
				fv, err := strconv.ParseFloat(f, 64)
				if err != nil {
					ok = false
					break
				}
				switch i {
				case 0:
					out.X = fv
				case 1:
					out.Y = fv
				case 2:
					out.Z = fv
				}
			}
			if ok {
				return out
			}
		}
	}
	return def
}

func settingVec2(raw json.RawMessage, def Vec2) Vec2 {
	v := unwrapSetting(raw)
	var arr [2]float64
	if err := json.Unmarshal(v, &arr); err == nil {
		return Vec2{arr[0], arr[1]}
	}
	var obj struct{ X, Y float64 }
	if err := json.Unmarshal(v, &obj); err == nil {
		return Vec2{obj.X, obj.Y}
	}
	return def
}

func settingString(raw json.RawMessage, def string) string {
	v := unwrapSetting(raw)
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return def
	}
	return s
}

// rawSceneObject is the JSON shape of one scene object entry before
// dispatch on its variant payload.
type rawSceneObject struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Visible  json.RawMessage `json:"visible"`
	Origin   json.RawMessage `json:"origin"`
	Scale    json.RawMessage `json:"scale"`
	Angles   json.RawMessage `json:"angles"`
	Parallax json.RawMessage `json:"parallaxDepth"`

	Image    json.RawMessage `json:"image"`
	Particle json.RawMessage `json:"particle"`
	Sound    json.RawMessage `json:"sound"`
}

type rawImage struct {
	Image      json.RawMessage `json:"image"`
	Size       json.RawMessage `json:"size"`
	Alignment  json.RawMessage `json:"alignment"`
	Alpha      json.RawMessage `json:"alpha"`
	Color      json.RawMessage `json:"color"`
	BlendMode  json.RawMessage `json:"blendMode"`
	Fullscreen json.RawMessage `json:"fullscreen"`
	Autosize   json.RawMessage `json:"autosize"`
}

type rawSound struct {
	Sound json.RawMessage `json:"sound"`
}

var alignmentByIndex = []AlignMode{
	AlignCenter, AlignTopLeft, AlignTop, AlignTopRight,
	AlignLeft, AlignRight, AlignBottomLeft, AlignBottom, AlignBottomRight,
}

var blendByIndex = []BlendMode{BlendNormal, BlendAdditive, BlendMultiply, BlendScreen, BlendOverlay}

func decodeAlignment(raw json.RawMessage) AlignMode {
	v := unwrapSetting(raw)
	var idx int
	if err := json.Unmarshal(v, &idx); err == nil && idx >= 0 && idx < len(alignmentByIndex) {
		return alignmentByIndex[idx]
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil && s != "" {
		return AlignMode(s)
	}
	return AlignCenter
}

func decodeBlend(raw json.RawMessage) BlendMode {
	v := unwrapSetting(raw)
	var idx int
	if err := json.Unmarshal(v, &idx); err == nil && idx >= 0 && idx < len(blendByIndex) {
		return blendByIndex[idx]
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil && s != "" {
		return BlendMode(s)
	}
	return BlendNormal
}

// ParseScene parses a scene JSON document's raw bytes, resolving texture
// paths relative to projectDir via assets.
func ParseScene(raw []byte, projectDir string, assets FileSource) (*Scene, error) {
	var doc struct {
		Camera struct {
			Position json.RawMessage `json:"position"`
			Rotation json.RawMessage `json:"rotation"`
		} `json:"camera"`
		Orthogonal struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"orthogonalProjection"`
		General struct {
			ClearColor json.RawMessage `json:"clearColor"`
			Near       json.RawMessage `json:"nearZ"`
			Far        json.RawMessage `json:"farZ"`
			Zoom       json.RawMessage `json:"zoom"`
		} `json:"general"`
		Objects []rawSceneObject `json:"objects"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("scene: parsing scene document: %w", err)
	}

	sc := &Scene{
		Camera: Camera{
			Position: settingVec3(doc.Camera.Position, Vec3{}),
			Rotation: settingVec3(doc.Camera.Rotation, Vec3{}),
		},
		Projection: Projection{Width: doc.Orthogonal.Width, Height: doc.Orthogonal.Height},
		General: General{
			Background: backgroundFromSetting(doc.General.ClearColor),
			Near:       settingFloat(doc.General.Near, 0),
			Far:        settingFloat(doc.General.Far, 1000),
			Zoom:       settingFloat(doc.General.Zoom, 1),
		},
	}

	for _, ro := range doc.Objects {
		obj := SceneObject{
			ID:       ro.ID,
			Name:     ro.Name,
			Visible:  settingBool(ro.Visible, true),
			Origin:   settingVec3(ro.Origin, Vec3{}),
			Scale:    settingVec3(ro.Scale, Vec3{X: 1, Y: 1, Z: 1}),
			Angles:   settingVec3(ro.Angles, Vec3{}),
			Parallax: settingFloat(ro.Parallax, 0),
		}
		switch {
		case len(ro.Image) > 0:
			obj.Kind = KindImage
			var ri rawImage
			if err := json.Unmarshal(ro.Image, &ri); err != nil {
				return nil, fmt.Errorf("scene: object %d: parsing image payload: %w", ro.ID, err)
			}
			texPath, err := resolveTexturePath(projectDir, settingString(ri.Image, ""), assets)
			if err != nil {
				texPath = ""
			}
			obj.Image = &ImagePayload{
				TexturePath: texPath,
				Size:        settingVec2(ri.Size, Vec2{}),
				Alignment:   decodeAlignment(ri.Alignment),
				Alpha:       settingFloat(ri.Alpha, 1),
				Tint:        colorFromSetting(ri.Color),
				Blend:       decodeBlend(ri.BlendMode),
				Fullscreen:  settingBool(ri.Fullscreen, false),
				Autosize:    settingBool(ri.Autosize, false),
			}
		case len(ro.Particle) > 0:
			obj.Kind = KindParticle
			obj.Particle = &ParticlePayload{}
		case len(ro.Sound) > 0:
			obj.Kind = KindSound
			var rs rawSound
			_ = json.Unmarshal(ro.Sound, &rs)
			obj.Sound = &SoundPayload{Path: settingString(rs.Sound, "")}
		default:
			obj.Kind = KindUnknown
		}
		sc.Objects = append(sc.Objects, obj)
	}
	sortObjectsByID(sc.Objects)
	return sc, nil
}

func colorFromSetting(raw json.RawMessage) Color {
	v := settingVec3(raw, Vec3{1, 1, 1})
	return Color{R: v.X, G: v.Y, B: v.Z, A: 1}
}

// backgroundFromSetting defaults the clear color to black, unlike
// object tints which default to white.
func backgroundFromSetting(raw json.RawMessage) Color {
	v := settingVec3(raw, Vec3{})
	return Color{R: v.X, G: v.Y, B: v.Z, A: 1}
}

// sortObjectsByID enforces ascending id = render order.
func sortObjectsByID(objs []SceneObject) {
	for i := 1; i < len(objs); i++ {
		for j := i; j > 0 && objs[j].ID < objs[j-1].ID; j-- {
			objs[j], objs[j-1] = objs[j-1], objs[j]
		}
	}
}

// FileSource abstracts reading a named asset either from a scene.pkg
// container or from the filesystem.
type FileSource interface {
	ReadFile(name string) ([]byte, error)
	HasFile(name string) bool
}

// dirSource reads directly from a project directory.
type dirSource struct{ root string }

func (d dirSource) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(d.root, name))
}

func (d dirSource) HasFile(name string) bool {
	_, err := os.Stat(filepath.Join(d.root, name))
	return err == nil
}

// pkgSource reads virtual files from a PKG container.
type pkgSource struct{ c *Container }

func (p pkgSource) ReadFile(name string) ([]byte, error) { return p.c.Read(name) }
func (p pkgSource) HasFile(name string) bool              { return p.c.Exists(name) }

// NewFileSource picks a pkgSource when scene.pkg exists alongside
// projectDir, falling back to the filesystem otherwise.
func NewFileSource(projectDir string) (FileSource, error) {
	pkgPath := filepath.Join(projectDir, "scene.pkg")
	if _, err := os.Stat(pkgPath); err == nil {
		f, err := os.Open(pkgPath)
		if err != nil {
			return nil, fmt.Errorf("scene: opening scene.pkg: %w", err)
		}
		c, err := Open(f)
		if err != nil {
			return nil, err
		}
		return pkgSource{c: c}, nil
	}
	return dirSource{root: projectDir}, nil
}

var candidateExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".tex"}

// resolveTexturePath resolves a texture in three steps:
// follow a material file's first pass texture, probe common
// extensions against the image stem, or scan materials/.
func resolveTexturePath(projectDir, imageField string, assets FileSource) (string, error) {
	if imageField == "" {
		return "", fmt.Errorf("scene: empty image field")
	}
	if strings.HasSuffix(imageField, ".json") || strings.Contains(imageField, "material") {
		if data, err := assets.ReadFile(imageField); err == nil {
			if p := firstTextureFromMaterial(data); p != "" {
				return p, nil
			}
		}
	}
	stem := strings.TrimSuffix(imageField, filepath.Ext(imageField))
	for _, ext := range candidateExtensions {
		candidate := stem + ext
		if assets.HasFile(candidate) {
			return candidate, nil
		}
	}
	for _, ext := range candidateExtensions {
		candidate := filepath.Join("materials", filepath.Base(stem)+ext)
		if assets.HasFile(candidate) {
			return candidate, nil
		}
	}
	return imageField, nil
}

// firstTextureFromMaterial parses a minimal "{ passes: [{ textures:
// [...] }] }" material document and returns its first texture.
func firstTextureFromMaterial(data []byte) string {
	var mat struct {
		Passes []struct {
			Textures []string `json:"textures"`
		} `json:"passes"`
	}
	if err := json.Unmarshal(data, &mat); err != nil {
		return ""
	}
	if len(mat.Passes) == 0 || len(mat.Passes[0].Textures) == 0 {
		return ""
	}
	return mat.Passes[0].Textures[0]
}

// ProjectDoc is the top-level project.json descriptor for a scene
// project.
type ProjectDoc struct {
	Type      string `json:"type"`
	SceneFile string `json:"scene,omitempty"`
}

const sceneProjectType = "scene"

// LoadProject reads project.json from dir and the scene document it
// names, returning the parsed Scene.
func LoadProject(dir string) (*Scene, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "project.json"))
	if err != nil {
		return nil, fmt.Errorf("scene: reading project.json: %w", err)
	}
	var doc ProjectDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("scene: parsing project.json: %w", err)
	}
	if doc.Type != sceneProjectType {
		return nil, fmt.Errorf("scene: project type %q is not %q", doc.Type, sceneProjectType)
	}
	sceneFile := doc.SceneFile
	if sceneFile == "" {
		sceneFile = "scene.json"
	}

	assets, err := NewFileSource(dir)
	if err != nil {
		return nil, err
	}
	sceneRaw, err := assets.ReadFile(sceneFile)
	if err != nil {
		return nil, fmt.Errorf("scene: reading %s: %w", sceneFile, err)
	}
	return ParseScene(sceneRaw, dir, assets)
}

// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import "math"

// RenderRect is the computed screen-space placement of one Image object
//.
type RenderRect struct {
	X, Y          float64
	Width, Height float64
}

// Mat3 is a 2D affine transform in row-major order: translate * rotateZ
// * scale.
type Mat3 [9]float64

// Identity3 returns the identity transform.
func Identity3() Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

func mul3(a, b Mat3) Mat3 {
	var r Mat3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += a[row*3+k] * b[k*3+col]
			}
			r[row*3+col] = sum
		}
	}
	return r
}

func translate3(x, y float64) Mat3 {
	return Mat3{1, 0, x, 0, 1, y, 0, 0, 1}
}

func rotateZ3(radians float64) Mat3 {
	c, s := math.Cos(radians), math.Sin(radians)
	return Mat3{c, -s, 0, s, c, 0, 0, 0, 1}
}

func scale3(sx, sy float64) Mat3 {
	return Mat3{sx, 0, 0, 0, sy, 0, 0, 0, 1}
}

// BuildTransform computes translate * rotateZ(angleZDegrees) * scale for
// one object: Translate * RotateZ * Scale.
func BuildTransform(x, y, angleZDegrees, sx, sy float64) Mat3 {
	t := translate3(x, y)
	r := rotateZ3(angleZDegrees * math.Pi / 180)
	s := scale3(sx, sy)
	return mul3(mul3(t, r), s)
}

// Mul composes two transforms, returning m applied after n (matrix
// product m*n). Callers combine BuildTransform's object-space transform
// with a target's pixel-to-clip mapping this way before handing the
// result to a GPU draw call.
func (m Mat3) Mul(n Mat3) Mat3 { return mul3(m, n) }

// Apply transforms the point (x, y) by m, treating it as a homogeneous
// column vector (x, y, 1).
func (m Mat3) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// Invert returns m's inverse; ok is false for a singular matrix. Used to
// map screen pixels back into an object's unit square, e.g. by a
// software compositor that cannot bind m as a vertex-shader uniform.
func (m Mat3) Invert() (Mat3, bool) {
	det := m[0]*(m[4]*m[8]-m[5]*m[7]) - m[1]*(m[3]*m[8]-m[5]*m[6]) + m[2]*(m[3]*m[7]-m[4]*m[6])
	if det == 0 {
		return Mat3{}, false
	}
	inv := 1 / det
	return Mat3{
		(m[4]*m[8] - m[5]*m[7]) * inv,
		(m[2]*m[7] - m[1]*m[8]) * inv,
		(m[1]*m[5] - m[2]*m[4]) * inv,
		(m[5]*m[6] - m[3]*m[8]) * inv,
		(m[0]*m[8] - m[2]*m[6]) * inv,
		(m[2]*m[3] - m[0]*m[5]) * inv,
		(m[3]*m[7] - m[4]*m[6]) * inv,
		(m[1]*m[6] - m[0]*m[7]) * inv,
		(m[0]*m[4] - m[1]*m[3]) * inv,
	}, true
}

// alignmentOffset returns the (dx, dy) fraction-of-size offset applied
// for each of the 9 alignment points, where (0,0) is top-left.
func alignmentOffset(a AlignMode) (dx, dy float64) {
	switch a {
	case AlignTopLeft:
		return 0, 0
	case AlignTop:
		return -0.5, 0
	case AlignTopRight:
		return -1, 0
	case AlignLeft:
		return 0, -0.5
	case AlignCenter:
		return -0.5, -0.5
	case AlignRight:
		return -1, -0.5
	case AlignBottomLeft:
		return 0, -1
	case AlignBottom:
		return -0.5, -1
	case AlignBottomRight:
		return -1, -1
	default:
		return -0.5, -0.5
	}
}

// ComputeRenderRect computes the size and position of one
// visible Image object. outputW/outputH are the render target's pixel
// dimensions (used for Fullscreen); textureW/textureH are the source
// texture's pixel dimensions (used for Autosize).
func ComputeRenderRect(obj SceneObject, projW, projH, outputW, outputH, textureW, textureH float64) RenderRect {
	img := obj.Image
	var w, h float64
	switch {
	case img.Fullscreen:
		w, h = outputW, outputH
	case img.Autosize:
		w, h = textureW*obj.Scale.X, textureH*obj.Scale.Y
	default:
		w, h = img.Size.X*obj.Scale.X, img.Size.Y*obj.Scale.Y
	}

	// Scene authoring origin is center-based with Y-up; render space is
	// top-left origin with Y-down.
	centerX := projW/2 + obj.Origin.X
	centerY := projH/2 - obj.Origin.Y

	dx, dy := alignmentOffset(img.Alignment)
	x := centerX + dx*w
	y := centerY + dy*h

	return RenderRect{X: x, Y: y, Width: w, Height: h}
}

// Renderer drives the orthographic composition of a Scene.
type Renderer struct {
	Scene   *Scene
	clock   float64
}

func NewRenderer(sc *Scene) *Renderer {
	return &Renderer{Scene: sc}
}

// Update advances the internal clock; reserved for future animated
// material parameters; currently nothing beyond the clock itself
// changes.
func (r *Renderer) Update(dt float64) {
	r.clock += dt
}

// Clock returns the accumulated scene time in seconds.
func (r *Renderer) Clock() float64 { return r.clock }

// VisibleImages returns the Image objects to draw, in ascending-id
// (back-to-front) order.
func (r *Renderer) VisibleImages() []SceneObject {
	var out []SceneObject
	for _, o := range r.Scene.Objects {
		if o.Kind == KindImage && o.Visible {
			out = append(out, o)
		}
	}
	return out
}

// GLBlendFunc returns the (src, dst) blend factor pair an OpenGL caller
// should use for the given mode; Overlay falls back to Normal.
func GLBlendFunc(mode BlendMode) (src, dst string) {
	switch mode {
	case BlendAdditive:
		return "GL_SRC_ALPHA", "GL_ONE"
	case BlendMultiply:
		return "GL_DST_COLOR", "GL_ZERO"
	case BlendScreen:
		return "GL_ONE", "GL_ONE_MINUS_SRC_COLOR"
	default: // BlendNormal, BlendOverlay
		return "GL_SRC_ALPHA", "GL_ONE_MINUS_SRC_ALPHA"
	}
}

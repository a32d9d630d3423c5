// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// BeginFrame/DrawSprite for the Vulkan target: since this backend
// deliberately carries no textured-quad graphics pipeline
// (vulkan_upload.go), a Scene Renderer frame is instead
// rasterized in Go onto composeBuf — honoring the same transform and
// glBlendFunc-style blend pair an OpenGL caller would hand to the GPU
// (opengl_sprite.go) — and flushed through the existing buffer-to-image
// copy (vulkan_upload.go's recordCopy) the first time SwapBuffers is
// called after a dirty BeginFrame, so callers never branch on backend.

package gpux

func (t *vulkanTarget) BeginFrame(r, g, b, a float32) error {
	if t.destroyed {
		return ErrTargetDestroyed
	}
	w, h := int(t.extent.Width), int(t.extent.Height)
	need := w * h * 4
	if cap(t.composeBuf) < need {
		t.composeBuf = make([]byte, need)
	} else {
		t.composeBuf = t.composeBuf[:need]
	}
	rb, gb, bb, ab := clamp255(r), clamp255(g), clamp255(b), clamp255(a)
	for i := 0; i < w*h; i++ {
		t.composeBuf[i*4+0] = rb
		t.composeBuf[i*4+1] = gb
		t.composeBuf[i*4+2] = bb
		t.composeBuf[i*4+3] = ab
	}
	t.composeDirty = true
	return nil
}

func (t *vulkanTarget) DrawSprite(pix []byte, texW, texH int, transform [9]float64, alpha float64, blendSrc, blendDst string) error {
	if t.destroyed {
		return ErrTargetDestroyed
	}
	if len(pix) < texW*texH*4 {
		return nil
	}
	w, h := int(t.extent.Width), int(t.extent.Height)
	if len(t.composeBuf) < w*h*4 {
		if err := t.BeginFrame(0, 0, 0, 1); err != nil {
			return err
		}
	}
	inv, ok := mat3Invert(transform)
	if !ok {
		return nil
	}

	minX, minY, maxX, maxY := spriteBounds(transform, w, h)
	for py := minY; py < maxY; py++ {
		clipY := pixelToClipY(py, h)
		for px := minX; px < maxX; px++ {
			clipX := pixelToClipX(px, w)
			ux, uy := mat3Apply(inv, clipX, clipY)
			if ux < -1 || ux > 1 || uy < -1 || uy > 1 {
				continue
			}
			u := (ux + 1) / 2
			v := (1 - uy) / 2
			tx := clampInt(int(u*float64(texW)), 0, texW-1)
			ty := clampInt(int(v*float64(texH)), 0, texH-1)
			si := (ty*texW + tx) * 4
			srcA := (float64(pix[si+3]) / 255) * alpha
			src := [3]float64{float64(pix[si]) / 255, float64(pix[si+1]) / 255, float64(pix[si+2]) / 255}

			di := (py*w + px) * 4
			dst := [3]float64{float64(t.composeBuf[di]) / 255, float64(t.composeBuf[di+1]) / 255, float64(t.composeBuf[di+2]) / 255}
			out := blendRGB(blendSrc, blendDst, src, dst, srcA)
			t.composeBuf[di+0] = clamp255f(out[0])
			t.composeBuf[di+1] = clamp255f(out[1])
			t.composeBuf[di+2] = clamp255f(out[2])
		}
	}
	return nil
}

// blendRGB approximates the four (src, dst) glBlendFunc pairs
// GLBlendFunc can return, matching the fixed-function GL blend
// equation out = src*srcFactor + dst*dstFactor.
func blendRGB(blendSrc, blendDst string, src, dst [3]float64, srcA float64) [3]float64 {
	switch {
	case blendSrc == "GL_SRC_ALPHA" && blendDst == "GL_ONE":
		return [3]float64{src[0]*srcA + dst[0], src[1]*srcA + dst[1], src[2]*srcA + dst[2]}
	case blendSrc == "GL_DST_COLOR" && blendDst == "GL_ZERO":
		return [3]float64{src[0] * dst[0], src[1] * dst[1], src[2] * dst[2]}
	case blendSrc == "GL_ONE" && blendDst == "GL_ONE_MINUS_SRC_COLOR":
		return [3]float64{src[0] + dst[0]*(1-src[0]), src[1] + dst[1]*(1-src[1]), src[2] + dst[2]*(1-src[2])}
	default: // GL_SRC_ALPHA, GL_ONE_MINUS_SRC_ALPHA
		inv := 1 - srcA
		return [3]float64{src[0]*srcA + dst[0]*inv, src[1]*srcA + dst[1]*inv, src[2]*srcA + dst[2]*inv}
	}
}

// spriteBounds returns the pixel-space bounding box (clamped to the
// target) of transform's unit quad, so DrawSprite only walks the
// pixels a sprite can possibly cover.
func spriteBounds(transform [9]float64, w, h int) (minX, minY, maxX, maxY int) {
	minPX, minPY := float64(w), float64(h)
	maxPX, maxPY := 0.0, 0.0
	for _, c := range [4][2]float64{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
		clipX, clipY := mat3Apply(transform, c[0], c[1])
		px := (clipX + 1) / 2 * float64(w)
		py := (1 - clipY) / 2 * float64(h)
		if px < minPX {
			minPX = px
		}
		if px > maxPX {
			maxPX = px
		}
		if py < minPY {
			minPY = py
		}
		if py > maxPY {
			maxPY = py
		}
	}
	minX = clampInt(int(minPX), 0, w)
	minY = clampInt(int(minPY), 0, h)
	maxX = clampInt(int(maxPX)+1, 0, w)
	maxY = clampInt(int(maxPY)+1, 0, h)
	return
}

func pixelToClipX(px, w int) float64 { return 2*(float64(px)+0.5)/float64(w) - 1 }
func pixelToClipY(py, h int) float64 { return 1 - 2*(float64(py)+0.5)/float64(h) }

func mat3Apply(m [9]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

func mat3Invert(m [9]float64) ([9]float64, bool) {
	det := m[0]*(m[4]*m[8]-m[5]*m[7]) - m[1]*(m[3]*m[8]-m[5]*m[6]) + m[2]*(m[3]*m[7]-m[4]*m[6])
	if det == 0 {
		return [9]float64{}, false
	}
	inv := 1 / det
	return [9]float64{
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

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp255(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v * 255)
}

func clamp255f(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v * 255)
}

// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

// LoadTexture resolves one Image object's texture (as already located
// by resolveTexturePath) into tightly-packed RGBA8 pixels: the custom
// ".tex" container via DecodeTexture's base mip, or any other
// candidateExtensions format via the standard image registry.
func LoadTexture(assets FileSource, path string) (pix []byte, w, h int, err error) {
	data, err := assets.ReadFile(path)
	if err != nil {
		return nil, 0, 0, err
	}
	if strings.HasSuffix(strings.ToLower(path), ".tex") {
		tex, err := DecodeTexture(data)
		if err != nil {
			return nil, 0, 0, err
		}
		if len(tex.Mipmaps) == 0 {
			return nil, 0, 0, fmt.Errorf("scene: texture %q has no mip levels", path)
		}
		base := tex.Mipmaps[0]
		return base.RGBA, base.Width, base.Height, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("scene: decoding image %q: %w", path, err)
	}
	return rgbaBytes(img)
}

// rgbaBytes converts a decoded image.Image into tightly-packed RGBA8,
// regardless of its native color model.
func rgbaBytes(img image.Image) ([]byte, int, int, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, w*h*4)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			out[i+0] = byte(r >> 8)
			out[i+1] = byte(g >> 8)
			out[i+2] = byte(bl >> 8)
			out[i+3] = byte(a >> 8)
			i += 4
		}
	}
	return out, w, h, nil
}

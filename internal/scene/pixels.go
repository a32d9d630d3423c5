// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

// decodePixels converts a raw mip payload in the given PixelFormat into
// tightly-packed RGBA8. ok is false for formats this decoder does not
// (yet) support, in which case the caller substitutes a placeholder
//.
func decodePixels(f PixelFormat, w, h int, raw []byte) (rgba []byte, ok bool) {
	switch f {
	case FormatARGB8888:
		return decodeARGB8888(w, h, raw)
	case FormatRGB888:
		return decodeRGB888(w, h, raw)
	case FormatRGB565:
		return decodeRGB565(w, h, raw)
	case FormatR8:
		return decodeR8(w, h, raw)
	case FormatRG88:
		return decodeRG88(w, h, raw)
	case FormatDXT1:
		return decodeDXT1(w, h, raw)
	case FormatDXT3:
		return decodeDXT3(w, h, raw)
	case FormatDXT5:
		return decodeDXT5(w, h, raw)
	default:
		return nil, false
	}
}

// placeholderRGBA returns the substitute image for an unsupported
// format: magenta for BC7 (visibly wrong so the gap is obvious), opaque
// gray for anything else unsupported.
func placeholderRGBA(f PixelFormat, w, h int) []byte {
	out := make([]byte, w*h*4)
	r, g, b := byte(128), byte(128), byte(128)
	if f == FormatBC7 {
		r, g, b = 255, 0, 255
	}
	for i := 0; i < w*h; i++ {
		out[i*4+0] = r
		out[i*4+1] = g
		out[i*4+2] = b
		out[i*4+3] = 255
	}
	return out
}

func decodeARGB8888(w, h int, raw []byte) ([]byte, bool) {
	if len(raw) < w*h*4 {
		return nil, false
	}
	out := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		a, r, g, b := raw[i*4+0], raw[i*4+1], raw[i*4+2], raw[i*4+3]
		out[i*4+0] = r
		out[i*4+1] = g
		out[i*4+2] = b
		out[i*4+3] = a
	}
	return out, true
}

func decodeRGB888(w, h int, raw []byte) ([]byte, bool) {
	if len(raw) < w*h*3 {
		return nil, false
	}
	out := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		out[i*4+0] = raw[i*3+0]
		out[i*4+1] = raw[i*3+1]
		out[i*4+2] = raw[i*3+2]
		out[i*4+3] = 255
	}
	return out, true
}

func decodeRGB565(w, h int, raw []byte) ([]byte, bool) {
	if len(raw) < w*h*2 {
		return nil, false
	}
	out := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		v := uint16(raw[i*2]) | uint16(raw[i*2+1])<<8
		r5 := (v >> 11) & 0x1F
		g6 := (v >> 5) & 0x3F
		b5 := v & 0x1F
		out[i*4+0] = byte(r5<<3 | r5>>2)
		out[i*4+1] = byte(g6<<2 | g6>>4)
		out[i*4+2] = byte(b5<<3 | b5>>2)
		out[i*4+3] = 255
	}
	return out, true
}

func decodeR8(w, h int, raw []byte) ([]byte, bool) {
	if len(raw) < w*h {
		return nil, false
	}
	out := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		g := raw[i]
		out[i*4+0] = g
		out[i*4+1] = g
		out[i*4+2] = g
		out[i*4+3] = 255
	}
	return out, true
}

func decodeRG88(w, h int, raw []byte) ([]byte, bool) {
	if len(raw) < w*h*2 {
		return nil, false
	}
	out := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		out[i*4+0] = raw[i*2+0]
		out[i*4+1] = raw[i*2+1]
		out[i*4+2] = 0
		out[i*4+3] = 255
	}
	return out, true
}

// rgb565ToRGB unpacks a 16-bit 5-6-5 color into 8-bit components, used
// by the DXT endpoint decoders.
func rgb565ToRGB(v uint16) (r, g, b byte) {
	r5 := (v >> 11) & 0x1F
	g6 := (v >> 5) & 0x3F
	b5 := v & 0x1F
	return byte(r5<<3 | r5>>2), byte(g6<<2 | g6>>4), byte(b5<<3 | b5>>2)
}

func writeBlock(out []byte, w, h, bx, by int, pixels [16][4]byte) {
	for py := 0; py < 4; py++ {
		y := by*4 + py
		if y >= h {
			continue
		}
		for px := 0; px < 4; px++ {
			x := bx*4 + px
			if x >= w {
				continue
			}
			p := pixels[py*4+px]
			off := (y*w + x) * 4
			out[off+0] = p[0]
			out[off+1] = p[1]
			out[off+2] = p[2]
			out[off+3] = p[3]
		}
	}
}

func decodeDXT1(w, h int, raw []byte) ([]byte, bool) {
	bw, bh := (w+3)/4, (h+3)/4
	if len(raw) < bw*bh*8 {
		return nil, false
	}
	out := make([]byte, w*h*4)
	off := 0
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			c0 := uint16(raw[off]) | uint16(raw[off+1])<<8
			c1 := uint16(raw[off+2]) | uint16(raw[off+3])<<8
			idxBits := uint32(raw[off+4]) | uint32(raw[off+5])<<8 | uint32(raw[off+6])<<16 | uint32(raw[off+7])<<24
			off += 8

			r0, g0, b0 := rgb565ToRGB(c0)
			r1, g1, b1 := rgb565ToRGB(c1)

			var palette [4][4]byte
			palette[0] = [4]byte{r0, g0, b0, 255}
			palette[1] = [4]byte{r1, g1, b1, 255}
			if c0 > c1 {
				palette[2] = [4]byte{
					byte((2*int(r0) + int(r1)) / 3),
					byte((2*int(g0) + int(g1)) / 3),
					byte((2*int(b0) + int(b1)) / 3),
					255,
				}
				palette[3] = [4]byte{
					byte((int(r0) + 2*int(r1)) / 3),
					byte((int(g0) + 2*int(g1)) / 3),
					byte((int(b0) + 2*int(b1)) / 3),
					255,
				}
			} else {
				palette[2] = [4]byte{
					byte((int(r0) + int(r1)) / 2),
					byte((int(g0) + int(g1)) / 2),
					byte((int(b0) + int(b1)) / 2),
					255,
				}
				palette[3] = [4]byte{0, 0, 0, 0} // transparent black
			}

			var pixels [16][4]byte
			for i := 0; i < 16; i++ {
				sel := (idxBits >> uint(i*2)) & 0x3
				pixels[i] = palette[sel]
			}
			writeBlock(out, w, h, bx, by, pixels)
		}
	}
	return out, true
}

func decodeDXT3(w, h int, raw []byte) ([]byte, bool) {
	bw, bh := (w+3)/4, (h+3)/4
	if len(raw) < bw*bh*16 {
		return nil, false
	}
	out := make([]byte, w*h*4)
	off := 0
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			alphaBits := raw[off : off+8]
			colorBlock := raw[off+8 : off+16]
			off += 16

			rgb, _ := decodeDXT1ColorBlock(colorBlock)

			var pixels [16][4]byte
			for i := 0; i < 16; i++ {
				nibble := (alphaBits[i/2] >> uint((i%2)*4)) & 0xF
				a := nibble<<4 | nibble
				pixels[i] = [4]byte{rgb[i][0], rgb[i][1], rgb[i][2], a}
			}
			writeBlock(out, w, h, bx, by, pixels)
		}
	}
	return out, true
}

func decodeDXT5(w, h int, raw []byte) ([]byte, bool) {
	bw, bh := (w+3)/4, (h+3)/4
	if len(raw) < bw*bh*16 {
		return nil, false
	}
	out := make([]byte, w*h*4)
	off := 0
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			alpha0 := raw[off]
			alpha1 := raw[off+1]
			alphaIdxBits := uint64(0)
			for i := 0; i < 6; i++ {
				alphaIdxBits |= uint64(raw[off+2+i]) << uint(i*8)
			}
			colorBlock := raw[off+8 : off+16]
			off += 16

			var alphaPalette [8]byte
			alphaPalette[0] = alpha0
			alphaPalette[1] = alpha1
			if alpha0 > alpha1 {
				for i := 1; i <= 6; i++ {
					alphaPalette[1+i] = byte((int(7-i)*int(alpha0) + int(i)*int(alpha1)) / 7)
				}
			} else {
				for i := 1; i <= 4; i++ {
					alphaPalette[1+i] = byte((int(5-i)*int(alpha0) + int(i)*int(alpha1)) / 5)
				}
				alphaPalette[6] = 0
				alphaPalette[7] = 255
			}

			rgb, _ := decodeDXT1ColorBlock(colorBlock)

			var pixels [16][4]byte
			for i := 0; i < 16; i++ {
				sel := (alphaIdxBits >> uint(i*3)) & 0x7
				pixels[i] = [4]byte{rgb[i][0], rgb[i][1], rgb[i][2], alphaPalette[sel]}
			}
			writeBlock(out, w, h, bx, by, pixels)
		}
	}
	return out, true
}

// decodeDXT1ColorBlock decodes just the RGB palette/index portion of a
// DXT1-style 8-byte color block, reused by DXT3/DXT5 (alpha is
// stored separately for those formats, color channel is identical).
func decodeDXT1ColorBlock(block []byte) (pixels [16][3]byte, hasTransparent bool) {
	c0 := uint16(block[0]) | uint16(block[1])<<8
	c1 := uint16(block[2]) | uint16(block[3])<<8
	idxBits := uint32(block[4]) | uint32(block[5])<<8 | uint32(block[6])<<16 | uint32(block[7])<<24

	r0, g0, b0 := rgb565ToRGB(c0)
	r1, g1, b1 := rgb565ToRGB(c1)

	var palette [4][3]byte
	palette[0] = [3]byte{r0, g0, b0}
	palette[1] = [3]byte{r1, g1, b1}
	// DXT3/DXT5 always use the 4-color (non-punch-through) interpolation,
	// regardless of c0 vs c1 ordering.
	palette[2] = [3]byte{
		byte((2*int(r0) + int(r1)) / 3),
		byte((2*int(g0) + int(g1)) / 3),
		byte((2*int(b0) + int(b1)) / 3),
	}
	palette[3] = [3]byte{
		byte((int(r0) + 2*int(r1)) / 3),
		byte((int(g0) + 2*int(g1)) / 3),
		byte((int(b0) + 2*int(b1)) / 3),
	}

	for i := 0; i < 16; i++ {
		sel := (idxBits >> uint(i*2)) & 0x3
		pixels[i] = palette[sel]
	}
	return pixels, false
}

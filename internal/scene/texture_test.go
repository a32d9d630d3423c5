// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u32le(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func tag(s string) []byte {
	b := make([]byte, 9)
	copy(b, s)
	return b
}

// buildTEXV0005 assembles a minimal container with one TEXB0002 mip.
func buildTEXV0005(format PixelFormat, w, h int, payload []byte, compFlag uint32, uncompSize, compSize uint32) []byte {
	var buf bytes.Buffer
	buf.Write(tag("TEXV0005"))
	buf.Write(tag("TEXI0001"))
	buf.Write(u32le(uint32(format)))
	buf.Write(u32le(0))
	buf.Write(u32le(uint32(w)))
	buf.Write(u32le(uint32(h)))
	buf.Write(u32le(uint32(w)))
	buf.Write(u32le(uint32(h)))
	buf.Write(tag("TEXB0002"))
	buf.Write(u32le(1)) // one mipmap
	buf.Write(u32le(uint32(w)))
	buf.Write(u32le(uint32(h)))
	buf.Write(u32le(compFlag))
	buf.Write(u32le(uncompSize))
	buf.Write(u32le(compSize))
	buf.Write(payload)
	return buf.Bytes()
}

// A well-formed single-mip ARGB8888 body must decode to exactly the
// swizzled input bytes.
func TestDecodeTexture_ARGB8888RoundTrip(t *testing.T) {
	w, h := 2, 2
	// ARGB8888 raw bytes: A,R,G,B per pixel.
	raw := []byte{
		255, 10, 20, 30,
		255, 40, 50, 60,
		255, 70, 80, 90,
		255, 100, 110, 120,
	}
	data := buildTEXV0005(FormatARGB8888, w, h, raw, 0, uint32(len(raw)), 0xFFFFFFFF)

	tex, err := DecodeTexture(data)
	require.NoError(t, err)
	require.Len(t, tex.Mipmaps, 1)
	mip := tex.Mipmaps[0]
	assert.Equal(t, w, mip.Width)
	assert.Equal(t, h, mip.Height)
	assert.False(t, tex.Placeholder)

	want := []byte{
		10, 20, 30, 255,
		40, 50, 60, 255,
		70, 80, 90, 255,
		100, 110, 120, 255,
	}
	assert.Equal(t, want, mip.RGBA)
}

// TestDecodeDXT1_SolidWhiteBlock is end-to-end scenario 6.
func TestDecodeDXT1_SolidWhiteBlock(t *testing.T) {
	// c0 = 0xFFFF (white), c1 = 0x0000 (black), indices all 0 (endpoint 0).
	block := []byte{0xFF, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	rgba, ok := decodeDXT1(4, 4, block)
	require.True(t, ok)
	require.Len(t, rgba, 4*4*4)
	for i := 0; i < 16; i++ {
		px := rgba[i*4 : i*4+4]
		assert.Equal(t, []byte{255, 255, 255, 255}, px)
	}
}

func TestPlaceholderForBC7(t *testing.T) {
	data := buildTEXV0005(FormatBC7, 2, 2, make([]byte, 16), 0, 16, 0xFFFFFFFF)
	tex, err := DecodeTexture(data)
	require.NoError(t, err)
	require.True(t, tex.Placeholder)
	px := tex.Mipmaps[0].RGBA[0:4]
	assert.Equal(t, []byte{255, 0, 255, 255}, px)
}

// The format codes are on-disk wire values, not a dense enum; pin them
// so a reordering cannot silently re-alias the decoders.
func TestPixelFormat_WireValues(t *testing.T) {
	assert.Equal(t, PixelFormat(0), FormatARGB8888)
	assert.Equal(t, PixelFormat(1), FormatRGB888)
	assert.Equal(t, PixelFormat(2), FormatRGB565)
	assert.Equal(t, PixelFormat(4), FormatDXT5)
	assert.Equal(t, PixelFormat(6), FormatDXT3)
	assert.Equal(t, PixelFormat(7), FormatDXT1)
	assert.Equal(t, PixelFormat(8), FormatRG88)
	assert.Equal(t, PixelFormat(9), FormatR8)
	assert.Equal(t, PixelFormat(12), FormatBC7)
}

// A header carrying the raw DXT1 code must reach the DXT1 block
// decoder: a solid-white 4x4 block decodes to all-white RGBA.
func TestDecodeTexture_DXT1ByWireCode(t *testing.T) {
	block := []byte{0xFF, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	data := buildTEXV0005(PixelFormat(7), 4, 4, block, 0, uint32(len(block)), 0xFFFFFFFF)

	tex, err := DecodeTexture(data)
	require.NoError(t, err)
	assert.Equal(t, FormatDXT1, tex.Format)
	require.Len(t, tex.Mipmaps, 1)
	assert.False(t, tex.Placeholder)
	for i := 0; i < 16; i++ {
		assert.Equal(t, []byte{255, 255, 255, 255}, tex.Mipmaps[0].RGBA[i*4:i*4+4])
	}
}

// Codes with no decoder (here RG1616f = 10) and codes outside the
// known table entirely must fold to the gray placeholder, never alias
// another format's decoder.
func TestDecodeTexture_UnsupportedCodesPlaceholder(t *testing.T) {
	for _, code := range []uint32{3, 5, 10, 11, 13, 14, 15, 99} {
		data := buildTEXV0005(PixelFormat(code), 2, 2, make([]byte, 16), 0, 16, 0xFFFFFFFF)
		tex, err := DecodeTexture(data)
		require.NoError(t, err, "code %d", code)
		require.True(t, tex.Placeholder, "code %d", code)
		assert.Equal(t, []byte{128, 128, 128, 255}, tex.Mipmaps[0].RGBA[0:4], "code %d", code)
	}
}

// The TEXB0003 per-body format byte is read and discarded; the header
// format governs the mip decode.
func TestDecodeTexture_TEXB0003FormatByteIgnored(t *testing.T) {
	w, h := 1, 1
	raw := []byte{255, 10, 20, 30} // ARGB
	var buf bytes.Buffer
	buf.Write(tag("TEXV0005"))
	buf.Write(tag("TEXI0001"))
	buf.Write(u32le(uint32(FormatARGB8888)))
	buf.Write(u32le(0))
	buf.Write(u32le(uint32(w)))
	buf.Write(u32le(uint32(h)))
	buf.Write(u32le(uint32(w)))
	buf.Write(u32le(uint32(h)))
	buf.Write(tag("TEXB0003"))
	buf.Write(u32le(1))      // one mipmap
	buf.WriteByte(7)         // free-image format byte claiming DXT1; must be ignored
	buf.Write(u32le(uint32(w)))
	buf.Write(u32le(uint32(h)))
	buf.Write(u32le(0))                 // not compressed
	buf.Write(u32le(uint32(len(raw)))) // uncompressed size
	buf.Write(u32le(0xFFFFFFFF))       // compressed size sentinel
	buf.Write(raw)

	tex, err := DecodeTexture(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, FormatARGB8888, tex.Format)
	require.Len(t, tex.Mipmaps, 1)
	assert.Equal(t, []byte{10, 20, 30, 255}, tex.Mipmaps[0].RGBA)
}

// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// PixelFormat is the custom texture's source pixel encoding. The
// numeric values are the on-disk format codes and are part of the
// interoperability contract; they are neither dense nor ordered.
type PixelFormat uint32

const (
	FormatARGB8888      PixelFormat = 0
	FormatRGB888        PixelFormat = 1
	FormatRGB565        PixelFormat = 2
	FormatDXT5          PixelFormat = 4
	FormatDXT3          PixelFormat = 6
	FormatDXT1          PixelFormat = 7
	FormatRG88          PixelFormat = 8
	FormatR8            PixelFormat = 9
	FormatRG1616F       PixelFormat = 10
	FormatR16F          PixelFormat = 11
	FormatBC7           PixelFormat = 12
	FormatRGBA1010102   PixelFormat = 13
	FormatRGBA16161616F PixelFormat = 14
	FormatRGB161616F    PixelFormat = 15
	FormatUnknown       PixelFormat = 0xFFFFFFFF
)

// formatFromU32 maps a raw header format code onto PixelFormat,
// folding every unrecognized code into FormatUnknown so it takes the
// placeholder path instead of aliasing another format's decoder.
func formatFromU32(v uint32) PixelFormat {
	switch f := PixelFormat(v); f {
	case FormatARGB8888, FormatRGB888, FormatRGB565,
		FormatDXT5, FormatDXT3, FormatDXT1,
		FormatRG88, FormatR8,
		FormatRG1616F, FormatR16F, FormatBC7,
		FormatRGBA1010102, FormatRGBA16161616F, FormatRGB161616F:
		return f
	default:
		return FormatUnknown
	}
}

const maxMipBytes = 16384 * 16384 * 4

// Mipmap is one decoded RGBA8 level of a Texture.
type Mipmap struct {
	Width, Height int
	RGBA          []byte // len == Width*Height*4
}

// Texture is a fully decoded custom-format image: one or more mipmaps,
// all RGBA8.
type Texture struct {
	Format       PixelFormat
	AuthoredW    int
	AuthoredH    int
	ImageW       int
	ImageH       int
	Mipmaps      []Mipmap
	Placeholder  bool // true if this is a magenta/gray substitute, not real content
}

func readTag(r *bytes.Reader) (string, error) {
	buf := make([]byte, 9)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	tag := string(buf[:8])
	return tag, nil
}

func readU32(r *bytes.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// DecodeTexture parses a TEXV0005 container.
func DecodeTexture(data []byte) (*Texture, error) {
	r := bytes.NewReader(data)

	outer, err := readTag(r)
	if err != nil {
		return nil, fmt.Errorf("scene: texture: reading outer tag: %w", err)
	}
	if outer != "TEXV0005" {
		return nil, fmt.Errorf("scene: texture: bad outer magic %q", outer)
	}

	info, err := readTag(r)
	if err != nil {
		return nil, fmt.Errorf("scene: texture: reading info tag: %w", err)
	}
	if info != "TEXI0001" {
		return nil, fmt.Errorf("scene: texture: bad info magic %q", info)
	}
	fields := make([]uint32, 6)
	for i := range fields {
		v, err := readU32(r)
		if err != nil {
			return nil, fmt.Errorf("scene: texture: info field %d: %w", i, err)
		}
		fields[i] = v
	}
	tex := &Texture{
		Format:    formatFromU32(fields[0]),
		AuthoredW: int(fields[2]),
		AuthoredH: int(fields[3]),
		ImageW:    int(fields[4]),
		ImageH:    int(fields[5]),
	}

	// Skip ahead to the first occurrence of ASCII "TEXB"; bytes in
	// between (padding, reserved fields) are not part of the contract.
	rest := data[len(data)-r.Len():]
	idx := bytes.Index(rest, []byte("TEXB"))
	if idx < 0 {
		return nil, fmt.Errorf("scene: texture: no TEXB body found")
	}
	r = bytes.NewReader(rest[idx:])

	bodyTag, err := readTag(r)
	if err != nil {
		return nil, fmt.Errorf("scene: texture: reading body tag: %w", err)
	}

	imageCount, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("scene: texture: reading image count: %w", err)
	}
	mipCount := imageCount

	switch bodyTag {
	case "TEXB0001":
		if err := decodeMipsV1(r, tex, int(mipCount)); err != nil {
			return nil, err
		}
	case "TEXB0002":
		if err := decodeMipsV2Plus(r, tex, int(mipCount)); err != nil {
			return nil, err
		}
	case "TEXB0003":
		// A single free-image format byte precedes the mipmaps; it is
		// read and discarded, the header's format governs every mip.
		var fmtByte [1]byte
		if _, err := io.ReadFull(r, fmtByte[:]); err != nil {
			return nil, fmt.Errorf("scene: texture: TEXB0003 format byte: %w", err)
		}
		if err := decodeMipsV2Plus(r, tex, int(mipCount)); err != nil {
			return nil, err
		}
	case "TEXB0004":
		// Two opaque u32 fields the container format never documents.
		// imageCount above is a frame count, not the mip count; the true
		// mip count follows.
		if _, err := readU32(r); err != nil {
			return nil, fmt.Errorf("scene: texture: TEXB0004 unknown0: %w", err)
		}
		if _, err := readU32(r); err != nil {
			return nil, fmt.Errorf("scene: texture: TEXB0004 unknown1: %w", err)
		}
		trueMips, err := readU32(r)
		if err != nil {
			return nil, fmt.Errorf("scene: texture: TEXB0004 mip count: %w", err)
		}
		if err := decodeMipsV2Plus(r, tex, int(trueMips)); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("scene: texture: unknown body version %q", bodyTag)
	}
	return tex, nil
}

func decodeMipsV1(r *bytes.Reader, tex *Texture, count int) error {
	for i := 0; i < count; i++ {
		w, err := readU32(r)
		if err != nil {
			return fmt.Errorf("scene: texture: mip %d width: %w", i, err)
		}
		h, err := readU32(r)
		if err != nil {
			return fmt.Errorf("scene: texture: mip %d height: %w", i, err)
		}
		sz := rawSize(tex.Format, int(w), int(h))
		if err := sanityCheck(sz); err != nil {
			return err
		}
		raw := make([]byte, sz)
		if _, err := io.ReadFull(r, raw); err != nil {
			return fmt.Errorf("scene: texture: mip %d payload: %w", i, err)
		}
		tex.appendMip(int(w), int(h), raw)
	}
	return nil
}

func decodeMipsV2Plus(r *bytes.Reader, tex *Texture, count int) error {
	for i := 0; i < count; i++ {
		w, err := readU32(r)
		if err != nil {
			return fmt.Errorf("scene: texture: mip %d width: %w", i, err)
		}
		h, err := readU32(r)
		if err != nil {
			return fmt.Errorf("scene: texture: mip %d height: %w", i, err)
		}
		compFlag, err := readU32(r)
		if err != nil {
			return fmt.Errorf("scene: texture: mip %d compression flag: %w", i, err)
		}
		uncompSize, err := readU32(r)
		if err != nil {
			return fmt.Errorf("scene: texture: mip %d uncompressed size: %w", i, err)
		}
		compSize, err := readU32(r)
		if err != nil {
			return fmt.Errorf("scene: texture: mip %d compressed size: %w", i, err)
		}
		if err := sanityCheck(int(uncompSize)); err != nil {
			return err
		}

		compressed := compFlag == 1 || compSize != 0xFFFFFFFF
		var raw []byte
		if compressed {
			payload := make([]byte, compSize)
			if _, err := io.ReadFull(r, payload); err != nil {
				return fmt.Errorf("scene: texture: mip %d compressed payload: %w", i, err)
			}
			raw = make([]byte, uncompSize)
			n, err := lz4.UncompressBlock(payload, raw)
			if err != nil {
				return fmt.Errorf("scene: texture: mip %d lz4 decompress: %w", i, err)
			}
			raw = raw[:n]
		} else {
			raw = make([]byte, uncompSize)
			if _, err := io.ReadFull(r, raw); err != nil {
				return fmt.Errorf("scene: texture: mip %d raw payload: %w", i, err)
			}
		}
		tex.appendMip(int(w), int(h), raw)
	}
	return nil
}

func sanityCheck(size int) error {
	if size < 0 || size > maxMipBytes {
		return fmt.Errorf("scene: texture: mipmap claims %d bytes, exceeds sanity limit", size)
	}
	return nil
}

func (t *Texture) appendMip(w, h int, raw []byte) {
	rgba, ok := decodePixels(t.Format, w, h, raw)
	if !ok {
		t.Placeholder = true
		rgba = placeholderRGBA(t.Format, w, h)
	}
	t.Mipmaps = append(t.Mipmaps, Mipmap{Width: w, Height: h, RGBA: rgba})
}

func rawSize(f PixelFormat, w, h int) int {
	switch f {
	case FormatARGB8888, FormatRG1616F, FormatRGBA1010102:
		return w * h * 4
	case FormatRGB888:
		return w * h * 3
	case FormatRGB565, FormatRG88, FormatR16F:
		return w * h * 2
	case FormatR8:
		return w * h
	case FormatRGBA16161616F:
		return w * h * 8
	case FormatRGB161616F:
		return w * h * 6
	case FormatDXT1:
		return blockCount(w, h) * 8
	case FormatDXT3, FormatDXT5, FormatBC7:
		return blockCount(w, h) * 16
	default:
		return w * h * 4
	}
}

func blockCount(w, h int) int {
	bw := (w + 3) / 4
	bh := (h + 3) / 4
	return bw * bh
}

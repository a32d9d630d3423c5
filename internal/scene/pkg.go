// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scene implements the layered-scene renderer: the PKG asset
// container, the custom texture format, the layered-scene JSON parser,
// and the orthographic 2D compositor.
package scene

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// Magic is the fixed 8-byte PKG container identifier.
const Magic = "PKGV0023"

// Entry is one directory entry: a name and its (offset, size) within
// the data section.
type Entry struct {
	Name   string
	Offset uint32
	Size   uint32
}

// Container is a read-only view over a PKG asset bundle. Reads are
// random-access by (offset, size) relative to the start of the data
// section, which begins immediately after the directory.
type Container struct {
	r           io.ReaderAt
	dataStart   int64
	entries     []Entry
	byName      map[string]int
}

// Open parses a PKG container's header and directory from r. The
// underlying reader must support random access for later Read calls.
func Open(r io.ReaderAt) (*Container, error) {
	// [4 bytes unknown][8 bytes magic][4 bytes entry count][directory]
	hdr := make([]byte, 16)
	if _, err := io.ReadFull(io.NewSectionReader(r, 0, 16), hdr); err != nil {
		return nil, fmt.Errorf("scene: pkg: reading header: %w", err)
	}
	magic := string(hdr[4:12])
	if magic != Magic {
		return nil, fmt.Errorf("scene: pkg: bad magic %q, want %q", magic, Magic)
	}
	count := binary.LittleEndian.Uint32(hdr[12:16])

	c := &Container{r: r, byName: make(map[string]int, count)}
	off := int64(16)
	for i := uint32(0); i < count; i++ {
		nameLen, err := readU32At(r, off)
		if err != nil {
			return nil, fmt.Errorf("scene: pkg: entry %d name length: %w", i, err)
		}
		off += 4
		nameBuf := make([]byte, nameLen)
		if _, err := io.ReadFull(io.NewSectionReader(r, off, int64(nameLen)), nameBuf); err != nil {
			return nil, fmt.Errorf("scene: pkg: entry %d name: %w", i, err)
		}
		off += int64(nameLen)
		name := strings.TrimRight(string(nameBuf), "\x00")

		dataOffset, err := readU32At(r, off)
		if err != nil {
			return nil, fmt.Errorf("scene: pkg: entry %d data offset: %w", i, err)
		}
		off += 4
		size, err := readU32At(r, off)
		if err != nil {
			return nil, fmt.Errorf("scene: pkg: entry %d size: %w", i, err)
		}
		off += 4

		c.byName[name] = len(c.entries)
		c.entries = append(c.entries, Entry{Name: name, Offset: dataOffset, Size: size})
	}
	c.dataStart = off
	return c, nil
}

func readU32At(r io.ReaderAt, off int64) (uint32, error) {
	var buf [4]byte
	if _, err := r.ReadAt(buf[:], off); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// List returns the names of every file in the container, trailing NULs
// already stripped.
func (c *Container) List() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Exists reports whether name is present.
func (c *Container) Exists(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Read returns the exact Size bytes for name, read from dataStart+Offset.
func (c *Container) Read(name string) ([]byte, error) {
	idx, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("scene: pkg: no such file %q", name)
	}
	e := c.entries[idx]
	buf := make([]byte, e.Size)
	if e.Size == 0 {
		return buf, nil
	}
	if _, err := c.r.ReadAt(buf, c.dataStart+int64(e.Offset)); err != nil {
		return nil, fmt.Errorf("scene: pkg: reading %q: %w", name, err)
	}
	return buf, nil
}

// Build encodes entries (name -> contents) into a well-formed PKG
// container. It is used by tests; production scene loading only ever
// reads containers.
func Build(files map[string][]byte, order []string) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0})
	buf.WriteString(Magic)
	binary.Write(&buf, binary.LittleEndian, uint32(len(order)))

	offsets := make([]uint32, len(order))
	var cur uint32
	for i, name := range order {
		offsets[i] = cur
		cur += uint32(len(files[name]))
	}
	for i, name := range order {
		binary.Write(&buf, binary.LittleEndian, uint32(len(name)))
		buf.WriteString(name)
		binary.Write(&buf, binary.LittleEndian, offsets[i])
		binary.Write(&buf, binary.LittleEndian, uint32(len(files[name])))
	}
	for _, name := range order {
		buf.Write(files[name])
	}
	return buf.Bytes()
}

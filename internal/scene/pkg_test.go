// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestContainer_ReadRoundTrip is end-to-end scenario 5.
func TestContainer_ReadRoundTrip(t *testing.T) {
	files := map[string][]byte{
		"a.json": []byte("a"),
		"b.tex":  {0, 1, 2, 3, 4, 5, 6, 7},
		"c.txt":  {},
	}
	order := []string{"a.json", "b.tex", "c.txt"}
	raw := Build(files, order)

	c, err := Open(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.ElementsMatch(t, order, c.List())

	b, err := c.Read("b.tex")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7}, b)

	empty, err := c.Read("c.txt")
	require.NoError(t, err)
	assert.Len(t, empty, 0)

	assert.True(t, c.Exists("a.json"))
	assert.False(t, c.Exists("missing"))
}

// TestContainer_TrailingNULStripped covers names stored with a NUL
// terminator in the directory.
func TestContainer_TrailingNULStripped(t *testing.T) {
	raw := Build(map[string][]byte{"x.png\x00": []byte("xx")}, []string{"x.png\x00"})
	c, err := Open(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, []string{"x.png"}, c.List())
	assert.True(t, c.Exists("x.png"))
}

// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package workshop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_RecordAndList(t *testing.T) {
	c, err := OpenCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Record(431960, "Clouds", "/cache/431960/video.mp4"))
	require.NoError(t, c.Record(100, "Waves", "/cache/100/video.mp4"))

	items, err := c.List()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, uint64(100), items[0].ID, "sorted by id")
	assert.Equal(t, "Clouds", items[1].Title)
}

func TestCache_RecordUpdatesExistingEntry(t *testing.T) {
	c, err := OpenCache(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, c.Record(1, "Old Title", "/a"))
	require.NoError(t, c.Record(1, "New Title", "/b"))

	items, err := c.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "New Title", items[0].Title)
}

func TestCache_ClearRemovesEntry(t *testing.T) {
	c, err := OpenCache(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, c.Record(1, "A", "/a"))
	require.NoError(t, c.Clear(1))

	items, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCache_ListOnFreshCacheIsEmpty(t *testing.T) {
	c, err := OpenCache(t.TempDir())
	require.NoError(t, err)
	items, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, items)
}

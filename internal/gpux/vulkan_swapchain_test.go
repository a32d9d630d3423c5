// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpux

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestDeviceScore_DiscreteBeatsIntegrated(t *testing.T) {
	discrete := vk.PhysicalDeviceProperties{DeviceType: vk.PhysicalDeviceTypeDiscreteGpu}
	integrated := vk.PhysicalDeviceProperties{DeviceType: vk.PhysicalDeviceTypeIntegratedGpu}
	assert.Greater(t, deviceScore(discrete, true), deviceScore(integrated, true))
}

func TestDeviceScore_NoSwapchainDisqualifies(t *testing.T) {
	props := vk.PhysicalDeviceProperties{DeviceType: vk.PhysicalDeviceTypeDiscreteGpu}
	assert.Less(t, deviceScore(props, false), 0)
}

func TestChoosePresentMode_PrefersMailbox(t *testing.T) {
	got := choosePresentMode([]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox})
	assert.Equal(t, vk.PresentModeMailbox, got)
}

func TestChoosePresentMode_FallsBackToFIFO(t *testing.T) {
	got := choosePresentMode([]vk.PresentMode{vk.PresentModeFifo})
	assert.Equal(t, vk.PresentModeFifo, got)
}

func TestChooseSurfaceFormat_PrefersBGRA8SRGB(t *testing.T) {
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	got := chooseSurfaceFormat(formats)
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, got.Format)
}

// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Swapchain/render-pass/framebuffer setup split out of vulkan.go:
// mailbox present mode with FIFO fallback, triple-buffer when
// possible, BGRA8-SRGB format preference.

package gpux

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

func createWaylandSurface(instance vk.Instance, h SurfaceHandle) (vk.Surface, error) {
	var surface vk.Surface
	ret := vk.CreateWaylandSurface(instance, &vk.WaylandSurfaceCreateInfo{
		SType:   vk.StructureTypeWaylandSurfaceCreateInfoKhr,
		Display: unsafePointer(h.Display),
		Surface: unsafePointer(h.Surface),
	}, nil, &surface)
	if ret != vk.Success {
		return nil, fmt.Errorf("gpux: vkCreateWaylandSurfaceKHR: %d", ret)
	}
	return surface, nil
}

// choosePresentMode prefers mailbox, falling back to FIFO.
func choosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, m := range modes {
		if m == vk.PresentModeMailbox {
			return m
		}
	}
	return vk.PresentModeFifo // always supported per the Vulkan spec
}

// chooseSurfaceFormat prefers BGRA8-SRGB; falls back to
// whatever the surface reports first.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		f.Deref()
		if f.Format == vk.FormatB8g8r8a8Srgb && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	if len(formats) > 0 {
		formats[0].Deref()
		return formats[0]
	}
	return vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}
}

func (t *vulkanTarget) createSwapchain(w, h int, oldSwapchain vk.Swapchain) error {
	gpu := t.backend.physicalDev

	var caps vk.SurfaceCapabilities
	vk.GetPhysicalDeviceSurfaceCapabilities(gpu, t.surface, &caps)
	caps.Deref()
	caps.CurrentExtent.Deref()

	extent := vk.Extent2D{Width: uint32(w), Height: uint32(h)}
	if caps.CurrentExtent.Width != 0xFFFFFFFF {
		extent = caps.CurrentExtent
	}

	var fmtCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(gpu, t.surface, &fmtCount, nil)
	formats := make([]vk.SurfaceFormat, fmtCount)
	vk.GetPhysicalDeviceSurfaceFormats(gpu, t.surface, &fmtCount, formats)
	surfFmt := chooseSurfaceFormat(formats)

	var modeCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(gpu, t.surface, &modeCount, nil)
	modes := make([]vk.PresentMode, modeCount)
	vk.GetPhysicalDeviceSurfacePresentModes(gpu, t.surface, &modeCount, modes)
	presentMode := choosePresentMode(modes)

	imageCount := caps.MinImageCount + 1 // triple-buffer when possible
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}

	var swapchain vk.Swapchain
	ret := vk.CreateSwapchain(t.backend.device, &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          t.surface,
		MinImageCount:    imageCount,
		ImageFormat:      surfFmt.Format,
		ImageColorSpace:  surfFmt.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
		OldSwapchain:     oldSwapchain,
	}, nil, &swapchain)
	if ret != vk.Success {
		return fmt.Errorf("gpux: vkCreateSwapchainKHR: %d", ret)
	}

	t.swapchain = swapchain
	t.format = surfFmt.Format
	t.extent = extent

	var imgCount uint32
	vk.GetSwapchainImages(t.backend.device, swapchain, &imgCount, nil)
	images := make([]vk.Image, imgCount)
	vk.GetSwapchainImages(t.backend.device, swapchain, &imgCount, images)
	t.images = images

	t.imageViews = make([]vk.ImageView, imgCount)
	for i, img := range images {
		var view vk.ImageView
		vk.CreateImageView(t.backend.device, &vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    img,
			ViewType: vk.ImageViewType2d,
			Format:   t.format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}, nil, &view)
		t.imageViews[i] = view
	}
	return nil
}

// createRenderPass builds a single color-attachment pass: CLEAR->STORE,
// final layout PRESENT_SRC.
func (t *vulkanTarget) createRenderPass() error {
	attachment := vk.AttachmentDescription{
		Format:         t.format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}
	colorRef := vk.AttachmentReference{Attachment: 0, Layout: vk.ImageLayoutColorAttachmentOptimal}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    []vk.AttachmentReference{colorRef},
	}
	var rp vk.RenderPass
	ret := vk.CreateRenderPass(t.backend.device, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.AttachmentDescription{attachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
	}, nil, &rp)
	if ret != vk.Success {
		return fmt.Errorf("gpux: vkCreateRenderPass: %d", ret)
	}
	t.renderPass = rp
	return nil
}

// createFramebuffers builds one framebuffer per swapchain image view.
func (t *vulkanTarget) createFramebuffers() error {
	t.framebuffers = make([]vk.Framebuffer, len(t.imageViews))
	for i, view := range t.imageViews {
		var fb vk.Framebuffer
		ret := vk.CreateFramebuffer(t.backend.device, &vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      t.renderPass,
			AttachmentCount: 1,
			PAttachments:    []vk.ImageView{view},
			Width:           t.extent.Width,
			Height:          t.extent.Height,
			Layers:          1,
		}, nil, &fb)
		if ret != vk.Success {
			return fmt.Errorf("gpux: vkCreateFramebuffer[%d]: %d", i, ret)
		}
		t.framebuffers[i] = fb
	}
	return nil
}

func (t *vulkanTarget) createSyncObjects() error {
	dev := t.backend.device

	if t.cmdPool == vk.NullCommandPool {
		ret := vk.CreateCommandPool(dev, &vk.CommandPoolCreateInfo{
			SType:            vk.StructureTypeCommandPoolCreateInfo,
			QueueFamilyIndex: t.backend.graphicsQIdx,
			Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		}, nil, &t.cmdPool)
		if ret != vk.Success {
			return fmt.Errorf("gpux: vkCreateCommandPool: %d", ret)
		}
	}

	t.cmdBuffers = make([]vk.CommandBuffer, len(t.images))
	vk.AllocateCommandBuffers(dev, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        t.cmdPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(len(t.images)),
	}, t.cmdBuffers)

	t.imageAvailable = make([]vk.Semaphore, maxFramesInFlight)
	t.renderFinished = make([]vk.Semaphore, maxFramesInFlight)
	t.inFlightFences = make([]vk.Fence, maxFramesInFlight)
	for i := 0; i < maxFramesInFlight; i++ {
		vk.CreateSemaphore(dev, &vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}, nil, &t.imageAvailable[i])
		vk.CreateSemaphore(dev, &vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}, nil, &t.renderFinished[i])
		vk.CreateFence(dev, &vk.FenceCreateInfo{
			SType: vk.StructureTypeFenceCreateInfo,
			Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
		}, nil, &t.inFlightFences[i])
	}
	return nil
}

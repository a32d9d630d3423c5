// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// UploadFrame for the Vulkan target: a host-visible staging buffer
// copied directly into the acquired swapchain image via
// vkCmdCopyBufferToImage, bypassing a textured-quad pipeline: this
// backend builds no graphics pipeline, so video frames are copied in as
// they are and scene frames are composited on the CPU first
// (vulkan_sprite.go) and flushed through the same copy — a deliberate
// simplification over a full graphics pipeline, noted in DESIGN.md.

package gpux

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
)

func (t *vulkanTarget) UploadFrame(pix []byte, w, h int) error {
	if t.destroyed {
		return ErrTargetDestroyed
	}
	imgIdx := t.FramebufferID()
	return t.recordCopy(imgIdx, pix, w, h)
}

// recordCopy records the buffer-to-image copy shared by UploadFrame's
// direct video upload and BeginFrame/DrawSprite's CPU-composited scene
// frame (vulkan_sprite.go) into the command buffer for swapchain image
// imgIdx.
func (t *vulkanTarget) recordCopy(imgIdx uint32, pix []byte, w, h int) error {
	dev := t.backend.device

	// Incoming frames are RGBA; the swapchain's preferred format is
	// BGRA8 (chooseSurfaceFormat), and a raw buffer copy does not
	// swizzle the way a sampling pipeline would.
	if t.format == vk.FormatB8g8r8a8Srgb || t.format == vk.FormatB8g8r8a8Unorm {
		pix = swizzleRGBAToBGRA(pix)
	}

	size := vk.DeviceSize(len(pix))
	staging, mem, err := t.allocHostVisibleBuffer(size)
	if err != nil {
		return err
	}
	defer vk.DestroyBuffer(dev, staging, nil)
	defer vk.FreeMemory(dev, mem, nil)

	var data unsafe.Pointer
	vk.MapMemory(dev, mem, 0, size, 0, &data)
	vk.Memcopy(data, pix)
	vk.UnmapMemory(dev, mem)

	cmd := t.cmdBuffers[imgIdx]
	vk.ResetCommandBuffer(cmd, 0)
	if ret := vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}); ret != vk.Success {
		return fmt.Errorf("gpux: vkBeginCommandBuffer: %d", ret)
	}

	image := t.images[imgIdx]
	subresource := vk.ImageSubresourceRange{
		AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
		LevelCount: 1,
		LayerCount: 1,
	}
	imageBarrier(cmd, image, subresource,
		vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal,
		0, vk.AccessFlags(vk.AccessTransferWriteBit))

	region := vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{Width: uint32(w), Height: uint32(h), Depth: 1},
	}
	vk.CmdCopyBufferToImage(cmd, staging, image, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})

	imageBarrier(cmd, image, subresource,
		vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutPresentSrc,
		vk.AccessFlags(vk.AccessTransferWriteBit), 0)

	if ret := vk.EndCommandBuffer(cmd); ret != vk.Success {
		return fmt.Errorf("gpux: vkEndCommandBuffer: %d", ret)
	}
	return nil
}

func swizzleRGBAToBGRA(pix []byte) []byte {
	out := make([]byte, len(pix))
	for i := 0; i+3 < len(pix); i += 4 {
		out[i+0] = pix[i+2]
		out[i+1] = pix[i+1]
		out[i+2] = pix[i+0]
		out[i+3] = pix[i+3]
	}
	return out
}

func imageBarrier(cmd vk.CommandBuffer, image vk.Image, sub vk.ImageSubresourceRange,
	oldLayout, newLayout vk.ImageLayout, srcAccess, dstAccess vk.AccessFlags) {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange:    sub,
		SrcAccessMask:       srcAccess,
		DstAccessMask:       dstAccess,
	}
	vk.CmdPipelineBarrier(cmd,
		vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

func (t *vulkanTarget) allocHostVisibleBuffer(size vk.DeviceSize) (vk.Buffer, vk.DeviceMemory, error) {
	dev := t.backend.device
	var buf vk.Buffer
	ret := vk.CreateBuffer(dev, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buf)
	if ret != vk.Success {
		return nil, nil, fmt.Errorf("gpux: vkCreateBuffer: %d", ret)
	}

	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(dev, buf, &req)
	req.Deref()

	typeIdx, err := t.hostVisibleMemoryType(req.MemoryTypeBits)
	if err != nil {
		vk.DestroyBuffer(dev, buf, nil)
		return nil, nil, err
	}

	var mem vk.DeviceMemory
	ret = vk.AllocateMemory(dev, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: typeIdx,
	}, nil, &mem)
	if ret != vk.Success {
		vk.DestroyBuffer(dev, buf, nil)
		return nil, nil, fmt.Errorf("gpux: vkAllocateMemory: %d", ret)
	}
	vk.BindBufferMemory(dev, buf, mem, 0)
	return buf, mem, nil
}

func (t *vulkanTarget) hostVisibleMemoryType(typeBits uint32) (uint32, error) {
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(t.backend.physicalDev, &props)
	props.Deref()
	want := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	for i := uint32(0); i < props.MemoryTypeCount; i++ {
		props.MemoryTypes[i].Deref()
		if typeBits&(1<<i) == 0 {
			continue
		}
		if props.MemoryTypes[i].PropertyFlags&want == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("gpux: no host-visible memory type for staging buffer")
}

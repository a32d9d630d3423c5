// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Vulkan backend: instance/device-extension negotiation, physical
// device selection, debug callback, and per-surface swapchain setup.

package gpux

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"wayvid.dev/wayvid/internal/wlog"
)

const maxFramesInFlight = 2

// VulkanBackend owns the process-wide Vulkan instance and physical/
// logical device.
type VulkanBackend struct {
	instance      vk.Instance
	physicalDev   vk.PhysicalDevice
	device        vk.Device
	graphicsQueue vk.Queue
	presentQueue  vk.Queue
	graphicsQIdx  uint32
	presentQIdx   uint32
	debugCallback vk.DebugReportCallback
	debug         bool
}

// NewVulkanBackend creates the instance and picks a physical device.
// debug enables a validation-layer debug report callback.
func NewVulkanBackend(appName string, debug bool) (*VulkanBackend, error) {
	vk.SetGetInstanceProcAddr(vk.GetInstanceProcAddress)
	if err := vk.Init(); err != nil {
		return nil, fmt.Errorf("gpux: vulkan init: %w", err)
	}

	instExts := []string{
		"VK_KHR_surface\x00",
		"VK_KHR_wayland_surface\x00",
	}
	var layers []string
	if debug {
		instExts = append(instExts, "VK_EXT_debug_report\x00")
		layers = []string{"VK_LAYER_KHRONOS_validation\x00"}
	}

	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         vk.MakeVersion(1, 1, 0),
			ApplicationVersion: vk.MakeVersion(1, 0, 0),
			PApplicationName:   appName + "\x00",
			PEngineName:        "wayvid\x00",
		},
		EnabledExtensionCount:   uint32(len(instExts)),
		PpEnabledExtensionNames: instExts,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}, nil, &instance)
	if ret != vk.Success {
		return nil, fmt.Errorf("gpux: vkCreateInstance failed: %d", ret)
	}
	vk.InitInstance(instance)

	b := &VulkanBackend{instance: instance, debug: debug}

	if debug {
		ret := vk.CreateDebugReportCallback(instance, &vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: vulkanDebugCallback,
		}, nil, &b.debugCallback)
		if ret != vk.Success {
			wlog.Warn("gpux: debug report callback creation failed", "ret", ret)
		}
	}

	gpu, err := pickPhysicalDevice(instance)
	if err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, err
	}
	b.physicalDev = gpu

	if err := b.createLogicalDevice(); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, err
	}
	return b, nil
}

func vulkanDebugCallback(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	wlog.Warn("vulkan validation", "layer", pLayerPrefix, "code", messageCode, "msg", pMessage)
	return vk.Bool32(vk.False)
}

// deviceScore ranks physical devices: discrete >
// integrated > other, and disqualifies anything without swapchain
// support.
func deviceScore(props vk.PhysicalDeviceProperties, hasSwapchain bool) int {
	if !hasSwapchain {
		return -1
	}
	props.Deref()
	switch props.DeviceType {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return 300
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return 200
	default:
		return 100
	}
}

func pickPhysicalDevice(instance vk.Instance) (vk.PhysicalDevice, error) {
	var count uint32
	if ret := vk.EnumeratePhysicalDevices(instance, &count, nil); ret != vk.Success || count == 0 {
		return nil, ErrNoDevice
	}
	devices := make([]vk.PhysicalDevice, count)
	vk.EnumeratePhysicalDevices(instance, &count, devices)

	var best vk.PhysicalDevice
	bestScore := -1
	for _, d := range devices {
		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(d, &props)
		hasSwap := deviceHasExtension(d, "VK_KHR_swapchain")
		s := deviceScore(props, hasSwap)
		if s > bestScore {
			bestScore = s
			best = d
		}
	}
	if bestScore < 0 {
		return nil, ErrNoDevice
	}
	return best, nil
}

func deviceHasExtension(gpu vk.PhysicalDevice, name string) bool {
	var count uint32
	vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil)
	list := make([]vk.ExtensionProperties, count)
	vk.EnumerateDeviceExtensionProperties(gpu, "", &count, list)
	for _, e := range list {
		e.Deref()
		if vk.ToString(e.ExtensionName[:]) == name {
			return true
		}
	}
	return false
}

func (b *VulkanBackend) createLogicalDevice() error {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(b.physicalDev, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(b.physicalDev, &count, families)

	found := false
	for i, f := range families {
		f.Deref()
		if f.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			b.graphicsQIdx = uint32(i)
			b.presentQIdx = uint32(i) // presentation support confirmed per-surface at CreateWindow
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("gpux: no graphics queue family on selected device")
	}

	priorities := []float32{1.0}
	var device vk.Device
	ret := vk.CreateDevice(b.physicalDev, &vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos: []vk.DeviceQueueCreateInfo{{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: b.graphicsQIdx,
			QueueCount:       1,
			PQueuePriorities: priorities,
		}},
		EnabledExtensionCount:   1,
		PpEnabledExtensionNames: []string{"VK_KHR_swapchain\x00"},
	}, nil, &device)
	if ret != vk.Success {
		return fmt.Errorf("gpux: vkCreateDevice failed: %d", ret)
	}
	b.device = device
	vk.GetDeviceQueue(device, b.graphicsQIdx, 0, &b.graphicsQueue)
	vk.GetDeviceQueue(device, b.presentQIdx, 0, &b.presentQueue)
	return nil
}

func (b *VulkanBackend) API() APIType { return APIVulkan }

// GetProcAddress is nil for Vulkan: the media adapter's GL loader is
// never invoked when rendering through this backend.
func (b *VulkanBackend) GetProcAddress() ProcAddressFunc { return nil }

func (b *VulkanBackend) Destroy() {
	if b.device != nil {
		vk.DeviceWaitIdle(b.device)
		vk.DestroyDevice(b.device, nil)
		b.device = nil
	}
	if b.debugCallback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(b.instance, b.debugCallback, nil)
	}
	if b.instance != nil {
		vk.DestroyInstance(b.instance, nil)
		b.instance = nil
	}
}

// CreateWindow builds a Wayland vk.Surface, a swapchain, a render pass,
// per-image framebuffers, a command pool and MAX_FRAMES_IN_FLIGHT sync
// objects. No graphics pipeline is built: frames reach the swapchain
// image through a buffer-to-image copy (vulkan_upload.go).
func (b *VulkanBackend) CreateWindow(surface SurfaceHandle, w, h int) (Target, error) {
	vkSurf, err := createWaylandSurface(b.instance, surface)
	if err != nil {
		return nil, err
	}

	var supported vk.Bool32
	vk.GetPhysicalDeviceSurfaceSupport(b.physicalDev, b.presentQIdx, vkSurf, &supported)
	if !supported.B() {
		vk.DestroySurface(b.instance, vkSurf, nil)
		return nil, fmt.Errorf("gpux: queue family %d does not support presenting to this surface", b.presentQIdx)
	}

	t := &vulkanTarget{backend: b, surface: vkSurf}
	if err := t.createSwapchain(w, h, vk.NullSwapchain); err != nil {
		vk.DestroySurface(b.instance, vkSurf, nil)
		return nil, err
	}
	if err := t.createRenderPass(); err != nil {
		t.Destroy()
		return nil, err
	}
	if err := t.createFramebuffers(); err != nil {
		t.Destroy()
		return nil, err
	}
	if err := t.createSyncObjects(); err != nil {
		t.Destroy()
		return nil, err
	}
	return t, nil
}

// vulkanTarget is one swapchain-backed Target.
type vulkanTarget struct {
	backend *VulkanBackend
	surface vk.Surface

	swapchain   vk.Swapchain
	format      vk.Format
	extent      vk.Extent2D
	images      []vk.Image
	imageViews  []vk.ImageView
	framebuffers []vk.Framebuffer
	renderPass  vk.RenderPass

	cmdPool    vk.CommandPool
	cmdBuffers []vk.CommandBuffer

	imageAvailable []vk.Semaphore
	renderFinished []vk.Semaphore
	inFlightFences []vk.Fence

	frameIdx      int
	imageIdx      uint32
	imageAcquired bool
	destroyed     bool

	// composeBuf is the CPU-rasterized scene frame built up by
	// BeginFrame/DrawSprite (vulkan_sprite.go); this backend has no
	// textured-quad graphics pipeline (vulkan_upload.go), so a Scene
	// Renderer frame is composited in Go and flushed through the same
	// buffer-to-image copy UploadFrame uses once SwapBuffers is called.
	composeBuf   []byte
	composeDirty bool
}

func (t *vulkanTarget) API() APIType { return APIVulkan }

// MakeCurrent is a no-op: Vulkan "current" is per-command-buffer, not
// per-thread.
func (t *vulkanTarget) MakeCurrent() error {
	if t.destroyed {
		return ErrTargetDestroyed
	}
	return nil
}

// FramebufferID acquires the next swapchain image on first call this
// frame (idempotent until SwapBuffers consumes it), so the caller can
// draw into it before presenting (acquire, then draw, then present).
func (t *vulkanTarget) FramebufferID() uint32 {
	if t.destroyed || t.imageAcquired {
		return t.imageIdx
	}
	dev := t.backend.device
	fences := []vk.Fence{t.inFlightFences[t.frameIdx]}
	vk.WaitForFences(dev, 1, fences, vk.True, ^uint64(0))

	var imgIdx uint32
	ret := vk.AcquireNextImage(dev, t.swapchain, ^uint64(0), t.imageAvailable[t.frameIdx], vk.NullFence, &imgIdx)
	if ret == vk.ErrorOutOfDate {
		t.Resize(int(t.extent.Width), int(t.extent.Height))
		return t.imageIdx
	}
	if ret != vk.Success && ret != vk.Suboptimal {
		wlog.Warn("gpux: vkAcquireNextImage failed", "ret", ret)
		return t.imageIdx
	}
	vk.ResetFences(dev, 1, fences)
	t.imageIdx = imgIdx
	t.imageAcquired = true
	return t.imageIdx
}

func (t *vulkanTarget) SwapBuffers() error {
	if t.destroyed {
		return ErrTargetDestroyed
	}
	if t.composeDirty {
		imgIdx := t.FramebufferID()
		if err := t.recordCopy(imgIdx, t.composeBuf, int(t.extent.Width), int(t.extent.Height)); err != nil {
			return err
		}
		t.composeDirty = false
	}
	if !t.imageAcquired {
		return nil // nothing was drawn this tick
	}
	imgIdx := t.imageIdx
	submit := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{t.imageAvailable[t.frameIdx]},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{t.cmdBuffers[imgIdx]},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{t.renderFinished[t.frameIdx]},
	}
	vk.QueueSubmit(t.backend.graphicsQueue, 1, []vk.SubmitInfo{submit}, t.inFlightFences[t.frameIdx])

	present := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{t.renderFinished[t.frameIdx]},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{t.swapchain},
		PImageIndices:      []uint32{imgIdx},
	}
	ret := vk.QueuePresent(t.backend.presentQueue, &present)
	t.imageAcquired = false
	if ret == vk.ErrorOutOfDate || ret == vk.Suboptimal {
		return t.Resize(int(t.extent.Width), int(t.extent.Height))
	}
	t.frameIdx = (t.frameIdx + 1) % maxFramesInFlight
	return nil
}

// Resize recreates the swapchain and dependent state after a
// device-idle wait, so recreation never races a submit.
func (t *vulkanTarget) Resize(w, h int) error {
	if t.destroyed {
		return ErrTargetDestroyed
	}
	vk.DeviceWaitIdle(t.backend.device)
	old := t.swapchain
	t.destroySwapchainResources()
	if err := t.createSwapchain(w, h, old); err != nil {
		return err
	}
	vk.DestroySwapchain(t.backend.device, old, nil)
	// The render pass depends on the surface format, which the new
	// swapchain may have renegotiated.
	if err := t.createRenderPass(); err != nil {
		return err
	}
	if err := t.createFramebuffers(); err != nil {
		return err
	}
	// The image count can change across recreation; command buffers are
	// indexed by swapchain image.
	if len(t.cmdBuffers) != len(t.images) {
		vk.FreeCommandBuffers(t.backend.device, t.cmdPool, uint32(len(t.cmdBuffers)), t.cmdBuffers)
		t.cmdBuffers = make([]vk.CommandBuffer, len(t.images))
		vk.AllocateCommandBuffers(t.backend.device, &vk.CommandBufferAllocateInfo{
			SType:              vk.StructureTypeCommandBufferAllocateInfo,
			CommandPool:        t.cmdPool,
			Level:              vk.CommandBufferLevelPrimary,
			CommandBufferCount: uint32(len(t.images)),
		}, t.cmdBuffers)
	}
	return nil
}

func (t *vulkanTarget) Destroy() {
	if t.destroyed {
		return
	}
	vk.DeviceWaitIdle(t.backend.device)
	t.destroySwapchainResources()
	for i := range t.imageAvailable {
		vk.DestroySemaphore(t.backend.device, t.imageAvailable[i], nil)
		vk.DestroySemaphore(t.backend.device, t.renderFinished[i], nil)
		vk.DestroyFence(t.backend.device, t.inFlightFences[i], nil)
	}
	if t.cmdPool != vk.NullCommandPool {
		vk.DestroyCommandPool(t.backend.device, t.cmdPool, nil)
	}
	vk.DestroySurface(t.backend.instance, t.surface, nil)
	t.destroyed = true
}

func (t *vulkanTarget) destroySwapchainResources() {
	dev := t.backend.device
	for _, fb := range t.framebuffers {
		vk.DestroyFramebuffer(dev, fb, nil)
	}
	t.framebuffers = nil
	if t.renderPass != vk.NullRenderPass {
		vk.DestroyRenderPass(dev, t.renderPass, nil)
		t.renderPass = vk.NullRenderPass
	}
	for _, iv := range t.imageViews {
		vk.DestroyImageView(dev, iv, nil)
	}
	t.imageViews = nil
}

// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpux

import (
	"fmt"

	"wayvid.dev/wayvid/internal/wire"
)

// NewBackend constructs the backend named by an EffectiveConfig's
// RenderBackend; the two backends share one contract. BackendAuto
// prefers Vulkan, falling back to OpenGL/EGL if instance creation
// fails.
func NewBackend(choice wire.RenderBackend, appName string, wlDisplay uintptr, debug bool) (Backend, error) {
	switch choice {
	case wire.BackendVulkan:
		return NewVulkanBackend(appName, debug)
	case wire.BackendOpenGL:
		return NewOpenGLBackend(wlDisplay)
	case wire.BackendAuto, "":
		if b, err := NewVulkanBackend(appName, debug); err == nil {
			return b, nil
		}
		return NewOpenGLBackend(wlDisplay)
	default:
		return nil, fmt.Errorf("gpux: unknown render backend %q", choice)
	}
}

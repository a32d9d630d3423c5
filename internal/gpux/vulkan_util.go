// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpux

import "unsafe"

// unsafePointer turns the raw compositor pointer values internal/
// waybackend hands us as SurfaceHandle fields into the unsafe.Pointer
// the Vulkan wl_surface/wl_display create-info structs expect.
func unsafePointer(p uintptr) unsafe.Pointer {
	return unsafe.Pointer(p) //nolint:govet // handed in from cgo, not from Go-allocated memory
}

// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package player

import "wayvid.dev/wayvid/internal/wire"

// layoutRect computes where a frameW x frameH video lands inside an
// outW x outH target for the given layout mode. Fill and Stretch both
// occupy the whole target; Contain letterboxes, Cover crops, Centre
// places the frame at its native size.
func layoutRect(mode wire.LayoutMode, outW, outH, frameW, frameH float64) (x, y, w, h float64) {
	if frameW <= 0 || frameH <= 0 || outW <= 0 || outH <= 0 {
		return 0, 0, outW, outH
	}
	switch mode {
	case wire.LayoutContain:
		s := min(outW/frameW, outH/frameH)
		w, h = frameW*s, frameH*s
	case wire.LayoutCover:
		s := max(outW/frameW, outH/frameH)
		w, h = frameW*s, frameH*s
	case wire.LayoutCentre:
		w, h = frameW, frameH
	default: // LayoutFill, LayoutStretch, unset
		return 0, 0, outW, outH
	}
	return (outW - w) / 2, (outH - h) / 2, w, h
}

// coversTarget reports whether the rect is exactly the full target, in
// which case the plain full-viewport upload path applies.
func coversTarget(x, y, w, h, outW, outH float64) bool {
	return x == 0 && y == 0 && w == outW && h == outH
}

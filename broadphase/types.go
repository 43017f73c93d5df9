// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package broadphase

import pmath "github.com/gazed/phys2d/math"

// R and pV2 are local aliases so tree.go and broadphase.go read closer to
// the rest of the module's math-heavy files without a pmath. prefix on
// every line, matching gazed/vu/math/lin's terse call sites.
type R = pmath.R
type pV2 = pmath.V2

func min(a, b R) R {
	if a < b {
		return a
	}
	return b
}

func max(a, b R) R {
	if a > b {
		return a
	}
	return b
}

// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package collide

import pmath "github.com/gazed/phys2d/math"

// clipVertex is one vertex carried through the 2-point clip, tagged with
// the contact feature it originated from so ContactFeature survives
// clipping for warm-start matching.
type clipVertex struct {
	v       pmath.V2
	feature ContactFeature
}

// clipSegmentToLine clips the 2-point segment in against the half-plane
// dot(normal, x) - offset <= 0, in the style of a single pass of
// gazed/vu/physics/clipping.go's sutherland_hodgman, specialized to a
// fixed 2-point input (a manifold's incident edge) and a single plane;
// the caller calls this twice per reference edge, once per side plane.
func clipSegmentToLine(in [2]clipVertex, normal pmath.V2, offset pmath.R, edgeFeature uint8, onA bool) ([2]clipVertex, int) {
	var out [2]clipVertex
	count := 0

	d0 := normal.Dot(&in[0].v) - offset
	d1 := normal.Dot(&in[1].v) - offset

	if d0 <= 0 {
		out[count] = in[0]
		count++
	}
	if d1 <= 0 {
		out[count] = in[1]
		count++
	}

	if d0*d1 < 0 {
		interp := d0 / (d0 - d1)
		var v pmath.V2
		v.Lerp(&in[0].v, &in[1].v, interp)
		f := in[0].feature
		if onA {
			f.TypeA = FeatureFace
			f.IndexA = edgeFeature
		} else {
			f.TypeB = FeatureFace
			f.IndexB = edgeFeature
		}
		out[count] = clipVertex{v: v, feature: f}
		count++
	}
	return out, count
}

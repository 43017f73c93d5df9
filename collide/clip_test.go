// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package collide

import (
	"testing"

	pmath "github.com/gazed/phys2d/math"
	"github.com/stretchr/testify/assert"
)

func TestClipSegmentToLineKeepsBothPointsBehindPlane(t *testing.T) {
	in := [2]clipVertex{
		{v: pmath.V2{X: -1, Y: 0}},
		{v: pmath.V2{X: 1, Y: 0}},
	}
	out, count := clipSegmentToLine(in, pmath.V2{X: 1, Y: 0}, 2, 0, true)
	assert.Equal(t, 2, count)
	assert.Equal(t, in[0].v, out[0].v)
	assert.Equal(t, in[1].v, out[1].v)
}

func TestClipSegmentToLineOneBehindOneInFrontKeepsBehindVertex(t *testing.T) {
	in := [2]clipVertex{
		{v: pmath.V2{X: -1, Y: 0}},
		{v: pmath.V2{X: 1, Y: 0}},
	}
	out, count := clipSegmentToLine(in, pmath.V2{X: 1, Y: 0}, 0, 0, true)
	assert.Equal(t, 2, count, "the behind-plane vertex plus an interpolated crossing")
	assert.Equal(t, in[0].v, out[0].v, "the vertex already behind the plane survives unchanged")
}

func TestClipSegmentToLineInterpolatesNewVertexAtCrossing(t *testing.T) {
	in := [2]clipVertex{
		{v: pmath.V2{X: -1, Y: 0}},
		{v: pmath.V2{X: 1, Y: 0}},
	}
	out, count := clipSegmentToLine(in, pmath.V2{X: 1, Y: 0}, 0, 5, true)
	assert.Equal(t, 2, count, "the behind-plane vertex survives plus one interpolated crossing")
	assert.InDelta(t, pmath.R(0), out[1].v.X, 1e-9, "interpolated crossing at x=0 for a plane through the origin")
}

func TestClipSegmentToLineTagsFeatureOnRequestedSide(t *testing.T) {
	in := [2]clipVertex{
		{v: pmath.V2{X: -1, Y: -1}},
		{v: pmath.V2{X: -1, Y: 1}},
	}
	outA, countA := clipSegmentToLine(in, pmath.V2{X: 0, Y: 1}, 0, 7, true)
	assert.Equal(t, FeatureFace, outA[countA-1].feature.TypeA, "the interpolated crossing carries the requested feature tag")
	assert.Equal(t, uint8(7), outA[countA-1].feature.IndexA)

	outB, countB := clipSegmentToLine(in, pmath.V2{X: 0, Y: 1}, 0, 7, false)
	assert.Equal(t, FeatureFace, outB[countB-1].feature.TypeB)
	assert.Equal(t, uint8(7), outB[countB-1].feature.IndexB)
}

func TestClipSegmentToLineBothPointsInFrontDropsBoth(t *testing.T) {
	in := [2]clipVertex{
		{v: pmath.V2{X: 5, Y: 0}},
		{v: pmath.V2{X: 6, Y: 0}},
	}
	_, count := clipSegmentToLine(in, pmath.V2{X: 1, Y: 0}, 0, 0, true)
	assert.Equal(t, 0, count)
}

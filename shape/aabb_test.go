// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import (
	"testing"

	pmath "github.com/gazed/phys2d/math"
	"github.com/stretchr/testify/assert"
)

func box(lx, ly, ux, uy pmath.R) AABB {
	return AABB{Lower: pmath.V2{X: lx, Y: ly}, Upper: pmath.V2{X: ux, Y: uy}}
}

func TestAABBOverlapsTouchingCountsAsOverlap(t *testing.T) {
	a := box(0, 0, 1, 1)
	b := box(1, 0, 2, 1)
	assert.True(t, a.Overlaps(b))
}

func TestAABBOverlapsSeparated(t *testing.T) {
	a := box(0, 0, 1, 1)
	b := box(1.01, 0, 2, 1)
	assert.False(t, a.Overlaps(b))
}

func TestAABBCombineEnclosesBoth(t *testing.T) {
	a := box(0, 0, 1, 1)
	b := box(-1, 2, 0.5, 3)
	c := Combine(a, b)
	assert.True(t, c.Contains(a))
	assert.True(t, c.Contains(b))
}

func TestAABBContains(t *testing.T) {
	outer := box(-5, -5, 5, 5)
	inner := box(-1, -1, 1, 1)
	assert.True(t, outer.Contains(inner))
	assert.False(t, inner.Contains(outer))
}

func TestAABBExtendPadsEverySide(t *testing.T) {
	a := box(0, 0, 1, 1)
	fat := a.Extend(0.5)
	assert.Equal(t, pmath.V2{X: -0.5, Y: -0.5}, fat.Lower)
	assert.Equal(t, pmath.V2{X: 1.5, Y: 1.5}, fat.Upper)
}

func TestAABBPerimeter(t *testing.T) {
	a := box(0, 0, 3, 2)
	assert.Equal(t, pmath.R(10), a.Perimeter())
}

func TestAABBRayCastHitsFromOutside(t *testing.T) {
	a := box(-1, -1, 1, 1)
	in := RayCastInput{P1: pmath.V2{X: -5, Y: 0}, P2: pmath.V2{X: 5, Y: 0}, MaxFraction: 1}
	out, hit := a.RayCast(in)
	assert.True(t, hit)
	assert.InDelta(t, pmath.R(-1), out.Normal.X, 1e-9)
}

func TestAABBRayCastMissesParallelOutsideSlab(t *testing.T) {
	a := box(-1, -1, 1, 1)
	in := RayCastInput{P1: pmath.V2{X: -5, Y: 5}, P2: pmath.V2{X: 5, Y: 5}, MaxFraction: 1}
	_, hit := a.RayCast(in)
	assert.False(t, hit)
}

func TestAABBIsValidRejectsInvertedBox(t *testing.T) {
	assert.True(t, box(0, 0, 1, 1).IsValid())
	assert.False(t, box(1, 0, 0, 1).IsValid())
}

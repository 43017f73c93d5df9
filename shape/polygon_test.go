// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import (
	"testing"

	pmath "github.com/gazed/phys2d/math"
	"github.com/stretchr/testify/assert"
)

func TestNewBoxHasFourVertices(t *testing.T) {
	b := NewBox(1, 2)
	assert.Len(t, b.Vertices, 4)
	assert.Len(t, b.Normals, 4)
}

func TestNewBoxComputeMass(t *testing.T) {
	b := NewBox(1, 1)
	md := b.ComputeMass(1)
	assert.InDelta(t, pmath.R(4), md.Mass, 1e-6, "a 2x2 box at density 1 has area/mass 4")
	assert.InDelta(t, pmath.R(0), md.Center.X, 1e-9)
	assert.InDelta(t, pmath.R(0), md.Center.Y, 1e-9)
}

func TestNewBoxTestPoint(t *testing.T) {
	b := NewBox(1, 1)
	var xf pmath.Transform
	xf.SetIdentity()
	assert.True(t, b.TestPoint(&xf, &pmath.V2{X: 0.5, Y: 0.5}))
	assert.False(t, b.TestPoint(&xf, &pmath.V2{X: 2, Y: 0}))
}

func TestNewPolygonRejectsTooFewPoints(t *testing.T) {
	_, ok := NewPolygon([]pmath.V2{{X: 0, Y: 0}, {X: 1, Y: 0}}, 0, 0, 1)
	assert.False(t, ok)
}

func TestNewPolygonRejectsTooManyPoints(t *testing.T) {
	pts := make([]pmath.V2, MaxPolygonVertices+1)
	for i := range pts {
		angle := pmath.Pi2 * pmath.R(i) / pmath.R(len(pts))
		pts[i] = pmath.V2{X: pmath.Cos(angle), Y: pmath.Sin(angle)}
	}
	_, ok := NewPolygon(pts, 0, 0, 1)
	assert.False(t, ok)
}

func TestNewPolygonFromUnorderedPointsBuildsCCWHull(t *testing.T) {
	// a unit square handed in scrambled order, plus an interior point that
	// must be dropped by the hull computation.
	pts := []pmath.V2{
		{X: 1, Y: 1}, {X: 0, Y: 0}, {X: 0.5, Y: 0.5}, {X: 1, Y: 0}, {X: 0, Y: 1},
	}
	p, ok := NewPolygon(pts, 0, 0, 1)
	assert.True(t, ok)
	assert.Len(t, p.Vertices, 4, "interior point must not survive the hull")

	area := pmath.R(0)
	n := len(p.Vertices)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += p.Vertices[i].Cross2(&p.Vertices[j])
	}
	assert.Greater(t, area, pmath.R(0), "hull vertices must be wound counter-clockwise")
}

func TestPolygonComputeAABBMatchesTransformedVertices(t *testing.T) {
	b := NewBox(1, 1)
	var xf pmath.Transform
	xf.Set(&pmath.V2{X: 10, Y: 0}, 0)
	aabb := b.ComputeAABB(&xf, 0)
	assert.InDelta(t, pmath.R(9), aabb.Lower.X, 1e-9)
	assert.InDelta(t, pmath.R(11), aabb.Upper.X, 1e-9)
}

// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package collide

import (
	"testing"

	pmath "github.com/gazed/phys2d/math"
	"github.com/gazed/phys2d/shape"
	"github.com/stretchr/testify/assert"
)

func identityXf() pmath.Transform {
	var xf pmath.Transform
	xf.SetIdentity()
	return xf
}

func atXf(x, y pmath.R) pmath.Transform {
	var xf pmath.Transform
	xf.Set(&pmath.V2{X: x, Y: y}, 0)
	return xf
}

func TestCollideCirclesTouchingProducesOnePoint(t *testing.T) {
	a, _ := shape.NewCircle(pmath.V2{}, 1, 0.005, 100)
	b, _ := shape.NewCircle(pmath.V2{}, 1, 0.005, 100)

	m := Collide(a, 0, identityXf(), b, 0, atXf(1.5, 0), 10)
	assert.Equal(t, ManifoldCircles, m.Type)
	assert.Len(t, m.Points, 1)
}

func TestCollideCirclesSeparatedProducesNoPoints(t *testing.T) {
	a, _ := shape.NewCircle(pmath.V2{}, 1, 0.005, 100)
	b, _ := shape.NewCircle(pmath.V2{}, 1, 0.005, 100)

	m := Collide(a, 0, identityXf(), b, 0, atXf(5, 0), 10)
	assert.Empty(t, m.Points, "no overlap must yield no manifold points")
}

func TestCollidePolygonAndCircleCenterInsidePolygonUsesFaceNormal(t *testing.T) {
	box := shape.NewBox(1, 1)
	circle, _ := shape.NewCircle(pmath.V2{}, 0.5, 0.005, 100)

	m := Collide(box, 0, identityXf(), circle, 0, atXf(0.9, 0), 10)
	assert.Equal(t, ManifoldFaceA, m.Type)
	assert.Len(t, m.Points, 1)
}

func TestCollidePolygonAndCircleFlippedArgumentOrderMatchesUnflipped(t *testing.T) {
	box := shape.NewBox(1, 1)
	circle, _ := shape.NewCircle(pmath.V2{}, 0.5, 0.005, 100)

	direct := Collide(box, 0, identityXf(), circle, 0, atXf(0.9, 0), 10)
	flipped := Collide(circle, 0, atXf(0.9, 0), box, 0, identityXf(), 10)

	assert.Equal(t, ManifoldFaceB, flipped.Type)
	assert.Len(t, flipped.Points, 1)
	assert.Equal(t, direct.Points[0].LocalPoint, flipped.Points[0].LocalPoint)
}

func TestCollidePolygonsOverlappingBoxesProduceTwoPoints(t *testing.T) {
	a := shape.NewBox(1, 1)
	b := shape.NewBox(1, 1)

	m := Collide(a, 0, identityXf(), b, 0, atXf(1.5, 0), 10)
	assert.Equal(t, ManifoldFaceA, m.Type)
	assert.Len(t, m.Points, 2)
}

func TestCollidePolygonsSeparatedBoxesProduceNoManifold(t *testing.T) {
	a := shape.NewBox(1, 1)
	b := shape.NewBox(1, 1)

	m := Collide(a, 0, identityXf(), b, 0, atXf(10, 0), 10)
	assert.Empty(t, m.Points)
}

func TestCollidePolygonsTiedSeparationKeepsAAsReference(t *testing.T) {
	tall := shape.NewBox(0.2, 2)
	wide := shape.NewBox(2, 0.2)

	m := Collide(tall, 0, identityXf(), wide, 0, atXf(0, 0.35), 10)
	assert.NotEmpty(t, m.Points)
	assert.Equal(t, ManifoldFaceA, m.Type)
}

func TestComputeWorldManifoldFaceANormalPointsFromAToB(t *testing.T) {
	a := shape.NewBox(1, 1)
	b := shape.NewBox(1, 1)
	xfA, xfB := identityXf(), atXf(1.5, 0)

	m := Collide(a, 0, xfA, b, 0, xfB, 10)
	wm := ComputeWorldManifold(&m, &xfA, 0, &xfB, 0)

	assert.InDelta(t, pmath.R(1), wm.Normal.X, 1e-6)
	assert.InDelta(t, pmath.R(0), wm.Normal.Y, 1e-6)
	for _, p := range wm.Points {
		assert.Less(t, p.Separation, pmath.R(0))
	}
}

func TestComputeWorldManifoldCirclesSeparationMatchesGap(t *testing.T) {
	a, _ := shape.NewCircle(pmath.V2{}, 1, 0.005, 100)
	b, _ := shape.NewCircle(pmath.V2{}, 1, 0.005, 100)
	xfA, xfB := identityXf(), atXf(1.5, 0)

	m := Collide(a, 0, xfA, b, 0, xfB, 10)
	wm := ComputeWorldManifold(&m, &xfA, 1, &xfB, 1)
	assert.Len(t, wm.Points, 1)
	assert.InDelta(t, pmath.R(-0.5), wm.Points[0].Separation, 1e-6)
}

func TestComputeWorldManifoldEmptyManifoldYieldsNoPoints(t *testing.T) {
	var m Manifold
	xf := identityXf()
	wm := ComputeWorldManifold(&m, &xf, 0, &xf, 0)
	assert.Empty(t, wm.Points)
}

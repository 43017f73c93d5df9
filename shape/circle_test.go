// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import (
	"testing"

	pmath "github.com/gazed/phys2d/math"
	"github.com/stretchr/testify/assert"
)

func TestNewCircleRejectsOutOfRangeRadius(t *testing.T) {
	_, ok := NewCircle(pmath.V2{}, 0, 0.01, 10)
	assert.False(t, ok)
	_, ok = NewCircle(pmath.V2{}, 100, 0.01, 10)
	assert.False(t, ok)
	_, ok = NewCircle(pmath.V2{}, 1, 0.01, 10)
	assert.True(t, ok)
}

func TestCircleComputeAABBCenteredAtTransform(t *testing.T) {
	c, _ := NewCircle(pmath.V2{}, 1, 0.01, 10)
	var xf pmath.Transform
	xf.Set(&pmath.V2{X: 5, Y: 5}, 0)
	aabb := c.ComputeAABB(&xf, 0)
	assert.Equal(t, pmath.V2{X: 4, Y: 4}, aabb.Lower)
	assert.Equal(t, pmath.V2{X: 6, Y: 6}, aabb.Upper)
}

func TestCircleComputeMass(t *testing.T) {
	c, _ := NewCircle(pmath.V2{}, 2, 0.01, 10)
	md := c.ComputeMass(1)
	assert.InDelta(t, pmath.Pi*4, md.Mass, 1e-9)
}

func TestCircleTestPoint(t *testing.T) {
	c, _ := NewCircle(pmath.V2{}, 1, 0.01, 10)
	var xf pmath.Transform
	xf.SetIdentity()
	assert.True(t, c.TestPoint(&xf, &pmath.V2{X: 0.5, Y: 0}))
	assert.False(t, c.TestPoint(&xf, &pmath.V2{X: 2, Y: 0}))
}

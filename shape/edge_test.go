// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import (
	"testing"

	pmath "github.com/gazed/phys2d/math"
	"github.com/stretchr/testify/assert"
)

func TestEdgeComputeMassIsZero(t *testing.T) {
	e, ok := NewEdge(pmath.V2{X: -1}, pmath.V2{X: 1}, 0, 0, 1)
	assert.True(t, ok)
	md := e.ComputeMass(5)
	assert.Equal(t, pmath.R(0), md.Mass)
	assert.Equal(t, pmath.R(0), md.I)
}

func TestEdgeTestPointAlwaysFalse(t *testing.T) {
	e, _ := NewEdge(pmath.V2{X: -1}, pmath.V2{X: 1}, 0, 0, 1)
	var xf pmath.Transform
	xf.SetIdentity()
	assert.False(t, e.TestPoint(&xf, &pmath.V2{X: 0, Y: 0}), "an edge has no interior to test against")
}

func TestEdgeComputeAABBEnclosesBothEndpoints(t *testing.T) {
	e, _ := NewEdge(pmath.V2{X: -1, Y: 0}, pmath.V2{X: 3, Y: 2}, 0, 0, 1)
	var xf pmath.Transform
	xf.SetIdentity()
	aabb := e.ComputeAABB(&xf, 0)
	assert.Equal(t, pmath.R(-1), aabb.Lower.X)
	assert.Equal(t, pmath.R(3), aabb.Upper.X)
}

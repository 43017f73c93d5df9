// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import pmath "github.com/gazed/phys2d/math"

// EdgeShape is the "edge" variant: two vertices plus optional
// ghost vertices used by the polygon-vs-polygon collider to pick a
// smoother incident normal across a chain of edges. A bare edge (no
// chain) leaves HasVertex0/HasVertex3 false.
type EdgeShape struct {
	Vertex1, Vertex2 pmath.V2
	Vertex0, Vertex3 pmath.V2 // ghost vertices, valid only if Has* is set
	HasVertex0       bool
	HasVertex3       bool
	Radius           pmath.R
}

// NewEdge constructs a two-sided edge between v1 and v2.
func NewEdge(v1, v2 pmath.V2, radius pmath.R, min, max pmath.R) (*EdgeShape, bool) {
	if !validateRadius(radius, min, max) {
		return nil, false
	}
	return &EdgeShape{Vertex1: v1, Vertex2: v2, Radius: radius}, true
}

func (e *EdgeShape) ShapeType() Type  { return Edge }
func (e *EdgeShape) ChildCount() int { return 1 }

func (e *EdgeShape) Proxy(childIndex int) DistanceProxy {
	return DistanceProxy{Vertices: []pmath.V2{e.Vertex1, e.Vertex2}, Radius: e.Radius}
}

func (e *EdgeShape) ComputeAABB(xf *pmath.Transform, childIndex int) AABB {
	var v1, v2 pmath.V2
	xf.Point(&v1, &e.Vertex1)
	xf.Point(&v2, &e.Vertex2)
	lower := pmath.V2{X: pmath.Min(v1.X, v2.X), Y: pmath.Min(v1.Y, v2.Y)}
	upper := pmath.V2{X: pmath.Max(v1.X, v2.X), Y: pmath.Max(v1.Y, v2.Y)}
	return AABB{Lower: lower, Upper: upper}.Extend(e.Radius)
}

// ComputeMass returns zero mass: edges have no area and are meant to be
// attached to static or kinematic bodies, matching Box2D's
// b2EdgeShape::ComputeMass convention.
func (e *EdgeShape) ComputeMass(density pmath.R) MassData {
	mid := pmath.V2{X: 0.5 * (e.Vertex1.X + e.Vertex2.X), Y: 0.5 * (e.Vertex1.Y + e.Vertex2.Y)}
	return MassData{Mass: 0, Center: mid, I: 0}
}

func (e *EdgeShape) TestPoint(xf *pmath.Transform, p *pmath.V2) bool { return false }

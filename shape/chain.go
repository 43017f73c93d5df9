// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import pmath "github.com/gazed/phys2d/math"

// ChainShape is the "chain" shape variant: N edges sharing ghost
// topology, so the polygon-vs-edge collider can pick smooth incident
// normals across internal vertices instead of snagging on them. Each
// child index 0..len(Vertices)-2 is one edge.
type ChainShape struct {
	Vertices []pmath.V2
	// PrevVertex/NextVertex close the ghost topology at the open ends
	// of a non-looped chain; IsLoop means the chain wraps around to
	// Vertices[0] and uses internal ghosts at both ends.
	PrevVertex, NextVertex pmath.V2
	HasPrevVertex          bool
	HasNextVertex          bool
	IsLoop                 bool
}

// NewChain builds a chain shape from an ordered vertex list (3+ points).
func NewChain(vertices []pmath.V2, isLoop bool) (*ChainShape, bool) {
	if len(vertices) < 2 {
		return nil, false
	}
	return &ChainShape{Vertices: vertices, IsLoop: isLoop}, true
}

func (c *ChainShape) ShapeType() Type { return Chain }

func (c *ChainShape) ChildCount() int {
	n := len(c.Vertices) - 1
	if c.IsLoop {
		n++
	}
	return n
}

// EdgeAt returns an EdgeShape describing child edge i, with its ghost
// vertices populated from neighboring chain vertices where available.
func (c *ChainShape) EdgeAt(i int) EdgeShape {
	n := len(c.Vertices)
	e := EdgeShape{}
	i1 := i
	i2 := (i + 1) % n
	e.Vertex1 = c.Vertices[i1]
	e.Vertex2 = c.Vertices[i2]

	if c.IsLoop {
		i0 := (i1 - 1 + n) % n
		i3 := (i2 + 1) % n
		e.Vertex0, e.HasVertex0 = c.Vertices[i0], true
		e.Vertex3, e.HasVertex3 = c.Vertices[i3], true
	} else {
		if i1 > 0 {
			e.Vertex0, e.HasVertex0 = c.Vertices[i1-1], true
		} else if c.HasPrevVertex {
			e.Vertex0, e.HasVertex0 = c.PrevVertex, true
		}
		if i2+1 < n {
			e.Vertex3, e.HasVertex3 = c.Vertices[i2+1], true
		} else if c.HasNextVertex {
			e.Vertex3, e.HasVertex3 = c.NextVertex, true
		}
	}
	return e
}

func (c *ChainShape) Proxy(childIndex int) DistanceProxy {
	e := c.EdgeAt(childIndex)
	return DistanceProxy{Vertices: []pmath.V2{e.Vertex1, e.Vertex2}, Radius: 0}
}

func (c *ChainShape) ComputeAABB(xf *pmath.Transform, childIndex int) AABB {
	e := c.EdgeAt(childIndex)
	var v1, v2 pmath.V2
	xf.Point(&v1, &e.Vertex1)
	xf.Point(&v2, &e.Vertex2)
	return AABB{
		Lower: pmath.V2{X: pmath.Min(v1.X, v2.X), Y: pmath.Min(v1.Y, v2.Y)},
		Upper: pmath.V2{X: pmath.Max(v1.X, v2.X), Y: pmath.Max(v1.Y, v2.Y)},
	}
}

func (c *ChainShape) ComputeMass(density pmath.R) MassData { return MassData{} }

func (c *ChainShape) TestPoint(xf *pmath.Transform, p *pmath.V2) bool { return false }

// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import pmath "github.com/gazed/phys2d/math"

// CircleShape is the "point" variant: a single vertex with a radius >
// 0. Grounded on gazed/vu/physics/shape.go's sphere, reduced from 3D to
// 2D.
type CircleShape struct {
	Center pmath.V2
	Radius pmath.R
}

// NewCircle constructs a circle centered at center with the given
// radius. Returns (nil, false) if radius is outside [min, max].
func NewCircle(center pmath.V2, radius pmath.R, min, max pmath.R) (*CircleShape, bool) {
	if !validateRadius(radius, min, max) {
		return nil, false
	}
	return &CircleShape{Center: center, Radius: radius}, true
}

func (c *CircleShape) ShapeType() Type  { return Circle }
func (c *CircleShape) ChildCount() int { return 1 }

func (c *CircleShape) Proxy(childIndex int) DistanceProxy {
	return DistanceProxy{Vertices: []pmath.V2{c.Center}, Radius: c.Radius}
}

func (c *CircleShape) ComputeAABB(xf *pmath.Transform, childIndex int) AABB {
	var p pmath.V2
	xf.Point(&p, &c.Center)
	return AABB{
		Lower: pmath.V2{X: p.X - c.Radius, Y: p.Y - c.Radius},
		Upper: pmath.V2{X: p.X + c.Radius, Y: p.Y + c.Radius},
	}
}

func (c *CircleShape) ComputeMass(density pmath.R) MassData {
	mass := density * pmath.Pi * c.Radius * c.Radius
	i := mass * (0.5*c.Radius*c.Radius + c.Center.Dot(&c.Center))
	return MassData{Mass: mass, Center: c.Center, I: i}
}

func (c *CircleShape) TestPoint(xf *pmath.Transform, p *pmath.V2) bool {
	var center pmath.V2
	xf.Point(&center, &c.Center)
	d := pmath.V2{X: p.X - center.X, Y: p.Y - center.Y}
	return d.LenSqr() <= c.Radius*c.Radius
}

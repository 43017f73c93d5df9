// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import pmath "github.com/gazed/phys2d/math"

// MaxPolygonVertices bounds a convex polygon's vertex count.
const MaxPolygonVertices = pmath.MaxPolygonVertices

// PolygonShape is the "polygon" variant: 3..MaxPolygonVertices CCW
// convex vertices with a cached centroid. Grounded on Box2D's
// b2PolygonShape, reduced to 2D (already native here).
type PolygonShape struct {
	Vertices []pmath.V2
	Normals  []pmath.V2
	Centroid pmath.V2
	Radius   pmath.R
}

// NewBox returns an axis-aligned box polygon centered at the origin with
// the given half-widths.
func NewBox(hx, hy pmath.R) *PolygonShape {
	verts := []pmath.V2{
		{X: -hx, Y: -hy}, {X: hx, Y: -hy}, {X: hx, Y: hy}, {X: -hx, Y: hy},
	}
	return polygonFromConvexHull(verts, pmath.LinearSlop*2)
}

// NewPolygon builds a convex polygon from an (unordered) set of points,
// computing the convex hull the way Box2D's b2PolygonShape::Set does
// (gift-wrapping / Andrew-monotone-chain-equivalent incremental hull).
// Returns (nil, false) if fewer than 3 distinct hull vertices result, or
// the hull would exceed MaxPolygonVertices.
func NewPolygon(points []pmath.V2, radius pmath.R, min, max pmath.R) (*PolygonShape, bool) {
	if !validateRadius(radius, min, max) {
		return nil, false
	}
	if len(points) < 3 || len(points) > MaxPolygonVertices {
		return nil, false
	}
	p := polygonFromConvexHull(points, radius)
	if p == nil || len(p.Vertices) < 3 {
		return nil, false
	}
	return p, true
}

// polygonFromConvexHull computes the convex hull of points (assumed
// already reasonably convex or close to it, callers are expected to
// supply CCW convex vertices) and derives normals + centroid.
func polygonFromConvexHull(points []pmath.V2, radius pmath.R) *PolygonShape {
	hull := convexHull(points)
	if len(hull) < 3 {
		return nil
	}
	n := len(hull)
	normals := make([]pmath.V2, n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		edge := pmath.V2{X: hull[j].X - hull[i].X, Y: hull[j].Y - hull[i].Y}
		var normal pmath.V2
		normal.RPerp(&edge)
		normal.Unit()
		normals[i] = normal
	}
	return &PolygonShape{
		Vertices: hull,
		Normals:  normals,
		Centroid: computeCentroid(hull),
		Radius:   radius,
	}
}

// convexHull computes the CCW convex hull via Andrew's monotone chain.
func convexHull(points []pmath.V2) []pmath.V2 {
	pts := dedupe(points)
	if len(pts) < 3 {
		return pts
	}
	sortByXThenY(pts)

	cross := func(o, a, b pmath.V2) pmath.R {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	lower := make([]pmath.V2, 0, len(pts))
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	upper := make([]pmath.V2, 0, len(pts))
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	lower = lower[:len(lower)-1]
	upper = upper[:len(upper)-1]
	return append(lower, upper...)
}

func dedupe(points []pmath.V2) []pmath.V2 {
	out := make([]pmath.V2, 0, len(points))
	for _, p := range points {
		dup := false
		for _, q := range out {
			if p.Aeq(&q) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

func sortByXThenY(pts []pmath.V2) {
	// insertion sort: hull inputs are small (<= MaxPolygonVertices in the
	// common case), so O(n^2) is cheap and avoids an extra import.
	for i := 1; i < len(pts); i++ {
		j := i
		for j > 0 && less(pts[j], pts[j-1]) {
			pts[j], pts[j-1] = pts[j-1], pts[j]
			j--
		}
	}
}

func less(a, b pmath.V2) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

func computeCentroid(verts []pmath.V2) pmath.V2 {
	center := pmath.V2{}
	area := pmath.R(0)
	origin := verts[0]
	const inv3 = pmath.R(1.0 / 3.0)
	for i := 1; i+1 < len(verts); i++ {
		e1 := pmath.V2{X: verts[i].X - origin.X, Y: verts[i].Y - origin.Y}
		e2 := pmath.V2{X: verts[i+1].X - origin.X, Y: verts[i+1].Y - origin.Y}
		d := e1.Cross2(&e2)
		triArea := 0.5 * d
		area += triArea
		center.X += triArea * inv3 * (e1.X + e2.X)
		center.Y += triArea * inv3 * (e1.Y + e2.Y)
	}
	if area > pmath.Epsilon {
		center.X /= area
		center.Y /= area
	}
	center.X += origin.X
	center.Y += origin.Y
	return center
}

func (p *PolygonShape) ShapeType() Type  { return Polygon }
func (p *PolygonShape) ChildCount() int { return 1 }

func (p *PolygonShape) Proxy(childIndex int) DistanceProxy {
	return DistanceProxy{Vertices: p.Vertices, Radius: p.Radius}
}

func (p *PolygonShape) ComputeAABB(xf *pmath.Transform, childIndex int) AABB {
	var v pmath.V2
	xf.Point(&v, &p.Vertices[0])
	lower, upper := v, v
	for i := 1; i < len(p.Vertices); i++ {
		xf.Point(&v, &p.Vertices[i])
		lower.Min(&lower, &v)
		upper.Max(&upper, &v)
	}
	return AABB{Lower: lower, Upper: upper}.Extend(p.Radius)
}

func (p *PolygonShape) ComputeMass(density pmath.R) MassData {
	// Box2D's b2PolygonShape::ComputeMass: triangulate from vertex 0,
	// accumulate area/centroid/inertia per triangle.
	center := pmath.V2{}
	area := pmath.R(0)
	i := pmath.R(0)
	origin := p.Vertices[0]
	const k_inv3 = pmath.R(1.0 / 3.0)
	for idx := 1; idx+1 < len(p.Vertices); idx++ {
		e1 := pmath.V2{X: p.Vertices[idx].X - origin.X, Y: p.Vertices[idx].Y - origin.Y}
		e2 := pmath.V2{X: p.Vertices[idx+1].X - origin.X, Y: p.Vertices[idx+1].Y - origin.Y}
		d := e1.Cross2(&e2)
		triArea := 0.5 * d
		area += triArea
		center.X += triArea * k_inv3 * (e1.X + e2.X)
		center.Y += triArea * k_inv3 * (e1.Y + e2.Y)
		intx2 := e1.X*e1.X + e1.X*e2.X + e2.X*e2.X
		inty2 := e1.Y*e1.Y + e1.Y*e2.Y + e2.Y*e2.Y
		i += (0.25 * k_inv3 * d) * (intx2 + inty2)
	}
	mass := density * area
	if area > pmath.Epsilon {
		center.X /= area
		center.Y /= area
	}
	center.X += origin.X
	center.Y += origin.Y

	iOrigin := density * i
	// shift inertia from triangulation origin (vertex 0) to the shape
	// centroid, then back out to the shape's local origin, matching
	// Box2D's two parallel-axis shifts.
	localCenter := pmath.V2{X: center.X - origin.X, Y: center.Y - origin.Y}
	iOrigin -= mass * localCenter.Dot(&localCenter)

	return MassData{Mass: mass, Center: center, I: iOrigin + mass*center.Dot(&center)}
}

func (p *PolygonShape) TestPoint(xf *pmath.Transform, pt *pmath.V2) bool {
	var local pmath.V2
	xf.InvPoint(&local, pt)
	for i := range p.Vertices {
		d := pmath.V2{X: local.X - p.Vertices[i].X, Y: local.Y - p.Vertices[i].Y}
		if p.Normals[i].Dot(&d) > 0 {
			return false
		}
	}
	return true
}

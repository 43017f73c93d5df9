// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package shape implements the polymorphic shape variants: circle
// (point), edge, polygon, chain. Each exposes a DistanceProxy per child,
// the common currency consumed by the distance, collide and TOI
// packages. Grounded on gazed/vu/physics/shape.go's Shape interface, but
// 2D and re-keyed to a tagged-sum style (a Type() discriminant plus
// per-case fields) rather than 3D virtual shapes.
package shape

import (
	pmath "github.com/gazed/phys2d/math"
)

// Type discriminates the concrete shape variant.
type Type int

const (
	Circle Type = iota
	Edge
	Polygon
	Chain
)

func (t Type) String() string {
	switch t {
	case Circle:
		return "circle"
	case Edge:
		return "edge"
	case Polygon:
		return "polygon"
	case Chain:
		return "chain"
	default:
		return "unknown"
	}
}

// DistanceProxy is the common currency the distance/GJK, collide and TOI
// packages operate on: a small convex vertex set plus a "skin" radius. A
// single concrete DistanceProxy never mixes vertices of two different
// children: callers request the proxy for one child index at a time.
type DistanceProxy struct {
	Vertices []pmath.V2
	Radius   pmath.R
}

// SupportIndex returns the index of the vertex farthest along d.
func (p *DistanceProxy) SupportIndex(d *pmath.V2) int {
	best := 0
	bestDot := p.Vertices[0].Dot(d)
	for i := 1; i < len(p.Vertices); i++ {
		dot := p.Vertices[i].Dot(d)
		if dot > bestDot {
			bestDot = dot
			best = i
		}
	}
	return best
}

// Support returns the vertex farthest along d.
func (p *DistanceProxy) Support(d *pmath.V2) pmath.V2 {
	return p.Vertices[p.SupportIndex(d)]
}

// MassData is the mass, center of mass and rotational inertia a fixture
// derives from its shape and density. I is about the shape's local
// origin, matching Box2D's b2MassData convention; Body.ResetMassData
// shifts it to the body's combined center of mass via the parallel axis
// theorem once all fixtures are summed.
type MassData struct {
	Mass   pmath.R
	Center pmath.V2
	I      pmath.R
}

// Shape is the common interface every concrete shape variant satisfies.
// ChildCount/Proxy/AABB are keyed by childIndex so that Chain (many edges)
// and the single-child shapes share one contract.
type Shape interface {
	ShapeType() Type
	ChildCount() int
	Proxy(childIndex int) DistanceProxy
	ComputeAABB(xf *pmath.Transform, childIndex int) AABB
	ComputeMass(density pmath.R) MassData
	TestPoint(xf *pmath.Transform, p *pmath.V2) bool
}

// validateRadius enforces the configured minVertexRadius/maxVertexRadius
// bound; called by shape constructors, which return InvalidArgument on
// violation.
func validateRadius(r, min, max pmath.R) bool {
	return r >= min && r <= max && pmath.IsValid(r)
}

// ValidateRadius is the exported form used by constructors in this
// package and by dynamics.Fixture when re-checking on construction with
// a live World's configured bounds.
func ValidateRadius(r, min, max pmath.R) bool { return validateRadius(r, min, max) }

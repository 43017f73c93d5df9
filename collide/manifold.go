// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package collide implements narrow-phase collide_shapes dispatch and
// manifold / world-manifold derivation. Grounded in
// gazed/vu/physics/collision_test.go's dispatch-table idiom (a
// [typeA][typeB] table that canonicalizes argument order) and
// clipping.go's Sutherland-Hodgman-derived face clipping, generalized
// from that file's 3D convex-hull setting down to 2D polygons.
package collide

import pmath "github.com/gazed/phys2d/math"

// FeatureType distinguishes a contact point's anchoring feature.
type FeatureType uint8

const (
	FeatureVertex FeatureType = iota
	FeatureFace
)

// ContactFeature is the compact identity used to match contact points
// across steps for warm-starting.
type ContactFeature struct {
	TypeA, TypeB   FeatureType
	IndexA, IndexB uint8
}

// ManifoldType selects how a Manifold's fields are interpreted.
type ManifoldType int

const (
	ManifoldCircles ManifoldType = iota
	ManifoldFaceA
	ManifoldFaceB
)

// ManifoldPoint is one of a manifold's 0-2 contact points.
type ManifoldPoint struct {
	LocalPoint     pmath.V2
	NormalImpulse  pmath.R
	TangentImpulse pmath.R
	Feature        ContactFeature
}

// Manifold is a 0-2 point contact description between two child shapes.
type Manifold struct {
	Type        ManifoldType
	LocalNormal pmath.V2 // meaningful for FaceA/FaceB
	LocalPoint  pmath.V2 // face point (FaceA/FaceB) or center on A (Circles)
	Points      []ManifoldPoint
}

// WorldManifoldPoint is one point of a manifold resolved into world
// space for the velocity solver.
type WorldManifoldPoint struct {
	Point      pmath.V2 // the point used by the solver (midpoint of the two surfaces)
	Separation pmath.R
}

// WorldManifold is the resolved, world-space form of a Manifold.
type WorldManifold struct {
	Normal pmath.V2
	Points []WorldManifoldPoint
}

// ComputeWorldManifold derives world points/normal/separation from a
// manifold plus the two shapes' current transforms and vertex radii; the
// faceB normal is negated so the normal always points from A to B.
func ComputeWorldManifold(m *Manifold, xfA *pmath.Transform, radiusA pmath.R, xfB *pmath.Transform, radiusB pmath.R) WorldManifold {
	wm := WorldManifold{Points: make([]WorldManifoldPoint, len(m.Points))}
	if len(m.Points) == 0 {
		return wm
	}

	switch m.Type {
	case ManifoldCircles:
		var pointA, pointB pmath.V2
		xfA.Point(&pointA, &m.LocalPoint)
		xfB.Point(&pointB, &m.Points[0].LocalPoint)
		normal := pmath.V2{X: 1, Y: 0}
		if pointA.Dist(&pointB) > pmath.Epsilon {
			normal.Sub(&pointB, &pointA)
			normal.Unit()
		}
		wm.Normal = normal
		var cA, cB pmath.V2
		cA.AddScaled(&pointA, &normal, radiusA)
		cB.AddScaled(&pointB, &normal, -radiusB)
		mid := pmath.V2{X: 0.5 * (cA.X + cB.X), Y: 0.5 * (cA.Y + cB.Y)}
		sep := pointB.Dist(&pointA) - radiusA - radiusB
		wm.Points[0] = WorldManifoldPoint{Point: mid, Separation: sep}

	case ManifoldFaceA, ManifoldFaceB:
		refXf, otherXf := xfA, xfB
		refRadius, otherRadius := radiusA, radiusB
		if m.Type == ManifoldFaceB {
			refXf, otherXf = xfB, xfA
			refRadius, otherRadius = radiusB, radiusA
		}
		var normal pmath.V2
		refXf.Vector(&normal, &m.LocalNormal)
		var planePoint pmath.V2
		refXf.Point(&planePoint, &m.LocalPoint)

		for i, p := range m.Points {
			var clipPoint pmath.V2
			otherXf.Point(&clipPoint, &p.LocalPoint)
			d := pmath.V2{X: clipPoint.X - planePoint.X, Y: clipPoint.Y - planePoint.Y}
			sep := d.Dot(&normal) - refRadius - otherRadius

			var cA, cB pmath.V2
			cA.AddScaled(&clipPoint, &normal, refRadius-d.Dot(&normal))
			cB.AddScaled(&clipPoint, &normal, -otherRadius)
			mid := pmath.V2{X: 0.5 * (cA.X + cB.X), Y: 0.5 * (cA.Y + cB.Y)}
			wm.Points[i] = WorldManifoldPoint{Point: mid, Separation: sep}
		}
		if m.Type == ManifoldFaceB {
			normal.Neg(&normal)
		}
		wm.Normal = normal
	}
	return wm
}

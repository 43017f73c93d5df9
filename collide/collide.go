// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package collide

import (
	pmath "github.com/gazed/phys2d/math"
	"github.com/gazed/phys2d/shape"
)

// polyProxy unifies PolygonShape and (ghost-adjusted) EdgeShape/ChainShape
// children into one convex-with-normals shape so collidePolygons and
// collidePolygonAndCircle need only one code path for both, the way
// Box2D's b2CollideEdgeAndPolygon internally builds a temporary polygon
// from the edge before calling b2CollidePolygons.
type polyProxy struct {
	vertices []pmath.V2
	normals  []pmath.V2
	radius   pmath.R
}

func fromPolygon(p *shape.PolygonShape) polyProxy {
	return polyProxy{vertices: p.Vertices, normals: p.Normals, radius: p.Radius}
}

func fromEdge(e *shape.EdgeShape) polyProxy {
	edge := pmath.V2{X: e.Vertex2.X - e.Vertex1.X, Y: e.Vertex2.Y - e.Vertex1.Y}
	var n1 pmath.V2
	n1.RPerp(&edge)
	n1.Unit()
	var n2 pmath.V2
	n2.Neg(&n1)
	return polyProxy{
		vertices: []pmath.V2{e.Vertex1, e.Vertex2},
		normals:  []pmath.V2{n1, n2},
		radius:   e.Radius,
	}
}

// Collide dispatches on whether each shape's child is a point (circle) or
// has two or more vertices (edge, chain edge, polygon). For a circle and
// a polygon-like shape the polygon is passed first to
// collidePolygonAndCircle, and when shapeA is the circle the result is
// flipped so that A and B in the manifold stay shapeA and shapeB. Two
// polygon-like shapes are passed in the caller's order. maxCirclesRatio
// is Config.MaxCirclesRatio.
func Collide(shapeA shape.Shape, childA int, xfA pmath.Transform, shapeB shape.Shape, childB int, xfB pmath.Transform, maxCirclesRatio pmath.R) Manifold {
	pa, okA := asPolyProxy(shapeA, childA)
	pb, okB := asPolyProxy(shapeB, childB)

	switch {
	case !okA && !okB:
		// both are points (circles).
		return collideCircles(shapeA.Proxy(childA), xfA, shapeB.Proxy(childB), xfB)
	case okA && !okB:
		circle := shapeB.Proxy(childB)
		m := collidePolygonAndCircle(pa, xfA, circle.Vertices[0], circle.Radius, xfB)
		return m
	case !okA && okB:
		circle := shapeA.Proxy(childA)
		m := collidePolygonAndCircle(pb, xfB, circle.Vertices[0], circle.Radius, xfA)
		return flipManifold(m)
	default:
		return collidePolygons(pa, xfA, pb, xfB, maxCirclesRatio)
	}
}

// asPolyProxy returns the shape's (vertices, normals) form when it has 2+
// vertices (edge/chain-edge/polygon), or ok=false for a point (circle).
func asPolyProxy(s shape.Shape, child int) (polyProxy, bool) {
	switch v := s.(type) {
	case *shape.PolygonShape:
		return fromPolygon(v), true
	case *shape.EdgeShape:
		return fromEdge(v), true
	case *shape.ChainShape:
		e := v.EdgeAt(child)
		return fromEdge(&e), true
	default:
		return polyProxy{}, false
	}
}

func flipManifold(m Manifold) Manifold {
	switch m.Type {
	case ManifoldFaceA:
		m.Type = ManifoldFaceB
	case ManifoldFaceB:
		m.Type = ManifoldFaceA
	}
	for i := range m.Points {
		m.Points[i].Feature.TypeA, m.Points[i].Feature.TypeB = m.Points[i].Feature.TypeB, m.Points[i].Feature.TypeA
		m.Points[i].Feature.IndexA, m.Points[i].Feature.IndexB = m.Points[i].Feature.IndexB, m.Points[i].Feature.IndexA
	}
	return m
}

// collideCircles implements the "point vs point" case.
func collideCircles(a shape.DistanceProxy, xfA pmath.Transform, b shape.DistanceProxy, xfB pmath.Transform) Manifold {
	var pA, pB pmath.V2
	xfA.Point(&pA, &a.Vertices[0])
	xfB.Point(&pB, &b.Vertices[0])
	total := a.Radius + b.Radius
	if pA.Dist(&pB) > total {
		return Manifold{}
	}
	return Manifold{
		Type:       ManifoldCircles,
		LocalPoint: a.Vertices[0],
		Points: []ManifoldPoint{
			{LocalPoint: b.Vertices[0], Feature: ContactFeature{TypeA: FeatureVertex, TypeB: FeatureVertex}},
		},
	}
}

// collidePolygonAndCircle implements the "polygon vs point" case.
// poly/xfPoly play the role of "A"; the circle (in its own local frame,
// transformed by xfCircle) plays "B". The returned manifold's LocalNormal
// and LocalPoint are in poly's local frame and its point's LocalPoint is
// the circle's center in the circle's own local frame (matching Box2D's
// b2CollidePolygonAndCircle convention).
func collidePolygonAndCircle(poly polyProxy, xfPoly pmath.Transform, circleCenter pmath.V2, circleRadius pmath.R, xfCircle pmath.Transform) Manifold {
	var worldCenter pmath.V2
	xfCircle.Point(&worldCenter, &circleCenter)
	var c pmath.V2
	xfPoly.InvPoint(&c, &worldCenter)

	// find the edge with maximum separation.
	best := 0
	bestSep := pmath.R(-1e300)
	total := poly.radius + circleRadius
	for i := range poly.vertices {
		d := pmath.V2{X: c.X - poly.vertices[i].X, Y: c.Y - poly.vertices[i].Y}
		s := poly.normals[i].Dot(&d)
		if s > total {
			return Manifold{}
		}
		if s > bestSep {
			bestSep = s
			best = i
		}
	}

	v1 := poly.vertices[best]
	v2 := poly.vertices[(best+1)%len(poly.vertices)]

	if bestSep < pmath.Epsilon {
		// center is inside the polygon: use the face normal directly.
		normal := poly.normals[best]
		return Manifold{
			Type:        ManifoldFaceA,
			LocalNormal: normal,
			LocalPoint:  pmath.V2{X: 0.5 * (v1.X + v2.X), Y: 0.5 * (v1.Y + v2.Y)},
			Points: []ManifoldPoint{
				{LocalPoint: circleCenter, Feature: ContactFeature{TypeA: FeatureFace, IndexA: uint8(best), TypeB: FeatureVertex}},
			},
		}
	}

	u1 := (c.X-v1.X)*(v2.X-v1.X) + (c.Y-v1.Y)*(v2.Y-v1.Y)
	u2 := (c.X-v2.X)*(v1.X-v2.X) + (c.Y-v2.Y)*(v1.Y-v2.Y)

	switch {
	case u1 <= 0:
		if c.DistSqr(&v1) > total*total {
			return Manifold{}
		}
		var normal pmath.V2
		normal.Sub(&c, &v1)
		normal.Unit()
		return Manifold{
			Type:        ManifoldFaceA,
			LocalNormal: normal,
			LocalPoint:  v1,
			Points: []ManifoldPoint{
				{LocalPoint: circleCenter, Feature: ContactFeature{TypeA: FeatureVertex, IndexA: uint8(best), TypeB: FeatureVertex}},
			},
		}
	case u2 <= 0:
		if c.DistSqr(&v2) > total*total {
			return Manifold{}
		}
		var normal pmath.V2
		normal.Sub(&c, &v2)
		normal.Unit()
		idx := uint8((best + 1) % len(poly.vertices))
		return Manifold{
			Type:        ManifoldFaceA,
			LocalNormal: normal,
			LocalPoint:  v2,
			Points: []ManifoldPoint{
				{LocalPoint: circleCenter, Feature: ContactFeature{TypeA: FeatureVertex, IndexA: idx, TypeB: FeatureVertex}},
			},
		}
	default:
		normal := poly.normals[best]
		return Manifold{
			Type:        ManifoldFaceA,
			LocalNormal: normal,
			LocalPoint:  pmath.V2{X: 0.5 * (v1.X + v2.X), Y: 0.5 * (v1.Y + v2.Y)},
			Points: []ManifoldPoint{
				{LocalPoint: circleCenter, Feature: ContactFeature{TypeA: FeatureFace, IndexA: uint8(best), TypeB: FeatureVertex}},
			},
		}
	}
}

// findMaxSeparation returns the index of the edge of poly1 with maximum
// separation from poly2 and that separation (the SAT step, face of A vs
// vertices of B).
func findMaxSeparation(poly1, poly2 polyProxy, xf1, xf2 pmath.Transform) (int, pmath.R) {
	var xf pmath.Transform
	xf.MulT(&xf2, &xf1)

	bestIndex := 0
	bestSep := pmath.R(-1e300)
	for i := range poly1.vertices {
		var n pmath.V2
		xf.Vector(&n, &poly1.normals[i])
		var v1 pmath.V2
		xf.Point(&v1, &poly1.vertices[i])

		si := pmath.R(1e300)
		for j := range poly2.vertices {
			d := pmath.V2{X: poly2.vertices[j].X - v1.X, Y: poly2.vertices[j].Y - v1.Y}
			s := n.Dot(&d)
			if s < si {
				si = s
			}
		}
		if si > bestSep {
			bestSep = si
			bestIndex = i
		}
	}
	return bestIndex, bestSep
}

// clipIncidentEdge picks poly2's edge whose normal is most anti-parallel
// to the reference normal, returning it tagged with its feature indices.
func clipIncidentEdge(poly2 polyProxy, xf2 pmath.Transform, refNormalWorld pmath.V2) [2]clipVertex {
	best := 0
	minDot := pmath.R(1e300)
	for i := range poly2.normals {
		var n pmath.V2
		xf2.Vector(&n, &poly2.normals[i])
		d := n.Dot(&refNormalWorld)
		if d < minDot {
			minDot = d
			best = i
		}
	}
	i1 := best
	i2 := (best + 1) % len(poly2.vertices)
	var v1, v2 pmath.V2
	xf2.Point(&v1, &poly2.vertices[i1])
	xf2.Point(&v2, &poly2.vertices[i2])
	return [2]clipVertex{
		{v: v1, feature: ContactFeature{TypeB: FeatureVertex, IndexB: uint8(i1)}},
		{v: v2, feature: ContactFeature{TypeB: FeatureVertex, IndexB: uint8(i2)}},
	}
}

const relativeTol = 0.98
const absoluteTol = 0.001

// collidePolygons implements the "polygon vs polygon" case, including
// the corner-check fallback when either side-plane clip leaves fewer than
// two points or no clipped point lies within totalRadius.
func collidePolygons(polyA polyProxy, xfA pmath.Transform, polyB polyProxy, xfB pmath.Transform, maxCirclesRatio pmath.R) Manifold {
	totalRadius := polyA.radius + polyB.radius

	edgeA, sepA := findMaxSeparation(polyA, polyB, xfA, xfB)
	if sepA > totalRadius {
		return Manifold{}
	}
	edgeB, sepB := findMaxSeparation(polyB, polyA, xfB, xfA)
	if sepB > totalRadius {
		return Manifold{}
	}

	var refPoly, incPoly polyProxy
	var refXf, incXf pmath.Transform
	var refEdge int
	flip := false

	if sepB > sepA+0.1*pmath.LinearSlop {
		refPoly, incPoly = polyB, polyA
		refXf, incXf = xfB, xfA
		refEdge = edgeB
		flip = true
	} else {
		refPoly, incPoly = polyA, polyB
		refXf, incXf = xfA, xfB
		refEdge = edgeA
		flip = false
	}

	i1 := refEdge
	i2 := (refEdge + 1) % len(refPoly.vertices)
	v1, v2 := refPoly.vertices[i1], refPoly.vertices[i2]
	localNormal := refPoly.normals[refEdge]
	localTangent := pmath.V2{X: v2.X - v1.X, Y: v2.Y - v1.Y}
	localTangent.Unit()

	var refNormalWorld pmath.V2
	refXf.Vector(&refNormalWorld, &localNormal)
	var tangent pmath.V2
	refXf.Vector(&tangent, &localTangent)
	var normalSide pmath.V2
	normalSide.RPerp(&tangent)

	var rv1, rv2 pmath.V2
	refXf.Point(&rv1, &v1)
	refXf.Point(&rv2, &v2)

	incident := clipIncidentEdge(incPoly, incXf, refNormalWorld)

	var negTangent pmath.V2
	negTangent.Neg(&tangent)
	offset1 := negTangent.Dot(&rv1)
	clipped1, count1 := clipSegmentToLine(incident, negTangent, offset1, uint8(i1), true)
	if count1 < 2 {
		return cornerFallback(refPoly, incPoly, refXf, incXf, refEdge, totalRadius, flip, maxCirclesRatio)
	}

	offset2 := tangent.Dot(&rv2)
	clipped2, count2 := clipSegmentToLine(clipped1, tangent, offset2, uint8(i2), true)
	if count2 < 2 {
		return cornerFallback(refPoly, incPoly, refXf, incXf, refEdge, totalRadius, flip, maxCirclesRatio)
	}

	var points []ManifoldPoint
	for i := 0; i < count2; i++ {
		d := pmath.V2{X: clipped2[i].v.X - rv1.X, Y: clipped2[i].v.Y - rv1.Y}
		sep := normalSide.Dot(&d)
		if sep <= totalRadius {
			var local pmath.V2
			incXf.InvPoint(&local, &clipped2[i].v)
			feature := clipped2[i].feature
			if flip {
				feature.TypeA, feature.TypeB = feature.TypeB, feature.TypeA
				feature.IndexA, feature.IndexB = feature.IndexB, feature.IndexA
			}
			points = append(points, ManifoldPoint{LocalPoint: local, Feature: feature})
		}
	}

	if len(points) == 0 {
		return cornerFallback(refPoly, incPoly, refXf, incXf, refEdge, totalRadius, flip, maxCirclesRatio)
	}

	mType := ManifoldFaceA
	if flip {
		mType = ManifoldFaceB
	}
	return Manifold{
		Type:        mType,
		LocalNormal: localNormal,
		LocalPoint:  pmath.V2{X: 0.5 * (v1.X + v2.X), Y: 0.5 * (v1.Y + v2.Y)},
		Points:      points,
	}
}

// cornerFallback falls back to up to four vertex-vertex corner checks,
// promoting to a Face* vertex-vertex manifold when the reference edge is
// long relative to its radius (maxCirclesRatio), to avoid narrow-phase
// normal popping near polygon corners.
func cornerFallback(refPoly, incPoly polyProxy, refXf, incXf pmath.Transform, refEdge int, totalRadius pmath.R, flip bool, maxCirclesRatio pmath.R) Manifold {
	i1 := refEdge
	i2 := (refEdge + 1) % len(refPoly.vertices)
	var rv1, rv2 pmath.V2
	refXf.Point(&rv1, &refPoly.vertices[i1])
	refXf.Point(&rv2, &refPoly.vertices[i2])

	bestSep := pmath.R(1e300)
	var bestWorld pmath.V2
	bestRefIsV1 := true
	bestIncIdx := 0

	var refNormalWorld pmath.V2
	refXf.Vector(&refNormalWorld, &refPoly.normals[refEdge])
	incident := clipIncidentEdge(incPoly, incXf, refNormalWorld)

	check := func(refWorld pmath.V2, refIsV1 bool) {
		for _, cv := range incident {
			d := refWorld.Dist(&cv.v)
			if d < bestSep {
				bestSep = d
				bestWorld = cv.v
				bestRefIsV1 = refIsV1
				bestIncIdx = int(cv.feature.IndexB)
			}
		}
	}
	check(rv1, true)
	check(rv2, false)

	if bestSep > totalRadius {
		return Manifold{}
	}

	refWorld := rv1
	refIdx := i1
	if !bestRefIsV1 {
		refWorld = rv2
		refIdx = i2
	}

	edgeLen := rv1.Dist(&rv2)
	radius := refPoly.radius
	if radius < pmath.Epsilon {
		radius = pmath.Epsilon
	}
	useFace := edgeLen/radius > maxCirclesRatio

	var localRef, localInc pmath.V2
	refXf.InvPoint(&localRef, &refWorld)
	incXf.InvPoint(&localInc, &bestWorld)

	feature := ContactFeature{TypeA: FeatureVertex, IndexA: uint8(refIdx), TypeB: FeatureVertex, IndexB: uint8(bestIncIdx)}
	mType := ManifoldCircles
	var localNormal pmath.V2
	if useFace {
		mType = ManifoldFaceA
		var diff pmath.V2
		diff.Sub(&bestWorld, &refWorld)
		diff.Unit()
		refXf.InvVector(&localNormal, &diff)
		feature.TypeA = FeatureFace
	}
	if flip {
		feature.TypeA, feature.TypeB = feature.TypeB, feature.TypeA
		feature.IndexA, feature.IndexB = feature.IndexB, feature.IndexA
		if mType == ManifoldFaceA {
			mType = ManifoldFaceB
		}
	}

	if mType == ManifoldCircles {
		localA, localB := localRef, localInc
		if flip {
			localA, localB = localInc, localRef
		}
		return Manifold{
			Type:       ManifoldCircles,
			LocalPoint: localA,
			Points:     []ManifoldPoint{{LocalPoint: localB, Feature: feature}},
		}
	}
	return Manifold{
		Type:        mType,
		LocalNormal: localNormal,
		LocalPoint:  localRef,
		Points:      []ManifoldPoint{{LocalPoint: localInc, Feature: feature}},
	}
}

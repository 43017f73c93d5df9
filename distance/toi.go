// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package distance

import (
	pmath "github.com/gazed/phys2d/math"
	"github.com/gazed/phys2d/shape"
)

// TOIState classifies the result of a TOI query: touching, separated,
// or overlapped.
type TOIState int

const (
	TOIUnknown TOIState = iota
	TOIFailed
	TOIOverlapped
	TOITouching
	TOISeparated
)

// TOIInput bundles the two proxies, their sweeps, and the target
// separation tolerance for a TOI query.
type TOIInput struct {
	ProxyA, ProxyB shape.DistanceProxy
	SweepA, SweepB pmath.Sweep
	// TMax bounds the search to [SweepA.Alpha0, TMax], normally 1.
	TMax pmath.R
}

// TOIOutput is the result of a TOI query.
type TOIOutput struct {
	State TOIState
	T     pmath.R
}

// sepFuncType tags which of the three separation-function cases a TOI
// query is using.
type sepFuncType int

const (
	sepPoints sepFuncType = iota
	sepFaceA
	sepFaceB
)

// separationFunction evaluates the signed separation along a fixed axis
// between support vertices on A and B as the two sweeps advance to time
// t. Grounded on Box2D's b2SeparationFunction.
type separationFunction struct {
	proxyA, proxyB         *shape.DistanceProxy
	sweepA, sweepB         pmath.Sweep
	kind                   sepFuncType
	localPoint             pmath.V2
	axis                   pmath.V2
}

func newSeparationFunction(cache *SimplexCache, proxyA *shape.DistanceProxy, sweepA pmath.Sweep, proxyB *shape.DistanceProxy, sweepB pmath.Sweep, t1 pmath.R) separationFunction {
	sf := separationFunction{proxyA: proxyA, proxyB: proxyB, sweepA: sweepA, sweepB: sweepB}
	count := cache.Count

	var xfA, xfB pmath.Transform
	sweepA.GetTransform(&xfA, t1)
	sweepB.GetTransform(&xfB, t1)

	if count == 1 {
		sf.kind = sepPoints
		localPointA := proxyA.Vertices[cache.IndexA[0]]
		localPointB := proxyB.Vertices[cache.IndexB[0]]
		var pA, pB pmath.V2
		xfA.Point(&pA, &localPointA)
		xfB.Point(&pB, &localPointB)
		sf.axis.Sub(&pB, &pA)
		sf.axis.Unit()
		return sf
	}

	if cache.IndexA[0] == cache.IndexA[1] {
		// two B vertices against one A vertex => reference face is on B.
		sf.kind = sepFaceB
		localPointB1 := proxyB.Vertices[cache.IndexB[0]]
		localPointB2 := proxyB.Vertices[cache.IndexB[1]]
		edge := pmath.V2{X: localPointB2.X - localPointB1.X, Y: localPointB2.Y - localPointB1.Y}
		var axis pmath.V2
		axis.RPerp(&edge)
		axis.Unit()
		var normal pmath.V2
		xfB.Vector(&normal, &axis)

		sf.localPoint = pmath.V2{X: 0.5 * (localPointB1.X + localPointB2.X), Y: 0.5 * (localPointB1.Y + localPointB2.Y)}
		var pointB pmath.V2
		xfB.Point(&pointB, &sf.localPoint)

		localPointA := proxyA.Vertices[cache.IndexA[0]]
		var pointA pmath.V2
		xfA.Point(&pointA, &localPointA)

		d := pmath.V2{X: pointA.X - pointB.X, Y: pointA.Y - pointB.Y}
		s := d.Dot(&normal)
		if s < 0 {
			normal.Neg(&normal)
		}
		sf.axis = normal
		return sf
	}

	sf.kind = sepFaceA
	localPointA1 := proxyA.Vertices[cache.IndexA[0]]
	localPointA2 := proxyA.Vertices[cache.IndexA[1]]
	edge := pmath.V2{X: localPointA2.X - localPointA1.X, Y: localPointA2.Y - localPointA1.Y}
	var axis pmath.V2
	axis.RPerp(&edge)
	axis.Unit()
	var normal pmath.V2
	xfA.Vector(&normal, &axis)

	sf.localPoint = pmath.V2{X: 0.5 * (localPointA1.X + localPointA2.X), Y: 0.5 * (localPointA1.Y + localPointA2.Y)}
	var pointA pmath.V2
	xfA.Point(&pointA, &sf.localPoint)

	localPointB := proxyB.Vertices[cache.IndexB[0]]
	var pointB pmath.V2
	xfB.Point(&pointB, &localPointB)

	d := pmath.V2{X: pointB.X - pointA.X, Y: pointB.Y - pointA.Y}
	s := d.Dot(&normal)
	if s < 0 {
		normal.Neg(&normal)
	}
	sf.axis = normal
	return sf
}

// findMinSeparation evaluates the separation function at time t and
// returns the minimum separation plus the two support indices achieving
// it, used both to seed and re-evaluate the root search.
func (sf *separationFunction) findMinSeparation(t pmath.R) (pmath.R, int, int) {
	var xfA, xfB pmath.Transform
	sf.sweepA.GetTransform(&xfA, t)
	sf.sweepB.GetTransform(&xfB, t)

	switch sf.kind {
	case sepPoints:
		var axisA, axisB pmath.V2
		xfA.InvVector(&axisA, &sf.axis)
		var negAxis pmath.V2
		negAxis.Neg(&sf.axis)
		xfB.InvVector(&axisB, &negAxis)
		indexA := sf.proxyA.SupportIndex(&axisA)
		indexB := sf.proxyB.SupportIndex(&axisB)
		var pA, pB pmath.V2
		xfA.Point(&pA, &sf.proxyA.Vertices[indexA])
		xfB.Point(&pB, &sf.proxyB.Vertices[indexB])
		d := pmath.V2{X: pB.X - pA.X, Y: pB.Y - pA.Y}
		return d.Dot(&sf.axis), indexA, indexB

	case sepFaceA:
		var normal pmath.V2
		xfA.Vector(&normal, &sf.axis)
		var pointA pmath.V2
		xfA.Point(&pointA, &sf.localPoint)
		var negNormalLocal pmath.V2
		var negNormal pmath.V2
		negNormal.Neg(&normal)
		xfB.InvVector(&negNormalLocal, &negNormal)
		indexB := sf.proxyB.SupportIndex(&negNormalLocal)
		var pointB pmath.V2
		xfB.Point(&pointB, &sf.proxyB.Vertices[indexB])
		d := pmath.V2{X: pointB.X - pointA.X, Y: pointB.Y - pointA.Y}
		return d.Dot(&normal), -1, indexB

	default: // sepFaceB
		var normal pmath.V2
		xfB.Vector(&normal, &sf.axis)
		var pointB pmath.V2
		xfB.Point(&pointB, &sf.localPoint)
		var negNormalLocal pmath.V2
		var negNormal pmath.V2
		negNormal.Neg(&normal)
		xfA.InvVector(&negNormalLocal, &negNormal)
		indexA := sf.proxyA.SupportIndex(&negNormalLocal)
		var pointA pmath.V2
		xfA.Point(&pointA, &sf.proxyA.Vertices[indexA])
		d := pmath.V2{X: pointA.X - pointB.X, Y: pointA.Y - pointB.Y}
		return d.Dot(&normal), indexA, -1
	}
}

// evaluate evaluates the separation function at time t for a specific
// already-known pair of support indices (used by the root solve once
// the supporting feature has been re-selected by findMinSeparation).
func (sf *separationFunction) evaluate(indexA, indexB int, t pmath.R) pmath.R {
	var xfA, xfB pmath.Transform
	sf.sweepA.GetTransform(&xfA, t)
	sf.sweepB.GetTransform(&xfB, t)

	switch sf.kind {
	case sepPoints:
		var pA, pB pmath.V2
		xfA.Point(&pA, &sf.proxyA.Vertices[indexA])
		xfB.Point(&pB, &sf.proxyB.Vertices[indexB])
		d := pmath.V2{X: pB.X - pA.X, Y: pB.Y - pA.Y}
		return d.Dot(&sf.axis)
	case sepFaceA:
		var normal pmath.V2
		xfA.Vector(&normal, &sf.axis)
		var pointA pmath.V2
		xfA.Point(&pointA, &sf.localPoint)
		var pointB pmath.V2
		xfB.Point(&pointB, &sf.proxyB.Vertices[indexB])
		d := pmath.V2{X: pointB.X - pointA.X, Y: pointB.Y - pointA.Y}
		return d.Dot(&normal)
	default:
		var normal pmath.V2
		xfB.Vector(&normal, &sf.axis)
		var pointB pmath.V2
		xfB.Point(&pointB, &sf.localPoint)
		var pointA pmath.V2
		xfA.Point(&pointA, &sf.proxyA.Vertices[indexA])
		d := pmath.V2{X: pointA.X - pointB.X, Y: pointA.Y - pointB.Y}
		return d.Dot(&normal)
	}
}

const toiTolerance = 0.25 * pmath.LinearSlop

// TimeOfImpact finds the smallest t in [SweepA.Alpha0, TMax] at which
// the shapes are separated by exactly `target` along a conservative
// axis. Grounded on Box2D's b2TimeOfImpact. maxToiIters bounds the
// outer loop, maxRootIters bounds each bisection/secant bracket, and
// maxDistIters bounds the internal Distance calls.
func TimeOfImpact(in TOIInput, maxToiIters, maxRootIters, maxDistIters int) TOIOutput {
	out := TOIOutput{State: TOIUnknown, T: in.TMax}

	sweepA, sweepB := in.SweepA, in.SweepB
	sweepA.Normalize()
	sweepB.Normalize()

	tMax := in.TMax
	totalRadius := in.ProxyA.Radius + in.ProxyB.Radius
	target := pmath.Max(pmath.LinearSlop, totalRadius-3*pmath.LinearSlop)
	tolerance := 0.25 * pmath.LinearSlop

	t1 := sweepA.Alpha0
	iter := 0
	for {
		var xfA, xfB pmath.Transform
		sweepA.GetTransform(&xfA, t1)
		sweepB.GetTransform(&xfB, t1)

		d := Distance(Input{ProxyA: in.ProxyA, ProxyB: in.ProxyB, TransformA: xfA, TransformB: xfB}, SimplexCache{}, maxDistIters)

		if d.Distance <= 0 {
			out.State = TOIOverlapped
			out.T = 0
			return out
		}
		if d.Distance < target+tolerance {
			out.State = TOITouching
			out.T = t1
			return out
		}

		sf := newSeparationFunction(&d.Cache, &in.ProxyA, sweepA, &in.ProxyB, sweepB, t1)

		done := false
		t2 := tMax
		pushBackIter := 0
		for {
			s2, indexA, indexB := sf.findMinSeparation(t2)
			if s2 > target+tolerance {
				out.State = TOISeparated
				out.T = tMax
				done = true
				break
			}
			if s2 > target-tolerance {
				t1 = t2
				break
			}
			s1 := sf.evaluate(indexA, indexB, t1)
			if s1 < target-tolerance {
				out.State = TOIFailed
				out.T = t1
				done = true
				break
			}
			if s1 <= target+tolerance {
				out.State = TOITouching
				out.T = t1
				done = true
				break
			}

			a1, a2 := t1, t2
			rootIter := 0
			for rootIter < maxRootIters {
				var t pmath.R
				if rootIter&1 == 1 {
					t = a1 + (target-s1)*(a2-a1)/(s2-s1)
				} else {
					t = 0.5 * (a1 + a2)
				}
				rootIter++
				s := sf.evaluate(indexA, indexB, t)
				if pmath.Abs(s-target) < tolerance {
					t2 = t
					break
				}
				if s > target {
					a1, s1 = t, s
				} else {
					a2, s2 = t, s
				}
				t2 = a2
			}
			pushBackIter++
			if pushBackIter == maxRootIters {
				break
			}
		}

		iter++
		if done || iter >= maxToiIters {
			if out.State == TOIUnknown {
				out.State = TOIFailed
				out.T = t1
			}
			return out
		}
	}
}

// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package distance implements the GJK-style closest-point solver and the
// time-of-impact root finder. The simplex/support-vertex vocabulary is
// grounded in gazed/vu/physics/gjk.go and support.go (their
// tetrahedron-simplex boolean GJK and support_point helpers), but those
// files answer "do these shapes intersect?"; this package instead needs
// closest *witness points* with a warm-startable simplex cache, which is
// a different (2-simplex, not 3-simplex, since this is 2D) algorithm
// grounded on Box2D's b2Distance and b2TimeOfImpact.
package distance

import (
	pmath "github.com/gazed/phys2d/math"
	"github.com/gazed/phys2d/shape"
)

// Input bundles the two proxies plus their transforms for a Distance call.
type Input struct {
	ProxyA, ProxyB shape.DistanceProxy
	TransformA, TransformB pmath.Transform
	UseRadii               bool
}

// Output is the result of a Distance call: the closest witness points,
// one on each proxy, the distance between them, and the terminating
// simplex for TOI reuse.
type Output struct {
	PointA, PointB pmath.V2
	Distance       pmath.R
	Iterations     int
	Cache          SimplexCache
}

// SimplexCache warm-starts a subsequent Distance call: up to 3 (indexA,
// indexB) vertex pairs. No metric is stored; readCache only checks that
// each index is in range for the current proxies.
type SimplexCache struct {
	Count    int
	IndexA   [3]int
	IndexB   [3]int
}

type simplexVertex struct {
	wA, wB, w pmath.V2 // support point on A, on B, and w = wB - wA
	a         pmath.R  // barycentric coordinate for closest point
	indexA    int
	indexB    int
}

type simplex struct {
	v       [3]simplexVertex
	count   int
}

// readCache seeds the simplex from a cache, validating indices against
// the current proxies; an invalid or empty cache falls back to vertex 0
// of each proxy, matching Box2D's b2Simplex::ReadCache fallback.
func (s *simplex) readCache(cache *SimplexCache, proxyA *shape.DistanceProxy, xfA *pmath.Transform, proxyB *shape.DistanceProxy, xfB *pmath.Transform) {
	s.count = cache.Count
	if s.count < 1 || s.count > 3 {
		s.count = 0
	}
	for i := 0; i < s.count; i++ {
		if cache.IndexA[i] >= len(proxyA.Vertices) || cache.IndexB[i] >= len(proxyB.Vertices) {
			s.count = 0
			break
		}
	}
	if s.count == 0 {
		v := &s.v[0]
		v.indexA, v.indexB = 0, 0
		setVertex(v, proxyA, xfA, proxyB, xfB)
		s.count = 1
	} else {
		for i := 0; i < s.count; i++ {
			v := &s.v[i]
			v.indexA, v.indexB = cache.IndexA[i], cache.IndexB[i]
			setVertex(v, proxyA, xfA, proxyB, xfB)
		}
	}
}

func setVertex(v *simplexVertex, proxyA *shape.DistanceProxy, xfA *pmath.Transform, proxyB *shape.DistanceProxy, xfB *pmath.Transform) {
	xfA.Point(&v.wA, &proxyA.Vertices[v.indexA])
	xfB.Point(&v.wB, &proxyB.Vertices[v.indexB])
	v.w.Sub(&v.wB, &v.wA)
}

func (s *simplex) writeCache(cache *SimplexCache) {
	cache.Count = s.count
	for i := 0; i < s.count; i++ {
		cache.IndexA[i] = s.v[i].indexA
		cache.IndexB[i] = s.v[i].indexB
	}
}

// searchDirection returns the direction to advance the support points
// along, pointing from the simplex towards the origin.
func (s *simplex) searchDirection() pmath.V2 {
	switch s.count {
	case 1:
		var d pmath.V2
		return *d.Neg(&s.v[0].w)
	case 2:
		e12 := pmath.V2{X: s.v[1].w.X - s.v[0].w.X, Y: s.v[1].w.Y - s.v[0].w.Y}
		negW1 := negate(s.v[0].w)
		sgn := e12.Cross2(&negW1)
		if sgn > 0 {
			return pmath.V2{X: -e12.Y, Y: e12.X}
		}
		return pmath.V2{X: e12.Y, Y: -e12.X}
	default:
		return pmath.V2{}
	}
}

func negate(v pmath.V2) pmath.V2 { return pmath.V2{X: -v.X, Y: -v.Y} }

// closestPoint returns the simplex's current closest point to the origin.
func (s *simplex) closestPoint() pmath.V2 {
	switch s.count {
	case 1:
		return s.v[0].w
	case 2:
		return pmath.V2{
			X: s.v[0].a*s.v[0].w.X + s.v[1].a*s.v[1].w.X,
			Y: s.v[0].a*s.v[0].w.Y + s.v[1].a*s.v[1].w.Y,
		}
	default:
		return pmath.V2{}
	}
}

func (s *simplex) witnessPoints() (pmath.V2, pmath.V2) {
	switch s.count {
	case 1:
		return s.v[0].wA, s.v[0].wB
	case 2:
		a0, a1 := s.v[0].a, s.v[1].a
		return pmath.V2{
				X: a0*s.v[0].wA.X + a1*s.v[1].wA.X,
				Y: a0*s.v[0].wA.Y + a1*s.v[1].wA.Y,
			}, pmath.V2{
				X: a0*s.v[0].wB.X + a1*s.v[1].wB.X,
				Y: a0*s.v[0].wB.Y + a1*s.v[1].wB.Y,
			}
	default:
		var a, b pmath.V2
		return a, b
	}
}

// solve2 reduces a 2-simplex to its closest feature to the origin: the
// whole segment (both weights positive), or collapses to a single
// vertex. Grounded on Box2D's b2Simplex::Solve2 voronoi-region logic,
// restated for 2D segments (the 2D analogue of gjk.go's do_simplex_2).
func (s *simplex) solve2() {
	w1, w2 := s.v[0].w, s.v[1].w
	e12 := pmath.V2{X: w2.X - w1.X, Y: w2.Y - w1.Y}

	d12_2 := -w1.Dot(&e12)
	if d12_2 <= 0 {
		s.v[0].a = 1
		s.count = 1
		return
	}

	d12_1 := w2.Dot(&e12)
	if d12_1 <= 0 {
		s.v[0] = s.v[1]
		s.v[0].a = 1
		s.count = 1
		return
	}

	inv := 1 / (d12_1 + d12_2)
	s.v[0].a = d12_1 * inv
	s.v[1].a = d12_2 * inv
	s.count = 2
}

const maxGJKIterations = 20

// Distance computes the closest points between two convex distance
// proxies. maxIters bounds the iteration count (the caller, typically
// Config.MaxDistanceIters, supplies it).
func Distance(in Input, cache SimplexCache, maxIters int) Output {
	if maxIters <= 0 || maxIters > maxGJKIterations {
		maxIters = maxGJKIterations
	}
	var s simplex
	s.readCache(&cache, &in.ProxyA, &in.TransformA, &in.ProxyB, &in.TransformB)

	saveA := [3]int{}
	saveB := [3]int{}
	iter := 0
	for iter < maxIters {
		saveCount := s.count
		for i := 0; i < saveCount; i++ {
			saveA[i] = s.v[i].indexA
			saveB[i] = s.v[i].indexB
		}

		if s.count == 2 {
			s.solve2()
		}

		if s.count == 3 {
			// a 2D simplex never needs a third support vertex: the
			// origin is enclosed only when it lies exactly on the
			// segment, which solve2 already handles as a boundary case.
			s.count = 2
		}

		d := s.searchDirection()
		if d.LenSqr() < pmath.Epsilon*pmath.Epsilon {
			break
		}

		var negD, dA, dB pmath.V2
		negD.Neg(&d)
		in.TransformA.InvVector(&dA, &negD)
		in.TransformB.InvVector(&dB, &d)
		v := simplexVertex{}
		v.indexA = in.ProxyA.SupportIndex(&dA)
		v.indexB = in.ProxyB.SupportIndex(&dB)
		setVertex(&v, &in.ProxyA, &in.TransformA, &in.ProxyB, &in.TransformB)
		iter++

		duplicate := false
		for i := 0; i < saveCount; i++ {
			if v.indexA == saveA[i] && v.indexB == saveB[i] {
				duplicate = true
				break
			}
		}
		if duplicate {
			break
		}

		s.v[s.count] = v
		s.count++
	}

	pA, pB := s.witnessPoints()
	dist := pA.Dist(&pB)

	out := Output{PointA: pA, PointB: pB, Distance: dist, Iterations: iter}
	s.writeCache(&out.Cache)

	if in.UseRadii {
		if dist < pmath.Epsilon {
			mid := pmath.V2{X: 0.5 * (pA.X + pB.X), Y: 0.5 * (pA.Y + pB.Y)}
			out.PointA, out.PointB = mid, mid
			out.Distance = 0
			return out
		}
		var normal pmath.V2
		normal.Sub(&pB, &pA)
		normal.Unit()
		out.PointA.AddScaled(&pA, &normal, in.ProxyA.Radius)
		out.PointB.AddScaled(&pB, &normal, -in.ProxyB.Radius)
		out.Distance = pmath.Max(0, dist-in.ProxyA.Radius-in.ProxyB.Radius)
	}
	return out
}

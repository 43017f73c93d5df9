// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import pmath "github.com/gazed/phys2d/math"

// AABB is an axis-aligned bounding box: lower <= upper component-wise.
type AABB struct {
	Lower, Upper pmath.V2
}

// IsValid reports whether lower <= upper component-wise and both corners
// are finite.
func (a AABB) IsValid() bool {
	d := pmath.V2{X: a.Upper.X - a.Lower.X, Y: a.Upper.Y - a.Lower.Y}
	return d.X >= 0 && d.Y >= 0 && a.Lower.IsValid() && a.Upper.IsValid()
}

// Center returns the AABB's center point.
func (a AABB) Center() pmath.V2 {
	return pmath.V2{X: 0.5 * (a.Lower.X + a.Upper.X), Y: 0.5 * (a.Lower.Y + a.Upper.Y)}
}

// Extents returns the AABB's half-widths.
func (a AABB) Extents() pmath.V2 {
	return pmath.V2{X: 0.5 * (a.Upper.X - a.Lower.X), Y: 0.5 * (a.Upper.Y - a.Lower.Y)}
}

// Perimeter returns twice the sum of the box's width and height, the
// cost metric the dynamic tree's SAH insertion minimizes.
func (a AABB) Perimeter() pmath.R {
	wx := a.Upper.X - a.Lower.X
	wy := a.Upper.Y - a.Lower.Y
	return 2 * (wx + wy)
}

// Combine returns the smallest AABB enclosing a and b.
func Combine(a, b AABB) AABB {
	return AABB{
		Lower: pmath.V2{X: pmath.Min(a.Lower.X, b.Lower.X), Y: pmath.Min(a.Lower.Y, b.Lower.Y)},
		Upper: pmath.V2{X: pmath.Max(a.Upper.X, b.Upper.X), Y: pmath.Max(a.Upper.Y, b.Upper.Y)},
	}
}

// Combine2 mutates nothing; returns a enclosing itself and b (method form
// used where chaining reads better than the free function).
func (a AABB) Combine2(b AABB) AABB { return Combine(a, b) }

// Contains reports whether a fully contains b.
func (a AABB) Contains(b AABB) bool {
	return a.Lower.X <= b.Lower.X && a.Lower.Y <= b.Lower.Y &&
		b.Upper.X <= a.Upper.X && b.Upper.Y <= a.Upper.Y
}

// Overlaps reports whether a and b intersect (touching counts as overlap).
func (a AABB) Overlaps(b AABB) bool {
	d1x := b.Lower.X - a.Upper.X
	d1y := b.Lower.Y - a.Upper.Y
	d2x := a.Lower.X - b.Upper.X
	d2y := a.Lower.Y - b.Upper.Y
	if d1x > 0 || d1y > 0 || d2x > 0 || d2y > 0 {
		return false
	}
	return true
}

// Extend returns a padded outward by r on every side (used to build the
// dynamic tree's fat AABBs).
func (a AABB) Extend(r pmath.R) AABB {
	return AABB{
		Lower: pmath.V2{X: a.Lower.X - r, Y: a.Lower.Y - r},
		Upper: pmath.V2{X: a.Upper.X + r, Y: a.Upper.Y + r},
	}
}

// RayCastInput describes a segment query p1 -> p2, restricted to the
// fraction range [0, maxFraction].
type RayCastInput struct {
	P1, P2      pmath.V2
	MaxFraction pmath.R
}

// RayCastOutput reports a hit: the surface normal and the fraction along
// the input segment at which the hit occurred.
type RayCastOutput struct {
	Normal   pmath.V2
	Fraction pmath.R
}

// RayCast intersects the input segment against this AABB using the slab
// method. Grounded on Box2D's b2AABB::RayCast / b2RayCastInput handling.
func (a AABB) RayCast(in RayCastInput) (RayCastOutput, bool) {
	tmin := pmath.R(-1e300)
	tmax := in.MaxFraction
	var normal pmath.V2

	d := pmath.V2{X: in.P2.X - in.P1.X, Y: in.P2.Y - in.P1.Y}
	absD := pmath.V2{X: pmath.Abs(d.X), Y: pmath.Abs(d.Y)}

	axes := []struct {
		p, dAxis, absDAxis, lower, upper pmath.R
		n                                pmath.V2
	}{
		{in.P1.X, d.X, absD.X, a.Lower.X, a.Upper.X, pmath.V2{X: -1}},
		{in.P1.Y, d.Y, absD.Y, a.Lower.Y, a.Upper.Y, pmath.V2{Y: -1}},
	}

	for _, ax := range axes {
		if ax.absDAxis < pmath.Epsilon {
			if ax.p < ax.lower || ax.upper < ax.p {
				return RayCastOutput{}, false
			}
			continue
		}
		inv := 1 / ax.dAxis
		t1 := (ax.lower - ax.p) * inv
		t2 := (ax.upper - ax.p) * inv
		s := pmath.R(1)
		if t1 > t2 {
			t1, t2 = t2, t1
			s = -1
		}
		if t1 > tmin {
			normal = pmath.V2{X: ax.n.X * s, Y: ax.n.Y * s}
			tmin = t1
		}
		tmax = pmath.Min(tmax, t2)
		if tmin > tmax {
			return RayCastOutput{}, false
		}
	}
	if tmin < 0 || tmin > in.MaxFraction {
		return RayCastOutput{}, false
	}
	return RayCastOutput{Normal: normal, Fraction: tmin}, true
}

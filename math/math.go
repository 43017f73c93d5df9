// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package math provides the scalar, vector, and transform primitives used
// by the rest of phys2d. It is a 2D sibling of gazed/vu/math/lin, scoped
// down to what a rigid-body pipeline needs: no quaternions, a single
// rotation type that caches its own sin/cos.
package math

import gomath "math"

// R is the real-number scalar type used throughout phys2d. A single type
// alias keeps the door open for a future float32 build without touching
// call sites, the way lin.go documents float64 as "the default scalar size".
type R = float64

// Math constants, mirrored from gazed/vu/math/lin.Epsilon and friends but
// tuned for the tolerances a contact solver actually needs (linearSlop is
// an order of magnitude tighter than lin.Epsilon).
const (
	Pi     R = gomath.Pi
	Pi2    R = Pi * 2
	HalfPi R = Pi * 0.5

	// Epsilon is used to distinguish "close enough to zero" scalars.
	Epsilon R = 1.0e-9

	// LinearSlop is the default allowed penetration; also used as the
	// default collision and simplex tolerance. Overridable via Config.
	LinearSlop R = 0.005

	// AngularSlop is the default allowed angular penetration.
	AngularSlop R = 2.0 / 180.0 * Pi

	// MaxPolygonVertices bounds a convex polygon's vertex count.
	MaxPolygonVertices = 8
)

// Clamp returns s bound to [lb, ub].
func Clamp(s, lb, ub R) R {
	if s < lb {
		return lb
	}
	if s > ub {
		return ub
	}
	return s
}

// AeqZ (~=) reports whether x is close enough to zero to treat as zero.
func AeqZ(x R) bool { return gomath.Abs(x) < Epsilon }

// Aeq (~=) reports whether a and b are close enough to treat as equal.
func Aeq(a, b R) bool { return gomath.Abs(a-b) < Epsilon }

// Lerp returns the linear interpolation of a to b by ratio t.
func Lerp(a, b, t R) R { return a + (b-a)*t }

// Sqrt, Abs, Min, Max are re-exported so callers need not import both
// math and gomath in the same file.
func Sqrt(x R) R    { return gomath.Sqrt(x) }
func Abs(x R) R     { return gomath.Abs(x) }
func Min(a, b R) R  { return gomath.Min(a, b) }
func Max(a, b R) R  { return gomath.Max(a, b) }
func Sin(x R) R      { return gomath.Sin(x) }
func Cos(x R) R      { return gomath.Cos(x) }
func Atan2(y, x R) R { return gomath.Atan2(y, x) }
func IsNaN(x R) bool { return gomath.IsNaN(x) }
func IsInf(x R) bool { return gomath.IsInf(x, 0) }

// IsValid reports whether x is finite (not NaN, not +/-Inf). Used at the
// boundary of the solver to surface domain-error conditions.
func IsValid(x R) bool { return !IsNaN(x) && !IsInf(x) }

// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package math

// V2 is a 2D vector. Methods follow gazed/vu/math/lin's mutating-receiver
// convention: "v.Add(a, b)" stores a+b into v and returns v, so call
// chains avoid allocating intermediate vectors in solver hot loops.
type V2 struct {
	X, Y R
}

// NewV2 returns a new zero vector. Nothing else in hot loops should
// allocate; scratch vectors are created once and reused (see solver.go).
func NewV2() *V2 { return &V2{} }

// V2Of is a convenience constructor for literal vectors in tests and
// shape definitions, where allocation pressure does not matter.
func V2Of(x, y R) V2 { return V2{X: x, Y: y} }

// Set copies a into v.
func (v *V2) Set(a *V2) *V2 { v.X, v.Y = a.X, a.Y; return v }

// SetS sets v directly from scalars.
func (v *V2) SetS(x, y R) *V2 { v.X, v.Y = x, y; return v }

// Eq returns true if v and a are precisely equal.
func (v *V2) Eq(a *V2) bool { return v.X == a.X && v.Y == a.Y }

// Aeq (~=) returns true if v and a are equal within Epsilon.
func (v *V2) Aeq(a *V2) bool { return Aeq(v.X, a.X) && Aeq(v.Y, a.Y) }

// Add sets v = a+b and returns v.
func (v *V2) Add(a, b *V2) *V2 { v.X, v.Y = a.X+b.X, a.Y+b.Y; return v }

// Sub sets v = a-b and returns v.
func (v *V2) Sub(a, b *V2) *V2 { v.X, v.Y = a.X-b.X, a.Y-b.Y; return v }

// Neg sets v = -a and returns v.
func (v *V2) Neg(a *V2) *V2 { v.X, v.Y = -a.X, -a.Y; return v }

// Scale sets v = a*s and returns v.
func (v *V2) Scale(a *V2, s R) *V2 { v.X, v.Y = a.X*s, a.Y*s; return v }

// AddScaled sets v = a + b*s and returns v, a fused form used constantly
// by the solver's impulse application (avoids a scratch vector).
func (v *V2) AddScaled(a, b *V2, s R) *V2 {
	v.X, v.Y = a.X+b.X*s, a.Y+b.Y*s
	return v
}

// Dot returns the dot product of v and a.
func (v *V2) Dot(a *V2) R { return v.X*a.X + v.Y*a.Y }

// Cross2 returns the 2D "cross product" of v and a, a scalar: the z
// component of the 3D cross product of (v,0) and (a,0).
func (v *V2) Cross2(a *V2) R { return v.X*a.Y - v.Y*a.X }

// CrossSV sets v = s x a (scalar cross vector: rotate a by +90 deg and
// scale by s) and returns v. Used to turn an angular velocity into the
// linear velocity contribution of a lever arm.
func (v *V2) CrossSV(s R, a *V2) *V2 {
	v.X, v.Y = -s*a.Y, s*a.X
	return v
}

// LenSqr returns the squared length of v.
func (v *V2) LenSqr() R { return v.X*v.X + v.Y*v.Y }

// Len returns the length of v.
func (v *V2) Len() R { return Sqrt(v.LenSqr()) }

// DistSqr returns the squared distance between v and a.
func (v *V2) DistSqr(a *V2) R {
	dx, dy := v.X-a.X, v.Y-a.Y
	return dx*dx + dy*dy
}

// Dist returns the distance between v and a.
func (v *V2) Dist(a *V2) R { return Sqrt(v.DistSqr(a)) }

// Unit normalizes v in place and returns v. Leaves v untouched (zero) if
// it is already (nearly) the zero vector, rather than producing NaN;
// keeps the domain-error boundary at the caller, not here.
func (v *V2) Unit() *V2 {
	length := v.Len()
	if length < Epsilon {
		return v
	}
	inv := 1 / length
	v.X *= inv
	v.Y *= inv
	return v
}

// Perp sets v = perpendicular of a, rotated +90 degrees, and returns v.
func (v *V2) Perp(a *V2) *V2 { v.X, v.Y = -a.Y, a.X; return v }

// RPerp sets v = perpendicular of a, rotated -90 degrees, and returns v.
func (v *V2) RPerp(a *V2) *V2 { v.X, v.Y = a.Y, -a.X; return v }

// Min sets v to the component-wise minimum of a and b.
func (v *V2) Min(a, b *V2) *V2 { v.X, v.Y = Min(a.X, b.X), Min(a.Y, b.Y); return v }

// Max sets v to the component-wise maximum of a and b.
func (v *V2) Max(a, b *V2) *V2 { v.X, v.Y = Max(a.X, b.X), Max(a.Y, b.Y); return v }

// Abs sets v to the component-wise absolute value of a.
func (v *V2) Abs(a *V2) *V2 { v.X, v.Y = Abs(a.X), Abs(a.Y); return v }

// Lerp sets v = lerp(a, b, t) and returns v.
func (v *V2) Lerp(a, b *V2, t R) *V2 {
	v.X = Lerp(a.X, b.X, t)
	v.Y = Lerp(a.Y, b.Y, t)
	return v
}

// IsValid reports whether both components are finite.
func (v *V2) IsValid() bool { return IsValid(v.X) && IsValid(v.Y) }

// UnitV2 is a rotation represented as a unit vector, carrying its own
// cached cos/sin so repeated Rotate calls never recompute sin/cos.
type UnitV2 struct {
	S, C R // sin, cos
}

// NewUnitV2 returns the identity rotation (angle 0).
func NewUnitV2() *UnitV2 { return &UnitV2{S: 0, C: 1} }

// SetAngle sets u to the rotation of angle radians and returns u.
func (u *UnitV2) SetAngle(angle R) *UnitV2 {
	u.S, u.C = Sin(angle), Cos(angle)
	return u
}

// SetIdentity resets u to angle 0.
func (u *UnitV2) SetIdentity() *UnitV2 { u.S, u.C = 0, 1; return u }

// Set copies a into u.
func (u *UnitV2) Set(a *UnitV2) *UnitV2 { u.S, u.C = a.S, a.C; return u }

// Angle returns the angle represented by u, in (-Pi, Pi].
func (u *UnitV2) Angle() R { return Atan2(u.S, u.C) }

// Mul sets u = a*b (compose two rotations) and returns u.
func (u *UnitV2) Mul(a, b *UnitV2) *UnitV2 {
	s, c := a.S*b.C+a.C*b.S, a.C*b.C-a.S*b.S
	u.S, u.C = s, c
	return u
}

// MulT sets u = a^T * b (the rotation that takes a to b) and returns u.
func (u *UnitV2) MulT(a, b *UnitV2) *UnitV2 {
	s, c := a.C*b.S-a.S*b.C, a.C*b.C+a.S*b.S
	u.S, u.C = s, c
	return u
}

// Rotate sets out = u rotating v and returns out.
func (u *UnitV2) Rotate(out, v *V2) *V2 {
	x, y := u.C*v.X-u.S*v.Y, u.S*v.X+u.C*v.Y
	out.X, out.Y = x, y
	return out
}

// RotateT sets out = u^-1 rotating v (inverse rotation) and returns out.
func (u *UnitV2) RotateT(out, v *V2) *V2 {
	x, y := u.C*v.X+u.S*v.Y, -u.S*v.X+u.C*v.Y
	out.X, out.Y = x, y
	return out
}

// Mat22 is a 2x2 matrix stored by columns, Col1 then Col2, mirroring
// lin.M3's column-major convention.
type Mat22 struct {
	Col1, Col2 V2
}

// NewMat22Identity returns the 2x2 identity matrix.
func NewMat22Identity() *Mat22 {
	return &Mat22{Col1: V2{1, 0}, Col2: V2{0, 1}}
}

// SetAngle sets m to the rotation matrix for angle and returns m.
func (m *Mat22) SetAngle(angle R) *Mat22 {
	s, c := Sin(angle), Cos(angle)
	m.Col1 = V2{c, s}
	m.Col2 = V2{-s, c}
	return m
}

// MulV sets out = m*v and returns out.
func (m *Mat22) MulV(out, v *V2) *V2 {
	x := m.Col1.X*v.X + m.Col2.X*v.Y
	y := m.Col1.Y*v.X + m.Col2.Y*v.Y
	out.X, out.Y = x, y
	return out
}

// Transpose sets m to the transpose of a and returns m.
func (m *Mat22) Transpose(a *Mat22) *Mat22 {
	m.Col1 = V2{a.Col1.X, a.Col2.X}
	m.Col2 = V2{a.Col1.Y, a.Col2.Y}
	return m
}

// Det returns the determinant of m.
func (m *Mat22) Det() R { return m.Col1.X*m.Col2.Y - m.Col2.X*m.Col1.Y }

// Solve returns x such that m*x = b, or the zero vector if m is singular.
// Grounded on Box2D's b2Mat22::Solve (Cramer's rule), used by the block
// solver's 2x2 system.
func (m *Mat22) Solve(b *V2) V2 {
	a11, a12, a21, a22 := m.Col1.X, m.Col2.X, m.Col1.Y, m.Col2.Y
	det := a11*a22 - a12*a21
	if det != 0 {
		det = 1 / det
	}
	return V2{
		X: det * (a22*b.X - a12*b.Y),
		Y: det * (a11*b.Y - a21*b.X),
	}
}

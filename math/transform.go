// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package math

// Transform is a rigid transformation: rotation then translation. Shapes
// store vertices in body-local space; Transform maps local -> world.
type Transform struct {
	P V2     // translation
	Q UnitV2 // rotation
}

// NewTransform returns the identity transform.
func NewTransform() *Transform {
	return &Transform{Q: UnitV2{S: 0, C: 1}}
}

// SetIdentity resets t to the identity transform and returns t.
func (t *Transform) SetIdentity() *Transform {
	t.P = V2{}
	t.Q.SetIdentity()
	return t
}

// Set sets t from a position and angle and returns t.
func (t *Transform) Set(p *V2, angle R) *Transform {
	t.P = *p
	t.Q.SetAngle(angle)
	return t
}

// Point sets out = t applied to local point p (local -> world) and returns out.
func (t *Transform) Point(out, p *V2) *V2 {
	t.Q.Rotate(out, p)
	out.X += t.P.X
	out.Y += t.P.Y
	return out
}

// InvPoint sets out = t^-1 applied to world point p (world -> local).
func (t *Transform) InvPoint(out, p *V2) *V2 {
	var tmp V2
	tmp.Sub(p, &t.P)
	return t.Q.RotateT(out, &tmp)
}

// Vector sets out = t's rotation applied to direction v (no translation).
func (t *Transform) Vector(out, v *V2) *V2 { return t.Q.Rotate(out, v) }

// InvVector sets out = t's inverse rotation applied to direction v.
func (t *Transform) InvVector(out, v *V2) *V2 { return t.Q.RotateT(out, v) }

// Mul sets t = a concatenated with b (apply b first, then a) and returns t.
// Grounded on Box2D's b2Mul(b2Transform, b2Transform).
func (t *Transform) Mul(a, b *Transform) *Transform {
	var q UnitV2
	q.Mul(&a.Q, &b.Q)
	var p V2
	a.Q.Rotate(&p, &b.P)
	p.Add(&p, &a.P)
	t.Q = q
	t.P = p
	return t
}

// MulT sets t = a^-1 concatenated with b and returns t. Grounded on
// Box2D's b2MulT(b2Transform, b2Transform): expresses b in a's frame.
func (t *Transform) MulT(a, b *Transform) *Transform {
	var q UnitV2
	q.MulT(&a.Q, &b.Q)
	var dp V2
	dp.Sub(&b.P, &a.P)
	var p V2
	a.Q.RotateT(&p, &dp)
	t.Q = q
	t.P = p
	return t
}

// Position is a body configuration: center of mass position and angle.
type Position struct {
	C V2 // center of mass, world space
	A R  // angle, radians
}

// Velocity is a body's linear and angular velocity.
type Velocity struct {
	V V2 // linear velocity
	W R  // angular velocity
}

// Sweep is the per-body motion record used by the TOI pipeline: pos0 at
// time alpha0, pos1 at time 1, both about localCenter.
type Sweep struct {
	LocalCenter V2       // center of mass in body-local coordinates
	C0, C       V2       // center of mass: at alpha0, at current time
	A0, A       R        // angle: at alpha0, at current time
	Alpha0      R        // fraction of the step already advanced, in [0,1)
}

// GetTransform sets xf to the transform at interpolation fraction beta
// within [alpha0, 1] and returns xf. Grounded on Box2D's b2Sweep::GetTransform.
func (s *Sweep) GetTransform(xf *Transform, beta R) *Transform {
	c := V2{
		X: (1-beta)*s.C0.X + beta*s.C.X,
		Y: (1-beta)*s.C0.Y + beta*s.C.Y,
	}
	angle := (1-beta)*s.A0 + beta*s.A
	xf.Q.SetAngle(angle)

	var rotatedCenter V2
	xf.Q.Rotate(&rotatedCenter, &s.LocalCenter)
	xf.P.X = c.X - rotatedCenter.X
	xf.P.Y = c.Y - rotatedCenter.Y
	return xf
}

// Advance advances the sweep forward so that alpha0 becomes alpha,
// interpolating c0/a0 accordingly while leaving c/a (the step's target)
// unchanged. Grounded on Box2D's b2Sweep::Advance.
func (s *Sweep) Advance(alpha R) {
	if s.Alpha0 >= alpha {
		return
	}
	beta := (alpha - s.Alpha0) / (1 - s.Alpha0)
	s.C0.X += beta * (s.C.X - s.C0.X)
	s.C0.Y += beta * (s.C.Y - s.C0.Y)
	s.A0 += beta * (s.A - s.A0)
	s.Alpha0 = alpha
}

// Normalize keeps A0/A within a 2*Pi window of each other, so repeated
// steps do not let the angle grow without bound.
func (s *Sweep) Normalize() {
	d := Pi2 * Floor(s.A0/Pi2)
	s.A0 -= d
	s.A -= d
}

// Floor is re-exported to avoid importing gomath in transform.go's caller.
func Floor(x R) R {
	i := R(int64(x))
	if x < 0 && i != x {
		i--
	}
	return i
}

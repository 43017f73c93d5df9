// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package phys2d

import (
	"log/slog"

	"github.com/gazed/phys2d/internal/idpool"
	pmath "github.com/gazed/phys2d/math"
)

// BodyType classifies a body, determining whether velocity/acceleration
// are integrated.
type BodyType int

const (
	Static BodyType = iota
	Kinematic
	Dynamic
)

// BodyID is a stable handle to a Body.
type BodyID = idpool.ID

// BodyDef is the set of initial values used to construct a Body. Mirrors
// gazed/vu/physics/body.go's constructor-argument shape, generalized
// into a definition struct the way Box2D's b2BodyDef does, since phys2d
// supports three body types rather than the teacher's static/dynamic pair.
type BodyDef struct {
	Type            BodyType
	Position        pmath.V2
	Angle           pmath.R
	LinearVelocity  pmath.V2
	AngularVelocity pmath.R
	LinearDamping   pmath.R
	AngularDamping  pmath.R
	GravityScale    pmath.R
	AllowSleep      bool
	Awake           bool
	FixedRotation   bool
	Bullet          bool
	Enabled         bool
}

// NewBodyDef returns defaults matching Box2D's b2BodyDef: awake,
// sleepable, not fixed-rotation, not a bullet, gravity scale 1.
func NewBodyDef() BodyDef {
	return BodyDef{
		Type:         Static,
		GravityScale: 1,
		AllowSleep:   true,
		Awake:        true,
		Enabled:      true,
	}
}

// bodyFlag is a bitmask of per-body state.
type bodyFlag uint8

const (
	flagAwake bodyFlag = 1 << iota
	flagAllowSleep
	flagFixedRotation
	flagBullet
	flagEnabled
	flagInIsland
	flagToiValid
)

// Body is a rigid body: transform, sweep, velocity, mass properties, and
// the owned/incident edge lists that make it a node in the
// body<->contact<->body and body<->joint<->body graphs, addressed by
// handle and arena storage rather than pointer cycles.
type Body struct {
	id    BodyID
	world *World

	bodyType BodyType
	flags    bodyFlag

	xf    pmath.Transform
	sweep pmath.Sweep

	velocity pmath.Velocity
	force    pmath.V2
	torque   pmath.R

	linearDamping  pmath.R
	angularDamping pmath.R
	gravityScale   pmath.R

	mass, invMass pmath.R
	i, invI       pmath.R

	sleepTime pmath.R

	fixtures    []*Fixture
	contactList *ContactEdge
	jointList   *JointEdge

	userData any
}

func newBody(id BodyID, w *World, def BodyDef) *Body {
	b := &Body{
		id:             id,
		world:          w,
		bodyType:       def.Type,
		linearDamping:  def.LinearDamping,
		angularDamping: def.AngularDamping,
		gravityScale:   def.GravityScale,
		velocity:       pmath.Velocity{V: def.LinearVelocity, W: def.AngularVelocity},
	}
	b.xf.Set(&def.Position, def.Angle)
	b.sweep.C0 = def.Position
	b.sweep.C = def.Position
	b.sweep.A0 = def.Angle
	b.sweep.A = def.Angle
	b.sweep.Alpha0 = 0

	if def.AllowSleep {
		b.flags |= flagAllowSleep
	}
	if def.Awake || def.Type != Static {
		b.flags |= flagAwake
	}
	if def.FixedRotation {
		b.flags |= flagFixedRotation
	}
	if def.Bullet {
		b.flags |= flagBullet
	}
	if def.Enabled {
		b.flags |= flagEnabled
	}
	return b
}

func (b *Body) has(f bodyFlag) bool { return b.flags&f != 0 }
func (b *Body) set(f bodyFlag, on bool) {
	if on {
		b.flags |= f
	} else {
		b.flags &^= f
	}
}

// ID returns the body's stable handle.
func (b *Body) ID() BodyID { return b.id }

// Type returns the body's BodyType.
func (b *Body) Type() BodyType { return b.bodyType }

// Transform returns the body's current world transform.
func (b *Body) Transform() pmath.Transform { return b.xf }

// Position returns the body's origin (not center of mass) in world space.
func (b *Body) Position() pmath.V2 { return b.xf.P }

// Angle returns the body's current angle in radians.
func (b *Body) Angle() pmath.R { return b.sweep.A }

// WorldCenter returns the body's center of mass in world space.
func (b *Body) WorldCenter() pmath.V2 { return b.sweep.C }

// LocalCenter returns the body's center of mass in body-local space.
func (b *Body) LocalCenter() pmath.V2 { return b.sweep.LocalCenter }

// Velocity returns the body's current linear+angular velocity.
func (b *Body) Velocity() pmath.Velocity { return b.velocity }

// SetVelocity sets the body's linear+angular velocity directly, waking
// it if it is a Dynamic or Kinematic body with non-zero velocity.
func (b *Body) SetVelocity(v pmath.Velocity) {
	if b.bodyType == Static {
		return
	}
	if v.V.Dot(&v.V) > 0 || v.W != 0 {
		b.SetAwake(true)
	}
	b.velocity = v
}

// InvMass returns the body's inverse mass (0 for Static/Kinematic).
func (b *Body) InvMass() pmath.R { return b.invMass }

// InvI returns the body's inverse rotational inertia about its center
// of mass (0 for Static/Kinematic, and for FixedRotation bodies).
func (b *Body) InvI() pmath.R { return b.invI }

// IsAwake reports whether the body is currently simulated.
func (b *Body) IsAwake() bool { return b.has(flagAwake) }

// SetAwake sets the awake flag. Waking always resets sleepTime to zero.
// Putting a body to sleep zeroes its velocity and accumulated
// force/torque; this clearing happens uniformly for every body type
// including Kinematic, even though Kinematic bodies never integrate
// force, so a later SetType to Dynamic never inherits a stale
// accumulator.
func (b *Body) SetAwake(awake bool) {
	if awake {
		b.set(flagAwake, true)
		b.sleepTime = 0
		return
	}
	b.set(flagAwake, false)
	b.sleepTime = 0
	b.velocity = pmath.Velocity{}
	b.force = pmath.V2{}
	b.torque = 0
}

// AllowSleep reports whether this body may be put to sleep.
func (b *Body) AllowSleep() bool { return b.has(flagAllowSleep) }

// SetAllowSleep toggles whether this body may be put to sleep, waking it
// immediately if sleep is being disallowed.
func (b *Body) SetAllowSleep(allow bool) {
	b.set(flagAllowSleep, allow)
	if !allow {
		b.SetAwake(true)
	}
}

// IsBullet reports whether this body participates in the TOI pipeline
// even while Dynamic.
func (b *Body) IsBullet() bool { return b.has(flagBullet) }

// SetBullet toggles the bullet flag.
func (b *Body) SetBullet(bullet bool) { b.set(flagBullet, bullet) }

// IsEnabled reports whether the body currently participates in
// simulation and broad-phase queries.
func (b *Body) IsEnabled() bool { return b.has(flagEnabled) }

// IsFixedRotation reports whether the body's rotational inertia is
// pinned to zero.
func (b *Body) IsFixedRotation() bool { return b.has(flagFixedRotation) }

// ApplyForce adds a force at a world point, waking the body. Static and
// Kinematic bodies never accumulate force (invMass == 0); the
// accumulator still no-ops cleanly for them rather than erroring, since
// DomainError is reserved for derived quantities, not plain no-ops.
func (b *Body) ApplyForce(force, point pmath.V2, wake bool) {
	if b.bodyType != Dynamic {
		return
	}
	if wake && !b.IsAwake() {
		b.SetAwake(true)
	}
	if !b.IsAwake() {
		return
	}
	b.force.X += force.X
	b.force.Y += force.Y
	r := pmath.V2{X: point.X - b.sweep.C.X, Y: point.Y - b.sweep.C.Y}
	b.torque += r.Cross2(&force)
}

// ApplyForceToCenter adds a force through the center of mass, no torque.
func (b *Body) ApplyForceToCenter(force pmath.V2, wake bool) {
	if b.bodyType != Dynamic {
		return
	}
	if wake && !b.IsAwake() {
		b.SetAwake(true)
	}
	if !b.IsAwake() {
		return
	}
	b.force.X += force.X
	b.force.Y += force.Y
}

// ApplyTorque adds torque, waking the body if requested.
func (b *Body) ApplyTorque(torque pmath.R, wake bool) {
	if b.bodyType != Dynamic {
		return
	}
	if wake && !b.IsAwake() {
		b.SetAwake(true)
	}
	if !b.IsAwake() {
		return
	}
	b.torque += torque
}

// ApplyLinearImpulse applies an instantaneous impulse at a world point.
func (b *Body) ApplyLinearImpulse(impulse, point pmath.V2, wake bool) {
	if b.bodyType != Dynamic {
		return
	}
	if wake && !b.IsAwake() {
		b.SetAwake(true)
	}
	if !b.IsAwake() {
		return
	}
	b.velocity.V.X += b.invMass * impulse.X
	b.velocity.V.Y += b.invMass * impulse.Y
	r := pmath.V2{X: point.X - b.sweep.C.X, Y: point.Y - b.sweep.C.Y}
	b.velocity.W += b.invI * r.Cross2(&impulse)
}

// ApplyAngularImpulse applies an instantaneous angular impulse.
func (b *Body) ApplyAngularImpulse(impulse pmath.R, wake bool) {
	if b.bodyType != Dynamic {
		return
	}
	if wake && !b.IsAwake() {
		b.SetAwake(true)
	}
	if !b.IsAwake() {
		return
	}
	b.velocity.W += b.invI * impulse
}

// SetTransform directly repositions the body (teleport), resetting its
// sweep and synchronizing all owned fixtures' broad-phase proxies.
// Rejected (returns false) while the world is locked.
func (b *Body) SetTransform(position pmath.V2, angle pmath.R) bool {
	if b.world != nil && b.world.locked {
		slog.Error("SetTransform called while world locked", "body", b.id)
		return false
	}
	b.xf.Set(&position, angle)
	var worldCenter pmath.V2
	b.xf.Point(&worldCenter, &b.sweep.LocalCenter)
	b.sweep.C, b.sweep.C0 = worldCenter, worldCenter
	b.sweep.A, b.sweep.A0 = angle, angle
	b.sweep.Alpha0 = 0
	if b.world != nil {
		for _, f := range b.fixtures {
			f.synchronize(b.world.broadPhase, &b.xf, &b.xf, b.world.config.AABBExtension)
		}
	}
	return true
}

// synchronizeTransform rebuilds xf from the sweep's current position;
// called after every integration step.
func (b *Body) synchronizeTransform() {
	b.xf.Q.SetAngle(b.sweep.A)
	var rotatedCenter pmath.V2
	b.xf.Q.Rotate(&rotatedCenter, &b.sweep.LocalCenter)
	b.xf.P.X = b.sweep.C.X - rotatedCenter.X
	b.xf.P.Y = b.sweep.C.Y - rotatedCenter.Y
}

// advance moves the body's sweep to alpha and resyncs its transform;
// used by the TOI pipeline's advance/roll-back steps.
func (b *Body) advance(alpha pmath.R) {
	b.sweep.Advance(alpha)
	b.sweep.C = b.sweep.C0
	b.sweep.A = b.sweep.A0
	b.synchronizeTransform()
}

// ResetMassData recomputes mass/invMass/i/invI/localCenter from the
// body's currently attached fixtures' densities, matching Box2D's
// b2Body::ResetMassData: summed per-fixture MassData, shifted to the
// combined center of mass via the parallel axis theorem.
func (b *Body) ResetMassData() {
	b.mass, b.invMass, b.i, b.invI = 0, 0, 0, 0
	b.sweep.LocalCenter = pmath.V2{}

	if b.bodyType != Dynamic {
		b.sweep.C0 = b.xf.P
		b.sweep.C = b.xf.P
		b.sweep.A0 = b.sweep.A
		return
	}

	localCenter := pmath.V2{}
	for _, f := range b.fixtures {
		if f.density == 0 {
			continue
		}
		md := f.shape.ComputeMass(f.density)
		b.mass += md.Mass
		localCenter.X += md.Mass * md.Center.X
		localCenter.Y += md.Mass * md.Center.Y
		b.i += md.I
	}

	if b.mass > 0 {
		b.invMass = 1 / b.mass
		localCenter.X *= b.invMass
		localCenter.Y *= b.invMass
	} else {
		b.mass = 1
		b.invMass = 1
	}

	if b.i > 0 && !b.has(flagFixedRotation) {
		b.i -= b.mass * localCenter.Dot(&localCenter)
		b.invI = 1 / b.i
	} else {
		b.i = 0
		b.invI = 0
	}

	oldCenter := b.sweep.C
	b.sweep.LocalCenter = localCenter
	var newCenter pmath.V2
	b.xf.Point(&newCenter, &localCenter)
	b.sweep.C0, b.sweep.C = newCenter, newCenter

	// keep linear velocity consistent when the center of mass moved
	// (Box2D's b2Body::ResetMassData does the same v += w x (c2-c1)).
	d := pmath.V2{X: newCenter.X - oldCenter.X, Y: newCenter.Y - oldCenter.Y}
	var perp pmath.V2
	perp.CrossSV(b.velocity.W, &d)
	b.velocity.V.X += perp.X
	b.velocity.V.Y += perp.Y
}

// Fixtures returns the body's owned fixtures. The returned slice is
// owned by Body; callers must not mutate it.
func (b *Body) Fixtures() []*Fixture { return b.fixtures }

// ContactEdges returns the head of this body's incident contact-edge
// list.
func (b *Body) ContactEdges() *ContactEdge { return b.contactList }

// JointEdges returns the head of this body's incident joint-edge list.
func (b *Body) JointEdges() *JointEdge { return b.jointList }

// UserData returns the opaque user payload set via SetUserData.
func (b *Body) UserData() any { return b.userData }

// SetUserData sets the opaque user payload.
func (b *Body) SetUserData(v any) { b.userData = v }

// needsDynamicPartner applies the body-type rule: two bodies that are
// both non-dynamic never need a contact solved between them (their
// relative motion, if any, is prescribed, not simulated), matching
// Box2D's b2ContactManager "at least one body must be dynamic" gate.
func (b *Body) needsDynamicPartner() bool { return b.bodyType == Dynamic }

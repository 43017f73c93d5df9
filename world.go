// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package phys2d

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/gazed/phys2d/broadphase"
	"github.com/gazed/phys2d/internal/idpool"
	pmath "github.com/gazed/phys2d/math"
	"github.com/gazed/phys2d/shape"
)

// maxHandles is the LengthError bound: body/fixture/joint counters
// must reject creation past 2^16 - 2 live handles.
const maxHandles int32 = 1<<16 - 2

// World owns every body, fixture, joint and contact, plus the broad
// phase and configuration they're simulated against. Grounded on
// gazed/vu/physics/simulation.go's single-owner "Simulation" type
// (bids/bodies/eids pools, one Step entrypoint), 2D'd and generalized to
// the full island/TOI pipeline.
type World struct {
	config  Config
	gravity pmath.V2

	bodyPool    *idpool.Pool
	fixturePool *idpool.Pool
	jointPool   *idpool.Pool

	bodies   map[BodyID]*Body
	fixtures map[FixtureID]*Fixture

	broadPhase     *broadphase.BroadPhase
	contactManager *ContactManager

	joints       []*jointRegistration
	jointByID    map[JointID]*jointRegistration
	jointByJoint map[Joint]*jointRegistration

	locked     bool
	invDt0     pmath.R
	subStepped bool

	// Tag is a per-world correlation id for structured logs.
	Tag uuid.UUID
}

// NewWorld returns a World configured with gravity and the given
// options layered over NewConfig()'s defaults.
func NewWorld(gravity pmath.V2, opts ...Option) *World {
	cfg := NewConfig()
	cfg.Gravity = gravity
	for _, opt := range opts {
		opt(&cfg)
	}
	return newWorldWithConfig(cfg)
}

// NewWorldFromConfig returns a World using cfg verbatim (e.g. the result
// of LoadConfig).
func NewWorldFromConfig(cfg Config) *World { return newWorldWithConfig(cfg) }

func newWorldWithConfig(cfg Config) *World {
	bp := broadphase.NewBroadPhase()
	w := &World{
		config:       cfg,
		gravity:      cfg.Gravity,
		bodyPool:     idpool.New(maxHandles),
		fixturePool:  idpool.New(maxHandles),
		jointPool:    idpool.New(maxHandles),
		bodies:       map[BodyID]*Body{},
		fixtures:     map[FixtureID]*Fixture{},
		broadPhase:   bp,
		jointByID:    map[JointID]*jointRegistration{},
		jointByJoint: map[Joint]*jointRegistration{},
		Tag:          uuid.New(),
	}
	w.contactManager = newContactManager(bp)
	return w
}

// Config returns a copy of the world's current configuration.
func (w *World) Config() Config { return w.config }

// Gravity returns the world's current gravity vector.
func (w *World) Gravity() pmath.V2 { return w.gravity }

// SetGravity updates the world's gravity vector.
func (w *World) SetGravity(g pmath.V2) { w.gravity = g }

// IsLocked reports whether the world is mid-Step.
func (w *World) IsLocked() bool { return w.locked }

// SetContactListener installs the contact callback set.
func (w *World) SetContactListener(l ContactListener) { w.contactManager.SetContactListener(l) }

// SetContactFilter installs a custom ShouldCollide predicate.
func (w *World) SetContactFilter(f ContactFilter) { w.contactManager.SetContactFilter(f) }

// CreateBody adds a new body to the world. Rejected while locked, or
// once maxHandles live bodies are outstanding (LengthError).
func (w *World) CreateBody(def BodyDef) (*Body, error) {
	if w.locked {
		return nil, newError("CreateBody", WrongState, "world is locked")
	}
	id, ok := w.bodyPool.Acquire()
	if !ok {
		return nil, newError("CreateBody", LengthError, "body handle domain exhausted")
	}
	b := newBody(id, w, def)
	w.bodies[id] = b
	return b, nil
}

// DestroyBody removes b and cascades to its fixtures (and their
// broad-phase proxies and incident contacts) and its incident joints.
// Rejected while locked.
func (w *World) DestroyBody(b *Body) error {
	if w.locked {
		return newError("DestroyBody", WrongState, "world is locked")
	}
	for je := b.jointList; je != nil; {
		next := je.next
		reg := w.jointByJoint[je.joint]
		if reg != nil {
			w.destroyJointRegistration(reg)
		}
		je = next
	}
	w.contactManager.destroyContactsFor(b)
	for _, f := range append([]*Fixture(nil), b.fixtures...) {
		f.destroyProxies(w.broadPhase)
		delete(w.fixtures, f.id)
		w.fixturePool.Release(f.id)
	}
	b.fixtures = nil
	delete(w.bodies, b.id)
	w.bodyPool.Release(b.id)
	return nil
}

// CreateFixture attaches def's shape to b, validating the shape's
// vertex radius against the world's configured bounds and creating one
// broad-phase proxy per shape child. Rejected while locked.
func (w *World) CreateFixture(b *Body, def FixtureDef) (*Fixture, error) {
	if w.locked {
		return nil, newError("CreateFixture", WrongState, "world is locked")
	}
	if def.Density < 0 {
		return nil, newError("CreateFixture", InvalidArgument, "density must be non-negative")
	}
	if def.Friction < 0 {
		return nil, newError("CreateFixture", InvalidArgument, "friction must be non-negative")
	}
	id, ok := w.fixturePool.Acquire()
	if !ok {
		return nil, newError("CreateFixture", LengthError, "fixture handle domain exhausted")
	}
	f := newFixture(id, b, def)
	f.createProxies(w.broadPhase, &b.xf, w.config.AABBExtension)
	b.fixtures = append(b.fixtures, f)
	w.fixtures[id] = f
	b.ResetMassData()
	return f, nil
}

// DestroyFixture removes f from its body, destroying its proxies and any
// incident contacts. Rejected while locked.
func (w *World) DestroyFixture(f *Fixture) error {
	if w.locked {
		return newError("DestroyFixture", WrongState, "world is locked")
	}
	b := f.body
	for ce := b.contactList; ce != nil; {
		next := ce.next
		c := ce.contact
		if c.fixtureA == f || c.fixtureB == f {
			if w.contactManager.listener != nil {
				w.contactManager.listener.SayGoodbye(c)
			}
			c.destroy()
			delete(w.contactManager.contacts, makeContactKey(c.fixtureA, c.childA, c.fixtureB, c.childB))
		}
		ce = next
	}
	f.destroyProxies(w.broadPhase)
	for i, bf := range b.fixtures {
		if bf == f {
			b.fixtures = append(b.fixtures[:i], b.fixtures[i+1:]...)
			break
		}
	}
	delete(w.fixtures, f.id)
	w.fixturePool.Release(f.id)
	b.ResetMassData()
	return nil
}

// CreateJoint registers j, linking it into both connected bodies' joint
// edge lists and waking them. Rejected while locked.
func (w *World) CreateJoint(j Joint) (JointID, error) {
	if w.locked {
		return JointID{}, newError("CreateJoint", WrongState, "world is locked")
	}
	id, ok := w.jointPool.Acquire()
	if !ok {
		return JointID{}, newError("CreateJoint", LengthError, "joint handle domain exhausted")
	}
	reg := newJointRegistration(id, j)
	w.joints = append(w.joints, reg)
	w.jointByID[id] = reg
	w.jointByJoint[j] = reg

	j.BodyA().SetAwake(true)
	j.BodyB().SetAwake(true)

	if !j.CollideConnected() {
		w.flagContactForFiltering(j.BodyA(), j.BodyB())
	}
	return id, nil
}

// DestroyJoint removes j, waking both connected bodies and re-enabling
// collision filtering between them if it had been suppressed.
func (w *World) DestroyJoint(id JointID) error {
	if w.locked {
		return newError("DestroyJoint", WrongState, "world is locked")
	}
	reg, ok := w.jointByID[id]
	if !ok {
		return newError("DestroyJoint", OutOfRange, "unknown joint id")
	}
	w.destroyJointRegistration(reg)
	return nil
}

func (w *World) destroyJointRegistration(reg *jointRegistration) {
	j := reg.joint
	bodyA, bodyB := j.BodyA(), j.BodyB()
	bodyA.SetAwake(true)
	bodyB.SetAwake(true)

	reg.destroy()
	delete(w.jointByID, reg.id)
	delete(w.jointByJoint, j)
	for i, r := range w.joints {
		if r == reg {
			w.joints = append(w.joints[:i], w.joints[i+1:]...)
			break
		}
	}
	w.jointPool.Release(reg.id)

	if !j.CollideConnected() {
		w.flagContactForFiltering(bodyA, bodyB)
	}
}

// flagContactForFiltering marks any existing contact between bodyA and
// bodyB to be re-filtered on the next Collide pass rather than
// destroying it immediately.
func (w *World) flagContactForFiltering(bodyA, bodyB *Body) {
	for ce := bodyA.contactList; ce != nil; ce = ce.next {
		if ce.other == bodyB {
			ce.contact.filterNeeded = true
		}
	}
}

// Step advances the simulation by dt, running the full pipeline: find
// new contacts, update manifolds and fire begin/end callbacks, build and
// solve islands (with sleeping), integrate continuous collision for
// bullets, and optionally clear forces. The locked flag is set for the
// whole call, so structural mutators (which check it) reject calls made
// from within a listener callback; Step itself does not check the flag.
func (w *World) Step(dt pmath.R) {
	w.locked = true

	w.contactManager.findNewContacts()
	w.contactManager.collide(w.config.MaxCirclesRatio, w.config.MaxToiContacts)

	if dt > 0 {
		dtRatio := pmath.R(0)
		if w.invDt0 > 0 {
			dtRatio = w.invDt0 * dt
		}

		if w.config.SubStepping {
			w.solveSubStep(dt, dtRatio)
		} else {
			w.solveStep(dt, dtRatio)
		}

		if w.config.ContinuousPhysics {
			w.solveTOI(dt)
		}

		w.checkDomainErrors()

		if dt > 0 {
			w.invDt0 = 1 / dt
		}
	}

	if w.config.AutoClearForces {
		w.clearForces()
	}

	w.locked = false
}

// solveStep runs the regular island solve once, every step.
func (w *World) solveStep(dt, dtRatio pmath.R) {
	for _, isl := range buildIslands(w) {
		solveIsland(isl, w, dt, dtRatio)
	}
}

// solveSubStep is a placeholder hook for Config.SubStepping callers that
// want to drive Step() once per sub-step externally; internally it is
// equivalent to solveStep, since there is no distinct internal
// sub-stepping schedule beyond what the TOI pipeline already provides.
func (w *World) solveSubStep(dt, dtRatio pmath.R) { w.solveStep(dt, dtRatio) }

// clearForces zeroes every body's accumulated force/torque.
func (w *World) clearForces() {
	for _, b := range w.bodies {
		b.force = pmath.V2{}
		b.torque = 0
	}
}

// QueryAABB reports every fixture whose broad-phase proxy overlaps aabb.
func (w *World) QueryAABB(aabb shape.AABB, cb func(f *Fixture, childIndex int) bool) {
	w.broadPhase.Query(aabb, func(id broadphase.ProxyID) bool {
		leaf, ok := w.broadPhase.Data(id).(leafData)
		if !ok {
			return true
		}
		return cb(leaf.fixture, leaf.childIndex)
	})
}

// RayCast reports every fixture child whose world AABB (computed from its
// shape and body transform) is hit by the segment p1->p2, in the order
// the broad phase visits them. The point, normal and fraction passed to
// the callback are those of the AABB hit; the shape's own outline is not
// tested. The
// callback returns the fraction to clip the ray to for subsequent
// visits (1.0 to keep casting unmodified, <0 to stop entirely).
func (w *World) RayCast(p1, p2 pmath.V2, cb func(f *Fixture, childIndex int, point, normal pmath.V2, fraction pmath.R) pmath.R) {
	input := shape.RayCastInput{P1: p1, P2: p2, MaxFraction: 1}
	w.broadPhase.RayCast(input, func(id broadphase.ProxyID, in shape.RayCastInput) pmath.R {
		leaf, ok := w.broadPhase.Data(id).(leafData)
		if !ok {
			return in.MaxFraction
		}
		f := leaf.fixture
		xf := f.body.xf
		aabb := f.shape.ComputeAABB(&xf, leaf.childIndex)
		out, hit := aabb.RayCast(in)
		if !hit {
			return in.MaxFraction
		}
		point := pmath.V2{X: in.P1.X + out.Fraction*(in.P2.X-in.P1.X), Y: in.P1.Y + out.Fraction*(in.P2.Y-in.P1.Y)}
		return cb(f, leaf.childIndex, point, out.Normal, out.Fraction)
	})
}

// ShiftOrigin subtracts newOrigin from every body and joint anchor and
// from the broad-phase tree's stored AABBs. Rejected while locked.
func (w *World) ShiftOrigin(newOrigin pmath.V2) error {
	if w.locked {
		return newError("ShiftOrigin", WrongState, "world is locked")
	}
	for _, b := range w.bodies {
		b.xf.P.X -= newOrigin.X
		b.xf.P.Y -= newOrigin.Y
		b.sweep.C0.X -= newOrigin.X
		b.sweep.C0.Y -= newOrigin.Y
		b.sweep.C.X -= newOrigin.X
		b.sweep.C.Y -= newOrigin.Y
	}
	for _, reg := range w.joints {
		reg.joint.ShiftOrigin(newOrigin)
	}
	w.broadPhase.ShiftOrigin(newOrigin)
	return nil
}

// Bodies returns every live body. The returned slice is freshly
// allocated each call.
func (w *World) Bodies() []*Body {
	out := make([]*Body, 0, len(w.bodies))
	for _, b := range w.bodies {
		out = append(out, b)
	}
	return out
}

// Contacts returns every live contact.
func (w *World) Contacts() []*Contact { return w.contactManager.Contacts() }

// Joints returns every live joint.
func (w *World) Joints() []Joint {
	out := make([]Joint, 0, len(w.joints))
	for _, r := range w.joints {
		out = append(out, r.joint)
	}
	return out
}

// warnf logs a recoverable invariant violation at Error level and
// continues, clamping in release rather than panicking.
func warnf(op, msg string, args ...any) {
	slog.Error("phys2d invariant violation", "op", op, "msg", msg, "args", args)
}

// checkDomainErrors scans every body for a non-finite sweep or velocity
// left behind by the island/TOI solvers. A body that fails the check is
// rolled back to its pre-step sweep and put to rest, rather than
// propagating NaN into the next step's broad phase.
func (w *World) checkDomainErrors() {
	for _, b := range w.bodies {
		if b.sweep.C.IsValid() && pmath.IsValid(b.sweep.A) &&
			b.velocity.V.IsValid() && pmath.IsValid(b.velocity.W) {
			continue
		}
		warnf("Step", "non-finite body state, clamping to rest", "body", b.id)
		b.sweep.C = b.sweep.C0
		b.sweep.A = b.sweep.A0
		b.velocity = pmath.Velocity{}
		b.force = pmath.V2{}
		b.torque = 0
		b.synchronizeTransform()
	}
}

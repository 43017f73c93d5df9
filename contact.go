// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package phys2d

import (
	"github.com/gazed/phys2d/collide"
	pmath "github.com/gazed/phys2d/math"
)

// ContactEdge links a Contact into its two incident bodies' adjacency
// lists, handled via arena storage and explicit edge lists rather than
// pointer cycles with GC difficulties; gazed/vu sidesteps the same issue
// with its dense id-indexed slices.
type ContactEdge struct {
	other   *Body
	contact *Contact
	prev    *ContactEdge
	next    *ContactEdge
}

// Other returns the body on the far end of this edge.
func (e *ContactEdge) Other() *Body { return e.other }

// Contact returns the contact this edge belongs to.
func (e *ContactEdge) Contact() *Contact { return e.contact }

// Next returns the next edge in this body's contact adjacency list.
func (e *ContactEdge) Next() *ContactEdge { return e.next }

// mixFriction/mixRestitution follow Box2D's defaults (geometric mean for
// friction, max for restitution); these are the values every example in
// the corpus that touches friction mixing (gazed/vu/physics/solver.go)
// reproduces.
func mixFriction(a, b pmath.R) pmath.R { return pmath.Sqrt(a * b) }
func mixRestitution(a, b pmath.R) pmath.R {
	if a > b {
		return a
	}
	return b
}

// Contact is one narrow-phase pairing between two fixture children. It
// persists across steps so long as the broad-phase AABBs keep
// overlapping, carrying its Manifold's per-point impulses forward for
// warm-starting.
type Contact struct {
	fixtureA, fixtureB *Fixture
	childA, childB     int

	friction    pmath.R
	restitution pmath.R

	manifold collide.Manifold

	touching         bool
	enabled          bool
	isSensor         bool
	filterNeeded     bool
	islandFlag       bool
	toiFlag          bool
	toi              pmath.R
	toiCount         int

	nodeA, nodeB *ContactEdge
}

func newContact(fA *Fixture, childA int, fB *Fixture, childB int) *Contact {
	c := &Contact{
		fixtureA: fA, childA: childA,
		fixtureB: fB, childB: childB,
		friction:    mixFriction(fA.friction, fB.friction),
		restitution: mixRestitution(fA.restitution, fB.restitution),
		enabled:     true,
		isSensor:    fA.isSensor || fB.isSensor,
	}
	c.nodeA = &ContactEdge{other: fB.body, contact: c}
	c.nodeB = &ContactEdge{other: fA.body, contact: c}
	linkEdge(fA.body, c.nodeA)
	linkEdge(fB.body, c.nodeB)
	return c
}

func linkEdge(b *Body, e *ContactEdge) {
	e.next = b.contactList
	if b.contactList != nil {
		b.contactList.prev = e
	}
	b.contactList = e
}

func unlinkEdge(b *Body, e *ContactEdge) {
	if e.prev != nil {
		e.prev.next = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	}
	if b.contactList == e {
		b.contactList = e.next
	}
	e.prev, e.next = nil, nil
}

func (c *Contact) destroy() {
	unlinkEdge(c.fixtureA.body, c.nodeA)
	unlinkEdge(c.fixtureB.body, c.nodeB)
}

// FixtureA/FixtureB/ChildIndexA/ChildIndexB expose the pairing.
func (c *Contact) FixtureA() *Fixture { return c.fixtureA }
func (c *Contact) FixtureB() *Fixture { return c.fixtureB }
func (c *Contact) ChildIndexA() int   { return c.childA }
func (c *Contact) ChildIndexB() int   { return c.childB }

// IsTouching reports whether the last Update produced a non-empty
// manifold.
func (c *Contact) IsTouching() bool { return c.touching }

// IsEnabled reports whether this contact currently participates in the
// solver (a PreSolve callback may disable it for one step).
func (c *Contact) IsEnabled() bool { return c.enabled }

// SetEnabled disables/re-enables this contact for the current step.
func (c *Contact) SetEnabled(enabled bool) { c.enabled = enabled }

// IsSensor reports whether either fixture is a sensor (sensors report
// touching but never produce a solved manifold).
func (c *Contact) IsSensor() bool { return c.isSensor }

// Manifold returns the contact's current manifold.
func (c *Contact) Manifold() *collide.Manifold { return &c.manifold }

// Friction/Restitution return the mixed material values.
func (c *Contact) Friction() pmath.R    { return c.friction }
func (c *Contact) Restitution() pmath.R { return c.restitution }

// shouldCollide applies the default filter plus the "at least one
// dynamic body" rule.
func (c *Contact) shouldCollide() bool {
	if c.fixtureA.isSensor || c.fixtureB.isSensor {
		// sensors still report overlap, independent of dynamic-ness.
	} else if !c.fixtureA.body.needsDynamicPartner() && !c.fixtureB.body.needsDynamicPartner() {
		return false
	}
	if !c.fixtureA.filter.shouldCollide(c.fixtureB.filter) {
		return false
	}
	return true
}

// update runs the narrow phase, warm-starting the new
// manifold's per-point impulses from the old one by matching
// ContactFeature identity, then returns the previous/new touching state
// so the caller can fire Begin/EndContact. While touching and not a
// sensor, it also fires listener.PreSolve with the pre-update manifold,
// matching Box2D's b2Contact::Update (PreSolve fires from the collide
// pass, not from the island solver, so a listener can SetEnabled(false)
// before velocity constraints are ever built).
func (c *Contact) update(maxCirclesRatio pmath.R, filter ContactFilter, listener ContactListener) (wasTouching, nowTouching bool) {
	wasTouching = c.touching
	old := c.manifold
	// re-enable every update, so a SetEnabled(false) lasts one step.
	c.enabled = true

	bodyA, bodyB := c.fixtureA.body, c.fixtureB.body

	if !bodyA.IsEnabled() || !bodyB.IsEnabled() {
		c.manifold = collide.Manifold{}
		c.touching = false
		return wasTouching, false
	}

	if c.isSensor {
		overlap := testShapesOverlap(c.fixtureA, c.childA, c.fixtureB, c.childB)
		c.manifold = collide.Manifold{}
		c.touching = overlap
		return wasTouching, overlap
	}

	if filter != nil && !filter.ShouldCollide(c.fixtureA, c.fixtureB) {
		c.manifold = collide.Manifold{}
		c.touching = false
		return wasTouching, false
	}

	c.manifold = collide.Collide(
		c.fixtureA.shape, c.childA, bodyA.xf,
		c.fixtureB.shape, c.childB, bodyB.xf,
		maxCirclesRatio,
	)
	c.touching = len(c.manifold.Points) > 0

	for i := range c.manifold.Points {
		mp := &c.manifold.Points[i]
		for _, op := range old.Points {
			if op.Feature == mp.Feature {
				mp.NormalImpulse = op.NormalImpulse
				mp.TangentImpulse = op.TangentImpulse
				break
			}
		}
	}

	if c.touching && listener != nil {
		listener.PreSolve(c, &old)
	}

	return wasTouching, c.touching
}

// testShapesOverlap is the sensor-only fast path: sensors report overlap
// but never produce a solved manifold, so this only tests distance <= 0.
func testShapesOverlap(fA *Fixture, childA int, fB *Fixture, childB int) bool {
	m := collide.Collide(fA.shape, childA, fA.body.xf, fB.shape, childB, fB.body.xf, 1e300)
	return len(m.Points) > 0
}

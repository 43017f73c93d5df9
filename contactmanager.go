// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package phys2d

import (
	"github.com/gazed/phys2d/broadphase"
	pmath "github.com/gazed/phys2d/math"
)

// contactKey canonicalizes a (fixture,child) x (fixture,child) pairing
// so the same physical pairing always maps to the same map key
// regardless of which side the broad phase reported as "A".
type contactKey struct {
	idxA, idxB     int32
	genA, genB     uint32
	childA, childB int
}

func makeContactKey(fA *Fixture, childA int, fB *Fixture, childB int) contactKey {
	if less(fA.id, childA, fB.id, childB) {
		return contactKey{idxA: fA.id.Index, genA: fA.id.Gen, childA: childA, idxB: fB.id.Index, genB: fB.id.Gen, childB: childB}
	}
	return contactKey{idxA: fB.id.Index, genA: fB.id.Gen, childA: childB, idxB: fA.id.Index, genB: fA.id.Gen, childB: childA}
}

func less(a FixtureID, childA int, b FixtureID, childB int) bool {
	if a.Index != b.Index {
		return a.Index < b.Index
	}
	if a.Gen != b.Gen {
		return a.Gen < b.Gen
	}
	return childA < childB
}

// ContactManager owns the broad phase and the live set of Contacts it
// implies, driving the new-pair -> ShouldCollide -> Contact lifecycle and
// the AABBs-separate -> destroy teardown. Grounded on Box2D's
// b2ContactManager, restructured as a map-keyed registry rather than an
// intrusive doubly linked list, matching gazed/vu's preference for
// map/slice-backed collections over hand-rolled linked lists elsewhere in
// the corpus (simulation.go).
type ContactManager struct {
	broadPhase *broadphase.BroadPhase
	contacts   map[contactKey]*Contact

	listener ContactListener
	filter   ContactFilter
}

func newContactManager(bp *broadphase.BroadPhase) *ContactManager {
	return &ContactManager{
		broadPhase: bp,
		contacts:   map[contactKey]*Contact{},
	}
}

// SetContactListener installs the begin/end/pre/post solve callback set.
func (cm *ContactManager) SetContactListener(l ContactListener) { cm.listener = l }

// SetContactFilter installs a custom ShouldCollide predicate, replacing
// the default filter rule.
func (cm *ContactManager) SetContactFilter(f ContactFilter) { cm.filter = f }

// Contacts returns every live contact, in no particular order.
func (cm *ContactManager) Contacts() []*Contact {
	out := make([]*Contact, 0, len(cm.contacts))
	for _, c := range cm.contacts {
		out = append(out, c)
	}
	return out
}

// findNewContacts drains the broad phase's move buffer and creates a
// Contact for every candidate pair that passes ShouldCollide and isn't
// already tracked.
func (cm *ContactManager) findNewContacts() {
	pairs := cm.broadPhase.UpdatePairs()
	for _, p := range pairs {
		leafA, _ := cm.broadPhase.Data(p.ProxyA).(leafData)
		leafB, _ := cm.broadPhase.Data(p.ProxyB).(leafData)
		if leafA.fixture == nil || leafB.fixture == nil {
			continue
		}
		fA, childA := leafA.fixture, leafA.childIndex
		fB, childB := leafB.fixture, leafB.childIndex
		if fA.body == fB.body {
			continue
		}
		key := makeContactKey(fA, childA, fB, childB)
		if _, exists := cm.contacts[key]; exists {
			continue
		}
		c := newContact(fA, childA, fB, childB)
		if cm.filter != nil {
			if !cm.filter.ShouldCollide(fA, fB) {
				c.destroy()
				continue
			}
		} else if !c.shouldCollide() {
			c.destroy()
			continue
		}
		cm.contacts[key] = c
	}
}

// collide updates every live contact's manifold, destroys contacts
// whose broad-phase proxies have separated or whose fixtures no longer
// pass filtering, and fires Begin/EndContact in the order contacts were
// visited. Map iteration in Go is randomized, so callers that need
// determinism across runs should sort World.Contacts() themselves; the
// manager itself doesn't depend on visitation order for correctness.
func (cm *ContactManager) collide(maxCirclesRatio pmath.R, maxContacts int) {
	for key, c := range cm.contacts {
		fA, fB := c.fixtureA, c.fixtureB

		activeA := fA.proxies[c.childA]
		activeB := fB.proxies[c.childB]
		if !cm.broadPhase.TestOverlap(activeA.proxyID, activeB.proxyID) {
			cm.destroyContact(key, c)
			continue
		}

		if c.filterNeeded {
			c.filterNeeded = false
			ok := c.shouldCollide()
			if cm.filter != nil {
				ok = cm.filter.ShouldCollide(fA, fB)
			}
			if !ok {
				cm.destroyContact(key, c)
				continue
			}
		}

		if !fA.body.IsAwake() && !fB.body.IsAwake() &&
			fA.body.bodyType == Dynamic && fB.body.bodyType == Dynamic {
			continue
		}

		wasTouching, nowTouching := c.update(maxCirclesRatio, cm.filter, cm.listener)
		if cm.listener != nil {
			if !wasTouching && nowTouching {
				cm.listener.BeginContact(c)
			} else if wasTouching && !nowTouching {
				cm.listener.EndContact(c)
			}
		}
	}
}

func (cm *ContactManager) destroyContact(key contactKey, c *Contact) {
	if cm.listener != nil && c.touching {
		cm.listener.EndContact(c)
	}
	if cm.listener != nil {
		cm.listener.SayGoodbye(c)
	}
	c.destroy()
	delete(cm.contacts, key)
}

// destroyContactsFor removes every contact incident to body b, used by
// Body destruction, which cascades to its fixtures, contacts and joints.
func (cm *ContactManager) destroyContactsFor(b *Body) {
	for key, c := range cm.contacts {
		if c.fixtureA.body == b || c.fixtureB.body == b {
			cm.destroyContact(key, c)
		}
	}
}

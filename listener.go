// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package phys2d

import "github.com/gazed/phys2d/collide"

// ContactListener receives touching-state transitions and solver hooks.
// All methods are optional; embed NopContactListener to satisfy the
// interface without implementing every method.
type ContactListener interface {
	// BeginContact fires the step a contact's manifold first becomes
	// non-empty.
	BeginContact(c *Contact)
	// EndContact fires the step a previously-touching contact's
	// manifold becomes empty, or the contact is destroyed while
	// touching.
	EndContact(c *Contact)
	// PreSolve fires before the velocity solver runs, with the contact's
	// manifold already updated for this step; oldManifold is the
	// manifold from the previous step, letting a listener detect a
	// feature change. A listener may call c.SetEnabled(false) here to
	// skip solving (but not reporting) this contact for one step.
	PreSolve(c *Contact, oldManifold *collide.Manifold)
	// PostSolve fires after the velocity solver runs, reporting the
	// per-point normal/tangent impulses actually applied.
	PostSolve(c *Contact, impulse *ContactImpulse)
	// SayGoodbye fires immediately before a contact is destroyed,
	// whether or not it was ever touching.
	SayGoodbye(c *Contact)
}

// ContactImpulse reports a solved contact's per-point impulses to
// PostSolve.
type ContactImpulse struct {
	NormalImpulses  []float64
	TangentImpulses []float64
}

// NopContactListener implements ContactListener with empty bodies, so a
// caller that only cares about one or two callbacks can embed this and
// override just those.
type NopContactListener struct{}

func (NopContactListener) BeginContact(*Contact)                         {}
func (NopContactListener) EndContact(*Contact)                           {}
func (NopContactListener) PreSolve(*Contact, *collide.Manifold)          {}
func (NopContactListener) PostSolve(*Contact, *ContactImpulse)           {}
func (NopContactListener) SayGoodbye(*Contact)                           {}

// ContactFilter decides whether two fixtures should ever generate a
// Contact, overriding the default Filter-bits rule.
type ContactFilter interface {
	ShouldCollide(fixtureA, fixtureB *Fixture) bool
}

// DefaultContactFilter implements ContactFilter using each fixture's
// Filter bits, exposed so a custom filter can fall back to it for pairs
// it doesn't care about.
type DefaultContactFilter struct{}

func (DefaultContactFilter) ShouldCollide(fixtureA, fixtureB *Fixture) bool {
	if !fixtureA.body.needsDynamicPartner() && !fixtureB.body.needsDynamicPartner() {
		return false
	}
	return fixtureA.filter.shouldCollide(fixtureB.filter)
}

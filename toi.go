// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package phys2d

import (
	"github.com/gazed/phys2d/collide"
	"github.com/gazed/phys2d/distance"
	pmath "github.com/gazed/phys2d/math"
)

// toiIsland is the mini-island the continuous-collision pass builds
// around the earliest impending contact: the two seed bodies plus
// whatever other dynamic bodies are greedily pulled in through enabled,
// non-sensor, touching contacts. Grounded on Box2D's b2World::SolveTOI /
// b2Island::SolveTOI.
type toiIsland struct {
	bodies   []*Body
	contacts []*Contact
	// movable holds exactly the two contact-seed bodies: only these may
	// be displaced by the TOI position solve; the position solver only
	// permits motion of the two seed bodies.
	movable map[*Body]bool
}

// solveTOI runs the continuous-collision pipeline once per Step, after
// the regular island solve, for every body the world considers
// impenetrable (static, kinematic, or dynamic+bullet). It only runs when
// Config.ContinuousPhysics is set (checked by the caller, World.Step).
func (w *World) solveTOI(dt pmath.R) {
	conf := &w.config

	for _, b := range w.bodies {
		b.sweep.Alpha0 = 0
	}
	for _, c := range w.contactManager.contacts {
		c.toiFlag = false
		c.toiCount = 0
	}

	for {
		minContact, minAlpha := w.findMinTOI(conf)
		if minContact == nil || minAlpha > 1-10*pmath.Epsilon {
			break
		}

		bodyA, bodyB := minContact.fixtureA.body, minContact.fixtureB.body
		backupA, backupB := bodyA.sweep, bodyB.sweep

		bodyA.advance(minAlpha)
		bodyB.advance(minAlpha)

		minContact.update(conf.MaxCirclesRatio, w.contactManager.filter, w.contactManager.listener)
		minContact.toiFlag = false
		minContact.toiCount++

		if !minContact.touching || !minContact.enabled {
			bodyA.sweep = backupA
			bodyB.sweep = backupB
			bodyA.synchronizeTransform()
			bodyB.synchronizeTransform()
			continue
		}

		bodyA.SetAwake(true)
		bodyB.SetAwake(true)

		isl := buildTOIIsland(bodyA, bodyB, minContact, conf.MaxToiContacts)
		for _, b := range isl.bodies {
			if b.sweep.Alpha0 < minAlpha {
				b.advance(minAlpha)
			}
		}

		solveTOIIsland(isl, w, minAlpha, dt)

		for _, b := range isl.bodies {
			for ce := b.contactList; ce != nil; ce = ce.next {
				ce.contact.toiFlag = false
			}
		}

		w.contactManager.findNewContacts()

		if conf.SubStepping {
			break
		}
	}
}

// findMinTOI scans every live contact, computing (and caching) a TOI for
// each eligible one that lacks a cached value, and returns the contact
// with the smallest resulting alpha. Grounded on Box2D's b2World::Solve
// TOI-contact-selection loop.
func (w *World) findMinTOI(conf *Config) (*Contact, pmath.R) {
	var minContact *Contact
	minAlpha := pmath.R(1)

	for _, c := range w.contactManager.contacts {
		if c.toiCount >= conf.MaxSubSteps {
			continue
		}

		alpha := pmath.R(1)
		if !c.toiFlag {
			if !c.IsEnabled() || c.isSensor {
				continue
			}

			bodyA, bodyB := c.fixtureA.body, c.fixtureB.body
			typeA, typeB := bodyA.bodyType, bodyB.bodyType

			activeA := bodyA.IsAwake() && typeA != Static
			activeB := bodyB.IsAwake() && typeB != Static
			if !activeA && !activeB {
				continue
			}

			collideA := bodyA.IsBullet() || typeA != Dynamic
			collideB := bodyB.IsBullet() || typeB != Dynamic
			if !collideA && !collideB {
				continue
			}

			alpha0 := bodyA.sweep.Alpha0
			if bodyA.sweep.Alpha0 < bodyB.sweep.Alpha0 {
				alpha0 = bodyB.sweep.Alpha0
				bodyA.sweep.Advance(alpha0)
			} else if bodyB.sweep.Alpha0 < bodyA.sweep.Alpha0 {
				bodyB.sweep.Advance(alpha0)
			}

			proxyA := c.fixtureA.shape.Proxy(c.childA)
			proxyB := c.fixtureB.shape.Proxy(c.childB)

			output := distance.TimeOfImpact(distance.TOIInput{
				ProxyA: proxyA,
				ProxyB: proxyB,
				SweepA: bodyA.sweep,
				SweepB: bodyB.sweep,
				TMax:   1,
			}, conf.MaxToiIterations, conf.MaxToiRootIters, conf.MaxDistanceIters)

			if output.State == distance.TOITouching {
				alpha = pmath.Min(alpha0+(1-alpha0)*output.T, 1)
			} else {
				alpha = 1
			}

			c.toi = alpha
			c.toiFlag = true
		}
		alpha = c.toi

		if alpha < minAlpha {
			minContact = c
			minAlpha = alpha
		}
	}

	return minContact, minAlpha
}

// buildTOIIsland constructs the mini-island rooted at the two bodies of
// seedContact, greedily pulling in other dynamic bodies reachable
// through enabled, non-sensor, already-touching contacts, capped at
// maxContacts contacts and 2*maxContacts bodies.
func buildTOIIsland(bodyA, bodyB *Body, seedContact *Contact, maxContacts int) *toiIsland {
	isl := &toiIsland{
		movable: map[*Body]bool{bodyA: true, bodyB: true},
	}

	seen := map[*Body]bool{bodyA: true, bodyB: true}
	isl.bodies = append(isl.bodies, bodyA, bodyB)

	visitedContacts := map[*Contact]bool{seedContact: true}
	isl.contacts = append(isl.contacts, seedContact)

	queue := []*Body{bodyA, bodyB}
	maxBodies := 2 * maxContacts
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		if b.bodyType != Dynamic {
			continue
		}
		for ce := b.contactList; ce != nil; ce = ce.next {
			if len(isl.contacts) >= maxContacts || len(isl.bodies) >= maxBodies {
				break
			}
			c := ce.contact
			if visitedContacts[c] {
				continue
			}
			if !c.IsEnabled() || c.isSensor || !c.touching {
				continue
			}
			other := ce.other
			if other.bodyType != Dynamic {
				continue
			}
			visitedContacts[c] = true
			isl.contacts = append(isl.contacts, c)
			if !seen[other] {
				seen[other] = true
				isl.bodies = append(isl.bodies, other)
				queue = append(queue, other)
			}
		}
	}

	return isl
}

// solveTOIIsland runs a position solve with Config.ToiBaumgarte
// (restricted to moving only the two seed bodies), velocity iterations
// with no warm-starting, then integration of every island body's
// position over the remaining fraction (1-alpha) of dt.
func solveTOIIsland(isl *toiIsland, w *World, alpha, dt pmath.R) {
	conf := &w.config
	h := (1 - alpha) * dt

	for i := 0; i < conf.PositionIterations; i++ {
		if solveTOIPositionConstraints(isl, conf) >= -1.5*conf.LinearSlop {
			break
		}
	}

	// Leap of faith: the seed bodies' pre-step sweep now starts from
	// their just-solved position, matching Box2D's "c0 = c" reset before
	// the velocity solve for the remainder of the step.
	for b := range isl.movable {
		b.sweep.C0 = b.sweep.C
		b.sweep.A0 = b.sweep.A
		b.synchronizeTransform()
	}

	pseudoIsland := &island{bodies: isl.bodies, contacts: isl.contacts}
	vcs := buildVelocityConstraints(pseudoIsland, false, conf.VelocityThreshold)
	for i := 0; i < conf.VelocityIterations; i++ {
		solveVelocityConstraints(vcs)
	}

	for _, b := range isl.bodies {
		if b.bodyType == Static {
			continue
		}
		b.sweep.C.X += h * b.velocity.V.X
		b.sweep.C.Y += h * b.velocity.V.Y
		b.sweep.A += h * b.velocity.W
		oldXf := b.xf
		b.synchronizeTransform()
		for _, f := range b.fixtures {
			f.synchronize(w.broadPhase, &oldXf, &b.xf, conf.AABBExtension)
		}
	}

	reportPostSolve(vcs, w.contactManager.listener)
}

// solveTOIPositionConstraints runs one Baumgarte correction pass over
// every island contact using conf.ToiBaumgarte, applying the correcting
// impulse only to bodies in isl.movable; every other island body is
// treated as having zero inverse mass/inertia for this local solve.
func solveTOIPositionConstraints(isl *toiIsland, conf *Config) pmath.R {
	minSeparation := pmath.R(0)
	for _, c := range isl.contacts {
		fA, fB := c.fixtureA, c.fixtureB
		bodyA, bodyB := fA.body, fB.body
		radiusA := fA.shape.Proxy(c.childA).Radius
		radiusB := fB.shape.Proxy(c.childB).Radius

		xfA := sweepTransform(bodyA)
		xfB := sweepTransform(bodyB)
		wm := collide.ComputeWorldManifold(&c.manifold, &xfA, radiusA, &xfB, radiusB)

		invMassA, invIA := pmath.R(0), pmath.R(0)
		if isl.movable[bodyA] {
			invMassA, invIA = bodyA.invMass, bodyA.invI
		}
		invMassB, invIB := pmath.R(0), pmath.R(0)
		if isl.movable[bodyB] {
			invMassB, invIB = bodyB.invMass, bodyB.invI
		}

		for _, wp := range wm.Points {
			if wp.Separation < minSeparation {
				minSeparation = wp.Separation
			}

			rA := pmath.V2{X: wp.Point.X - bodyA.sweep.C.X, Y: wp.Point.Y - bodyA.sweep.C.Y}
			rB := pmath.V2{X: wp.Point.X - bodyB.sweep.C.X, Y: wp.Point.Y - bodyB.sweep.C.Y}

			rnA := rA.Cross2(&wm.Normal)
			rnB := rB.Cross2(&wm.Normal)
			k := invMassA + invMassB + invIA*rnA*rnA + invIB*rnB*rnB
			normalMass := pmath.R(0)
			if k > 0 {
				normalMass = 1 / k
			}

			cCorr := pmath.Clamp(conf.ToiBaumgarte*(wp.Separation+conf.LinearSlop), -conf.MaxLinearCorrection, 0)
			impulseMag := -normalMass * cCorr
			impulse := pmath.V2{X: impulseMag * wm.Normal.X, Y: impulseMag * wm.Normal.Y}

			bodyA.sweep.C.X -= invMassA * impulse.X
			bodyA.sweep.C.Y -= invMassA * impulse.Y
			bodyA.sweep.A -= invIA * rA.Cross2(&impulse)

			bodyB.sweep.C.X += invMassB * impulse.X
			bodyB.sweep.C.Y += invMassB * impulse.Y
			bodyB.sweep.A += invIB * rB.Cross2(&impulse)
		}
	}
	return minSeparation
}
